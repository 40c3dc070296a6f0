package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/stegscan/internal/config"
	"github.com/nao1215/stegscan/internal/database"
	"github.com/nao1215/stegscan/internal/decoder"
	"github.com/nao1215/stegscan/internal/detect"
	"github.com/nao1215/stegscan/internal/metadata"
	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/pipeline"
	"github.com/nao1215/stegscan/internal/report"
	"github.com/nao1215/stegscan/internal/toolchain"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Estimate the likelihood that images contain hidden data",
		Long: `Analyze scores each image with seven statistical indicators and combines
them into one weighted likelihood.

With --decode, images whose likelihood exceeds the decode threshold are
brute-forced with LSB decoding, metadata extraction, steghide and outguess.
Every analysis is recorded in the local database unless --no-db is given.

Examples:
  # Analyze a single image
  stegscan analyze photo.png

  # Analyze many images, four at a time
  stegscan analyze --batch 4 images/*.jpg

  # Decode images that look suspicious
  stegscan analyze --decode photo.png

  # Decode regardless of the likelihood, with a custom wordlist
  stegscan analyze --force-decode --password-file words.txt photo.png

  # Reproducible sampling, JSON report to a file
  stegscan analyze --seed 42 --json -o report.json photo.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	// Decoding flags
	cmd.Flags().BoolP("decode", "d", false,
		"Brute-force images whose likelihood exceeds the threshold")
	cmd.Flags().BoolP("force-decode", "F", false,
		"Brute-force every image regardless of the likelihood")
	cmd.Flags().Float64P("threshold", "t", config.DefaultDecodeThreshold,
		"Likelihood above which --decode runs (0-1)")
	cmd.Flags().StringArrayP("password", "p", nil,
		"Passphrase to try (repeatable, replaces the default list)")
	cmd.Flags().StringP("password-file", "P", "",
		"File with one passphrase per line")

	// Detection flags
	cmd.Flags().Uint64("seed", 0,
		"Seed for the sampling indicators (default: random)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of images analyzed concurrently")

	// Storage flags
	cmd.Flags().Bool("no-db", false, "Do not record the analysis")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalyzeConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAnalyze(ctx, cmd, cfg, args, logger)
}

// buildAnalyzeConfig layers the analyze flags over the loaded config.
// Flags that were not given keep the config file values.
func buildAnalyzeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if cfg.Decode, err = flags.GetBool("decode"); err != nil {
		return nil, err
	}
	if cfg.ForceDecode, err = flags.GetBool("force-decode"); err != nil {
		return nil, err
	}
	if flags.Changed("threshold") {
		if cfg.DecodeThreshold, err = flags.GetFloat64("threshold"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("seed") {
		if cfg.Seed, err = flags.GetUint64("seed"); err != nil {
			return nil, err
		}
		cfg.HasSeed = true
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if noDB {
		cfg.SaveToDB = false
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	if err := applyPasswordFlags(cmd, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyPasswordFlags replaces the passphrase list when --password or
// --password-file is given. Both may be combined.
func applyPasswordFlags(cmd *cobra.Command, cfg *config.Config) error {
	passwords, err := cmd.Flags().GetStringArray("password")
	if err != nil {
		return err
	}

	passwordFile, err := cmd.Flags().GetString("password-file")
	if err != nil {
		return err
	}
	if passwordFile != "" {
		loaded, err := config.LoadPasswordFile(passwordFile)
		if err != nil {
			return err
		}
		passwords = append(passwords, loaded...)
	}

	if len(passwords) > 0 {
		cfg.Passwords = passwords
	}
	return nil
}

// runAnalyze analyzes every image and writes the reports.
func runAnalyze(ctx context.Context, cmd *cobra.Command, cfg *config.Config, paths []string, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"images", len(paths),
		"batchSize", cfg.BatchSize,
		"decode", cfg.Decode || cfg.ForceDecode,
		"saveToDB", cfg.SaveToDB,
	)

	var store pipeline.RecordStore
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		store = db
		logger.Info("database opened", "path", db.Path())
	}

	runner := newRunner(cfg, logger)
	extractor := newExtractor(cfg, runner, logger)

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(
				[]pipeline.Option{pipeline.WithLogger(logger)},
				analyzePipelineOptions(cfg, runner, extractor, store, logger)...,
			)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, batchErr := bp.ProcessBatch(ctx, paths)

	output, closeOutput, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Close error after a successful write is not actionable

	if _, err := report.WriteAll(newReportWriter(cfg, output), reports); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if batchErr != nil {
		return batchErr
	}

	if failed := countFailed(reports); failed > 0 {
		return fmt.Errorf("%d of %d images could not be analyzed", failed, len(paths))
	}
	return nil
}

// analyzePipelineOptions translates the configuration into pipeline options.
func analyzePipelineOptions(
	cfg *config.Config,
	runner *toolchain.Runner,
	extractor metadata.Extractor,
	store pipeline.RecordStore,
	logger *slog.Logger,
) []pipeline.DefaultPipelineOption {
	detectorOpts := []detect.Option{
		detect.WithScaler(detect.Scaler{Boost: cfg.Boost, Steepness: cfg.Steepness}),
	}
	if cfg.HasSeed {
		detectorOpts = append(detectorOpts, detect.WithSeed(cfg.Seed))
	}

	opts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineExtractor(extractor),
		pipeline.WithPipelineDetectorOptions(detectorOpts...),
		pipeline.WithPipelineDecode(cfg.Decode),
		pipeline.WithPipelineForceDecode(cfg.ForceDecode),
		pipeline.WithPipelineDecodeThreshold(cfg.DecodeThreshold),
		pipeline.WithPipelinePasswords(cfg.Passwords),
		pipeline.WithPipelineDecoderOptions(
			decoder.WithPayloadExtractor(runner),
			decoder.WithMetadataExtractor(extractor),
			decoder.WithLogger(logger),
		),
	}
	if store != nil {
		opts = append(opts, pipeline.WithPipelineStore(store))
	}
	return opts
}

// countFailed returns the number of reports whose detection failed.
func countFailed(reports []*model.ImageReport) int {
	n := 0
	for _, r := range reports {
		if r == nil || (r.Detection != nil && r.Detection.Failed()) {
			n++
		}
	}
	return n
}
