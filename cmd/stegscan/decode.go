package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/nao1215/stegscan/internal/config"
	"github.com/nao1215/stegscan/internal/decoder"
	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/pipeline"
)

// NewDecodeCmd creates the decode command.
func NewDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <image>",
		Short: "Brute-force hidden data out of an image",
		Long: `Decode tries every extraction hypothesis against one image, regardless of
its likelihood:
- LSB decoding of bit planes 0 and 1 of the red, green and blue channels
- 2-bit LSB decoding of each colour channel
- payloads hidden in metadata fields
- steghide and outguess with each passphrase

Attempts are ranked by the plausibility of the recovered data. Failed
attempts are listed with --all or --verbose.

Examples:
  # Try the default passphrases
  stegscan decode suspect.jpg

  # Try specific passphrases
  stegscan decode -p hunter2 -p letmein suspect.jpg

  # Save every recovered payload
  stegscan decode --dump-dir ./payloads suspect.png`,
		Args: cobra.ExactArgs(1),
		RunE: runDecodeCmd,
	}

	cmd.Flags().StringArrayP("password", "p", nil,
		"Passphrase to try (repeatable, replaces the default list)")
	cmd.Flags().StringP("password-file", "P", "",
		"File with one passphrase per line")
	cmd.Flags().StringP("dump-dir", "D", "",
		"Write each recovered payload to this directory")
	cmd.Flags().Bool("no-tools", false,
		"Skip steghide and outguess")
	cmd.Flags().BoolP("all", "a", false,
		"List failed attempts too")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report")

	return cmd
}

// runDecodeCmd executes the decode command.
func runDecodeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyPasswordFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	showAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	cfg.Verbose = cfg.Verbose || showAll

	noTools, err := cmd.Flags().GetBool("no-tools")
	if err != nil {
		return err
	}
	dumpDir, err := cmd.Flags().GetString("dump-dir")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := decodeImage(ctx, cfg, args[0], noTools, logger)

	if _, err := newReportWriter(cfg, cmd.OutOrStdout()).Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if dumpDir != "" {
		written, err := dumpPayloads(dumpDir, rep)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved payload: %s\n", path)
		}
	}

	if rep.File == nil {
		return fmt.Errorf("failed to read %s: %s", args[0], rep.ErrorMessage)
	}
	return nil
}

// decodeImage runs the inspect and decode steps on one image. Decoding is
// always forced.
func decodeImage(ctx context.Context, cfg *config.Config, path string, noTools bool, logger *slog.Logger) *model.ImageReport {
	runner := newRunner(cfg, logger)

	decoderOpts := []decoder.Option{
		decoder.WithPayloadExtractor(runner),
		decoder.WithMetadataExtractor(newExtractor(cfg, runner, logger)),
	}
	if noTools {
		decoderOpts = append(decoderOpts, decoder.WithTools())
	}

	p := pipeline.New(pipeline.WithLogger(logger), pipeline.WithContinueOnError(true))
	p.AddSteps(
		pipeline.NewInspectStep(logger),
		pipeline.NewDecodeStep(
			pipeline.WithForceDecode(true),
			pipeline.WithPasswords(cfg.Passwords),
			pipeline.WithDecoderOptions(decoderOpts...),
			pipeline.WithDecodeLogger(logger),
		),
	)

	rep := model.NewImageReport(path)
	if err := p.Execute(ctx, rep); err != nil {
		logger.Warn("decode interrupted", "image", path, "error", err)
	}
	return rep
}

// dumpPayloads writes the data of every successful attempt to dir and
// returns the written paths in rank order.
func dumpPayloads(dir string, rep *model.ImageReport) ([]string, error) {
	successful := rep.SuccessfulAttempts()
	if len(successful) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create dump directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(rep.Path), filepath.Ext(rep.Path))
	written := make([]string, 0, len(successful))
	for i, a := range successful {
		if len(a.Data) == 0 {
			continue
		}
		name := fmt.Sprintf("%s_%02d_%s.bin", stem, i+1, slugify(a.Method))
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, a.Data, 0600); err != nil {
			return written, fmt.Errorf("failed to write payload: %w", err)
		}
		written = append(written, path)
	}
	return written, nil
}

// slugify lowercases s and joins its alphanumeric runs with underscores:
// "LSB (Channel: 2, Bit: 0)" becomes "lsb_channel_2_bit_0".
func slugify(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "_")
}
