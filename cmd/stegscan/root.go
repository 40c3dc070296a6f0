package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/stegscan/internal/config"
	"github.com/nao1215/stegscan/internal/log"
	"github.com/nao1215/stegscan/internal/metadata"
	"github.com/nao1215/stegscan/internal/report"
	"github.com/nao1215/stegscan/internal/toolchain"
)

// NewRootCmd creates the root command for stegscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stegscan",
		Short: "Steganography detection and extraction for images",
		Long: `stegscan analyzes images for signs of hidden data.

Each image is scored by statistical indicators (LSB distribution,
histogram, noise, chi-square, metadata, sample pairs and RGB correlation)
that are combined into one weighted likelihood. Suspicious images can be
brute-forced with LSB decoding, metadata extraction, steghide and outguess.

External tools (exiftool, binwalk, steghide, outguess) are used when they
are installed and skipped otherwise.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and detailed reports")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .stegscan in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the analysis database (default: XDG data directory)")
	cmd.PersistentFlags().Bool("no-exiftool", false, "Read metadata with the built-in extractor only")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewDecodeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// boolFlag returns the named flag from the command or its parents, or
// false when the flag is not defined.
func boolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// stringFlag returns the named flag from the command or its parents, or
// "" when the flag is not defined.
func stringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// loadConfig builds a Config from defaults, the configuration file and the
// global flags.
//
// If the user names a config file that does not exist, it is an error.
// Without an explicit path a missing file leaves the defaults in place.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = boolFlag(cmd, "verbose")
	cfg.JSONLog = boolFlag(cmd, "log-json")
	cfg.ConfigFilePath = stringFlag(cmd, "config")

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if dir := stringFlag(cmd, "db-dir"); dir != "" {
		cfg.DBDir = dir
	}
	if boolFlag(cmd, "no-exiftool") {
		cfg.UseExiftool = false
	}

	return cfg, nil
}

// setupLogger creates the secure logger selected by the configuration and
// installs it as the slog default.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	var logger *slog.Logger
	if cfg.JSONLog {
		logger = log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	} else {
		logger = log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// newRunner creates the external tool runner for the configuration.
func newRunner(cfg *config.Config, logger *slog.Logger) *toolchain.Runner {
	return toolchain.NewRunner(append(cfg.RunnerOptions(), toolchain.WithLogger(logger))...)
}

// newExtractor returns exiftool with a built-in fallback, or the built-in
// extractor alone when exiftool is disabled.
func newExtractor(cfg *config.Config, runner *toolchain.Runner, logger *slog.Logger) metadata.Extractor {
	if cfg.UseExiftool {
		return metadata.NewDefaultChain(runner, logger)
	}
	return metadata.NewNativeExtractor(logger)
}

// openOutput returns the report destination: the named file, or the
// command's stdout when path is empty. The returned close function is
// always non-nil.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may quote recovered payloads, so they are readable by the owner only.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter selects the report format. Colour is only used for
// terminal output.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	}

	opts := []report.SimpleWriterOption{report.WithVerbose(cfg.Verbose)}
	if cfg.ReportFile != "" {
		opts = append(opts, report.WithColor(false))
	}
	return report.NewSimpleWriter(output, opts...)
}
