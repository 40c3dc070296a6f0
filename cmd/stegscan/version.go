package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/nao1215/stegscan/internal/config"
	"github.com/nao1215/stegscan/internal/toolchain"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildSetting returns the named VCS setting recorded by the Go toolchain.
func buildSetting(key string) (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value, true
		}
	}
	return "", false
}

// getVersion returns the version string.
// Priority: ldflags > module version > "(devel)"
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit returns the short commit hash.
func getCommit() string {
	if commit != "" {
		return commit
	}
	if rev, ok := buildSetting("vcs.revision"); ok {
		return rev[:min(7, len(rev))]
	}
	return "unknown"
}

// getDate returns the build date.
func getDate() string {
	if date != "" {
		return date
	}
	if t, ok := buildSetting("vcs.time"); ok {
		return t
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit hash, and build date of stegscan.

With --tools, also report which external tools were found.`,
		RunE: runVersionCmd,
	}

	cmd.Flags().BoolP("tools", "t", false, "Report external tool availability")

	return cmd
}

// runVersionCmd executes the version command.
func runVersionCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "stegscan version %s\n", getVersion())
	fmt.Fprintf(out, "  commit: %s\n", getCommit())
	fmt.Fprintf(out, "  built:  %s\n", getDate())
	fmt.Fprintf(out, "  go:     %s\n", runtime.Version())

	showTools, err := cmd.Flags().GetBool("tools")
	if err != nil {
		return err
	}
	if !showTools {
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runner := toolchain.NewRunner(cfg.RunnerOptions()...)

	fmt.Fprintln(out, "\nExternal tools:")
	for _, tool := range config.KnownTools {
		status := "not found"
		if runner.Available(tool) {
			status = "available"
		}
		fmt.Fprintf(out, "  %-9s %s\n", tool, status)
	}
	return nil
}
