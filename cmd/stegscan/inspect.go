package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/stegscan/internal/fileinfo"
	"github.com/nao1215/stegscan/internal/metadata"
	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/toolchain"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Show file-level details of an image",
		Long: `Inspect prints the raw facts about a file without scoring it:
size, detected type, byte entropy, SHA3-256 digest, the most frequent byte
values, all metadata fields, and embedded file signatures found by binwalk.

Examples:
  # File information, metadata and signature scan
  stegscan inspect photo.jpg

  # Also list printable strings of at least 8 characters
  stegscan inspect --strings --min-length 8 photo.jpg

  # Hex dump of the first 512 bytes
  stegscan inspect --hexdump --hex-bytes 512 photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: runInspectCmd,
	}

	cmd.Flags().BoolP("strings", "s", false,
		"List printable strings")
	cmd.Flags().IntP("min-length", "n", fileinfo.DefaultMinStringLength,
		"Minimum length of listed strings")
	cmd.Flags().BoolP("hexdump", "x", false,
		"Show a hex dump of the file head")
	cmd.Flags().Int("hex-bytes", fileinfo.DefaultHexDumpSize,
		"Number of bytes in the hex dump")
	cmd.Flags().Bool("no-signatures", false,
		"Skip the binwalk signature scan")

	return cmd
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	showStrings, err := flags.GetBool("strings")
	if err != nil {
		return err
	}
	minLength, err := flags.GetInt("min-length")
	if err != nil {
		return err
	}
	showHex, err := flags.GetBool("hexdump")
	if err != nil {
		return err
	}
	hexBytes, err := flags.GetInt("hex-bytes")
	if err != nil {
		return err
	}
	noSignatures, err := flags.GetBool("no-signatures")
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path) //nolint:gosec // Path is the user-supplied image
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	runner := newRunner(cfg, logger)
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	writeFileInfo(out, fileinfo.Describe(filepath.Base(path), data))
	writeMetadata(out, newExtractor(cfg, runner, logger).Extract(ctx, path))

	if !noSignatures {
		writeSignatures(out, runner.SignatureScan(ctx, path))
	}

	if showStrings {
		found := fileinfo.Strings(data, minLength)
		heading(out, fmt.Sprintf("STRINGS (%d)", len(found)))
		for _, s := range found {
			fmt.Fprintf(out, "  %s\n", s)
		}
		fmt.Fprintln(out)
	}

	if showHex {
		heading(out, "HEX DUMP")
		fmt.Fprint(out, fileinfo.HexDump(data, hexBytes))
		fmt.Fprintln(out)
	}

	return nil
}

// heading writes a section title.
func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func writeFileInfo(w io.Writer, info *model.FileInfo) {
	heading(w, "FILE")
	fmt.Fprintf(w, "  Name:     %s\n", info.Name)
	fmt.Fprintf(w, "  Size:     %d bytes\n", info.Size)
	fmt.Fprintf(w, "  Type:     %s\n", info.Type)
	fmt.Fprintf(w, "  Entropy:  %.4f bits/byte\n", info.Entropy)
	fmt.Fprintf(w, "  SHA3-256: %s\n", info.Digest)
	if len(info.TopBytes) > 0 {
		fmt.Fprintln(w, "  Top bytes:")
		for _, bc := range info.TopBytes {
			fmt.Fprintf(w, "    0x%02x  %d\n", bc.Value, bc.Count)
		}
	}
	fmt.Fprintln(w)
}

func writeMetadata(w io.Writer, res metadata.Result) {
	heading(w, "METADATA")
	switch {
	case !res.OK():
		fmt.Fprintf(w, "  unavailable: %s\n", res.Reason)
	case len(res.Fields) == 0:
		fmt.Fprintf(w, "  no metadata (%s)\n", res.Source)
	default:
		fmt.Fprintf(w, "  source: %s\n", res.Source)
		for _, line := range strings.Split(strings.TrimRight(metadata.Render(res.Fields), "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	fmt.Fprintln(w)
}

func writeSignatures(w io.Writer, out toolchain.Outcome) {
	heading(w, "SIGNATURES")
	if !out.OK() {
		fmt.Fprintf(w, "  %s %s: %s\n", out.Tool, out.Status, out.Reason)
	} else {
		for _, line := range strings.Split(strings.TrimRight(string(out.Output), "\n"), "\n") {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
	fmt.Fprintln(w)
}
