package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/stegscan/internal/config"
	"github.com/nao1215/stegscan/internal/database"
	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/report"
)

// NewHistoryCmd creates the history command.
// This command lists or shows analyses stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show past analyses",
		Long: `History lists the most recent analyses recorded by 'stegscan analyze'.

Given a record id, it shows that analysis in full: file information,
metadata and the stored detection result.

Examples:
  # List the ten most recent analyses
  stegscan history

  # List the last 50
  stegscan history -n 50

  # Show analysis #7
  stegscan history 7

  # Find every analysis of the same file contents
  stegscan history --digest 3a98...

  # Output as JSON
  stegscan history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Number of records to list")
	cmd.Flags().String("digest", "",
		"List records of files with this SHA3-256 digest")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var id int64
	if len(args) == 1 {
		id, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid record id: %s", args[0])
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	digest, err := cmd.Flags().GetString("digest")
	if err != nil {
		return err
	}

	setupLogger(cmd, cfg)
	writer := newReportWriter(cfg, cmd.OutOrStdout())

	db, err := database.Open(cfg.DBDir, database.Options{})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		if id > 0 {
			return fmt.Errorf("%w: id %d", database.ErrRecordNotFound, id)
		}
		_, err = writer.WriteRecords(nil)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if id > 0 {
		return showRecord(ctx, db, writer, id)
	}

	var records []model.AnalysisRecord
	if digest != "" {
		records, err = db.FindByDigest(ctx, digest)
	} else {
		records, err = db.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	_, err = writer.WriteRecords(records)
	return err
}

// showRecord writes one stored analysis as a full report.
func showRecord(ctx context.Context, db *database.RecordDB, writer report.Writer, id int64) error {
	record, err := db.Get(ctx, id)
	if err != nil {
		return err
	}

	rep, err := reportFromRecord(record)
	if err != nil {
		return err
	}

	_, err = writer.Write(rep)
	return err
}

// reportFromRecord rebuilds an image report from a stored record.
// Decoder attempts are not stored, so the report has none.
func reportFromRecord(record *model.AnalysisRecord) (*model.ImageReport, error) {
	fields, err := database.DecodeMetadata(record)
	if err != nil {
		return nil, err
	}
	detection, err := database.DecodeDetection(record)
	if err != nil {
		return nil, err
	}

	return &model.ImageReport{
		Path: record.Filename,
		File: &model.FileInfo{
			Name:    record.Filename,
			Size:    record.FileSize,
			Type:    record.FileType,
			Entropy: record.EntropyValue,
			Digest:  record.Digest,
		},
		Metadata:       fields,
		Detection:      detection,
		RecordID:       record.ID,
		PerformedSteps: make([]string, 0),
		StartedAt:      record.CreatedAt,
		FinishedAt:     record.CreatedAt,
	}, nil
}
