package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/stegscan/internal/toolchain"
)

// SourceExiftool labels results produced by ExiftoolExtractor.
const SourceExiftool = "exiftool"

// CommandRunner runs an external tool. *toolchain.Runner implements it.
type CommandRunner interface {
	Run(ctx context.Context, tool toolchain.Tool, args ...string) toolchain.Outcome
}

// ExiftoolExtractor reads metadata with `exiftool -j`.
type ExiftoolExtractor struct {
	runner CommandRunner
	logger *slog.Logger
}

// NewExiftoolExtractor creates an extractor backed by runner.
func NewExiftoolExtractor(runner CommandRunner, logger *slog.Logger) *ExiftoolExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExiftoolExtractor{runner: runner, logger: logger}
}

// Extract implements Extractor.
func (e *ExiftoolExtractor) Extract(ctx context.Context, path string) Result {
	out := e.runner.Run(ctx, toolchain.ToolExiftool, "-j", path)
	if !out.OK() {
		e.logger.Debug("exiftool extraction failed", "path", path, "status", out.Status.String(), "reason", out.Reason)
		return failed(SourceExiftool, out.Err().Error())
	}

	fields, err := parseExiftoolJSON(out.Output)
	if err != nil {
		return failed(SourceExiftool, err.Error())
	}
	return newResult(SourceExiftool, fields)
}

// parseExiftoolJSON flattens the first object of exiftool's JSON array
// into string values. SourceFile is dropped since it only echoes the path.
func parseExiftoolJSON(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var objects []map[string]any
	if err := dec.Decode(&objects); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	fields := make(map[string]string)
	if len(objects) == 0 {
		return fields, nil
	}

	for k, v := range objects[0] {
		if k == "SourceFile" {
			continue
		}
		fields[k] = formatValue(v)
	}
	return fields, nil
}

// formatValue renders a decoded JSON value as text.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	}
}
