package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/stegscan/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the image report in JSON format.
func (w *JSONWriter) Write(report *model.ImageReport) (int, error) {
	return w.writeJSON(report)
}

// WriteRecords outputs the records as a JSON array.
func (w *JSONWriter) WriteRecords(records []model.AnalysisRecord) (int, error) {
	if records == nil {
		records = []model.AnalysisRecord{}
	}
	return w.writeJSON(records)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps an image report with the version of the tool that
// produced it.
type JSONReport struct {
	// Version is the stegscan version that generated this report.
	Version string `json:"version"`

	// Report is the full image report.
	Report *model.ImageReport `json:"report"`

	// Summary repeats the headline numbers for quick access.
	Summary *Summary `json:"summary"`
}

// Summary is the headline view of an image report.
type Summary struct {
	Likelihood          float64  `json:"likelihood"`
	FormattedLikelihood string   `json:"formatted_likelihood"`
	Band                string   `json:"band"`
	Techniques          []string `json:"techniques"`
	SuccessfulAttempts  int      `json:"successful_attempts"`
}

// NewSummary builds the headline view of a report.
func NewSummary(report *model.ImageReport) *Summary {
	s := &Summary{
		Techniques:         []string{},
		SuccessfulAttempts: len(report.SuccessfulAttempts()),
	}
	if report.Detection != nil {
		s.Likelihood = report.Detection.Likelihood
		s.FormattedLikelihood = report.Detection.FormattedLikelihood()
		s.Band = report.Detection.Band().String()
		s.Techniques = report.Detection.Techniques
	}
	return s
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *model.ImageReport, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Report:  report,
		Summary: NewSummary(report),
	}
}

// FullJSONWriter outputs reports wrapped with version information.
type FullJSONWriter struct {
	*JSONWriter

	// version is the stegscan version string.
	version string
}

// NewFullJSONWriter creates a writer for wrapped reports.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the report wrapped with version information.
func (w *FullJSONWriter) Write(report *model.ImageReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}
