package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/stegscan/internal/metadata"
	"github.com/nao1215/stegscan/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for the terminal.
// The likelihood band and attempt markers are coloured unless colour is
// disabled.
type SimpleWriter struct {
	baseWriter

	// verbose shows failed attempts and indicator explanations.
	verbose bool

	// colorize enables ANSI colours.
	colorize bool

	// titleCase renders strength labels.
	titleCase cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor forces colour on or off. By default colour follows the
// terminal detection done by fatih/color.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.colorize = enabled
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		colorize:   !color.NoColor,
		titleCase:  cases.Title(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// paint returns a sprint function for the attributes, honoring colorize.
func (w *SimpleWriter) paint(attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if w.colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.SprintFunc()
}

// bandColor returns the colour attribute of a likelihood band.
func bandColor(b model.Band) color.Attribute {
	switch b {
	case model.BandLow:
		return color.FgGreen
	case model.BandElevated:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

// severityLabel renders an artifact severity as a coloured tag.
func (w *SimpleWriter) severityLabel(s model.Severity) string {
	attr := color.FgCyan
	switch {
	case s >= model.SeverityHigh:
		attr = color.FgRed
	case s == model.SeverityMedium:
		attr = color.FgYellow
	}
	return w.paint(attr)("[" + s.String() + "]")
}

// Write outputs the image report in human-readable format.
func (w *SimpleWriter) Write(report *model.ImageReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeDetection(&sb, report)
	w.writeAttempts(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func rule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, ruleWidth))
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	rule(sb, "-")
	sb.WriteString(title)
	sb.WriteString("\n")
	rule(sb, "-")
	sb.WriteString("\n")
}

// writeHeader writes the report header with file information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ImageReport) {
	sb.WriteString("\n")
	rule(sb, "=")
	sb.WriteString("                          STEGSCAN REPORT\n")
	rule(sb, "=")
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Image:      %s\n", report.Path)
	if f := report.File; f != nil {
		fmt.Fprintf(sb, "Type:       %s (%d bytes)\n", f.Type, f.Size)
		fmt.Fprintf(sb, "Entropy:    %.4f bits/byte\n", f.Entropy)
		fmt.Fprintf(sb, "SHA3-256:   %s\n", f.Digest)
	}
	fmt.Fprintf(sb, "Analyzed:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if report.RecordID > 0 {
		fmt.Fprintf(sb, "Record:     #%d\n", report.RecordID)
	}

	switch {
	case report.ErrorMessage != "":
		fmt.Fprintf(sb, "Status:     %s\n", w.paint(color.FgRed)("ERROR - "+report.ErrorMessage))
	case report.Detection != nil && report.Detection.Failed():
		fmt.Fprintf(sb, "Status:     %s\n", w.paint(color.FgRed)("ERROR - "+report.Detection.Error))
	default:
		sb.WriteString("Status:     Complete\n")
	}
	sb.WriteString("\n")
}

// writeDetection writes the likelihood, indicators and techniques.
func (w *SimpleWriter) writeDetection(sb *strings.Builder, report *model.ImageReport) {
	det := report.Detection
	if det == nil {
		return
	}

	section(sb, "DETECTION")

	band := det.Band()
	fmt.Fprintf(sb, "  Likelihood: %s\n",
		w.paint(bandColor(band), color.Bold)(det.FormattedLikelihood()+" ["+band.String()+"]"))
	fmt.Fprintf(sb, "  %s\n\n", det.Explanation)

	if len(det.Indicators) > 0 {
		fmt.Fprintf(sb, "  %-22s %8s %7s  %s\n", "Indicator", "Value", "Weight", "Strength")
		for _, ind := range det.Indicators {
			fmt.Fprintf(sb, "  %-22s %7.1f%% %7.2f  %s\n",
				ind.Name, ind.Value*100, ind.Weight, w.titleCase.String(ind.Strength().String()))
			if w.verbose && ind.Explanation != "" {
				fmt.Fprintf(sb, "      %s\n", ind.Explanation)
			}
		}
		sb.WriteString("\n")
	}

	if len(det.Techniques) > 0 {
		sb.WriteString("  Potential techniques:\n")
		mark := w.paint(color.FgYellow)("[!]")
		for _, t := range det.Techniques {
			fmt.Fprintf(sb, "    %s %s\n", mark, t)
		}
		sb.WriteString("\n")
	}

	if len(report.Metadata) > 0 && w.verbose {
		sb.WriteString("  Metadata:\n")
		for _, line := range strings.Split(strings.TrimRight(metadata.Render(report.Metadata), "\n"), "\n") {
			fmt.Fprintf(sb, "    %s\n", truncateString(line, ruleWidth-4))
		}
		sb.WriteString("\n")
	}
}

// writeAttempts writes the ranked decoder attempts.
func (w *SimpleWriter) writeAttempts(sb *strings.Builder, report *model.ImageReport) {
	if report.DecodeSkipped {
		section(sb, "DECODING")
		sb.WriteString("  Skipped: likelihood below the decode threshold\n\n")
		return
	}
	if len(report.Attempts) == 0 {
		return
	}

	section(sb, "DECODING")

	success := w.paint(color.FgGreen)("[+]")
	failure := w.paint(color.FgRed)("[-]")

	shown := 0
	for _, a := range report.Attempts {
		if !a.Success && !w.verbose {
			continue
		}
		shown++
		mark := failure
		if a.Success {
			mark = success
		}
		fmt.Fprintf(sb, "  %s %-32s confidence %5.1f%%  %d bytes\n", mark, a.Method, a.Confidence*100, a.DataSize())
		if a.Success && a.DataSize() > 0 {
			fmt.Fprintf(sb, "      preview: %s\n", a.PrintablePreview())
		}
		for _, art := range a.Artifacts {
			fmt.Fprintf(sb, "      %s %s: %s\n", w.severityLabel(art.Severity), art.Kind, art.Value)
		}
		if reason := a.Info["error"]; reason != "" {
			fmt.Fprintf(sb, "      error: %s\n", reason)
		}
	}

	if shown == 0 {
		fmt.Fprintf(sb, "  No hidden data recovered (%d attempts)\n", len(report.Attempts))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	rule(sb, "=")
	sb.WriteString("Report generated by stegscan\n")
	rule(sb, "=")
}

// WriteRecords outputs stored records as an aligned table.
func (w *SimpleWriter) WriteRecords(records []model.AnalysisRecord) (int, error) {
	var sb strings.Builder

	if len(records) == 0 {
		sb.WriteString("No analysis records found.\n")
		return io.WriteString(w.output, sb.String())
	}

	fmt.Fprintf(&sb, "%-6s %-19s %-28s %-6s %10s %8s %11s\n",
		"ID", "Created", "File", "Type", "Size", "Entropy", "Likelihood")
	for _, r := range records {
		likelihood := fmt.Sprintf("%10.1f%%", r.Likelihood*100)
		fmt.Fprintf(&sb, "%-6d %-19s %-28s %-6s %10d %8.4f %s\n",
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			truncateString(r.Filename, 28),
			r.FileType,
			r.FileSize,
			r.EntropyValue,
			w.paint(bandColor(model.BandOf(r.Likelihood)))(likelihood),
		)
	}

	return io.WriteString(w.output, sb.String())
}
