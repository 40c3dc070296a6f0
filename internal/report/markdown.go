package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/stegscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation
// and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the image report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ImageReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeDetection(md, report)
	w.writeAttempts(md, report)
	w.writeArtifacts(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with file information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ImageReport) {
	md.H1("Stegscan Report")
	md.PlainText("")

	rows := [][]string{
		{"Image", "`" + report.Path + "`"},
	}
	if f := report.File; f != nil {
		rows = append(rows,
			[]string{"Type", f.Type},
			[]string{"Size", strconv.FormatInt(f.Size, 10) + " bytes"},
			[]string{"Entropy", fmt.Sprintf("%.4f bits/byte", f.Entropy)},
			[]string{"SHA3-256", "`" + f.Digest + "`"},
		)
	}
	rows = append(rows,
		[]string{"Analyzed", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Status", statusText(report)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusText returns the status text based on report state.
func statusText(report *model.ImageReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	if report.Detection != nil && report.Detection.Failed() {
		return "❌ Error - " + report.Detection.Error
	}
	return "✅ Complete"
}

// writeDetection writes the likelihood, indicator table, chart and alert.
func (w *MarkdownWriter) writeDetection(md *markdown.Markdown, report *model.ImageReport) {
	det := report.Detection
	if det == nil {
		return
	}

	md.H2("Detection")
	md.PlainText("")
	md.PlainTextf("**Likelihood:** %s (%s)", det.FormattedLikelihood(), det.Band())
	md.PlainText("")
	md.PlainText(det.Explanation)
	md.PlainText("")

	if len(det.Indicators) > 0 {
		rows := make([][]string, len(det.Indicators))
		for i, ind := range det.Indicators {
			rows[i] = []string{
				ind.Name,
				fmt.Sprintf("%.1f%%", ind.Value*100),
				strconv.FormatFloat(ind.Weight, 'f', 2, 64),
				ind.Strength().String(),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Indicator", "Value", "Weight", "Strength"},
			Rows:   rows,
		})
		md.PlainText("")

		w.writePieChart(md, det)
	}

	w.writeAlert(md, det)

	if len(det.Techniques) > 0 {
		md.H2("Potential Techniques")
		md.PlainText("")
		md.BulletList(det.Techniques...)
		md.PlainText("")
	}

	for i, ind := range det.Indicators {
		if ind.Explanation != "" && i < len(det.DetailedFindings) {
			md.Details(ind.Name, det.DetailedFindings[i]+". "+ind.Explanation)
		}
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of weighted indicator
// contributions. Values are in thousandths of the total weighted score.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, det *model.DetectionResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Weighted Indicator Contributions"),
		piechart.WithShowData(true),
	)

	added := 0
	for _, ind := range det.Indicators {
		v := uint64(math.Round(ind.Contribution() * 1000))
		if v == 0 {
			continue
		}
		chart.LabelAndIntValue(ind.Name, v)
		added++
	}
	if added == 0 {
		return
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the likelihood band.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, det *model.DetectionResult) {
	switch {
	case det.Failed():
		md.Cautionf("Analysis failed: %s", det.Error)
	case det.Likelihood >= 0.8:
		md.Cautionf("Very strong evidence of hidden data (%s).", det.FormattedLikelihood())
	case det.Band() == model.BandHigh:
		md.Warningf("High likelihood of hidden data (%s).", det.FormattedLikelihood())
	case det.Band() == model.BandElevated:
		md.Importantf("Possible hidden data (%s). Consider running the decoder.", det.FormattedLikelihood())
	case det.Likelihood >= 0.1:
		md.Note("Minor irregularities detected, likely from normal image processing.")
	default:
		md.Tip("No significant indicators of steganography detected.")
	}
	md.PlainText("")
}

// writeAttempts writes the ranked decoder attempts.
func (w *MarkdownWriter) writeAttempts(md *markdown.Markdown, report *model.ImageReport) {
	if !report.DecodeSkipped && len(report.Attempts) == 0 {
		return
	}

	md.H2("Decoding")
	md.PlainText("")

	if report.DecodeSkipped {
		md.PlainText("Skipped: likelihood below the decode threshold.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Attempts))
	for i, a := range report.Attempts {
		result := "-"
		if a.Success {
			result = "✅"
		}
		preview := a.PrintablePreview()
		if preview == "" {
			preview = a.Info["error"]
		}
		if preview == "" {
			preview = "-"
		}
		rows[i] = []string{
			a.Method,
			result,
			fmt.Sprintf("%.1f%%", a.Confidence*100),
			strconv.Itoa(a.DataSize()),
			"`" + truncateString(preview, 40) + "`",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Method", "Success", "Confidence", "Bytes", "Preview"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeArtifacts lists the artifacts found in recovered payloads.
func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, report *model.ImageReport) {
	var rows [][]string
	for _, a := range report.Attempts {
		for _, art := range a.Artifacts {
			rows = append(rows, []string{art.Severity.String(), art.Kind, "`" + art.Value + "`", a.Method})
		}
	}
	if len(rows) == 0 {
		return
	}

	md.H2("Payload Artifacts")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Kind", "Value", "Method"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [stegscan](https://github.com/nao1215/stegscan)*")
}

// WriteRecords outputs stored records as a Markdown table.
func (w *MarkdownWriter) WriteRecords(records []model.AnalysisRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Analysis History")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No analysis records found.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Filename,
			r.FileType,
			strconv.FormatInt(r.FileSize, 10),
			fmt.Sprintf("%.4f", r.EntropyValue),
			fmt.Sprintf("%.1f%%", r.Likelihood*100),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Created", "File", "Type", "Size", "Entropy", "Likelihood"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}
