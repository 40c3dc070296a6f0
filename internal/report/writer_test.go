package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/stegscan/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport(t *testing.T) *model.ImageReport {
	t.Helper()

	report := model.NewImageReport("images/cat.png")
	report.File = &model.FileInfo{
		Name:    "cat.png",
		Size:    2048,
		Type:    "png",
		Entropy: 7.25,
		Digest:  "deadbeef",
	}
	report.Metadata = map[string]string{"Comment": "hello"}

	det := model.NewDetectionResult()
	indicators := []model.Indicator{
		{Name: model.IndicatorLSB, Value: 0.9, Weight: 1.5, Explanation: "LSB plane randomness"},
		{Name: model.IndicatorMetadata, Value: 0.8, Weight: 0.8},
		{Name: model.IndicatorHistogram, Value: 0.1, Weight: 1.0},
	}
	for _, ind := range indicators {
		if err := det.AddIndicator(ind); err != nil {
			t.Fatalf("AddIndicator() error = %v", err)
		}
	}
	if _, err := det.CalculateOverallLikelihood(); err != nil {
		t.Fatalf("CalculateOverallLikelihood() error = %v", err)
	}
	det.GenerateExplanation()
	det.DeterminePotentialTechniques()
	report.Detection = det

	report.Attempts = []model.DecoderAttempt{
		{
			Method:     "LSB (Channel: 2, Bit: 0)",
			Success:    true,
			Confidence: 0.8,
			Data:       []byte("secret message"),
			Artifacts:  []model.Artifact{model.NewArtifact(model.ArtifactEmail, "alice@example.com")},
		},
		model.NewFailedAttempt("Steghide", 0, "steghide not found in PATH"),
	}
	report.FinishedAt = report.StartedAt.Add(time.Second)
	return report
}

func sampleRecords() []model.AnalysisRecord {
	return []model.AnalysisRecord{
		{ID: 2, Filename: "b.png", FileSize: 10, FileType: "png", EntropyValue: 1.5, Likelihood: 0.75, CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{ID: 1, Filename: "a.jpg", FileSize: 20, FileType: "jpeg", EntropyValue: 7.9, Likelihood: 0.05, CreatedAt: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)},
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and detection", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false))
		if _, err := w.Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"STEGSCAN REPORT",
			"images/cat.png",
			"deadbeef",
			"DETECTION",
			model.IndicatorLSB,
			"Strong",
			model.TechniqueLSB,
			"DECODING",
			"secret message",
			"[MEDIUM] email_address: alice@example.com",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "\x1b[") {
			t.Error("expected no ANSI escapes with colour disabled")
		}
	})

	t.Run("hides failed attempts unless verbose", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		if _, err := NewSimpleWriter(&quiet, WithColor(false)).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if _, err := NewSimpleWriter(&verbose, WithColor(false), WithVerbose(true)).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}

		if strings.Contains(quiet.String(), "not found in PATH") {
			t.Error("quiet output should hide failed attempts")
		}
		if !strings.Contains(verbose.String(), "not found in PATH") {
			t.Error("verbose output should show failed attempts")
		}
		if !strings.Contains(verbose.String(), "Comment: hello") {
			t.Error("verbose output should show metadata")
		}
	})

	t.Run("colour enabled", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(true)).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\x1b[") {
			t.Error("expected ANSI escapes with colour enabled")
		}
	})

	t.Run("skipped decode", func(t *testing.T) {
		t.Parallel()

		report := createTestReport(t)
		report.Attempts = nil
		report.DecodeSkipped = true

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(false)).Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Skipped") {
			t.Error("expected skipped notice")
		}
	})

	t.Run("error status", func(t *testing.T) {
		t.Parallel()

		report := model.NewImageReport("missing.png")
		report.Detection = model.ErrorResult(errors.New("file not found"))

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(false)).Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "ERROR - file not found") {
			t.Errorf("expected error status, got:\n%s", buf.String())
		}
	})

	t.Run("records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(false)).WriteRecords(sampleRecords()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "b.png") || !strings.Contains(output, "75.0%") {
			t.Errorf("unexpected records output:\n%s", output)
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf).WriteRecords(nil); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No analysis records") {
			t.Error("expected empty notice")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded["path"] != "images/cat.png" {
			t.Errorf("path = %v", decoded["path"])
		}
		if strings.Contains(buf.String(), "\n  ") {
			t.Error("compact output should not be indented")
		}
		if !strings.Contains(buf.String(), `"data_preview":"secret message"`) {
			t.Error("attempt should carry a data preview")
		}
		if !strings.Contains(buf.String(), `"kind":"email_address","value":"alice@example.com","severity":"MEDIUM"`) {
			t.Error("attempt should carry its artifacts")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  \"path\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("records array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteRecords(nil); err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("WriteRecords(nil) = %q, want []", buf.String())
		}
	})

	t.Run("version wrapper", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}

		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" {
			t.Errorf("Version = %q", decoded.Version)
		}
		if decoded.Summary == nil || decoded.Summary.SuccessfulAttempts != 1 {
			t.Errorf("Summary = %+v", decoded.Summary)
		}
		if decoded.Summary.Band == "" {
			t.Error("Summary.Band should be set")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Stegscan Report",
			"## Detection",
			"| Indicator",
			"```mermaid",
			"Weighted Indicator Contributions",
			"## Potential Techniques",
			"## Decoding",
			"LSB (Channel: 2, Bit: 0)",
			"## Payload Artifacts",
			"alice@example.com",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteRecords(sampleRecords()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "# Analysis History") || !strings.Contains(buf.String(), "a.jpg") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewJSONWriter(&a), NewSimpleWriter(&b, WithColor(false)))

	n, err := WriteAll(mw, []*model.ImageReport{createTestReport(t), nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != a.Len()+b.Len() {
		t.Errorf("WriteAll() = %d, want %d", n, a.Len()+b.Len())
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "this is too long", max: 10, want: "this is..."},
		{in: "abcdef", max: 2, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
