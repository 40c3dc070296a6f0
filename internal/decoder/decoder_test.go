package decoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nao1215/stegscan/internal/metadata"
	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/pixel"
	"github.com/nao1215/stegscan/internal/toolchain"
)

// fakePayloads is a scripted PayloadExtractor.
type fakePayloads struct {
	mu      sync.Mutex
	calls   []string
	outcome func(tool toolchain.Tool, password string) toolchain.Outcome
}

func (f *fakePayloads) ExtractPayload(_ context.Context, _ string, tool toolchain.Tool, password string) toolchain.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, string(tool)+":"+password)
	f.mu.Unlock()
	return f.outcome(tool, password)
}

func unavailable(tool toolchain.Tool, _ string) toolchain.Outcome {
	return toolchain.Outcome{Tool: tool, Status: toolchain.StatusUnavailable, Reason: string(tool) + " not found in PATH"}
}

// staticExtractor returns a fixed metadata result.
type staticExtractor struct {
	result metadata.Result
}

func (s staticExtractor) Extract(_ context.Context, _ string) metadata.Result {
	return s.result
}

// coverMatrix returns a smooth 16x8 RGB image.
func coverMatrix() *pixel.Matrix {
	m := pixel.New(8, 16, 3)
	for y := range 8 {
		for x := range 16 {
			m.Set(y, x, pixel.Red, uint8(x*10+y))
			m.Set(y, x, pixel.Green, uint8(y*20+x))
			m.Set(y, x, pixel.Blue, uint8(100+x+y))
		}
	}
	return m
}

// embedLSB writes payload MSB-first into bit plane 0 of channel.
func embedLSB(m *pixel.Matrix, channel int, payload []byte) {
	i := 0
	for _, b := range payload {
		for bit := 7; bit >= 0; bit-- {
			off := i*m.Channels + channel
			m.Pix[off] = m.Pix[off]&^1 | (b>>bit)&1
			i++
		}
	}
}

func writeMatrixPNG(t *testing.T, m *pixel.Matrix) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stego.png")
	f, err := os.Create(path) //nolint:gosec // test temp path
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, m.ToImage()); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return path
}

func TestPackBits(t *testing.T) {
	t.Parallel()

	got := PackBits([]uint8{1, 0, 0, 0, 0, 0, 0, 1, 1, 1})
	if !bytes.Equal(got, []byte{0x81}) {
		t.Errorf("PackBits() = %x, want 81", got)
	}
	if len(PackBits([]uint8{1, 1, 1})) != 0 {
		t.Error("expected partial byte to be dropped")
	}
}

func TestDecodeLSB(t *testing.T) {
	t.Parallel()

	t.Run("recovers blue channel payload", func(t *testing.T) {
		t.Parallel()

		payload := []byte("see https://x.io")
		m := coverMatrix()
		embedLSB(m, pixel.Blue, payload)

		attempt := DecodeLSBFile(writeMatrixPNG(t, m), 0, pixel.Blue)

		if !bytes.Equal(attempt.Data, payload) {
			t.Fatalf("expected %q, got %q", payload, attempt.Data)
		}
		if attempt.Method != "LSB (Channel: 2, Bit: 0)" {
			t.Errorf("unexpected method %q", attempt.Method)
		}
		if attempt.Info["total_bits"] != "128" {
			t.Errorf("expected 128 bits, got %s", attempt.Info["total_bits"])
		}
		if !attempt.Success {
			t.Errorf("expected text payload to count as success, confidence %v", attempt.Confidence)
		}
	})

	t.Run("invalid channel and plane fall back", func(t *testing.T) {
		t.Parallel()

		m := coverMatrix()
		tests := []struct {
			plane, channel int
			want           string
		}{
			{0, 3, "LSB (Channel: 0, Bit: 0)"},
			{9, 1, "LSB (Channel: 1, Bit: 0)"},
			{-1, -1, "LSB (Channel: 0, Bit: 0)"},
			{1, 2, "LSB (Channel: 2, Bit: 1)"},
		}
		for _, tt := range tests {
			if got := DecodeLSB(m, tt.plane, tt.channel).Method; got != tt.want {
				t.Errorf("DecodeLSB(%d, %d) method = %q, want %q", tt.plane, tt.channel, got, tt.want)
			}
		}
	})

	t.Run("alpha channel allowed with alpha", func(t *testing.T) {
		t.Parallel()

		m := pixel.New(2, 4, 4)
		if got := DecodeLSB(m, 0, pixel.Alpha).Info["channel"]; got != "3" {
			t.Errorf("expected channel 3, got %s", got)
		}
	})

	t.Run("opaque RGBA image keeps its alpha channel", func(t *testing.T) {
		t.Parallel()

		img := image.NewNRGBA(image.Rect(0, 0, 8, 2))
		for i := range img.Pix {
			img.Pix[i] = 0xFF
		}

		attempt := DecodeLSB(pixel.FromImage(img), 0, pixel.Alpha)
		if attempt.Method != "LSB (Channel: 3, Bit: 0)" {
			t.Errorf("Method = %q, want the alpha channel", attempt.Method)
		}
	})

	t.Run("missing file is a failed attempt", func(t *testing.T) {
		t.Parallel()

		attempt := DecodeLSBFile(filepath.Join(t.TempDir(), "missing.png"), 0, 0)
		if attempt.Success || attempt.Confidence != 0 || attempt.Info["error"] == "" {
			t.Errorf("expected failed attempt with error, got %+v", attempt)
		}
	})
}

func TestDecodeMultiBitLSB(t *testing.T) {
	t.Parallel()

	t.Run("round trip with two bits", func(t *testing.T) {
		t.Parallel()

		payload := []byte("two bits per sample")
		var stream []uint8
		for _, b := range payload {
			for bit := 7; bit >= 0; bit-- {
				stream = append(stream, (b>>bit)&1)
			}
		}

		m := pixel.New(1, len(stream)/2, 3)
		for i := 0; i < len(stream)/2; i++ {
			m.Set(0, i, pixel.Green, stream[2*i]|stream[2*i+1]<<1)
		}

		attempt := DecodeMultiBitLSB(m, 2, pixel.Green)
		if !bytes.Equal(attempt.Data, payload) {
			t.Errorf("expected %q, got %q", payload, attempt.Data)
		}
		if attempt.Method != "Multi-bit LSB (Bits: 2, Channel: 1)" {
			t.Errorf("unexpected method %q", attempt.Method)
		}
	})

	t.Run("out of range bits fall back to two", func(t *testing.T) {
		t.Parallel()

		attempt := DecodeMultiBitLSB(coverMatrix(), 7, 0)
		if attempt.Info["bits"] != "2" {
			t.Errorf("expected 2 bits, got %s", attempt.Info["bits"])
		}
	})

	t.Run("missing channel yields no data", func(t *testing.T) {
		t.Parallel()

		attempt := DecodeMultiBitLSB(coverMatrix(), 2, 3)
		if len(attempt.Data) != 0 || attempt.Success {
			t.Errorf("expected empty unsuccessful attempt, got %+v", attempt)
		}
	})
}

func TestAssessDataValidity(t *testing.T) {
	t.Parallel()

	entropyFive := make([]byte, 64)
	for i := range entropyFive {
		entropyFive[i] = byte(0x80 + i%32)
	}

	tests := []struct {
		name string
		data []byte
		want float64
	}{
		{"too short", []byte("abc"), 0},
		{"png magic", []byte("\x89PNG\r\n\x1a\n\x00\x00"), 0.9},
		{"jpeg magic", []byte("\xFF\xD8\xFF\xE0rest"), 0.9},
		{"zip magic", []byte("PK\x03\x04data"), 0.8},
		{"elf magic", []byte("\x7FELF\x02\x01"), 0.8},
		{"url", []byte("visit https://example"), 0.8},
		{"email", []byte("mail me: ab@example.io"), 0.8},
		{"sentence", []byte("the quick brown fox jumps over lazy dogs"), 0.85},
		{"base64", []byte("SGVsbG8gV29ybGQh"), 0.6},
		{"mid entropy binary", entropyFive, 0.5},
		{"zeros", make([]byte, 100), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AssessDataValidity(tt.data); got != tt.want {
				t.Errorf("AssessDataValidity(%q) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	attempts := []model.DecoderAttempt{
		{Method: "a", Confidence: 0.9},
		{Method: "b", Confidence: 0.2},
		{Method: "c", Confidence: 0.95},
		{Method: "d", Confidence: 0.2},
	}
	Rank(attempts)

	want := []string{"c", "a", "b", "d"}
	for i, w := range want {
		if attempts[i].Method != w {
			t.Errorf("position %d: expected %s, got %s", i, w, attempts[i].Method)
		}
	}
}

func TestExtractMetadataPayload(t *testing.T) {
	t.Parallel()

	encoded := base64.StdEncoding.EncodeToString([]byte("visit https://example.org now"))

	tests := []struct {
		name        string
		result      metadata.Result
		wantConf    float64
		wantSuccess bool
		wantInfo    string
	}{
		{
			name:     "extraction failure",
			result:   metadata.Result{Status: metadata.StatusFailed, Reason: "boom"},
			wantConf: 0, wantInfo: "error",
		},
		{
			name:     "no metadata",
			result:   metadata.Result{Status: metadata.StatusNoMetadata},
			wantConf: 0.1, wantInfo: "error",
		},
		{
			name:     "nothing suspicious",
			result:   metadata.Result{Status: metadata.StatusOK, Fields: map[string]string{"Make": "Canon"}},
			wantConf: 0.2, wantInfo: "examined_fields",
		},
		{
			name:     "base64 comment",
			result:   metadata.Result{Status: metadata.StatusOK, Fields: map[string]string{"Comment": encoded}},
			wantConf: 0.8, wantSuccess: true, wantInfo: "found_fields",
		},
		{
			name: "binary looking field",
			result: metadata.Result{Status: metadata.StatusOK, Fields: map[string]string{
				"Blob": "\x01\x01\x01\x01\x01 aaaaaaaaaaaaaaaaaaaa",
			}},
			wantConf: 0, wantInfo: "found_fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			attempt := ExtractMetadataPayload(tt.result)
			if attempt.Method != MethodMetadata {
				t.Errorf("unexpected method %q", attempt.Method)
			}
			if attempt.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", attempt.Confidence, tt.wantConf)
			}
			if attempt.Success != tt.wantSuccess {
				t.Errorf("success = %v, want %v", attempt.Success, tt.wantSuccess)
			}
			if _, ok := attempt.Info[tt.wantInfo]; !ok {
				t.Errorf("expected info key %q, got %v", tt.wantInfo, attempt.Info)
			}
		})
	}
}

func TestTryTool(t *testing.T) {
	t.Parallel()

	t.Run("unavailable tool is recorded once", func(t *testing.T) {
		t.Parallel()

		fake := &fakePayloads{outcome: unavailable}
		d := NewDecoder(WithPayloadExtractor(fake))

		attempts := d.TryTool(context.Background(), "x.jpg", toolchain.ToolSteghide, DefaultPasswords)
		if len(attempts) != 1 {
			t.Fatalf("expected 1 attempt, got %d", len(attempts))
		}
		if attempts[0].Method != "Steghide" || attempts[0].Info["status"] != "unavailable" {
			t.Errorf("unexpected attempt %+v", attempts[0])
		}
		if attempts[0].Info["error"] == "" {
			t.Error("expected error info")
		}
		if len(fake.calls) != 1 {
			t.Errorf("expected 1 call, got %d", len(fake.calls))
		}
	})

	t.Run("success stops password loop", func(t *testing.T) {
		t.Parallel()

		fake := &fakePayloads{outcome: func(tool toolchain.Tool, password string) toolchain.Outcome {
			if password == "secret" {
				return toolchain.Outcome{Tool: tool, Status: toolchain.StatusOK, Output: []byte{0x00, 0x01, 0x02, 0x03, 0x04}}
			}
			return toolchain.Outcome{Tool: tool, Status: toolchain.StatusFailed, Reason: "wrong passphrase"}
		}}
		d := NewDecoder(WithPayloadExtractor(fake))

		attempts := d.TryTool(context.Background(), "x.jpg", toolchain.ToolOutguess, []string{"", "admin", "secret", "hidden"})
		if len(attempts) != 2 {
			t.Fatalf("expected first failure and success, got %d attempts", len(attempts))
		}
		success := attempts[1]
		if !success.Success || success.Confidence < 0.8 {
			t.Errorf("expected forced confidence >= 0.8, got %+v", success)
		}
		if success.Method != "Outguess" || success.Info["passphrase"] != "secret" {
			t.Errorf("unexpected success attempt %+v", success)
		}
		if len(fake.calls) != 3 {
			t.Errorf("expected 3 calls, got %v", fake.calls)
		}
	})

	t.Run("all failures record only the first", func(t *testing.T) {
		t.Parallel()

		fake := &fakePayloads{outcome: func(tool toolchain.Tool, _ string) toolchain.Outcome {
			return toolchain.Outcome{Tool: tool, Status: toolchain.StatusTimedOut, Reason: "exceeded timeout"}
		}}
		d := NewDecoder(WithPayloadExtractor(fake))

		attempts := d.TryTool(context.Background(), "x.jpg", toolchain.ToolSteghide, []string{"a", "b", "c"})
		if len(attempts) != 1 || attempts[0].Info["status"] != "timed_out" {
			t.Errorf("expected a single timed out attempt, got %+v", attempts)
		}
		if len(fake.calls) != 3 {
			t.Errorf("expected every password to be tried, got %v", fake.calls)
		}
	})
}

func TestBruteForce(t *testing.T) {
	t.Parallel()

	t.Run("empty password list still yields attempts", func(t *testing.T) {
		t.Parallel()

		fake := &fakePayloads{outcome: unavailable}
		d := NewDecoder(
			WithPayloadExtractor(fake),
			WithMetadataExtractor(metadata.NewNativeExtractor(nil)),
		)

		attempts := d.BruteForce(context.Background(), writeMatrixPNG(t, coverMatrix()), []string{})

		// 6 LSB + 3 multi-bit + metadata + one per unavailable tool.
		if len(attempts) != 12 {
			t.Fatalf("expected 12 attempts, got %d", len(attempts))
		}
		for i := 1; i < len(attempts); i++ {
			if attempts[i].Confidence > attempts[i-1].Confidence {
				t.Fatalf("attempts not ranked at %d", i)
			}
		}
		foundMetadata := false
		for _, a := range attempts {
			if a.Method == MethodMetadata {
				foundMetadata = true
			}
		}
		if !foundMetadata {
			t.Error("expected a metadata attempt")
		}
	})

	t.Run("nil password list uses defaults", func(t *testing.T) {
		t.Parallel()

		fake := &fakePayloads{outcome: func(tool toolchain.Tool, _ string) toolchain.Outcome {
			return toolchain.Outcome{Tool: tool, Status: toolchain.StatusFailed, Reason: "no data"}
		}}
		d := NewDecoder(
			WithPayloadExtractor(fake),
			WithMetadataExtractor(staticExtractor{result: metadata.Result{Status: metadata.StatusNoMetadata}}),
		)

		d.BruteForce(context.Background(), writeMatrixPNG(t, coverMatrix()), nil)

		want := 2 * len(DefaultPasswords)
		if len(fake.calls) != want {
			t.Fatalf("expected %d tool calls, got %d", want, len(fake.calls))
		}
		if fake.calls[0] != "steghide:" || fake.calls[len(DefaultPasswords)] != "outguess:" {
			t.Errorf("expected steghide then outguess, got %v", fake.calls)
		}
	})

	t.Run("unreadable image still reports every hypothesis", func(t *testing.T) {
		t.Parallel()

		d := NewDecoder(
			WithPayloadExtractor(&fakePayloads{outcome: unavailable}),
			WithMetadataExtractor(staticExtractor{result: metadata.Result{Status: metadata.StatusFailed, Reason: "unreadable"}}),
		)

		attempts := d.BruteForce(context.Background(), filepath.Join(t.TempDir(), "missing.png"), nil)
		if len(attempts) != 12 {
			t.Fatalf("expected 12 attempts, got %d", len(attempts))
		}
		for _, a := range attempts {
			if a.Success {
				t.Errorf("expected no success, got %+v", a)
			}
		}
	})

	t.Run("labels artifacts in recovered payloads", func(t *testing.T) {
		t.Parallel()

		m := coverMatrix()
		embedLSB(m, pixel.Blue, []byte("see https://x.io"))
		d := NewDecoder(WithPayloadExtractor(&fakePayloads{outcome: unavailable}), WithTools())

		attempts := d.BruteForce(context.Background(), writeMatrixPNG(t, m), nil)

		for _, a := range attempts {
			if a.Method != "LSB (Channel: 2, Bit: 0)" {
				if !a.Success && a.Artifacts != nil {
					t.Errorf("failed attempt %q has artifacts %+v", a.Method, a.Artifacts)
				}
				continue
			}
			if len(a.Artifacts) != 1 || a.Artifacts[0].Kind != model.ArtifactURL || a.Artifacts[0].Value != "https://x.io" {
				t.Errorf("artifacts = %+v, want the embedded URL", a.Artifacts)
			}
			return
		}
		t.Fatal("blue channel attempt missing")
	})

	t.Run("tools can be disabled", func(t *testing.T) {
		t.Parallel()

		fake := &fakePayloads{outcome: unavailable}
		d := NewDecoder(WithPayloadExtractor(fake), WithTools())

		attempts := d.BruteForce(context.Background(), writeMatrixPNG(t, coverMatrix()), nil)
		if len(attempts) != 10 || len(fake.calls) != 0 {
			t.Errorf("expected 10 attempts and no tool calls, got %d and %d", len(attempts), len(fake.calls))
		}
	})
}

func TestToolMethod(t *testing.T) {
	t.Parallel()

	if got := ToolMethod(toolchain.ToolSteghide); got != "Steghide" {
		t.Errorf("ToolMethod() = %q, want Steghide", got)
	}
}

// TestToolMethodConcurrent runs ToolMethod from many goroutines, as
// concurrent brute-force runs in a batch do. Run with -race.
func TestToolMethodConcurrent(t *testing.T) {
	t.Parallel()

	want := map[toolchain.Tool]string{
		toolchain.ToolSteghide: "Steghide",
		toolchain.ToolOutguess: "Outguess",
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		bad []string
	)
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tool := toolchain.ToolSteghide
			if i%2 == 1 {
				tool = toolchain.ToolOutguess
			}
			for range 200 {
				if got := ToolMethod(tool); got != want[tool] {
					mu.Lock()
					bad = append(bad, got)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if len(bad) > 0 {
		t.Errorf("ToolMethod() returned unexpected labels %q", bad)
	}
}
