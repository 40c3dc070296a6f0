package model

import (
	"encoding/json"
	"unicode"
)

// previewSize is the number of leading payload bytes shown in previews.
const previewSize = 100

// DecoderAttempt records one extraction hypothesis tried by the brute-force
// decoder, whether it produced anything or not.
type DecoderAttempt struct {
	// Method describes the hypothesis, e.g. "LSB (Channel: 2, Bit: 0)".
	Method string `json:"method"`

	// Success is true when the attempt is considered to have found data.
	Success bool `json:"success"`

	// Confidence is the plausibility of the extracted data, in [0, 1].
	Confidence float64 `json:"confidence"`

	// Data is the extracted payload, if any.
	Data []byte `json:"-"`

	// Info carries method-specific details such as the channel used or
	// the error reported by an external tool.
	Info map[string]string `json:"info,omitempty"`

	// Artifacts lists recognizable content found in Data.
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// NewFailedAttempt returns an unsuccessful attempt with the error recorded
// under info["error"].
func NewFailedAttempt(method string, confidence float64, reason string) DecoderAttempt {
	return DecoderAttempt{
		Method:     method,
		Confidence: confidence,
		Info:       map[string]string{"error": reason},
	}
}

// DataSize returns the payload length in bytes.
func (a DecoderAttempt) DataSize() int {
	return len(a.Data)
}

// DataPreview returns at most the first 100 payload bytes.
func (a DecoderAttempt) DataPreview() []byte {
	if len(a.Data) <= previewSize {
		return a.Data
	}
	return a.Data[:previewSize]
}

// PrintablePreview renders DataPreview with non-printable bytes as '.'.
func (a DecoderAttempt) PrintablePreview() string {
	preview := a.DataPreview()
	out := make([]rune, len(preview))
	for i, b := range preview {
		r := rune(b)
		if b < 0x80 && unicode.IsPrint(r) {
			out[i] = r
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

// MarshalJSON adds data_preview and data_size instead of the raw payload.
func (a DecoderAttempt) MarshalJSON() ([]byte, error) {
	type alias DecoderAttempt
	return json.Marshal(struct {
		alias
		DataPreview string `json:"data_preview,omitempty"`
		DataSize    int    `json:"data_size"`
	}{
		alias:       alias(a),
		DataPreview: a.PrintablePreview(),
		DataSize:    a.DataSize(),
	})
}
