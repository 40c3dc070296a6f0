package model

import (
	"time"

	"github.com/google/uuid"
)

// FileInfo describes the analyzed file independent of its pixels.
type FileInfo struct {
	// Name is the base file name.
	Name string `json:"name"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Type is the decoded image format, or a sniffed MIME subtype.
	Type string `json:"type"`

	// Entropy is the byte entropy of the whole file.
	Entropy float64 `json:"entropy"`

	// Digest is the hex SHA3-256 digest of the file.
	Digest string `json:"digest"`

	// TopBytes lists the most frequent byte values, most frequent first.
	TopBytes []ByteCount `json:"top_bytes,omitempty"`
}

// ByteCount is a byte value and its number of occurrences.
type ByteCount struct {
	Value byte `json:"value"`
	Count int  `json:"count"`
}

// ImageReport accumulates everything the pipeline learns about one image.
type ImageReport struct {
	// RunID uniquely identifies this analysis run.
	RunID string `json:"run_id"`

	// Path is the image path as given by the user.
	Path string `json:"path"`

	// File holds file-level information.
	File *FileInfo `json:"file,omitempty"`

	// Metadata holds the extracted metadata fields.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Detection is the detection result.
	Detection *DetectionResult `json:"detection,omitempty"`

	// Attempts is the ranked brute-force report. Empty when decoding did not run.
	Attempts []DecoderAttempt `json:"attempts,omitempty"`

	// DecodeSkipped is true when the likelihood stayed below the decode threshold.
	DecodeSkipped bool `json:"decode_skipped,omitempty"`

	// RecordID is the record store id, or zero when not persisted.
	RecordID int64 `json:"record_id,omitempty"`

	// PerformedSteps lists pipeline steps in execution order.
	PerformedSteps []string `json:"performed_steps"`

	// StartedAt is when the pipeline started on this image.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last step finished.
	FinishedAt time.Time `json:"finished_at"`

	// Error is the last step error, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewImageReport creates a report for the image at path.
func NewImageReport(path string) *ImageReport {
	return &ImageReport{
		RunID:          uuid.New().String(),
		Path:           path,
		PerformedSteps: make([]string, 0),
		StartedAt:      time.Now(),
	}
}

// SuccessfulAttempts returns the attempts flagged as successful, in rank order.
func (r *ImageReport) SuccessfulAttempts() []DecoderAttempt {
	out := make([]DecoderAttempt, 0)
	for _, a := range r.Attempts {
		if a.Success {
			out = append(out, a)
		}
	}
	return out
}

// BestAttempt returns the highest ranked attempt.
func (r *ImageReport) BestAttempt() (DecoderAttempt, bool) {
	if len(r.Attempts) == 0 {
		return DecoderAttempt{}, false
	}
	return r.Attempts[0], true
}

// Likelihood returns the detection likelihood, or zero without a detection.
func (r *ImageReport) Likelihood() float64 {
	if r.Detection == nil {
		return 0
	}
	return r.Detection.Likelihood
}

// Duration returns the elapsed analysis time.
func (r *ImageReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
