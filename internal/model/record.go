package model

import "time"

// AnalysisRecord is one persisted analysis. Records are append-only.
type AnalysisRecord struct {
	// ID is assigned by the record store.
	ID int64 `json:"id"`

	// Filename is the base name of the analyzed file.
	Filename string `json:"filename"`

	// FileSize is the file size in bytes.
	FileSize int64 `json:"file_size"`

	// FileType is a short type label such as "png" or "jpeg".
	FileType string `json:"file_type"`

	// EntropyValue is the byte entropy of the whole file.
	EntropyValue float64 `json:"entropy_value"`

	// MetadataJSON is the extracted metadata encoded as a JSON object.
	MetadataJSON string `json:"metadata_json"`

	// Digest is the hex SHA3-256 digest of the file contents.
	Digest string `json:"digest,omitempty"`

	// Likelihood is the overall detection likelihood.
	Likelihood float64 `json:"likelihood"`

	// ReportJSON is the serialized DetectionResult.
	ReportJSON string `json:"report_json,omitempty"`

	// CreatedAt is when the record was stored.
	CreatedAt time.Time `json:"created_at"`
}
