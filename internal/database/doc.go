// Package database provides SQLite-based storage for analysis records.
//
// RecordDB keeps one row per analyzed file in the analysis_records table:
// file name, size, type, byte entropy, extracted metadata as JSON, the
// SHA3-256 digest, the overall likelihood and the full detection result
// as JSON. Records are append-only and can be read by id, by recency or
// by digest.
//
// The database is a single file opened through modernc.org/sqlite, a
// CGO-free driver, with WAL journaling enabled by default.
package database
