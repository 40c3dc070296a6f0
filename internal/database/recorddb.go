package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/stegscan/internal/model"
)

const (
	// FileName is the database file created inside the data directory.
	FileName = "stegscan.db"

	// DefaultRecentLimit is the number of records Recent returns by default.
	DefaultRecentLimit = 10

	// timestampLayout is the layout used for created_at values.
	timestampLayout = "2006-01-02 15:04:05.000"
)

// RecordDB stores analysis records in SQLite.
type RecordDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RecordDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the record database in dbDir.
func Open(dbDir string, opts Options) (*RecordDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RecordDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RecordDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RecordDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RecordDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		file_type TEXT,
		entropy_value REAL,
		metadata_json TEXT,
		digest TEXT,
		likelihood REAL DEFAULT 0,
		report_json TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_created ON analysis_records(created_at);
	CREATE INDEX IF NOT EXISTS idx_records_digest ON analysis_records(digest);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// Save appends a record and fills in its ID and CreatedAt.
func (rdb *RecordDB) Save(ctx context.Context, record *model.AnalysisRecord) (int64, error) {
	if record == nil {
		return 0, ErrNilRecord
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.MetadataJSON == "" {
		record.MetadataJSON = "{}"
	}

	query := `
	INSERT INTO analysis_records
		(filename, file_size, file_type, entropy_value, metadata_json, digest, likelihood, report_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		record.Filename,
		record.FileSize,
		record.FileType,
		record.EntropyValue,
		record.MetadataJSON,
		record.Digest,
		record.Likelihood,
		record.ReportJSON,
		record.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read record id: %w", err)
	}
	record.ID = id
	return id, nil
}

const selectColumns = `
	SELECT id, filename, file_size, file_type, entropy_value, metadata_json,
		digest, likelihood, report_json, created_at
	FROM analysis_records
`

// Get returns the record with the given id.
func (rdb *RecordDB) Get(ctx context.Context, id int64) (*model.AnalysisRecord, error) {
	row := rdb.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis record: %w", err)
	}
	return record, nil
}

// Recent returns up to limit records, newest first. A non-positive limit
// means DefaultRecentLimit.
func (rdb *RecordDB) Recent(ctx context.Context, limit int) ([]model.AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return rdb.query(ctx, selectColumns+" ORDER BY created_at DESC, id DESC LIMIT ?", limit)
}

// FindByDigest returns every record of files with the given digest, newest first.
func (rdb *RecordDB) FindByDigest(ctx context.Context, digest string) ([]model.AnalysisRecord, error) {
	return rdb.query(ctx, selectColumns+" WHERE digest = ? ORDER BY created_at DESC, id DESC", digest)
}

// Count returns the number of stored records.
func (rdb *RecordDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := rdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analysis_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count analysis records: %w", err)
	}
	return n, nil
}

func (rdb *RecordDB) query(ctx context.Context, query string, args ...any) ([]model.AnalysisRecord, error) {
	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis records: %w", err)
	}
	defer rows.Close()

	records := make([]model.AnalysisRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.AnalysisRecord, error) {
	var (
		record    model.AnalysisRecord
		fileType  sql.NullString
		metadata  sql.NullString
		digest    sql.NullString
		report    sql.NullString
		entropy   sql.NullFloat64
		timestamp string
	)

	if err := row.Scan(
		&record.ID,
		&record.Filename,
		&record.FileSize,
		&fileType,
		&entropy,
		&metadata,
		&digest,
		&record.Likelihood,
		&report,
		&timestamp,
	); err != nil {
		return nil, err
	}

	record.FileType = fileType.String
	record.EntropyValue = entropy.Float64
	record.MetadataJSON = metadata.String
	record.Digest = digest.String
	record.ReportJSON = report.String
	record.CreatedAt = parseTimestamp(timestamp)
	return &record, nil
}

// RecordFromReport builds a record from a finished image report.
func RecordFromReport(report *model.ImageReport) (*model.AnalysisRecord, error) {
	record := &model.AnalysisRecord{
		Filename:     filepath.Base(report.Path),
		MetadataJSON: "{}",
		Likelihood:   report.Likelihood(),
	}

	if report.File != nil {
		record.Filename = report.File.Name
		record.FileSize = report.File.Size
		record.FileType = report.File.Type
		record.EntropyValue = report.File.Entropy
		record.Digest = report.File.Digest
	}

	if len(report.Metadata) > 0 {
		data, err := json.Marshal(report.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize metadata: %w", err)
		}
		record.MetadataJSON = string(data)
	}

	if report.Detection != nil {
		data, err := json.Marshal(report.Detection)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize detection result: %w", err)
		}
		record.ReportJSON = string(data)
	}

	return record, nil
}

// DecodeMetadata parses a record's metadata JSON.
func DecodeMetadata(record *model.AnalysisRecord) (map[string]string, error) {
	fields := make(map[string]string)
	if record.MetadataJSON == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(record.MetadataJSON), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return fields, nil
}

// DecodeDetection parses a record's detection JSON. It returns nil when
// the record carries no detection result.
func DecodeDetection(record *model.AnalysisRecord) (*model.DetectionResult, error) {
	if record.ReportJSON == "" {
		return nil, nil //nolint:nilnil // absence of a stored result is not an error
	}
	var result model.DetectionResult
	if err := json.Unmarshal([]byte(record.ReportJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse detection result: %w", err)
	}
	return &result, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp tries each known format and returns the zero time if
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
