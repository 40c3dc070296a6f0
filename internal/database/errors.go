package database

import "errors"

var (
	// ErrRecordNotFound is returned when no record has the requested id.
	ErrRecordNotFound = errors.New("analysis record not found")

	// ErrDatabaseNotFound is returned when the database file does not exist
	// and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrNilRecord is returned when Save is called without a record.
	ErrNilRecord = errors.New("record must not be nil")
)
