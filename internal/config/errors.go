package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidTimeout is returned when the tool timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid tool timeout: must be positive")

	// ErrInvalidThreshold is returned when the decode threshold is outside [0, 1].
	ErrInvalidThreshold = errors.New("invalid decode threshold: must be between 0 and 1")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidBoost is returned when the likelihood boost is not positive.
	ErrInvalidBoost = errors.New("invalid boost: must be positive")

	// ErrInvalidSteepness is returned when the logistic steepness is not positive.
	ErrInvalidSteepness = errors.New("invalid steepness: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownTool is returned when a binary path is configured for a tool
	// stegscan does not run.
	ErrUnknownTool = errors.New("unknown external tool")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
