package model

import "errors"

var (
	// ErrAlreadyFinalized is returned when a DetectionResult is modified or
	// finalized after its overall likelihood has been calculated.
	ErrAlreadyFinalized = errors.New("detection result already finalized")

	// ErrInvalidWeight is returned when an indicator weight is not positive.
	ErrInvalidWeight = errors.New("invalid indicator weight: must be positive")

	// ErrEmptyIndicatorName is returned when an indicator has no name.
	ErrEmptyIndicatorName = errors.New("indicator name must not be empty")
)
