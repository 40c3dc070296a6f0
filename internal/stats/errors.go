package stats

import "errors"

var (
	// ErrTooFewSamples is returned when a test needs more observations than given.
	ErrTooFewSamples = errors.New("too few samples: need at least 3")

	// ErrTooManySamples is returned when the Shapiro-Wilk approximation would be out of range.
	ErrTooManySamples = errors.New("too many samples: Shapiro-Wilk supports at most 5000")

	// ErrDegenerateSample is returned for constant input or input containing NaN.
	ErrDegenerateSample = errors.New("degenerate sample: zero range or NaN values")
)
