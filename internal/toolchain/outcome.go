package toolchain

import (
	"fmt"
	"time"
)

// Status is the result variant of a tool invocation.
type Status int

const (
	// StatusOK means the tool ran and exited successfully.
	StatusOK Status = iota

	// StatusUnavailable means the tool binary is not installed.
	StatusUnavailable

	// StatusTimedOut means the tool was killed after the timeout.
	StatusTimedOut

	// StatusFailed means the tool ran but reported an error.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusTimedOut:
		return "timed_out"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one tool invocation.
type Outcome struct {
	// Tool is the tool that was invoked.
	Tool Tool

	// Status is the result variant.
	Status Status

	// Output is the process stdout. For payload extraction it holds the
	// extracted payload instead.
	Output []byte

	// Stderr is the captured standard error text.
	Stderr string

	// Reason explains a non-OK status.
	Reason string

	// Duration is the wall time of the invocation.
	Duration time.Duration
}

// OK reports whether the tool succeeded.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// Err converts a non-OK outcome to an error wrapping the matching sentinel.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusOK:
		return nil
	case StatusUnavailable:
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, o.Tool, o.Reason)
	case StatusTimedOut:
		return fmt.Errorf("%w: %s: %s", ErrTimedOut, o.Tool, o.Reason)
	default:
		return fmt.Errorf("%w: %s: %s", ErrFailed, o.Tool, o.Reason)
	}
}
