package toolchain

import "errors"

var (
	// ErrUnavailable indicates the tool binary could not be found.
	ErrUnavailable = errors.New("tool unavailable")

	// ErrTimedOut indicates the tool exceeded the configured timeout.
	ErrTimedOut = errors.New("tool timed out")

	// ErrFailed indicates the tool exited with a non-zero status.
	ErrFailed = errors.New("tool failed")

	// ErrEmptyCommand is returned when no tool name is given.
	ErrEmptyCommand = errors.New("empty tool command")

	// ErrUnsupportedTool is returned when a tool cannot perform the requested operation.
	ErrUnsupportedTool = errors.New("unsupported tool for this operation")
)
