package metadata

import "errors"

var (
	// ErrTruncatedChunk is returned when a container chunk runs past the end of the file.
	ErrTruncatedChunk = errors.New("truncated chunk")

	// ErrMalformedOutput is returned when exiftool output cannot be parsed.
	ErrMalformedOutput = errors.New("malformed exiftool output")
)
