package metadata

import (
	"context"
	"sort"
	"strings"
)

// Status is the result variant of an extraction.
type Status int

const (
	// StatusOK means at least one field was extracted.
	StatusOK Status = iota

	// StatusNoMetadata means extraction worked but the file carries no fields.
	StatusNoMetadata

	// StatusFailed means extraction could not be performed.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoMetadata:
		return "no_metadata"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one extraction.
type Result struct {
	// Fields maps tag names to their textual values.
	Fields map[string]string

	// Source names the extractor that produced the fields.
	Source string

	// Status is the result variant.
	Status Status

	// Reason explains a failed extraction.
	Reason string
}

// OK reports whether extraction was performed, with or without fields.
func (r Result) OK() bool {
	return r.Status != StatusFailed
}

// Extractor reads metadata from an image file.
type Extractor interface {
	// Extract returns the metadata of the file at path.
	Extract(ctx context.Context, path string) Result
}

// newResult builds a Result and picks OK or NoMetadata from the field count.
func newResult(source string, fields map[string]string) Result {
	status := StatusOK
	if len(fields) == 0 {
		status = StatusNoMetadata
	}
	return Result{
		Fields: fields,
		Source: source,
		Status: status,
	}
}

// failed builds a failed Result.
func failed(source, reason string) Result {
	return Result{
		Fields: map[string]string{},
		Source: source,
		Status: StatusFailed,
		Reason: reason,
	}
}

// Render formats fields as "Key: Value" lines sorted by key, the textual
// form the metadata indicator scans.
func Render(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(fields[k])
		b.WriteByte('\n')
	}
	return b.String()
}

// NormalizeKey lower-cases a tag name and strips spaces, so "User Comment"
// and "UserComment" compare equal.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, " ", ""))
}

// Lookup finds a field by normalized name.
func Lookup(fields map[string]string, name string) (string, bool) {
	want := NormalizeKey(name)
	if v, ok := fields[name]; ok {
		return v, true
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if NormalizeKey(k) == want {
			return fields[k], true
		}
	}
	return "", false
}
