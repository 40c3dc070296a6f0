// Package toolchain runs the third-party command line tools the analyzer
// can delegate to: exiftool for metadata, binwalk for signature scans and
// steghide/outguess for password-based payload extraction.
//
// Every invocation is bounded by a timeout and reports an explicit Outcome
// (OK, Unavailable, TimedOut or Failed) instead of an error, so callers can
// degrade gracefully when a tool is missing or misbehaves.
package toolchain
