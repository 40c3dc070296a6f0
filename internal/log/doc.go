// Package log provides secure logging built on top of log/slog.
//
// SecureHandler wraps any slog.Handler and masks sensitive attributes
// before they are written:
//   - passwords and passphrases tried during brute-force decoding
//   - recovered payload bytes and previews
//   - key material such as private keys and PGP blocks
//   - tokens and credentials that may appear in tool output
//
// Masking also applies in verbose mode, so debug logs can be shared
// without leaking the passphrase that unlocked a payload.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("trying passphrase", "tool", "steghide", "password", pw)
//	// password=***REDACTED***
//
//	slog.SetDefault(logger)
package log
