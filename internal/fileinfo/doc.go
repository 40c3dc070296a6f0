// Package fileinfo describes a file independent of its pixels: size,
// format, byte entropy, SHA3-256 digest, byte frequencies, printable
// strings and a hex preview.
package fileinfo
