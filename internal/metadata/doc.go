// Package metadata extracts textual metadata (EXIF tags, PNG text chunks,
// JPEG comments, XMP packets) from image files.
//
// Two extractors are provided. ExiftoolExtractor delegates to the exiftool
// binary through the toolchain runner and sees everything exiftool knows
// about. NativeExtractor parses EXIF with go-exif and walks PNG and JPEG
// containers itself, so analysis still works on machines without exiftool.
// Chain combines both, preferring exiftool.
//
// Extractors never return errors. Failures are reported through
// Result.Status so the detection and decoding stages can degrade to
// neutral scores.
package metadata
