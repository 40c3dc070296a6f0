// Package main provides the entry point for the stegscan CLI.
//
// stegscan looks for hidden data in image files. It scores an image with a
// set of statistical indicators, optionally brute-forces common embedding
// schemes, and keeps a history of analyses in a local database.
//
// Usage:
//
//	stegscan analyze <image>...
//	stegscan decode <image>
//	stegscan history [id]
//
// See --help for all available options.
package main

// main is the entry point for stegscan.
func main() {
	Execute()
}
