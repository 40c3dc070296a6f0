// Package pipeline runs the analysis of an image as a sequence of steps.
//
// The default pipeline inspects the file, runs the detector, runs the
// brute-force decoder when the likelihood exceeds the decode threshold
// (or when decoding is forced) and finally persists a record. Each step
// receives the accumulated ImageReport and adds to it.
//
// BatchProcessor analyzes many images concurrently using errgroup. Every
// image gets a fresh pipeline, so no detector or decoder state is shared
// between images.
package pipeline
