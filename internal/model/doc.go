// Package model defines the core data structures used throughout stegscan.
//
// This package contains the following main types:
//   - ImageReport: everything learned about one image in a single run
//   - DetectionResult: weighted indicators and the overall likelihood
//   - DecoderAttempt: one extraction hypothesis and what it recovered
//   - Artifact: notable content found inside a recovered payload
//   - AnalysisRecord: the persisted summary of an analyzed file
//
// Models live in their own package so that detect, decoder, pipeline,
// report and database can share them without import cycles. All of
// them serialize to JSON for report output and storage.
package model
