// Package artifact recognizes notable content in payloads recovered by
// the decoder: key material, credentials, PGP blocks, contact details,
// links and cryptocurrency addresses.
//
// A Scanner runs a fixed table of regular expressions over the payload
// bytes and returns model.Artifact values tagged with a severity. Secret
// material is never copied whole into an artifact; PEM and PGP blocks
// are reduced to their header line and tokens to a short prefix.
package artifact
