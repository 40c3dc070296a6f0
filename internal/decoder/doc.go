// Package decoder tries to recover hidden payloads from an image.
//
// BruteForce enumerates a fixed, bounded set of hypotheses:
//
//  1. single-bit LSB for the red, green and blue channels, bit planes 0 and 1
//  2. two-bit LSB for each colour channel
//  3. encoded data in free-text metadata fields
//  4. steghide and then outguess, each over the password list
//
// Every hypothesis yields a model.DecoderAttempt scored by
// AssessDataValidity. The report is sorted by descending confidence with
// ties kept in enumeration order. Missing tools and tool errors become
// failed attempts; they never abort the run. Payloads of successful
// attempts are labelled by the artifact scanner before ranking.
package decoder
