// Package stats provides the signal primitives used by the steganalysis
// indicators: Shannon entropy, bit-plane extraction, run counting, bit-pair
// distributions, correlation, histogram inequality and the Shapiro-Wilk
// normality test.
//
// All functions are pure. Functions that sample take an explicit
// *rand.Rand so callers can reproduce results with a fixed seed.
package stats
