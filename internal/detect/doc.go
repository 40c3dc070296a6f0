// Package detect estimates how likely an image is to carry hidden data.
//
// A Detector runs seven statistical indicators over the pixel matrix and
// the file's metadata, scales every raw score with a logistic curve and
// combines them into a weighted mean:
//
//	LSB Analysis          weight 1.5
//	Histogram Analysis    weight 1.2
//	Noise Analysis        weight 1.0
//	Chi-Square Test       weight 1.3
//	Metadata Analysis     weight 0.8
//	Sample Pair Analysis  weight 1.1
//	RGB Correlation       weight 1.0
//
// Noise, sample pair and RGB correlation draw random samples. The random
// source is injected, so a fixed seed reproduces a result exactly. A
// Detector is not safe for concurrent use; create one per image.
package detect
