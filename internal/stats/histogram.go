package stats

import "sort"

// Histogram counts the occurrences of each 8-bit value.
func Histogram(values []uint8) [256]float64 {
	var hist [256]float64
	for _, v := range values {
		hist[v]++
	}
	return hist
}

// CountPeaks counts interior bins that are strictly greater than both
// neighbours. The first and last bins are never peaks.
func CountPeaks(hist [256]float64) int {
	peaks := 0
	for i := 1; i < 255; i++ {
		if hist[i] > hist[i-1] && hist[i] > hist[i+1] {
			peaks++
		}
	}
	return peaks
}

// Gini returns the inequality of a histogram.
//
// The bins are sorted, accumulated and normalized to a Lorenz-style curve.
// An evenly spaced ramp on [0,1] is then integrated over that curve with the
// trapezoid rule and mapped by (area - 0.5) * 2. A flat histogram gives a
// value near 0 and a single spike gives a value near 1.
func Gini(hist [256]float64) float64 {
	sorted := make([]float64, len(hist))
	copy(sorted, hist[:])
	sort.Float64s(sorted)

	cumulative := make([]float64, len(sorted))
	var running float64
	for i, v := range sorted {
		running += v
		cumulative[i] = running
	}
	total := cumulative[len(cumulative)-1]
	if total == 0 {
		return 0
	}
	for i := range cumulative {
		cumulative[i] /= total
	}

	last := float64(len(sorted) - 1)
	var area float64
	for i := 1; i < len(cumulative); i++ {
		y0 := float64(i-1) / last
		y1 := float64(i) / last
		area += (cumulative[i] - cumulative[i-1]) * (y0 + y1) / 2
	}
	return (area - 0.5) * 2
}
