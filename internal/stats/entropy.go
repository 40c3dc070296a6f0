package stats

import "math"

// Entropy returns the Shannon entropy of data in bits.
// For byte data the result lies in [0, 8]; for a bit sequence (values 0 and 1)
// it lies in [0, 1]. Inputs with fewer than two elements have zero entropy.
func Entropy(data []uint8) float64 {
	if len(data) <= 1 {
		return 0
	}

	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	n := float64(len(data))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}

	// Rounding can produce -0 for constant input.
	if h < 0 {
		return 0
	}
	return h
}

// ByteFrequency returns the number of occurrences of every byte value.
func ByteFrequency(data []uint8) [256]int {
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	return counts
}
