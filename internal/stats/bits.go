package stats

// BitPlane extracts bit plane `plane` (0 = least significant) from values.
// It returns nil when plane is outside [0, 7].
func BitPlane(values []uint8, plane int) []uint8 {
	if plane < 0 || plane > 7 {
		return nil
	}
	bits := make([]uint8, len(values))
	for i, v := range values {
		bits[i] = (v >> plane) & 1
	}
	return bits
}

// CountRuns counts adjacent transitions (0->1 or 1->0) in bits.
// A uniformly random sequence has close to len(bits)/2 transitions.
func CountRuns(bits []uint8) int {
	runs := 0
	for i := 1; i < len(bits); i++ {
		if bits[i] != bits[i-1] {
			runs++
		}
	}
	return runs
}

// BitPairDistribution returns the relative frequencies of the adjacent
// pairs 00, 01, 10 and 11. All zeros are returned for fewer than two bits.
func BitPairDistribution(bits []uint8) [4]float64 {
	var dist [4]float64
	if len(bits) < 2 {
		return dist
	}
	for i := 0; i+1 < len(bits); i++ {
		dist[(bits[i]&1)<<1|(bits[i+1]&1)]++
	}
	total := float64(len(bits) - 1)
	for i := range dist {
		dist[i] /= total
	}
	return dist
}

// PairDeviation measures how far a pair distribution is from uniform.
// The result is half the L1 distance to (0.25, 0.25, 0.25, 0.25).
func PairDeviation(dist [4]float64) float64 {
	var sum float64
	for _, p := range dist {
		d := p - 0.25
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / 2
}

// Mean returns the arithmetic mean of bits, or 0 for empty input.
func Mean(bits []uint8) float64 {
	if len(bits) == 0 {
		return 0
	}
	var sum int
	for _, b := range bits {
		sum += int(b)
	}
	return float64(sum) / float64(len(bits))
}

// ToFloat converts samples to float64 for the correlation helpers.
func ToFloat(values []uint8) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
