package stats

import "math/rand/v2"

// SampleIndices draws k distinct indices from [0, n) using a partial
// Fisher-Yates shuffle. If k >= n every index is returned in random order.
func SampleIndices(rng *rand.Rand, n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
