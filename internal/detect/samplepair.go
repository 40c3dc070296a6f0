package detect

import (
	"math"
	"math/rand/v2"

	"github.com/nao1215/stegscan/internal/pixel"
)

// maxPairSamples bounds the number of vertical pairs drawn per channel.
const maxPairSamples = 10000

// SamplePairScore compares regular pairs (same value after dropping the
// LSB) with singular pairs (odd difference) among random vertical
// neighbours. A ratio far from 1 is suspicious.
//
// This is a simplified rule, not the Dumitrescu estimator of the embedding
// rate.
func SamplePairScore(m *pixel.Matrix, rng *rand.Rand) float64 {
	best := 0.0
	for c := pixel.Red; c <= pixel.Blue; c++ {
		best = math.Max(best, samplePairChannel(m, c, rng))
	}
	return best
}

func samplePairChannel(m *pixel.Matrix, c int, rng *rand.Rand) float64 {
	if m.Height < 2 || m.Width < 1 {
		return neutralScore
	}

	n := min(maxPairSamples, m.Len()/2)
	var regular, singular int
	for range n {
		y := rng.IntN(m.Height - 1)
		x := rng.IntN(m.Width)
		v1 := int(m.At(y, x, c))
		v2 := int(m.At(y+1, x, c))

		switch {
		case v1/2 == v2/2:
			regular++
		case (v1-v2)%2 != 0:
			singular++
		}
	}

	if singular == 0 {
		return neutralScore
	}
	ratio := float64(regular) / float64(singular)
	return math.Min(math.Abs(ratio-1)/0.5, 1)
}
