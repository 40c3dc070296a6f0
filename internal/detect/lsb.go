package detect

import (
	"math"

	"github.com/nao1215/stegscan/internal/pixel"
	"github.com/nao1215/stegscan/internal/stats"
)

// LSBScore measures how random the least significant bit plane looks.
// Natural images have biased, correlated low bits; embedded data makes
// them uniform, high-entropy and independent of bit plane 1.
// The result is the maximum over the RGB channels.
func LSBScore(m *pixel.Matrix) float64 {
	best := 0.0
	for c := pixel.Red; c <= pixel.Blue; c++ {
		best = math.Max(best, lsbChannelScore(m.Channel(c)))
	}
	return best
}

func lsbChannelScore(values []uint8) float64 {
	if len(values) == 0 {
		return 0
	}
	lsb := stats.BitPlane(values, 0)
	second := stats.BitPlane(values, 1)

	bias := math.Abs(stats.Mean(lsb)-0.5) * 2
	entropy := stats.Entropy(lsb)
	runs := float64(stats.CountRuns(lsb)) / float64(len(lsb))
	pairs := stats.PairDeviation(stats.BitPairDistribution(lsb))
	corr := stats.Correlation(stats.ToFloat(lsb), stats.ToFloat(second))

	return (1-bias)*0.3 + entropy*0.3 + runs*0.2 + pairs*0.1 + (1-math.Abs(corr))*0.1
}
