package detect

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nao1215/stegscan/internal/pixel"
	"github.com/nao1215/stegscan/internal/stats"
)

// chiSquare127 is the reference distribution for the 128 pairs of values.
var chiSquare127 = distuv.ChiSquared{K: 127}

// ChiSquareScore runs the pairs-of-values test. LSB replacement evens out
// the counts of 2i and 2i+1, which this statistic measures per channel.
// The statistic is divided by the sample count and converted to 1-p.
func ChiSquareScore(m *pixel.Matrix) float64 {
	best := 0.0
	for c := pixel.Red; c <= pixel.Blue; c++ {
		values := m.Channel(c)
		if len(values) == 0 {
			continue
		}
		hist := stats.Histogram(values)

		var chi float64
		for i := 0; i < 256; i += 2 {
			expected := (hist[i] + hist[i+1]) / 2
			if expected <= 0 {
				continue
			}
			d0 := hist[i] - expected
			d1 := hist[i+1] - expected
			chi += d0*d0/expected + d1*d1/expected
		}
		chi /= float64(len(values))

		score := chiSquare127.CDF(chi)
		if math.IsNaN(score) {
			score = 0.5
		}
		best = math.Max(best, score)
	}
	return best
}
