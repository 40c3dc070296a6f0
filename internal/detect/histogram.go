package detect

import (
	"math"

	"github.com/nao1215/stegscan/internal/pixel"
	"github.com/nao1215/stegscan/internal/stats"
)

// peakSaturation is the peak count at which the peak term saturates.
const peakSaturation = 30.0

// HistogramScore rewards jagged, evenly filled histograms: many local
// peaks and a low Gini coefficient.
func HistogramScore(m *pixel.Matrix) float64 {
	best := 0.0
	for c := pixel.Red; c <= pixel.Blue; c++ {
		hist := stats.Histogram(m.Channel(c))
		peaks := math.Min(float64(stats.CountPeaks(hist))/peakSaturation, 1)
		gini := stats.Gini(hist)
		best = math.Max(best, peaks*0.4+(1-gini)*0.6)
	}
	return best
}
