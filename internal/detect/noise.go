package detect

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/nao1215/stegscan/internal/pixel"
	"github.com/nao1215/stegscan/internal/stats"
)

const (
	// noiseSamples is the number of residual positions drawn.
	noiseSamples = 10000

	// normalitySamples is the number of standardized residuals tested for normality.
	normalitySamples = 1000

	// neutralScore substitutes for a statistic that cannot be computed.
	neutralScore = 0.5
)

// NoiseScore inspects the high-frequency residual (pixel minus its 3x3
// mean). Cover images have residuals that are correlated across channels
// and roughly normal; embedding decorrelates them.
func NoiseScore(m *pixel.Matrix, rng *rand.Rand, logger *slog.Logger) float64 {
	if logger == nil {
		logger = slog.Default()
	}
	residuals := make([][]float64, 3)
	for c := range residuals {
		residuals[c] = residual(m, c)
	}

	indices := stats.SampleIndices(rng, m.Len(), noiseSamples)
	sampled := make([][]float64, 3)
	for c := range sampled {
		sampled[c] = make([]float64, len(indices))
		for i, idx := range indices {
			sampled[c][i] = residuals[c][idx]
		}
	}

	avgCorr := (math.Abs(stats.Correlation(sampled[0], sampled[1])) +
		math.Abs(stats.Correlation(sampled[0], sampled[2])) +
		math.Abs(stats.Correlation(sampled[1], sampled[2]))) / 3

	var normality float64
	for c := range sampled {
		normality += normalityScore(sampled[c], c, logger)
	}
	normality /= 3

	return (1-avgCorr)*0.6 + normality*0.4
}

// normalityScore returns 1-p of the Shapiro-Wilk test on the first
// standardized samples, or 0.5 when the test cannot run.
func normalityScore(sample []float64, channel int, logger *slog.Logger) float64 {
	z := stats.Standardize(sample)
	if z == nil {
		logger.Debug("noise residual has zero variance", "channel", channel)
		return neutralScore
	}
	if len(z) > normalitySamples {
		z = z[:normalitySamples]
	}
	_, p, err := stats.ShapiroWilk(z)
	if err != nil {
		logger.Debug("normality test failed", "channel", channel, "error", err)
		return neutralScore
	}
	return 1 - p
}

// residual returns channel c minus its 3x3 box mean, row-major.
// Samples outside the image repeat the nearest edge sample.
func residual(m *pixel.Matrix, c int) []float64 {
	h, w := m.Height, m.Width
	out := make([]float64, h*w)
	for y := range h {
		for x := range w {
			var sum float64
			for dy := -1; dy <= 1; dy++ {
				yy := clampIndex(y+dy, h)
				for dx := -1; dx <= 1; dx++ {
					sum += float64(m.At(yy, clampIndex(x+dx, w), c))
				}
			}
			out[y*w+x] = float64(m.At(y, x, c)) - sum/9
		}
	}
	return out
}

func clampIndex(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}
