package detect

import (
	"math"
	"math/rand/v2"

	"github.com/nao1215/stegscan/internal/pixel"
	"github.com/nao1215/stegscan/internal/stats"
)

// maxRGBSamples bounds the number of pixels drawn.
const maxRGBSamples = 50000

// RGBCorrelationScore returns 1 minus the mean absolute correlation
// between the colour channels of randomly drawn pixels. Natural images
// usually correlate strongly across channels.
func RGBCorrelationScore(m *pixel.Matrix, rng *rand.Rand) float64 {
	indices := stats.SampleIndices(rng, m.Len(), maxRGBSamples)
	r := make([]float64, len(indices))
	g := make([]float64, len(indices))
	b := make([]float64, len(indices))
	for i, idx := range indices {
		off := idx * m.Channels
		r[i] = float64(m.Pix[off+pixel.Red])
		g[i] = float64(m.Pix[off+pixel.Green])
		b[i] = float64(m.Pix[off+pixel.Blue])
	}

	avg := (math.Abs(stats.Correlation(r, g)) +
		math.Abs(stats.Correlation(r, b)) +
		math.Abs(stats.Correlation(g, b))) / 3
	return 1 - avg
}
