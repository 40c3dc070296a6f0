package detect

import (
	"math"

	"github.com/nao1215/stegscan/internal/stats"
)

// Default logistic scaling parameters.
const (
	DefaultBoost     = 1.7
	DefaultSteepness = 20.0
)

// Scaler maps raw indicator scores onto a decisive [0, 1] scale.
type Scaler struct {
	// Boost multiplies the raw score before the curve is applied.
	Boost float64

	// Steepness is the base slope of the logistic curve.
	Steepness float64
}

// DefaultScaler returns the scaler with the default tunables.
func DefaultScaler() Scaler {
	return Scaler{Boost: DefaultBoost, Steepness: DefaultSteepness}
}

// Scale applies 1 / (1 + exp(-sensitivity*Steepness*(v*Boost - center)))
// and clamps the result to [0, 1].
func (s Scaler) Scale(v, center, sensitivity float64) float64 {
	z := -sensitivity * s.Steepness * (v*s.Boost - center)
	return stats.Clamp01(1 / (1 + math.Exp(z)))
}

// ScaleLikelihood scales v with the default tunables.
func ScaleLikelihood(v, center, sensitivity float64) float64 {
	return DefaultScaler().Scale(v, center, sensitivity)
}
