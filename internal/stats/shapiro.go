package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Polynomial coefficients of Royston's approximation (Applied Statistics
// algorithm AS R94).
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
)

// ShapiroWilk tests x for normality and returns the W statistic and its
// p-value. Small p-values indicate departure from a normal distribution.
//
// Between 3 and 5000 observations are supported. Constant samples and
// samples containing NaN return ErrDegenerateSample.
func ShapiroWilk(x []float64) (w, p float64, err error) {
	n := len(x)
	if n < 3 {
		return 0, 0, ErrTooFewSamples
	}
	if n > 5000 {
		return 0, 0, ErrTooManySamples
	}

	sorted := make([]float64, n)
	copy(sorted, x)
	for _, v := range sorted {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, ErrDegenerateSample
		}
	}
	sort.Float64s(sorted)
	if sorted[n-1]-sorted[0] < 1e-19 {
		return 0, 0, ErrDegenerateSample
	}

	a := shapiroCoefficients(n)

	var mean float64
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(n)

	var num, ssq float64
	for i, v := range sorted {
		num += a[i] * v
		d := v - mean
		ssq += d * d
	}
	w = num * num / ssq
	if w > 1 {
		w = 1
	}

	return w, shapiroPValue(w, n), nil
}

// shapiroCoefficients returns the antisymmetric weights a_1..a_n.
func shapiroCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt2/2, math.Sqrt2/2
		return a
	}

	fn := float64(n)
	m := make([]float64, n)
	var mm float64
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (fn + 0.25))
		mm += m[i] * m[i]
	}

	u := 1 / math.Sqrt(fn)
	rsm := math.Sqrt(mm)
	an := m[n-1]/rsm + poly(swC1, u)

	var phi float64
	first := 1
	if n > 5 {
		an1 := m[n-2]/rsm + poly(swC2, u)
		phi = (mm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
			(1 - 2*an*an - 2*an1*an1)
		a[n-2], a[1] = an1, -an1
		first = 2
	} else {
		phi = (mm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
	}
	a[n-1], a[0] = an, -an

	rphi := math.Sqrt(phi)
	for i := first; i < n-first; i++ {
		a[i] = m[i] / rphi
	}
	return a
}

// shapiroPValue converts W to an upper-tail p-value.
func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return Clamp01(p)
	}

	fn := float64(n)
	y := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := -2.273 + 0.459*fn
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, fn)
		sigma = math.Exp(poly(swC4, fn))
	} else {
		ln := math.Log(fn)
		mu = poly(swC5, ln)
		sigma = math.Exp(poly(swC6, ln))
	}
	return Clamp01(distuv.UnitNormal.Survival((y - mu) / sigma))
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	var r float64
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
