package stats

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// TestEntropy tests Shannon entropy over bytes and bits.
func TestEntropy(t *testing.T) {
	t.Parallel()

	allBytes := make([]uint8, 256)
	for i := range allBytes {
		allBytes[i] = uint8(i)
	}

	tests := []struct {
		name string
		data []uint8
		want float64
	}{
		{name: "empty input", data: nil, want: 0},
		{name: "single byte", data: []uint8{42}, want: 0},
		{name: "constant input", data: []uint8{7, 7, 7, 7}, want: 0},
		{name: "balanced bits", data: []uint8{0, 1, 0, 1}, want: 1},
		{name: "every byte value once", data: allBytes, want: 8},
		{name: "four symbols", data: []uint8{1, 2, 3, 4}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Entropy(tt.data)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Entropy() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 8 {
				t.Errorf("Entropy() = %v is outside [0, 8]", got)
			}
		})
	}
}

// TestEntropyRange tests the entropy bound over random inputs.
func TestEntropyRange(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		data := make([]uint8, rng.IntN(500)+2)
		for j := range data {
			data[j] = uint8(rng.IntN(256))
		}
		h := Entropy(data)
		if h < 0 || h > 8 {
			t.Fatalf("Entropy() = %v is outside [0, 8]", h)
		}
	}
}

// TestBitPlane tests bit plane extraction.
func TestBitPlane(t *testing.T) {
	t.Parallel()

	values := []uint8{0b00000001, 0b00000010, 0b10000011, 0xFF}

	t.Run("least significant plane", func(t *testing.T) {
		t.Parallel()
		got := BitPlane(values, 0)
		want := []uint8{1, 0, 1, 1}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("bit %d = %d, want %d", i, got[i], want[i])
			}
		}
	})

	t.Run("second plane", func(t *testing.T) {
		t.Parallel()
		got := BitPlane(values, 1)
		want := []uint8{0, 1, 1, 1}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("bit %d = %d, want %d", i, got[i], want[i])
			}
		}
	})

	t.Run("most significant plane", func(t *testing.T) {
		t.Parallel()
		got := BitPlane(values, 7)
		want := []uint8{0, 0, 1, 1}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("bit %d = %d, want %d", i, got[i], want[i])
			}
		}
	})

	t.Run("out of range plane", func(t *testing.T) {
		t.Parallel()
		if got := BitPlane(values, 8); got != nil {
			t.Errorf("expected nil for plane 8, got %v", got)
		}
		if got := BitPlane(values, -1); got != nil {
			t.Errorf("expected nil for plane -1, got %v", got)
		}
	})
}

// TestCountRuns tests transition counting.
func TestCountRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bits []uint8
		want int
	}{
		{name: "empty", bits: nil, want: 0},
		{name: "single", bits: []uint8{1}, want: 0},
		{name: "constant", bits: []uint8{0, 0, 0, 0}, want: 0},
		{name: "alternating", bits: []uint8{0, 1, 0, 1, 0}, want: 4},
		{name: "two blocks", bits: []uint8{0, 0, 1, 1}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CountRuns(tt.bits); got != tt.want {
				t.Errorf("CountRuns() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestBitPairDistribution tests pair frequencies and their deviation.
func TestBitPairDistribution(t *testing.T) {
	t.Parallel()

	t.Run("constant zeros", func(t *testing.T) {
		t.Parallel()
		dist := BitPairDistribution([]uint8{0, 0, 0, 0, 0})
		if dist[0] != 1 {
			t.Errorf("p00 = %v, want 1", dist[0])
		}
		if dev := PairDeviation(dist); math.Abs(dev-0.75) > 1e-12 {
			t.Errorf("PairDeviation() = %v, want 0.75", dev)
		}
	})

	t.Run("all pairs once", func(t *testing.T) {
		t.Parallel()
		// pairs: 00, 01, 11, 10
		dist := BitPairDistribution([]uint8{0, 0, 1, 1, 0})
		for i, p := range dist {
			if math.Abs(p-0.25) > 1e-12 {
				t.Errorf("p[%d] = %v, want 0.25", i, p)
			}
		}
		if dev := PairDeviation(dist); dev > 1e-12 {
			t.Errorf("PairDeviation() = %v, want 0", dev)
		}
	})

	t.Run("too short", func(t *testing.T) {
		t.Parallel()
		dist := BitPairDistribution([]uint8{1})
		for i, p := range dist {
			if p != 0 {
				t.Errorf("p[%d] = %v, want 0", i, p)
			}
		}
	})
}

// TestCorrelation tests Pearson correlation and its degenerate cases.
func TestCorrelation(t *testing.T) {
	t.Parallel()

	x := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		y    []float64
		want float64
	}{
		{name: "perfect positive", y: []float64{2, 4, 6, 8, 10}, want: 1},
		{name: "perfect negative", y: []float64{5, 4, 3, 2, 1}, want: -1},
		{name: "constant is zero", y: []float64{3, 3, 3, 3, 3}, want: 0},
		{name: "length mismatch is zero", y: []float64{1, 2}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Correlation(x, tt.y); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Correlation() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestHistogramHelpers tests peaks and Gini on simple histograms.
func TestHistogramHelpers(t *testing.T) {
	t.Parallel()

	t.Run("flat histogram has no peaks and low inequality", func(t *testing.T) {
		t.Parallel()
		values := make([]uint8, 256*4)
		for i := range values {
			values[i] = uint8(i % 256)
		}
		hist := Histogram(values)
		if peaks := CountPeaks(hist); peaks != 0 {
			t.Errorf("CountPeaks() = %d, want 0", peaks)
		}
		if g := Gini(hist); math.Abs(g) > 0.01 {
			t.Errorf("Gini() = %v, want about 0", g)
		}
	})

	t.Run("single spike has high inequality", func(t *testing.T) {
		t.Parallel()
		hist := Histogram([]uint8{9, 9, 9, 9})
		if g := Gini(hist); g < 0.99 {
			t.Errorf("Gini() = %v, want close to 1", g)
		}
		if peaks := CountPeaks(hist); peaks != 1 {
			t.Errorf("CountPeaks() = %d, want 1", peaks)
		}
	})

	t.Run("empty histogram", func(t *testing.T) {
		t.Parallel()
		var hist [256]float64
		if g := Gini(hist); g != 0 {
			t.Errorf("Gini() = %v, want 0", g)
		}
	})
}

// TestShapiroWilk tests the normality test on normal and bimodal samples.
func TestShapiroWilk(t *testing.T) {
	t.Parallel()

	t.Run("normal quantiles look normal", func(t *testing.T) {
		t.Parallel()
		n := 200
		x := make([]float64, n)
		for i := range x {
			x[i] = distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
		}
		w, p, err := ShapiroWilk(x)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w < 0.98 {
			t.Errorf("W = %v, want close to 1", w)
		}
		if p < 0.5 {
			t.Errorf("p = %v, want large p-value", p)
		}
	})

	t.Run("matches reference values", func(t *testing.T) {
		t.Parallel()
		// R: shapiro.test(x) gives W = 0.78881, p-value = 0.006704.
		x := []float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236}
		w, p, err := ShapiroWilk(x)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(w-0.78881) > 1e-3 {
			t.Errorf("W = %v, want 0.78881", w)
		}
		if math.Abs(p-0.006704) > 5e-4 {
			t.Errorf("p = %v, want 0.006704", p)
		}
	})

	t.Run("bimodal sample is not normal", func(t *testing.T) {
		t.Parallel()
		n := 200
		x := make([]float64, n)
		for i := range x {
			if i%2 == 0 {
				x[i] = -1 + float64(i)*1e-4
			} else {
				x[i] = 1 + float64(i)*1e-4
			}
		}
		_, p, err := ShapiroWilk(x)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p > 0.01 {
			t.Errorf("p = %v, want a small p-value", p)
		}
	})

	t.Run("small samples", func(t *testing.T) {
		t.Parallel()
		for _, x := range [][]float64{
			{1, 2, 4},
			{1, 2, 3, 5},
			{1, 3, 2, 7, 4},
			{1, 3, 2, 7, 4, 6, 5, 9},
		} {
			w, p, err := ShapiroWilk(x)
			if err != nil {
				t.Fatalf("unexpected error for %v: %v", x, err)
			}
			if w <= 0 || w > 1 {
				t.Errorf("W = %v outside (0, 1] for %v", w, x)
			}
			if p < 0 || p > 1 {
				t.Errorf("p = %v outside [0, 1] for %v", p, x)
			}
		}
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		t.Parallel()
		if _, _, err := ShapiroWilk([]float64{1, 2}); err != ErrTooFewSamples {
			t.Errorf("expected ErrTooFewSamples, got %v", err)
		}
		if _, _, err := ShapiroWilk([]float64{4, 4, 4, 4}); err != ErrDegenerateSample {
			t.Errorf("expected ErrDegenerateSample, got %v", err)
		}
		if _, _, err := ShapiroWilk([]float64{1, math.NaN(), 3}); err != ErrDegenerateSample {
			t.Errorf("expected ErrDegenerateSample for NaN, got %v", err)
		}
	})
}

// TestSampleIndices tests sampling without replacement.
func TestSampleIndices(t *testing.T) {
	t.Parallel()

	t.Run("indices are distinct and in range", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewPCG(42, 42))
		idx := SampleIndices(rng, 1000, 300)
		if len(idx) != 300 {
			t.Fatalf("len = %d, want 300", len(idx))
		}
		seen := make(map[int]bool)
		for _, i := range idx {
			if i < 0 || i >= 1000 {
				t.Fatalf("index %d out of range", i)
			}
			if seen[i] {
				t.Fatalf("duplicate index %d", i)
			}
			seen[i] = true
		}
	})

	t.Run("k larger than n is capped", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewPCG(1, 1))
		if got := len(SampleIndices(rng, 10, 50)); got != 10 {
			t.Errorf("len = %d, want 10", got)
		}
	})

	t.Run("same seed gives same sample", func(t *testing.T) {
		t.Parallel()
		a := SampleIndices(rand.New(rand.NewPCG(7, 9)), 500, 20)
		b := SampleIndices(rand.New(rand.NewPCG(7, 9)), 500, 20)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("samples differ at %d: %d != %d", i, a[i], b[i])
			}
		}
	})
}

// TestClamp01 tests clamping.
func TestClamp01(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ in, want float64 }{
		{-1, 0}, {0.3, 0.3}, {2, 1}, {math.NaN(), 0},
	} {
		if got := Clamp01(tc.in); got != tc.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
