package detect

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/nao1215/stegscan/internal/metadata"
	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/pixel"
)

// Weights of each indicator in the overall likelihood.
const (
	WeightLSB        = 1.5
	WeightHistogram  = 1.2
	WeightNoise      = 1.0
	WeightChiSquare  = 1.3
	WeightMetadata   = 0.8
	WeightSamplePair = 1.1
	WeightRGB        = 1.0
)

// Detector runs every indicator over one image.
type Detector struct {
	// extractor reads metadata for the metadata indicator.
	extractor metadata.Extractor

	// rng drives the sampling indicators.
	rng *rand.Rand

	// scaler maps raw scores to likelihoods.
	scaler Scaler

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithMetadataExtractor sets the metadata collaborator.
func WithMetadataExtractor(e metadata.Extractor) Option {
	return func(d *Detector) {
		d.extractor = e
	}
}

// WithRand sets the random source used for sampling.
func WithRand(rng *rand.Rand) Option {
	return func(d *Detector) {
		d.rng = rng
	}
}

// WithSeed seeds the random source deterministically.
func WithSeed(seed uint64) Option {
	return func(d *Detector) {
		d.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)) //nolint:gosec // statistical sampling only
	}
}

// WithScaler overrides the logistic scaling tunables. Non-positive values
// keep the defaults.
func WithScaler(s Scaler) Option {
	return func(d *Detector) {
		if s.Boost > 0 {
			d.scaler.Boost = s.Boost
		}
		if s.Steepness > 0 {
			d.scaler.Steepness = s.Steepness
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a Detector. Without options it reads metadata
// natively and seeds its random source from the runtime.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		scaler: DefaultScaler(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.extractor == nil {
		d.extractor = metadata.NewNativeExtractor(d.logger)
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // statistical sampling only
	}
	return d
}

// indicatorSpec describes how one indicator is computed and scaled.
type indicatorSpec struct {
	name        string
	weight      float64
	center      float64
	sensitivity float64
	explanation string
	// raw returns the unscaled score. scaled=false means the score is
	// already final and must not go through the logistic curve.
	raw func(ctx context.Context, d *Detector, m *pixel.Matrix, path string) (value float64, scaled bool)
}

// indicators lists the tests in registration order.
var indicators = []indicatorSpec{
	{
		name: model.IndicatorLSB, weight: WeightLSB, center: 0.5, sensitivity: 2.5,
		explanation: "Randomness of the least significant bit plane",
		raw: func(_ context.Context, _ *Detector, m *pixel.Matrix, _ string) (float64, bool) {
			return LSBScore(m), true
		},
	},
	{
		name: model.IndicatorHistogram, weight: WeightHistogram, center: 0.5, sensitivity: 1.0,
		explanation: "Peaks and evenness of the colour histograms",
		raw: func(_ context.Context, _ *Detector, m *pixel.Matrix, _ string) (float64, bool) {
			return HistogramScore(m), true
		},
	},
	{
		name: model.IndicatorNoise, weight: WeightNoise, center: 0.5, sensitivity: 1.0,
		explanation: "Cross-channel correlation and normality of the noise residual",
		raw: func(_ context.Context, d *Detector, m *pixel.Matrix, _ string) (float64, bool) {
			return NoiseScore(m, d.rng, d.logger), true
		},
	},
	{
		name: model.IndicatorChiSquare, weight: WeightChiSquare, center: 0.5, sensitivity: 1.0,
		explanation: "Pairs-of-values chi-square statistic",
		raw: func(_ context.Context, _ *Detector, m *pixel.Matrix, _ string) (float64, bool) {
			return ChiSquareScore(m), true
		},
	},
	{
		name: model.IndicatorMetadata, weight: WeightMetadata, center: 0.5, sensitivity: 1.2,
		explanation: "Suspicious metadata fields, encoded blobs and tool traces",
		raw: func(ctx context.Context, d *Detector, _ *pixel.Matrix, path string) (float64, bool) {
			res := d.extractor.Extract(ctx, path)
			if !res.OK() {
				d.logger.Debug("metadata unavailable, using neutral score", "path", path, "reason", res.Reason)
				return neutralMetadataScore, false
			}
			return MetadataScore(res.Fields), true
		},
	},
	{
		name: model.IndicatorSamplePair, weight: WeightSamplePair, center: 0.5, sensitivity: 1.0,
		explanation: "Ratio of regular to singular vertical pixel pairs",
		raw: func(_ context.Context, d *Detector, m *pixel.Matrix, _ string) (float64, bool) {
			return SamplePairScore(m, d.rng), true
		},
	},
	{
		name: model.IndicatorRGB, weight: WeightRGB, center: 0.5, sensitivity: 2.0,
		explanation: "Correlation between the red, green and blue channels",
		raw: func(_ context.Context, d *Detector, m *pixel.Matrix, _ string) (float64, bool) {
			return RGBCorrelationScore(m, d.rng), true
		},
	},
}

// Analyze loads the image at path and runs every indicator. Load failures
// produce an error result with zero likelihood instead of an error.
func (d *Detector) Analyze(ctx context.Context, path string) *model.DetectionResult {
	m, format, err := pixel.Load(path)
	if err != nil {
		d.logger.Warn("failed to load image", "path", path, "error", err)
		return model.ErrorResult(err)
	}
	d.logger.Debug("image loaded", "path", path, "format", format,
		"width", m.Width, "height", m.Height, "channels", m.Channels)

	return d.AnalyzeMatrix(ctx, m, path)
}

// AnalyzeMatrix runs every indicator over an already decoded image.
// path is only used for metadata extraction.
func (d *Detector) AnalyzeMatrix(ctx context.Context, m *pixel.Matrix, path string) *model.DetectionResult {
	if m == nil || m.Len() == 0 {
		return model.ErrorResult(pixel.ErrEmptyImage)
	}

	result := model.NewDetectionResult()
	for _, spec := range indicators {
		if err := ctx.Err(); err != nil {
			return model.ErrorResult(fmt.Errorf("analysis canceled: %w", err))
		}

		raw, scale := spec.raw(ctx, d, m, path)
		value := raw
		if scale {
			value = d.scaler.Scale(raw, spec.center, spec.sensitivity)
		}

		if err := result.AddIndicator(model.Indicator{
			Name:        spec.name,
			Value:       value,
			Raw:         raw,
			Weight:      spec.weight,
			Explanation: spec.explanation,
		}); err != nil {
			return model.ErrorResult(err)
		}
		d.logger.Debug("indicator computed", "name", spec.name, "raw", raw, "value", value)
	}

	if _, err := result.CalculateOverallLikelihood(); err != nil {
		return model.ErrorResult(err)
	}
	result.GenerateExplanation()
	result.DeterminePotentialTechniques()
	result.AnalyzedAt = time.Now()

	return result
}
