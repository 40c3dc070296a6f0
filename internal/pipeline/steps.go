package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/stegscan/internal/database"
	"github.com/nao1215/stegscan/internal/decoder"
	"github.com/nao1215/stegscan/internal/detect"
	"github.com/nao1215/stegscan/internal/fileinfo"
	"github.com/nao1215/stegscan/internal/metadata"
	"github.com/nao1215/stegscan/internal/model"
)

// Step names, in default execution order.
const (
	StepInspect = "inspect"
	StepDetect  = "detect"
	StepDecode  = "decode"
	StepPersist = "persist"
)

// DefaultDecodeThreshold is the likelihood above which decoding runs.
const DefaultDecodeThreshold = 0.6

// InspectStep records file-level information: size, type, byte entropy,
// digest and the most frequent byte values.
type InspectStep struct {
	logger *slog.Logger
}

// NewInspectStep creates a new file inspection step.
func NewInspectStep(logger *slog.Logger) *InspectStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &InspectStep{logger: logger}
}

// Name returns the step name.
func (s *InspectStep) Name() string {
	return StepInspect
}

// Do executes the inspection step.
func (s *InspectStep) Do(_ context.Context, report *model.ImageReport) error {
	info, err := fileinfo.Inspect(report.Path)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", report.Path, err)
	}
	report.File = info

	s.logger.Debug("file inspected",
		"image", report.Path,
		"type", info.Type,
		"size", info.Size,
		"entropy", info.Entropy,
	)
	return nil
}

// recordingExtractor forwards to another extractor and keeps the fields
// it returned in the report, so metadata is read only once per image.
type recordingExtractor struct {
	inner  metadata.Extractor
	report *model.ImageReport
}

func (r *recordingExtractor) Extract(ctx context.Context, path string) metadata.Result {
	res := r.inner.Extract(ctx, path)
	if res.Status == metadata.StatusOK {
		r.report.Metadata = res.Fields
	}
	return res
}

// DetectStep runs the steganography detector on the image.
type DetectStep struct {
	extractor metadata.Extractor
	opts      []detect.Option
	logger    *slog.Logger
}

// DetectStepOption configures a DetectStep.
type DetectStepOption func(*DetectStep)

// WithDetectExtractor sets the metadata extractor used by the detector.
func WithDetectExtractor(e metadata.Extractor) DetectStepOption {
	return func(s *DetectStep) {
		s.extractor = e
	}
}

// WithDetectorOptions passes options to every detector the step creates.
func WithDetectorOptions(opts ...detect.Option) DetectStepOption {
	return func(s *DetectStep) {
		s.opts = append(s.opts, opts...)
	}
}

// WithDetectLogger sets a custom logger for the detect step.
func WithDetectLogger(logger *slog.Logger) DetectStepOption {
	return func(s *DetectStep) {
		s.logger = logger
	}
}

// NewDetectStep creates a new detection step.
func NewDetectStep(opts ...DetectStepOption) *DetectStep {
	s := &DetectStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.extractor == nil {
		s.extractor = metadata.NewNativeExtractor(s.logger)
	}
	return s
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return StepDetect
}

// Do executes the detection step. A fresh detector is built for every image.
func (s *DetectStep) Do(ctx context.Context, report *model.ImageReport) error {
	opts := make([]detect.Option, 0, len(s.opts)+2)
	opts = append(opts, detect.WithLogger(s.logger))
	opts = append(opts, s.opts...)
	opts = append(opts, detect.WithMetadataExtractor(&recordingExtractor{
		inner:  s.extractor,
		report: report,
	}))

	result := detect.NewDetector(opts...).Analyze(ctx, report.Path)
	report.Detection = result

	if result.Error != "" {
		s.logger.Warn("detection failed", "image", report.Path, "error", result.Error)
		return nil
	}

	s.logger.Info("detection completed",
		"image", report.Path,
		"likelihood", result.FormattedLikelihood(),
	)
	return nil
}

// DecodeStep runs the brute-force decoder when the detection likelihood
// exceeds the threshold, or always when forced.
type DecodeStep struct {
	threshold float64
	force     bool
	passwords []string
	opts      []decoder.Option
	logger    *slog.Logger
}

// DecodeStepOption configures a DecodeStep.
type DecodeStepOption func(*DecodeStep)

// WithDecodeThreshold sets the likelihood above which decoding runs.
func WithDecodeThreshold(threshold float64) DecodeStepOption {
	return func(s *DecodeStep) {
		s.threshold = threshold
	}
}

// WithForceDecode makes the step decode regardless of the likelihood.
func WithForceDecode(force bool) DecodeStepOption {
	return func(s *DecodeStep) {
		s.force = force
	}
}

// WithPasswords sets the passphrases tried with external tools.
// A nil slice means decoder.DefaultPasswords.
func WithPasswords(passwords []string) DecodeStepOption {
	return func(s *DecodeStep) {
		s.passwords = passwords
	}
}

// WithDecoderOptions passes options to every decoder the step creates.
func WithDecoderOptions(opts ...decoder.Option) DecodeStepOption {
	return func(s *DecodeStep) {
		s.opts = append(s.opts, opts...)
	}
}

// WithDecodeLogger sets a custom logger for the decode step.
func WithDecodeLogger(logger *slog.Logger) DecodeStepOption {
	return func(s *DecodeStep) {
		s.logger = logger
	}
}

// NewDecodeStep creates a new decoding step.
func NewDecodeStep(opts ...DecodeStepOption) *DecodeStep {
	s := &DecodeStep{
		threshold: DefaultDecodeThreshold,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DecodeStep) Name() string {
	return StepDecode
}

// Do executes the decoding step.
func (s *DecodeStep) Do(ctx context.Context, report *model.ImageReport) error {
	if !s.force && report.Likelihood() <= s.threshold {
		report.DecodeSkipped = true
		s.logger.Debug("decode skipped",
			"image", report.Path,
			"likelihood", report.Likelihood(),
			"threshold", s.threshold,
		)
		return nil
	}

	opts := make([]decoder.Option, 0, len(s.opts)+1)
	opts = append(opts, decoder.WithLogger(s.logger))
	opts = append(opts, s.opts...)

	report.Attempts = decoder.NewDecoder(opts...).BruteForce(ctx, report.Path, s.passwords)
	report.DecodeSkipped = false

	s.logger.Info("decode completed",
		"image", report.Path,
		"attempts", len(report.Attempts),
		"successful", len(report.SuccessfulAttempts()),
	)
	return nil
}

// RecordStore persists analysis records.
type RecordStore interface {
	Save(ctx context.Context, record *model.AnalysisRecord) (int64, error)
}

// PersistStep stores an analysis record for the image.
type PersistStep struct {
	store  RecordStore
	logger *slog.Logger
}

// NewPersistStep creates a new persistence step.
func NewPersistStep(store RecordStore, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return StepPersist
}

// Do executes the persistence step. Images that could not be inspected are
// not recorded.
func (s *PersistStep) Do(ctx context.Context, report *model.ImageReport) error {
	if report.File == nil {
		s.logger.Debug("nothing to persist", "image", report.Path)
		return nil
	}

	record, err := database.RecordFromReport(report)
	if err != nil {
		return fmt.Errorf("failed to build record: %w", err)
	}

	id, err := s.store.Save(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to persist record: %w", err)
	}
	report.RecordID = id

	s.logger.Debug("record saved", "image", report.Path, "id", id)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Decode enables the decode step.
	Decode bool

	// ForceDecode decodes regardless of the likelihood.
	ForceDecode bool

	// DecodeThreshold is the likelihood above which decoding runs.
	DecodeThreshold float64

	// Passwords are the passphrases tried with external tools.
	Passwords []string

	// Extractor is the metadata extractor shared by the detect step.
	Extractor metadata.Extractor

	// DetectorOptions are passed to every detector.
	DetectorOptions []detect.Option

	// DecoderOptions are passed to every decoder.
	DecoderOptions []decoder.Option

	// Store receives analysis records. Nil disables the persist step.
	Store RecordStore
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineDecode enables or disables the decode step.
func WithPipelineDecode(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Decode = enabled
	}
}

// WithPipelineForceDecode decodes every image regardless of the likelihood.
// It implies WithPipelineDecode(true).
func WithPipelineForceDecode(force bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ForceDecode = force
		if force {
			c.Decode = true
		}
	}
}

// WithPipelineDecodeThreshold sets the decode threshold.
func WithPipelineDecodeThreshold(threshold float64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DecodeThreshold = threshold
	}
}

// WithPipelinePasswords sets the passphrase list.
func WithPipelinePasswords(passwords []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Passwords = passwords
	}
}

// WithPipelineExtractor sets the metadata extractor.
func WithPipelineExtractor(e metadata.Extractor) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Extractor = e
	}
}

// WithPipelineDetectorOptions adds detector options.
func WithPipelineDetectorOptions(opts ...detect.Option) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DetectorOptions = append(c.DetectorOptions, opts...)
	}
}

// WithPipelineDecoderOptions adds decoder options.
func WithPipelineDecoderOptions(opts ...decoder.Option) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DecoderOptions = append(c.DecoderOptions, opts...)
	}
}

// WithPipelineStore enables the persist step with the given store.
func WithPipelineStore(store RecordStore) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// DefaultPipeline creates a pipeline with the standard steps: inspect,
// detect, then decode and persist when configured.
//
// The pipeline continues past a failed step so that an unreadable file
// still yields a zero-likelihood detection result.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(append([]Option{WithContinueOnError(true)}, pipelineOpts...)...)

	cfg := &DefaultPipelineConfig{
		DecodeThreshold: DefaultDecodeThreshold,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	detectOpts := []DetectStepOption{
		WithDetectLogger(p.logger),
		WithDetectorOptions(cfg.DetectorOptions...),
	}
	if cfg.Extractor != nil {
		detectOpts = append(detectOpts, WithDetectExtractor(cfg.Extractor))
	}

	p.AddSteps(
		NewInspectStep(p.logger),
		NewDetectStep(detectOpts...),
	)

	if cfg.Decode {
		p.AddStep(NewDecodeStep(
			WithDecodeThreshold(cfg.DecodeThreshold),
			WithForceDecode(cfg.ForceDecode),
			WithPasswords(cfg.Passwords),
			WithDecoderOptions(cfg.DecoderOptions...),
			WithDecodeLogger(p.logger),
		))
	}

	if cfg.Store != nil {
		p.AddStep(NewPersistStep(cfg.Store, p.logger))
	}

	return p
}
