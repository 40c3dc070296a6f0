package decoder

import (
	"context"
	"log/slog"
	"slices"

	"github.com/nao1215/stegscan/internal/artifact"
	"github.com/nao1215/stegscan/internal/metadata"
	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/pixel"
	"github.com/nao1215/stegscan/internal/toolchain"
)

// Enumeration bounds of the LSB hypotheses.
var (
	lsbChannels = []int{pixel.Red, pixel.Green, pixel.Blue}
	lsbPlanes   = []int{0, 1}
)

// Decoder runs the brute-force extraction stage.
type Decoder struct {
	// payloads runs steghide and outguess.
	payloads PayloadExtractor

	// extractor reads metadata for the metadata pass.
	extractor metadata.Extractor

	// tools lists the password-based tools in the order they are tried.
	tools []toolchain.Tool

	// scanner labels the content of recovered payloads.
	scanner *artifact.Scanner

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithPayloadExtractor sets the collaborator that runs extraction tools.
func WithPayloadExtractor(p PayloadExtractor) Option {
	return func(d *Decoder) {
		d.payloads = p
	}
}

// WithMetadataExtractor sets the metadata collaborator.
func WithMetadataExtractor(e metadata.Extractor) Option {
	return func(d *Decoder) {
		d.extractor = e
	}
}

// WithTools overrides the password-based tools. An empty list disables them.
func WithTools(tools ...toolchain.Tool) Option {
	return func(d *Decoder) {
		d.tools = tools
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// NewDecoder creates a Decoder. Without options it runs the tools found
// in PATH with the default timeout and reads metadata natively.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		tools:   toolchain.PayloadTools,
		scanner: artifact.NewScanner(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.payloads == nil {
		d.payloads = toolchain.NewRunner(toolchain.WithLogger(d.logger))
	}
	if d.extractor == nil {
		d.extractor = metadata.NewNativeExtractor(d.logger)
	}
	return d
}

// DecodeLSBFile loads the image at path and runs DecodeLSB. A load
// failure is returned as a failed attempt.
func DecodeLSBFile(path string, plane, channel int) model.DecoderAttempt {
	m, _, err := pixel.Load(path)
	if err != nil {
		return model.NewFailedAttempt(LSBMethod(channel, plane), 0, err.Error())
	}
	return DecodeLSB(m, plane, channel)
}

// BruteForce tries every hypothesis against the image at path and returns
// the attempts ranked by confidence. Successful payloads are scanned for
// artifacts. A nil or empty password list means
// DefaultPasswords. The result is never empty.
func (d *Decoder) BruteForce(ctx context.Context, path string, passwords []string) []model.DecoderAttempt {
	if len(passwords) == 0 {
		passwords = DefaultPasswords
	}

	attempts := make([]model.DecoderAttempt, 0, 16)

	m, _, err := pixel.Load(path)
	if err != nil {
		d.logger.Warn("failed to load image for pixel decoding", "path", path, "error", err)
	}

	for _, channel := range lsbChannels {
		for _, plane := range lsbPlanes {
			if err != nil {
				attempts = append(attempts, model.NewFailedAttempt(LSBMethod(channel, plane), 0, err.Error()))
				continue
			}
			attempts = append(attempts, DecodeLSB(m, plane, channel))
		}
	}

	for _, channel := range lsbChannels {
		if err != nil {
			attempts = append(attempts, model.NewFailedAttempt(MultiBitMethod(defaultMultiBits, channel), 0, err.Error()))
			continue
		}
		attempts = append(attempts, DecodeMultiBitLSB(m, defaultMultiBits, channel))
	}

	attempts = append(attempts, d.ExtractMetadata(ctx, path))

	for _, tool := range d.tools {
		attempts = append(attempts, d.TryTool(ctx, path, tool, passwords)...)
	}

	d.scanner.Annotate(attempts)
	Rank(attempts)

	d.logger.Debug("brute force finished", "path", path, "attempts", len(attempts),
		"successful", countSuccessful(attempts))
	return attempts
}

// Rank sorts attempts by descending confidence. Equal confidences keep
// their relative order.
func Rank(attempts []model.DecoderAttempt) {
	slices.SortStableFunc(attempts, func(a, b model.DecoderAttempt) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		default:
			return 0
		}
	})
}

func countSuccessful(attempts []model.DecoderAttempt) int {
	n := 0
	for _, a := range attempts {
		if a.Success {
			n++
		}
	}
	return n
}
