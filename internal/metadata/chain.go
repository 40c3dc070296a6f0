package metadata

import (
	"context"
	"log/slog"
	"strings"
)

// Chain tries extractors in order and returns the first result that is
// not a failure. When every extractor fails, the reasons are joined.
type Chain struct {
	extractors []Extractor
	logger     *slog.Logger
}

// NewChain creates a Chain over extractors.
func NewChain(logger *slog.Logger, extractors ...Extractor) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{extractors: extractors, logger: logger}
}

// NewDefaultChain prefers exiftool and falls back to the native parser.
func NewDefaultChain(runner CommandRunner, logger *slog.Logger) *Chain {
	return NewChain(logger,
		NewExiftoolExtractor(runner, logger),
		NewNativeExtractor(logger),
	)
}

// Extract implements Extractor.
func (c *Chain) Extract(ctx context.Context, path string) Result {
	if len(c.extractors) == 0 {
		return failed("chain", "no extractors configured")
	}

	reasons := make([]string, 0, len(c.extractors))
	for _, ext := range c.extractors {
		res := ext.Extract(ctx, path)
		if res.OK() {
			return res
		}
		c.logger.Debug("metadata extractor failed, trying next", "source", res.Source, "reason", res.Reason)
		reasons = append(reasons, res.Source+": "+res.Reason)
	}
	return failed("chain", strings.Join(reasons, "; "))
}
