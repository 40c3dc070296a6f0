package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/stegscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of images analyzed at once by default.
const DefaultConcurrency = 4

// BatchProcessor analyzes multiple images concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each image.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each image so that no
// pipeline state leaks between analyses.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes the images at paths concurrently and returns one
// report per path in input order, including reports of failed analyses.
// The error is non-nil only when the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*model.ImageReport, error) {
	bp.logger.Info("starting batch processing",
		"total_images", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.ImageReport, len(paths))

	err := bp.run(ctx, paths, func(report *model.ImageReport, index int) {
		results[index] = report
	})

	bp.logger.Info("batch processing complete",
		"total_images", len(paths),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// ProcessBatchWithCallback analyzes the images and calls callback for each
// completed report. The callback runs on the worker goroutine, so it must
// be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	paths []string,
	callback func(report *model.ImageReport, index int),
) error {
	return bp.run(ctx, paths, callback)
}

func (bp *BatchProcessor) run(
	ctx context.Context,
	paths []string,
	done func(report *model.ImageReport, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("analyzing image",
				"image", path,
				"index", i+1,
				"total", len(paths),
			)

			report := model.NewImageReport(path)
			if err := bp.pipelineFactory().Execute(ctx, report); err != nil {
				// The error is recorded in the report; other images keep going.
				bp.logger.Warn("analysis failed",
					"image", path,
					"error", err,
				)
			}

			done(report, i)
			return nil
		})
	}

	return g.Wait()
}
