package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/stegscan/internal/model"
)

// Step is one stage of image analysis. Steps run in sequence and each one
// sees what earlier steps stored in the report.
type Step interface {
	// Do executes the pipeline step.
	// Non-critical failures should be recorded in the report and return nil.
	Do(ctx context.Context, report *model.ImageReport) error

	// Name identifies the step in logs and in PerformedSteps.
	Name() string
}

// Pipeline runs an ordered list of steps against one image report.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps later steps running after a failure.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The last error is kept in the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline. Add steps with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence against one image.
// Cancellation is checked before each step; steps handle their own timeouts.
//
// The first step error is returned unless continueOnError is set, in which
// case every step runs and the last error stays in the report.
func (p *Pipeline) Execute(ctx context.Context, report *model.ImageReport) error {
	defer func() {
		report.FinishedAt = time.Now()
	}()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("analysis interrupted",
				"step", step.Name(),
				"image", report.Path,
				"reason", err,
			)
			recordError(report, err)
			return err
		}

		if err := p.runStep(ctx, step, report); err != nil && !p.continueOnError {
			return err
		}
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
}

// runStep executes one step and logs how long it took.
func (p *Pipeline) runStep(ctx context.Context, step Step, report *model.ImageReport) error {
	p.logger.Debug("executing step", "step", step.Name(), "image", report.Path)

	started := time.Now()
	err := step.Do(ctx, report)
	elapsed := time.Since(started)

	if err != nil {
		p.logger.Error("step failed",
			"step", step.Name(),
			"image", report.Path,
			"elapsed", elapsed,
			"error", err,
		)
		recordError(report, err)
		return err
	}

	p.logger.Debug("step completed",
		"step", step.Name(),
		"image", report.Path,
		"elapsed", elapsed,
	)
	return nil
}

// recordError keeps err as the report's last error.
func recordError(report *model.ImageReport, err error) {
	report.Error = err
	report.ErrorMessage = err.Error()
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
