package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/ai2summary/internal/archive"
	"github.com/nao1215/ai2summary/internal/model"
)

// Job is the unit of work passed through the pipeline: one opened archive
// and the report being filled in for it.
type Job struct {
	// Archive is the project archive being summarized.
	Archive *archive.Archive

	// Report accumulates the results of every step.
	Report *model.ProjectReport
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each one reading the archive and
// writing its part of the report.
type Step interface {
	// Do executes the pipeline step.
	// Returning an error aborts the project unless the pipeline was built
	// with WithContinueOnError.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
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

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked between steps; a step that runs long is expected
// to watch ctx itself.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete (errors are recorded in report).
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	report := job.Report
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			report.SetError(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", report.Source,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", report.Source,
				"error", err,
			)

			report.SetError(err)

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"source", report.Source,
			)
		}

		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// SkipFunc reports whether an archive with the given digest can be skipped.
type SkipFunc func(ctx context.Context, digest string) (bool, error)

// runProject opens the archive at path and runs p over it, unless skip
// reports its digest as unchanged. The returned report always describes
// the project; failures are recorded in it rather than returned.
func runProject(ctx context.Context, p *Pipeline, path string, skip SkipFunc) *model.ProjectReport {
	report := model.NewProjectReport(path)
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
	}()

	a, err := archive.Open(path)
	if err != nil {
		report.SetError(err)
		return report
	}
	report.Digest = a.Digest()

	if skip != nil {
		unchanged, err := skip(ctx, report.Digest)
		if err != nil {
			p.logger.Warn("failed to check archive history",
				"source", path,
				"error", err,
			)
		} else if unchanged {
			p.logger.Info("archive unchanged, skipping", "source", path)
			report.Skipped = true
			return report
		}
	}

	_ = p.Execute(ctx, &Job{Archive: a, Report: report}) //nolint:errcheck // Error is stored in report
	return report
}
