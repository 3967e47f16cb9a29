package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/ai2summary/internal/archive"
	"github.com/nao1215/ai2summary/internal/model"
)

// DefaultConcurrency is the number of projects summarized at once when no
// limit is configured.
const DefaultConcurrency = 4

// BatchProcessor summarizes multiple projects concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each project, so per-user
	// settings can differ between projects.
	pipelineFactory func(project archive.Project) *Pipeline

	// concurrency is the maximum number of concurrent projects.
	concurrency int

	// skip decides whether an archive is unchanged. Nil disables skipping.
	skip SkipFunc

	// onReport is called from the worker as soon as a project finishes.
	onReport func(report *model.ProjectReport)

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed project reports.
	// Access is synchronized via mutex.
	results []*model.ProjectReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent projects.
// Values below 1 keep DefaultConcurrency.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithSkipFunc skips archives for which fn reports true.
func WithSkipFunc(fn SkipFunc) BatchOption {
	return func(b *BatchProcessor) {
		b.skip = fn
	}
}

// WithOnReport calls fn for every finished project, before ProcessBatch
// returns. fn runs on worker goroutines and must be safe for concurrent use.
func WithOnReport(fn func(report *model.ProjectReport)) BatchOption {
	return func(b *BatchProcessor) {
		b.onReport = fn
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory function is called once per project.
func NewBatchProcessor(pipelineFactory func(project archive.Project) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
		results:         make([]*model.ProjectReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch summarizes projects concurrently and returns one report per
// project in input order. A failing project is recorded in its report and
// does not stop the others.
//
// When ctx is cancelled, projects not yet started get a report holding the
// context error, and that error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, projects []archive.Project) ([]*model.ProjectReport, error) {
	bp.mu.Lock()
	bp.results = make([]*model.ProjectReport, len(projects))
	bp.mu.Unlock()

	err := bp.ProcessBatchWithCallback(ctx, projects, func(report *model.ProjectReport, index int) {
		bp.mu.Lock()
		bp.results[index] = report
		bp.mu.Unlock()
	})

	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.results, err
}

// ProcessBatchWithCallback summarizes projects and calls callback for each
// finished project. This is useful for writing summaries as soon as they
// are ready.
//
// The callback receives the report and the index of the project in the
// original slice. It is called from worker goroutines, so it must be safe
// for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	projects []archive.Project,
	callback func(report *model.ProjectReport, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_projects", len(projects),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	finish := func(report *model.ProjectReport, index int) {
		if bp.onReport != nil {
			bp.onReport(report)
		}
		callback(report, index)
	}

	for i, project := range projects {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				report := model.NewProjectReport(project.Path)
				report.SetError(gctx.Err())
				finish(report, i)
				return gctx.Err()
			default:
			}

			p := bp.pipelineFactory(project)
			bp.logger.Debug("summarizing project",
				"source", project.Path,
				"user", project.User,
				"steps", p.StepNames(),
				"index", i+1,
				"total", len(projects),
			)

			report := runProject(gctx, p, project.Path, bp.skip)
			if report.Failed() {
				bp.logger.Warn("project failed",
					"source", project.Path,
					"error", report.ErrorMessage,
				)
			}

			finish(report, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_projects", len(projects),
		"elapsed", time.Since(startTime),
	)

	return err
}
