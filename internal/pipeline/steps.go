package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gobwas/glob"

	"github.com/nao1215/ai2summary/internal/archive"
	"github.com/nao1215/ai2summary/internal/blocks"
	"github.com/nao1215/ai2summary/internal/components"
	"github.com/nao1215/ai2summary/internal/media"
	"github.com/nao1215/ai2summary/internal/model"
)

// ProjectNameStep reads the project name from project.properties.
type ProjectNameStep struct{}

// NewProjectNameStep creates a new project name step.
func NewProjectNameStep() *ProjectNameStep {
	return &ProjectNameStep{}
}

// Name returns the step name.
func (s *ProjectNameStep) Name() string {
	return "project_name"
}

// Do executes the project name step.
func (s *ProjectNameStep) Do(_ context.Context, job *Job) error {
	name, err := job.Archive.ProjectName()
	if err != nil {
		return err
	}
	job.Report.Summary.Name = name
	return nil
}

// ScreensStep summarizes the components and blocks of every screen.
type ScreensStep struct {
	logger *slog.Logger

	// keepGoing summarizes the remaining screens after one fails. The
	// failures are returned together once every screen was tried.
	keepGoing bool
}

// NewScreensStep creates a new screens step. With keepGoing, a screen
// that cannot be summarized is left out and the others are still added.
func NewScreensStep(logger *slog.Logger, keepGoing bool) *ScreensStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreensStep{logger: logger, keepGoing: keepGoing}
}

// Name returns the step name.
func (s *ScreensStep) Name() string {
	return "screens"
}

// Do executes the screens step.
func (s *ScreensStep) Do(ctx context.Context, job *Job) error {
	var errs []error
	for _, screen := range job.Archive.ScreenNames() {
		if err := ctx.Err(); err != nil {
			return err
		}

		summary, err := SummarizeScreen(job.Archive, screen)
		if err != nil {
			err = fmt.Errorf("screen %s: %w", screen, err)
			if !s.keepGoing {
				return err
			}
			s.logger.Warn("screen left out",
				"source", job.Report.Source,
				"screen", screen,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		if summary.Blocks.Sentinel() == model.SentinelMalformedBlockFile {
			s.logger.Warn("block file malformed",
				"source", job.Report.Source,
				"screen", screen,
			)
		}
		job.Report.Summary.AddScreen(screen, summary)
	}
	return errors.Join(errs...)
}

// SummarizeScreen builds the summary of one screen from its .scm and .bky
// entries.
func SummarizeScreen(a *archive.Archive, screen string) (model.ScreenSummary, error) {
	scm, err := a.Lines(screen + archive.ComponentsExt)
	if err != nil {
		return model.ScreenSummary{}, err
	}
	comps, err := components.Summarize(scm)
	if err != nil {
		return model.ScreenSummary{}, err
	}

	bky, err := a.Lines(screen + archive.BlocksExt)
	if err != nil {
		return model.ScreenSummary{}, err
	}
	blks, err := blocks.SummarizeLines(bky)
	if err != nil {
		return model.ScreenSummary{}, err
	}

	return model.ScreenSummary{Blocks: blks, Components: comps}, nil
}

// MediaStep lists the media assets of the project.
type MediaStep struct {
	ignore []glob.Glob
}

// NewMediaStep creates a media step that leaves out base names matching
// any of the ignore patterns.
func NewMediaStep(ignore []glob.Glob) *MediaStep {
	return &MediaStep{ignore: ignore}
}

// Name returns the step name.
func (s *MediaStep) Name() string {
	return "media"
}

// Do executes the media step.
func (s *MediaStep) Do(_ context.Context, job *Job) error {
	job.Report.Summary.Media = job.Archive.MediaFiles(s.ignore)
	return nil
}

// MediaDetailsStep inspects every media asset for its kind and EXIF metadata.
type MediaDetailsStep struct {
	ignore []glob.Glob
	logger *slog.Logger
}

// NewMediaDetailsStep creates a media details step.
func NewMediaDetailsStep(ignore []glob.Glob, logger *slog.Logger) *MediaDetailsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaDetailsStep{ignore: ignore, logger: logger}
}

// Name returns the step name.
func (s *MediaDetailsStep) Name() string {
	return "media_details"
}

// Do executes the media details step.
func (s *MediaDetailsStep) Do(ctx context.Context, job *Job) error {
	entries := job.Archive.MediaEntries(s.ignore)
	details := make([]model.MediaDetail, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := job.Archive.ReadEntry(entry.Name)
		if err != nil {
			return err
		}
		detail := media.Inspect(entry.Name, data)
		if detail.HasLocation() {
			s.logger.Warn("media asset carries GPS location",
				"source", job.Report.Source,
				"asset", detail.Name,
			)
		}
		details = append(details, detail)
	}
	job.Report.MediaDetails = details
	return nil
}

// Settings selects the steps of a project pipeline.
type Settings struct {
	// MediaIgnore leaves matching base names out of the media listing.
	MediaIgnore []glob.Glob

	// MediaDetails adds the media details step.
	MediaDetails bool

	// ContinueOnError runs every step and every screen even after a
	// failure, leaving a partial summary in the report.
	ContinueOnError bool
}

// NewProjectPipeline creates the standard pipeline for one project.
func NewProjectPipeline(settings Settings, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := New(WithLogger(logger), WithContinueOnError(settings.ContinueOnError))
	p.AddSteps(
		NewProjectNameStep(),
		NewScreensStep(logger, settings.ContinueOnError),
		NewMediaStep(settings.MediaIgnore),
	)
	if settings.MediaDetails {
		p.AddStep(NewMediaDetailsStep(settings.MediaIgnore, logger))
	}
	return p
}
