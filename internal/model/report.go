package model

import (
	"time"
)

// ProjectReport is the result of running the summary pipeline over one
// archive. The Summary field is the document written as <name>_summary.json;
// the remaining fields are bookkeeping for logs, history and other writers.
type ProjectReport struct {
	// Source is the archive path that was processed.
	Source string `json:"source"`

	// Digest is the SHA3-256 hex digest of the archive bytes.
	Digest string `json:"digest,omitempty"`

	// DateProcessed is when processing started.
	DateProcessed time.Time `json:"date_processed"`

	// Duration is how long the pipeline ran.
	Duration time.Duration `json:"duration"`

	// Summary is the project summary document.
	Summary *ProjectSummary `json:"summary"`

	// MediaDetails holds per-asset details when media inspection is enabled.
	MediaDetails []MediaDetail `json:"media_details,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Skipped is true when processing was skipped (e.g. archive unchanged).
	Skipped bool `json:"skipped,omitempty"`

	// Error holds the error that aborted processing, if any.
	Error error `json:"-"`

	// ErrorMessage is the serializable form of Error.
	ErrorMessage string `json:"error,omitempty"`
}

// NewProjectReport creates an empty report for the archive at source.
func NewProjectReport(source string) *ProjectReport {
	return &ProjectReport{
		Source:         source,
		DateProcessed:  time.Now(),
		Summary:        NewProjectSummary(""),
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether processing was aborted by an error.
func (r *ProjectReport) Failed() bool {
	return r.Error != nil || r.ErrorMessage != ""
}

// SetError records err as the reason processing stopped.
func (r *ProjectReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Totals returns the number of screens and the active and orphan block
// counts summed over all screens.
func (r *ProjectReport) Totals() (screens, active, orphan int) {
	if r.Summary == nil {
		return 0, 0, 0
	}
	for _, screen := range r.Summary.Screens {
		a, o := screen.BlockCounts()
		active += a
		orphan += o
	}
	return r.Summary.ScreenCount(), active, orphan
}
