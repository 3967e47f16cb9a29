// Package metrics counts summarized projects, screens and blocks with
// Prometheus collectors and writes them as a node exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/ai2summary/internal/model"
)

// Project status label values.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Recorder holds the collectors of one run. Collectors are registered on a
// private registry so several recorders can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	projects  *prometheus.CounterVec
	screens   prometheus.Counter
	blocks    *prometheus.CounterVec
	malformed prometheus.Counter
	duration  prometheus.Histogram
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		projects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai2summary_projects_total",
			Help: "Total number of projects processed, by status.",
		}, []string{"status"}),
		screens: factory.NewCounter(prometheus.CounterOpts{
			Name: "ai2summary_screens_total",
			Help: "Total number of screens summarized.",
		}),
		blocks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai2summary_blocks_total",
			Help: "Total number of blocks aggregated, by classification group.",
		}, []string{"group"}),
		malformed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ai2summary_malformed_screens_total",
			Help: "Total number of screens whose block file could not be parsed.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ai2summary_project_seconds",
			Help:    "Time spent summarizing one project.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records the outcome of one project report. It is safe for
// concurrent use.
func (r *Recorder) Observe(report *model.ProjectReport) {
	switch {
	case report.Skipped:
		r.projects.WithLabelValues(StatusSkipped).Inc()
		return
	case report.Failed():
		r.projects.WithLabelValues(StatusFailed).Inc()
	default:
		r.projects.WithLabelValues(StatusOK).Inc()
	}
	r.duration.Observe(report.Duration.Seconds())

	if report.Summary == nil {
		return
	}
	for _, screen := range report.Summary.Screens {
		r.screens.Inc()
		if screen.Blocks.Outcome() == model.OutcomeMalformed {
			r.malformed.Inc()
		}
		active, orphan := screen.BlockCounts()
		r.blocks.WithLabelValues("active").Add(float64(active))
		r.blocks.WithLabelValues("orphan").Add(float64(orphan))
	}
}

// WriteTextfile writes every collected metric to path in the text
// exposition format. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
