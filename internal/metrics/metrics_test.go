package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/ai2summary/internal/model"
)

func screen(active, orphan int) model.ScreenSummary {
	group := func(n int, empty model.Sentinel) model.GroupResult {
		if n == 0 {
			return model.WithSentinel[model.GroupSummary](empty)
		}
		g := model.NewGroupSummary()
		g.Count = n
		return model.Summarized(g)
	}
	return model.ScreenSummary{
		Blocks: model.Summarized(model.BlockSummary{
			TopLevel: model.NewFrequencyTable(),
			Active:   group(active, model.SentinelNoActiveBlocks),
			Orphan:   group(orphan, model.SentinelNoOrphanBlocks),
		}),
		Components: model.WithSentinel[model.ComponentSummary](model.SentinelNoComponents),
	}
}

func TestRecorderWriteTextfile(t *testing.T) {
	t.Parallel()

	r := NewRecorder()

	ok := model.NewProjectReport("a.aia")
	ok.Duration = 200 * time.Millisecond
	ok.Summary.AddScreen("Screen1", screen(3, 1))
	ok.Summary.AddScreen("Screen2", model.ScreenSummary{
		Blocks:     model.WithSentinel[model.BlockSummary](model.SentinelMalformedBlockFile),
		Components: model.WithSentinel[model.ComponentSummary](model.SentinelNoComponents),
	})
	r.Observe(ok)

	failed := model.NewProjectReport("b.aia")
	failed.SetError(errors.New("boom"))
	r.Observe(failed)

	skipped := model.NewProjectReport("c.aia")
	skipped.Skipped = true
	r.Observe(skipped)

	path := filepath.Join(t.TempDir(), "ai2summary.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`ai2summary_projects_total{status="ok"} 1`,
		`ai2summary_projects_total{status="failed"} 1`,
		`ai2summary_projects_total{status="skipped"} 1`,
		`ai2summary_screens_total 2`,
		`ai2summary_malformed_screens_total 1`,
		`ai2summary_blocks_total{group="active"} 3`,
		`ai2summary_blocks_total{group="orphan"} 1`,
		`ai2summary_project_seconds_count 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile is missing %q:\n%s", want, out)
		}
	}
}

func TestRecordersAreIndependent(t *testing.T) {
	t.Parallel()

	a := NewRecorder()
	b := NewRecorder()
	a.Observe(model.NewProjectReport("x.aia"))

	families, err := b.Registry().Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "ai2summary_projects_total" && len(f.GetMetric()) != 0 {
			t.Errorf("second recorder saw observations of the first")
		}
	}
}
