package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/ai2summary/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display: one block per project with
// a line per screen.
type SimpleWriter struct {
	baseWriter

	// verbose adds the most frequent block types of each screen.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// topTypes is the number of block types listed per screen in verbose mode.
const topTypes = 3

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ProjectReport) (int, error) {
	var sb strings.Builder

	summary := report.Summary
	if summary == nil {
		summary = model.NewProjectSummary("")
	}

	name := summary.Name
	if name == "" {
		name = "(unnamed)"
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Project: %s\n", name))
	sb.WriteString(fmt.Sprintf("Archive: %s\n", report.Source))

	switch {
	case report.Skipped:
		sb.WriteString("Status:  Skipped (unchanged)\n")
	case report.Failed():
		sb.WriteString(fmt.Sprintf("Status:  ERROR - %s\n", report.ErrorMessage))
	default:
		sb.WriteString("Status:  Complete\n")
	}

	screens, active, orphan := report.Totals()
	sb.WriteString(fmt.Sprintf("Screens: %d  Active blocks: %d  Orphan blocks: %d  Media: %d\n",
		screens, active, orphan, len(summary.Media)))

	for _, screen := range summary.SortedScreenNames() {
		w.writeScreen(&sb, screen, summary.Screens[screen])
	}

	return w.output.Write([]byte(sb.String()))
}

// writeScreen writes one line per screen, plus the top block types in
// verbose mode.
func (w *SimpleWriter) writeScreen(sb *strings.Builder, name string, screen model.ScreenSummary) {
	comps := string(screen.Components.Sentinel())
	if c, ok := screen.Components.Value(); ok {
		comps = fmt.Sprintf("%d component type(s)", c.Count)
	}

	blocks, ok := screen.Blocks.Value()
	if !ok {
		sb.WriteString(fmt.Sprintf("  [%s] %s, %s\n", name, comps, screen.Blocks.Sentinel()))
		return
	}

	active, orphan := screen.BlockCounts()
	sb.WriteString(fmt.Sprintf("  [%s] %s, %d active / %d orphan block(s)\n", name, comps, active, orphan))

	if !w.verbose {
		return
	}
	if g, ok := blocks.Active.Value(); ok {
		ranked := g.Types.Ranked()
		if len(ranked) > topTypes {
			ranked = ranked[:topTypes]
		}
		for _, e := range ranked {
			sb.WriteString(fmt.Sprintf("      %-36s %d\n", e.Value, e.Count))
		}
	}
}

// WriteTotals writes a closing tally over all reports of a run.
func (w *SimpleWriter) WriteTotals(reports []*model.ProjectReport) (int, error) {
	var ok, failed, skipped, screens, active, orphan int
	for _, r := range reports {
		switch {
		case r == nil:
			continue
		case r.Skipped:
			skipped++
			continue
		case r.Failed():
			failed++
		default:
			ok++
		}
		s, a, o := r.Totals()
		screens += s
		active += a
		orphan += o
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Projects: %d summarized, %d failed, %d skipped\n", ok, failed, skipped))
	sb.WriteString(fmt.Sprintf("Screens:  %d  Active blocks: %d  Orphan blocks: %d\n", screens, active, orphan))
	return w.output.Write([]byte(sb.String()))
}
