package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/ai2summary/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for reading a summary without a JSON viewer.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// groupTables lists the frequency tables of a block group in the order
// they are rendered.
var groupTables = []struct {
	title string
	table func(g model.GroupSummary) model.FrequencyTable
}{
	{"Types", func(g model.GroupSummary) model.FrequencyTable { return g.Types }},
	{"Procedure Names", func(g model.GroupSummary) model.FrequencyTable { return g.ProcedureNames }},
	{"Procedure Parameter Names", func(g model.GroupSummary) model.FrequencyTable { return g.ProcedureParameterNames }},
	{"Global Variable Names", func(g model.GroupSummary) model.FrequencyTable { return g.GlobalVariableNames }},
	{"Local Variable Names", func(g model.GroupSummary) model.FrequencyTable { return g.LocalVariableNames }},
	{"Strings", func(g model.GroupSummary) model.FrequencyTable { return g.Strings }},
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ProjectReport) (int, error) {
	summary := report.Summary
	if summary == nil {
		summary = model.NewProjectSummary("")
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report, summary)
	w.writeBlockChart(md, report)
	for _, name := range summary.SortedScreenNames() {
		w.writeScreen(md, name, summary.Screens[name])
	}
	w.writeMedia(md, report, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the project overview table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ProjectReport, summary *model.ProjectSummary) {
	title := summary.Name
	if title == "" {
		title = "Unnamed project"
	}
	md.H1(escapeText(title))
	md.PlainText("")

	screens, active, orphan := report.Totals()
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Archive", codeSpan(report.Source)},
			{"Digest", orDash(report.Digest)},
			{"Processed", report.DateProcessed.Format("2006-01-02 15:04:05 MST")},
			{"Screens", strconv.Itoa(screens)},
			{"Active Blocks", strconv.Itoa(active)},
			{"Orphan Blocks", strconv.Itoa(orphan)},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")

	if report.Failed() {
		md.Cautionf("Summarizing stopped early: %s", escapeText(report.ErrorMessage))
		md.PlainText("")
	}
}

// writeBlockChart writes a mermaid pie chart of active and orphan blocks.
func (w *MarkdownWriter) writeBlockChart(md *markdown.Markdown, report *model.ProjectReport) {
	_, active, orphan := report.Totals()
	if active+orphan == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Active and Orphan Blocks"),
		piechart.WithShowData(true),
	)
	if active > 0 {
		chart.LabelAndIntValue("Active", uint64(active))
	}
	if orphan > 0 {
		chart.LabelAndIntValue("Orphan", uint64(orphan))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeScreen writes the components and blocks of one screen.
func (w *MarkdownWriter) writeScreen(md *markdown.Markdown, name string, screen model.ScreenSummary) {
	md.H2(name)
	md.PlainText("")

	md.PlainText("### Components")
	md.PlainText("")
	if comps, ok := screen.Components.Value(); ok {
		md.PlainTextf("%d component type(s).", comps.Count)
		md.PlainText("")
		writeFrequencyTable(md, "Type", comps.Types)
		if len(comps.Strings) > 0 {
			md.PlainText("Text properties:")
			md.PlainText("")
			md.BulletList(escapeAll(comps.Strings)...)
			md.PlainText("")
		}
	} else {
		writeSentinel(md, screen.Components.Sentinel())
	}

	md.PlainText("### Blocks")
	md.PlainText("")
	blocks, ok := screen.Blocks.Value()
	if !ok {
		if screen.Blocks.Sentinel() == model.SentinelMalformedBlockFile {
			md.Warningf("%s: the block file could not be parsed.", sentinelLabel(screen.Blocks.Sentinel()))
			md.PlainText("")
			return
		}
		writeSentinel(md, screen.Blocks.Sentinel())
		return
	}

	md.PlainText("#### Top Level Blocks")
	md.PlainText("")
	writeFrequencyTable(md, "Type", blocks.TopLevel)

	writeGroup(md, "Active Blocks", blocks.Active)
	writeGroup(md, "Orphan Blocks", blocks.Orphan)
}

// writeGroup writes the tables of one block group.
func writeGroup(md *markdown.Markdown, title string, group model.GroupResult) {
	md.PlainText("#### " + title)
	md.PlainText("")

	g, ok := group.Value()
	if !ok {
		writeSentinel(md, group.Sentinel())
		return
	}

	md.PlainTextf("%d block(s).", g.Count)
	md.PlainText("")
	for _, gt := range groupTables {
		table := gt.table(g)
		if len(table) == 0 {
			continue
		}
		md.Details(gt.title, frequencyList(table))
	}
	md.PlainText("")
}

// writeMedia writes the media asset listing, with inspection results when
// media details were collected.
func (w *MarkdownWriter) writeMedia(md *markdown.Markdown, report *model.ProjectReport, summary *model.ProjectSummary) {
	md.H2("Media Assets")
	md.PlainText("")

	if len(report.MediaDetails) > 0 {
		rows := make([][]string, 0, len(report.MediaDetails))
		located := 0
		for _, d := range report.MediaDetails {
			exifText := "-"
			if d.HasEXIF {
				exifText = "yes"
				if len(d.EXIFTags) > 0 {
					exifText = strings.Join(d.EXIFTags, ", ")
				}
			}
			if d.HasLocation() {
				located++
			}
			rows = append(rows, []string{escapeText(d.Name), string(d.Kind), strconv.FormatInt(d.Size, 10), escapeText(exifText)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Kind", "Size", "EXIF"},
			Rows:   rows,
		})
		md.PlainText("")
		if located > 0 {
			md.Warningf("%d media asset(s) carry GPS coordinates.", located)
			md.PlainText("")
		}
		return
	}

	if len(summary.Media) == 0 {
		md.PlainText("No media assets.")
		md.PlainText("")
		return
	}
	md.BulletList(escapeAll(summary.Media)...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by ai2summary*")
}

// writeFrequencyTable writes a two-column table ranked by count.
func writeFrequencyTable(md *markdown.Markdown, header string, table model.FrequencyTable) {
	if len(table) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}
	ranked := table.Ranked()
	rows := make([][]string, len(ranked))
	for i, e := range ranked {
		rows[i] = []string{codeSpan(e.Value), strconv.Itoa(e.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{header, "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// frequencyList renders a frequency table as "value (count)" lines.
func frequencyList(table model.FrequencyTable) string {
	lines := make([]string, 0, len(table))
	for _, e := range table.Ranked() {
		lines = append(lines, "- "+escapeText(e.Value)+" ("+strconv.Itoa(e.Count)+")")
	}
	return strings.Join(lines, "\n")
}

// writeSentinel writes a sentinel as a note.
func writeSentinel(md *markdown.Markdown, s model.Sentinel) {
	md.Note(sentinelLabel(s))
	md.PlainText("")
}

// sentinelLabel title-cases a sentinel for display.
func sentinelLabel(s model.Sentinel) string {
	return cases.Title(language.English).String(string(s))
}

func statusText(report *model.ProjectReport) string {
	switch {
	case report.Skipped:
		return "Skipped (unchanged)"
	case report.Failed():
		return "Error - " + escapeText(report.ErrorMessage)
	default:
		return "Complete"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}


// newlineReplacer folds line breaks, which would end a table row or list
// item.
var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// textEscaper backslash-escapes the characters that open Markdown inline
// syntax or split a table cell.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
)

// escapeText renders s as literal text on one line.
func escapeText(s string) string {
	return textEscaper.Replace(newlineReplacer.Replace(s))
}

func escapeAll(values []string) []string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = escapeText(v)
	}
	return escaped
}

// codeSpan renders s as inline code usable inside a table cell. The fence
// is one backtick longer than the longest run of backticks in s.
func codeSpan(s string) string {
	if s == "" {
		return "*(empty)*"
	}
	s = strings.ReplaceAll(newlineReplacer.Replace(s), "|", `\|`)
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}
