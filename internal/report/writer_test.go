package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/ai2summary/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.ProjectReport {
	report := model.NewProjectReport("/corpus/u1/HelloPurr.aia")
	report.Digest = "c0ffee"
	report.Summary.Name = "HelloPurr"

	active := model.NewGroupSummary()
	active.Count = 3
	active.Types.AddAll([]string{"component_event", "text", "text"})
	active.Strings.AddAll([]string{"meow", "<b>purr</b>"})
	active.ProcedureNames.Add("greet")

	report.Summary.AddScreen("Screen1", model.ScreenSummary{
		Components: model.Summarized(model.ComponentSummary{
			Count:   2,
			Strings: []string{"Pet the kitty"},
			Types:   model.FrequencyTable{"Button": 1, "Sound": 1},
		}),
		Blocks: model.Summarized(model.BlockSummary{
			TopLevel: model.FrequencyTable{"component_event": 1, "text": 1},
			Active:   model.Summarized(active),
			Orphan:   model.WithSentinel[model.GroupSummary](model.SentinelNoOrphanBlocks),
		}),
	})
	report.Summary.AddScreen("Settings", model.ScreenSummary{
		Components: model.WithSentinel[model.ComponentSummary](model.SentinelNoComponents),
		Blocks:     model.WithSentinel[model.BlockSummary](model.SentinelMalformedBlockFile),
	})
	report.Summary.Media = []string{"kitty.png", "meow.mp3"}
	return report
}

// TestJSONWriter tests the summary document writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes sorted indented document", func(t *testing.T) {
		t.Parallel()

		report := model.NewProjectReport("/tmp/Hello.aia")
		report.Summary.Name = "Hello"
		report.Summary.AddScreen("Screen1", model.ScreenSummary{
			Components: model.WithSentinel[model.ComponentSummary](model.SentinelNoComponents),
			Blocks:     model.WithSentinel[model.BlockSummary](model.SentinelNoBlocks),
		})
		report.Summary.Media = []string{"a<b>.png"}

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := `{
  "**Project Name": "Hello",
  "*Media Assets": [
    "a<b>.png"
  ],
  "*Number of Screens": 1,
  "Screen1": {
    "Blocks": "no blocks",
    "Components": "no components"
  }
}
`
		if got := buf.String(); got != want {
			t.Errorf("got:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("compact output without indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent("")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := strings.TrimSuffix(buf.String(), "\n")
		if strings.Contains(out, "\n") {
			t.Error("compact output should be a single line")
		}
		if !strings.Contains(out, `"<b>purr</b>":1`) {
			t.Errorf("HTML characters should not be escaped: %s", out)
		}
	})

	t.Run("legacy layout", func(t *testing.T) {
		t.Parallel()

		report := model.NewProjectReport("/tmp/Hello.aia")
		report.Summary.Name = "Café 😀"
		report.Summary.AddScreen("Screen1", model.ScreenSummary{
			Components: model.WithSentinel[model.ComponentSummary](model.SentinelNoComponents),
			Blocks:     model.WithSentinel[model.BlockSummary](model.SentinelNoBlocks),
		})

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithLegacyLayout()).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := `{
  "**Project Name":"Caf\u00e9 \ud83d\ude00",
  "*Media Assets":[],
  "*Number of Screens":1,
  "Screen1":{
    "Blocks":"no blocks",
    "Components":"no components"
  }
}`
		if got := buf.String(); got != want {
			t.Errorf("got:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("envelope holds the whole report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithEnvelope()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.ProjectReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not a report: %v", err)
		}
		if decoded.Digest != "c0ffee" || decoded.Summary.Name != "HelloPurr" {
			t.Errorf("decoded = %+v", decoded)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes project sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()

		for _, want := range []string{
			"# HelloPurr",
			"## Screen1",
			"## Settings",
			"## Media Assets",
			"`component_event`",
			"Pet the kitty",
			"No Orphan Blocks",
			"No Components",
			"Malformed Block File",
			"pie",
			"kitty.png",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists media details", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.MediaDetails = []model.MediaDetail{
			{Name: "kitty.jpg", Size: 1024, Kind: model.MediaImage, HasEXIF: true, EXIFTags: []string{"GPSLatitude", "Make"}},
		}

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "GPSLatitude, Make") {
			t.Error("expected EXIF tags in media table")
		}
		if !strings.Contains(output, "GPS coordinates") {
			t.Error("expected GPS warning")
		}
	})

	t.Run("escapes user strings", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Summary.Name = "# Not | a heading"
		screen := report.Summary.Screens["Screen1"]
		comps, _ := screen.Components.Value()
		comps.Strings = []string{"a|b `c`", "*bold*"}
		screen.Components = model.Summarized(comps)
		blocks, _ := screen.Blocks.Value()
		blocks.TopLevel = model.FrequencyTable{"x|y`z": 1}
		active, _ := blocks.Active.Value()
		active.Strings.Add("1 < 2 | 3")
		blocks.Active = model.Summarized(active)
		screen.Blocks = model.Summarized(blocks)
		report.Summary.Screens["Screen1"] = screen

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()

		for _, want := range []string{
			"# \\# Not \\| a heading",
			"a\\|b \\`c\\`",
			"\\*bold\\*",
			"``x\\|y`z``",
			"- 1 \\< 2 \\| 3 (1)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "a|b") || strings.Contains(output, "x|y") {
			t.Error("table separators in user strings must be escaped")
		}
	})

	t.Run("shows error status", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.SetError(errors.New("entry not found: Settings.scm"))

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Error - entry not found: Settings.scm") {
			t.Error("expected error status")
		}
	})
}

// TestLegacyLayout tests re-indenting compact JSON.
func TestLegacyLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		compact string
		indent  string
		want    string
	}{
		{
			name:    "nested containers",
			compact: `{"a":[],"b":{"c":[1,2]},"d":{}}`,
			indent:  "  ",
			want:    "{\n  \"a\":[],\n  \"b\":{\n    \"c\":[\n      1,\n      2\n    ]\n  },\n  \"d\":{}\n}",
		},
		{
			name:    "structural characters inside strings",
			compact: `{"k,:{":"[\"]\\"}`,
			indent:  "  ",
			want:    "{\n  \"k,:{\":\"[\\\"]\\\\\"\n}",
		},
		{
			name:    "non-ASCII and DEL escaped",
			compact: "[\"é\x7f<\"]",
			indent:  " ",
			want:    "[\n \"\\u00e9\\u007f<\"\n]",
		},
		{
			name:    "no indent stays on one line",
			compact: `{"a":[1,2]}`,
			want:    `{"a":[1,2]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := string(legacyLayout([]byte(tt.compact), tt.indent)); got != tt.want {
				t.Errorf("legacyLayout() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes one line per screen", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()

		for _, want := range []string{
			"Project: HelloPurr",
			"Status:  Complete",
			"Screens: 2  Active blocks: 3  Orphan blocks: 0  Media: 2",
			"[Screen1] 2 component type(s), 3 active / 0 orphan block(s)",
			"[Settings] no components, malformed block file",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "component_event") {
			t.Error("block types should only appear in verbose mode")
		}
	})

	t.Run("verbose lists top block types", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "text") || !strings.Contains(buf.String(), "component_event") {
			t.Error("expected block types in verbose output")
		}
	})

	t.Run("writes totals", func(t *testing.T) {
		t.Parallel()

		failed := model.NewProjectReport("/corpus/u2/Broken.aia")
		failed.SetError(errors.New("boom"))
		skipped := model.NewProjectReport("/corpus/u3/Same.aia")
		skipped.Skipped = true

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteTotals([]*model.ProjectReport{createTestReport(), failed, skipped, nil}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Projects: 1 summarized, 1 failed, 1 skipped") {
			t.Errorf("unexpected totals:\n%s", buf.String())
		}
	})
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var jsonBuf, textBuf bytes.Buffer
	mw := NewMultiWriter(NewJSONWriter(&jsonBuf), NewSimpleWriter(&textBuf))

	n, err := mw.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != jsonBuf.Len()+textBuf.Len() {
		t.Errorf("wrote %d bytes, buffers hold %d", n, jsonBuf.Len()+textBuf.Len())
	}
	if jsonBuf.Len() == 0 || textBuf.Len() == 0 {
		t.Error("expected both writers to receive the report")
	}
}

// TestOutputPath tests summary file naming.
func TestOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		source    string
		outputDir string
		ext       string
		want      string
	}{
		{name: "next to archive", source: filepath.Join("corpus", "u1", "Hello.aia"), ext: ExtJSON, want: filepath.Join("corpus", "u1", "Hello_summary.json")},
		{name: "zip archive", source: filepath.Join("corpus", "u1", "Hello.zip"), ext: ExtMarkdown, want: filepath.Join("corpus", "u1", "Hello_summary.md")},
		{name: "output dir", source: filepath.Join("corpus", "u1", "Hello.aia"), outputDir: "out", ext: ExtJSON, want: filepath.Join("out", "Hello_summary.json")},
		{name: "dots in name", source: "My.Cool.App.aia", ext: ExtJSON, want: "My.Cool.App_summary.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := OutputPath(tt.source, tt.outputDir, tt.ext); got != tt.want {
				t.Errorf("OutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestWriteFiles tests writing summary files to disk.
func TestWriteFiles(t *testing.T) {
	t.Parallel()

	t.Run("writes next to archive", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		report := createTestReport()
		report.Source = filepath.Join(dir, "HelloPurr.aia")

		written, err := WriteFiles(report, FileOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := filepath.Join(dir, "HelloPurr_summary.json")
		if len(written) != 1 || written[0] != want {
			t.Fatalf("written = %v, want [%s]", written, want)
		}

		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("failed to read summary: %v", err)
		}
		if !strings.HasPrefix(string(data), "{\n  \"**Project Name\": \"HelloPurr\",") {
			t.Errorf("unexpected summary start: %.60s", data)
		}
	})

	t.Run("writes markdown into output dir", func(t *testing.T) {
		t.Parallel()

		outDir := filepath.Join(t.TempDir(), "summaries")
		report := createTestReport()

		written, err := WriteFiles(report, FileOptions{OutputDir: outDir, Markdown: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(written) != 2 {
			t.Fatalf("written = %v", written)
		}
		for _, p := range written {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("missing %s: %v", p, err)
			}
			if filepath.Dir(p) != outDir {
				t.Errorf("%s not in %s", p, outDir)
			}
		}
	})

	t.Run("writes legacy layout", func(t *testing.T) {
		t.Parallel()

		outDir := t.TempDir()
		written, err := WriteFiles(createTestReport(), FileOptions{OutputDir: outDir, LegacyJSON: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(written[0])
		if err != nil {
			t.Fatalf("failed to read summary: %v", err)
		}
		if !strings.HasPrefix(string(data), "{\n  \"**Project Name\":\"HelloPurr\",\n") {
			t.Errorf("unexpected summary start: %.60s", data)
		}
		if strings.HasSuffix(string(data), "\n") {
			t.Error("legacy layout has no trailing newline")
		}
	})

	t.Run("unwritable output leaves no files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "summaries")
		if err := os.WriteFile(blocker, nil, 0o600); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		written, err := WriteFiles(createTestReport(), FileOptions{OutputDir: blocker, Markdown: true})
		if err == nil {
			t.Fatal("expected error for output dir that is a file")
		}
		if len(written) != 0 {
			t.Errorf("written = %v", written)
		}
	})
}
