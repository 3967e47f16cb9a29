package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/ai2summary/internal/config"
	"github.com/nao1215/ai2summary/internal/model"
)

// File extensions of the summary files.
const (
	ExtJSON     = ".json"
	ExtMarkdown = ".md"
)

// Writer defines the interface for report output.
// Implementations write project reports in various formats.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ProjectReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// WriteFiles uses it to render every summary file of a project in one pass.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.ProjectReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// OutputPath returns the path of the summary file for the archive at
// source: the archive name without its extension, the summary suffix and
// ext. The file goes into outputDir, or next to the archive when outputDir
// is empty.
func OutputPath(source, outputDir, ext string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, base+config.SummarySuffix+ext)
}

// FileOptions selects the summary files written for a project.
type FileOptions struct {
	// OutputDir receives the files. Empty writes next to the archive.
	OutputDir string

	// Markdown also writes the Markdown report.
	Markdown bool

	// LegacyJSON writes the JSON summary in the legacy layout.
	LegacyJSON bool
}

// WriteFiles writes the JSON summary of report, and its Markdown report
// when opts.Markdown is set. Every file is rendered before the first one
// is created, so a rendering failure leaves no partial summary behind.
// It returns the paths written.
func WriteFiles(report *model.ProjectReport, opts FileOptions) ([]string, error) {
	var jsonOpts []JSONWriterOption
	if opts.LegacyJSON {
		jsonOpts = append(jsonOpts, WithLegacyLayout())
	}

	var jsonBuf, mdBuf bytes.Buffer
	paths := []string{OutputPath(report.Source, opts.OutputDir, ExtJSON)}
	buffers := []*bytes.Buffer{&jsonBuf}
	writers := []Writer{NewJSONWriter(&jsonBuf, jsonOpts...)}
	if opts.Markdown {
		paths = append(paths, OutputPath(report.Source, opts.OutputDir, ExtMarkdown))
		buffers = append(buffers, &mdBuf)
		writers = append(writers, NewMarkdownWriter(&mdBuf))
	}

	if _, err := NewMultiWriter(writers...).Write(report); err != nil {
		return nil, fmt.Errorf("failed to render summary of %s: %w", report.Source, err)
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	written := make([]string, 0, len(paths))
	for i, p := range paths {
		if err := os.WriteFile(filepath.Clean(p), buffers[i].Bytes(), 0o644); err != nil { //nolint:gosec // summaries are meant to be shared
			return written, fmt.Errorf("failed to write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}
