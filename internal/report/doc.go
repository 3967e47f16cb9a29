// Package report writes project summaries.
//
// This package contains writers for different output formats:
//   - JSONWriter: the <project>_summary.json document, key-sorted and
//     indented by two spaces
//   - MarkdownWriter: a readable per-project document with tables
//   - SimpleWriter: a short human-readable block for terminal display
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. WriteFiles places
// the summary files next to the archive or in an output directory.
package report
