package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/nao1215/ai2summary/internal/model"
)

// JSONWriter outputs reports in JSON format.
// By default it writes the project summary document; object keys are
// sorted, nesting is indented by two spaces and HTML characters are left
// unescaped so block strings appear as written.
type JSONWriter struct {
	baseWriter

	// indentString is the indentation string. Empty means compact output.
	indentString string

	// envelope writes the whole ProjectReport instead of the summary.
	envelope bool

	// legacy selects the byte layout of the earlier Python summarizer.
	legacy bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets the indentation string. An empty string produces
// compact output.
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentString = indent
	}
}

// WithEnvelope writes the complete report (source, digest, timings, media
// details and the summary) instead of the summary document alone.
func WithEnvelope() JSONWriterOption {
	return func(w *JSONWriter) {
		w.envelope = true
	}
}

// WithLegacyLayout writes the layout produced by the earlier Python
// summarizer: no space after colons, non-ASCII characters escaped as
// \uXXXX and no trailing newline. Files written this way compare equal,
// byte for byte, to summaries from older runs.
func WithLegacyLayout() JSONWriterOption {
	return func(w *JSONWriter) {
		w.legacy = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indentString: "  ",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.ProjectReport) (int, error) {
	if w.envelope {
		return w.writeJSON(report)
	}
	summary := report.Summary
	if summary == nil {
		summary = model.NewProjectSummary("")
	}
	return w.writeJSON(summary)
}

// writeJSON encodes v and writes it to the output with a trailing newline,
// or in the legacy layout without one.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indentString != "" && !w.legacy {
		enc.SetIndent("", w.indentString)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	if w.legacy {
		return w.output.Write(legacyLayout(bytes.TrimSuffix(buf.Bytes(), []byte("\n")), w.indentString))
	}
	return w.output.Write(buf.Bytes())
}

// legacyLayout re-indents compact JSON with one item per line and no
// space after colons. Empty objects and arrays stay on one line. Inside
// strings, DEL and every non-ASCII rune become \u escapes, with surrogate
// pairs outside the Basic Multilingual Plane.
func legacyLayout(compact []byte, indent string) []byte {
	var out bytes.Buffer
	depth := 0
	newline := func() {
		if indent == "" {
			return
		}
		out.WriteByte('\n')
		for range depth {
			out.WriteString(indent)
		}
	}

	inString, escaped := false, false
	for i := 0; i < len(compact); i++ {
		c := compact[i]
		if inString {
			switch {
			case escaped:
				escaped = false
				out.WriteByte(c)
			case c == '\\':
				escaped = true
				out.WriteByte(c)
			case c == '"':
				inString = false
				out.WriteByte(c)
			case c == 0x7f:
				out.WriteString(`\u007f`)
			case c >= utf8.RuneSelf:
				r, size := utf8.DecodeRune(compact[i:])
				i += size - 1
				if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
					fmt.Fprintf(&out, `\u%04x\u%04x`, r1, r2)
				} else {
					fmt.Fprintf(&out, `\u%04x`, r)
				}
			default:
				out.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			out.WriteByte(c)
		case '{', '[':
			if i+1 < len(compact) && (compact[i+1] == '}' || compact[i+1] == ']') {
				out.WriteByte(c)
				out.WriteByte(compact[i+1])
				i++
				continue
			}
			out.WriteByte(c)
			depth++
			newline()
		case '}', ']':
			depth--
			newline()
			out.WriteByte(c)
		case ',':
			out.WriteByte(c)
			newline()
		default:
			out.WriteByte(c)
		}
	}
	return out.Bytes()
}
