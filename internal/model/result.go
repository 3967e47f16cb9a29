package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Outcome tells which variant a Result holds.
type Outcome uint8

const (
	// OutcomeSummary means the Result carries a computed value.
	OutcomeSummary Outcome = iota
	// OutcomeEmpty means there was nothing to summarize.
	OutcomeEmpty
	// OutcomeMalformed means the input could not be parsed.
	OutcomeMalformed
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSummary:
		return "summary"
	case OutcomeEmpty:
		return "empty"
	case OutcomeMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Sentinel is the string written in place of a summary when a condition is
// empty or malformed.
type Sentinel string

// Sentinel values as they appear in the JSON report.
const (
	SentinelNoComponents       Sentinel = "no components"
	SentinelMalformedBlockFile Sentinel = "malformed block file"
	SentinelNoBlocks           Sentinel = "no blocks"
	SentinelNoActiveBlocks     Sentinel = "no active blocks"
	SentinelNoOrphanBlocks     Sentinel = "no orphan blocks"
)

// ErrUnknownSentinel is returned when a report holds a string where a
// summary object or a known sentinel was expected.
var ErrUnknownSentinel = errors.New("unknown sentinel value")

var knownSentinels = map[Sentinel]Outcome{
	SentinelNoComponents:       OutcomeEmpty,
	SentinelMalformedBlockFile: OutcomeMalformed,
	SentinelNoBlocks:           OutcomeEmpty,
	SentinelNoActiveBlocks:     OutcomeEmpty,
	SentinelNoOrphanBlocks:     OutcomeEmpty,
}

// Outcome returns the variant a sentinel stands for.
func (s Sentinel) Outcome() Outcome {
	if o, ok := knownSentinels[s]; ok {
		return o
	}
	return OutcomeEmpty
}

// Result is either a summary value or a sentinel.
// It serializes to the value's JSON object or to the sentinel string.
type Result[T any] struct {
	outcome  Outcome
	value    T
	sentinel Sentinel
}

// Summarized wraps a computed value.
func Summarized[T any](v T) Result[T] {
	return Result[T]{outcome: OutcomeSummary, value: v}
}

// WithSentinel returns a Result holding s instead of a value.
func WithSentinel[T any](s Sentinel) Result[T] {
	return Result[T]{outcome: s.Outcome(), sentinel: s}
}

// Outcome returns the variant held by r.
func (r Result[T]) Outcome() Outcome {
	return r.outcome
}

// Value returns the summary and true, or the zero value and false when r
// holds a sentinel.
func (r Result[T]) Value() (T, bool) {
	if r.outcome != OutcomeSummary {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Sentinel returns the sentinel, or "" when r holds a summary.
func (r Result[T]) Sentinel() Sentinel {
	return r.sentinel
}

// MarshalJSON implements json.Marshaler.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.outcome != OutcomeSummary {
		return marshalNoEscape(string(r.sentinel))
	}
	return marshalNoEscape(r.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		outcome, ok := knownSentinels[Sentinel(s)]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSentinel, s)
		}
		var zero T
		*r = Result[T]{outcome: outcome, value: zero, sentinel: Sentinel(s)}
		return nil
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*r = Summarized(v)
	return nil
}

// marshalNoEscape encodes v without HTML escaping so that string literals
// such as "<" survive unchanged in nested Marshaler output.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
