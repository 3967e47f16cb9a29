package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

// encodeRaw encodes v the way the report writer does, without HTML escaping.
func encodeRaw(t *testing.T, v any) string {
	t.Helper()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// TestResultMarshalJSON tests both variants of Result.
func TestResultMarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("sentinel serializes as string", func(t *testing.T) {
		t.Parallel()

		r := WithSentinel[GroupSummary](SentinelNoOrphanBlocks)
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `"no orphan blocks"` {
			t.Errorf("got %s", data)
		}
	})

	t.Run("summary serializes as object with sorted keys", func(t *testing.T) {
		t.Parallel()

		summary := ComponentSummary{
			Count:   1,
			Strings: []string{"<b>Click</b>"},
			Types:   FrequencyTable{"Button": 2},
		}
		got := encodeRaw(t, Summarized(summary))
		expected := `{"Number of Components":1,"Strings":["<b>Click</b>"],"Type and Frequency":{"Button":2}}`
		if got != expected {
			t.Errorf("got %s, expected %s", got, expected)
		}
	})
}

// TestResultUnmarshalJSON tests decoding sentinels and summaries.
func TestResultUnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("malformed sentinel", func(t *testing.T) {
		t.Parallel()

		var r BlocksResult
		if err := json.Unmarshal([]byte(`"malformed block file"`), &r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Outcome() != OutcomeMalformed {
			t.Errorf("expected malformed outcome, got %s", r.Outcome())
		}
		if _, ok := r.Value(); ok {
			t.Error("expected no value")
		}
	})

	t.Run("empty sentinel", func(t *testing.T) {
		t.Parallel()

		var r ComponentsResult
		if err := json.Unmarshal([]byte(`"no components"`), &r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Outcome() != OutcomeEmpty {
			t.Errorf("expected empty outcome, got %s", r.Outcome())
		}
		if r.Sentinel() != SentinelNoComponents {
			t.Errorf("got sentinel %q", r.Sentinel())
		}
	})

	t.Run("unknown string is rejected", func(t *testing.T) {
		t.Parallel()

		var r GroupResult
		err := json.Unmarshal([]byte(`"NO BLOCKS AT ALL"`), &r)
		if !errors.Is(err, ErrUnknownSentinel) {
			t.Errorf("expected ErrUnknownSentinel, got %v", err)
		}
	})

	t.Run("object becomes summary", func(t *testing.T) {
		t.Parallel()

		var r GroupResult
		data := `{"*Number of Blocks":2,"Types":{"text":2}}`
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		g, ok := r.Value()
		if !ok {
			t.Fatal("expected a value")
		}
		if g.Count != 2 || g.Types["text"] != 2 {
			t.Errorf("unexpected summary %+v", g)
		}
	})
}

// TestSentinelOutcome tests the mapping of sentinels to outcomes.
func TestSentinelOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sentinel Sentinel
		expected Outcome
	}{
		{SentinelMalformedBlockFile, OutcomeMalformed},
		{SentinelNoBlocks, OutcomeEmpty},
		{SentinelNoActiveBlocks, OutcomeEmpty},
		{SentinelNoOrphanBlocks, OutcomeEmpty},
		{SentinelNoComponents, OutcomeEmpty},
	}

	for _, tt := range tests {
		t.Run(string(tt.sentinel), func(t *testing.T) {
			t.Parallel()
			if got := tt.sentinel.Outcome(); got != tt.expected {
				t.Errorf("got %s, expected %s", got, tt.expected)
			}
		})
	}
}
