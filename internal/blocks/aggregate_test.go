package blocks

import (
	"maps"
	"reflect"
	"slices"
	"testing"

	"github.com/nao1215/ai2summary/internal/model"
)

func TestAggregator(t *testing.T) {
	t.Parallel()

	t.Run("sums every list", func(t *testing.T) {
		t.Parallel()

		a := NewAggregator()
		a.Add(model.PayloadRecord{Type: "text", Strings: []string{"hi"}})
		a.Add(model.PayloadRecord{Type: "text", Strings: []string{"hi"}})
		a.Add(model.PayloadRecord{
			Type:                    "procedures_defreturn",
			ProcedureNames:          []string{"sum"},
			ProcedureParameterNames: []string{"a", "b"},
		})
		a.Add(model.PayloadRecord{Type: "lexical_variable_get", GlobalVariableNames: []string{"global x"}})
		a.Add(model.PayloadRecord{Type: "local_declaration_expression", LocalVariableNames: []string{"i", "j"}})

		got := a.Summary()
		expected := model.GroupSummary{
			Count: 5,
			Types: model.FrequencyTable{
				"text":                         2,
				"procedures_defreturn":         1,
				"lexical_variable_get":         1,
				"local_declaration_expression": 1,
			},
			ProcedureNames:          model.FrequencyTable{"sum": 1},
			ProcedureParameterNames: model.FrequencyTable{"a": 1, "b": 1},
			GlobalVariableNames:     model.FrequencyTable{"global x": 1},
			LocalVariableNames:      model.FrequencyTable{"i": 1, "j": 1},
			Strings:                 model.FrequencyTable{"hi": 2},
		}
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("got %+v, expected %+v", got, expected)
		}
		if got.Count != got.Types.Total() {
			t.Errorf("count %d does not match type total %d", got.Count, got.Types.Total())
		}
	})

	t.Run("summary is a copy", func(t *testing.T) {
		t.Parallel()

		a := NewAggregator()
		a.Add(model.NewPayloadRecord("text"))
		s := a.Summary()
		s.Types["text"] = 100

		if got := a.Summary().Types["text"]; got != 1 {
			t.Errorf("got %d, expected 1", got)
		}
	})

	t.Run("empty aggregator yields the sentinel", func(t *testing.T) {
		t.Parallel()

		res := NewAggregator().Result(model.SentinelNoOrphanBlocks)
		if res.Outcome() != model.OutcomeEmpty {
			t.Errorf("got outcome %s, expected %s", res.Outcome(), model.OutcomeEmpty)
		}
		if res.Sentinel() != model.SentinelNoOrphanBlocks {
			t.Errorf("got %q", res.Sentinel())
		}
	})

	t.Run("non-empty aggregator yields a summary", func(t *testing.T) {
		t.Parallel()

		a := NewAggregator()
		a.Add(model.NewPayloadRecord("math_number"))
		res := a.Result(model.SentinelNoActiveBlocks)
		s, ok := res.Value()
		if !ok || s.Count != 1 {
			t.Errorf("got %+v (ok=%v)", s, ok)
		}
	})
}

// TestAggregatorSummary tests aggregating the records of one subtree.
func TestAggregatorSummary(t *testing.T) {
	t.Parallel()

	root := normalizeString(sampleBlockFile)
	def := topLevelBlocks(root)[1]

	a := NewAggregator()
	for rec := range Extract(def) {
		a.Add(rec)
	}
	got := a.Summary()
	if got.Count != 2 {
		t.Errorf("got %d, expected 2", got.Count)
	}
	if keys := slices.Sorted(maps.Keys(got.Types)); !slices.Equal(keys, []string{"local_declaration_statement", "procedures_defnoreturn"}) {
		t.Errorf("unexpected types %v", keys)
	}
}
