package blocks

import (
	"maps"

	"github.com/nao1215/ai2summary/internal/model"
)

// Aggregator merges payload records into frequency tables.
// The zero value is not usable; call NewAggregator.
type Aggregator struct {
	summary model.GroupSummary
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{summary: model.NewGroupSummary()}
}

// Add counts the type and every name and string of rec.
func (a *Aggregator) Add(rec model.PayloadRecord) {
	a.summary.Count++
	a.summary.Types.Add(rec.Type)
	a.summary.ProcedureNames.AddAll(rec.ProcedureNames)
	a.summary.ProcedureParameterNames.AddAll(rec.ProcedureParameterNames)
	a.summary.GlobalVariableNames.AddAll(rec.GlobalVariableNames)
	a.summary.LocalVariableNames.AddAll(rec.LocalVariableNames)
	a.summary.Strings.AddAll(rec.Strings)
}

// Len returns the number of records added so far.
func (a *Aggregator) Len() int {
	return a.summary.Count
}

// Summary returns a copy of the aggregated tables.
func (a *Aggregator) Summary() model.GroupSummary {
	s := a.summary
	s.Types = maps.Clone(a.summary.Types)
	s.ProcedureNames = maps.Clone(a.summary.ProcedureNames)
	s.ProcedureParameterNames = maps.Clone(a.summary.ProcedureParameterNames)
	s.GlobalVariableNames = maps.Clone(a.summary.GlobalVariableNames)
	s.LocalVariableNames = maps.Clone(a.summary.LocalVariableNames)
	s.Strings = maps.Clone(a.summary.Strings)
	return s
}

// Result returns the summary, or empty when no record was added.
func (a *Aggregator) Result(empty model.Sentinel) model.GroupResult {
	if a.Len() == 0 {
		return model.WithSentinel[model.GroupSummary](empty)
	}
	return model.Summarized(a.Summary())
}
