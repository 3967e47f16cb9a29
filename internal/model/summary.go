package model

// Field order in the structs below follows the byte order of their JSON
// keys, so the encoder emits them sorted.

// ComponentSummary describes the components declared on one screen.
type ComponentSummary struct {
	// Count is the number of distinct component types.
	Count int `json:"Number of Components"`

	// Strings holds the Text property values in declaration order.
	Strings []string `json:"Strings"`

	// Types counts the components per declared type.
	Types FrequencyTable `json:"Type and Frequency"`
}

// GroupSummary aggregates the payload records of one classification group
// (active or orphan blocks).
type GroupSummary struct {
	// Count is the number of records aggregated.
	Count int `json:"*Number of Blocks"`

	GlobalVariableNames     FrequencyTable `json:"Global Variable Names"`
	LocalVariableNames      FrequencyTable `json:"Local Variable Names"`
	ProcedureNames          FrequencyTable `json:"Procedure Names"`
	ProcedureParameterNames FrequencyTable `json:"Procedure Parameter Names"`
	Strings                 FrequencyTable `json:"Strings"`
	Types                   FrequencyTable `json:"Types"`
}

// NewGroupSummary returns a GroupSummary with empty tables.
func NewGroupSummary() GroupSummary {
	return GroupSummary{
		GlobalVariableNames:     NewFrequencyTable(),
		LocalVariableNames:      NewFrequencyTable(),
		ProcedureNames:          NewFrequencyTable(),
		ProcedureParameterNames: NewFrequencyTable(),
		Strings:                 NewFrequencyTable(),
		Types:                   NewFrequencyTable(),
	}
}

// GroupResult is a GroupSummary or one of the "no ... blocks" sentinels.
type GroupResult = Result[GroupSummary]

// BlockSummary describes the block file of one screen.
type BlockSummary struct {
	// TopLevel counts the types of the root's direct block children.
	TopLevel FrequencyTable `json:"*Top Level Blocks"`

	// Active aggregates blocks reachable from a recognized entry point.
	Active GroupResult `json:"Active Blocks"`

	// Orphan aggregates detached blocks.
	Orphan GroupResult `json:"Orphan Blocks"`
}

// BlocksResult is a BlockSummary, "no blocks" or "malformed block file".
type BlocksResult = Result[BlockSummary]

// ComponentsResult is a ComponentSummary or "no components".
type ComponentsResult = Result[ComponentSummary]

// ScreenSummary combines the component and block summaries of a screen.
type ScreenSummary struct {
	Blocks     BlocksResult     `json:"Blocks"`
	Components ComponentsResult `json:"Components"`
}

// BlockCounts returns the number of active and orphan blocks of the screen.
// Sentinel groups count as zero.
func (s ScreenSummary) BlockCounts() (active, orphan int) {
	blocks, ok := s.Blocks.Value()
	if !ok {
		return 0, 0
	}
	if g, ok := blocks.Active.Value(); ok {
		active = g.Count
	}
	if g, ok := blocks.Orphan.Value(); ok {
		orphan = g.Count
	}
	return active, orphan
}
