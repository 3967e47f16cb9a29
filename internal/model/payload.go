package model

// PayloadRecord is the data extracted from a single block node.
// A record is created once per visited node and never modified afterwards.
type PayloadRecord struct {
	// Type is the block's type attribute (e.g. "component_event").
	Type string

	// ProcedureNames holds the procedure name of a procedure definition or call.
	ProcedureNames []string

	// ProcedureParameterNames holds the argument names of a procedure block.
	ProcedureParameterNames []string

	// GlobalVariableNames holds names from global declarations and lexical get/set blocks.
	GlobalVariableNames []string

	// LocalVariableNames holds names declared by local declaration blocks.
	LocalVariableNames []string

	// Strings holds the values of text literal blocks.
	Strings []string
}

// NewPayloadRecord returns a record of the given type with empty lists.
func NewPayloadRecord(blockType string) PayloadRecord {
	return PayloadRecord{
		Type:                    blockType,
		ProcedureNames:          []string{},
		ProcedureParameterNames: []string{},
		GlobalVariableNames:     []string{},
		LocalVariableNames:      []string{},
		Strings:                 []string{},
	}
}
