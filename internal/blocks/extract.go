package blocks

import (
	"iter"

	"github.com/nao1215/ai2summary/internal/model"
)

// Rule fills the type specific lists of a payload record from a block node.
type Rule func(n *Node, rec *model.PayloadRecord)

// Block types with extraction rules.
const (
	TypeProcedureDefNoReturn  = "procedures_defnoreturn"
	TypeProcedureDefReturn    = "procedures_defreturn"
	TypeProcedureCallNoReturn = "procedures_callnoreturn"
	TypeProcedureCallReturn   = "procedures_callreturn"
	TypeGlobalDeclaration     = "global_declaration"
	TypeLexicalVariableGet    = "lexical_variable_get"
	TypeLexicalVariableSet    = "lexical_variable_set"
	TypeLocalDeclarationStmt  = "local_declaration_statement"
	TypeLocalDeclarationExpr  = "local_declaration_expression"
	TypeText                  = "text"
	TypeComponentEvent        = "component_event"
)

// rules maps a block type to its extraction rule. Types without an entry
// only contribute their type.
var rules = map[string]Rule{
	TypeProcedureDefNoReturn:  procedureRule,
	TypeProcedureDefReturn:    procedureRule,
	TypeProcedureCallNoReturn: procedureRule,
	TypeProcedureCallReturn:   procedureRule,
	TypeGlobalDeclaration:     fieldTextRule(globalNames),
	TypeLexicalVariableGet:    fieldTextRule(globalNames),
	TypeLexicalVariableSet:    fieldTextRule(globalNames),
	TypeLocalDeclarationStmt:  fieldTextRule(localNames),
	TypeLocalDeclarationExpr:  fieldTextRule(localNames),
	TypeText:                  fieldTextRule(literalStrings),
}

// Extract returns the payload records of n and of every block nested below
// it, in pre-order. Nested blocks sit two levels down, wrapped in
// <statement>, <value> or <next> elements, so only grandchildren are
// visited as blocks.
func Extract(n *Node) iter.Seq[model.PayloadRecord] {
	return func(yield func(model.PayloadRecord) bool) {
		if n == nil {
			return
		}
		walk(n, yield)
	}
}

func walk(n *Node, yield func(model.PayloadRecord) bool) bool {
	if !yield(extractRecord(n)) {
		return false
	}
	for _, child := range n.Children {
		for _, grandchild := range child.Children {
			if grandchild.Kind != KindBlock {
				continue
			}
			if !walk(grandchild, yield) {
				return false
			}
		}
	}
	return true
}

func extractRecord(n *Node) model.PayloadRecord {
	rec := model.NewPayloadRecord(n.Type)
	if rule, ok := rules[n.Type]; ok {
		rule(n, &rec)
	}
	return rec
}

// procedureRule takes the procedure name from the field child (the last
// one wins when there are several) and parameter names from the <arg>
// elements under any child, which is where <mutation> keeps them.
func procedureRule(n *Node, rec *model.PayloadRecord) {
	for _, child := range n.Children {
		if child.Kind == KindField {
			rec.ProcedureNames = []string{child.Text}
		}
		for _, param := range child.Children {
			if param.Kind == KindArg {
				rec.ProcedureParameterNames = append(rec.ProcedureParameterNames, param.Name)
			}
		}
	}
}

// fieldTextRule appends the text of every field child to the list chosen by target.
func fieldTextRule(target func(*model.PayloadRecord) *[]string) Rule {
	return func(n *Node, rec *model.PayloadRecord) {
		dst := target(rec)
		for _, child := range n.Children {
			if child.Kind == KindField {
				*dst = append(*dst, child.Text)
			}
		}
	}
}

func globalNames(rec *model.PayloadRecord) *[]string    { return &rec.GlobalVariableNames }
func localNames(rec *model.PayloadRecord) *[]string     { return &rec.LocalVariableNames }
func literalStrings(rec *model.PayloadRecord) *[]string { return &rec.Strings }
