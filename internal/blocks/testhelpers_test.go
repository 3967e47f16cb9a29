package blocks

import (
	"strings"

	"github.com/nao1215/ai2summary/internal/model"
)

// sampleBlockFile is a block file with three active and two orphan
// top-level blocks.
const sampleBlockFile = `<xml xmlns="http://www.w3.org/1999/xhtml">
  <variables></variables>
  <block type="component_event" id="a1" x="10" y="20">
    <mutation component_type="Button" instance_name="Button1" event_name="Click"></mutation>
    <field name="COMPONENT_SELECTOR">Button1</field>
    <statement name="DO">
      <block type="procedures_callnoreturn" id="a2">
        <mutation name="greet"><arg name="who"></arg></mutation>
        <field name="PROCNAME">greet</field>
        <value name="ARG0">
          <block type="text" id="a3"><field name="TEXT">world</field></block>
        </value>
        <next>
          <block type="lexical_variable_set" id="a4">
            <field name="VAR">global count</field>
            <value name="VALUE">
              <block type="math_number" id="a5"><field name="NUM">1</field></block>
            </value>
          </block>
        </next>
      </block>
    </statement>
  </block>
  <block type="procedures_defnoreturn" id="b1">
    <mutation><arg name="who"></arg></mutation>
    <field name="NAME">greet</field>
    <statement name="STACK">
      <block type="local_declaration_statement" id="b2">
        <mutation><localname name="msg"></localname></mutation>
        <field name="VAR0">msg</field>
      </block>
    </statement>
  </block>
  <block type="global_declaration" id="c1">
    <field name="NAME">count</field>
    <value name="VALUE">
      <block type="math_number" id="c2"><field name="NUM">0</field></block>
    </value>
  </block>
  <block type="text" id="d1"><field name="TEXT">dangling</field></block>
  <block type="controls_if" id="e1"></block>
</xml>
`

// topLevelBlocks returns the direct block children of a normalized tree.
func topLevelBlocks(root *Node) []*Node {
	var out []*Node
	for _, c := range root.Children {
		if c.Kind == KindBlock {
			out = append(out, c)
		}
	}
	return out
}

// normalizeString splits s into lines and normalizes them.
func normalizeString(s string) *Node {
	return Normalize(splitLines(s))
}

// splitLines splits s after every newline, keeping the terminators.
// An empty string gives no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// extractAll collects the records of Extract into a slice.
func extractAll(n *Node) []model.PayloadRecord {
	records := make([]model.PayloadRecord, 0)
	for rec := range Extract(n) {
		records = append(records, rec)
	}
	return records
}

// countBlocks returns the number of block nodes in the subtree rooted at n.
func countBlocks(n *Node) int {
	count := 0
	if n.Kind == KindBlock {
		count = 1
	}
	for _, c := range n.Children {
		count += countBlocks(c)
	}
	return count
}
