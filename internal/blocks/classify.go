package blocks

import (
	"errors"
	"fmt"

	"github.com/nao1215/ai2summary/internal/model"
)

// ErrUnexpectedRoot is returned when a tree's root is neither <xml> nor the
// malformed sentinel. Normalize never produces such a tree.
var ErrUnexpectedRoot = errors.New("root of block file is not xml")

// componentSelector is the field name that binds a block to a component instance.
const componentSelector = "COMPONENT_SELECTOR"

// lexicalVariableStem is compared against a block type with its last four
// characters removed. This matches lexical_variable_get and
// lexical_variable_set but no longer or shorter suffixes.
const lexicalVariableStem = "lexical_variable"

// entryPointTypes are block types that are always active.
var entryPointTypes = map[string]bool{
	TypeComponentEvent:        true,
	TypeGlobalDeclaration:     true,
	TypeProcedureDefNoReturn:  true,
	TypeProcedureDefReturn:    true,
	TypeProcedureCallNoReturn: true,
	TypeProcedureCallReturn:   true,
}

// IsActive reports whether a top-level block is reachable from a program
// entry point.
func IsActive(block *Node) bool {
	if entryPointTypes[block.Type] || hasLexicalVariableStem(block.Type) {
		return true
	}
	_, ok := block.Field(componentSelector)
	return ok
}

func hasLexicalVariableStem(blockType string) bool {
	return len(blockType) >= 4 && blockType[:len(blockType)-4] == lexicalVariableStem
}

// Classification is the partition of a root's top-level blocks.
type Classification struct {
	// Active holds the blocks for which IsActive is true.
	Active []*Node

	// Orphan holds the remaining blocks.
	Orphan []*Node
}

// Classify partitions the direct <block> children of root. Children with
// other tags are ignored.
func Classify(root *Node) (Classification, error) {
	var c Classification
	if root.IsMalformed() {
		return c, nil
	}
	if root.Tag != RootTag {
		return c, fmt.Errorf("%w: got <%s>", ErrUnexpectedRoot, root.Tag)
	}
	for _, child := range root.Children {
		if child.Kind != KindBlock {
			continue
		}
		if IsActive(child) {
			c.Active = append(c.Active, child)
		} else {
			c.Orphan = append(c.Orphan, child)
		}
	}
	return c, nil
}

// Summarize classifies the top-level blocks of root, extracts every block
// below them and aggregates each group.
func Summarize(root *Node) (model.BlocksResult, error) {
	if root.IsMalformed() {
		return model.WithSentinel[model.BlockSummary](model.SentinelMalformedBlockFile), nil
	}
	classes, err := Classify(root)
	if err != nil {
		return model.BlocksResult{}, err
	}
	if len(root.Children) == 0 {
		return model.WithSentinel[model.BlockSummary](model.SentinelNoBlocks), nil
	}

	types := make([]string, 0, len(root.Children))
	for _, child := range root.Children {
		if child.Kind == KindBlock {
			types = append(types, child.Type)
		}
	}

	return model.Summarized(model.BlockSummary{
		TopLevel: model.CountValues(types),
		Active:   aggregateGroup(classes.Active, model.SentinelNoActiveBlocks),
		Orphan:   aggregateGroup(classes.Orphan, model.SentinelNoOrphanBlocks),
	}), nil
}

// SummarizeLines normalizes the lines of a block file and summarizes the tree.
func SummarizeLines(lines []string) (model.BlocksResult, error) {
	return Summarize(Normalize(lines))
}

func aggregateGroup(blocks []*Node, empty model.Sentinel) model.GroupResult {
	agg := NewAggregator()
	for _, b := range blocks {
		for rec := range Extract(b) {
			agg.Add(rec)
		}
	}
	return agg.Result(empty)
}
