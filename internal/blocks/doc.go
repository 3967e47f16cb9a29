// Package blocks summarizes the block file (.bky) of an App Inventor screen.
//
// A block file is an XML fragment whose root element is <xml>, often with
// inline namespace declarations, holding a forest of <block> elements.
// Processing has four stages:
//
//  1. Normalize turns the raw lines into a Node tree. It never fails: input
//     that cannot be parsed becomes a single MALFORMED node.
//  2. Classify splits the root's direct <block> children into active blocks
//     (event handlers, declarations, procedure definitions and calls, blocks
//     bound to a component) and orphan blocks.
//  3. Extract walks one block and its nested blocks in pre-order, producing
//     one model.PayloadRecord per block node.
//  4. An Aggregator merges records into a model.GroupSummary of frequency
//     tables.
//
// Summarize runs stages 2 to 4 and returns a model.BlocksResult, which is
// either a summary or a sentinel such as "no blocks".
package blocks
