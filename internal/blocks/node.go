package blocks

// Kind is the role of a node in a block tree.
type Kind uint8

const (
	// KindOther is any element without special meaning (statement, value, mutation, next, ...).
	KindOther Kind = iota
	// KindRoot is the <xml> document root.
	KindRoot
	// KindBlock is a <block> element.
	KindBlock
	// KindField is a <field> or legacy <title> element.
	KindField
	// KindArg is an <arg> element of a procedure mutation.
	KindArg
	// KindMalformed marks a tree that could not be parsed.
	KindMalformed
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindBlock:
		return "block"
	case KindField:
		return "field"
	case KindArg:
		return "arg"
	case KindMalformed:
		return "malformed"
	default:
		return "other"
	}
}

// Tag names of the block markup.
const (
	RootTag      = "xml"
	MalformedTag = "MALFORMED"
	blockTag     = "block"
	fieldTag     = "field"
	titleTag     = "title"
	argTag       = "arg"
)

// Node is one element of a normalized block tree.
// Nodes are built once by Normalize and never modified afterwards.
type Node struct {
	// Tag is the element's local name.
	Tag string

	// Kind is resolved from Tag when the tree is built.
	Kind Kind

	// Type is the "type" attribute (set on blocks).
	Type string

	// Name is the "name" attribute (set on fields and args).
	Name string

	// Text is the character data that precedes the first child element.
	Text string

	// Fields maps the name of every field child to its text.
	Fields map[string]string

	// Children holds the child elements in document order.
	Children []*Node
}

// Malformed returns the sentinel tree for unparsable input.
func Malformed() *Node {
	return &Node{Tag: MalformedTag, Kind: KindMalformed, Fields: map[string]string{}}
}

// IsMalformed reports whether n is the malformed sentinel.
func (n *Node) IsMalformed() bool {
	return n == nil || n.Kind == KindMalformed
}

// Field returns the text of the named field child.
func (n *Node) Field(name string) (string, bool) {
	v, ok := n.Fields[name]
	return v, ok
}

// kindOf resolves the kind of an element from its tag and depth.
func kindOf(tag string, depth int) Kind {
	switch {
	case depth == 0 && tag == RootTag:
		return KindRoot
	case depth == 0 && tag == MalformedTag:
		return KindMalformed
	case tag == blockTag:
		return KindBlock
	case tag == fieldTag, tag == titleTag:
		return KindField
	case tag == argTag:
		return KindArg
	default:
		return KindOther
	}
}
