package blocks

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// rootPrefix is what the first line of a block file must start with.
const rootPrefix = "<" + RootTag

var (
	errTrailingContent = errors.New("content after root element")
	errNoRoot          = errors.New("no root element")
	errUnclosed        = errors.New("unclosed element")
	errUnboundPrefix   = errors.New("unbound namespace prefix")
	errDuplicateAttr   = errors.New("duplicate attribute")
)

// xmlNamespace is the namespace the reserved "xml" prefix is bound to.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Normalize parses the lines of a block file into a tree.
//
// The root tag on the first line is replaced by a bare <xml> so that inline
// namespace declarations cannot get in the way. Empty input, a first line
// that does not start with "<xml", or any parse error yields the Malformed
// tree. Normalize never panics and never returns nil.
func Normalize(lines []string) *Node {
	if len(lines) == 0 {
		return Malformed()
	}

	first := lines[0]
	if !strings.HasPrefix(first, rootPrefix) {
		return Malformed()
	}
	closeIndex := strings.IndexByte(first, '>')
	if closeIndex < 0 {
		return Malformed()
	}

	var b strings.Builder
	b.WriteString("<" + RootTag + ">")
	b.WriteString(first[closeIndex+1:])
	for _, line := range lines[1:] {
		b.WriteString(line)
	}

	root, err := parseTree(strings.NewReader(b.String()))
	if err != nil {
		return Malformed()
	}
	return root
}

// parseTree reads one XML document from r into a Node tree.
func parseTree(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		root  *Node
		stack []*Node
		// scopes[i] holds the namespaces declared on stack[i].
		scopes [][]string
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, errTrailingContent
			}
			declared := declaredNamespaces(t)
			scopes = append(scopes, declared)
			if err := checkStart(t, scopes); err != nil {
				return nil, err
			}
			n := newNode(t, len(stack))
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]
			n.Fields = collectFields(n.Children)

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, errTrailingContent
				}
				continue
			}
			n := stack[len(stack)-1]
			if len(n.Children) == 0 {
				n.Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errNoRoot
	}
	if len(stack) > 0 {
		return nil, errUnclosed
	}
	return root, nil
}

// declaredNamespaces returns the namespaces bound by the xmlns attributes
// of start.
func declaredNamespaces(start xml.StartElement) []string {
	var declared []string
	for _, attr := range start.Attr {
		if isNamespaceDecl(attr.Name) {
			declared = append(declared, attr.Value)
		}
	}
	return declared
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}

// checkStart rejects what the decoder lets through: prefixes that no
// enclosing xmlns attribute binds and attributes given twice. The decoder
// leaves an unbound prefix in Name.Space and replaces a bound one with its
// namespace.
func checkStart(start xml.StartElement, scopes [][]string) error {
	if !inScope(start.Name.Space, scopes) {
		return fmt.Errorf("%w: %s", errUnboundPrefix, start.Name.Space)
	}
	seen := make(map[xml.Name]bool, len(start.Attr))
	for _, attr := range start.Attr {
		if seen[attr.Name] {
			return fmt.Errorf("%w: %s", errDuplicateAttr, attr.Name.Local)
		}
		seen[attr.Name] = true
		if isNamespaceDecl(attr.Name) {
			continue
		}
		if !inScope(attr.Name.Space, scopes) {
			return fmt.Errorf("%w: %s", errUnboundPrefix, attr.Name.Space)
		}
	}
	return nil
}

func inScope(space string, scopes [][]string) bool {
	if space == "" || space == xmlNamespace {
		return true
	}
	for _, declared := range scopes {
		if slices.Contains(declared, space) {
			return true
		}
	}
	return false
}

func newNode(start xml.StartElement, depth int) *Node {
	n := &Node{
		Tag:  start.Name.Local,
		Kind: kindOf(start.Name.Local, depth),
	}
	for _, attr := range start.Attr {
		if attr.Name.Space != "" {
			continue
		}
		switch attr.Name.Local {
		case "type":
			n.Type = attr.Value
		case "name":
			n.Name = attr.Value
		}
	}
	return n
}

func collectFields(children []*Node) map[string]string {
	fields := make(map[string]string)
	for _, c := range children {
		if c.Kind == KindField {
			fields[c.Name] = c.Text
		}
	}
	return fields
}
