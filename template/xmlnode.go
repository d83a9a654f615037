package template

import (
	"bytes"
	"encoding/xml"
	"io"

	"golang.org/x/net/html/charset"
)

// Known OOXML namespaces, mapped back to their conventional prefixes so node
// names read the way they do in the source parts ("p:sp", "a:t", "r:id").
// Elements from any other namespace keep their local name and pass through
// untouched; this parser only interprets a small subset of the schema.
var namespacePrefixes = map[string]string{
	"http://schemas.openxmlformats.org/presentationml/2006/main":         "p",
	"http://schemas.openxmlformats.org/drawingml/2006/main":              "a",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships": "r",
}

// Node is one element of a parsed OOXML part: qualified name, attributes,
// children in document order and accumulated character data.
type Node struct {
	Name     string            `json:"name"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty"`
	Text     string            `json:"text,omitempty"`
}

func qualifyName(n xml.Name) string {
	if prefix, ok := namespacePrefixes[n.Space]; ok {
		return prefix + ":" + n.Local
	}
	return n.Local
}

// ParsePart decodes the raw bytes of a single OOXML part into a Node tree.
// Unknown elements are preserved as opaque subtrees. Malformed markup is
// reported as an XMLParseError; partName is only used for error context.
func ParsePart(partName string, data []byte) (*Node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	root := &Node{Name: "#document"}
	stack := []*Node{root}

	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, &XMLParseError{Part: partName, Err: err}
		}

		switch el := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: qualifyName(el.Name)}
			if len(el.Attr) > 0 {
				node.Attrs = make(map[string]string, len(el.Attr))
				for _, a := range el.Attr {
					node.Attrs[qualifyName(a.Name)] = a.Value
				}
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 1 {
				stack[len(stack)-1].Text += string(el)
			}
		}
	}

	if len(root.Children) == 0 {
		return nil, &XMLParseError{Part: partName, Err: io.ErrUnexpectedEOF}
	}
	// The document node is ceremony; callers navigate from the root element.
	return root.Children[0], nil
}

// FindFirst walks the given path of child names and returns the first match
// at each level, or nil if any step is absent. Safe on a nil receiver, so
// missing optional subtrees read as "no data" instead of panicking.
func (n *Node) FindFirst(path ...string) *Node {
	cur := n
	for _, name := range path {
		if cur == nil {
			return nil
		}
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		cur = next
	}
	return cur
}

// ChildrenNamed returns the direct children with the given qualified name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the named attribute value, or "" if absent.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[name]
}
