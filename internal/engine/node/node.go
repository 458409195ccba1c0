package node

import (
	"maps"
	"slices"
	"strings"
)

// Attribute keys carrying block and text identity.
const (
	AttrBlockID = "blockId"
	AttrTextID  = "textId"
)

// ID is a stable handle for a node in the document arena.
// It does not change when the node moves and is never reused.
type ID uint64

// InvalidID is the zero ID. No live node has it.
const InvalidID ID = 0

// Kind discriminates the node variants.
type Kind uint8

const (
	// KindText is a text leaf.
	KindText Kind = iota
	// KindElement is an element with children.
	KindElement
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindElement:
		return "element"
	default:
		return "unknown"
	}
}

// Attrs holds node attributes.
type Attrs map[string]string

// Get returns the attribute value and whether it is present.
func (a Attrs) Get(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a[key]
	return v, ok
}

// Clone returns a copy of the attributes. A nil map clones to nil.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// Equal reports whether both maps hold the same keys and values.
// A nil map equals an empty one.
func (a Attrs) Equal(b Attrs) bool {
	return maps.Equal(a, b)
}

// Node is a value representation of a document node.
type Node struct {
	Kind     Kind
	Type     string
	Text     string
	Attrs    Attrs
	Children []*Node
}

// NewText creates a text leaf.
func NewText(text string, attrs Attrs) *Node {
	return &Node{Kind: KindText, Text: text, Attrs: attrs}
}

// NewElement creates an element with the given children.
func NewElement(typ string, attrs Attrs, children ...*Node) *Node {
	return &Node{Kind: KindElement, Type: typ, Attrs: attrs, Children: children}
}

// Block creates a block element: a text leaf carrying textID followed by
// the nested child blocks.
func Block(typ, blockID, textID, text string, children ...*Node) *Node {
	kids := make([]*Node, 0, len(children)+1)
	kids = append(kids, NewText(text, Attrs{AttrTextID: textID}))
	kids = append(kids, children...)
	return NewElement(typ, Attrs{AttrBlockID: blockID}, kids...)
}

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool { return n != nil && n.Kind == KindText }

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool { return n != nil && n.Kind == KindElement }

// BlockID returns the block identifier of an element.
func (n *Node) BlockID() (string, bool) {
	if !n.IsElement() {
		return "", false
	}
	return n.Attrs.Get(AttrBlockID)
}

// TextID returns the text identifier of a text leaf.
func (n *Node) TextID() (string, bool) {
	if !n.IsText() {
		return "", false
	}
	return n.Attrs.Get(AttrTextID)
}

// IsBlockElement reports whether n is an element carrying a block identifier.
func (n *Node) IsBlockElement() bool {
	_, ok := n.BlockID()
	return ok
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Kind:  n.Kind,
		Type:  n.Type,
		Text:  n.Text,
		Attrs: n.Attrs.Clone(),
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// String returns the concatenated text of all leaves under n.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	if n == nil {
		return
	}
	if n.Kind == KindText {
		sb.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.writeText(sb)
	}
}

// Walk visits n and all of its descendants in document order.
// Returning false from fn skips the children of the visited node.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(n *Node, depth int) bool, depth int) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// BlockIDs returns the block identifiers found under n in document order.
func (n *Node) BlockIDs() []string {
	var ids []string
	n.Walk(func(c *Node, _ int) bool {
		if id, ok := c.BlockID(); ok {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// TextIDs returns the text identifiers found under n in document order.
func (n *Node) TextIDs() []string {
	var ids []string
	n.Walk(func(c *Node, _ int) bool {
		if id, ok := c.TextID(); ok {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// Find returns the first node under n (including n) whose block identifier
// equals id, or nil.
func (n *Node) Find(blockID string) *Node {
	var found *Node
	n.Walk(func(c *Node, _ int) bool {
		if found != nil {
			return false
		}
		if id, ok := c.BlockID(); ok && id == blockID {
			found = c
			return false
		}
		return true
	})
	return found
}

// Texts returns the text of each child text leaf directly under n. It is a
// compact way of describing a block's shape in tests and logs.
func (n *Node) Texts() []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		if c.IsText() {
			out = append(out, c.Text)
			continue
		}
		if len(c.Children) > 0 && c.Children[0].IsText() {
			out = append(out, c.Children[0].Text)
			continue
		}
		out = append(out, c.Type)
	}
	return slices.Clip(out)
}
