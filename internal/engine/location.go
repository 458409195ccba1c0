package engine

import (
	"fmt"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// Location bounds the nodes an operation considers.
//
// A location either addresses one node exactly (see AtPath) or spans the
// document-order range between Anchor and Focus, the way a selection does.
// A collapsed span (Anchor equal to Focus) still covers the ancestors of
// that position, which is what makes "the block under the cursor" work.
type Location struct {
	Anchor path.Path
	Focus  path.Path

	// Exact marks a location that addresses the node at Anchor itself.
	Exact bool
}

// AtPath returns a location addressing the node at p.
func AtPath(p path.Path) *Location {
	return &Location{Anchor: p.Clone(), Focus: p.Clone(), Exact: true}
}

// Collapsed returns a selection-like location resting at p.
func Collapsed(p path.Path) *Location {
	return &Location{Anchor: p.Clone(), Focus: p.Clone()}
}

// Span returns a selection-like location between anchor and focus.
func Span(anchor, focus path.Path) *Location {
	return &Location{Anchor: anchor.Clone(), Focus: focus.Clone()}
}

// Clone returns a deep copy of l. A nil location clones to nil.
func (l *Location) Clone() *Location {
	if l == nil {
		return nil
	}
	return &Location{Anchor: l.Anchor.Clone(), Focus: l.Focus.Clone(), Exact: l.Exact}
}

// IsCollapsed reports whether anchor and focus coincide.
func (l *Location) IsCollapsed() bool {
	return l.Anchor.Equal(l.Focus)
}

// Start returns the earlier of anchor and focus.
func (l *Location) Start() path.Path {
	if l.Focus.IsBefore(l.Anchor) {
		return l.Focus.Clone()
	}
	return l.Anchor.Clone()
}

// End returns the later of anchor and focus.
func (l *Location) End() path.Path {
	if l.Focus.IsBefore(l.Anchor) {
		return l.Anchor.Clone()
	}
	return l.Focus.Clone()
}

func (l *Location) String() string {
	switch {
	case l == nil:
		return "<nil>"
	case l.Exact:
		return "@" + l.Anchor.String()
	case l.IsCollapsed():
		return l.Anchor.String()
	default:
		return fmt.Sprintf("%s..%s", l.Anchor, l.Focus)
	}
}

// Mode selects which matches a traversal reports when matches nest.
type Mode uint8

const (
	// ModeDefault lets the operation pick its own mode.
	ModeDefault Mode = iota

	// ModeAll reports every match.
	ModeAll

	// ModeHighest reports a match only if no ancestor matched.
	ModeHighest

	// ModeLowest reports a match only if no descendant matched.
	ModeLowest
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeAll:
		return "all"
	case ModeHighest:
		return "highest"
	case ModeLowest:
		return "lowest"
	default:
		return "unknown"
	}
}

func (m Mode) or(def Mode) Mode {
	if m == ModeDefault {
		return def
	}
	return m
}

// MatchFunc decides whether a node qualifies. n carries the node's kind,
// type, text and attributes but no children.
type MatchFunc func(n *node.Node, p path.Path) bool

// MatchPath matches exactly the node at p.
func MatchPath(p path.Path) MatchFunc {
	want := p.Clone()
	return func(_ *node.Node, at path.Path) bool {
		return at.Equal(want)
	}
}

// MatchType matches elements of the given type.
func MatchType(typ string) MatchFunc {
	return func(n *node.Node, _ path.Path) bool {
		return n.IsElement() && n.Type == typ
	}
}

// MatchBlockID matches the block carrying id.
func MatchBlockID(id string) MatchFunc {
	return func(n *node.Node, _ path.Path) bool {
		got, ok := n.BlockID()
		return ok && got == id
	}
}

// Entry pairs a node with its path. Node carries no children.
type Entry struct {
	Node *node.Node
	Path path.Path
}
