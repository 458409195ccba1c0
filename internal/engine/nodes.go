package engine

import (
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// NodesOptions configures Tx.Nodes.
type NodesOptions struct {
	// At bounds the traversal. nil means the current selection.
	At *Location

	// Match filters nodes. nil matches every node.
	Match MatchFunc

	// Mode picks among nested matches. The default is ModeAll.
	Mode Mode

	// Voids makes the traversal descend into void elements.
	Voids bool
}

// Nodes returns the matching nodes within a location in document order.
//
// The traversal covers the ancestors of the location's start, every node
// between start and end, and the descendants of those nodes. Void elements
// are reported but not entered unless opts.Voids is set. With no location
// and no selection the result is empty.
//
// For an exact location the addressed node must exist.
func (tx *Tx) Nodes(opts NodesOptions) ([]Entry, error) {
	at := opts.At
	if at == nil {
		at = tx.e.selection
	}
	if at == nil {
		return nil, nil
	}
	if at.Exact && !tx.t.Has(at.Anchor) {
		_, err := tx.t.ID(at.Anchor)
		return nil, err
	}
	match := opts.Match
	if match == nil {
		match = func(*node.Node, path.Path) bool { return true }
	}
	mode := opts.Mode.or(ModeAll)

	from, to := at.Start(), at.End()

	var (
		out    []Entry
		hit    *Entry
		hasHit bool
	)
	tx.walk(tx.t.Root(), path.Root(), from, to, opts.Voids, func(id node.ID, p path.Path) {
		n, _ := tx.t.Node(id)
		isLower := hasHit && p.Compare(hit.Path) == 0
		if mode == ModeHighest && isLower {
			return
		}
		if !match(n, p) {
			return
		}
		cur := Entry{Node: n, Path: p}
		if mode == ModeLowest && isLower {
			hit = &cur
			return
		}
		if mode == ModeLowest {
			if hasHit {
				out = append(out, *hit)
			}
		} else {
			out = append(out, cur)
		}
		hit, hasHit = &cur, true
	})
	if mode == ModeLowest && hasHit {
		out = append(out, *hit)
	}
	return out, nil
}

// walk visits nodes in document order between from and to. It reports
// whether the walk passed to and should stop.
func (tx *Tx) walk(id node.ID, p, from, to path.Path, voids bool, visit func(node.ID, path.Path)) bool {
	if p.Compare(to) > 0 {
		return true
	}
	if p.Compare(from) < 0 {
		return false
	}
	visit(id, p)

	n, _ := tx.t.Node(id)
	if !n.IsElement() || (!voids && tx.e.IsVoid(n)) {
		return false
	}
	for i, c := range tx.t.Children(id) {
		if tx.walk(c, p.Child(i), from, to, voids, visit) {
			return true
		}
	}
	return false
}

// Selector is the common node selection of the transforms.
type Selector struct {
	At    *Location
	Match MatchFunc
	Mode  Mode
	Voids bool
}

// Select resolves the nodes a transform acts on. It applies the transform
// defaults: the selection when At is nil, the node at an exact location or
// any block element below the root otherwise, and ModeLowest.
func (tx *Tx) Select(s Selector) ([]Entry, error) {
	at := s.At
	if at == nil {
		at = tx.e.selection
	}
	if at == nil {
		return nil, nil
	}
	match := s.Match
	if match == nil {
		if at.Exact {
			match = MatchPath(at.Anchor)
		} else {
			match = func(n *node.Node, p path.Path) bool { return !p.IsRoot() && tx.e.IsBlock(n) }
		}
	}
	return tx.Nodes(NodesOptions{At: at, Match: match, Mode: s.Mode.or(ModeLowest), Voids: s.Voids})
}
