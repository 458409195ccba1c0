package engine

import (
	"slices"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// MoveOptions configures Tx.MoveNodes.
type MoveOptions struct {
	At    *Location
	Match MatchFunc
	Mode  Mode
	Voids bool

	// To is the destination path of the first moved node.
	To path.Path
}

// Selector returns the node selection part of the options.
func (o MoveOptions) Selector() Selector {
	return Selector{At: o.At, Match: o.Match, Mode: o.Mode, Voids: o.Voids}
}

// RemoveOptions configures Tx.RemoveNodes.
type RemoveOptions struct {
	At    *Location
	Match MatchFunc
	Mode  Mode
	Voids bool
}

// Selector returns the node selection part of the options.
func (o RemoveOptions) Selector() Selector {
	return Selector{At: o.At, Match: o.Match, Mode: o.Mode, Voids: o.Voids}
}

// SetOptions configures Tx.SetNodes.
type SetOptions struct {
	At    *Location
	Match MatchFunc
	Mode  Mode
	Voids bool

	// Unset lists attribute keys to remove.
	Unset []string
}

// Selector returns the node selection part of the options.
func (o SetOptions) Selector() Selector {
	return Selector{At: o.At, Match: o.Match, Mode: o.Mode, Voids: o.Voids}
}

// InsertOptions configures Tx.InsertNodes.
type InsertOptions struct {
	// At is the path the node will occupy. nil appends to the root.
	At path.Path
}

// SplitOptions configures Tx.SplitNodes.
type SplitOptions struct {
	// At is the first child that moves into the new sibling.
	At path.Path

	// Props are applied to the new sibling over the copied attributes.
	Props node.Attrs
}

// LiftOptions configures Tx.LiftNodes.
type LiftOptions struct {
	At    *Location
	Match MatchFunc
	Mode  Mode
	Voids bool
}

// Selector returns the node selection part of the options.
func (o LiftOptions) Selector() Selector {
	return Selector{At: o.At, Match: o.Match, Mode: o.Mode, Voids: o.Voids}
}

// ============================================================================
// Move
// ============================================================================

// MoveNodes moves the selected nodes so the first lands at opts.To and the
// rest follow it consecutively, in match order. The call runs through the
// registered move hooks.
func (tx *Tx) MoveNodes(opts MoveOptions) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	return tx.e.moveChain()(tx, opts)
}

func nativeMoveNodes(tx *Tx, opts MoveOptions) error {
	if opts.To == nil {
		return ErrNoDestination
	}
	entries, err := tx.Select(opts.Selector())
	if err != nil {
		return err
	}
	refs, err := tx.PathRefs(entries)
	if err != nil {
		return err
	}

	return tx.WithoutNormalizing(func() error {
		prev := node.InvalidID
		for _, r := range refs {
			from := r.Unref()
			if from == nil {
				continue
			}
			to := opts.To
			if prevPath, ok := tx.t.PathOf(prev); ok {
				to = followingTarget(from, prevPath)
			}
			if _, err := tx.applyMove(from, to); err != nil {
				return pathError("move_node", from, err)
			}
			prev = r.NodeID()
		}
		return nil
	})
}

// followingTarget returns the move destination that places the node at from
// right after the node at prev.
func followingTarget(from, prev path.Path) path.Path {
	after := prev.Clone()
	if from.EndsBefore(after) {
		after[from.Len()-1]--
	}
	return moveTarget(from, after.Next())
}

// moveTarget returns the destination to pass to a move from `from` so that
// the node's final path is final.
func moveTarget(from, final path.Path) path.Path {
	if from.Len() < final.Len() {
		i := from.Len() - 1
		if slices.Equal(from[:i], final[:i]) && from[i] <= final[i] {
			to := final.Clone()
			to[i]++
			return to
		}
	}
	return final
}

// ============================================================================
// Remove, set, insert, split
// ============================================================================

// RemoveNodes removes the selected nodes. Nodes already removed along with
// an earlier match are skipped.
func (tx *Tx) RemoveNodes(opts RemoveOptions) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	entries, err := tx.Select(opts.Selector())
	if err != nil {
		return err
	}
	refs, err := tx.PathRefs(entries)
	if err != nil {
		return err
	}
	return tx.WithoutNormalizing(func() error {
		for _, r := range refs {
			p := r.Unref()
			if p == nil {
				continue
			}
			if err := tx.applyRemove(p); err != nil {
				return pathError("remove_node", p, err)
			}
		}
		return nil
	})
}

// SetNodes sets props and removes opts.Unset on the selected nodes. Nodes
// whose attributes would not change are left alone.
func (tx *Tx) SetNodes(props node.Attrs, opts SetOptions) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	entries, err := tx.Select(opts.Selector())
	if err != nil {
		return err
	}
	for _, en := range entries {
		if !attrsChange(en.Node.Attrs, props, opts.Unset) {
			continue
		}
		if err := tx.applySet(en.Path, props, opts.Unset); err != nil {
			return pathError("set_node", en.Path, err)
		}
	}
	return nil
}

func attrsChange(cur, set node.Attrs, unset []string) bool {
	for k, v := range set {
		if old, ok := cur[k]; !ok || old != v {
			return true
		}
	}
	for _, k := range unset {
		if _, ok := cur[k]; ok {
			return true
		}
	}
	return false
}

// InsertNodes inserts a copy of n at opts.At.
func (tx *Tx) InsertNodes(n *node.Node, opts InsertOptions) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	at := opts.At
	if at == nil {
		at = path.Of(tx.t.ChildCount(tx.t.Root()))
	}
	if _, err := tx.applyInsert(at, n); err != nil {
		return pathError("insert_node", at, err)
	}
	return nil
}

// SplitNodes splits the parent of opts.At before opts.At. The children from
// opts.At onward move into a new sibling inserted right after the parent,
// which copies the parent's type and attributes.
func (tx *Tx) SplitNodes(opts SplitOptions) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	if _, err := tx.applySplit(opts.At, opts.Props); err != nil {
		return pathError("split_node", opts.At, err)
	}
	return nil
}

// ============================================================================
// Lift
// ============================================================================

// LiftNodes promotes the selected nodes one level. The call runs through the
// registered lift hooks.
func (tx *Tx) LiftNodes(opts LiftOptions) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	return tx.e.liftChain()(tx, opts)
}

// nativeLiftNodes is the framework lift: a middle child splits its parent,
// so the split-off sibling carries a copy of the parent's attributes.
func nativeLiftNodes(tx *Tx, opts LiftOptions) error {
	entries, err := tx.Select(opts.Selector())
	if err != nil {
		return err
	}
	refs, err := tx.PathRefs(entries)
	if err != nil {
		return err
	}

	return tx.WithoutNormalizing(func() error {
		for _, r := range refs {
			p := r.Unref()
			if p == nil {
				continue
			}
			if p.Len() < 2 {
				return pathError("lift_node", p, ErrCannotLift)
			}
			parentPath := p.Parent()
			count, err := tx.ChildCount(parentPath)
			if err != nil {
				return err
			}
			index := p.Last()

			switch {
			case count == 1:
				if err := tx.MoveNodes(MoveOptions{At: AtPath(p), To: parentPath.Next()}); err != nil {
					return err
				}
				if err := tx.RemoveNodes(RemoveOptions{At: AtPath(parentPath)}); err != nil {
					return err
				}
			case index == 0:
				if err := tx.MoveNodes(MoveOptions{At: AtPath(p), To: parentPath}); err != nil {
					return err
				}
			case index == count-1:
				if err := tx.MoveNodes(MoveOptions{At: AtPath(p), To: parentPath.Next()}); err != nil {
					return err
				}
			default:
				if err := tx.SplitNodes(SplitOptions{At: p.Next()}); err != nil {
					return err
				}
				if err := tx.MoveNodes(MoveOptions{At: AtPath(p), To: parentPath.Next()}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
