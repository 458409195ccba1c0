package blocks

import (
	"go.uber.org/zap"

	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/hook"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// LiftCase is the position of a lifted node among its siblings.
type LiftCase uint8

const (
	// LiftOnly is a node without siblings.
	LiftOnly LiftCase = iota

	// LiftFirst is the first of several children.
	LiftFirst

	// LiftLast is the last of several children.
	LiftLast

	// LiftMiddle is any other child.
	LiftMiddle
)

// String returns the case name.
func (c LiftCase) String() string {
	switch c {
	case LiftOnly:
		return "only"
	case LiftFirst:
		return "first"
	case LiftLast:
		return "last"
	case LiftMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// Classify returns the lift case of the child at index among count
// children.
func Classify(index, count int) LiftCase {
	switch {
	case count == 1:
		return LiftOnly
	case index == 0:
		return LiftFirst
	case index == count-1:
		return LiftLast
	default:
		return LiftMiddle
	}
}

// LiftHook replaces the engine's lift transform.
type LiftHook struct {
	logger   *zap.Logger
	priority int
}

// NewLiftHook creates a lift hook.
func NewLiftHook(logger *zap.Logger) *LiftHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiftHook{logger: logger, priority: hook.PriorityNormal}
}

// Name implements hook.Hook.
func (h *LiftHook) Name() string { return "blocks.lift" }

// Priority implements hook.Hook.
func (h *LiftHook) Priority() int { return h.priority }

// WrapLiftNodes implements engine.LiftHook. The native lift is replaced,
// not called.
func (h *LiftHook) WrapLiftNodes(_ engine.LiftNodesFunc) engine.LiftNodesFunc {
	return h.LiftNodes
}

// MatchBlock is the default lift match: block-level elements carrying a
// blockId.
func MatchBlock(tx *engine.Tx) engine.MatchFunc {
	return func(n *node.Node, _ path.Path) bool {
		_, ok := n.BlockID()
		return ok && tx.IsBlock(n)
	}
}

// LiftNodes promotes the matched nodes one level.
//
// With no location and no selection it does nothing; so does a location
// where nothing matches. Every match is checked before anything moves: a
// match with depth less than 2 fails the call with a *LiftError and leaves
// the document untouched.
func (h *LiftHook) LiftNodes(tx *engine.Tx, opts engine.LiftOptions) error {
	at := opts.At
	if at == nil {
		at = tx.Selection()
	}
	if at == nil {
		return nil
	}
	match := opts.Match
	if match == nil {
		match = MatchBlock(tx)
	}

	return tx.WithoutNormalizing(func() error {
		entries, err := tx.Select(engine.Selector{At: at, Match: match, Mode: opts.Mode, Voids: opts.Voids})
		if err != nil {
			return err
		}
		for _, en := range entries {
			if en.Path.Len() < 2 {
				return &LiftError{Path: en.Path.Clone()}
			}
		}
		refs, err := tx.PathRefs(entries)
		if err != nil {
			return err
		}
		defer func() {
			for _, r := range refs {
				if !r.Released() {
					r.Unref()
				}
			}
		}()

		for _, r := range refs {
			p := r.Unref()
			if p == nil {
				continue
			}
			if err := h.liftOne(tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *LiftHook) liftOne(tx *engine.Tx, p path.Path) error {
	if p.Len() < 2 {
		return &LiftError{Path: p.Clone()}
	}
	parentPath := p.Parent()
	count, err := tx.ChildCount(parentPath)
	if err != nil {
		return err
	}
	index := p.Last()
	c := Classify(index, count)
	h.logger.Debug("lift", zap.Stringer("path", p), zap.Stringer("case", c))

	switch c {
	case LiftOnly:
		if err := move(tx, p, parentPath.Next()); err != nil {
			return err
		}
		return tx.RemoveNodes(engine.RemoveOptions{At: engine.AtPath(parentPath)})
	case LiftFirst:
		return move(tx, p, parentPath)
	case LiftLast:
		return move(tx, p, parentPath.Next())
	default:
		base, err := tx.ChildCount(p)
		if err != nil {
			return err
		}
		// Each following sibling in turn sits right after the lifted node.
		for i := index + 1; i < count; i++ {
			if err := move(tx, parentPath.Child(index+1), p.Child(base+i-index-1)); err != nil {
				return err
			}
		}
		return move(tx, p, parentPath.Next())
	}
}

func move(tx *engine.Tx, from, to path.Path) error {
	return tx.MoveNodes(engine.MoveOptions{At: engine.AtPath(from), To: to})
}
