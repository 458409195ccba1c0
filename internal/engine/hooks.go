package engine

import (
	"github.com/dshills/blockstorm/internal/engine/hook"
)

// MoveNodesFunc is the signature of the move-nodes transform.
type MoveNodesFunc func(tx *Tx, opts MoveOptions) error

// LiftNodesFunc is the signature of the lift-nodes transform.
type LiftNodesFunc func(tx *Tx, opts LiftOptions) error

// MoveHook overrides Tx.MoveNodes. WrapMoveNodes receives the next
// implementation in the chain (ultimately the native move) and returns the
// replacement.
type MoveHook interface {
	hook.Hook
	WrapMoveNodes(next MoveNodesFunc) MoveNodesFunc
}

// LiftHook overrides Tx.LiftNodes.
type LiftHook interface {
	hook.Hook
	WrapLiftNodes(next LiftNodesFunc) LiftNodesFunc
}

func (e *Engine) moveChain() MoveNodesFunc {
	return hook.Wrap(e.moveHooks, MoveNodesFunc(nativeMoveNodes), func(h MoveHook, next MoveNodesFunc) MoveNodesFunc {
		return h.WrapMoveNodes(next)
	})
}

func (e *Engine) liftChain() LiftNodesFunc {
	return hook.Wrap(e.liftHooks, LiftNodesFunc(nativeLiftNodes), func(h LiftHook, next LiftNodesFunc) LiftNodesFunc {
		return h.WrapLiftNodes(next)
	})
}
