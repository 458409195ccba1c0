package blocks

import (
	"go.uber.org/zap"

	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/hook"
)

// MoveHook re-identifies blocks after the engine moves them.
type MoveHook struct {
	gen      IDGenerator
	logger   *zap.Logger
	priority int
}

// NewMoveHook creates a move hook drawing identifiers from gen.
func NewMoveHook(gen IDGenerator, logger *zap.Logger) *MoveHook {
	if gen == nil {
		gen = UUIDGenerator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MoveHook{gen: gen, logger: logger, priority: hook.PriorityNormal}
}

// Name implements hook.Hook.
func (h *MoveHook) Name() string { return "blocks.move" }

// Priority implements hook.Hook.
func (h *MoveHook) Priority() int { return h.priority }

// WrapMoveNodes implements engine.MoveHook. The returned transform always
// runs next first; identifiers are only regenerated once it succeeds.
//
// The moved nodes are resolved before delegating and followed by reference,
// so the blocks re-identified are the ones that moved even when the
// destination path is adjusted or several nodes land after opts.To.
func (h *MoveHook) WrapMoveNodes(next engine.MoveNodesFunc) engine.MoveNodesFunc {
	return func(tx *engine.Tx, opts engine.MoveOptions) error {
		entries, err := tx.Select(opts.Selector())
		if err != nil {
			return err
		}
		refs, err := tx.PathRefs(entries)
		if err != nil {
			return err
		}

		return tx.WithoutNormalizing(func() error {
			if err := next(tx, opts); err != nil {
				return err
			}
			for _, r := range refs {
				p := r.Unref()
				if p == nil {
					continue
				}
				if err := ReplaceIDs(tx, p, h.gen); err != nil {
					return err
				}
				h.logger.Debug("re-identified moved block", zap.Stringer("path", p))
			}
			return nil
		})
	}
}
