package engine

import (
	"time"

	"go.uber.org/zap"
)

// PriorityAudit places the audit hook outermost in every chain.
const PriorityAudit = 1000

// AuditHook logs every move and lift call, with the operations it applied
// and its failure, if any.
type AuditHook struct {
	logger *zap.Logger
}

// NewAuditHook creates an audit hook with the given logger.
func NewAuditHook(logger *zap.Logger) *AuditHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHook{logger: logger}
}

// Name implements hook.Hook.
func (h *AuditHook) Name() string { return "audit" }

// Priority implements hook.Hook.
func (h *AuditHook) Priority() int { return PriorityAudit }

// WrapMoveNodes implements MoveHook.
func (h *AuditHook) WrapMoveNodes(next MoveNodesFunc) MoveNodesFunc {
	return func(tx *Tx, opts MoveOptions) error {
		before := len(tx.changes)
		start := time.Now()
		err := next(tx, opts)
		h.log("move_nodes", tx, before, start, err,
			zap.Stringer("at", opts.At),
			zap.Stringer("to", opts.To),
		)
		return err
	}
}

// WrapLiftNodes implements LiftHook.
func (h *AuditHook) WrapLiftNodes(next LiftNodesFunc) LiftNodesFunc {
	return func(tx *Tx, opts LiftOptions) error {
		before := len(tx.changes)
		start := time.Now()
		err := next(tx, opts)
		h.log("lift_nodes", tx, before, start, err, zap.Stringer("at", opts.At))
		return err
	}
}

func (h *AuditHook) log(op string, tx *Tx, before int, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.Int("ops", len(tx.changes)-before),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		h.logger.Error(op+" failed", append(fields, zap.Error(err))...)
		return
	}
	h.logger.Debug(op, fields...)
}
