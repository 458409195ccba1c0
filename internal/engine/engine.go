package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/blockstorm/internal/engine/hook"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/tracking"
	"github.com/dshills/blockstorm/internal/engine/tree"
)

// Re-export commonly used types for convenience.
type (
	// RevisionID identifies a document state.
	RevisionID = tracking.RevisionID

	// SnapshotID identifies a named snapshot.
	SnapshotID = tracking.SnapshotID

	// Change is one applied operation.
	Change = tracking.Change

	// ChangeType categorizes operations.
	ChangeType = tracking.ChangeType

	// ChangeGroup summarizes a run of operations.
	ChangeGroup = tracking.ChangeGroup

	// IdentityDelta reports identifiers gained and lost between two states.
	IdentityDelta = tracking.IdentityDelta
)

// Re-export constants.
const (
	ChangeInsert = tracking.ChangeInsert
	ChangeRemove = tracking.ChangeRemove
	ChangeMove   = tracking.ChangeMove
	ChangeSet    = tracking.ChangeSet
	ChangeSplit  = tracking.ChangeSplit
)

// Engine is the document editing facade. It owns the block tree, the
// selection, the operation log and the override chains for move and lift.
//
// All operations are thread-safe. Edits run inside Update, which holds the
// write lock for the whole transaction, so readers never observe a
// transaction half applied.
type Engine struct {
	mu sync.RWMutex

	tree      *tree.Tree
	selection *Location
	tracker   *tracking.Tracker
	revision  RevisionID

	moveHooks *hook.Manager[MoveHook]
	liftHooks *hook.Manager[LiftHook]

	// Configuration
	voidTypes   map[string]bool
	inlineTypes map[string]bool
	maxChanges  int
	readOnly    bool
	logger      *zap.Logger

	// Initialization
	initDoc *node.Node
}

// New creates an Engine with an empty document. If WithDocument supplies
// an invalid document it is ignored; use NewFromNode to see the error.
func New(opts ...Option) *Engine {
	e := newEngine(opts)
	t, err := tree.NewFromNode(e.initDoc)
	if err != nil {
		e.logger.Warn("ignoring invalid initial document", zap.Error(err))
		t = tree.New()
	}
	e.tree = t
	return e
}

// NewFromNode creates an Engine editing a copy of doc.
func NewFromNode(doc *node.Node, opts ...Option) (*Engine, error) {
	e := newEngine(opts)
	t, err := tree.NewFromNode(doc)
	if err != nil {
		return nil, err
	}
	e.tree = t
	return e, nil
}

func newEngine(opts []Option) *Engine {
	e := &Engine{
		voidTypes:   toSet(DefaultVoidTypes),
		inlineTypes: toSet(DefaultInlineTypes),
		maxChanges:  DefaultMaxChanges,
		logger:      zap.NewNop(),
		moveHooks:   hook.NewManager[MoveHook](),
		liftHooks:   hook.NewManager[LiftHook](),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.tracker = tracking.NewTracker(tracking.WithMaxChanges(e.maxChanges))
	return e
}

// ============================================================================
// Transactions
// ============================================================================

// Update runs fn in a write transaction. The transaction is one batch:
// normalization runs once after fn returns, whether or not it failed.
// Operations applied before an error stay applied.
func (e *Engine) Update(fn func(tx *Tx) error) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := newTx(e, true)
	err := tx.WithoutNormalizing(func() error { return fn(tx) })
	e.commit(tx)
	if err != nil {
		e.logger.Debug("transaction failed", zap.Error(err), zap.Int("ops", len(tx.changes)))
	}
	return err
}

// View runs fn in a read-only transaction. Mutations return ErrReadOnly.
func (e *Engine) View(fn func(tx *Tx) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fn(newTx(e, false))
}

// commit advances the revision and records the transaction's operations
// (must hold write lock).
func (e *Engine) commit(tx *Tx) {
	if len(tx.changes) == 0 {
		return
	}
	e.revision++
	e.tracker.RecordChanges(e.revision, tx.changes)
}

// ============================================================================
// Read Operations
// ============================================================================

// Snapshot returns a deep copy of the document.
func (e *Engine) Snapshot() *node.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Snapshot()
}

// NodeCount returns the number of nodes in the document, root included.
func (e *Engine) NodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Len()
}

// Selection returns a copy of the current selection, or nil.
func (e *Engine) Selection() *Location {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selection.Clone()
}

// SetSelection replaces the current selection. nil clears it.
func (e *Engine) SetSelection(loc *Location) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = loc.Clone()
}

// IsReadOnly reports whether the engine rejects updates.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

// ============================================================================
// Element kinds
// ============================================================================

// IsVoid reports whether n is a void element.
func (e *Engine) IsVoid(n *node.Node) bool {
	return n.IsElement() && e.voidTypes[n.Type]
}

// IsInline reports whether n is an inline element.
func (e *Engine) IsInline(n *node.Node) bool {
	return n.IsElement() && e.inlineTypes[n.Type]
}

// IsBlock reports whether n is a block-level element.
func (e *Engine) IsBlock(n *node.Node) bool {
	return n.IsElement() && !e.inlineTypes[n.Type]
}

// ============================================================================
// Change Tracking
// ============================================================================

// Revision returns the current revision.
func (e *Engine) Revision() RevisionID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// ChangesSince returns the operations applied after rev.
func (e *Engine) ChangesSince(rev RevisionID) []Change {
	return e.tracker.ChangesSince(rev)
}

// LatestChanges returns the n most recent operations.
func (e *Engine) LatestChanges(n int) []Change {
	return e.tracker.LatestChanges(n)
}

// ChangesGroupedSince groups the operations applied after rev.
func (e *Engine) ChangesGroupedSince(rev RevisionID) *ChangeGroup {
	return e.tracker.BuildChangeGroup(rev)
}

// ChangeCount returns the number of tracked operations.
func (e *Engine) ChangeCount() int {
	return e.tracker.ChangeCount()
}

// CreateSnapshot stores the current document under name.
func (e *Engine) CreateSnapshot(name string) SnapshotID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tracker.CreateSnapshot(name, e.tree.Snapshot(), e.revision)
}

// DiffSinceSnapshot reports the identifiers gained and lost since the
// named snapshot.
func (e *Engine) DiffSinceSnapshot(name string) (IdentityDelta, error) {
	doc := e.Snapshot()
	return e.tracker.DiffSinceSnapshot(name, doc)
}

// ============================================================================
// Hooks
// ============================================================================

// RegisterHook registers h with every override chain whose interface it
// implements. A hook with the same name replaces the earlier one.
func (e *Engine) RegisterHook(h hook.Hook) error {
	registered := false
	if mh, ok := h.(MoveHook); ok {
		e.moveHooks.Register(mh)
		registered = true
	}
	if lh, ok := h.(LiftHook); ok {
		e.liftHooks.Register(lh)
		registered = true
	}
	if !registered {
		return ErrUnsupportedHook
	}
	e.logger.Debug("hook registered", zap.String("hook", h.Name()), zap.Int("priority", h.Priority()))
	return nil
}

// UnregisterHook removes a hook by name from all chains.
func (e *Engine) UnregisterHook(name string) bool {
	move := e.moveHooks.Unregister(name)
	lift := e.liftHooks.Unregister(name)
	return move || lift
}

// MoveHookNames returns the move chain's hooks, outermost first.
func (e *Engine) MoveHookNames() []string {
	return e.moveHooks.Names()
}

// LiftHookNames returns the lift chain's hooks, outermost first.
func (e *Engine) LiftHookNames() []string {
	return e.liftHooks.Names()
}
