package engine

import (
	"slices"

	"go.uber.org/zap"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/tracking"
	"github.com/dshills/blockstorm/internal/engine/tree"
)

// Tx is a transaction over the document. It is only valid inside the
// Update or View callback that received it and must not be retained.
//
// Paths returned by a Tx are positional and go stale after structural
// edits; hold a PathRef across edits instead.
type Tx struct {
	e        *Engine
	t        *tree.Tree
	writable bool

	batch   int
	dirty   map[node.ID]struct{}
	changes []tracking.Change
}

func newTx(e *Engine, writable bool) *Tx {
	return &Tx{
		e:        e,
		t:        e.tree,
		writable: writable,
		dirty:    make(map[node.ID]struct{}),
	}
}

// Engine returns the engine the transaction belongs to.
func (tx *Tx) Engine() *Engine { return tx.e }

// Logger returns the engine's logger.
func (tx *Tx) Logger() *zap.Logger { return tx.e.logger }

// Writable reports whether the transaction may mutate the document.
func (tx *Tx) Writable() bool { return tx.writable }

// Changes returns the operations applied so far in this transaction.
func (tx *Tx) Changes() []Change {
	return slices.Clone(tx.changes)
}

func (tx *Tx) checkWritable() error {
	if !tx.writable {
		return ErrReadOnly
	}
	return nil
}

// ============================================================================
// Selection
// ============================================================================

// Selection returns a copy of the current selection, or nil.
func (tx *Tx) Selection() *Location {
	return tx.e.selection.Clone()
}

// SetSelection replaces the selection.
func (tx *Tx) SetSelection(loc *Location) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	tx.e.selection = loc.Clone()
	return nil
}

// ============================================================================
// Queries
// ============================================================================

// Revision returns the revision the transaction started from.
func (tx *Tx) Revision() RevisionID { return tx.e.revision }

// Has reports whether a node exists at p.
func (tx *Tx) Has(p path.Path) bool {
	return tx.t.Has(p)
}

// Node returns a deep copy of the node at p.
func (tx *Tx) Node(p path.Path) (*node.Node, error) {
	id, err := tx.t.ID(p)
	if err != nil {
		return nil, err
	}
	n, _ := tx.t.Subtree(id)
	return n, nil
}

// Entry returns the node at p without its children.
func (tx *Tx) Entry(p path.Path) (Entry, error) {
	id, err := tx.t.ID(p)
	if err != nil {
		return Entry{}, err
	}
	n, _ := tx.t.Node(id)
	return Entry{Node: n, Path: p.Clone()}, nil
}

// Parent returns the parent entry of the node at p.
func (tx *Tx) Parent(p path.Path) (Entry, error) {
	if p.IsRoot() {
		return Entry{}, &tree.PathError{Path: p.Clone(), Err: ErrRootPath}
	}
	return tx.Entry(p.Parent())
}

// ChildCount returns the number of children of the node at p.
func (tx *Tx) ChildCount(p path.Path) (int, error) {
	id, err := tx.t.ID(p)
	if err != nil {
		return 0, err
	}
	return tx.t.ChildCount(id), nil
}

// Snapshot returns a deep copy of the document as seen by the transaction.
func (tx *Tx) Snapshot() *node.Node {
	return tx.t.Snapshot()
}

// IsVoid reports whether n is a void element.
func (tx *Tx) IsVoid(n *node.Node) bool { return tx.e.IsVoid(n) }

// IsInline reports whether n is an inline element.
func (tx *Tx) IsInline(n *node.Node) bool { return tx.e.IsInline(n) }

// IsBlock reports whether n is a block-level element.
func (tx *Tx) IsBlock(n *node.Node) bool { return tx.e.IsBlock(n) }

// ============================================================================
// Batching and normalization
// ============================================================================

// WithoutNormalizing runs fn as a batch. Normalization is deferred until the
// outermost batch returns, including when fn fails.
func (tx *Tx) WithoutNormalizing(fn func() error) error {
	tx.batch++
	err := fn()
	tx.batch--
	if tx.batch == 0 && tx.writable {
		tx.normalize()
	}
	return err
}

// IsNormalizing reports whether edits are normalized as they happen, that
// is, whether the caller is outside any batch.
func (tx *Tx) IsNormalizing() bool {
	return tx.batch == 0
}

// normalize gives every dirty element left without children an empty text
// leaf. The root is exempt.
func (tx *Tx) normalize() {
	for len(tx.dirty) > 0 {
		ids := make([]node.ID, 0, len(tx.dirty))
		for id := range tx.dirty {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		clear(tx.dirty)

		for _, id := range ids {
			if id == tx.t.Root() || tx.t.ChildCount(id) > 0 {
				continue
			}
			n, ok := tx.t.Node(id)
			if !ok || !n.IsElement() {
				continue
			}
			p, _ := tx.t.PathOf(id)
			if _, err := tx.applyInsert(p.Child(0), node.NewText("", nil)); err != nil {
				tx.e.logger.Error("normalize failed", zap.Stringer("path", p), zap.Error(err))
			}
		}
	}
}

func (tx *Tx) markDirty(ids ...node.ID) {
	for _, id := range ids {
		tx.dirty[id] = struct{}{}
	}
}

func (tx *Tx) markSubtreeDirty(id node.ID) {
	tx.markDirty(id)
	for _, c := range tx.t.Children(id) {
		tx.markSubtreeDirty(c)
	}
}

// ============================================================================
// Operations
// ============================================================================

func (tx *Tx) record(c tracking.Change) {
	tx.changes = append(tx.changes, c)
	if ce := tx.e.logger.Check(zap.DebugLevel, "op"); ce != nil {
		ce.Write(zap.Stringer("op", c))
	}
}

func (tx *Tx) applyInsert(p path.Path, n *node.Node) (node.ID, error) {
	id, err := tx.t.Insert(p, n)
	if err != nil {
		return node.InvalidID, err
	}
	parent, _ := tx.t.Parent(id)
	tx.markDirty(parent)
	tx.markSubtreeDirty(id)
	tx.record(tracking.Change{Type: tracking.ChangeInsert, Path: p.Clone(), NodeID: id, Node: n.Clone()})
	return id, nil
}

func (tx *Tx) applyRemove(p path.Path) error {
	id, err := tx.t.ID(p)
	if err != nil {
		return err
	}
	parent, _ := tx.t.Parent(id)
	removed, err := tx.t.Remove(p)
	if err != nil {
		return err
	}
	tx.markDirty(parent)
	tx.record(tracking.Change{Type: tracking.ChangeRemove, Path: p.Clone(), NodeID: id, Node: removed})
	return nil
}

func (tx *Tx) applyMove(from, to path.Path) (path.Path, error) {
	id, err := tx.t.ID(from)
	if err != nil {
		return nil, err
	}
	oldParent, _ := tx.t.Parent(id)
	np, err := tx.t.Move(from, to)
	if err != nil {
		return nil, err
	}
	if np.Equal(from) {
		return np, nil
	}
	newParent, _ := tx.t.Parent(id)
	tx.markDirty(oldParent, newParent)
	tx.record(tracking.Change{Type: tracking.ChangeMove, Path: from.Clone(), NewPath: np.Clone(), NodeID: id})
	return np, nil
}

func (tx *Tx) applySet(p path.Path, set node.Attrs, unset []string) error {
	id, err := tx.t.ID(p)
	if err != nil {
		return err
	}
	prev, err := tx.t.SetAttrs(p, set, unset)
	if err != nil {
		return err
	}
	tx.record(tracking.Change{
		Type:          tracking.ChangeSet,
		Path:          p.Clone(),
		NodeID:        id,
		Properties:    prev,
		NewProperties: set.Clone(),
		Unset:         slices.Clone(unset),
	})
	return nil
}

func (tx *Tx) applySplit(p path.Path, props node.Attrs) (path.Path, error) {
	var parent node.ID
	if p.Len() >= 2 {
		parent, _ = tx.t.ID(p.Parent())
	}
	sid, err := tx.t.Split(p, props)
	if err != nil {
		return nil, err
	}
	sp, _ := tx.t.PathOf(sid)
	tx.markDirty(parent, sid)
	tx.record(tracking.Change{Type: tracking.ChangeSplit, Path: p.Clone(), NewPath: sp.Clone(), NodeID: sid})
	return sp, nil
}
