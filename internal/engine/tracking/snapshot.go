package tracking

import (
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/dshills/blockstorm/internal/engine/node"
)

// ErrSnapshotNotFound is returned when a snapshot does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotID uniquely identifies a named snapshot.
type SnapshotID uint64

var snapshotIDCounter uint64

// NewSnapshotID generates a new unique snapshot ID.
func NewSnapshotID() SnapshotID {
	return SnapshotID(atomic.AddUint64(&snapshotIDCounter, 1))
}

// Snapshot is a named, immutable copy of a document.
type Snapshot struct {
	ID        SnapshotID
	Name      string
	Timestamp time.Time
	Revision  RevisionID

	doc *node.Node
}

// NewSnapshot copies doc into a new snapshot.
func NewSnapshot(name string, doc *node.Node, revision RevisionID) *Snapshot {
	return &Snapshot{
		ID:        NewSnapshotID(),
		Name:      name,
		Timestamp: time.Now(),
		Revision:  revision,
		doc:       doc.Clone(),
	}
}

// Document returns a copy of the snapshotted document.
func (s *Snapshot) Document() *node.Node {
	return s.doc.Clone()
}

// BlockCount returns the number of identified blocks in the snapshot.
func (s *Snapshot) BlockCount() int {
	return len(s.doc.BlockIDs())
}

// SnapshotManager indexes snapshots by ID and name. It is not safe for
// concurrent use on its own; Tracker guards it.
type SnapshotManager struct {
	byID   map[SnapshotID]*Snapshot
	byName map[string]SnapshotID
}

// NewSnapshotManager creates an empty manager.
func NewSnapshotManager() *SnapshotManager {
	return &SnapshotManager{
		byID:   make(map[SnapshotID]*Snapshot),
		byName: make(map[string]SnapshotID),
	}
}

// Create stores a new snapshot, replacing any with the same name.
func (m *SnapshotManager) Create(name string, doc *node.Node, rev RevisionID) SnapshotID {
	if old, ok := m.byName[name]; ok {
		delete(m.byID, old)
	}
	snap := NewSnapshot(name, doc, rev)
	m.byID[snap.ID] = snap
	m.byName[name] = snap.ID
	return snap.ID
}

// Get returns the snapshot with id.
func (m *SnapshotManager) Get(id SnapshotID) (*Snapshot, bool) {
	s, ok := m.byID[id]
	return s, ok
}

// GetByName returns the snapshot called name.
func (m *SnapshotManager) GetByName(name string) (*Snapshot, bool) {
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.Get(id)
}

// Delete removes a snapshot by ID.
func (m *SnapshotManager) Delete(id SnapshotID) {
	s, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byID, id)
	delete(m.byName, s.Name)
}

// DeleteByName removes a snapshot by name.
func (m *SnapshotManager) DeleteByName(name string) {
	if id, ok := m.byName[name]; ok {
		m.Delete(id)
	}
}

// List returns all snapshots ordered by ID.
func (m *SnapshotManager) List() []*Snapshot {
	out := make([]*Snapshot, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of snapshots.
func (m *SnapshotManager) Count() int {
	return len(m.byID)
}

// Clear removes all snapshots.
func (m *SnapshotManager) Clear() {
	clear(m.byID)
	clear(m.byName)
}
