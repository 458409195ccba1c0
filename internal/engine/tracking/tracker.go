package tracking

import (
	"sync"

	"github.com/dshills/blockstorm/internal/engine/node"
)

// DefaultMaxChanges is the default maximum number of changes to track.
const DefaultMaxChanges = 10000

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMaxChanges sets the maximum number of changes to track.
// It must only be used during Tracker creation via NewTracker.
func WithMaxChanges(maxChanges int) TrackerOption {
	return func(t *Tracker) {
		if maxChanges <= 0 {
			return
		}
		t.maxChanges = maxChanges
		t.changes = make([]trackedChange, maxChanges)
	}
}

// trackedChange pairs a change with the revision that produced it.
type trackedChange struct {
	revision RevisionID
	change   Change
}

// Tracker keeps a bounded history of applied operations and named
// document snapshots.
type Tracker struct {
	mu sync.RWMutex

	// Recent changes in a ring buffer
	changes    []trackedChange
	head       int // index of oldest entry
	count      int
	maxChanges int

	snapshots *SnapshotManager
}

// NewTracker creates a new change tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		maxChanges: DefaultMaxChanges,
		changes:    make([]trackedChange, DefaultMaxChanges),
		snapshots:  NewSnapshotManager(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordChanges records the changes of one committed revision.
func (t *Tracker) RecordChanges(rev RevisionID, changes []Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range changes {
		c.RevisionID = rev
		t.recordChangeLocked(rev, c)
	}
}

// RecordChange records a single change.
func (t *Tracker) RecordChange(rev RevisionID, change Change) {
	t.RecordChanges(rev, []Change{change})
}

func (t *Tracker) recordChangeLocked(rev RevisionID, change Change) {
	idx := (t.head + t.count) % t.maxChanges
	if t.count < t.maxChanges {
		t.count++
	} else {
		// Full: overwrite the oldest entry.
		t.head = (t.head + 1) % t.maxChanges
	}
	t.changes[idx] = trackedChange{revision: rev, change: change}
}

// ChangesSince returns all changes after rev in chronological order.
func (t *Tracker) ChangesSince(rev RevisionID) []Change {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.changesBetweenLocked(rev, ^RevisionID(0))
}

// ChangesBetween returns changes between two revisions (exclusive start,
// inclusive end).
func (t *Tracker) ChangesBetween(startRev, endRev RevisionID) []Change {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.changesBetweenLocked(startRev, endRev)
}

func (t *Tracker) changesBetweenLocked(startRev, endRev RevisionID) []Change {
	var result []Change
	for i := 0; i < t.count; i++ {
		tc := t.changes[(t.head+i)%t.maxChanges]
		if tc.revision > startRev && tc.revision <= endRev {
			result = append(result, tc.change)
		}
	}
	return result
}

// LatestChanges returns the most recent n changes in chronological order.
func (t *Tracker) LatestChanges(n int) []Change {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > t.count {
		n = t.count
	}
	if n <= 0 {
		return nil
	}
	result := make([]Change, n)
	for i := 0; i < n; i++ {
		idx := (t.head + t.count - 1 - i) % t.maxChanges
		result[n-1-i] = t.changes[idx].change
	}
	return result
}

// ChangeCount returns the number of tracked changes.
func (t *Tracker) ChangeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// BuildChangeGroup creates a ChangeGroup from changes after sinceRev.
func (t *Tracker) BuildChangeGroup(sinceRev RevisionID) *ChangeGroup {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cs := NewChangeGroup(sinceRev)
	for _, c := range t.changesBetweenLocked(sinceRev, ^RevisionID(0)) {
		cs.Add(c)
	}
	return cs
}

// Snapshot operations

// CreateSnapshot stores doc under name. An existing snapshot with the same
// name is replaced.
func (t *Tracker) CreateSnapshot(name string, doc *node.Node, rev RevisionID) SnapshotID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshots.Create(name, doc, rev)
}

// GetSnapshot retrieves a snapshot by ID.
func (t *Tracker) GetSnapshot(id SnapshotID) (*Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap, ok := t.snapshots.Get(id)
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

// GetSnapshotByName retrieves a snapshot by name.
func (t *Tracker) GetSnapshotByName(name string) (*Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap, ok := t.snapshots.GetByName(name)
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

// DeleteSnapshotByName removes a snapshot by name.
func (t *Tracker) DeleteSnapshotByName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshots.DeleteByName(name)
}

// ListSnapshots returns all snapshots ordered by creation.
func (t *Tracker) ListSnapshots() []*Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshots.List()
}

// DiffSinceSnapshot compares the identities in the named snapshot with doc.
func (t *Tracker) DiffSinceSnapshot(name string, doc *node.Node) (IdentityDelta, error) {
	t.mu.RLock()
	snap, ok := t.snapshots.GetByName(name)
	t.mu.RUnlock()
	if !ok {
		return IdentityDelta{}, ErrSnapshotNotFound
	}
	return DiffIdentities(snap.Document(), doc), nil
}

// Clear removes all tracked changes and snapshots.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.head = 0
	t.count = 0
	clear(t.changes)
	t.snapshots.Clear()
}
