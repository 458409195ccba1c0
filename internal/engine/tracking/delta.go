package tracking

import (
	"fmt"
	"strings"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// RevisionID identifies a document state. Each committed transaction that
// applies at least one operation advances the revision by one.
type RevisionID uint64

// ChangeType categorizes an operation.
type ChangeType uint8

const (
	// ChangeInsert indicates a node was inserted at Path.
	ChangeInsert ChangeType = iota

	// ChangeRemove indicates the node at Path was removed.
	ChangeRemove

	// ChangeMove indicates the node at Path was moved to NewPath.
	ChangeMove

	// ChangeSet indicates attributes of the node at Path changed.
	ChangeSet

	// ChangeSplit indicates the parent of Path was split before Path; the
	// new sibling sits at NewPath.
	ChangeSplit
)

// String returns a human-readable representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeRemove:
		return "remove"
	case ChangeMove:
		return "move"
	case ChangeSet:
		return "set"
	case ChangeSplit:
		return "split"
	default:
		return "unknown"
	}
}

// Change is one applied operation.
type Change struct {
	// Type is the kind of operation.
	Type ChangeType

	// Path addresses the node before the operation.
	Path path.Path

	// NewPath is the node's path after a move, or the new sibling after a split.
	NewPath path.Path

	// NodeID is the arena handle of the affected node.
	NodeID node.ID

	// Node holds the inserted or removed subtree.
	Node *node.Node

	// Properties holds previous attribute values for set operations.
	Properties node.Attrs

	// NewProperties holds the attribute values written by set operations.
	NewProperties node.Attrs

	// Unset lists attribute keys removed by set operations.
	Unset []string

	// RevisionID is the revision this change belongs to.
	RevisionID RevisionID
}

// String returns a compact description of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeMove:
		return fmt.Sprintf("move %s -> %s", c.Path, c.NewPath)
	case ChangeSplit:
		return fmt.Sprintf("split %s -> %s", c.Path, c.NewPath)
	case ChangeSet:
		keys := make([]string, 0, len(c.NewProperties)+len(c.Unset))
		for k := range c.NewProperties {
			keys = append(keys, k)
		}
		keys = append(keys, c.Unset...)
		return fmt.Sprintf("set %s [%s]", c.Path, strings.Join(keys, ","))
	default:
		return fmt.Sprintf("%s %s", c.Type, c.Path)
	}
}

// IsStructural reports whether the change alters tree shape.
func (c Change) IsStructural() bool {
	return c.Type != ChangeSet
}

// ChangeGroup groups changes for summarization.
type ChangeGroup struct {
	StartRevision RevisionID
	Changes       []Change
}

// NewChangeGroup creates an empty change group starting after startRevision.
func NewChangeGroup(startRevision RevisionID) *ChangeGroup {
	return &ChangeGroup{StartRevision: startRevision}
}

// Add appends a change.
func (cs *ChangeGroup) Add(c Change) {
	cs.Changes = append(cs.Changes, c)
}

// Len returns the number of changes.
func (cs *ChangeGroup) Len() int {
	return len(cs.Changes)
}

// IsEmpty reports whether the group has no changes.
func (cs *ChangeGroup) IsEmpty() bool {
	return len(cs.Changes) == 0
}

// Count returns the number of changes of the given type.
func (cs *ChangeGroup) Count(ct ChangeType) int {
	n := 0
	for _, c := range cs.Changes {
		if c.Type == ct {
			n++
		}
	}
	return n
}

// Summary returns a human-readable summary such as
// "3 changes: 2 move, 1 set".
func (cs *ChangeGroup) Summary() string {
	if cs.IsEmpty() {
		return "no changes"
	}
	var parts []string
	for ct := ChangeInsert; ct <= ChangeSplit; ct++ {
		if n := cs.Count(ct); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, ct))
		}
	}
	noun := "changes"
	if cs.Len() == 1 {
		noun = "change"
	}
	return fmt.Sprintf("%d %s: %s", cs.Len(), noun, strings.Join(parts, ", "))
}
