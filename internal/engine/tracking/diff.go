package tracking

import (
	"slices"

	"github.com/dshills/blockstorm/internal/engine/node"
)

// IdentityDelta describes how block and text identifiers changed between two
// document states. All slices are sorted.
type IdentityDelta struct {
	AddedBlocks   []string
	RemovedBlocks []string
	KeptBlocks    []string

	AddedTexts   []string
	RemovedTexts []string
}

// HasChanges reports whether any identifier appeared or disappeared.
func (d IdentityDelta) HasChanges() bool {
	return len(d.AddedBlocks) > 0 || len(d.RemovedBlocks) > 0 ||
		len(d.AddedTexts) > 0 || len(d.RemovedTexts) > 0
}

// DiffIdentities compares the identifiers found in before and after.
// Either side may be nil.
func DiffIdentities(before, after *node.Node) IdentityDelta {
	var d IdentityDelta
	d.AddedBlocks, d.RemovedBlocks, d.KeptBlocks = diffSets(before.BlockIDs(), after.BlockIDs())
	d.AddedTexts, d.RemovedTexts, _ = diffSets(before.TextIDs(), after.TextIDs())
	return d
}

func diffSets(before, after []string) (added, removed, kept []string) {
	old := make(map[string]bool, len(before))
	for _, id := range before {
		old[id] = true
	}
	cur := make(map[string]bool, len(after))
	for _, id := range after {
		if cur[id] {
			continue
		}
		cur[id] = true
		if old[id] {
			kept = append(kept, id)
		} else {
			added = append(added, id)
		}
	}
	for id := range old {
		if !cur[id] {
			removed = append(removed, id)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)
	slices.Sort(kept)
	return added, removed, kept
}
