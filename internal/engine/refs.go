package engine

import (
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/tree"
)

// PathRef follows a node across structural edits. It holds the node's
// stable ID, so its current path is recomputed on demand rather than
// transformed operation by operation.
//
// A PathRef is valid for the transaction that created it.
type PathRef struct {
	t        *tree.Tree
	id       node.ID
	released bool
}

// PathRef returns a reference to the node currently at p.
func (tx *Tx) PathRef(p path.Path) (*PathRef, error) {
	id, err := tx.t.ID(p)
	if err != nil {
		return nil, err
	}
	return &PathRef{t: tx.t, id: id}, nil
}

// PathRefs returns references for every entry, in order.
func (tx *Tx) PathRefs(entries []Entry) ([]*PathRef, error) {
	refs := make([]*PathRef, 0, len(entries))
	for _, en := range entries {
		r, err := tx.PathRef(en.Path)
		if err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, nil
}

// Current returns the node's live path, or nil if the node was removed or
// the reference released.
func (r *PathRef) Current() path.Path {
	if r.released {
		return nil
	}
	p, ok := r.t.PathOf(r.id)
	if !ok {
		return nil
	}
	return p
}

// Unref releases the reference and returns the node's live path, or nil
// if the node was removed.
func (r *PathRef) Unref() path.Path {
	p := r.Current()
	r.released = true
	return p
}

// NodeID returns the referenced node's stable ID.
func (r *PathRef) NodeID() node.ID { return r.id }

// Released reports whether Unref was called.
func (r *PathRef) Released() bool { return r.released }
