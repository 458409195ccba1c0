// Package tree holds the live document as an arena of nodes.
//
// Every node is stored under a stable node.ID together with a link to its
// parent, so the current path of any node can be recovered after arbitrary
// moves. All mutating methods take positional paths, mirroring the operation
// primitives the engine applies, and leave IDs of surviving nodes untouched.
//
// Tree is not safe for concurrent use; the engine serializes access.
package tree

import (
	"fmt"
	"slices"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// entry is the arena record of a node.
type entry struct {
	id       node.ID
	kind     node.Kind
	typ      string
	text     string
	attrs    node.Attrs
	parent   node.ID
	children []node.ID
}

// Tree is an arena-backed mutable document tree.
type Tree struct {
	nodes  map[node.ID]*entry
	root   node.ID
	nextID node.ID
}

// New creates a tree whose root is an empty element.
func New() *Tree {
	t := &Tree{nodes: make(map[node.ID]*entry)}
	t.root = t.alloc(&entry{kind: node.KindElement})
	return t
}

// NewFromNode creates a tree from a value tree. The value is copied.
// The root must be an element.
func NewFromNode(root *node.Node) (*Tree, error) {
	if root == nil {
		return New(), nil
	}
	if !root.IsElement() {
		return nil, fmt.Errorf("%w: root must be an element", ErrInvalidNode)
	}
	t := &Tree{nodes: make(map[node.ID]*entry)}
	t.root = t.build(root, node.InvalidID)
	return t, nil
}

// alloc stores e under a fresh ID.
func (t *Tree) alloc(e *entry) node.ID {
	t.nextID++
	e.id = t.nextID
	t.nodes[e.id] = e
	return e.id
}

// build recursively copies a value tree into the arena.
func (t *Tree) build(n *node.Node, parent node.ID) node.ID {
	e := &entry{
		kind:   n.Kind,
		typ:    n.Type,
		text:   n.Text,
		attrs:  n.Attrs.Clone(),
		parent: parent,
	}
	id := t.alloc(e)
	if n.Kind == node.KindElement && len(n.Children) > 0 {
		e.children = make([]node.ID, 0, len(n.Children))
		for _, c := range n.Children {
			e.children = append(e.children, t.build(c, id))
		}
	}
	return id
}

// Root returns the ID of the root element.
func (t *Tree) Root() node.ID { return t.root }

// Len returns the number of nodes in the arena, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Contains reports whether id refers to a live node.
func (t *Tree) Contains(id node.ID) bool {
	_, ok := t.nodes[id]
	return ok
}

// ID returns the ID of the node at p.
func (t *Tree) ID(p path.Path) (node.ID, error) {
	cur := t.nodes[t.root]
	for depth, idx := range p {
		if cur.kind != node.KindElement || idx < 0 || idx >= len(cur.children) {
			return node.InvalidID, &PathError{Path: p.Clone(), Depth: depth, Err: ErrNoNode}
		}
		cur = t.nodes[cur.children[idx]]
	}
	return cur.id, nil
}

// Has reports whether a node exists at p.
func (t *Tree) Has(p path.Path) bool {
	_, err := t.ID(p)
	return err == nil
}

// PathOf returns the current path of id and false if id is not live.
func (t *Tree) PathOf(id node.ID) (path.Path, bool) {
	e, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	var rev []int
	for e.id != t.root {
		parent := t.nodes[e.parent]
		rev = append(rev, slices.Index(parent.children, e.id))
		e = parent
	}
	slices.Reverse(rev)
	return path.Path(append(path.Path{}, rev...)), true
}

// Node returns a shallow value of the node: kind, type, text and a copy of
// the attributes. Children are not included.
func (t *Tree) Node(id node.ID) (*node.Node, bool) {
	e, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	return &node.Node{Kind: e.kind, Type: e.typ, Text: e.text, Attrs: e.attrs.Clone()}, true
}

// Subtree returns a deep value copy of the node and its descendants.
func (t *Tree) Subtree(id node.ID) (*node.Node, bool) {
	e, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	return t.snapshot(e), true
}

// Snapshot returns a deep value copy of the whole document.
func (t *Tree) Snapshot() *node.Node {
	return t.snapshot(t.nodes[t.root])
}

func (t *Tree) snapshot(e *entry) *node.Node {
	n := &node.Node{Kind: e.kind, Type: e.typ, Text: e.text, Attrs: e.attrs.Clone()}
	if len(e.children) > 0 {
		n.Children = make([]*node.Node, len(e.children))
		for i, c := range e.children {
			n.Children[i] = t.snapshot(t.nodes[c])
		}
	}
	return n
}

// Parent returns the parent ID of id and false for the root or a dead ID.
func (t *Tree) Parent(id node.ID) (node.ID, bool) {
	e, ok := t.nodes[id]
	if !ok || id == t.root {
		return node.InvalidID, false
	}
	return e.parent, true
}

// Children returns a copy of the child IDs of id.
func (t *Tree) Children(id node.ID) []node.ID {
	e, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(e.children)
}

// ChildCount returns the number of children of id.
func (t *Tree) ChildCount(id node.ID) int {
	e, ok := t.nodes[id]
	if !ok {
		return 0
	}
	return len(e.children)
}

// IsAncestor reports whether ancestor is a strict ancestor of id.
func (t *Tree) IsAncestor(ancestor, id node.ID) bool {
	e, ok := t.nodes[id]
	if !ok {
		return false
	}
	for e.id != t.root {
		if e.parent == ancestor {
			return true
		}
		e = t.nodes[e.parent]
	}
	return false
}

// Insert copies n into the tree so that it ends up at p.
// The parent of p must be an element and the index may equal the current
// child count (append).
func (t *Tree) Insert(p path.Path, n *node.Node) (node.ID, error) {
	if n == nil {
		return node.InvalidID, ErrInvalidNode
	}
	if p.IsRoot() {
		return node.InvalidID, &PathError{Path: p.Clone(), Err: ErrRootPath}
	}
	parentID, err := t.ID(p.Parent())
	if err != nil {
		return node.InvalidID, err
	}
	parent := t.nodes[parentID]
	if parent.kind != node.KindElement {
		return node.InvalidID, &PathError{Path: p.Clone(), Depth: p.Len() - 1, Err: ErrNotElement}
	}
	idx := p.Last()
	if idx > len(parent.children) {
		return node.InvalidID, &PathError{Path: p.Clone(), Depth: p.Len() - 1, Err: ErrIndexOutOfRange}
	}
	id := t.build(n, parentID)
	parent.children = slices.Insert(parent.children, idx, id)
	return id, nil
}

// Remove deletes the node at p and its descendants and returns a value copy
// of the removed subtree.
func (t *Tree) Remove(p path.Path) (*node.Node, error) {
	if p.IsRoot() {
		return nil, &PathError{Path: p.Clone(), Err: ErrRootPath}
	}
	id, err := t.ID(p)
	if err != nil {
		return nil, err
	}
	e := t.nodes[id]
	removed := t.snapshot(e)

	parent := t.nodes[e.parent]
	parent.children = slices.Delete(parent.children, p.Last(), p.Last()+1)
	t.drop(e)
	return removed, nil
}

// drop removes e and all its descendants from the arena.
func (t *Tree) drop(e *entry) {
	for _, c := range e.children {
		t.drop(t.nodes[c])
	}
	delete(t.nodes, e.id)
}

// Move relocates the node at from so that its final path is to, adjusted the
// usual way when from ends before to at a shallower depth: the index at
// from's depth shifts down by one because from's removal closes the gap.
//
// It returns the node's new path. Moving a node into itself or one of its
// descendants fails, as does moving the root.
func (t *Tree) Move(from, to path.Path) (path.Path, error) {
	if from.IsRoot() || to.IsRoot() {
		return nil, &PathError{Path: from.Clone(), Err: ErrRootPath}
	}
	if from.Equal(to) {
		if _, err := t.ID(from); err != nil {
			return nil, err
		}
		return from.Clone(), nil
	}
	if from.IsAncestor(to) {
		return nil, &PathError{Path: to.Clone(), Err: ErrMoveIntoSelf}
	}

	id, err := t.ID(from)
	if err != nil {
		return nil, err
	}
	newParentID, err := t.ID(to.Parent())
	if err != nil {
		return nil, err
	}
	newParent := t.nodes[newParentID]
	if newParent.kind != node.KindElement {
		return nil, &PathError{Path: to.Clone(), Depth: to.Len() - 1, Err: ErrNotElement}
	}

	e := t.nodes[id]
	oldParent := t.nodes[e.parent]

	// Children of the destination after from has been taken out.
	limit := len(newParent.children)
	if newParentID == oldParent.id {
		limit--
	}
	idx := to.Last()
	if idx > limit {
		return nil, &PathError{Path: to.Clone(), Depth: to.Len() - 1, Err: ErrIndexOutOfRange}
	}

	oldParent.children = slices.Delete(oldParent.children, from.Last(), from.Last()+1)
	newParent.children = slices.Insert(newParent.children, idx, id)
	e.parent = newParentID

	np, _ := t.PathOf(id)
	return np, nil
}

// SetAttrs sets and unsets attributes on the node at p and returns the
// previous values of all touched keys (absent keys map to "" in unset).
func (t *Tree) SetAttrs(p path.Path, set node.Attrs, unset []string) (prev node.Attrs, err error) {
	id, err := t.ID(p)
	if err != nil {
		return nil, err
	}
	e := t.nodes[id]
	prev = make(node.Attrs, len(set)+len(unset))
	if e.attrs == nil && (len(set) > 0) {
		e.attrs = make(node.Attrs, len(set))
	}
	for k, v := range set {
		prev[k] = e.attrs[k]
		e.attrs[k] = v
	}
	for _, k := range unset {
		if old, ok := e.attrs[k]; ok {
			prev[k] = old
			delete(e.attrs, k)
		}
	}
	return prev, nil
}

// Split moves the children of the node at p.Parent() starting at index
// p.Last() into a new element inserted right after that parent. The new
// element copies the parent's type and attributes, with props applied over
// them. It returns the new element's ID.
func (t *Tree) Split(p path.Path, props node.Attrs) (node.ID, error) {
	if p.Len() < 2 {
		return node.InvalidID, &PathError{Path: p.Clone(), Err: ErrRootPath}
	}
	parentPath := p.Parent()
	parentID, err := t.ID(parentPath)
	if err != nil {
		return node.InvalidID, err
	}
	parent := t.nodes[parentID]
	if parent.kind != node.KindElement {
		return node.InvalidID, &PathError{Path: p.Clone(), Depth: p.Len() - 1, Err: ErrNotElement}
	}
	pos := p.Last()
	if pos > len(parent.children) {
		return node.InvalidID, &PathError{Path: p.Clone(), Depth: p.Len() - 1, Err: ErrIndexOutOfRange}
	}

	attrs := parent.attrs.Clone()
	for k, v := range props {
		if attrs == nil {
			attrs = make(node.Attrs)
		}
		attrs[k] = v
	}

	grand := t.nodes[parent.parent]
	sibling := &entry{kind: node.KindElement, typ: parent.typ, attrs: attrs, parent: grand.id}
	sid := t.alloc(sibling)

	tail := slices.Clone(parent.children[pos:])
	parent.children = slices.Clip(parent.children[:pos])
	sibling.children = tail
	for _, c := range tail {
		t.nodes[c].parent = sid
	}
	grand.children = slices.Insert(grand.children, parentPath.Last()+1, sid)
	return sid, nil
}
