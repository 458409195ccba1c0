package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// ModuleName is the name of the document module, both as a global and for
// require.
const ModuleName = "doc"

// Document exposes an engine to scripts as the doc module.
//
// Every mutating call outside doc.batch runs in its own transaction, so it
// goes through the same override chains as native callers. Inside doc.batch
// all calls share one transaction.
type Document struct {
	state *State
	e     *engine.Engine
	tx    *engine.Tx
}

// AttachDocument installs the doc module for e. A state holds at most one
// document; attaching again replaces it.
func (s *State) AttachDocument(e *engine.Engine) *Document {
	d := &Document{state: s, e: e}
	funcs := map[string]lua.LGFunction{
		"tree":        d.tree,
		"node":        d.node,
		"block_id":    d.blockID,
		"child_count": d.childCount,
		"find":        d.find,
		"revision":    d.revision,
		"select":      d.selectRange,
		"lift":        d.lift,
		"move":        d.move,
		"remove":      d.remove,
		"set":         d.set,
		"batch":       d.batch,
	}
	s.RegisterModule(ModuleName, funcs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sandbox.preloaded[ModuleName] {
		s.sandbox.Preload(ModuleName, func(L *lua.LState) int {
			L.Push(L.GetGlobal(ModuleName))
			return 1
		})
	}
	return d
}

func (d *Document) update(fn func(tx *engine.Tx) error) error {
	if d.tx != nil {
		return fn(d.tx)
	}
	return d.e.Update(fn)
}

func (d *Document) view(fn func(tx *engine.Tx) error) error {
	if d.tx != nil {
		return fn(d.tx)
	}
	return d.e.View(fn)
}

// begin charges the call and checks a document is attached.
func (d *Document) begin(L *lua.LState) {
	d.state.charge(L)
	if d.e == nil {
		d.state.raise(L, ErrNoDocument)
	}
}

func (d *Document) check(L *lua.LState, err error) {
	if err != nil {
		d.state.raise(L, err)
	}
}

// doc.tree() returns the whole document as nested tables.
func (d *Document) tree(L *lua.LState) int {
	d.begin(L)
	var snap *node.Node
	d.check(L, d.view(func(tx *engine.Tx) error {
		snap = tx.Snapshot()
		return nil
	}))
	L.Push(NodeToTable(L, snap))
	return 1
}

// doc.node(path) returns the subtree at path, or nil.
func (d *Document) node(L *lua.LState) int {
	d.begin(L)
	p := checkPath(L, 1)
	var n *node.Node
	_ = d.view(func(tx *engine.Tx) error {
		n, _ = tx.Node(p)
		return nil
	})
	if n == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(NodeToTable(L, n))
	return 1
}

// doc.block_id(path) returns the blockId at path, or nil.
func (d *Document) blockID(L *lua.LState) int {
	d.begin(L)
	p := checkPath(L, 1)
	var id string
	_ = d.view(func(tx *engine.Tx) error {
		if en, err := tx.Entry(p); err == nil {
			id, _ = en.Node.BlockID()
		}
		return nil
	})
	if id == "" {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(id))
	return 1
}

// doc.child_count(path) returns the number of children at path.
func (d *Document) childCount(L *lua.LState) int {
	d.begin(L)
	p := checkPath(L, 1)
	var count int
	d.check(L, d.view(func(tx *engine.Tx) (err error) {
		count, err = tx.ChildCount(p)
		return err
	}))
	L.Push(lua.LNumber(count))
	return 1
}

// doc.find(blockId) returns the path of the block, or nil.
func (d *Document) find(L *lua.LState) int {
	d.begin(L)
	id := L.CheckString(1)
	var found path.Path
	d.check(L, d.view(func(tx *engine.Tx) error {
		entries, err := tx.Nodes(engine.NodesOptions{
			At:    engine.AtPath(path.Root()),
			Match: engine.MatchBlockID(id),
			Voids: true,
		})
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			found = entries[0].Path
		}
		return nil
	}))
	L.Push(pathValue(found))
	return 1
}

// doc.revision() returns the engine revision.
func (d *Document) revision(L *lua.LState) int {
	d.begin(L)
	var rev engine.RevisionID
	_ = d.view(func(tx *engine.Tx) error {
		rev = tx.Revision()
		return nil
	})
	L.Push(lua.LNumber(rev))
	return 1
}

// doc.select(anchor [, focus]) sets the selection. doc.select(nil) clears
// it.
func (d *Document) selectRange(L *lua.LState) int {
	d.begin(L)
	var loc *engine.Location
	if L.Get(1) != lua.LNil {
		anchor := checkPath(L, 1)
		focus := anchor
		if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
			focus = checkPath(L, 2)
		}
		loc = engine.Span(anchor, focus)
	}
	if d.tx != nil {
		d.check(L, d.tx.SetSelection(loc))
	} else {
		d.e.SetSelection(loc)
	}
	return 0
}

// doc.lift([path]) lifts the node at path, or the blocks in the selection
// when path is nil.
func (d *Document) lift(L *lua.LState) int {
	d.begin(L)
	var opts engine.LiftOptions
	if L.Get(1) != lua.LNil {
		p := checkPath(L, 1)
		opts.At = engine.AtPath(p)
		opts.Match = engine.MatchPath(p)
	}
	d.check(L, d.update(func(tx *engine.Tx) error {
		return tx.LiftNodes(opts)
	}))
	return 0
}

// doc.move(from, to) moves the node at from so that it ends up at to.
func (d *Document) move(L *lua.LState) int {
	d.begin(L)
	from, to := checkPath(L, 1), checkPath(L, 2)
	d.check(L, d.update(func(tx *engine.Tx) error {
		return tx.MoveNodes(engine.MoveOptions{At: engine.AtPath(from), To: to})
	}))
	return 0
}

// doc.remove(path) removes the node at path.
func (d *Document) remove(L *lua.LState) int {
	d.begin(L)
	p := checkPath(L, 1)
	d.check(L, d.update(func(tx *engine.Tx) error {
		return tx.RemoveNodes(engine.RemoveOptions{At: engine.AtPath(p)})
	}))
	return 0
}

// doc.set(path, key, value) sets an attribute. A nil value unsets it.
func (d *Document) set(L *lua.LState) int {
	d.begin(L)
	p := checkPath(L, 1)
	key := L.CheckString(2)
	opts := engine.SetOptions{At: engine.AtPath(p)}
	var props node.Attrs
	if L.Get(3) == lua.LNil {
		opts.Unset = []string{key}
	} else {
		props = node.Attrs{key: L.CheckString(3)}
	}
	d.check(L, d.update(func(tx *engine.Tx) error {
		return tx.SetNodes(props, opts)
	}))
	return 0
}

// doc.batch(fn) runs fn with every doc call inside one transaction.
// Normalization runs once, after fn returns.
func (d *Document) batch(L *lua.LState) int {
	d.begin(L)
	fn := L.CheckFunction(1)
	if d.tx != nil {
		L.Push(fn)
		L.Call(0, 0)
		return 0
	}
	err := d.e.Update(func(tx *engine.Tx) error {
		d.tx = tx
		defer func() { d.tx = nil }()
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		if d.state.hostErr != nil {
			L.RaiseError("%s", err.Error())
		}
		d.state.raise(L, err)
	}
	return 0
}
