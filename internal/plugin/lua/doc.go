// Package lua hosts Lua scripts that edit a block document.
//
// The package wraps gopher-lua to provide:
//   - Sandboxed Lua state management
//   - The doc module, a script-side view of an engine.Engine
//   - Execution timeouts and a budget of host calls
//
// # State
//
//	state, err := lua.NewState(
//	    lua.WithExecutionTimeout(5 * time.Second),
//	    lua.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	state.AttachDocument(e)
//	if err := state.DoFile(ctx, "outline.lua"); err != nil {
//	    return err
//	}
//
// # Sandbox
//
// The Sandbox removes dofile, loadfile and load, leaves io, os and debug
// closed, routes print to the logger, and restricts require to string,
// table, math and the doc module.
//
// # The doc module
//
// Paths are strings in path.Path form ("0.2") or arrays of zero-based
// indexes ({0, 2}).
//
//	doc.tree()                 -- whole document as nested tables
//	doc.node(path)             -- subtree at path, or nil
//	doc.block_id(path)         -- blockId at path, or nil
//	doc.child_count(path)
//	doc.find(blockId)          -- path of the block, or nil
//	doc.revision()
//	doc.select(anchor, focus)  -- nil clears the selection
//	doc.lift(path)             -- nil lifts the selected blocks
//	doc.move(from, to)
//	doc.remove(path)
//	doc.set(path, key, value)  -- nil value unsets key
//	doc.batch(fn)              -- one transaction for every call in fn
//
// Mutations go through the engine's override chains, so with the blocks
// plugin installed a scripted move or lift re-identifies blocks exactly as
// a native one does. A failing call raises a Lua error; when it aborts the
// script, the returned *ScriptError unwraps to the engine error.
package lua
