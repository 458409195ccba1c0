package lua

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/plugin/blocks"
)

// sampleDoc builds:
//
//	root
//	├── P [tp, A, B, C [tc, C1], D]
//	└── Q [tq]
func sampleDoc() *node.Node {
	return node.NewElement("", nil,
		node.Block("list", "p", "tp", "P",
			node.Block("item", "a", "ta", "A"),
			node.Block("item", "b", "tb", "B"),
			node.Block("item", "c", "tc", "C",
				node.Block("item", "c1", "tc1", "C1"),
			),
			node.Block("item", "d", "td", "D"),
		),
		node.Block("list", "q", "tq", "Q"),
	)
}

func newState(t *testing.T, opts ...StateOption) *State {
	t.Helper()
	state, err := NewState(opts...)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	t.Cleanup(func() { state.Close() })
	return state
}

// newDocState returns a state attached to an engine running the blocks
// plugin with sequential identifiers.
func newDocState(t *testing.T, opts ...StateOption) (*State, *engine.Engine) {
	t.Helper()
	e, err := engine.NewFromNode(sampleDoc())
	if err != nil {
		t.Fatalf("NewFromNode() error = %v", err)
	}
	n := 0
	gen := blocks.GeneratorFunc(func() string {
		n++
		return fmt.Sprintf("n%d", n)
	})
	if err := blocks.New(blocks.WithGenerator(gen)).Install(e); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	state := newState(t, opts...)
	state.AttachDocument(e)
	return state, e
}

func run(t *testing.T, state *State, code string) {
	t.Helper()
	if err := state.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
}

// ============================================================================
// State and sandbox
// ============================================================================

func TestStateDoString(t *testing.T) {
	state := newState(t)
	run(t, state, `x = 1 + 1; name = "block"; ratio = 0.5`)

	if got := state.GetGlobal("x"); got != int64(2) {
		t.Errorf("x = %#v, want 2", got)
	}
	if got := state.GetGlobal("name"); got != "block" {
		t.Errorf("name = %#v", got)
	}
	if got := state.GetGlobal("ratio"); got != 0.5 {
		t.Errorf("ratio = %#v", got)
	}
	if got := state.GetGlobal("missing"); got != nil {
		t.Errorf("missing = %#v, want nil", got)
	}
}

func TestStateSyntaxError(t *testing.T) {
	state := newState(t)

	err := state.DoString(context.Background(), `invalid lua code !!!`)
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *ScriptError", err)
	}
	if se.Chunk != "chunk" {
		t.Errorf("Chunk = %q", se.Chunk)
	}
}

func TestStateClosed(t *testing.T) {
	state := newState(t)
	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !state.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := state.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() after Close error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	state := newState(t)
	run(t, state, `
		has_dofile = dofile ~= nil
		has_load = load ~= nil
		has_io = io ~= nil
		has_os = os ~= nil
	`)
	for _, name := range []string{"has_dofile", "has_load", "has_io", "has_os"} {
		if got := state.GetGlobal(name); got != false {
			t.Errorf("%s = %v, want false", name, got)
		}
	}
}

func TestSandboxRequire(t *testing.T) {
	state := newState(t)
	run(t, state, `local s = require("string"); up = s.upper("x")`)
	if got := state.GetGlobal("up"); got != "X" {
		t.Errorf("up = %v", got)
	}

	for _, mod := range []string{"os", "io", "debug", "socket"} {
		if err := state.DoString(context.Background(), fmt.Sprintf(`require(%q)`, mod)); err == nil {
			t.Errorf("require(%q) should fail", mod)
		}
	}
}

func TestPrintGoesToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	state := newState(t, WithLogger(zap.New(core)))

	run(t, state, `print("hello", 42)`)

	entries := logs.FilterMessage("lua print").All()
	if len(entries) != 1 {
		t.Fatalf("got %d print entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["output"]; got != "hello\t42" {
		t.Errorf("output = %q", got)
	}
}

func TestExecutionTimeout(t *testing.T) {
	state := newState(t, WithExecutionTimeout(50*time.Millisecond))

	start := time.Now()
	err := state.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("error = %v, want ErrExecutionTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}

	// The state stays usable after a timeout.
	run(t, state, `y = 3`)
	if got := state.GetGlobal("y"); got != int64(3) {
		t.Errorf("y = %v", got)
	}
}

func TestInstructionLimit(t *testing.T) {
	state, _ := newDocState(t, WithInstructionLimit(3))

	run(t, state, `for i = 1, 3 do doc.revision() end`)

	err := state.DoString(context.Background(), `for i = 1, 10 do doc.revision() end`)
	if !errors.Is(err, ErrInstructionLimit) {
		t.Fatalf("error = %v, want ErrInstructionLimit", err)
	}
	if got := state.Sandbox().InstructionCount(); got != 4 {
		t.Errorf("InstructionCount() = %d, want 4", got)
	}
}

func TestToGoValue(t *testing.T) {
	state := newState(t)
	run(t, state, `
		list = {1, "two", true}
		record = {name = "p", depth = 2, nested = {1.5}}
	`)

	if diff := cmp.Diff([]any{int64(1), "two", true}, state.GetGlobal("list")); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"name": "p", "depth": int64(2), "nested": []any{1.5}}
	if diff := cmp.Diff(want, state.GetGlobal("record")); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

// ============================================================================
// Document module
// ============================================================================

func TestDocQueries(t *testing.T) {
	state, _ := newDocState(t)
	run(t, state, `
		local d = require("doc")
		t = d.tree()
		roots = #t.children
		first = t.children[1].attrs.blockId
		head = t.children[1].children[1].text
		a = d.block_id({0, 1})
		text = d.block_id("0.0")
		count = d.child_count("0")
		where = d.find("c1")
		nowhere = d.find("zzz")
		sub = d.node("0.3").children[2].attrs.blockId
		gone = d.node("9")
	`)

	want := map[string]any{
		"roots":   int64(2),
		"first":   "p",
		"head":    "P",
		"a":       "a",
		"text":    nil,
		"count":   int64(5),
		"where":   "0.3.1",
		"nowhere": nil,
		"sub":     "c1",
		"gone":    nil,
	}
	for name, w := range want {
		if got := state.GetGlobal(name); got != w {
			t.Errorf("%s = %#v, want %#v", name, got, w)
		}
	}
}

func TestDocLiftUsesOverride(t *testing.T) {
	state, e := newDocState(t)
	run(t, state, `doc.lift("0.3")`)

	got := e.Snapshot()
	if diff := cmp.Diff([]string{"P", "A", "B"}, got.Children[0].Texts()); diff != "" {
		t.Errorf("parent texts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"C", "C1", "D"}, got.Children[1].Texts()); diff != "" {
		t.Errorf("lifted texts (-want +got):\n%s", diff)
	}
	if got.Find("c") != nil || got.Find("d") != nil {
		t.Error("lifted and relocated blocks should have fresh identifiers")
	}
}

func TestDocLiftFromSelection(t *testing.T) {
	state, e := newDocState(t)
	run(t, state, `doc.select("0.4.0"); doc.lift()`)

	if diff := cmp.Diff([]string{"P", "D", "Q"}, e.Snapshot().Texts()); diff != "" {
		t.Errorf("root texts (-want +got):\n%s", diff)
	}
}

func TestDocLiftError(t *testing.T) {
	state, e := newDocState(t)

	err := state.DoString(context.Background(), `doc.lift("1")`)
	if !errors.Is(err, blocks.ErrCannotLift) {
		t.Fatalf("error = %v, want ErrCannotLift", err)
	}
	var le *blocks.LiftError
	if !errors.As(err, &le) || le.Path.String() != "1" {
		t.Errorf("LiftError = %+v", le)
	}
	if e.ChangeCount() != 0 {
		t.Errorf("ChangeCount() = %d, want 0", e.ChangeCount())
	}

	run(t, state, `ok, msg = pcall(doc.lift, "1")`)
	if got := state.GetGlobal("ok"); got != false {
		t.Errorf("pcall ok = %v, want false", got)
	}
}

func TestDocMoveAndSet(t *testing.T) {
	state, e := newDocState(t)
	run(t, state, `
		doc.move("0.3", "2")
		moved = doc.block_id("2")
		old = doc.find("c")
		doc.set("1", "color", "red")
	`)

	if got := state.GetGlobal("moved"); got == "c" || got == nil {
		t.Errorf("moved block id = %v, want a fresh id", got)
	}
	if got := state.GetGlobal("old"); got != nil {
		t.Errorf("find(c) = %v, want nil", got)
	}
	if got := e.Snapshot().Children[1].Attrs["color"]; got != "red" {
		t.Errorf("color = %q", got)
	}

	run(t, state, `doc.set("1", "color", nil); doc.remove("2")`)
	got := e.Snapshot()
	if _, ok := got.Children[1].Attrs["color"]; ok {
		t.Error("color should be unset")
	}
	if len(got.Children) != 2 {
		t.Errorf("root has %d children after remove, want 2", len(got.Children))
	}
}

func TestDocBatch(t *testing.T) {
	state, e := newDocState(t)
	run(t, state, `
		doc.batch(function()
			doc.move("0.1", "2")
			doc.move("0.1", "3")
			inside = doc.revision()
		end)
		after = doc.revision()
	`)

	if got := state.GetGlobal("inside"); got != int64(0) {
		t.Errorf("revision inside batch = %v, want 0", got)
	}
	if got := state.GetGlobal("after"); got != int64(1) {
		t.Errorf("revision after batch = %v, want 1", got)
	}
	if diff := cmp.Diff([]string{"P", "Q", "A", "B"}, e.Snapshot().Texts()); diff != "" {
		t.Errorf("root texts (-want +got):\n%s", diff)
	}
}

func TestDocBatchError(t *testing.T) {
	state, e := newDocState(t)

	err := state.DoString(context.Background(), `
		doc.batch(function()
			doc.move("0.1", "2")
			doc.lift("1")
		end)
	`)
	if !errors.Is(err, blocks.ErrCannotLift) {
		t.Fatalf("error = %v, want ErrCannotLift", err)
	}
	// Operations applied before the failure stay applied.
	if diff := cmp.Diff([]string{"P", "Q", "A"}, e.Snapshot().Texts()); diff != "" {
		t.Errorf("root texts (-want +got):\n%s", diff)
	}
}

func TestNoDocument(t *testing.T) {
	state := newState(t)
	state.AttachDocument(nil)

	if err := state.DoString(context.Background(), `doc.revision()`); !errors.Is(err, ErrNoDocument) {
		t.Errorf("error = %v, want ErrNoDocument", err)
	}
}
