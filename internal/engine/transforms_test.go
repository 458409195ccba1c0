package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

func update(t *testing.T, e *Engine, fn func(tx *Tx) error) {
	t.Helper()
	if err := e.Update(fn); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

// ============================================================================
// Move
// ============================================================================

func TestMoveNodes(t *testing.T) {
	tests := []struct {
		name string
		opts MoveOptions
		root []string
		a    []string
		b    []string
	}{
		{
			name: "out to the root",
			opts: MoveOptions{At: AtPath(path.Of(0, 2)), To: path.Of(1)},
			root: []string{"a", "a2", "b"},
			a:    []string{"a1", "a3"},
		},
		{
			name: "into a later sibling",
			opts: MoveOptions{At: AtPath(path.Of(0)), To: path.Of(1, 1)},
			root: []string{"b"},
		},
		{
			name: "several nodes land together",
			opts: MoveOptions{At: Span(path.Of(0, 1, 0), path.Of(0, 2, 0)), Match: isBlock, To: path.Of(2)},
			root: []string{"a", "b", "a1", "a2"},
			a:    []string{"a3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSample(t)
			update(t, e, func(tx *Tx) error { return tx.MoveNodes(tt.opts) })

			doc := e.Snapshot()
			if diff := cmp.Diff(tt.root, blockIDs(doc)); diff != "" {
				t.Errorf("root blocks (-want +got):\n%s", diff)
			}
			if a := doc.Find("a"); tt.a != nil && a != nil {
				if diff := cmp.Diff(tt.a, blockIDs(a)); diff != "" {
					t.Errorf("children of a (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestMoveIntoLaterSiblingAdjustsPath(t *testing.T) {
	e := newSample(t)
	update(t, e, func(tx *Tx) error {
		return tx.MoveNodes(MoveOptions{At: AtPath(path.Of(0)), To: path.Of(1, 1)})
	})
	b := e.Snapshot().Children[0]
	if diff := cmp.Diff([]string{"a"}, blockIDs(b)); diff != "" {
		t.Errorf("children of b (-want +got):\n%s", diff)
	}
	last := e.LatestChanges(1)[0]
	if last.Type != ChangeMove || !last.NewPath.Equal(path.Of(0, 1)) {
		t.Errorf("recorded change = %v, want move to 0.1", last)
	}
}

func TestMoveSeveralIntoLaterSibling(t *testing.T) {
	doc := node.NewElement("", nil,
		node.Block("p", "x", "tx", "X"),
		node.Block("p", "y", "ty", "Y"),
		node.Block("p", "z", "tz", "Z"),
	)
	e, err := NewFromNode(doc)
	if err != nil {
		t.Fatalf("NewFromNode() error = %v", err)
	}
	update(t, e, func(tx *Tx) error {
		return tx.MoveNodes(MoveOptions{At: Span(path.Of(0), path.Of(1)), Match: isBlock, To: path.Of(2, 1)})
	})

	got := e.Snapshot()
	if diff := cmp.Diff([]string{"z"}, blockIDs(got)); diff != "" {
		t.Errorf("root blocks (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y"}, blockIDs(got.Children[0])); diff != "" {
		t.Errorf("children of z (-want +got):\n%s", diff)
	}
}

func TestMoveNodesErrors(t *testing.T) {
	e := newSample(t)
	err := e.Update(func(tx *Tx) error {
		if err := tx.MoveNodes(MoveOptions{At: AtPath(path.Of(0))}); !errors.Is(err, ErrNoDestination) {
			t.Errorf("missing destination error = %v", err)
		}

		err := tx.MoveNodes(MoveOptions{At: AtPath(path.Of(0)), To: path.Of(0, 2)})
		var pe *PathError
		if !errors.As(err, &pe) || pe.Op != "move_node" || !errors.Is(err, ErrMoveIntoSelf) {
			t.Errorf("move into self error = %v", err)
		}

		if err := tx.MoveNodes(MoveOptions{At: AtPath(path.Of(4)), To: path.Of(0)}); !errors.Is(err, ErrNoNode) {
			t.Errorf("move missing node error = %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if e.Revision() != 0 {
		t.Errorf("failed moves should apply nothing, revision = %d", e.Revision())
	}
}

func TestMoveWithoutSelectionIsNoop(t *testing.T) {
	e := newSample(t)
	update(t, e, func(tx *Tx) error {
		return tx.MoveNodes(MoveOptions{To: path.Of(0)})
	})
	if e.ChangeCount() != 0 {
		t.Errorf("ChangeCount() = %d, want 0", e.ChangeCount())
	}
}

// ============================================================================
// Remove, set, insert, split
// ============================================================================

func TestRemoveNodesSkipsRemovedDescendants(t *testing.T) {
	e := newSample(t)
	update(t, e, func(tx *Tx) error {
		return tx.RemoveNodes(RemoveOptions{At: Collapsed(path.Of(0, 1, 0)), Match: isBlock, Mode: ModeAll})
	})
	if diff := cmp.Diff([]string{"b"}, blockIDs(e.Snapshot())); diff != "" {
		t.Errorf("root blocks (-want +got):\n%s", diff)
	}
	if e.ChangeCount() != 1 {
		t.Errorf("ChangeCount() = %d, want 1", e.ChangeCount())
	}
}

func TestSetNodes(t *testing.T) {
	e := newSample(t)
	update(t, e, func(tx *Tx) error {
		return tx.SetNodes(node.Attrs{"color": "red"}, SetOptions{At: AtPath(path.Of(1))})
	})
	if got := e.Snapshot().Children[1].Attrs["color"]; got != "red" {
		t.Errorf("color = %q, want red", got)
	}

	count := e.ChangeCount()
	update(t, e, func(tx *Tx) error {
		return tx.SetNodes(node.Attrs{"color": "red"}, SetOptions{At: AtPath(path.Of(1))})
	})
	if e.ChangeCount() != count {
		t.Error("setting identical attributes should not record an operation")
	}

	update(t, e, func(tx *Tx) error {
		return tx.SetNodes(nil, SetOptions{At: AtPath(path.Of(1)), Unset: []string{"color"}})
	})
	if _, ok := e.Snapshot().Children[1].Attrs["color"]; ok {
		t.Error("Unset should remove the attribute")
	}
	last := e.LatestChanges(1)[0]
	if last.Type != ChangeSet || last.Properties["color"] != "red" {
		t.Errorf("last change = %+v", last)
	}
}

func TestInsertNodes(t *testing.T) {
	e := newSample(t)
	update(t, e, func(tx *Tx) error {
		if err := tx.InsertNodes(node.Block("p", "c", "tc", "C"), InsertOptions{}); err != nil {
			return err
		}
		return tx.InsertNodes(node.Block("p", "z", "tz", "Z"), InsertOptions{At: path.Of(0)})
	})
	if diff := cmp.Diff([]string{"z", "a", "b", "c"}, blockIDs(e.Snapshot())); diff != "" {
		t.Errorf("root blocks (-want +got):\n%s", diff)
	}

	err := e.Update(func(tx *Tx) error {
		return tx.InsertNodes(node.NewText("x", nil), InsertOptions{At: path.Of(9)})
	})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("insert past end error = %v", err)
	}
}

func TestSplitNodes(t *testing.T) {
	e := newSample(t)
	update(t, e, func(tx *Tx) error {
		return tx.SplitNodes(SplitOptions{At: path.Of(0, 2), Props: node.Attrs{"split": "1"}})
	})
	doc := e.Snapshot()
	if diff := cmp.Diff([]string{"a", "a", "b"}, blockIDs(doc)); diff != "" {
		t.Errorf("root blocks (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a2", "a3"}, blockIDs(doc.Children[1])); diff != "" {
		t.Errorf("split-off children (-want +got):\n%s", diff)
	}
	if doc.Children[1].Attrs["split"] != "1" {
		t.Errorf("split props not applied: %v", doc.Children[1].Attrs)
	}
}

// ============================================================================
// Native lift
// ============================================================================

func TestNativeLift(t *testing.T) {
	tests := []struct {
		name string
		at   path.Path
		root []string
	}{
		{name: "middle child splits the parent", at: path.Of(0, 2), root: []string{"a", "a2", "a", "b"}},
		{name: "last child", at: path.Of(0, 3), root: []string{"a", "a3", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSample(t)
			update(t, e, func(tx *Tx) error {
				return tx.LiftNodes(LiftOptions{At: AtPath(tt.at)})
			})
			if diff := cmp.Diff(tt.root, blockIDs(e.Snapshot())); diff != "" {
				t.Errorf("root blocks (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNativeLiftOnlyChild(t *testing.T) {
	doc := node.NewElement("", nil,
		node.NewElement("column", nil, node.Block("p", "x", "tx", "X")),
		node.Block("p", "y", "ty", "Y"),
	)
	e, err := NewFromNode(doc)
	if err != nil {
		t.Fatalf("NewFromNode() error = %v", err)
	}
	update(t, e, func(tx *Tx) error {
		return tx.LiftNodes(LiftOptions{At: AtPath(path.Of(0, 0))})
	})
	if diff := cmp.Diff([]string{"x", "y"}, blockIDs(e.Snapshot())); diff != "" {
		t.Errorf("root blocks (-want +got):\n%s", diff)
	}
}

func TestNativeLiftTooShallow(t *testing.T) {
	e := newSample(t)
	err := e.Update(func(tx *Tx) error {
		return tx.LiftNodes(LiftOptions{At: AtPath(path.Of(1))})
	})
	if !errors.Is(err, ErrCannotLift) {
		t.Errorf("LiftNodes() error = %v, want ErrCannotLift", err)
	}
	if diff := cmp.Diff(sampleDoc(), e.Snapshot()); diff != "" {
		t.Errorf("document changed (-want +got):\n%s", diff)
	}
}

// ============================================================================
// Hooks
// ============================================================================

type recordingHook struct {
	name     string
	priority int
	calls    *[]string
}

func (h recordingHook) Name() string  { return h.name }
func (h recordingHook) Priority() int { return h.priority }

func (h recordingHook) WrapMoveNodes(next MoveNodesFunc) MoveNodesFunc {
	return func(tx *Tx, opts MoveOptions) error {
		*h.calls = append(*h.calls, h.name+":move")
		return next(tx, opts)
	}
}

type notAHook struct{}

func (notAHook) Name() string  { return "nothing" }
func (notAHook) Priority() int { return 0 }

func TestMoveHookChain(t *testing.T) {
	e := newSample(t)
	var calls []string
	if err := e.RegisterHook(recordingHook{name: "inner", priority: 1, calls: &calls}); err != nil {
		t.Fatalf("RegisterHook() error = %v", err)
	}
	if err := e.RegisterHook(recordingHook{name: "outer", priority: 10, calls: &calls}); err != nil {
		t.Fatalf("RegisterHook() error = %v", err)
	}
	if err := e.RegisterHook(notAHook{}); !errors.Is(err, ErrUnsupportedHook) {
		t.Errorf("RegisterHook(notAHook) error = %v", err)
	}
	if diff := cmp.Diff([]string{"outer", "inner"}, e.MoveHookNames()); diff != "" {
		t.Errorf("MoveHookNames() (-want +got):\n%s", diff)
	}
	if len(e.LiftHookNames()) != 0 {
		t.Errorf("LiftHookNames() = %v, want none", e.LiftHookNames())
	}

	// Native lift moves through the chain too.
	update(t, e, func(tx *Tx) error {
		return tx.LiftNodes(LiftOptions{At: AtPath(path.Of(0, 3))})
	})
	if diff := cmp.Diff([]string{"outer:move", "inner:move"}, calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}

	if !e.UnregisterHook("outer") || e.UnregisterHook("outer") {
		t.Error("UnregisterHook should report presence once")
	}
}

func TestAuditHook(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := newSample(t)
	if err := e.RegisterHook(NewAuditHook(zap.New(core))); err != nil {
		t.Fatalf("RegisterHook() error = %v", err)
	}

	update(t, e, func(tx *Tx) error {
		return tx.MoveNodes(MoveOptions{At: AtPath(path.Of(1)), To: path.Of(0)})
	})
	entries := logs.FilterMessage("move_nodes").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 move_nodes entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["ops"]; got != int64(1) {
		t.Errorf("ops field = %v, want 1", got)
	}

	_ = e.Update(func(tx *Tx) error {
		return tx.LiftNodes(LiftOptions{At: AtPath(path.Of(0))})
	})
	if n := logs.FilterMessage("lift_nodes failed").Len(); n != 1 {
		t.Errorf("expected 1 lift_nodes failed entry, got %d", n)
	}
}
