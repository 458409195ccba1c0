package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// sampleDoc builds:
//
//	root
//	├── a [ta, a1, a2, a3]
//	└── b [tb]
func sampleDoc() *node.Node {
	return node.NewElement("", nil,
		node.Block("p", "a", "ta", "A",
			node.Block("p", "a1", "ta1", "A1"),
			node.Block("p", "a2", "ta2", "A2"),
			node.Block("p", "a3", "ta3", "A3"),
		),
		node.Block("p", "b", "tb", "B"),
	)
}

func newSample(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewFromNode(sampleDoc(), opts...)
	if err != nil {
		t.Fatalf("NewFromNode() error = %v", err)
	}
	return e
}

// blockIDs lists the block identifiers of n's element children.
func blockIDs(n *node.Node) []string {
	var ids []string
	for _, c := range n.Children {
		if id, ok := c.BlockID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func isBlock(n *node.Node, _ path.Path) bool {
	_, ok := n.BlockID()
	return ok
}

// ============================================================================
// Construction and transactions
// ============================================================================

func TestNewFromNode(t *testing.T) {
	e := newSample(t)
	if diff := cmp.Diff(sampleDoc(), e.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if e.Revision() != 0 {
		t.Errorf("Revision() = %d, want 0", e.Revision())
	}

	if _, err := NewFromNode(node.NewText("x", nil)); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("NewFromNode(text) error = %v, want ErrInvalidNode", err)
	}
}

func TestNewIgnoresInvalidDocument(t *testing.T) {
	e := New(WithDocument(node.NewText("x", nil)))
	if e.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", e.NodeCount())
	}
}

func TestViewRejectsMutations(t *testing.T) {
	e := newSample(t)
	err := e.View(func(tx *Tx) error {
		if tx.Writable() {
			t.Error("view transaction should not be writable")
		}
		if err := tx.MoveNodes(MoveOptions{At: AtPath(path.Of(1)), To: path.Of(0)}); !errors.Is(err, ErrReadOnly) {
			t.Errorf("MoveNodes() error = %v, want ErrReadOnly", err)
		}
		if err := tx.LiftNodes(LiftOptions{At: AtPath(path.Of(0, 1))}); !errors.Is(err, ErrReadOnly) {
			t.Errorf("LiftNodes() error = %v, want ErrReadOnly", err)
		}
		if err := tx.SetSelection(nil); !errors.Is(err, ErrReadOnly) {
			t.Errorf("SetSelection() error = %v, want ErrReadOnly", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if diff := cmp.Diff(sampleDoc(), e.Snapshot()); diff != "" {
		t.Errorf("view changed the document (-want +got):\n%s", diff)
	}
}

func TestReadOnlyEngine(t *testing.T) {
	e := newSample(t, WithReadOnly())
	if !e.IsReadOnly() {
		t.Error("IsReadOnly() should be true")
	}
	err := e.Update(func(tx *Tx) error { return nil })
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("Update() error = %v, want ErrReadOnly", err)
	}
}

func TestUpdateKeepsOpsBeforeError(t *testing.T) {
	e := newSample(t)
	boom := errors.New("boom")
	err := e.Update(func(tx *Tx) error {
		if err := tx.MoveNodes(MoveOptions{At: AtPath(path.Of(1)), To: path.Of(0)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v", err)
	}
	if got := blockIDs(e.Snapshot()); !cmp.Equal(got, []string{"b", "a"}) {
		t.Errorf("root blocks = %v, want [b a]", got)
	}
	if e.Revision() != 1 {
		t.Errorf("Revision() = %d, want 1", e.Revision())
	}
}

func TestSelection(t *testing.T) {
	e := newSample(t, WithSelection(Collapsed(path.Of(1, 0))))
	sel := e.Selection()
	if sel == nil || !sel.Anchor.Equal(path.Of(1, 0)) {
		t.Fatalf("Selection() = %v", sel)
	}
	sel.Anchor[0] = 9
	if e.Selection().Anchor[0] != 1 {
		t.Error("Selection() should return a copy")
	}
	e.SetSelection(nil)
	if e.Selection() != nil {
		t.Error("SetSelection(nil) should clear the selection")
	}
}

// ============================================================================
// Traversal
// ============================================================================

func entryPaths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, en := range entries {
		out[i] = en.Path.String()
	}
	return out
}

func TestNodesModes(t *testing.T) {
	e := newSample(t)
	inA2 := Collapsed(path.Of(0, 2, 0))

	tests := []struct {
		name  string
		opts  NodesOptions
		paths []string
	}{
		{"everything on the way down", NodesOptions{At: inA2}, []string{"/", "0", "0.2", "0.2.0"}},
		{"all blocks", NodesOptions{At: inA2, Match: isBlock, Mode: ModeAll}, []string{"0", "0.2"}},
		{"highest block", NodesOptions{At: inA2, Match: isBlock, Mode: ModeHighest}, []string{"0"}},
		{"lowest block", NodesOptions{At: inA2, Match: isBlock, Mode: ModeLowest}, []string{"0.2"}},
		{
			"span lowest",
			NodesOptions{At: Span(path.Of(0, 1, 0), path.Of(0, 2, 0)), Match: isBlock, Mode: ModeLowest},
			[]string{"0.1", "0.2"},
		},
		{
			"span backwards",
			NodesOptions{At: Span(path.Of(1, 0), path.Of(0, 3, 0)), Match: isBlock, Mode: ModeLowest},
			[]string{"0.3", "1"},
		},
		{"exact path", NodesOptions{At: AtPath(path.Of(0, 2)), Match: MatchPath(path.Of(0, 2))}, []string{"0.2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = e.View(func(tx *Tx) error {
				got, err := tx.Nodes(tt.opts)
				if err != nil {
					t.Fatalf("Nodes() error = %v", err)
				}
				if diff := cmp.Diff(tt.paths, entryPaths(got)); diff != "" {
					t.Errorf("paths mismatch (-want +got):\n%s", diff)
				}
				return nil
			})
		})
	}
}

func TestNodesEdgeCases(t *testing.T) {
	e := newSample(t)
	_ = e.View(func(tx *Tx) error {
		got, err := tx.Nodes(NodesOptions{})
		if err != nil || got != nil {
			t.Errorf("Nodes() without location = %v, %v; want nil, nil", got, err)
		}
		if _, err := tx.Nodes(NodesOptions{At: AtPath(path.Of(5))}); !errors.Is(err, ErrNoNode) {
			t.Errorf("Nodes() at missing path error = %v, want ErrNoNode", err)
		}
		return nil
	})
}

func TestNodesSkipsVoidContents(t *testing.T) {
	doc := node.NewElement("", nil,
		node.NewElement("divider", node.Attrs{node.AttrBlockID: "d"}, node.NewText("", nil)),
	)
	e, err := NewFromNode(doc)
	if err != nil {
		t.Fatalf("NewFromNode() error = %v", err)
	}
	at := Span(path.Of(0), path.Of(0, 0))
	_ = e.View(func(tx *Tx) error {
		got, _ := tx.Nodes(NodesOptions{At: at})
		if diff := cmp.Diff([]string{"/", "0"}, entryPaths(got)); diff != "" {
			t.Errorf("without voids (-want +got):\n%s", diff)
		}
		got, _ = tx.Nodes(NodesOptions{At: at, Voids: true})
		if diff := cmp.Diff([]string{"/", "0", "0.0"}, entryPaths(got)); diff != "" {
			t.Errorf("with voids (-want +got):\n%s", diff)
		}
		return nil
	})
}

func TestElementKinds(t *testing.T) {
	e := New(WithVoidTypes("embed"), WithInlineTypes("chip"))
	if !e.IsVoid(node.NewElement("embed", nil)) || e.IsVoid(node.NewElement("image", nil)) {
		t.Error("WithVoidTypes should replace the defaults")
	}
	if !e.IsInline(node.NewElement("chip", nil)) || e.IsBlock(node.NewElement("chip", nil)) {
		t.Error("inline elements are not blocks")
	}
	if e.IsBlock(node.NewText("x", nil)) {
		t.Error("text leaves are not blocks")
	}
}

// ============================================================================
// Path references
// ============================================================================

func TestPathRefFollowsNode(t *testing.T) {
	e := newSample(t)
	err := e.Update(func(tx *Tx) error {
		ref, err := tx.PathRef(path.Of(1))
		if err != nil {
			return err
		}
		if err := tx.MoveNodes(MoveOptions{At: AtPath(path.Of(0, 3)), To: path.Of(0)}); err != nil {
			return err
		}
		if got := ref.Current(); !got.Equal(path.Of(2)) {
			t.Errorf("Current() after sibling move = %v, want 2", got)
		}
		if err := tx.RemoveNodes(RemoveOptions{At: AtPath(path.Of(2))}); err != nil {
			return err
		}
		if got := ref.Unref(); got != nil {
			t.Errorf("Unref() after removal = %v, want nil", got)
		}
		if !ref.Released() {
			t.Error("Released() should be true after Unref")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestPathRefReleased(t *testing.T) {
	e := newSample(t)
	_ = e.View(func(tx *Tx) error {
		ref, err := tx.PathRef(path.Of(0, 1))
		if err != nil {
			t.Fatalf("PathRef() error = %v", err)
		}
		if got := ref.Unref(); !got.Equal(path.Of(0, 1)) {
			t.Errorf("Unref() = %v", got)
		}
		if ref.Current() != nil {
			t.Error("Current() after Unref should be nil")
		}
		if _, err := tx.PathRef(path.Of(9)); !errors.Is(err, ErrNoNode) {
			t.Errorf("PathRef(missing) error = %v", err)
		}
		return nil
	})
}

// ============================================================================
// Normalization
// ============================================================================

func TestNormalizationDeferredUntilBatchEnds(t *testing.T) {
	e := newSample(t)
	err := e.Update(func(tx *Tx) error {
		if tx.IsNormalizing() {
			t.Error("Update should run as a batch")
		}
		if err := tx.RemoveNodes(RemoveOptions{At: AtPath(path.Of(1, 0))}); err != nil {
			return err
		}
		return tx.WithoutNormalizing(func() error {
			if n, _ := tx.ChildCount(path.Of(1)); n != 0 {
				t.Errorf("ChildCount() inside batch = %d, want 0", n)
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	b := e.Snapshot().Children[1]
	want := []*node.Node{node.NewText("", nil)}
	if diff := cmp.Diff(want, b.Children); diff != "" {
		t.Errorf("normalized children (-want +got):\n%s", diff)
	}
	changes := e.ChangesSince(0)
	if last := changes[len(changes)-1]; last.Type != ChangeInsert || !last.Path.Equal(path.Of(1, 0)) {
		t.Errorf("last change = %v, want insert 1.0", last)
	}
}

// ============================================================================
// Tracking
// ============================================================================

func TestChangesAndSnapshots(t *testing.T) {
	e := newSample(t)
	e.CreateSnapshot("start")

	for i := 0; i < 2; i++ {
		err := e.Update(func(tx *Tx) error {
			return tx.MoveNodes(MoveOptions{At: AtPath(path.Of(1)), To: path.Of(0)})
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}
	if e.Revision() != 2 {
		t.Errorf("Revision() = %d, want 2", e.Revision())
	}
	if n := len(e.ChangesSince(1)); n != 1 {
		t.Errorf("ChangesSince(1) len = %d, want 1", n)
	}
	if e.ChangeCount() != 2 || len(e.LatestChanges(5)) != 2 {
		t.Errorf("ChangeCount() = %d", e.ChangeCount())
	}
	if got := e.ChangesGroupedSince(0).Summary(); got != "2 changes: 2 move" {
		t.Errorf("ChangesGroupedSince(0).Summary() = %q", got)
	}
	if got := e.ChangesGroupedSince(2).Summary(); got != "no changes" {
		t.Errorf("ChangesGroupedSince(2).Summary() = %q", got)
	}

	// Empty transactions do not advance the revision.
	_ = e.Update(func(tx *Tx) error { return nil })
	if e.Revision() != 2 {
		t.Errorf("Revision() after empty update = %d, want 2", e.Revision())
	}

	delta, err := e.DiffSinceSnapshot("start")
	if err != nil {
		t.Fatalf("DiffSinceSnapshot() error = %v", err)
	}
	if delta.HasChanges() {
		t.Errorf("native moves keep identifiers, got delta %+v", delta)
	}
	if _, err := e.DiffSinceSnapshot("missing"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("missing snapshot error = %v", err)
	}
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentReadWrite(t *testing.T) {
	e := newSample(t)
	want := len(sampleDoc().BlockIDs())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = e.Update(func(tx *Tx) error {
					return tx.MoveNodes(MoveOptions{At: AtPath(path.Of(1)), To: path.Of(0)})
				})
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := len(e.Snapshot().BlockIDs()); got != want {
					t.Errorf("reader saw %d blocks, want %d", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()

	if e.Revision() != 100 {
		t.Errorf("Revision() = %d, want 100", e.Revision())
	}
}
