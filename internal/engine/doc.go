// Package engine provides the block document engine for Blockstorm.
//
// The engine package serves as the main facade over a tree of blocks. It
// combines the node arena, selection, operation tracking and pluggable
// transform overrides into a unified, thread-safe API.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - node: tagged node values (text leaf or element) and identifier attributes
//   - path: positional addresses and path algebra
//   - tree: arena of nodes keyed by stable IDs, with primitive operations
//   - tracking: operation log, named snapshots and identity deltas
//   - hook: named, prioritized hook registry
//
// # Transactions
//
// All reads and writes go through a transaction. Update holds the write
// lock for the whole callback; View holds the read lock and rejects
// mutations with ErrReadOnly:
//
//	e, _ := engine.NewFromNode(doc)
//
//	err := e.Update(func(tx *engine.Tx) error {
//	    return tx.MoveNodes(engine.MoveOptions{
//	        At: engine.AtPath(path.Of(0, 2)),
//	        To: path.Of(1),
//	    })
//	})
//
//	e.View(func(tx *engine.Tx) error {
//	    n, err := tx.Node(path.Of(1))
//	    ...
//	})
//
// Because a transaction runs to completion under the write lock, a reader
// calling Snapshot or View sees the document either before or after it,
// never in between.
//
// # Locations and Matching
//
// Transforms select nodes with a Location, a MatchFunc and a Mode. AtPath
// addresses one node exactly; Collapsed and Span behave like a selection
// and also cover the ancestors of their start. When At is nil the current
// selection is used, and with no selection the transform does nothing.
//
//	tx.Nodes(engine.NodesOptions{
//	    At:    engine.Collapsed(path.Of(0, 1, 0)),
//	    Match: engine.MatchType("paragraph"),
//	    Mode:  engine.ModeLowest,
//	})
//
// # Path References
//
// Paths go stale as soon as a sibling or ancestor moves. A PathRef holds the
// node's stable ID and resolves its live path on demand; Unref returns nil
// once the node has been removed.
//
// # Batching and Normalization
//
// WithoutNormalizing defers normalization until the outermost batch
// returns. Update is itself a batch. Normalization gives every element that
// was left without children an empty text leaf.
//
// # Overrides
//
// MoveNodes and LiftNodes run through override chains. A MoveHook or
// LiftHook wraps the next implementation and is registered with
// RegisterHook; the highest priority hook is outermost:
//
//	e.RegisterHook(engine.NewAuditHook(logger))
//
// # Change Tracking
//
// Every applied operation is recorded with the revision of its
// transaction:
//
//	rev := e.Revision()
//	// ... updates ...
//	for _, c := range e.ChangesSince(rev) {
//	    fmt.Println(c)
//	}
//
// Named snapshots report which identifiers appeared or disappeared:
//
//	e.CreateSnapshot("before")
//	// ... updates ...
//	delta, _ := e.DiffSinceSnapshot("before")
//
// # Error Handling
//
// The package defines several errors:
//
//   - ErrReadOnly: mutation in a view transaction or on a read-only engine
//   - ErrNoDestination: MoveNodes without a destination
//   - ErrCannotLift: lifting a node with depth less than 2
//   - ErrNoNode, ErrNotElement, ErrIndexOutOfRange, ErrMoveIntoSelf: invalid paths
//   - ErrSnapshotNotFound: requested snapshot does not exist
//
// Transform failures are wrapped in *PathError naming the operation and path.
package engine
