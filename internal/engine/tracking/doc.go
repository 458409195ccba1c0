// Package tracking records the operations applied to a document and
// compares document states by identity.
//
// The Tracker keeps a bounded ring buffer of operations, each tagged with the
// revision it produced, plus named document snapshots. Downstream layers that
// key off block identity (sync, diffing) can ask for the identity delta
// between a snapshot and the current document:
//
//	tr := tracking.NewTracker(tracking.WithMaxChanges(1000))
//	tr.CreateSnapshot("before", doc.Snapshot(), rev)
//	// ... edits ...
//	delta, _ := tr.DiffSinceSnapshot("before", doc.Snapshot())
//	for _, id := range delta.AddedBlocks {
//	    // id is a block that did not exist before
//	}
//
// All Tracker operations are thread-safe.
package tracking
