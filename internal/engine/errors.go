package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/tracking"
	"github.com/dshills/blockstorm/internal/engine/tree"
)

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates a mutation was attempted in a view transaction
	// or on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrNoDestination indicates a move was requested without a target path.
	ErrNoDestination = errors.New("move requires a destination path")

	// ErrUnsupportedHook indicates a hook implements none of the engine's
	// hook interfaces.
	ErrUnsupportedHook = errors.New("hook implements no engine hook interface")

	// ErrCannotLift indicates a node is too shallow to be lifted.
	ErrCannotLift = errors.New("cannot lift node with depth less than 2")
)

// ErrSnapshotNotFound indicates a named snapshot was not found.
var ErrSnapshotNotFound = tracking.ErrSnapshotNotFound

// Tree errors, re-exported so callers can match them without importing the
// tree package.
var (
	ErrNoNode          = tree.ErrNoNode
	ErrRootPath        = tree.ErrRootPath
	ErrNotElement      = tree.ErrNotElement
	ErrIndexOutOfRange = tree.ErrIndexOutOfRange
	ErrMoveIntoSelf    = tree.ErrMoveIntoSelf
	ErrInvalidNode     = tree.ErrInvalidNode
)

// PathError records the operation and path that failed.
type PathError struct {
	Op   string
	Path path.Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

func pathError(op string, p path.Path, err error) error {
	if err == nil {
		return nil
	}
	return &PathError{Op: op, Path: p.Clone(), Err: err}
}
