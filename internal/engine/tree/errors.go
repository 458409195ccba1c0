package tree

import (
	"errors"
	"fmt"

	"github.com/dshills/blockstorm/internal/engine/path"
)

// Errors returned by tree operations.
var (
	// ErrNoNode indicates no node exists at a path.
	ErrNoNode = errors.New("no node at path")

	// ErrRootPath indicates an operation that cannot target the root.
	ErrRootPath = errors.New("operation not allowed on root")

	// ErrNotElement indicates a text leaf was used where an element is required.
	ErrNotElement = errors.New("node is not an element")

	// ErrIndexOutOfRange indicates a child index past the end of its parent.
	ErrIndexOutOfRange = errors.New("child index out of range")

	// ErrMoveIntoSelf indicates a move whose destination lies inside the moved node.
	ErrMoveIntoSelf = errors.New("cannot move a node into itself")

	// ErrInvalidNode indicates a nil or malformed value tree.
	ErrInvalidNode = errors.New("invalid node")
)

// PathError records the path and depth at which a tree operation failed.
type PathError struct {
	Path  path.Path
	Depth int
	Err   error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v: %s (depth %d)", e.Err, e.Path, e.Depth)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
