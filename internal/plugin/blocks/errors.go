package blocks

import (
	"errors"
	"fmt"

	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/path"
)

var (
	// ErrCannotLift indicates a matched node has no grandparent.
	ErrCannotLift = engine.ErrCannotLift

	// ErrUnknownIDFormat indicates an unsupported identifier format name.
	ErrUnknownIDFormat = errors.New("unknown identifier format")
)

// LiftError identifies the node that could not be lifted.
type LiftError struct {
	Path path.Path
}

func (e *LiftError) Error() string {
	return fmt.Sprintf("cannot lift node at path [%s]: depth %d is less than 2", e.Path, e.Path.Len())
}

func (e *LiftError) Unwrap() error { return ErrCannotLift }
