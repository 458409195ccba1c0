package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrInstructionLimit is returned when instruction limit is exceeded.
	ErrInstructionLimit = errors.New("lua instruction limit exceeded")

	// ErrNoDocument is returned by document calls on a state without a
	// document attached.
	ErrNoDocument = errors.New("no document attached")
)

// ScriptError reports a failed script run. Err is the document error that
// aborted the script when there is one, otherwise the Lua error itself.
type ScriptError struct {
	Chunk string
	Err   error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("lua %s: %v", e.Chunk, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }
