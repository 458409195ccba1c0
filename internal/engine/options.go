package engine

import (
	"go.uber.org/zap"

	"github.com/dshills/blockstorm/internal/engine/node"
)

// Default configuration values.
const (
	DefaultMaxChanges = 10000
)

// Default element kinds.
var (
	DefaultVoidTypes   = []string{"image", "divider"}
	DefaultInlineTypes = []string{"link", "mention"}
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithDocument sets the initial document. The value is copied.
func WithDocument(doc *node.Node) Option {
	return func(e *Engine) {
		e.initDoc = doc
	}
}

// WithVoidTypes sets the element types treated as void. Traversals do not
// descend into void elements unless asked to.
func WithVoidTypes(types ...string) Option {
	return func(e *Engine) {
		e.voidTypes = toSet(types)
	}
}

// WithInlineTypes sets the element types treated as inline.
func WithInlineTypes(types ...string) Option {
	return func(e *Engine) {
		e.inlineTypes = toSet(types)
	}
}

// WithMaxChanges sets the maximum number of tracked operations.
func WithMaxChanges(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxChanges = max
		}
	}
}

// WithSelection sets the initial selection.
func WithSelection(loc *Location) Option {
	return func(e *Engine) {
		e.selection = loc.Clone()
	}
}

// WithLogger sets the logger used by the engine.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReadOnly creates a read-only engine.
// Update returns ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
