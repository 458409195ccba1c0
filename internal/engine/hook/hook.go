// Package hook keeps ordered sets of named, prioritized hooks.
//
// A Manager holds hooks of one interface type. Hooks are identified by name:
// registering a hook whose name is already present replaces it. Hooks are
// kept sorted by priority, highest first, and registration order breaks
// ties.
//
// Wrap composes hooks that decorate a function, the way the engine lets
// plugins override transforms:
//
//	fn := hook.Wrap(moves, base, func(h MoveHook, next MoveFunc) MoveFunc {
//	    return h.WrapMove(next)
//	})
//
// The highest-priority hook is outermost and runs first.
package hook

import (
	"sort"
	"sync"
)

// Hook is the interface every managed hook implements.
type Hook interface {
	// Name uniquely identifies the hook.
	Name() string

	// Priority orders hooks. Higher priority runs first.
	Priority() int
}

// Common priorities.
const (
	PriorityLow    = -100
	PriorityNormal = 0
	PriorityHigh   = 100
)

// Manager manages hooks of type H with priority-based ordering.
// It is safe for concurrent use.
type Manager[H Hook] struct {
	mu    sync.RWMutex
	hooks []H
}

// NewManager creates an empty hook manager.
func NewManager[H Hook]() *Manager[H] {
	return &Manager[H]{hooks: make([]H, 0)}
}

// Register adds h, replacing any hook with the same name.
func (m *Manager[H]) Register(h H) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.hooks {
		if existing.Name() == h.Name() {
			m.hooks[i] = h
			m.sort()
			return
		}
	}
	m.hooks = append(m.hooks, h)
	m.sort()
}

// Unregister removes a hook by name and reports whether it was present.
func (m *Manager[H]) Unregister(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, h := range m.hooks {
		if h.Name() == name {
			m.hooks = append(m.hooks[:i], m.hooks[i+1:]...)
			return true
		}
	}
	return false
}

// Hooks returns a copy of the registered hooks, highest priority first.
func (m *Manager[H]) Hooks() []H {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hooks := make([]H, len(m.hooks))
	copy(hooks, m.hooks)
	return hooks
}

// Names returns the hook names in run order.
func (m *Manager[H]) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.hooks))
	for i, h := range m.hooks {
		names[i] = h.Name()
	}
	return names
}

// Count returns the number of registered hooks.
func (m *Manager[H]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hooks)
}

// Clear removes all hooks.
func (m *Manager[H]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = m.hooks[:0]
}

// sort orders hooks by priority descending, keeping registration order
// among equal priorities.
func (m *Manager[H]) sort() {
	sort.SliceStable(m.hooks, func(i, j int) bool {
		return m.hooks[i].Priority() > m.hooks[j].Priority()
	})
}

// Wrap decorates base with every hook in m. The highest-priority hook ends
// up outermost. With no hooks registered base is returned as is.
func Wrap[H Hook, F any](m *Manager[H], base F, wrap func(h H, next F) F) F {
	hooks := m.Hooks()
	fn := base
	for i := len(hooks) - 1; i >= 0; i-- {
		fn = wrap(hooks[i], fn)
	}
	return fn
}
