package hook

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testHook struct {
	name     string
	priority int
	tag      string
}

func (h testHook) Name() string  { return h.name }
func (h testHook) Priority() int { return h.priority }

func TestManagerOrdering(t *testing.T) {
	m := NewManager[testHook]()
	m.Register(testHook{name: "low", priority: PriorityLow})
	m.Register(testHook{name: "high", priority: PriorityHigh})
	m.Register(testHook{name: "normal-a", priority: PriorityNormal})
	m.Register(testHook{name: "normal-b", priority: PriorityNormal})

	want := []string{"high", "normal-a", "normal-b", "low"}
	if diff := cmp.Diff(want, m.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if m.Count() != 4 {
		t.Errorf("Count() = %d, want 4", m.Count())
	}
}

func TestManagerReplaceByName(t *testing.T) {
	m := NewManager[testHook]()
	m.Register(testHook{name: "a", priority: 1, tag: "first"})
	m.Register(testHook{name: "b", priority: 5})
	m.Register(testHook{name: "a", priority: 10, tag: "second"})

	hooks := m.Hooks()
	if len(hooks) != 2 {
		t.Fatalf("expected 2 hooks, got %d", len(hooks))
	}
	if hooks[0].name != "a" || hooks[0].tag != "second" {
		t.Errorf("replacement not applied or not re-sorted: %+v", hooks[0])
	}
}

func TestManagerUnregisterAndClear(t *testing.T) {
	m := NewManager[testHook]()
	m.Register(testHook{name: "a"})
	m.Register(testHook{name: "b"})

	if !m.Unregister("a") {
		t.Error("Unregister(a) should report true")
	}
	if m.Unregister("a") {
		t.Error("second Unregister(a) should report false")
	}
	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d", m.Count())
	}
}

func TestWrap(t *testing.T) {
	m := NewManager[testHook]()
	m.Register(testHook{name: "inner", priority: PriorityLow, tag: "i"})
	m.Register(testHook{name: "outer", priority: PriorityHigh, tag: "o"})

	var trace []string
	base := func(s string) string {
		trace = append(trace, "base")
		return s + "."
	}
	fn := Wrap(m, base, func(h testHook, next func(string) string) func(string) string {
		return func(s string) string {
			trace = append(trace, h.tag)
			return next(s + h.tag)
		}
	})

	if got := fn(">"); got != ">oi." {
		t.Errorf("fn() = %q, want %q", got, ">oi.")
	}
	if got := strings.Join(trace, ","); got != "o,i,base" {
		t.Errorf("call order = %q", got)
	}
}

func TestWrapWithoutHooks(t *testing.T) {
	m := NewManager[testHook]()
	called := false
	fn := Wrap(m, func() { called = true }, func(_ testHook, next func()) func() {
		t.Error("wrap should not be invoked without hooks")
		return next
	})
	fn()
	if !called {
		t.Error("base should run")
	}
}
