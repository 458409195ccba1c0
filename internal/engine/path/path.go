// Package path implements positional addresses into the document tree.
//
// A Path is the sequence of child indexes leading from the root to a node.
// The root itself has the empty path. Paths are plain values: any structural
// edit at or before the addressed position can make a path stale, so callers
// that edit the tree in several steps must hold a position-tracking reference
// (see engine.PathRef) instead of a Path.
package path

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path string cannot be parsed.
var ErrInvalidPath = errors.New("invalid path")

// Path is a sequence of child indexes from the root.
type Path []int

// Root returns the empty path addressing the document root.
func Root() Path { return Path{} }

// Of builds a path from indexes.
func Of(indexes ...int) Path {
	return slices.Clone(Path(indexes))
}

// Len returns the depth of the path. The root has depth 0.
func (p Path) Len() int { return len(p) }

// IsRoot reports whether p addresses the root.
func (p Path) IsRoot() bool { return len(p) == 0 }

// Last returns the final index of p. It panics on the root path.
func (p Path) Last() int { return p[len(p)-1] }

// Clone returns a copy of p that shares no storage with it.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Parent returns the path of the parent node. It panics on the root path.
func (p Path) Parent() Path {
	if len(p) == 0 {
		panic("path: root has no parent")
	}
	return slices.Clone(p[:len(p)-1])
}

// Child returns the path of the i-th child of p.
func (p Path) Child(i int) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = i
	return c
}

// Next returns the path of the following sibling. It panics on the root path.
func (p Path) Next() Path {
	if len(p) == 0 {
		panic("path: root has no next sibling")
	}
	n := slices.Clone(p)
	n[len(n)-1]++
	return n
}

// Previous returns the path of the preceding sibling and false if p is the
// root or a first child.
func (p Path) Previous() (Path, bool) {
	if len(p) == 0 || p.Last() == 0 {
		return nil, false
	}
	n := slices.Clone(p)
	n[len(n)-1]--
	return n, true
}

// Ancestors returns the paths of all ancestors of p, from the root down.
func (p Path) Ancestors() []Path {
	out := make([]Path, 0, len(p))
	for i := 0; i < len(p); i++ {
		out = append(out, slices.Clone(p[:i]))
	}
	return out
}

// Equal reports whether p and other address the same position.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// Compare orders two paths in document order. Ancestors and descendants
// compare equal to each other, as neither strictly precedes the other.
func (p Path) Compare(other Path) int {
	n := min(len(p), len(other))
	for i := 0; i < n; i++ {
		if p[i] < other[i] {
			return -1
		}
		if p[i] > other[i] {
			return 1
		}
	}
	return 0
}

// IsBefore reports whether p strictly precedes other in document order.
func (p Path) IsBefore(other Path) bool { return p.Compare(other) < 0 }

// IsAfter reports whether p strictly follows other in document order.
func (p Path) IsAfter(other Path) bool { return p.Compare(other) > 0 }

// IsAncestor reports whether p is a strict ancestor of other.
func (p Path) IsAncestor(other Path) bool {
	return len(p) < len(other) && p.Compare(other) == 0
}

// IsDescendant reports whether p is a strict descendant of other.
func (p Path) IsDescendant(other Path) bool {
	return other.IsAncestor(p)
}

// IsSibling reports whether p and other share a parent and are distinct.
func (p Path) IsSibling(other Path) bool {
	if len(p) == 0 || len(p) != len(other) {
		return false
	}
	return slices.Equal(p[:len(p)-1], other[:len(other)-1]) && p.Last() != other.Last()
}

// EndsBefore reports whether p ends before other at p's own depth, that is,
// p addresses an earlier sibling of other or of one of other's ancestors.
func (p Path) EndsBefore(other Path) bool {
	if len(p) == 0 || len(other) < len(p) {
		return false
	}
	i := len(p) - 1
	return slices.Equal(p[:i], other[:i]) && p[i] < other[i]
}

// String formats the path as dot-separated indexes. The root formats as "/".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// Parse parses a path in the String format. Both "/" and "" parse as root.
func Parse(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "/" {
		return Root(), nil
	}
	fields := strings.Split(s, ".")
	p := make(Path, len(fields))
	for i, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, s)
		}
		p[i] = idx
	}
	return p, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// literals.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}
