package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// ToGoValue converts a Lua value to a Go value. Tables become []any when
// their keys are 1..n and map[string]any otherwise.
func ToGoValue(lv lua.LValue) any {
	return toGoValue(lv, make(map[*lua.LTable]bool))
}

func toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // Break circular reference
		}
		visited[v] = true
		return tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = toGoValue(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = toGoValue(v, visited)
	})
	return m
}

// NodeToTable converts a value tree into nested Lua tables with the fields
// kind, type, text, attrs and children.
func NodeToTable(L *lua.LState, n *node.Node) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("kind", lua.LString(n.Kind.String()))
	if n.Type != "" {
		t.RawSetString("type", lua.LString(n.Type))
	}
	if n.IsText() {
		t.RawSetString("text", lua.LString(n.Text))
	}
	if len(n.Attrs) > 0 {
		attrs := L.NewTable()
		for k, v := range n.Attrs {
			attrs.RawSetString(k, lua.LString(v))
		}
		t.RawSetString("attrs", attrs)
	}
	if n.IsElement() {
		children := L.CreateTable(len(n.Children), 0)
		for _, c := range n.Children {
			children.Append(NodeToTable(L, c))
		}
		t.RawSetString("children", children)
	}
	return t
}

// checkPath reads a path argument. Both the string form ("0.2") and an
// array of zero-based indexes ({0, 2}) are accepted.
func checkPath(L *lua.LState, n int) path.Path {
	switch v := L.Get(n).(type) {
	case lua.LString:
		p, err := path.Parse(string(v))
		if err != nil {
			L.ArgError(n, err.Error())
		}
		return p
	case *lua.LTable:
		p := make(path.Path, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			idx, ok := v.RawGetInt(i).(lua.LNumber)
			if !ok || idx < 0 {
				L.ArgError(n, "path entries must be non-negative numbers")
			}
			p = append(p, int(idx))
		}
		return p
	default:
		L.ArgError(n, "path expected")
		return nil
	}
}

// pathValue returns p in string form.
func pathValue(p path.Path) lua.LValue {
	if p == nil {
		return lua.LNil
	}
	return lua.LString(p.String())
}
