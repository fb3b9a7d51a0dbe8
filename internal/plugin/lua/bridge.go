package lua

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richlight/internal/richtext/core"
)

// bridge converts values between Go and Lua. It must only be used while the
// owning State's lock is held.
type bridge struct {
	L *lua.LState
}

// toGo converts a Lua value to a Go value. Integral numbers become int64,
// sequences become []any, other tables become map[string]any.
func (b bridge) toGo(lv lua.LValue) any {
	return b.toGoVisited(lv, make(map[*lua.LTable]bool))
}

func (b bridge) toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
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
			return nil
		}
		visited[v] = true
		return b.tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func (b bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	if n := t.Len(); n > 0 {
		count := 0
		t.ForEach(func(_, _ lua.LValue) { count++ })
		if count == n {
			arr := make([]any, n)
			for i := 1; i <= n; i++ {
				arr[i-1] = b.toGoVisited(t.RawGetInt(i), visited)
			}
			return arr
		}
	}

	m := make(map[string]any)
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
		m[key] = b.toGoVisited(v, visited)
	})
	return m
}

// toLua converts a Go value to a Lua value.
func (b bridge) toLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []string:
		t := b.L.NewTable()
		for _, s := range val {
			t.Append(lua.LString(s))
		}
		return t
	case []any:
		t := b.L.NewTable()
		for _, item := range val {
			t.Append(b.toLua(item))
		}
		return t
	case map[string]any:
		t := b.L.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, b.toLua(val[k]))
		}
		return t
	case core.Color:
		return lua.LString(val.String())
	case core.Font:
		t := b.L.NewTable()
		t.RawSetString("family", lua.LString(val.Family))
		t.RawSetString("size", lua.LNumber(val.Size))
		t.RawSetString("traits", b.toLua(val.Traits.Names()))
		return t
	case core.Defaults:
		t := b.L.NewTable()
		t.RawSetString("font", b.toLua(val.Font))
		t.RawSetString("color", b.toLua(val.TextColor))
		return t
	case lua.LValue:
		return val
	default:
		return lua.LString(fmt.Sprint(val))
	}
}
