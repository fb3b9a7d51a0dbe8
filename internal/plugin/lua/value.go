package lua

import (
	"github.com/dshills/richlight/internal/highlight"
	"github.com/dshills/richlight/internal/richtext/core"
)

// ValueFunc adapts the global Lua function fn into a highlight.ValueFunc.
// The function is called as fn(match, defaults, start, finish) and its
// first return value becomes the attribute value.
func ValueFunc(s *State, fn string) highlight.ValueFunc {
	return func(match string, defaults core.Defaults, r core.Range) (any, error) {
		return s.Invoke(fn, match, defaults, r.Start, r.End)
	}
}
