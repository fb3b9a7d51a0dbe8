// Package attributed implements attributed text: an immutable string plus
// an ordered list of runs, each run carrying a set of named attributes.
//
// Offsets are character (rune) offsets, never byte offsets.
package attributed

import (
	"reflect"
	"sort"

	"github.com/dshills/richlight/internal/richtext/core"
)

// Key names an attribute.
type Key string

// Well-known attribute keys. Renderers interpret these; any other key is
// carried opaquely.
const (
	KeyFont          Key = "font"
	KeyColor         Key = "color"
	KeyBackground    Key = "background"
	KeyUnderline     Key = "underline"
	KeyStrikethrough Key = "strikethrough"
	KeyLink          Key = "link"
)

// Attributes maps attribute keys to values.
type Attributes map[Key]any

// Clone returns a shallow copy.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order.
func (a Attributes) Keys() []Key {
	keys := make([]Key, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Get returns the value stored for key.
func (a Attributes) Get(key Key) (any, bool) {
	v, ok := a[key]
	return v, ok
}

// Font returns the font attribute if present and of type core.Font.
func (a Attributes) Font() (core.Font, bool) {
	f, ok := a[KeyFont].(core.Font)
	return f, ok
}

// Color returns the color attribute if present and of type core.Color.
func (a Attributes) Color() (core.Color, bool) {
	c, ok := a[KeyColor].(core.Color)
	return c, ok
}

// Equal reports whether both sets hold the same keys with deeply equal values.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !reflect.DeepEqual(v, w) {
			return false
		}
	}
	return true
}
