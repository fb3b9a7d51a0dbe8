package attributed

import (
	"slices"

	"github.com/dshills/richlight/internal/richtext/core"
)

// run is a contiguous span of characters sharing one attribute set.
// Attribute maps may be shared between runs; writers clone before mutating.
type run struct {
	n     int
	attrs Attributes
}

// Run is an exported view of a run.
type Run struct {
	Range      core.Range
	Attributes Attributes
}

// Text is a string annotated with attribute runs covering [0, Len()).
type Text struct {
	s     string
	runes []rune
	runs  []run
}

// New creates a Text whose single run carries base over the whole string.
func New(s string, base Attributes) *Text {
	runes := []rune(s)
	t := &Text{s: s, runes: runes}
	if len(runes) > 0 {
		t.runs = []run{{n: len(runes), attrs: base.Clone()}}
	}
	return t
}

// NewBaseline creates a Text carrying the default font and color everywhere.
func NewBaseline(s string, defaults core.Defaults) *Text {
	return New(s, Attributes{
		KeyFont:  defaults.Font,
		KeyColor: defaults.TextColor,
	})
}

// Len returns the length in characters.
func (t *Text) Len() int {
	return len(t.runes)
}

// String returns the underlying text.
func (t *Text) String() string {
	return t.s
}

// Substring returns the characters in r.
func (t *Text) Substring(r core.Range) (string, error) {
	if err := t.check(r); err != nil {
		return "", err
	}
	return string(t.runes[r.Start:r.End]), nil
}

func (t *Text) check(r core.Range) error {
	if !r.Valid(len(t.runes)) {
		return &InvalidRangeError{Range: r, Length: len(t.runes)}
	}
	return nil
}

// SetAttribute writes key=value over r, replacing any prior value for key in
// that range and leaving every other key untouched. An empty range is a no-op.
func (t *Text) SetAttribute(r core.Range, key Key, value any) error {
	if err := t.check(r); err != nil {
		return err
	}
	if r.IsEmpty() {
		return nil
	}

	first := t.splitAt(r.Start)
	last := t.splitAt(r.End)
	for i := first; i < last; i++ {
		attrs := t.runs[i].attrs.Clone()
		attrs[key] = value
		t.runs[i].attrs = attrs
	}
	return nil
}

// splitAt makes offset a run boundary and returns the index of the run
// starting there (len(runs) when offset == Len).
func (t *Text) splitAt(offset int) int {
	pos := 0
	for i := range t.runs {
		if offset == pos {
			return i
		}
		end := pos + t.runs[i].n
		if offset < end {
			right := run{n: end - offset, attrs: t.runs[i].attrs}
			t.runs[i].n = offset - pos
			t.runs = slices.Insert(t.runs, i+1, right)
			return i + 1
		}
		pos = end
	}
	return len(t.runs)
}

// FirstFont returns the first font found scanning r left to right. For an
// empty range the run at r.Start is consulted (the last run when r.Start is
// the end of the text).
func (t *Text) FirstFont(r core.Range) (core.Font, bool) {
	if t.check(r) != nil || len(t.runs) == 0 {
		return core.Font{}, false
	}
	if r.IsEmpty() {
		offset := r.Start
		if offset == len(t.runes) {
			offset--
		}
		return t.runAt(offset).attrs.Font()
	}

	pos := 0
	for _, rn := range t.runs {
		end := pos + rn.n
		if core.NewRange(pos, end).Overlaps(r) {
			if f, ok := rn.attrs.Font(); ok {
				return f, true
			}
		}
		if end >= r.End {
			break
		}
		pos = end
	}
	return core.Font{}, false
}

func (t *Text) runAt(offset int) run {
	pos := 0
	for _, rn := range t.runs {
		if core.NewRange(pos, pos+rn.n).Contains(offset) {
			return rn
		}
		pos += rn.n
	}
	return t.runs[len(t.runs)-1]
}

// AttributesAt returns a copy of the attributes at offset, or nil when the
// offset is outside the text.
func (t *Text) AttributesAt(offset int) Attributes {
	if offset < 0 || offset >= len(t.runes) {
		return nil
	}
	return t.runAt(offset).attrs.Clone()
}

// Attribute returns the value of key at offset.
func (t *Text) Attribute(offset int, key Key) (any, bool) {
	return t.AttributesAt(offset).Get(key)
}

// Runs returns the runs in order, with adjacent runs that carry equal
// attributes merged.
func (t *Text) Runs() []Run {
	out := make([]Run, 0, len(t.runs))
	pos := 0
	for _, rn := range t.runs {
		end := pos + rn.n
		if n := len(out); n > 0 && out[n-1].Attributes.Equal(rn.attrs) {
			out[n-1].Range.End = end
		} else {
			out = append(out, Run{
				Range:      core.NewRange(pos, end),
				Attributes: rn.attrs.Clone(),
			})
		}
		pos = end
	}
	return out
}

// Equal reports whether both texts have the same characters and runs.
func (t *Text) Equal(other *Text) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.s != other.s {
		return false
	}
	a, b := t.Runs(), other.Runs()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Range != b[i].Range || !a[i].Attributes.Equal(b[i].Attributes) {
			return false
		}
	}
	return true
}
