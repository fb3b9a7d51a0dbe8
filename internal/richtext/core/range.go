package core

import "fmt"

// Range is a half-open interval [Start, End) of character (rune) offsets.
type Range struct {
	Start int
	End   int
}

// NewRange creates a range.
func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

// Len returns the number of characters in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range covers no characters.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Valid reports whether 0 <= Start <= End <= length.
func (r Range) Valid(length int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= length
}

// Contains reports whether offset lies inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps reports whether two ranges share at least one character.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
