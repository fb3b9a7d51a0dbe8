package highlight

import (
	"unicode/utf8"

	"github.com/dshills/richlight/internal/richtext/core"
)

// Source is the text being highlighted together with the tables needed to
// translate between byte and character offsets.
type Source struct {
	text       string
	runes      []rune
	byteToRune []int
}

// NewSource indexes text.
func NewSource(text string) *Source {
	s := &Source{
		text:       text,
		runes:      make([]rune, 0, utf8.RuneCountInString(text)),
		byteToRune: make([]int, len(text)+1),
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		n := len(s.runes)
		for b := i; b < i+size; b++ {
			s.byteToRune[b] = n
		}
		s.runes = append(s.runes, r)
		i += size
	}
	s.byteToRune[len(text)] = len(s.runes)
	return s
}

// Text returns the source string.
func (s *Source) Text() string {
	return s.text
}

// Len returns the length in characters.
func (s *Source) Len() int {
	return len(s.runes)
}

// RuneOffset converts a byte offset into a character offset.
func (s *Source) RuneOffset(byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset >= len(s.byteToRune) {
		return len(s.runes)
	}
	return s.byteToRune[byteOffset]
}

// Slice returns the characters covered by r. r must be valid.
func (s *Source) Slice(r core.Range) string {
	return string(s.runes[r.Start:r.End])
}
