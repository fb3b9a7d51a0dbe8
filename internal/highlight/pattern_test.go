package highlight

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richlight/internal/richtext/core"
)

func ranges(ms []Match) []core.Range {
	out := make([]core.Range, len(ms))
	for i, m := range ms {
		out[i] = m.Range()
	}
	return out
}

func TestParseSyntax(t *testing.T) {
	tests := []struct {
		in      string
		want    Syntax
		wantErr bool
	}{
		{"", SyntaxRE2, false},
		{"RE2", SyntaxRE2, false},
		{"regexp2", SyntaxRegexp2, false},
		{"pcre", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSyntax(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestCompileInvalid(t *testing.T) {
	_, err := Compile(`(`, SyntaxRE2)
	assert.Error(t, err)
	_, err = Compile(`(?<=`, SyntaxRegexp2)
	assert.Error(t, err)
	_, err = Compile(`a`, Syntax("nope"))
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`(`, SyntaxRE2) })
}

func TestPatternsReportCharacterOffsets(t *testing.T) {
	src := NewSource("naïve café, naïve")

	for _, syntax := range []Syntax{SyntaxRE2, SyntaxRegexp2} {
		t.Run(string(syntax), func(t *testing.T) {
			p := MustCompile(`naïve`, syntax)
			ms, err := p.FindAll(src)
			require.NoError(t, err)
			assert.Equal(t, []core.Range{core.NewRange(0, 5), core.NewRange(12, 17)}, ranges(ms))
		})
	}
}

func TestPatternsGroups(t *testing.T) {
	src := NewSource("k=v x=")

	for _, syntax := range []Syntax{SyntaxRE2, SyntaxRegexp2} {
		t.Run(string(syntax), func(t *testing.T) {
			p := MustCompile(`(\w)=(\w)?`, syntax)
			assert.Equal(t, 2, p.NumGroups())

			ms, err := p.FindAll(src)
			require.NoError(t, err)
			require.Len(t, ms, 2)

			g, ok := ms[0].Group(2)
			require.True(t, ok)
			assert.Equal(t, core.NewRange(2, 3), g)

			_, ok = ms[1].Group(2)
			assert.False(t, ok)
			_, ok = ms[1].Group(7)
			assert.False(t, ok)
		})
	}
}

func TestPatternsEmptyMatchesTerminate(t *testing.T) {
	src := NewSource("abc")

	for _, syntax := range []Syntax{SyntaxRE2, SyntaxRegexp2} {
		t.Run(string(syntax), func(t *testing.T) {
			ms, err := MustCompile(`x*`, syntax).FindAll(src)
			require.NoError(t, err)
			assert.Len(t, ms, 4)
			for _, m := range ms {
				assert.True(t, m.Range().IsEmpty())
			}
		})
	}
}

func TestRegexp2LookAround(t *testing.T) {
	p := MustCompile(`(?<=\$)\d+(?!\d*%)`, SyntaxRegexp2)

	ms, err := p.FindAll(NewSource("$12 and $34% and 56"))
	require.NoError(t, err)
	assert.Equal(t, []core.Range{core.NewRange(1, 3)}, ranges(ms))
}

func TestRegexp2TimeoutSurfacesAsPatternError(t *testing.T) {
	p, err := CompileRegexp2(`(a+)+$`, time.Millisecond)
	require.NoError(t, err)

	text := strings.Repeat("a", 40) + "b"
	rules := []HighlightRule{MustRule("slow", p, Color(core.ColorRed))}

	out, err := Compute(text, testDefaults, rules)
	assert.Nil(t, out)
	var patErr *PatternError
	require.ErrorAs(t, err, &patErr)
	assert.Equal(t, `(a+)+$`, patErr.Pattern)
}

func TestSourceRuneOffset(t *testing.T) {
	src := NewSource("aé😀b")

	assert.Equal(t, 4, src.Len())
	assert.Equal(t, 0, src.RuneOffset(0))
	assert.Equal(t, 1, src.RuneOffset(1))
	assert.Equal(t, 2, src.RuneOffset(3))
	assert.Equal(t, 3, src.RuneOffset(7))
	assert.Equal(t, 4, src.RuneOffset(8))
	assert.Equal(t, 4, src.RuneOffset(100))
	assert.Equal(t, "é😀", src.Slice(core.NewRange(1, 3)))
}

func TestSourceInvalidUTF8(t *testing.T) {
	src := NewSource("a\xffb")
	assert.Equal(t, 3, src.Len())
	assert.Equal(t, 2, src.RuneOffset(2))
}
