package attributed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richlight/internal/richtext/core"
)

var testDefaults = core.Defaults{
	Font:      core.Font{Family: "Menlo", Size: 12},
	TextColor: core.ColorWhite,
}

func TestNewBaseline(t *testing.T) {
	txt := NewBaseline("hello", testDefaults)

	require.Equal(t, 5, txt.Len())
	runs := txt.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, core.NewRange(0, 5), runs[0].Range)
	assert.Equal(t, Attributes{KeyFont: testDefaults.Font, KeyColor: testDefaults.TextColor}, runs[0].Attributes)
}

func TestNewEmptyText(t *testing.T) {
	txt := NewBaseline("", testDefaults)

	assert.Equal(t, 0, txt.Len())
	assert.Empty(t, txt.Runs())
	assert.Nil(t, txt.AttributesAt(0))

	_, ok := txt.FirstFont(core.NewRange(0, 0))
	assert.False(t, ok)
}

func TestLenCountsCharacters(t *testing.T) {
	txt := NewBaseline("héllo wörld", testDefaults)
	assert.Equal(t, 11, txt.Len())

	sub, err := txt.Substring(core.NewRange(6, 11))
	require.NoError(t, err)
	assert.Equal(t, "wörld", sub)
}

func TestSetAttributeSplitsRuns(t *testing.T) {
	txt := NewBaseline("hello world", testDefaults)

	require.NoError(t, txt.SetAttribute(core.NewRange(6, 11), KeyColor, core.ColorRed))

	runs := txt.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, core.NewRange(0, 6), runs[0].Range)
	assert.Equal(t, core.ColorWhite, runs[0].Attributes[KeyColor])
	assert.Equal(t, core.NewRange(6, 11), runs[1].Range)
	assert.Equal(t, core.ColorRed, runs[1].Attributes[KeyColor])
	assert.Equal(t, testDefaults.Font, runs[1].Attributes[KeyFont])
}

func TestSetAttributeLeavesOtherKeys(t *testing.T) {
	txt := NewBaseline("abcdef", testDefaults)

	require.NoError(t, txt.SetAttribute(core.NewRange(1, 4), "tag", "x"))
	require.NoError(t, txt.SetAttribute(core.NewRange(2, 6), KeyColor, core.ColorBlue))

	attrs := txt.AttributesAt(3)
	assert.Equal(t, "x", attrs["tag"])
	assert.Equal(t, core.ColorBlue, attrs[KeyColor])

	_, ok := txt.Attribute(5, "tag")
	assert.False(t, ok)
	v, ok := txt.Attribute(1, KeyColor)
	require.True(t, ok)
	assert.Equal(t, core.ColorWhite, v)
}

func TestSetAttributeOverwritesSameKey(t *testing.T) {
	txt := NewBaseline("abcdef", testDefaults)

	require.NoError(t, txt.SetAttribute(core.NewRange(0, 4), "k", 1))
	require.NoError(t, txt.SetAttribute(core.NewRange(2, 6), "k", 2))

	for i, want := range []int{1, 1, 2, 2, 2, 2} {
		v, _ := txt.Attribute(i, "k")
		assert.Equal(t, want, v, "offset %d", i)
	}
}

func TestSetAttributeEmptyRangeIsNoop(t *testing.T) {
	txt := NewBaseline("abc", testDefaults)
	before := NewBaseline("abc", testDefaults)

	require.NoError(t, txt.SetAttribute(core.NewRange(1, 1), KeyColor, core.ColorRed))
	require.NoError(t, txt.SetAttribute(core.NewRange(3, 3), KeyColor, core.ColorRed))
	assert.True(t, txt.Equal(before))
}

func TestSetAttributeInvalidRange(t *testing.T) {
	txt := NewBaseline("abc", testDefaults)

	for _, r := range []core.Range{{Start: -1, End: 1}, {Start: 2, End: 1}, {Start: 0, End: 4}} {
		err := txt.SetAttribute(r, KeyColor, core.ColorRed)
		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr, "range %v", r)
		assert.Equal(t, 3, rangeErr.Length)
	}
}

func TestFirstFontLeftToRight(t *testing.T) {
	txt := NewBaseline("abcdef", testDefaults)
	bold := testDefaults.Font.WithTraits(core.TraitBold)
	italic := testDefaults.Font.WithTraits(core.TraitItalic)

	require.NoError(t, txt.SetAttribute(core.NewRange(2, 4), KeyFont, bold))
	require.NoError(t, txt.SetAttribute(core.NewRange(4, 6), KeyFont, italic))

	tests := []struct {
		r    core.Range
		want core.Font
	}{
		{core.NewRange(0, 6), testDefaults.Font},
		{core.NewRange(2, 6), bold},
		{core.NewRange(3, 5), bold},
		{core.NewRange(4, 6), italic},
		{core.NewRange(3, 3), bold},
		{core.NewRange(6, 6), italic},
	}
	for _, tt := range tests {
		got, ok := txt.FirstFont(tt.r)
		require.True(t, ok, "range %v", tt.r)
		assert.Equal(t, tt.want, got, "range %v", tt.r)
	}
}

func TestRunsCoalesceEqualNeighbours(t *testing.T) {
	txt := NewBaseline("abcdef", testDefaults)

	require.NoError(t, txt.SetAttribute(core.NewRange(2, 4), KeyColor, core.ColorRed))
	require.NoError(t, txt.SetAttribute(core.NewRange(2, 4), KeyColor, core.ColorWhite))

	runs := txt.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, core.NewRange(0, 6), runs[0].Range)
}

func TestRunsAreCopies(t *testing.T) {
	txt := NewBaseline("abc", testDefaults)

	runs := txt.Runs()
	runs[0].Attributes[KeyColor] = core.ColorRed

	v, _ := txt.Attribute(0, KeyColor)
	assert.Equal(t, core.ColorWhite, v)
}

func TestAttributesKeysSorted(t *testing.T) {
	a := Attributes{"zeta": 1, KeyFont: 2, "alpha": 3, KeyColor: 4}
	assert.Equal(t, []Key{"alpha", KeyColor, KeyFont, "zeta"}, a.Keys())
}
