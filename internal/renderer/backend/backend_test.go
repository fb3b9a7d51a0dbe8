package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

var testDefaults = core.Defaults{
	Font:      core.Font{Family: "mono", Size: 12},
	TextColor: core.ColorDefault,
}

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func cell(s tcell.Screen, x, y int) (rune, tcell.Style) {
	mainc, _, style, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the simplest way to read a cell
	return mainc, style
}

func TestStyleFor(t *testing.T) {
	attrs := attributed.Attributes{
		attributed.KeyFont:          testDefaults.Font.WithTraits(core.TraitBold | core.TraitItalic),
		attributed.KeyColor:         core.ColorRed,
		attributed.KeyBackground:    core.ColorFromIndex(4),
		attributed.KeyUnderline:     true,
		attributed.KeyStrikethrough: true,
	}

	want := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(255, 0, 0)).
		Background(tcell.PaletteColor(4)).
		Bold(true).
		Italic(true).
		Underline(true).
		StrikeThrough(true)
	assert.Equal(t, want, StyleFor(attrs, testDefaults))
}

func TestStyleForFallsBackToDefaults(t *testing.T) {
	defaults := core.Defaults{
		Font:      core.Font{Family: "mono", Size: 12, Traits: core.TraitBold},
		TextColor: core.ColorBlue,
	}
	want := tcell.StyleDefault.Foreground(tcell.NewRGBColor(0, 0, 255)).Bold(true)
	assert.Equal(t, want, StyleFor(nil, defaults))

	assert.Equal(t, tcell.StyleDefault, StyleFor(nil, testDefaults))
}

func TestStyleForIgnoresForeignValues(t *testing.T) {
	attrs := attributed.Attributes{
		attributed.KeyBackground: "red",
		attributed.KeyUnderline:  "yes",
		"custom":                 42,
	}
	assert.Equal(t, tcell.StyleDefault, StyleFor(attrs, testDefaults))
}

func TestDrawRunsAndWrapping(t *testing.T) {
	s := newScreen(t, 4, 5)

	text := attributed.NewBaseline("ab cdef\ngh", testDefaults)
	require.NoError(t, text.SetAttribute(core.NewRange(0, 2), attributed.KeyColor, core.ColorRed))

	rows := Draw(s, text, testDefaults, Area{Width: 4})
	assert.Equal(t, 3, rows)

	r, style := cell(s, 0, 0)
	assert.Equal(t, 'a', r)
	assert.Equal(t, tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 0, 0)), style)

	r, style = cell(s, 2, 0)
	assert.Equal(t, ' ', r)
	assert.Equal(t, tcell.StyleDefault, style)

	// "ab cdef" wraps after four cells.
	r, _ = cell(s, 0, 1)
	assert.Equal(t, 'd', r)
	r, _ = cell(s, 0, 2)
	assert.Equal(t, 'g', r)
}

func TestDrawWideAndCombining(t *testing.T) {
	s := newScreen(t, 10, 2)

	text := attributed.NewBaseline("日e\u0301x", testDefaults)
	rows := Draw(s, text, testDefaults, Area{Width: 10})
	assert.Equal(t, 1, rows)

	r, _ := cell(s, 0, 0)
	assert.Equal(t, '日', r)

	mainc, combc, _, _ := s.GetContent(2, 0) //nolint:staticcheck // see cell
	assert.Equal(t, 'e', mainc)
	assert.Equal(t, []rune{'\u0301'}, combc)

	r, _ = cell(s, 3, 0)
	assert.Equal(t, 'x', r)
}

func TestDrawCRLF(t *testing.T) {
	s := newScreen(t, 10, 3)

	text := attributed.NewBaseline("ab\r\ncd\r\n", testDefaults)
	rows := Draw(s, text, testDefaults, Area{Width: 10, Height: 3})
	assert.Equal(t, 2, rows)

	r, _ := cell(s, 2, 0)
	assert.Equal(t, ' ', r)
	r, _ = cell(s, 0, 1)
	assert.Equal(t, 'c', r)
	r, _ = cell(s, 1, 1)
	assert.Equal(t, 'd', r)
}

func TestDrawRunBoundaryInsideCluster(t *testing.T) {
	s := newScreen(t, 10, 1)

	text := attributed.NewBaseline("e\u0301x", testDefaults)
	require.NoError(t, text.SetAttribute(core.NewRange(0, 1), attributed.KeyUnderline, true))

	rows := Draw(s, text, testDefaults, Area{Width: 10})
	assert.Equal(t, 1, rows)

	mainc, combc, style, _ := s.GetContent(0, 0) //nolint:staticcheck // see cell
	assert.Equal(t, 'e', mainc)
	assert.Equal(t, []rune{'\u0301'}, combc)
	assert.Equal(t, tcell.StyleDefault.Underline(true), style)

	r, style := cell(s, 1, 0)
	assert.Equal(t, 'x', r)
	assert.Equal(t, tcell.StyleDefault, style)
}

func TestDrawTabsAndScroll(t *testing.T) {
	s := newScreen(t, 8, 2)

	text := attributed.NewBaseline("a\tb\nline2\nline3", testDefaults)
	rows := Draw(s, text, testDefaults, Area{Width: 8, Height: 1, Scroll: 1})
	assert.Equal(t, 3, rows)

	r, _ := cell(s, 0, 0)
	assert.Equal(t, 'l', r)
	r, _ = cell(s, 4, 0)
	assert.Equal(t, '2', r)

	// Height limits painting to one row.
	r, _ = cell(s, 0, 1)
	assert.Equal(t, ' ', r)

	s.Clear()
	Draw(s, text, testDefaults, Area{Width: 8})
	r, _ = cell(s, 4, 0)
	assert.Equal(t, 'b', r)
}

func TestTerminalStatusAndScrollClamp(t *testing.T) {
	s := newScreen(t, 10, 3)
	term := NewTerminalWithScreen(s)

	text := attributed.NewBaseline("one\ntwo\nthree\nfour", testDefaults)
	term.SetText(text, testDefaults)
	term.SetStatus("q quits")

	r, _ := cell(s, 0, 0)
	assert.Equal(t, 'o', r)
	r, style := cell(s, 0, 2)
	assert.Equal(t, 'q', r)
	assert.Equal(t, tcell.StyleDefault.Reverse(true), style)

	term.Scroll(10)
	r, _ = cell(s, 0, 0)
	assert.Equal(t, 't', r, "scroll clamps so the last row is visible")
	r, _ = cell(s, 0, 1)
	assert.Equal(t, 'f', r)

	term.Scroll(-10)
	r, _ = cell(s, 0, 0)
	assert.Equal(t, 'o', r)
}
