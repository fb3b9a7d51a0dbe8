package backend

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// TabWidth is the tab stop interval used when drawing.
const TabWidth = 4

// Area is the screen region text is drawn into. Rows before Scroll are
// laid out but not painted. A zero Height means no vertical limit.
type Area struct {
	X, Y          int
	Width, Height int
	Scroll        int
}

// Draw paints text into area, wrapping at newlines and at the area width,
// and returns the number of rows the full layout needs.
func Draw(screen tcell.Screen, text *attributed.Text, defaults core.Defaults, area Area) int {
	if area.Width <= 0 {
		return 0
	}

	row, col := 0, 0
	put := func(mainc rune, combc []rune, style tcell.Style, width int) {
		if col+width > area.Width && col > 0 {
			row++
			col = 0
		}
		vis := row - area.Scroll
		if vis >= 0 && (area.Height == 0 || vis < area.Height) {
			screen.SetContent(area.X+col, area.Y+vis, mainc, combc, style)
		}
		col += width
	}

	runs := text.Runs()
	styles := make([]tcell.Style, len(runs))
	for i, run := range runs {
		styles[i] = StyleFor(run.Attributes, defaults)
	}

	// Clusters are taken from the whole string so that a run boundary
	// inside a cluster cannot split it. Each cluster takes the style of
	// the run holding its first character.
	offset, ri := 0, 0
	g := uniseg.NewGraphemes(text.String())
	for g.Next() {
		runes := g.Runes()
		for ri < len(runs)-1 && offset >= runs[ri].Range.End {
			ri++
		}
		offset += len(runes)

		switch {
		case runes[len(runes)-1] == '\n':
			row++
			col = 0
			continue
		case runes[0] == '\r':
			continue
		case runes[0] == '\t':
			n := TabWidth - col%TabWidth
			for i := 0; i < n; i++ {
				put(' ', nil, styles[ri], 1)
			}
			continue
		}

		w := g.Width()
		if w <= 0 {
			continue
		}
		put(runes[0], runes[1:], styles[ri], w)
	}

	if col > 0 || row == 0 {
		row++
	}
	return row
}
