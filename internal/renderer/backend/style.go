// Package backend paints attributed text on a tcell screen.
package backend

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// StyleFor converts a run's attributes to a tcell style. Font and color
// fall back to defaults when the run does not carry them.
func StyleFor(attrs attributed.Attributes, defaults core.Defaults) tcell.Style {
	style := tcell.StyleDefault

	fg := defaults.TextColor
	if c, ok := attrs.Color(); ok {
		fg = c
	}
	if !fg.IsDefault() {
		style = style.Foreground(tcellColor(fg))
	}

	if v, ok := attrs.Get(attributed.KeyBackground); ok {
		if bg, ok := v.(core.Color); ok && !bg.IsDefault() {
			style = style.Background(tcellColor(bg))
		}
	}

	font := defaults.Font
	if f, ok := attrs.Font(); ok {
		font = f
	}
	if font.Traits.Has(core.TraitBold) {
		style = style.Bold(true)
	}
	if font.Traits.Has(core.TraitItalic) {
		style = style.Italic(true)
	}

	if flag(attrs, attributed.KeyUnderline) {
		style = style.Underline(true)
	}
	if flag(attrs, attributed.KeyStrikethrough) {
		style = style.StrikeThrough(true)
	}
	if v, ok := attrs.Get(attributed.KeyLink); ok {
		if url, ok := v.(string); ok && url != "" {
			style = style.Url(url)
		}
	}

	return style
}

func flag(attrs attributed.Attributes, key attributed.Key) bool {
	v, ok := attrs.Get(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func tcellColor(c core.Color) tcell.Color {
	switch {
	case c.IsDefault():
		return tcell.ColorDefault
	case c.Indexed:
		return tcell.PaletteColor(int(c.R))
	default:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
}
