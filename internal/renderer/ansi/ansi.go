// Package ansi renders attributed text as an ANSI-styled string.
package ansi

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// Options controls rendering.
type Options struct {
	// Profile limits the escape sequences used. termenv.Ascii yields plain text.
	Profile termenv.Profile
	// Defaults supply font and color for runs that lack them.
	Defaults core.Defaults
}

// Render returns text with each run styled by its attributes.
func Render(text *attributed.Text, opts Options) string {
	if opts.Profile == termenv.Ascii {
		return text.String()
	}

	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(opts.Profile)

	var b strings.Builder
	for _, run := range text.Runs() {
		style := styleFor(r, run.Attributes, opts.Defaults)
		sub, err := text.Substring(run.Range)
		if err != nil {
			continue
		}
		lines := strings.Split(sub, "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
	}
	return b.String()
}

func styleFor(r *lipgloss.Renderer, attrs attributed.Attributes, defaults core.Defaults) lipgloss.Style {
	style := r.NewStyle().TabWidth(lipgloss.NoTabConversion)

	fg := defaults.TextColor
	if c, ok := attrs.Color(); ok {
		fg = c
	}
	if !fg.IsDefault() {
		style = style.Foreground(lipColor(fg))
	}
	if v, ok := attrs.Get(attributed.KeyBackground); ok {
		if bg, ok := v.(core.Color); ok && !bg.IsDefault() {
			style = style.Background(lipColor(bg))
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
	if v, ok := attrs.Get(attributed.KeyUnderline); ok && v == true {
		style = style.Underline(true)
	}
	if v, ok := attrs.Get(attributed.KeyStrikethrough); ok && v == true {
		style = style.Strikethrough(true)
	}
	return style
}

func lipColor(c core.Color) lipgloss.Color {
	if c.Indexed {
		return lipgloss.Color(strconv.Itoa(int(c.R)))
	}
	return lipgloss.Color(c.ToHex())
}

// ParseProfile maps a color mode name to a profile. "auto" (or "") asks
// DetectProfile.
func ParseProfile(name string, out *os.File) (termenv.Profile, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return DetectProfile(out), nil
	case "none", "ascii", "plain":
		return termenv.Ascii, nil
	case "16", "ansi":
		return termenv.ANSI, nil
	case "256", "ansi256":
		return termenv.ANSI256, nil
	case "truecolor", "24bit":
		return termenv.TrueColor, nil
	default:
		return termenv.Ascii, fmt.Errorf("unknown color mode %q", name)
	}
}

// DetectProfile returns the profile supported by out, or Ascii when out is
// not a terminal.
func DetectProfile(out *os.File) termenv.Profile {
	if out == nil || !term.IsTerminal(int(out.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(out).EnvColorProfile()
}
