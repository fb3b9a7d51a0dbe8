package ansi

import (
	"regexp"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

var testDefaults = core.Defaults{
	Font:      core.Font{Family: "mono", Size: 12},
	TextColor: core.ColorDefault,
}

func sample(t *testing.T) *attributed.Text {
	t.Helper()
	text := attributed.NewBaseline("TODO: fix\n\tnext line", testDefaults)
	require.NoError(t, text.SetAttribute(core.NewRange(0, 4), attributed.KeyFont, testDefaults.Font.WithTraits(core.TraitBold)))
	require.NoError(t, text.SetAttribute(core.NewRange(0, 4), attributed.KeyColor, core.ColorRed))
	require.NoError(t, text.SetAttribute(core.NewRange(6, 9), attributed.KeyUnderline, true))
	return text
}

func TestRenderTrueColor(t *testing.T) {
	out := Render(sample(t), Options{Profile: termenv.TrueColor, Defaults: testDefaults})

	assert.Equal(t, "TODO: fix\n\tnext line", stripANSI(out), "styling must not change the text")
	assert.True(t, strings.HasPrefix(out, "\x1b["), "first run is styled")
	assert.Contains(t, out, "38;2;255;0;0")
	assert.Contains(t, out, "\x1b[4m")
	assert.True(t, strings.HasSuffix(out, "\tnext line"), "unstyled runs are written verbatim")
}

func TestRenderIndexedColor(t *testing.T) {
	text := attributed.NewBaseline("x", testDefaults)
	require.NoError(t, text.SetAttribute(core.NewRange(0, 1), attributed.KeyBackground, core.ColorFromIndex(100)))

	out := Render(text, Options{Profile: termenv.ANSI256, Defaults: testDefaults})
	assert.Contains(t, out, "48;5;100")
	assert.Equal(t, "x", stripANSI(out))
}

func TestRenderAsciiIsPlain(t *testing.T) {
	out := Render(sample(t), Options{Profile: termenv.Ascii, Defaults: testDefaults})
	assert.Equal(t, "TODO: fix\n\tnext line", out)
}

func TestRenderEmpty(t *testing.T) {
	out := Render(attributed.NewBaseline("", testDefaults), Options{Profile: termenv.TrueColor})
	assert.Equal(t, "", out)
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		name string
		want termenv.Profile
	}{
		{"none", termenv.Ascii},
		{"16", termenv.ANSI},
		{"256", termenv.ANSI256},
		{"truecolor", termenv.TrueColor},
	}
	for _, tt := range tests {
		got, err := ParseProfile(tt.name, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.name)
	}

	got, err := ParseProfile("auto", nil)
	require.NoError(t, err)
	assert.Equal(t, termenv.Ascii, got, "nil output is not a terminal")

	_, err = ParseProfile("sepia", nil)
	assert.Error(t, err)
}
