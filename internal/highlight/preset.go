package highlight

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// Palette holds the colors used by the built-in presets.
type Palette struct {
	Comment  core.Color
	Keyword  core.Color
	String   core.Color
	Number   core.Color
	Type     core.Color
	Function core.Color
	Heading  core.Color
	Link     core.Color
	Code     core.Color
	Marker   core.Color
}

// DarkPalette returns the default palette for dark backgrounds.
func DarkPalette() Palette {
	keyword := core.ColorFromRGB(86, 156, 214)
	return Palette{
		Comment:  core.ColorFromRGB(106, 153, 85),
		Keyword:  keyword,
		String:   core.ColorFromRGB(206, 145, 120),
		Number:   core.ColorFromRGB(181, 206, 168),
		Type:     core.ColorFromRGB(78, 201, 176),
		Function: core.ColorFromRGB(220, 220, 170),
		Heading:  keyword.Lighten(0.2),
		Link:     core.ColorFromRGB(156, 220, 254),
		Code:     core.ColorBlack.Lighten(0.16),
		Marker:   core.ColorFromRGB(244, 71, 71),
	}
}

// LightPalette returns the dark palette's hues darkened for light
// backgrounds.
func LightPalette() Palette {
	d := DarkPalette()
	const amount = 0.35
	return Palette{
		Comment:  d.Comment.Darken(amount),
		Keyword:  d.Keyword.Darken(amount),
		String:   d.String.Darken(amount),
		Number:   d.Number.Darken(amount),
		Type:     d.Type.Darken(amount),
		Function: d.Function.Darken(0.5),
		Heading:  d.Keyword.Darken(0.5),
		Link:     d.Link.Darken(0.5),
		Code:     core.ColorWhite.Darken(0.08),
		Marker:   d.Marker.Darken(0.15),
	}
}

var palettes = map[string]func() Palette{
	"dark":  DarkPalette,
	"light": LightPalette,
}

// PaletteByName returns the named built-in palette ("dark" or "light").
// The empty name means dark.
func PaletteByName(name string) (Palette, bool) {
	if name == "" {
		return DarkPalette(), true
	}
	fn, ok := palettes[strings.ToLower(name)]
	if !ok {
		return Palette{}, false
	}
	return fn(), true
}

// Well-known custom keys produced by the presets.
const (
	KeyMarker       attributed.Key = "marker"
	KeyNumericValue attributed.Key = "numericValue"
)

func words(list ...string) string {
	return `\b(?:` + strings.Join(list, "|") + `)\b`
}

// TodoRules marks TODO-style comments: bold, marker colored, and tagged with
// the lower-cased marker name.
func TodoRules(p Palette) []HighlightRule {
	return []HighlightRule{
		MustRule("todo", MustCompile(`\b(?:TODO|FIXME|XXX|HACK)\b`, SyntaxRE2),
			Traits(core.TraitBold),
			Color(p.Marker),
			Computed(KeyMarker, func(m string, _ core.Defaults, _ core.Range) (any, error) {
				return strings.ToLower(m), nil
			}),
		),
	}
}

var linkTarget = regexp.MustCompile(`\]\(([^)]+)\)$`)

// MarkdownRules highlights headings, emphasis, code spans, quotes, list
// markers and links. Order matters: later rules win on shared keys.
func MarkdownRules(p Palette) []HighlightRule {
	return []HighlightRule{
		MustRule("heading", MustCompile(`(?m)^#{1,6}\s+.*$`, SyntaxRE2),
			Traits(core.TraitBold), Color(p.Heading)),
		MustRule("bold", MustCompile(`\*\*[^*\n]+\*\*|__[^_\n]+__`, SyntaxRE2),
			Traits(core.TraitBold)),
		MustRule("italic", MustCompile(`(?<![*\w])\*[^*\n]+\*(?!\*)|(?<![_\w])_[^_\n]+_(?!_)`, SyntaxRegexp2),
			Traits(core.TraitItalic)),
		MustRule("strike", MustCompile(`~~[^~\n]+~~`, SyntaxRE2),
			Attribute(attributed.KeyStrikethrough, true)),
		MustRule("code", MustCompile("`[^`\n]+`", SyntaxRE2),
			Traits(core.TraitMonospace), Attribute(attributed.KeyBackground, p.Code)),
		MustRule("quote", MustCompile(`(?m)^>\s+.*$`, SyntaxRE2),
			Traits(core.TraitItalic), Color(p.Comment)),
		MustRule("list", MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`, SyntaxRE2),
			Color(p.Keyword)),
		MustRule("link", MustCompile(`\[[^\]]+\]\([^)]+\)`, SyntaxRE2),
			Color(p.Link),
			Attribute(attributed.KeyUnderline, true),
			Computed(attributed.KeyLink, func(m string, _ core.Defaults, _ core.Range) (any, error) {
				sub := linkTarget.FindStringSubmatch(m)
				if sub == nil {
					return "", nil
				}
				return sub[1], nil
			}),
		),
	}
}

// GoRules is a line-oriented Go highlighter: keywords, builtins, numbers,
// strings and comments, with comments and strings applied last so they win.
func GoRules(p Palette) []HighlightRule {
	return []HighlightRule{
		MustRule("keyword.control", MustCompile(words(
			"if", "else", "for", "range", "switch", "case", "default",
			"break", "continue", "return", "goto", "fallthrough", "select"), SyntaxRE2),
			Traits(core.TraitBold), Color(p.Keyword)),
		MustRule("keyword.declaration", MustCompile(words(
			"func", "var", "const", "type", "struct", "interface", "map", "chan",
			"package", "import", "defer", "go"), SyntaxRE2),
			Color(p.Keyword)),
		MustRule("constant", MustCompile(words("true", "false", "nil", "iota"), SyntaxRE2),
			Color(p.Number)),
		MustRule("type.builtin", MustCompile(words(
			"int", "int8", "int16", "int32", "int64",
			"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
			"float32", "float64", "complex64", "complex128",
			"bool", "byte", "rune", "string", "error", "any"), SyntaxRE2),
			Color(p.Type)),
		MustRule("function.builtin", MustCompile(words(
			"make", "new", "len", "cap", "append", "copy", "delete",
			"close", "panic", "recover", "print", "println",
			"real", "imag", "complex", "min", "max", "clear"), SyntaxRE2),
			Color(p.Function)),
		MustRule("number", MustCompile(`\b(?:0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+|\d+)\b`, SyntaxRE2),
			Color(p.Number),
			Computed(KeyNumericValue, func(m string, _ core.Defaults, _ core.Range) (any, error) {
				return parseGoInt(m), nil
			}),
		),
		MustRule("string", MustCompile(`"(?:[^"\\\n]|\\.)*"|`+"`[^`]*`", SyntaxRE2),
			Color(p.String)),
		MustRule("comment", MustCompile(`(?m)//.*$|/\*(?s:.*?)\*/`, SyntaxRE2),
			Traits(core.TraitItalic), Color(p.Comment)),
	}
}

// parseGoInt parses a Go integer literal. Literals that overflow int64 keep
// their source text.
func parseGoInt(lit string) any {
	base := 10
	if len(lit) > 1 && lit[0] == '0' && strings.ContainsRune("xXoObB", rune(lit[1])) {
		base = 0
	}
	n, err := strconv.ParseInt(lit, base, 64)
	if err != nil {
		return lit
	}
	return n
}

var presets = map[string]func(Palette) []HighlightRule{
	"todo":     TodoRules,
	"markdown": MarkdownRules,
	"go":       GoRules,
}

// Preset returns the named built-in rule list.
func Preset(name string, p Palette) ([]HighlightRule, bool) {
	fn, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return fn(p), true
}

// PresetNames returns the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
