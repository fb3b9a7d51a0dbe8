package ruleset

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richlight/internal/highlight"
	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

const notesTOML = `
name = "notes"

[defaults]
font = { family = "Menlo", size = 12 }
color = "#D4D4D4"

[[rules]]
name = "todo"
pattern = '\bTODO\b'

[[rules.format]]
traits = ["bold"]

[[rules.format]]
key = "color"
value = "red"

[[rules]]
name = "number"
pattern = '\b\d+\b'

[[rules.format]]
key = "numericValue"
match = "int"
`

func newCompiler(files map[string]string, opts ...Option) *Compiler {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return NewCompiler(append([]Option{WithFS(fsys)}, opts...)...)
}

func attr(t *testing.T, text *attributed.Text, offset int, key attributed.Key) any {
	t.Helper()
	v, ok := text.Attribute(offset, key)
	require.True(t, ok, "no %s at %d", key, offset)
	return v
}

func TestLoadTOML(t *testing.T) {
	c := newCompiler(map[string]string{"rules/notes.toml": notesTOML})

	rs, err := c.Load("rules/notes.toml")
	require.NoError(t, err)
	defer rs.Close()

	assert.Equal(t, "notes", rs.Name)
	assert.NotEqual(t, [16]byte{}, [16]byte(rs.ID))
	assert.Equal(t, core.Font{Family: "Menlo", Size: 12}, rs.Defaults.Font)
	assert.Equal(t, core.ColorFromRGB(0xD4, 0xD4, 0xD4), rs.Defaults.TextColor)
	require.Len(t, rs.Rules, 2)

	out, err := rs.Compute("TODO fix 42")
	require.NoError(t, err)

	assert.Equal(t, core.Font{Family: "Menlo", Size: 12, Traits: core.TraitBold}, attr(t, out, 0, attributed.KeyFont))
	assert.Equal(t, core.ColorRed, attr(t, out, 0, attributed.KeyColor))
	assert.Equal(t, rs.Defaults.TextColor, attr(t, out, 5, attributed.KeyColor))
	assert.Equal(t, int64(42), attr(t, out, 9, highlight.KeyNumericValue))
}

func TestLoadYAMLWithLua(t *testing.T) {
	c := newCompiler(map[string]string{"notes.yaml": `
defaults:
  color: white
script:
  source: |
    function severity(match, defaults, start, finish)
      if match == "FIXME" then return 2 end
      return 1
    end
    function tint(match)
      if match == "FIXME" then return "#FF0000" end
      return "yellow"
    end
rules:
  - name: markers
    pattern: 'TODO|FIXME'
    format:
      - key: severity
        lua: severity
      - key: color
        lua: tint
`})

	rs, err := c.Load("notes.yaml")
	require.NoError(t, err)
	defer rs.Close()

	assert.Equal(t, "notes", rs.Name)

	out, err := rs.Compute("TODO FIXME")
	require.NoError(t, err)
	assert.Equal(t, int64(1), attr(t, out, 0, "severity"))
	assert.Equal(t, int64(2), attr(t, out, 5, "severity"))
	assert.Equal(t, core.ColorYellow, attr(t, out, 0, attributed.KeyColor))
	assert.Equal(t, core.ColorRed, attr(t, out, 5, attributed.KeyColor))
}

func TestLoadJSONWithGroupAndRegexp2(t *testing.T) {
	c := newCompiler(map[string]string{"links.json": `{
  "rules": [
    {
      "name": "link",
      "pattern": "\\[([^\\]]+)\\]\\(([^)]+)\\)",
      "group": 1,
      "format": [{"traits": ["italic"]}]
    },
    {
      "name": "quoted",
      "syntax": "regexp2",
      "pattern": "(?<=\")\\w+(?=\")",
      "format": [{"key": "quoted", "value": true}, {"key": "weight", "value": 3}]
    }
  ]
}`})

	rs, err := c.Load("links.json")
	require.NoError(t, err)

	out, err := rs.Compute(`[go](x) "hi"`)
	require.NoError(t, err)

	font := attr(t, out, 1, attributed.KeyFont).(core.Font)
	assert.True(t, font.Traits.Has(core.TraitItalic))
	font = attr(t, out, 0, attributed.KeyFont).(core.Font)
	assert.False(t, font.Traits.Has(core.TraitItalic))

	assert.Equal(t, true, attr(t, out, 9, "quoted"))
	assert.Equal(t, int64(3), attr(t, out, 9, "weight"))
	_, ok := out.Attribute(8, "quoted")
	assert.False(t, ok)
}

func TestLoadIncludesAndPreset(t *testing.T) {
	c := newCompiler(map[string]string{
		"base.toml": `
[defaults]
color = "gray"

[[rules]]
name = "base"
pattern = "a"
[[rules.format]]
key = "from"
value = "base"
`,
		"main.toml": `
"@include" = "base.toml"
preset = "todo"

[[rules]]
name = "main"
pattern = "a"
[[rules.format]]
key = "from"
value = "main"
`,
	})

	rs, err := c.Load("main.toml")
	require.NoError(t, err)

	assert.Equal(t, core.ColorGray, rs.Defaults.TextColor)
	todo := highlight.TodoRules(highlight.DarkPalette())
	require.Len(t, rs.Rules, len(todo)+2)
	assert.Equal(t, "todo", rs.Rules[0].Name)
	assert.Equal(t, "base", rs.Rules[len(todo)].Name)
	assert.Equal(t, "main", rs.Rules[len(todo)+1].Name)

	out, err := rs.Compute("a")
	require.NoError(t, err)
	assert.Equal(t, "main", attr(t, out, 0, "from"))
}

func TestScriptPath(t *testing.T) {
	c := newCompiler(map[string]string{
		"cfg/rules.toml": `
[script]
path = "fn.lua"

[[rules]]
pattern = "x+"
[[rules.format]]
key = "len"
lua = "len"
`,
		"cfg/fn.lua": `function len(m) return #m end`,
	})

	rs, err := c.Load("cfg/rules.toml")
	require.NoError(t, err)
	defer rs.Close()

	out, err := rs.Compute("xxx")
	require.NoError(t, err)
	assert.Equal(t, int64(3), attr(t, out, 0, "len"))
}

func TestMatchIntFailureIsComputationError(t *testing.T) {
	c := newCompiler(nil)
	rs, err := c.Parse("n.toml", []byte(`
[[rules]]
name = "n"
pattern = '\d+'
[[rules.format]]
key = "n"
match = "int"
`))
	require.NoError(t, err)

	_, err = rs.Compute("99999999999999999999")
	var ace *highlight.AttributeComputationError
	require.True(t, errors.As(err, &ace))
	assert.Equal(t, attributed.Key("n"), ace.Key)
}

func TestErrorsAreAggregated(t *testing.T) {
	c := newCompiler(nil)
	_, err := c.Parse("bad.toml", []byte(`
colour = "red"

[defaults]
color = "not-a-color"

[[rules]]
name = "broken"
pattern = "("

[[rules]]
name = "traits"
pattern = "x"
[[rules.format]]
traits = ["shiny"]

[[rules]]
name = "lua"
pattern = "x"
[[rules.format]]
key = "v"
lua = "missing"

[[rules]]
name = "group"
pattern = "x"
group = 2
[[rules.format]]
traits = ["bold"]

[[rules]]
name = "both"
pattern = "x"
[[rules.format]]
key = "v"
value = 1
match = "string"

[[rules]]
pattern = "x"
[[rules.format]]
value = 1
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	var list *ErrorList
	require.True(t, errors.As(err, &list))
	assert.Equal(t, "bad.toml", list.Source)

	fields := make([]string, 0, len(list.Errors))
	for _, e := range list.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{
		"colour",
		"defaults.color",
		"rules[0].pattern",
		"rules[1].format[0].traits",
		"rules[2].format[0].lua",
		"rules[3]",
		"rules[4].format[0]",
		"rules[5].format[0].value",
	}, fields)

	assert.True(t, errors.Is(list.Errors[6], ErrInvalid))
	assert.Contains(t, err.Error(), "8 problem(s)")
	assert.True(t, errors.Is(list.Errors[5], highlight.ErrInvalidRule))
}

func TestRequiredFields(t *testing.T) {
	c := newCompiler(nil)
	_, err := c.Parse("r.toml", []byte(`
[[rules]]
name = "nopattern"
[[rules.format]]
traits = ["bold"]

[[rules]]
pattern = "x"
[[rules.format]]
key = "k"

[[rules]]
pattern = "x"
[[rules.format]]
match = "string"
key = ""
`))
	var list *ErrorList
	require.True(t, errors.As(err, &list))

	var msgs []string
	for _, e := range list.Errors {
		msgs = append(msgs, e.Error())
	}
	joined := strings.Join(msgs, "\n")
	assert.Contains(t, joined, "rules[0].pattern: is required")
	assert.Contains(t, joined, "rules[1].format[0].key: requires one of value, match, lua")
	assert.Contains(t, joined, "rules[2].format[0].key: must not be empty")
}

func TestLuaWithoutScript(t *testing.T) {
	c := newCompiler(nil)
	_, err := c.Parse("r.toml", []byte(`
[[rules]]
pattern = "x"
[[rules.format]]
key = "k"
lua = "f"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a [script] block")
}

func TestUnknownPreset(t *testing.T) {
	c := newCompiler(nil)
	_, err := c.Parse("r.toml", []byte(`preset = "cobol"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown preset "cobol"`)
}

func TestPatternCache(t *testing.T) {
	c := newCompiler(map[string]string{"a.toml": notesTOML, "b.toml": notesTOML})

	a, err := c.Load("a.toml")
	require.NoError(t, err)
	b, err := c.Load("b.toml")
	require.NoError(t, err)

	assert.Equal(t, 2, c.CachedPatterns())
	assert.Same(t, a.Rules[0].Pattern, b.Rules[0].Pattern)
	assert.NotEqual(t, a.ID, b.ID)

	p1, err := c.Pattern("x", highlight.SyntaxRE2)
	require.NoError(t, err)
	p2, err := c.Pattern("x", highlight.SyntaxRegexp2)
	require.NoError(t, err)
	assert.NotSame(t, p1, p2)
}

func TestDefaultsFallback(t *testing.T) {
	base := core.Defaults{Font: core.Font{Family: "Fira", Size: 10}, TextColor: core.ColorGreen}
	c := newCompiler(nil, WithDefaults(base))

	rs, err := c.Parse("r.toml", []byte(`
[defaults.font]
traits = ["monospace"]
`))
	require.NoError(t, err)
	assert.Equal(t, core.Font{Family: "Fira", Size: 10, Traits: core.TraitMonospace}, rs.Defaults.Font)
	assert.Equal(t, core.ColorGreen, rs.Defaults.TextColor)
	assert.Equal(t, "r", rs.Name)
}
