package ruleset

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/richlight/internal/highlight"
	"github.com/dshills/richlight/internal/plugin/lua"
	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

var (
	topKeys      = keySet("name", "preset", "defaults", "rules", "script")
	defaultsKeys = keySet("font", "color")
	fontKeys     = keySet("family", "size", "traits")
	scriptKeys   = keySet("source", "path")
	ruleKeys     = keySet("name", "pattern", "syntax", "group", "format")
	formatKeys   = keySet("traits", "key", "value", "match", "lua")
)

// Match kinds for values computed from the matched substring.
const (
	MatchString = "string"
	MatchInt    = "int"
	MatchFloat  = "float"
	MatchColor  = "color"
)

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

type decoder struct {
	c        *Compiler
	errs     *ErrorList
	dir      string
	defaults core.Defaults
	script   *lua.State
}

func (c *Compiler) decode(doc map[string]any, source, dir string) (*RuleSet, error) {
	d := &decoder{
		c:        c,
		errs:     &ErrorList{Source: source},
		dir:      dir,
		defaults: c.defaults,
	}
	d.checkKeys("", doc, topKeys)

	rs := &RuleSet{ID: uuid.New(), Source: source}
	rs.Name, _ = d.optString("name", doc["name"])
	if rs.Name == "" {
		rs.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	d.decodeDefaults(doc["defaults"])
	rs.Defaults = d.defaults
	d.decodeScript(doc["script"])

	if preset, ok := d.optString("preset", doc["preset"]); ok && preset != "" {
		rules, found := highlight.Preset(preset, d.c.palette)
		if !found {
			d.errs.addf("preset", "unknown preset %q (have %s)", preset, strings.Join(highlight.PresetNames(), ", "))
		}
		rs.Rules = append(rs.Rules, rules...)
	}
	rs.Rules = append(rs.Rules, d.decodeRules(doc["rules"])...)

	if err := d.errs.asError(); err != nil {
		if d.script != nil {
			d.script.Close()
		}
		return nil, err
	}
	rs.script = d.script
	return rs, nil
}

func (d *decoder) checkKeys(field string, m map[string]any, allowed map[string]bool) {
	var unknown []string
	for k := range m {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		d.errs.addf(join(field, k), "unknown field")
	}
}

func (d *decoder) decodeDefaults(v any) {
	if v == nil {
		return
	}
	m, ok := v.(map[string]any)
	if !ok {
		d.errs.addf("defaults", "must be a table, got %T", v)
		return
	}
	d.checkKeys("defaults", m, defaultsKeys)

	if f, ok := m["font"]; ok {
		if font, ok := d.decodeFont("defaults.font", f, d.defaults.Font); ok {
			d.defaults.Font = font
		}
	}
	if c, ok := m["color"]; ok {
		if color, ok := d.decodeColor("defaults.color", c); ok {
			d.defaults.TextColor = color
		}
	}
}

func (d *decoder) decodeFont(field string, v any, base core.Font) (core.Font, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		d.errs.addf(field, "must be a table, got %T", v)
		return core.Font{}, false
	}
	d.checkKeys(field, m, fontKeys)

	font := base
	valid := true
	if f, ok := m["family"]; ok {
		if s, ok := d.optString(join(field, "family"), f); ok {
			font.Family = s
		} else {
			valid = false
		}
	}
	if s, ok := m["size"]; ok {
		size, ok := asFloat(s)
		if !ok || size <= 0 {
			d.errs.addf(join(field, "size"), "must be a positive number")
			valid = false
		} else {
			font.Size = size
		}
	}
	if t, ok := m["traits"]; ok {
		traits, ok := d.decodeTraits(join(field, "traits"), t)
		if !ok {
			valid = false
		}
		font.Traits = traits
	}
	return font, valid
}

func (d *decoder) decodeColor(field string, v any) (core.Color, bool) {
	s, ok := v.(string)
	if !ok {
		d.errs.addf(field, "color must be a string, got %T", v)
		return core.Color{}, false
	}
	c, err := core.ParseColor(s)
	if err != nil {
		d.errs.add(field, err)
		return core.Color{}, false
	}
	return c, true
}

func (d *decoder) decodeTraits(field string, v any) (core.FontTrait, bool) {
	names, ok := asStringList(v)
	if !ok {
		d.errs.addf(field, "must be a list of trait names")
		return core.TraitNone, false
	}
	traits, err := core.ParseFontTraits(names)
	if err != nil {
		d.errs.add(field, err)
		return core.TraitNone, false
	}
	return traits, true
}

func (d *decoder) decodeScript(v any) {
	if v == nil {
		return
	}
	m, ok := v.(map[string]any)
	if !ok {
		d.errs.addf("script", "must be a table, got %T", v)
		return
	}
	d.checkKeys("script", m, scriptKeys)

	source, hasSource := d.optString("script.source", m["source"])
	path, hasPath := d.optString("script.path", m["path"])
	switch {
	case hasSource && hasPath:
		d.errs.addf("script", "set either source or path, not both")
		return
	case hasPath:
		if !filepath.IsAbs(path) {
			path = filepath.Join(d.dir, path)
		}
		data, err := d.c.fs.ReadFile(path)
		if err != nil {
			d.errs.add("script.path", err)
			return
		}
		source = string(data)
	case !hasSource:
		d.errs.addf("script", "needs source or path")
		return
	}

	state, err := lua.Load(source, lua.WithExecutionTimeout(d.c.timeout))
	if err != nil {
		d.errs.add("script", err)
		return
	}
	d.script = state
}

func (d *decoder) decodeRules(v any) []highlight.HighlightRule {
	if v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		d.errs.addf("rules", "must be a list, got %T", v)
		return nil
	}

	rules := make([]highlight.HighlightRule, 0, len(list))
	for i, item := range list {
		field := fmt.Sprintf("rules[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			d.errs.addf(field, "must be a table, got %T", item)
			continue
		}
		if r, ok := d.decodeRule(field, m); ok {
			rules = append(rules, r)
		}
	}
	return rules
}

func (d *decoder) decodeRule(field string, m map[string]any) (highlight.HighlightRule, bool) {
	d.checkKeys(field, m, ruleKeys)
	before := len(d.errs.Errors)

	var r highlight.HighlightRule
	r.Name, _ = d.optString(join(field, "name"), m["name"])

	syntax := highlight.SyntaxRE2
	if s, ok := d.optString(join(field, "syntax"), m["syntax"]); ok {
		parsed, err := highlight.ParseSyntax(s)
		if err != nil {
			d.errs.add(join(field, "syntax"), err)
		} else {
			syntax = parsed
		}
	}

	expr, ok := d.optString(join(field, "pattern"), m["pattern"])
	if !ok || expr == "" {
		if _, present := m["pattern"]; !present || ok {
			d.errs.addf(join(field, "pattern"), "is required")
		}
	} else {
		p, err := d.c.Pattern(expr, syntax)
		if err != nil {
			d.errs.add(join(field, "pattern"), err)
		} else {
			r.Pattern = p
		}
	}

	if g, present := m["group"]; present {
		n, ok := asInt(g)
		if !ok || n < 0 {
			d.errs.addf(join(field, "group"), "must be a non-negative integer")
		} else {
			r.Group = n
		}
	}

	if f, present := m["format"]; present {
		list, ok := f.([]any)
		if !ok {
			d.errs.addf(join(field, "format"), "must be a list, got %T", f)
		}
		for i, item := range list {
			ffield := fmt.Sprintf("%s.format[%d]", field, i)
			fm, ok := item.(map[string]any)
			if !ok {
				d.errs.addf(ffield, "must be a table, got %T", item)
				continue
			}
			if fr, ok := d.decodeFormat(ffield, fm); ok {
				r.FormattingRules = append(r.FormattingRules, fr)
			}
		}
	}

	if len(d.errs.Errors) > before {
		return highlight.HighlightRule{}, false
	}
	if err := r.Validate(); err != nil {
		d.errs.add(field, err)
		return highlight.HighlightRule{}, false
	}
	return r, true
}

func (d *decoder) decodeFormat(field string, m map[string]any) (highlight.FormattingRule, bool) {
	d.checkKeys(field, m, formatKeys)
	before := len(d.errs.Errors)

	var f highlight.FormattingRule
	if t, ok := m["traits"]; ok {
		f.Traits, _ = d.decodeTraits(join(field, "traits"), t)
	}
	if k, ok := d.optString(join(field, "key"), m["key"]); ok {
		if k == "" {
			d.errs.addf(join(field, "key"), "must not be empty")
		}
		f.Key = attributed.Key(k)
	}

	var sources []string
	for _, name := range []string{"value", "match", "lua"} {
		if _, ok := m[name]; ok {
			sources = append(sources, name)
		}
	}
	switch {
	case len(sources) > 1:
		d.errs.addf(field, "set only one of %s", strings.Join(sources, ", "))
	case len(sources) == 1 && f.Key == "":
		d.errs.addf(join(field, sources[0]), "requires key")
	case len(sources) == 0 && f.Key != "":
		d.errs.addf(join(field, "key"), "requires one of value, match, lua")
	case len(sources) == 0 && f.Traits.IsEmpty() && len(d.errs.Errors) == before:
		d.errs.addf(field, "sets neither traits nor a key")
	case len(sources) == 1:
		f.Value = d.decodeValue(field, sources[0], f.Key, m[sources[0]])
	}

	if len(d.errs.Errors) > before {
		return highlight.FormattingRule{}, false
	}
	return f, true
}

func (d *decoder) decodeValue(field, source string, key attributed.Key, raw any) highlight.ValueFunc {
	switch source {
	case "value":
		v, ok := d.staticValue(join(field, "value"), key, raw)
		if !ok {
			return nil
		}
		return highlight.Static(v)
	case "match":
		kind, ok := d.optString(join(field, "match"), raw)
		if !ok {
			return nil
		}
		fn, err := matchValue(kind)
		if err != nil {
			d.errs.add(join(field, "match"), err)
			return nil
		}
		return coerce(key, fn)
	default:
		name, ok := d.optString(join(field, "lua"), raw)
		if !ok {
			return nil
		}
		if d.script == nil {
			d.errs.addf(join(field, "lua"), "function %q needs a [script] block", name)
			return nil
		}
		if !d.script.HasFunction(name) {
			d.errs.addf(join(field, "lua"), "script defines no function %q", name)
			return nil
		}
		return coerce(key, lua.ValueFunc(d.script, name))
	}
}

func (d *decoder) staticValue(field string, key attributed.Key, raw any) (any, bool) {
	switch key {
	case attributed.KeyColor, attributed.KeyBackground:
		return d.decodeColor(field, raw)
	case attributed.KeyFont:
		return d.decodeFont(field, raw, d.defaults.Font)
	case attributed.KeyUnderline, attributed.KeyStrikethrough:
		b, ok := raw.(bool)
		if !ok {
			d.errs.addf(field, "must be a boolean, got %T", raw)
		}
		return b, ok
	}
	return normalize(raw), true
}

// matchValue returns a ValueFunc deriving the value from the matched text.
func matchValue(kind string) (highlight.ValueFunc, error) {
	switch kind {
	case MatchString:
		return func(m string, _ core.Defaults, _ core.Range) (any, error) {
			return m, nil
		}, nil
	case MatchInt:
		return func(m string, _ core.Defaults, _ core.Range) (any, error) {
			if n, err := strconv.ParseInt(m, 10, 64); err == nil {
				return n, nil
			}
			return strconv.ParseInt(m, 0, 64)
		}, nil
	case MatchFloat:
		return func(m string, _ core.Defaults, _ core.Range) (any, error) {
			return strconv.ParseFloat(m, 64)
		}, nil
	case MatchColor:
		return func(m string, _ core.Defaults, _ core.Range) (any, error) {
			return core.ParseColor(m)
		}, nil
	default:
		return nil, fmt.Errorf("unknown match kind %q (want %s, %s, %s or %s)",
			kind, MatchString, MatchInt, MatchFloat, MatchColor)
	}
}

// coerce converts computed values for color keys into core.Color.
func coerce(key attributed.Key, fn highlight.ValueFunc) highlight.ValueFunc {
	if key != attributed.KeyColor && key != attributed.KeyBackground {
		return fn
	}
	return func(m string, defaults core.Defaults, r core.Range) (any, error) {
		v, err := fn(m, defaults, r)
		if err != nil {
			return nil, err
		}
		switch c := v.(type) {
		case core.Color:
			return c, nil
		case string:
			return core.ParseColor(c)
		default:
			return nil, fmt.Errorf("%s value must be a color, got %T", key, v)
		}
	}
}

func (d *decoder) optString(field string, v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		d.errs.addf(field, "must be a string, got %T", v)
		return "", false
	}
	return s, true
}

func join(field, key string) string {
	if field == "" {
		return key
	}
	return field + "." + key
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case string:
		return []string{list}, true
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// normalize gives numbers one representation whatever the document format:
// integral values become int64, others float64.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	case []any:
		out := make([]any, len(n))
		for i, item := range n {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, item := range n {
			out[k] = normalize(item)
		}
		return out
	}
	return v
}
