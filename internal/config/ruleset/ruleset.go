// Package ruleset turns rule-set documents into highlight rules.
//
// A document names its defaults, an ordered list of rules and, optionally,
// a Lua script whose functions compute attribute values. Everything is
// validated at load time: patterns are compiled, traits and colors parsed
// and Lua functions resolved, and every problem found is reported at once
// in an *ErrorList.
package ruleset

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/dshills/richlight/internal/config/loader"
	"github.com/dshills/richlight/internal/highlight"
	"github.com/dshills/richlight/internal/plugin/lua"
	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// RuleSet is a decoded, validated rule-set document.
type RuleSet struct {
	ID       uuid.UUID
	Name     string
	Source   string
	Defaults core.Defaults
	Rules    []highlight.HighlightRule

	script *lua.State
}

// Compute runs the engine with the rule set's defaults and rules.
func (rs *RuleSet) Compute(text string) (*attributed.Text, error) {
	return highlight.Compute(text, rs.Defaults, rs.Rules)
}

// Close releases the rule set's Lua state, if any. Rules that call into
// Lua fail after Close.
func (rs *RuleSet) Close() {
	if rs.script != nil {
		rs.script.Close()
	}
}

// Compiler decodes rule-set documents. Compiled patterns are shared across
// documents loaded by the same Compiler.
type Compiler struct {
	loader   *loader.Loader
	fs       loader.FileSystem
	patterns *cache.Cache
	defaults core.Defaults
	palette  highlight.Palette
	timeout  time.Duration
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithFS reads documents, includes and script files from fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Compiler) {
		c.fs = fsys
	}
}

// WithDefaults sets the defaults used where a document omits them.
func WithDefaults(d core.Defaults) Option {
	return func(c *Compiler) {
		c.defaults = d
	}
}

// WithPalette sets the palette for presets a document extends.
func WithPalette(p highlight.Palette) Option {
	return func(c *Compiler) {
		c.palette = p
	}
}

// WithScriptTimeout bounds each Lua call made by loaded rule sets.
func WithScriptTimeout(d time.Duration) Option {
	return func(c *Compiler) {
		c.timeout = d
	}
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		fs:       loader.DefaultFS(),
		patterns: cache.New(30*time.Minute, 10*time.Minute),
		defaults: core.DefaultDefaults(),
		palette:  highlight.DarkPalette(),
		timeout:  lua.DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.loader = loader.New(loader.WithFS(c.fs), loader.WithAppendKeys("rules"))
	return c
}

// Load reads and decodes the document at path.
func (c *Compiler) Load(path string) (*RuleSet, error) {
	doc, err := c.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return c.decode(doc, path, filepath.Dir(path))
}

// Parse decodes a document held in memory. The format comes from the
// extension of name; includes are not resolved.
func (c *Compiler) Parse(name string, data []byte) (*RuleSet, error) {
	doc, err := c.loader.Parse(name, data)
	if err != nil {
		return nil, err
	}
	return c.decode(doc, name, filepath.Dir(name))
}

// Decode builds a rule set from an already-decoded document.
func (c *Compiler) Decode(doc map[string]any, source string) (*RuleSet, error) {
	return c.decode(doc, source, filepath.Dir(source))
}

// Pattern compiles expr, reusing an earlier compilation when possible.
func (c *Compiler) Pattern(expr string, syntax highlight.Syntax) (highlight.Pattern, error) {
	key := string(syntax) + ":" + expr
	if p, ok := c.patterns.Get(key); ok {
		return p.(highlight.Pattern), nil
	}
	p, err := highlight.Compile(expr, syntax)
	if err != nil {
		return nil, err
	}
	c.patterns.SetDefault(key, p)
	return p, nil
}

// CachedPatterns returns the number of compiled patterns held.
func (c *Compiler) CachedPatterns() int {
	return c.patterns.ItemCount()
}

var defaultCompiler = NewCompiler()

// Load reads a rule set from the OS file system with default options.
func Load(path string) (*RuleSet, error) {
	return defaultCompiler.Load(path)
}
