// Package loader reads rule-set documents from TOML, YAML and JSON files.
//
// Documents are decoded into generic maps; interpreting them is left to the
// caller. A document may pull in other documents with an "@include" key
// holding a path or a list of paths relative to the including file.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMaxIncludeDepth limits nested @include chains.
const DefaultMaxIncludeDepth = 8

const includeKey = "@include"

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Loader reads documents and resolves their includes.
type Loader struct {
	fs         FileSystem
	maxDepth   int
	appendKeys map[string]bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS sets the file system documents are read from.
func WithFS(fsys FileSystem) Option {
	return func(l *Loader) {
		if fsys != nil {
			l.fs = fsys
		}
	}
}

// WithMaxDepth sets the include depth limit.
func WithMaxDepth(depth int) Option {
	return func(l *Loader) {
		l.maxDepth = depth
	}
}

// WithAppendKeys names top-level list keys that are concatenated across
// includes (included entries first) instead of replaced.
func WithAppendKeys(keys ...string) Option {
	return func(l *Loader) {
		for _, k := range keys {
			l.appendKeys[k] = true
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		fs:         DefaultFS(),
		maxDepth:   DefaultMaxIncludeDepth,
		appendKeys: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the document at path, resolving @include directives.
func (l *Loader) Load(path string) (map[string]any, error) {
	return l.load(path, l.maxDepth)
}

// Parse decodes a single document without resolving includes. The format
// is chosen from the extension of name.
func (l *Loader) Parse(name string, data []byte) (map[string]any, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	return format.decode(name, data)
}

func (l *Loader) load(path string, depth int) (map[string]any, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepth, path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("rule set %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("reading rule set %s: %w", path, err)
	}

	doc, err := l.Parse(path, data)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	includes, ok := doc[includeKey]
	if !ok {
		return doc, nil
	}
	delete(doc, includeKey)

	list, err := includeList(includes)
	if err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}

	baseDir := filepath.Dir(path)
	merged := make(map[string]any)
	for _, inc := range list {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(baseDir, inc)
		}
		incDoc, err := l.load(incPath, depth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", incPath, err)
		}
		merged = l.merge(merged, incDoc)
	}

	// The including document overrides what it includes.
	return l.merge(merged, doc), nil
}

func (l *Loader) merge(dst, src map[string]any) map[string]any {
	appended := make(map[string][]any)
	for key := range l.appendKeys {
		a, aok := dst[key].([]any)
		b, bok := src[key].([]any)
		if aok && bok {
			appended[key] = append(cloneSlice(a), cloneSlice(b)...)
		}
	}

	out := DeepMerge(dst, src)
	for key, list := range appended {
		out[key] = list
	}
	return out
}

func includeList(v any) ([]string, error) {
	switch v := v.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be string or array of strings", includeKey)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be string or array of strings, got %T", includeKey, v)
	}
}
