package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format identifies a document encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf returns the format implied by a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

func (f Format) decode(source string, data []byte) (map[string]any, error) {
	switch f {
	case FormatTOML:
		return decodeTOML(source, data)
	case FormatYAML:
		return decodeYAML(source, data)
	case FormatJSON:
		return decodeJSON(source, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

func decodeTOML(source string, data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}
	return doc, nil
}

func decodeYAML(source string, data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return normalizeYAML(doc), nil
}

// normalizeYAML converts map[any]any values, which yaml.v3 produces for
// non-string keys, into map[string]any.
func normalizeYAML(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeYAMLValue(v)
	}
	return m
}

func normalizeYAMLValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return normalizeYAML(v)
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = normalizeYAMLValue(val)
		}
		return out
	case []any:
		for i := range v {
			v[i] = normalizeYAMLValue(v[i])
		}
		return v
	default:
		return v
	}
}

func decodeJSON(source string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: source, Message: "invalid JSON", Err: ErrInvalidJSON}
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, &ParseError{Path: source, Message: "top-level value must be an object", Err: ErrInvalidJSON}
	}
	doc, _ := result.Value().(map[string]any)
	return doc, nil
}
