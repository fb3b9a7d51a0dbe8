package attributed

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/dshills/richlight/internal/richtext/core"
)

// MarshalJSON encodes the text and its coalesced runs:
//
//	{"text":"...","runs":[{"start":0,"end":5,"attributes":{"color":"#FF0000"}}]}
//
// Attribute keys are written in sorted order so equal texts encode to equal
// bytes. Fonts, colors and trait sets use their portable forms.
func (t *Text) MarshalJSON() ([]byte, error) {
	doc, err := sjson.SetBytes([]byte(`{}`), "text", t.s)
	if err != nil {
		return nil, err
	}
	if doc, err = sjson.SetRawBytes(doc, "runs", []byte(`[]`)); err != nil {
		return nil, err
	}

	for _, r := range t.Runs() {
		item, err := encodeRun(r)
		if err != nil {
			return nil, err
		}
		if doc, err = sjson.SetRawBytes(doc, "runs.-1", item); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func encodeRun(r Run) ([]byte, error) {
	item, err := sjson.SetBytes([]byte(`{}`), "start", r.Range.Start)
	if err != nil {
		return nil, err
	}
	if item, err = sjson.SetBytes(item, "end", r.Range.End); err != nil {
		return nil, err
	}
	if item, err = sjson.SetRawBytes(item, "attributes", []byte(`{}`)); err != nil {
		return nil, err
	}
	for _, k := range r.Attributes.Keys() {
		path := "attributes." + escapePath(string(k))
		if item, err = sjson.SetBytes(item, path, portable(r.Attributes[k])); err != nil {
			return nil, fmt.Errorf("encoding attribute %q: %w", k, err)
		}
	}
	return item, nil
}

func portable(v any) any {
	switch v := v.(type) {
	case core.Font:
		return map[string]any{
			"family": v.Family,
			"size":   v.Size,
			"traits": v.Traits.Names(),
		}
	case core.Color:
		return v.String()
	case core.FontTrait:
		return v.Names()
	case core.Range:
		return []int{v.Start, v.End}
	default:
		return v
	}
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
)

func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
