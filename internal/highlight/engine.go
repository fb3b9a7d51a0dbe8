package highlight

import (
	"fmt"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// Compute returns text annotated with the defaults and every rule applied in
// order. It is safe to call concurrently with shared defaults and rules.
func Compute(text string, defaults core.Defaults, rules []HighlightRule) (*attributed.Text, error) {
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule[%d]: %w", i, err)
		}
	}

	src := NewSource(text)
	out := attributed.NewBaseline(text, defaults)

	for i, rule := range rules {
		matches, err := rule.Pattern.FindAll(src)
		if err != nil {
			return nil, &PatternError{Rule: rule.label(i), Pattern: rule.Pattern.String(), Err: err}
		}
		for _, m := range matches {
			r, ok := m.Group(rule.Group)
			if !ok {
				continue
			}
			if !r.Valid(src.Len()) {
				return nil, &InvalidRangeError{Range: r, Length: src.Len()}
			}
			match := src.Slice(r)
			for _, f := range rule.FormattingRules {
				if err := apply(out, f, match, defaults, r, rule.label(i)); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// apply runs one formatting rule over one match range.
func apply(out *attributed.Text, f FormattingRule, match string, defaults core.Defaults, r core.Range, label string) error {
	if !f.Traits.IsEmpty() {
		base, ok := out.FirstFont(r)
		if !ok {
			base = defaults.Font
		}
		if err := out.SetAttribute(r, attributed.KeyFont, base.WithTraits(f.Traits)); err != nil {
			return err
		}
	}

	if f.Key == "" {
		return nil
	}
	v, err := callValue(f.Value, match, defaults, r)
	if err != nil {
		return &AttributeComputationError{Rule: label, Key: f.Key, Range: r, Err: err}
	}
	return out.SetAttribute(r, f.Key, v)
}

func callValue(fn ValueFunc, match string, defaults core.Defaults, r core.Range) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(match, defaults, r)
}
