package highlight

import (
	"fmt"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// ValueFunc computes an attribute value from the matched substring, the
// defaults and the matched range.
type ValueFunc func(match string, defaults core.Defaults, r core.Range) (any, error)

// Static returns a ValueFunc that always yields v.
func Static(v any) ValueFunc {
	return func(string, core.Defaults, core.Range) (any, error) {
		return v, nil
	}
}

// FormattingRule is one action applied to every match of a HighlightRule.
// It may set a keyed attribute, add font traits, or both.
type FormattingRule struct {
	Key    attributed.Key
	Value  ValueFunc
	Traits core.FontTrait
}

// Attribute sets key to a static value.
func Attribute(key attributed.Key, v any) FormattingRule {
	return FormattingRule{Key: key, Value: Static(v)}
}

// Computed sets key to the value returned by fn.
func Computed(key attributed.Key, fn ValueFunc) FormattingRule {
	return FormattingRule{Key: key, Value: fn}
}

// Traits adds font traits.
func Traits(traits ...core.FontTrait) FormattingRule {
	var set core.FontTrait
	for _, t := range traits {
		set = set.With(t)
	}
	return FormattingRule{Traits: set}
}

// Color sets the text color.
func Color(c core.Color) FormattingRule {
	return Attribute(attributed.KeyColor, c)
}

// Validate checks that the rule does something and that key and value are
// declared together.
func (f FormattingRule) Validate() error {
	switch {
	case f.Key != "" && f.Value == nil:
		return fmt.Errorf("%w: key %q has no value", ErrInvalidRule, f.Key)
	case f.Key == "" && f.Value != nil:
		return fmt.Errorf("%w: value without a key", ErrInvalidRule)
	case f.Key == "" && f.Traits.IsEmpty():
		return fmt.Errorf("%w: formatting rule sets neither a key nor traits", ErrInvalidRule)
	}
	return nil
}

// HighlightRule pairs a pattern with the formatting applied to its matches.
type HighlightRule struct {
	// Name identifies the rule in errors; optional.
	Name string

	Pattern Pattern

	// Group selects the capture group to format (0 for the whole match).
	// Matches where the group did not participate are skipped.
	Group int

	FormattingRules []FormattingRule
}

// NewRule builds and validates a rule over the whole match.
func NewRule(name string, pattern Pattern, formatting ...FormattingRule) (HighlightRule, error) {
	r := HighlightRule{Name: name, Pattern: pattern, FormattingRules: formatting}
	if err := r.Validate(); err != nil {
		return HighlightRule{}, err
	}
	return r, nil
}

// MustRule is like NewRule but panics on error.
func MustRule(name string, pattern Pattern, formatting ...FormattingRule) HighlightRule {
	r, err := NewRule(name, pattern, formatting...)
	if err != nil {
		panic(err)
	}
	return r
}

// Validate reports configuration errors.
func (r HighlightRule) Validate() error {
	if r.Pattern == nil {
		return fmt.Errorf("%w: %s has no pattern", ErrInvalidRule, r.label(-1))
	}
	if r.Group < 0 || r.Group > r.Pattern.NumGroups() {
		return fmt.Errorf("%w: %s selects group %d of a pattern with %d groups",
			ErrInvalidRule, r.label(-1), r.Group, r.Pattern.NumGroups())
	}
	for i, f := range r.FormattingRules {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("%s format[%d]: %w", r.label(-1), i, err)
		}
	}
	return nil
}

func (r HighlightRule) label(index int) string {
	switch {
	case r.Name != "":
		return fmt.Sprintf("rule %q", r.Name)
	case index >= 0:
		return fmt.Sprintf("rule[%d]", index)
	default:
		return "rule"
	}
}
