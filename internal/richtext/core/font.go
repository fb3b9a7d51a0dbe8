package core

import (
	"fmt"
	"strings"
)

// FontTrait is a set of symbolic font traits (bold, italic, ...).
// Traits compose by union and never replace the rest of the font.
type FontTrait uint16

// Font trait flags.
const (
	TraitBold FontTrait = 1 << iota
	TraitItalic
	TraitExpanded
	TraitCondensed
	TraitMonospace
	TraitTightLeading
	TraitLooseLeading

	TraitNone FontTrait = 0
)

var traitNames = []struct {
	trait FontTrait
	name  string
}{
	{TraitBold, "bold"},
	{TraitItalic, "italic"},
	{TraitExpanded, "expanded"},
	{TraitCondensed, "condensed"},
	{TraitMonospace, "monospace"},
	{TraitTightLeading, "tight-leading"},
	{TraitLooseLeading, "loose-leading"},
}

// Has returns true if the set contains every trait in t.
func (f FontTrait) Has(t FontTrait) bool {
	return f&t == t
}

// With returns the union of both sets.
func (f FontTrait) With(t FontTrait) FontTrait {
	return f | t
}

// IsEmpty reports whether no trait is set.
func (f FontTrait) IsEmpty() bool {
	return f == TraitNone
}

// Names returns the trait names in declaration order.
func (f FontTrait) Names() []string {
	names := make([]string, 0, len(traitNames))
	for _, tn := range traitNames {
		if f.Has(tn.trait) {
			names = append(names, tn.name)
		}
	}
	return names
}

// String returns the traits joined with '|', or "none".
func (f FontTrait) String() string {
	if f.IsEmpty() {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}

// ParseFontTrait parses a single trait name.
func ParseFontTrait(name string) (FontTrait, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, tn := range traitNames {
		if tn.name == name {
			return tn.trait, nil
		}
	}
	return TraitNone, fmt.Errorf("unknown font trait %q", name)
}

// ParseFontTraits parses and unions a list of trait names.
func ParseFontTraits(names []string) (FontTrait, error) {
	var set FontTrait
	for _, n := range names {
		t, err := ParseFontTrait(n)
		if err != nil {
			return TraitNone, err
		}
		set = set.With(t)
	}
	return set, nil
}

// Font is an abstract font descriptor supplied by the host.
type Font struct {
	Family string
	Size   float64
	Traits FontTrait
}

// WithTraits returns a copy of the font with t unioned into its traits.
func (f Font) WithTraits(t FontTrait) Font {
	f.Traits = f.Traits.With(t)
	return f
}

// Equal returns true if both descriptors are identical.
func (f Font) Equal(other Font) bool {
	return f.Family == other.Family && f.Size == other.Size && f.Traits == other.Traits
}

func (f Font) String() string {
	return fmt.Sprintf("%s %gpt [%s]", f.Family, f.Size, f.Traits)
}

// Defaults are the baseline attributes applied to the whole text before any
// rule runs.
type Defaults struct {
	Font      Font
	TextColor Color
}

// DefaultDefaults returns a monospace 13pt font in the host's default color.
func DefaultDefaults() Defaults {
	return Defaults{
		Font:      Font{Family: "monospace", Size: 13},
		TextColor: ColorDefault,
	}
}
