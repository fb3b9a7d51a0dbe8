package highlight

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/dshills/richlight/internal/richtext/core"
)

// Syntax selects the regular expression engine behind a Pattern.
type Syntax string

// Supported pattern syntaxes.
const (
	// SyntaxRE2 uses the standard library engine (linear time, no
	// look-around or back-references).
	SyntaxRE2 Syntax = "re2"
	// SyntaxRegexp2 uses a backtracking engine supporting look-around and
	// back-references, bounded by a match timeout.
	SyntaxRegexp2 Syntax = "regexp2"
)

// DefaultMatchTimeout bounds a single regexp2 search.
const DefaultMatchTimeout = 250 * time.Millisecond

// ParseSyntax parses a syntax name; the empty string means SyntaxRE2.
func ParseSyntax(name string) (Syntax, error) {
	switch Syntax(strings.ToLower(strings.TrimSpace(name))) {
	case "", SyntaxRE2:
		return SyntaxRE2, nil
	case SyntaxRegexp2:
		return SyntaxRegexp2, nil
	default:
		return "", fmt.Errorf("unknown pattern syntax %q", name)
	}
}

// Group is one capture group of a match.
type Group struct {
	Range   core.Range
	Matched bool
}

// Match is a single pattern match. Groups[0] is the whole match.
type Match struct {
	Groups []Group
}

// Range returns the range of the whole match.
func (m Match) Range() core.Range {
	return m.Groups[0].Range
}

// Group returns the range of capture group n and whether it participated.
func (m Match) Group(n int) (core.Range, bool) {
	if n < 0 || n >= len(m.Groups) || !m.Groups[n].Matched {
		return core.Range{}, false
	}
	return m.Groups[n].Range, true
}

// Pattern finds non-overlapping matches, left to right, in character
// offsets. Implementations must be safe for concurrent use.
type Pattern interface {
	FindAll(src *Source) ([]Match, error)
	// NumGroups returns the number of capture groups, excluding the whole match.
	NumGroups() int
	String() string
}

// Compile compiles expr with the given syntax.
func Compile(expr string, syntax Syntax) (Pattern, error) {
	switch syntax {
	case "", SyntaxRE2:
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		return &RE2Pattern{re: re}, nil
	case SyntaxRegexp2:
		return CompileRegexp2(expr, DefaultMatchTimeout)
	default:
		return nil, fmt.Errorf("unknown pattern syntax %q", syntax)
	}
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string, syntax Syntax) Pattern {
	p, err := Compile(expr, syntax)
	if err != nil {
		panic(fmt.Sprintf("highlight: Compile(%q): %v", expr, err))
	}
	return p
}

// RE2Pattern wraps a standard library regular expression.
type RE2Pattern struct {
	re *regexp.Regexp
}

// NewRE2Pattern wraps an already compiled expression.
func NewRE2Pattern(re *regexp.Regexp) *RE2Pattern {
	return &RE2Pattern{re: re}
}

// FindAll implements Pattern.
func (p *RE2Pattern) FindAll(src *Source) ([]Match, error) {
	locs := p.re.FindAllStringSubmatchIndex(src.Text(), -1)
	if len(locs) == 0 {
		return nil, nil
	}
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		groups := make([]Group, len(loc)/2)
		for g := range groups {
			start, end := loc[2*g], loc[2*g+1]
			if start < 0 {
				continue
			}
			groups[g] = Group{
				Range:   core.NewRange(src.RuneOffset(start), src.RuneOffset(end)),
				Matched: true,
			}
		}
		matches = append(matches, Match{Groups: groups})
	}
	return matches, nil
}

// NumGroups implements Pattern.
func (p *RE2Pattern) NumGroups() int {
	return p.re.NumSubexp()
}

func (p *RE2Pattern) String() string {
	return p.re.String()
}

// Regexp2Pattern wraps a backtracking regexp2 expression.
type Regexp2Pattern struct {
	re   *regexp2.Regexp
	expr string
}

// CompileRegexp2 compiles expr for the regexp2 engine with the given
// per-search timeout (zero means no timeout).
func CompileRegexp2(expr string, timeout time.Duration) (*Regexp2Pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return &Regexp2Pattern{re: re, expr: expr}, nil
}

// FindAll implements Pattern. regexp2 reports character offsets directly.
func (p *Regexp2Pattern) FindAll(src *Source) ([]Match, error) {
	var matches []Match
	m, err := p.re.FindStringMatch(src.Text())
	prevEnd := 0
	for err == nil && m != nil {
		if m.Index < prevEnd {
			break
		}
		groups := make([]Group, p.NumGroups()+1)
		for i := range groups {
			g := m.GroupByNumber(i)
			if g == nil || len(g.Captures) == 0 {
				continue
			}
			groups[i] = Group{Range: core.NewRange(g.Index, g.Index+g.Length), Matched: true}
		}
		groups[0] = Group{Range: core.NewRange(m.Index, m.Index+m.Length), Matched: true}
		matches = append(matches, Match{Groups: groups})
		prevEnd = m.Index + m.Length
		m, err = p.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// NumGroups implements Pattern.
func (p *Regexp2Pattern) NumGroups() int {
	return len(p.re.GetGroupNumbers()) - 1
}

func (p *Regexp2Pattern) String() string {
	return p.expr
}
