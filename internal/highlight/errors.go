package highlight

import (
	"errors"
	"fmt"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// ErrInvalidRule is wrapped by every rule configuration error.
var ErrInvalidRule = errors.New("invalid highlight rule")

// InvalidRangeError reports a match range outside the text. It should be
// unreachable with a correct Pattern.
type InvalidRangeError = attributed.InvalidRangeError

// AttributeComputationError wraps an error (or panic) raised by a
// FormattingRule's ValueFunc.
type AttributeComputationError struct {
	Rule  string
	Key   attributed.Key
	Range core.Range
	Err   error
}

func (e *AttributeComputationError) Error() string {
	return fmt.Sprintf("%s: computing %q over %s: %v", e.Rule, e.Key, e.Range, e.Err)
}

func (e *AttributeComputationError) Unwrap() error {
	return e.Err
}

// PatternError reports a failed search, such as a regexp2 match timeout.
type PatternError struct {
	Rule    string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: matching %q: %v", e.Rule, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
