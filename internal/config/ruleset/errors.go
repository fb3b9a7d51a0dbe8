package ruleset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks a document that decodes but describes an unusable rule set.
var ErrInvalid = errors.New("invalid rule set")

// Error reports one problem in a rule-set document.
type Error struct {
	// Field is the document path of the offending value, e.g. "rules[2].pattern".
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports every Error as ErrInvalid.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// ErrorList aggregates every problem found while decoding one document.
type ErrorList struct {
	Source string
	Errors []*Error
}

func (l *ErrorList) add(field string, err error) {
	l.Errors = append(l.Errors, &Error{Field: field, Message: err.Error(), Err: err})
}

func (l *ErrorList) addf(field, format string, args ...any) {
	l.Errors = append(l.Errors, &Error{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (l *ErrorList) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d problem(s)", l.Source, len(l.Errors))
	for _, e := range l.Errors {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Unwrap exposes each problem to errors.Is and errors.As.
func (l *ErrorList) Unwrap() []error {
	out := make([]error, len(l.Errors))
	for i, e := range l.Errors {
		out[i] = e
	}
	return out
}

func (l *ErrorList) asError() error {
	if l == nil || len(l.Errors) == 0 {
		return nil
	}
	return l
}
