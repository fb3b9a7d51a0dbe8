package loader

import (
	"errors"
	"fmt"
)

// Errors returned by the loader.
var (
	// ErrUnsupportedFormat is returned for file extensions with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrIncludeDepth is returned when @include chains nest too deeply.
	ErrIncludeDepth = errors.New("include depth exceeded")

	// ErrInvalidJSON is returned for malformed JSON documents.
	ErrInvalidJSON = errors.New("invalid JSON")
)

// ParseError represents an error while parsing a document.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
