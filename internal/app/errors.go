package app

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	// ErrNoRuleSet indicates a reload was requested before any rule set was loaded.
	ErrNoRuleSet = errors.New("no rule set loaded")

	// ErrClosed indicates the service has been closed.
	ErrClosed = errors.New("service closed")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "highlight", "load")
	Target string // Target of the operation (e.g., rule-set path)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
