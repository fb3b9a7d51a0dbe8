package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a call exceeds the execution timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrFunctionNotFound is returned when a global function is missing.
	ErrFunctionNotFound = errors.New("lua function not found")
)

// CallError wraps an error raised while running a Lua function.
type CallError struct {
	Function string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("lua %s: %v", e.Function, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
