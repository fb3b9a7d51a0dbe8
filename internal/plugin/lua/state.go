package lua

import (
	"context"
	"errors"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds a single script load or function call.
const DefaultExecutionTimeout = time.Second

// State wraps a sandboxed gopher-lua state.
// Calls are serialized; a State is safe for concurrent use.
type State struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the per-call execution timeout.
// Zero or negative disables the timeout.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		CallStackSize:       120,
		RegistrySize:        1024 * 20,
		IncludeGoStackTrace: false,
	})
	openSafeLibraries(L)
	installSandbox(L)

	s := &State{
		L:       L,
		timeout: DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load creates a state and runs source in it, defining its globals.
func Load(source string, opts ...StateOption) (*State, error) {
	s := NewState(opts...)
	if err := s.DoString(source); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// DoString executes Lua code.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	cancel := s.withDeadline()
	defer cancel()

	if err := s.L.DoString(code); err != nil {
		return s.translate("<chunk>", err)
	}
	return nil
}

// HasFunction reports whether a global function with the given name exists.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Invoke calls the global function fn with Go arguments and returns its
// first result converted to a Go value.
func (s *State) Invoke(fn string, args ...any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	f := s.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return nil, &CallError{Function: fn, Err: ErrFunctionNotFound}
	}

	b := bridge{L: s.L}
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = b.toLua(a)
	}

	cancel := s.withDeadline()
	defer cancel()

	if err := s.L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, largs...); err != nil {
		return nil, s.translate(fn, err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return b.toGo(ret), nil
}

// Close releases the Lua state. Subsequent calls return ErrStateClosed.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

// withDeadline installs a timeout context on the state and returns a
// function that removes it. Must be called with s.mu held.
func (s *State) withDeadline() func() {
	if s.timeout <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.L.SetContext(ctx)
	return func() {
		s.L.RemoveContext()
		cancel()
	}
}

// translate maps gopher-lua errors into package errors. Must be called with
// s.mu held, before the deadline is removed.
func (s *State) translate(fn string, err error) error {
	if ctx := s.L.Context(); ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &CallError{Function: fn, Err: ErrExecutionTimeout}
	}
	return &CallError{Function: fn, Err: err}
}
