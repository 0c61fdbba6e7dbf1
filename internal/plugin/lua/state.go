package lua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds one DoFile or DoString.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps gopher-lua with a sandbox and the vec module.
//
// gopher-lua's LState is not goroutine-safe. The mutex keeps Go callers
// from overlapping, and the vec functions call back into the editor on
// the goroutine running the script.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	output           io.Writer

	sandbox *Sandbox
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the time a script may run. Zero disables
// the limit.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithOutput sets where print writes. It defaults to os.Stdout.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.output = w
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
		output:           os.Stdout,
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	state.L = L
	openSafeLibraries(L)

	state.sandbox = NewSandbox(L, state.output)
	state.sandbox.Install()
	return state
}

// openSafeLibraries opens the libraries a macro needs. io, os and debug
// stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoFile executes a Lua file.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.do(ctx, func() error { return s.L.DoFile(path) })
}

// DoString executes a chunk of Lua.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.do(ctx, func() error { return s.L.DoString(code) })
}

func (s *State) do(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.executionTimeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := s.doWithRecovery(fn)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
	}
	return err
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// RegisterModule makes a table of functions available as a global and
// through require.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
	s.L.PreloadModule(name, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	s.sandbox.Allow(name)
}

// Sandbox returns the sandbox.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Later calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
