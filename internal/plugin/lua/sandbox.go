package lua

import (
	"fmt"
	"io"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts a Lua state to what a drawing macro needs: no file
// loading, no modules beyond the safe built-ins and the ones registered
// by the host, and print routed to a writer.
type Sandbox struct {
	L *lua.LState

	mu      sync.Mutex
	out     io.Writer
	modules map[string]bool
}

// NewSandbox creates a sandbox for L that prints to out.
func NewSandbox(L *lua.LState, out io.Writer) *Sandbox {
	return &Sandbox{
		L:   L,
		out: out,
		modules: map[string]bool{
			"string": true,
			"table":  true,
			"math":   true,
		},
	}
}

// Install removes the loaders and replaces print and require.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installPrint()
	s.installRequire()
}

// Allow lets require load a module.
func (s *Sandbox) Allow(module string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[module] = true
}

// Allowed reports whether require may load module.
func (s *Sandbox) Allowed(module string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modules[module]
}

func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// installRequire clears the search paths so nothing is read from disk,
// then guards require with the allow list.
func (s *Sandbox) installRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	original := s.L.GetGlobal("require")
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !s.Allowed(name) {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}
