package lua

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func TestStateDoString(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(context.Background(), `x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v, ok := state.GetGlobal("x").(glua.LNumber); !ok || float64(v) != 2 {
		t.Errorf("x = %v, want 2", state.GetGlobal("x"))
	}

	if err := state.DoString(context.Background(), `invalid lua code !!!`); err == nil {
		t.Error("DoString() with invalid code should return error")
	}
}

func TestSandbox(t *testing.T) {
	state := NewState()
	defer state.Close()

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"dofile removed", `assert(dofile == nil)`, false},
		{"load removed", `assert(load == nil and loadstring == nil and loadfile == nil)`, false},
		{"io closed", `assert(io == nil and os == nil)`, false},
		{"require io", `require("io")`, true},
		{"require os", `require("os")`, true},
		{"require string", `local s = require("string"); assert(s.upper("a") == "A")`, false},
		{"require unknown", `require("vec")`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := state.DoString(context.Background(), tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("DoString(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestRegisterModule(t *testing.T) {
	state := NewState()
	defer state.Close()

	state.RegisterModule("greet", map[string]glua.LGFunction{
		"hello": func(L *glua.LState) int {
			L.Push(glua.LString("hello " + L.CheckString(1)))
			return 1
		},
	})
	if !state.Sandbox().Allowed("greet") {
		t.Fatal("registered module not allowed")
	}
	code := `
		local g = require("greet")
		assert(g.hello("a") == "hello a")
		assert(greet.hello("b") == "hello b")
	`
	if err := state.DoString(context.Background(), code); err != nil {
		t.Errorf("DoString() error = %v", err)
	}
}

func TestPrintGoesToOutput(t *testing.T) {
	var buf bytes.Buffer
	state := NewState(WithOutput(&buf))
	defer state.Close()

	if err := state.DoString(context.Background(), `print("a", 1, true)`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := buf.String(); got != "a\t1\ttrue\n" {
		t.Errorf("output = %q", got)
	}
}

func TestExecutionTimeout(t *testing.T) {
	state := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer state.Close()

	err := state.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("DoString() error = %v, want ErrExecutionTimeout", err)
	}

	// the state stays usable
	if err := state.DoString(context.Background(), `y = 1`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	state := NewState(WithExecutionTimeout(0))
	defer state.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := state.DoString(ctx, `while true do end`)
	if err == nil {
		t.Fatal("DoString() with cancelled context succeeded")
	}
	if errors.Is(err, ErrExecutionTimeout) {
		t.Error("cancellation reported as timeout")
	}
}

func TestClosedState(t *testing.T) {
	state := NewState()
	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !state.IsClosed() {
		t.Error("IsClosed() = false")
	}
	if err := state.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() error = %v, want ErrStateClosed", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNil {
		t.Errorf("GetGlobal() = %v on closed state", v)
	}
}

func TestDoFile(t *testing.T) {
	state := NewState()
	defer state.Close()

	path := t.TempDir() + "/macro.lua"
	if err := os.WriteFile(path, []byte("z = string.rep('ab', 2)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := state.DoFile(context.Background(), path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if got := state.GetGlobal("z").String(); got != "abab" {
		t.Errorf("z = %q", got)
	}
	if err := state.DoFile(context.Background(), path+".missing"); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("DoFile(missing) error = %v", err)
	}
}
