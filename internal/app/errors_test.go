package app

import (
	"errors"
	"io/fs"
	"testing"
)

func TestOperationError(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{"op only", &OperationError{Op: "reload"}, "reload"},
		{"with target", &OperationError{Op: "script", Target: "a.lua"}, "script a.lua"},
		{"with cause", &OperationError{Op: "script", Target: "a.lua", Err: fs.ErrNotExist}, "script a.lua: file does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	err := error(&OperationError{Op: "script", Err: fs.ErrNotExist})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is did not reach the cause")
	}

	var nilErr *OperationError
	if nilErr.Error() != "" || nilErr.Unwrap() != nil {
		t.Error("nil receiver not handled")
	}
}

func TestInitError(t *testing.T) {
	cause := errors.New("no tty")
	err := error(&InitError{Component: "display", Err: cause})
	if err.Error() != "init display: no tty" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach the cause")
	}
	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "display" {
		t.Error("errors.As failed")
	}
}

func TestRecoveredPanicError(t *testing.T) {
	err := &RecoveredPanicError{Value: "bad"}
	if err.Error() != "recovered panic: bad" {
		t.Errorf("Error() = %q", err.Error())
	}
}
