package dispatcher

import (
	"errors"
	"fmt"
)

// Dispatcher errors.
var (
	// ErrUnknownCommand indicates Run was given a name nothing is registered under.
	ErrUnknownCommand = errors.New("dispatcher: unknown command")

	// ErrIllegalTransition indicates an input named a state the running
	// command does not allow next.
	ErrIllegalTransition = errors.New("dispatcher: illegal transition")

	// ErrInvariant indicates a command's own bookkeeping was inconsistent.
	ErrInvariant = errors.New("dispatcher: invariant violated")

	// ErrCommandPanic indicates a command action panicked.
	ErrCommandPanic = errors.New("dispatcher: command panic")

	// ErrNoCommand indicates a quick repeat with no previous command.
	ErrNoCommand = errors.New("dispatcher: no previous command")
)

// Invariantf returns an error wrapping ErrInvariant. Command actions
// return it when their accumulated state cannot be committed.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// CommandError records the command and state an error occurred in.
type CommandError struct {
	Command string
	State   string
	Err     error
}

func (e *CommandError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("command %s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %s at %s: %v", e.Command, e.State, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
