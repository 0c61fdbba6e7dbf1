package dispatcher

// EventKind identifies a command lifecycle event.
type EventKind uint8

const (
	// CommandStart fires when a command begins.
	CommandStart EventKind = iota
	// MetaCommandEnd fires after every step, with the step's data.
	MetaCommandEnd
	// CommandEnd fires when a command finishes or is escaped.
	CommandEnd
	// CommandFailed fires when a command fails or Run names an unknown command.
	CommandFailed
)

// String returns a string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case CommandStart:
		return "CommandStart"
	case MetaCommandEnd:
		return "MetaCommandEnd"
	case CommandEnd:
		return "CommandEnd"
	case CommandFailed:
		return "CommandError"
	default:
		return "Unknown"
	}
}

// Event is published on the manager's bus.
type Event struct {
	Kind    EventKind
	Command string
	// State is the step that produced the event; empty for the root.
	State string
	Data  map[string]any
	// Err is set for CommandFailed; it is a *CommandError.
	Err error
}
