package dispatcher

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/engine/history"
	"github.com/dshills/vecstorm/internal/engine/idpool"
	"github.com/dshills/vecstorm/internal/engine/store"
	"github.com/dshills/vecstorm/internal/event"
)

// Escape is the global abort input. While a command runs it ends the
// command from any state.
const Escape = "ESCAPE"

// DefaultHoverTolerance is half the side of the hit-test square.
const DefaultHoverTolerance = 2.0

// Logger is the logging the manager needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Config holds manager options.
type Config struct {
	// HoverTolerance is half the side of the square hit-tested around the
	// pointer.
	HoverTolerance float64

	// RepeatEnabled lets a blank command name repeat the previous command.
	RepeatEnabled bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HoverTolerance: DefaultHoverTolerance,
		RepeatEnabled:  true,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(mt *Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithConfig sets the configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// Manager runs commands one at a time against a store and its history.
// It is not safe for concurrent use; callers serialise input onto one
// goroutine.
type Manager struct {
	store    *store.Store
	history  *history.Engine
	ids      *idpool.Pool
	registry *Registry
	bus      *event.Bus[Event]
	logger   Logger
	metrics  *Metrics
	cfg      Config
	ctx      *Context

	active  Instance
	state   string
	allowed []string
	prev    string

	cursor  geom.Point
	preview []*entity.Entity
}

// NewManager creates a manager. The id pool is kept in step with the
// store's events, so ids of entities restored by undo stay reserved.
func NewManager(st *store.Store, h *history.Engine, ids *idpool.Pool, reg *Registry, opts ...Option) *Manager {
	m := &Manager{
		store:    st,
		history:  h,
		ids:      ids,
		registry: reg,
		bus:      event.NewBus[Event]("dispatcher"),
		logger:   nopLogger{},
		cfg:      DefaultConfig(),
	}
	m.ctx = &Context{m: m}
	for _, opt := range opts {
		opt(m)
	}
	if m.cfg.HoverTolerance <= 0 {
		m.cfg.HoverTolerance = DefaultHoverTolerance
	}
	for _, e := range st.All() {
		ids.Reserve(e.ID)
	}
	_, _ = st.Events().Subscribe(m.trackIDs, event.WithPriority(event.PriorityHigh))
	return m
}

func (m *Manager) trackIDs(ev event.Event[store.Event]) {
	switch ev.Payload.Kind {
	case store.EventAdd:
		for _, e := range ev.Payload.Entities {
			m.ids.Reserve(e.ID)
		}
	case store.EventDelete:
		for _, e := range ev.Payload.Entities {
			m.ids.Release(e.ID)
		}
	}
}

// Events returns the bus command events are published on.
func (m *Manager) Events() *event.Bus[Event] { return m.bus }

// Registry returns the command registry.
func (m *Manager) Registry() *Registry { return m.registry }

// Context returns the context commands run with.
func (m *Manager) Context() *Context { return m.ctx }

// Running reports whether a command is active, and which.
func (m *Manager) Running() (string, bool) {
	if m.active == nil {
		return "", false
	}
	return m.active.Name(), true
}

// State returns the state the next input is resolved against, and the
// states it may switch to.
func (m *Manager) State() (string, []string) {
	return m.state, slices.Clone(m.allowed)
}

// Prompt returns the message of the state awaiting input.
func (m *Manager) Prompt() string {
	if m.active == nil {
		return ""
	}
	if s, ok := m.lookup(m.state); ok {
		return s.Msg
	}
	return ""
}

// Run feeds input to the command engine.
//
// With no command active, a non-empty name starts that command with params
// as the root step's input; a blank name such as " " repeats the previous
// command; the empty name does nothing.
//
// With a command active, Escape aborts it; an allowed state name switches
// to that state and runs it; the empty name runs the current state. Any
// other name is an illegal transition and leaves the command unchanged.
func (m *Manager) Run(name string, params any) {
	if m.active == nil {
		m.start(name, params)
		return
	}
	m.input(name, params)
}

func (m *Manager) start(name string, params any) {
	if name == "" {
		return
	}
	if strings.TrimSpace(name) == "" {
		if !m.cfg.RepeatEnabled || m.prev == "" {
			m.logger.Warn("dispatcher: repeat: %v", ErrNoCommand)
			return
		}
		name = m.prev
	}

	inst, ok := m.registry.Get(name)
	if !ok {
		err := &CommandError{Command: normalize(name), Err: ErrUnknownCommand}
		m.logger.Warn("dispatcher: %v", err)
		m.metrics.recordError(normalize(name), "unknown")
		m.bus.Publish(Event{Kind: CommandFailed, Command: normalize(name), Err: err})
		return
	}

	cmd := inst.Name()
	if cmd != Escape {
		m.prev = cmd
	}
	m.active = inst
	m.state = ""
	m.allowed = nil
	m.metrics.recordStart(cmd)
	m.logger.Debug("dispatcher: start %s", cmd)
	m.bus.Publish(Event{Kind: CommandStart, Command: cmd})

	m.step(inst.Root(), params)
}

func (m *Manager) input(name string, params any) {
	key := normalize(name)
	if key == Escape {
		m.escape()
		return
	}
	if key != "" {
		if !slices.Contains(m.allowed, key) {
			m.logger.Warn("dispatcher: %v", &CommandError{
				Command: m.active.Name(),
				State:   m.state,
				Err:     fmt.Errorf("%w: %s not in %v", ErrIllegalTransition, key, m.allowed),
			})
			m.metrics.recordError(m.active.Name(), "illegal")
			return
		}
		m.state = key
	}

	s, ok := m.lookup(m.state)
	if !ok {
		m.logger.Warn("dispatcher: %v", &CommandError{
			Command: m.active.Name(),
			State:   m.state,
			Err:     fmt.Errorf("%w: no rule for state", ErrIllegalTransition),
		})
		m.metrics.recordError(m.active.Name(), "illegal")
		return
	}
	m.step(s, params)
}

func (m *Manager) lookup(state string) (Step, bool) {
	if state == "" {
		return m.active.Root(), true
	}
	return m.active.Step(state)
}

// step runs one rule and applies its outcome.
func (m *Manager) step(s Step, params any) {
	cmd := m.active.Name()

	start := time.Now()
	out, err := m.invoke(s, params)
	m.metrics.recordStep(cmd, time.Since(start))
	if err != nil {
		m.fail(s.Name, err)
		return
	}

	m.bus.Publish(Event{Kind: MetaCommandEnd, Command: cmd, State: s.Name, Data: out.Data})

	switch out.Flow {
	case FlowRetry:
		m.logger.Debug("dispatcher: %s retry at %q", cmd, s.Name)
		return
	case FlowOver:
		m.finish(s.Name, out.Data)
		return
	}

	next := s.Next
	if out.resume {
		r, ok := m.lookup(out.resumeAfter)
		if !ok {
			m.fail(s.Name, Invariantf("resume after unknown state %q", out.resumeAfter))
			return
		}
		next = r.Next
	}
	m.allowed = next
	if len(next) == 0 {
		m.finish(s.Name, nil)
		return
	}
	m.state = next[0]
	m.preview = m.active.Preview(m.ctx, m.cursor)
}

// invoke runs an action, turning a panic into an error.
func (m *Manager) invoke(s Step, params any) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			err = fmt.Errorf("%w: %v\n%s", ErrCommandPanic, r, stack[:n])
		}
	}()
	return s.run(m.ctx, params)
}

func (m *Manager) escape() {
	cmd := m.active.Name()
	state := m.state
	m.logger.Debug("dispatcher: %s escaped at %q", cmd, state)
	m.terminate()
	m.bus.Publish(Event{Kind: MetaCommandEnd, Command: cmd, State: state})
	m.bus.Publish(Event{Kind: CommandEnd, Command: cmd, State: state})
}

func (m *Manager) finish(state string, data map[string]any) {
	cmd := m.active.Name()
	m.logger.Debug("dispatcher: %s ended at %q", cmd, state)
	m.terminate()
	m.bus.Publish(Event{Kind: CommandEnd, Command: cmd, State: state, Data: data})
}

func (m *Manager) fail(state string, err error) {
	cmd := m.active.Name()
	ce := &CommandError{Command: cmd, State: state, Err: err}
	reason := "error"
	switch {
	case errors.Is(err, ErrInvariant):
		reason = "invariant"
	case errors.Is(err, ErrCommandPanic):
		reason = "panic"
	}
	m.logger.Error("dispatcher: %v", ce)
	m.metrics.recordError(cmd, reason)
	m.terminate()
	m.bus.Publish(Event{Kind: CommandFailed, Command: cmd, State: state, Err: ce})
}

// terminate disposes of the active command and returns to idle before
// end events are published, so handlers may start the next command.
func (m *Manager) terminate() {
	inst := m.active
	m.active = nil
	m.state = ""
	m.allowed = nil
	m.preview = nil

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("dispatcher: dispose %s: %v", inst.Name(), r)
		}
	}()
	inst.Dispose(m.ctx)
}

// Undo reverts the most recent change. At the oldest point it logs a
// warning and does nothing.
func (m *Manager) Undo() {
	err := m.history.Undo()
	m.metrics.recordHistory("undo", err == nil, m.history.Pointer())
	if err != nil {
		m.logger.Warn("dispatcher: undo: %v", err)
	}
}

// Redo re-applies the most recently undone change. At the newest point it
// logs a warning and does nothing.
func (m *Manager) Redo() {
	err := m.history.Redo()
	m.metrics.recordHistory("redo", err == nil, m.history.Pointer())
	if err != nil {
		m.logger.Warn("dispatcher: redo: %v", err)
	}
}

// Preview returns the transient entities the active command wants drawn.
func (m *Manager) Preview() []*entity.Entity {
	return entity.CloneAll(m.preview)
}
