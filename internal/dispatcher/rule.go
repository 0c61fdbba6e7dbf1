package dispatcher

import (
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

// Flow tells the runner what to do after an action returns.
type Flow uint8

const (
	// FlowNormal advances to the first allowed next state, or ends the
	// command when there is none.
	FlowNormal Flow = iota
	// FlowRetry keeps the current state and waits for corrected input.
	FlowRetry
	// FlowOver ends the command immediately.
	FlowOver
)

// String returns a string representation of the flow.
func (f Flow) String() string {
	switch f {
	case FlowNormal:
		return "normal"
	case FlowRetry:
		return "retry"
	case FlowOver:
		return "over"
	default:
		return "unknown"
	}
}

// Outcome is what an action returns.
type Outcome struct {
	Flow Flow
	// Data is exposed to the interaction layer on MetaCommandEnd and, for
	// FlowOver, on CommandEnd.
	Data map[string]any

	resume      bool
	resumeAfter string
}

// Normal continues the command.
func Normal() Outcome { return Outcome{} }

// Emit continues the command and hands data to the interaction layer.
func Emit(data map[string]any) Outcome { return Outcome{Data: data} }

// Retry keeps the command in its current state.
func Retry() Outcome { return Outcome{Flow: FlowRetry} }

// ResumeAfter continues the command as if state had just completed: the
// next input resolves against state's allowed next list. The root is
// named by the empty string. Commands use it to step back after an UNDO.
func ResumeAfter(state string) Outcome {
	return Outcome{resume: true, resumeAfter: state}
}

// Over ends the command with data.
func Over(data map[string]any) Outcome { return Outcome{Flow: FlowOver, Data: data} }

// Action runs one step of a command. s is the command's scratch state,
// params the input that accompanied the step.
type Action[S any] func(ctx *Context, s *S, params any) (Outcome, error)

// Rule is one state of a command.
type Rule[S any] struct {
	Msg    string
	Action Action[S]
	// Next lists the states that may follow. The first entry is the
	// default; an empty list ends the command.
	Next []string
}

// Graph is a command: a root rule, its sub-rules, and optional hooks. It
// is plain data; all mutable state lives in a fresh S per run.
type Graph[S any] struct {
	Name        string
	Description string
	Root        Rule[S]
	Sub         map[string]Rule[S]

	// Preview returns transient entities to draw for a cursor position.
	// It must not commit anything.
	Preview func(ctx *Context, s *S, cursor geom.Point) []*entity.Entity

	// Dispose runs on every termination path.
	Dispose func(ctx *Context, s *S)
}

// Definition is a registered command, independent of its scratch type.
type Definition interface {
	CommandName() string
	CommandDescription() string
	Instantiate() Instance
}

// Instance is a command ready to run.
type Instance interface {
	Name() string
	Root() Step
	Step(name string) (Step, bool)
	Preview(ctx *Context, cursor geom.Point) []*entity.Entity
	Dispose(ctx *Context)
	// Reset discards scratch state so a cached instance can run again.
	Reset()
}

// Step is a rule bound to an instance's scratch state.
type Step struct {
	Name string
	Msg  string
	Next []string
	run  func(ctx *Context, params any) (Outcome, error)
}

// CommandName implements Definition.
func (g *Graph[S]) CommandName() string { return g.Name }

// CommandDescription implements Definition.
func (g *Graph[S]) CommandDescription() string { return g.Description }

// Instantiate implements Definition.
func (g *Graph[S]) Instantiate() Instance {
	return &instance[S]{graph: g, scratch: new(S)}
}

type instance[S any] struct {
	graph   *Graph[S]
	scratch *S
}

func (i *instance[S]) Name() string { return i.graph.Name }

func (i *instance[S]) Root() Step { return i.bind("", i.graph.Root) }

func (i *instance[S]) Step(name string) (Step, bool) {
	r, ok := i.graph.Sub[name]
	if !ok {
		return Step{}, false
	}
	return i.bind(name, r), true
}

func (i *instance[S]) bind(name string, r Rule[S]) Step {
	return Step{
		Name: name,
		Msg:  r.Msg,
		Next: r.Next,
		run: func(ctx *Context, params any) (Outcome, error) {
			if r.Action == nil {
				return Normal(), nil
			}
			return r.Action(ctx, i.scratch, params)
		},
	}
}

func (i *instance[S]) Preview(ctx *Context, cursor geom.Point) []*entity.Entity {
	if i.graph.Preview == nil {
		return nil
	}
	return i.graph.Preview(ctx, i.scratch, cursor)
}

func (i *instance[S]) Dispose(ctx *Context) {
	if i.graph.Dispose != nil {
		i.graph.Dispose(ctx, i.scratch)
	}
}

func (i *instance[S]) Reset() { i.scratch = new(S) }
