package lua

import (
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/event"
)

// ModuleName is the global and require name of the drawing API.
const ModuleName = "vec"

// Editor is the command surface a macro drives.
type Editor interface {
	Run(name string, params any)
	Undo()
	Redo()
	SelectBox(p1, p2 geom.Point, additive bool)
	ClearSelection()
	Running() (string, bool)
	State() (string, []string)
	Prompt() string
}

// Drawing reports counts from the drawing.
type Drawing interface {
	Len() int
	SelectionLen() int
}

// VecModule implements the vec API:
//
//	vec.run(name [, input])       start a command or feed a named state
//	vec.point(x, y)               feed a point to the current state
//	vec.input(value)              feed a number, text or {x=, y=} table
//	vec.escape()                  abort the running command
//	vec.undo() / vec.redo()
//	vec.select(x1, y1, x2, y2 [, additive])  box select, returns the count
//	vec.clear()                   clear the selection
//	vec.count() / vec.selected()  entity and selection counts
//	vec.state()                   command, state; nil when idle
//	vec.prompt()                  message of the state awaiting input
//	vec.result()                  the last command end: {command, state, data, error}
type VecModule struct {
	editor  Editor
	drawing Drawing

	mu   sync.Mutex
	last *dispatcher.Event
}

// NewVecModule creates the module.
func NewVecModule(editor Editor, drawing Drawing) *VecModule {
	return &VecModule{editor: editor, drawing: drawing}
}

// HandleCommandEvent remembers how the last command ended. Subscribe it
// to the manager's bus.
func (m *VecModule) HandleCommandEvent(ev event.Event[dispatcher.Event]) {
	switch ev.Payload.Kind {
	case dispatcher.CommandEnd, dispatcher.CommandFailed:
		m.mu.Lock()
		p := ev.Payload
		m.last = &p
		m.mu.Unlock()
	}
}

// Install registers the module in s.
func (m *VecModule) Install(s *State) {
	s.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"run":      m.run,
		"point":    m.point,
		"input":    m.input,
		"escape":   m.escape,
		"undo":     m.undo,
		"redo":     m.redo,
		"select":   m.sel,
		"clear":    m.clear,
		"count":    m.count,
		"selected": m.selected,
		"state":    m.state,
		"prompt":   m.prompt,
		"result":   m.result,
	})
}

func (m *VecModule) run(L *lua.LState) int {
	name := L.CheckString(1)
	var params any
	if L.GetTop() >= 2 {
		params = NewBridge(L).ToGoValue(L.Get(2))
	}
	m.editor.Run(name, params)
	return 0
}

func (m *VecModule) point(L *lua.LState) int {
	p := geom.Pt(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))
	m.editor.Run("", p)
	return 0
}

func (m *VecModule) input(L *lua.LState) int {
	v := NewBridge(L).ToGoValue(L.CheckAny(1))
	if v == nil {
		L.ArgError(1, "number, string or point expected")
		return 0
	}
	m.editor.Run("", v)
	return 0
}

func (m *VecModule) escape(*lua.LState) int {
	m.editor.Run(dispatcher.Escape, nil)
	return 0
}

func (m *VecModule) undo(*lua.LState) int {
	m.editor.Undo()
	return 0
}

func (m *VecModule) redo(*lua.LState) int {
	m.editor.Redo()
	return 0
}

func (m *VecModule) sel(L *lua.LState) int {
	p1 := geom.Pt(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))
	p2 := geom.Pt(float64(L.CheckNumber(3)), float64(L.CheckNumber(4)))
	m.editor.SelectBox(p1, p2, L.OptBool(5, false))
	L.Push(lua.LNumber(m.drawing.SelectionLen()))
	return 1
}

func (m *VecModule) clear(*lua.LState) int {
	m.editor.ClearSelection()
	return 0
}

func (m *VecModule) count(L *lua.LState) int {
	L.Push(lua.LNumber(m.drawing.Len()))
	return 1
}

func (m *VecModule) selected(L *lua.LState) int {
	L.Push(lua.LNumber(m.drawing.SelectionLen()))
	return 1
}

func (m *VecModule) state(L *lua.LState) int {
	cmd, ok := m.editor.Running()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	state, _ := m.editor.State()
	L.Push(lua.LString(cmd))
	L.Push(lua.LString(state))
	return 2
}

func (m *VecModule) prompt(L *lua.LState) int {
	L.Push(lua.LString(m.editor.Prompt()))
	return 1
}

func (m *VecModule) result(L *lua.LState) int {
	m.mu.Lock()
	last := m.last
	m.mu.Unlock()
	if last == nil {
		L.Push(lua.LNil)
		return 1
	}

	b := NewBridge(L)
	t := L.NewTable()
	t.RawSetString("command", lua.LString(last.Command))
	t.RawSetString("state", lua.LString(last.State))
	if last.Data != nil {
		t.RawSetString("data", b.ToLuaValue(last.Data))
	}
	if last.Err != nil {
		t.RawSetString("error", lua.LString(last.Err.Error()))
	}
	L.Push(t)
	return 1
}
