package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend(4, 2)
	b.SetCell(1, 0, Cell{Rune: 'x', Style: StyleSelected})
	b.SetCell(9, 9, Cell{Rune: 'y'})

	if got := b.Row(0); got != " x  " {
		t.Errorf("Row(0) = %q", got)
	}
	if b.Writes() != 1 {
		t.Errorf("Writes() = %d, out of range writes must be dropped", b.Writes())
	}
	if b.Count(StyleSelected) != 1 {
		t.Errorf("Count(StyleSelected) = %d", b.Count(StyleSelected))
	}

	b.SetCell(2, 1, Cell{Rune: '中'})
	b.SetCell(3, 1, Cell{Rune: Continuation})
	if got := b.Row(1); got != "  中" {
		t.Errorf("Row(1) = %q, continuation must not print", got)
	}

	b.Clear()
	if got := b.Row(0); got != "    " {
		t.Errorf("Row(0) after Clear = %q", got)
	}

	b.PostEvent(Event{Type: EventKey, Key: KeyEscape})
	if ev := b.PollEvent(); ev.Key != KeyEscape {
		t.Errorf("PollEvent() = %+v", ev)
	}
}

func TestNullBackend(t *testing.T) {
	b := NewNullBackend(80, 24)
	if w, h := b.Size(); w != 80 || h != 24 {
		t.Errorf("Size() = %d, %d", w, h)
	}
	b.Show()
	if b.Shows() != 1 {
		t.Errorf("Shows() = %d", b.Shows())
	}
}

func TestConvertEvent(t *testing.T) {
	tests := []struct {
		name string
		in   tcell.Event
		want Event
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone), Event{Type: EventKey, Key: KeyRune, Rune: 'l'}},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), Event{Type: EventKey, Key: KeyEscape}},
		{"undo", tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl), Event{Type: EventKey, Key: KeyCtrlZ, Mod: ModCtrl}},
		{"click", tcell.NewEventMouse(3, 4, tcell.Button1, tcell.ModShift), Event{Type: EventMouse, MouseX: 3, MouseY: 4, MouseButton: MouseLeft, Mod: ModShift}},
		{"motion", tcell.NewEventMouse(5, 6, tcell.ButtonNone, tcell.ModNone), Event{Type: EventMouse, MouseX: 5, MouseY: 6}},
		{"resize", tcell.NewEventResize(100, 40), Event{Type: EventResize, Width: 100, Height: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertEvent(tt.in)
			if got.Type == EventKey && tt.want.Key != KeyRune {
				got.Rune = 0
			}
			if got != tt.want {
				t.Errorf("convertEvent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	term := newTerminal(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer term.Shutdown()
	screen.SetSize(10, 3)

	term.SetCell(2, 1, Cell{Rune: '*', Style: StyleHovered})
	term.Show()

	cells, w, _ := screen.GetContents()
	if got := cells[1*w+2].Runes; len(got) != 1 || got[0] != '*' {
		t.Errorf("cell (2,1) = %q", string(got))
	}
}
