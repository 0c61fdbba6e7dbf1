package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal implements Backend using tcell for terminal output.
type Terminal struct {
	screen tcell.Screen
	styles map[Style]tcell.Style
	mu     sync.Mutex
}

// NewTerminal creates a new terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newTerminal(screen), nil
}

func newTerminal(screen tcell.Screen) *Terminal {
	base := tcell.StyleDefault
	return &Terminal{
		screen: screen,
		styles: map[Style]tcell.Style{
			StyleDefault:  base,
			StyleSelected: base.Foreground(tcell.ColorYellow).Bold(true),
			StyleHovered:  base.Foreground(tcell.ColorAqua).Bold(true),
			StylePreview:  base.Foreground(tcell.ColorGray).Dim(true),
			StyleOverlay:  base.Foreground(tcell.ColorNavy),
			StyleStatus:   base.Reverse(true),
		},
	}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse(tcell.MouseMotionEvents)
	t.screen.HideCursor()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell Cell) {
	// tcell spreads a wide rune over its continuation itself
	if cell.Rune == Continuation {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, cell.Rune, nil, t.styles[cell.Style])
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) PollEvent() Event {
	ev := t.screen.PollEvent()
	if ev == nil {
		// screen finalized
		return Event{Type: EventKey, Key: KeyCtrlC}
	}
	return convertEvent(ev)
}

func (t *Terminal) PostEvent(event Event) {
	if event.Type == EventKey {
		_ = t.screen.PostEvent(tcell.NewEventKey(convertToTcellKey(event.Key), event.Rune, tcell.ModNone)) // best-effort; event queue may be full
	}
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{
			Type: EventKey,
			Key:  convertKey(e.Key()),
			Rune: e.Rune(),
			Mod:  convertMod(e.Modifiers()),
		}

	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{
			Type:        EventMouse,
			MouseX:      x,
			MouseY:      y,
			MouseButton: convertMouseButton(e.Buttons()),
			Mod:         convertMod(e.Modifiers()),
		}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}

	default:
		return Event{Type: EventNone}
	}
}

var keyMap = map[tcell.Key]Key{
	tcell.KeyRune:       KeyRune,
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyCtrlC:      KeyCtrlC,
	tcell.KeyCtrlY:      KeyCtrlY,
	tcell.KeyCtrlZ:      KeyCtrlZ,
}

func convertKey(k tcell.Key) Key {
	if key, ok := keyMap[k]; ok {
		return key
	}
	return KeyNone
}

func convertToTcellKey(k Key) tcell.Key {
	for tk, key := range keyMap {
		if key == k && tk != tcell.KeyBackspace {
			return tk
		}
	}
	return tcell.KeyRune
}

func convertMod(m tcell.ModMask) ModMask {
	var mod ModMask
	if m&tcell.ModShift != 0 {
		mod |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mod |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mod |= ModAlt
	}
	return mod
}

func convertMouseButton(b tcell.ButtonMask) MouseButton {
	switch {
	case b&tcell.Button1 != 0:
		return MouseLeft
	case b&tcell.Button2 != 0:
		return MouseRight
	case b&tcell.WheelUp != 0:
		return MouseWheelUp
	case b&tcell.WheelDown != 0:
		return MouseWheelDown
	default:
		return MouseNone
	}
}
