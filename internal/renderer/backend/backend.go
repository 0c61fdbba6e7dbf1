// Package backend provides display backends for the renderer.
package backend

import "sync"

// Style selects how a cell is drawn. Backends map styles to colours.
type Style uint8

const (
	StyleDefault Style = iota
	StyleSelected
	StyleHovered
	StylePreview
	StyleOverlay
	StyleStatus
)

// Cell is one character cell.
type Cell struct {
	Rune  rune
	Style Style
}

// EmptyCell is a blank cell in the default style.
var EmptyCell = Cell{Rune: ' '}

// Continuation fills the columns covered by the left half of a wide rune.
const Continuation rune = 0

// EventType identifies the type of input event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
)

// Key represents a keyboard key.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyCtrlY
	KeyCtrlZ
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton represents mouse button state.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Event represents an input event.
type Event struct {
	Type EventType

	Key  Key
	Rune rune
	Mod  ModMask

	MouseX, MouseY int
	MouseButton    MouseButton

	Width, Height int
}

// Backend is a character-cell display.
type Backend interface {
	// Init prepares the display. Must be called before any other method.
	Init() error

	// Shutdown releases the display.
	Shutdown()

	// Size returns the display dimensions in cells.
	Size() (width, height int)

	// SetCell sets one cell. Positions outside the display are ignored.
	SetCell(x, y int, cell Cell)

	// Clear blanks the whole display.
	Clear()

	// Show flushes pending changes to the display.
	Show()

	// PollEvent blocks for the next input event.
	PollEvent() Event

	// PostEvent queues a synthetic event for PollEvent.
	PostEvent(ev Event)
}

// NullBackend discards all drawing. It counts flushes and replays posted
// events, which is all headless sessions need.
type NullBackend struct {
	width, height int
	shows         int
	events        chan Event
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{width: width, height: height, events: make(chan Event, 100)}
}

func (b *NullBackend) Init() error            { return nil }
func (b *NullBackend) Shutdown()              {}
func (b *NullBackend) Size() (int, int)       { return b.width, b.height }
func (b *NullBackend) SetCell(int, int, Cell) {}
func (b *NullBackend) Clear()                 {}
func (b *NullBackend) Show()                  { b.shows++ }
func (b *NullBackend) PollEvent() Event       { return <-b.events }
func (b *NullBackend) Shows() int             { return b.shows }
func (b *NullBackend) PostEvent(ev Event)     { postEvent(b.events, ev) }

// MemoryBackend keeps the displayed cells in memory so tests can inspect
// what was drawn.
type MemoryBackend struct {
	mu            sync.Mutex
	width, height int
	cells         []Cell
	writes        int
	shows         int
	events        chan Event
}

// NewMemoryBackend creates a memory backend with the given dimensions.
func NewMemoryBackend(width, height int) *MemoryBackend {
	b := &MemoryBackend{width: width, height: height, events: make(chan Event, 100)}
	b.cells = make([]Cell, width*height)
	b.Clear()
	return b
}

func (b *MemoryBackend) Init() error { return nil }

func (b *MemoryBackend) Shutdown() {}

func (b *MemoryBackend) Size() (int, int) { return b.width, b.height }

func (b *MemoryBackend) SetCell(x, y int, cell Cell) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cells[y*b.width+x] = cell
	b.writes++
}

func (b *MemoryBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.cells {
		b.cells[i] = EmptyCell
	}
}

func (b *MemoryBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shows++
}

func (b *MemoryBackend) PollEvent() Event { return <-b.events }

func (b *MemoryBackend) PostEvent(ev Event) { postEvent(b.events, ev) }

// Resize changes the dimensions and blanks the display.
func (b *MemoryBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width, b.height = width, height
	b.cells = make([]Cell, width*height)
	b.mu.Unlock()
	b.Clear()
}

// Cell returns the cell at x, y.
func (b *MemoryBackend) Cell(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return EmptyCell
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cells[y*b.width+x]
}

// Row returns the runes of row y as a string.
func (b *MemoryBackend) Row(y int) string {
	rs := make([]rune, 0, b.width)
	for x := range b.width {
		if r := b.Cell(x, y).Rune; r != Continuation {
			rs = append(rs, r)
		}
	}
	return string(rs)
}

// Count returns how many cells currently carry style s and a non-blank rune.
func (b *MemoryBackend) Count(s Style) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.cells {
		if c.Style == s && c.Rune != ' ' {
			n++
		}
	}
	return n
}

// Writes returns the number of SetCell calls that landed on the display.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// ResetWrites zeroes the write counter.
func (b *MemoryBackend) ResetWrites() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = 0
}

// Shows returns the number of flushes.
func (b *MemoryBackend) Shows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shows
}

func postEvent(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
		// queue full; synthetic events are best-effort
	}
}
