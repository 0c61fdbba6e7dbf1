package renderer

import (
	"slices"
	"sync"

	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/dispatcher/handlers/system"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/engine/store"
	"github.com/dshills/vecstorm/internal/event"
	"github.com/dshills/vecstorm/internal/renderer/backend"
	"github.com/dshills/vecstorm/internal/renderer/dirty"
)

// Source is the read side of the store the renderer draws from.
type Source interface {
	All() []*entity.Entity
	QueryTouching(box geom.Box, exact bool) []*entity.Entity
	Bounds() geom.Box
	WalkIndex(fn func(box geom.Box, height int, leaf bool) bool)
}

// Logger is the logging the renderer needs.
type Logger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Options configures the renderer.
type Options struct {
	// Scale is drawing units per cell column.
	Scale float64
	// Aspect is cell height over cell width; 0 means DefaultAspect.
	Aspect float64
	// StatusLine reserves the bottom row for SetStatus.
	StatusLine bool
}

// DefaultOptions returns the default renderer options.
func DefaultOptions() Options {
	return Options{Scale: 1, Aspect: DefaultAspect, StatusLine: true}
}

// Stats counts the work done by Render.
type Stats struct {
	Frames        uint64
	FullFrames    uint64
	PartialFrames uint64
	EntitiesDrawn uint64
}

// Renderer draws a Source onto a backend.
type Renderer struct {
	mu sync.Mutex

	out    backend.Backend
	src    Source
	opts   Options
	view   Viewport
	dirty  *dirty.Tracker
	logger Logger

	width, height int

	overlay     bool
	preview     []*entity.Entity
	previewBox  geom.Box
	status      string
	statusDirty bool

	stats Stats
	subs  []*event.Subscription
}

// New creates a renderer. The first Render draws everything.
func New(out backend.Backend, src Source, opts Options) *Renderer {
	w, h := out.Size()
	r := &Renderer{
		out:        out,
		src:        src,
		opts:       opts,
		dirty:      dirty.NewTracker(),
		logger:     nopLogger{},
		width:      w,
		height:     h,
		previewBox: geom.EmptyBox(),
	}
	r.view = NewViewport(opts.Scale, r.canvasHeight())
	if opts.Aspect > 0 {
		r.view.Aspect = opts.Aspect
		r.view.Origin.Y = float64(r.canvasHeight()) * opts.Scale * opts.Aspect
	}
	return r
}

// SetLogger sets the logger.
func (r *Renderer) SetLogger(l Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

func (r *Renderer) canvasHeight() int {
	if r.opts.StatusLine && r.height > 1 {
		return r.height - 1
	}
	return r.height
}

func (r *Renderer) canvasRect() Rect {
	return Rect{0, 0, r.width, r.canvasHeight()}
}

// Subscribe attaches the renderer to the store and command buses. Either
// bus may be nil.
func (r *Renderer) Subscribe(stores *event.Bus[store.Event], commands *event.Bus[dispatcher.Event]) error {
	if stores != nil {
		sub, err := stores.Subscribe(r.HandleStoreEvent)
		if err != nil {
			return err
		}
		r.subs = append(r.subs, sub)
	}
	if commands != nil {
		sub, err := commands.SubscribeFiltered(r.HandleCommandEvent, func(ev event.Event[dispatcher.Event]) bool {
			return ev.Payload.Kind == dispatcher.CommandEnd
		})
		if err != nil {
			return err
		}
		r.subs = append(r.subs, sub)
	}
	return nil
}

// Close cancels the renderer's subscriptions.
func (r *Renderer) Close() {
	for _, s := range r.subs {
		s.Cancel()
	}
	r.subs = nil
}

// HandleStoreEvent marks the area touched by a store mutation dirty.
func (r *Renderer) HandleStoreEvent(ev event.Event[store.Event]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlay {
		// node boxes may have moved anywhere
		r.dirty.MarkFull()
		return
	}
	r.dirty.Add(ev.Payload.Dirty())
}

// HandleCommandEvent toggles the index overlay when RTV ends.
func (r *Renderer) HandleCommandEvent(ev event.Event[dispatcher.Event]) {
	if ev.Payload.Kind == dispatcher.CommandEnd && ev.Payload.Command == system.CommandIndex {
		r.ToggleOverlay()
	}
}

// ToggleOverlay switches the index overlay and returns its new state.
func (r *Renderer) ToggleOverlay() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlay = !r.overlay
	r.dirty.MarkFull()
	return r.overlay
}

// Overlay reports whether the index overlay is shown.
func (r *Renderer) Overlay() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlay
}

// SetPreview replaces the transient entities drawn on top of the drawing.
func (r *Renderer) SetPreview(es []*entity.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	box := shapeBounds(es)
	if len(es) == 0 && len(r.preview) == 0 {
		return
	}
	r.dirty.Add(r.previewBox.Union(box))
	r.preview = es
	r.previewBox = box
}

// SetStatus sets the text of the status line.
func (r *Renderer) SetStatus(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s != r.status {
		r.status = s
		r.statusDirty = true
	}
}

// Resize adapts to new backend dimensions.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	r.dirty.MarkFull()
}

// Viewport returns the current viewport.
func (r *Renderer) Viewport() Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Pan moves the view by dx, dy cells.
func (r *Renderer) Pan(dx, dy int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Pan(dx, dy)
	r.dirty.MarkFull()
}

// Zoom scales the view around cell x, y.
func (r *Renderer) Zoom(factor float64, x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Zoom(factor, x, y)
	r.dirty.MarkFull()
}

// Fit frames the whole drawing.
func (r *Renderer) Fit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Fit(r.src.Bounds(), r.width, r.canvasHeight())
	r.dirty.MarkFull()
}

// ToWorld converts a cell position, as reported by a mouse event, to a
// drawing point.
func (r *Renderer) ToWorld(x, y int) geom.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.ToWorld(x, y)
}

// Stats returns the frame counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Invalidate forces the next frame to redraw everything.
func (r *Renderer) Invalidate() {
	r.dirty.MarkFull()
}

// Render draws pending changes and reports whether anything was drawn.
func (r *Renderer) Render() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	regions, full := r.dirty.Take()
	if !full && len(regions) == 0 && !r.statusDirty {
		return false
	}

	canvasRect := r.canvasRect()
	switch {
	case full:
		r.out.Clear()
		r.paint(canvasRect, r.src.All())
		r.stats.FullFrames++
	case len(regions) > 0:
		for _, box := range regions {
			clip := r.view.CellRect(box).Intersect(canvasRect)
			if clip.Empty() {
				continue
			}
			canvas{out: r.out, view: r.view, clip: clip}.clear()
			r.paint(clip, r.src.QueryTouching(r.view.WorldBox(clip), false))
		}
		r.stats.PartialFrames++
	}

	if r.opts.StatusLine && r.height > 1 && (full || r.statusDirty) {
		status := canvas{out: r.out, view: r.view, clip: Rect{0, r.height - 1, r.width, r.height}}
		status.line(r.height-1, r.status, backend.StyleStatus)
	}
	r.statusDirty = false

	r.out.Show()
	r.stats.Frames++
	return true
}

// paint draws es, the overlay and the preview into clip. Hovered entities
// go last so they stay visible over their neighbours.
func (r *Renderer) paint(clip Rect, es []*entity.Entity) {
	c := canvas{out: r.out, view: r.view, clip: clip}

	if r.overlay {
		r.src.WalkIndex(func(box geom.Box, _ int, _ bool) bool {
			c.outline(box, backend.StyleOverlay)
			return true
		})
	}

	slices.SortStableFunc(es, func(a, b *entity.Entity) int {
		return styleRank(a) - styleRank(b)
	})
	for _, e := range es {
		c.entity(e, styleOf(e))
	}
	r.stats.EntitiesDrawn += uint64(len(es))

	for _, e := range r.preview {
		c.entity(e, backend.StylePreview)
	}
	r.logger.Debug("renderer: painted %d entities into %v", len(es), clip)
}

// shapeBounds measures entities that may not have a cached box yet.
func shapeBounds(es []*entity.Entity) geom.Box {
	u := geom.EmptyBox()
	for _, e := range es {
		if e.AABB != nil {
			u = u.Union(*e.AABB)
			continue
		}
		for _, s := range e.Shapes {
			if b, ok := entity.ShapeBounds(s); ok {
				u = u.Union(b)
			}
		}
	}
	return u
}

func styleOf(e *entity.Entity) backend.Style {
	switch {
	case e.Flags.Hovered:
		return backend.StyleHovered
	case e.Flags.BoxSelected:
		return backend.StyleSelected
	default:
		return backend.StyleDefault
	}
}

func styleRank(e *entity.Entity) int {
	return int(styleOf(e))
}
