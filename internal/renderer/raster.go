package renderer

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/renderer/backend"
)

// maxArcSamples bounds the work spent on one circle or arc.
const maxArcSamples = 4096

// canvas rasterises shapes into the cells of clip.
type canvas struct {
	out  backend.Backend
	view Viewport
	clip Rect
}

func (c canvas) set(x, y int, r rune, style backend.Style) bool {
	if !c.clip.Contains(x, y) {
		return false
	}
	c.out.SetCell(x, y, backend.Cell{Rune: r, Style: style})
	return true
}

func (c canvas) clear() {
	for y := c.clip.Y0; y < c.clip.Y1; y++ {
		for x := c.clip.X0; x < c.clip.X1; x++ {
			c.out.SetCell(x, y, backend.EmptyCell)
		}
	}
}

// entity draws every shape of e.
func (c canvas) entity(e *entity.Entity, style backend.Style) {
	for _, s := range e.Shapes {
		c.shape(s, style)
	}
}

func (c canvas) shape(s entity.Shape, style backend.Style) {
	switch s.Kind {
	case entity.KindLine, entity.KindPolyline:
		for i := 1; i < len(s.Points); i++ {
			c.segment(s.Points[i-1], s.Points[i], style)
		}
	case entity.KindCircle:
		if len(s.Points) == 1 && s.Radius > 0 {
			c.arc(geom.Arc{Center: s.Points[0], Radius: s.Radius, Start: 0, End: 2 * math.Pi}, true, style)
		}
	case entity.KindArc:
		if a, ok := s.Arc(); ok && a.Radius > 0 {
			c.arc(a, false, style)
		}
	case entity.KindText:
		if len(s.Points) >= 2 {
			c.text(geom.BoxOf(s.Points[0], s.Points[1]), s.Text, style)
		}
	}
}

// segment draws a straight line with a glyph matching its slope on screen.
func (c canvas) segment(a, b geom.Point, style backend.Style) {
	x0, y0 := c.view.ToCellF(a)
	x1, y1 := c.view.ToCellF(b)
	dx, dy := x1-x0, y1-y0

	glyph := '*'
	switch adx, ady := math.Abs(dx), math.Abs(dy); {
	case adx < 0.5 && ady < 0.5:
	case ady <= adx/2:
		glyph = '-'
	case adx <= ady/2:
		glyph = '|'
	case (dx > 0) == (dy > 0):
		glyph = '\\'
	default:
		glyph = '/'
	}

	n := int(math.Ceil(max(math.Abs(dx), math.Abs(dy))))
	if n == 0 {
		c.set(int(math.Floor(x0)), int(math.Floor(y0)), glyph, style)
		return
	}
	// skip the walk when the segment's cells miss the clip entirely
	bounds := Rect{
		X0: int(math.Floor(min(x0, x1))), Y0: int(math.Floor(min(y0, y1))),
		X1: int(math.Floor(max(x0, x1))) + 1, Y1: int(math.Floor(max(y0, y1))) + 1,
	}
	if bounds.Intersect(c.clip).Empty() {
		return
	}
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		c.set(int(math.Floor(x0+dx*t)), int(math.Floor(y0+dy*t)), glyph, style)
	}
}

// arc samples the outline densely enough to leave no gaps between cells.
func (c canvas) arc(a geom.Arc, full bool, style backend.Style) {
	w, h := c.view.CellSize()
	step := min(w, h) / 2 / a.Radius
	n := int(math.Ceil(2 * math.Pi / step))
	n = min(max(n, 16), maxArcSamples)

	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		if !full && !a.Covers(angle) {
			continue
		}
		x, y := c.view.ToCell(a.PointAt(angle))
		c.set(x, y, 'o', style)
	}
	if !full {
		for _, p := range [2]geom.Point{a.StartPoint(), a.EndPoint()} {
			x, y := c.view.ToCell(p)
			c.set(x, y, 'o', style)
		}
	}
}

// text writes s into the cells of box, wrapping at its width. Wide runes
// take two columns and wrap whole; zero-width runes and runes wider than
// the box are dropped. Text that does not fit is cut off; a box narrower
// than one cell still gets one column.
func (c canvas) text(box geom.Box, s string, style backend.Style) {
	x0, y0 := c.view.ToCell(geom.Pt(box.MinX, box.MaxY))
	x1, y1 := c.view.ToCell(geom.Pt(box.MaxX, box.MinY))
	width := max(x1-x0+1, 1)
	bottom := y0 + max(y1-y0+1, 1)

	y := y0
	for _, line := range strings.Split(s, "\n") {
		col := 0
		for _, r := range line {
			w := runewidth.RuneWidth(r)
			if w == 0 || w > width {
				continue
			}
			if col+w > width {
				y++
				col = 0
			}
			if y >= bottom {
				return
			}
			c.glyph(x0+col, y, r, w, style)
			col += w
		}
		y++
	}
}

// glyph writes r, w columns wide, at x, y. The columns right of a wide
// rune hold continuations; one cut by the clip edge is drawn as a blank.
func (c canvas) glyph(x, y int, r rune, w int, style backend.Style) {
	if w > 1 && !c.clip.Contains(x+w-1, y) {
		r = ' '
	}
	c.set(x, y, r, style)
	for i := 1; i < w; i++ {
		c.set(x+i, y, backend.Continuation, style)
	}
}

// outline draws the border of box, used for the index overlay.
func (c canvas) outline(box geom.Box, style backend.Style) {
	x0, y0 := c.view.ToCell(geom.Pt(box.MinX, box.MaxY))
	x1, y1 := c.view.ToCell(geom.Pt(box.MaxX, box.MinY))
	for x := x0; x <= x1; x++ {
		c.set(x, y0, '.', style)
		c.set(x, y1, '.', style)
	}
	for y := y0; y <= y1; y++ {
		c.set(x0, y, ':', style)
		c.set(x1, y, ':', style)
	}
	for _, p := range [4][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		c.set(p[0], p[1], '+', style)
	}
}

// line writes s left-aligned on row y, padding the rest of clip.
func (c canvas) line(y int, s string, style backend.Style) {
	x := c.clip.X0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > c.clip.X1 {
			break
		}
		c.glyph(x, y, r, w, style)
		x += w
	}
	for ; x < c.clip.X1; x++ {
		c.set(x, y, ' ', style)
	}
}
