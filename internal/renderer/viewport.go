package renderer

import (
	"math"

	"github.com/dshills/vecstorm/internal/engine/geom"
)

// DefaultAspect is the height of a terminal cell relative to its width.
const DefaultAspect = 2.0

// Rect is a half-open rectangle of cells.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// Intersect returns the cells r and o share.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{max(r.X0, o.X0), max(r.Y0, o.Y0), min(r.X1, o.X1), min(r.Y1, o.Y1)}
}

// Contains reports whether cell x, y lies in r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y < r.Y1
}

// Viewport maps drawing coordinates to cells. Drawing y grows upwards,
// cell y grows downwards.
type Viewport struct {
	// Origin is the drawing point at the top-left corner of cell 0, 0.
	Origin geom.Point
	// Scale is drawing units per cell column.
	Scale float64
	// Aspect is cell height over cell width.
	Aspect float64
}

// NewViewport returns a viewport with its origin at 0, height cells
// above the drawing's x axis.
func NewViewport(scale float64, height int) Viewport {
	if scale <= 0 {
		scale = 1
	}
	v := Viewport{Scale: scale, Aspect: DefaultAspect}
	v.Origin = geom.Pt(0, float64(height)*v.rowHeight())
	return v
}

func (v Viewport) rowHeight() float64 {
	a := v.Aspect
	if a <= 0 {
		a = DefaultAspect
	}
	return v.Scale * a
}

// ToCellF returns the fractional cell position of p.
func (v Viewport) ToCellF(p geom.Point) (float64, float64) {
	return (p.X - v.Origin.X) / v.Scale, (v.Origin.Y - p.Y) / v.rowHeight()
}

// ToCell returns the cell holding p.
func (v Viewport) ToCell(p geom.Point) (int, int) {
	x, y := v.ToCellF(p)
	return int(math.Floor(x)), int(math.Floor(y))
}

// ToWorld returns the drawing point at the centre of cell x, y.
func (v Viewport) ToWorld(x, y int) geom.Point {
	return geom.Pt(
		v.Origin.X+(float64(x)+0.5)*v.Scale,
		v.Origin.Y-(float64(y)+0.5)*v.rowHeight(),
	)
}

// CellSize returns the drawing size of one cell.
func (v Viewport) CellSize() (w, h float64) {
	return v.Scale, v.rowHeight()
}

// WorldBox returns the drawing area covered by r.
func (v Viewport) WorldBox(r Rect) geom.Box {
	h := v.rowHeight()
	return geom.Box{
		MinX: v.Origin.X + float64(r.X0)*v.Scale,
		MaxX: v.Origin.X + float64(r.X1)*v.Scale,
		MinY: v.Origin.Y - float64(r.Y1)*h,
		MaxY: v.Origin.Y - float64(r.Y0)*h,
	}
}

// CellRect returns the cells covering box, grown by one cell on every
// side so that glyphs rounded onto neighbouring cells are included.
func (v Viewport) CellRect(box geom.Box) Rect {
	x0, y1 := v.ToCellF(box.Min())
	x1, y0 := v.ToCellF(box.Max())
	return Rect{
		X0: int(math.Floor(x0)) - 1,
		Y0: int(math.Floor(y0)) - 1,
		X1: int(math.Floor(x1)) + 2,
		Y1: int(math.Floor(y1)) + 2,
	}
}

// Pan moves the view by dx, dy cells.
func (v *Viewport) Pan(dx, dy int) {
	v.Origin.X += float64(dx) * v.Scale
	v.Origin.Y -= float64(dy) * v.rowHeight()
}

// Zoom scales the view by factor, keeping cell x, y fixed. A factor
// above one zooms out.
func (v *Viewport) Zoom(factor float64, x, y int) {
	if factor <= 0 {
		return
	}
	anchor := v.ToWorld(x, y)
	v.Scale *= factor
	// keep anchor under the same cell centre
	v.Origin.X = anchor.X - (float64(x)+0.5)*v.Scale
	v.Origin.Y = anchor.Y + (float64(y)+0.5)*v.rowHeight()
}

// Fit centres box in a width by height cell area.
func (v *Viewport) Fit(box geom.Box, width, height int) {
	if box.IsEmpty() || width <= 0 || height <= 0 {
		return
	}
	a := v.Aspect
	if a <= 0 {
		a = DefaultAspect
	}
	scale := max(box.Width()/float64(width), box.Height()/(float64(height)*a))
	if scale <= 0 {
		scale = v.Scale
	}
	// leave a cell of margin
	v.Scale = scale * float64(width) / float64(max(width-2, 1))
	cx := (box.MinX + box.MaxX) / 2
	cy := (box.MinY + box.MaxY) / 2
	v.Origin.X = cx - float64(width)/2*v.Scale
	v.Origin.Y = cy + float64(height)/2*v.rowHeight()
}
