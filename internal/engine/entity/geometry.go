package entity

import "github.com/dshills/vecstorm/internal/engine/geom"

// Geometry is the geometry kernel for entities: it derives bounding boxes
// and answers exact hit tests.
type Geometry struct {
	// Padding grows every computed box on all sides, leaving room for
	// stroke width when a renderer clears the area.
	Padding float64
}

// ComputeAABB returns the bounding box of e, or false when e has no
// usable shape.
func (g Geometry) ComputeAABB(e *Entity) (geom.Box, bool) {
	box := geom.EmptyBox()
	ok := false
	for _, s := range e.Shapes {
		if b, valid := ShapeBounds(s); valid {
			box = box.Union(b)
			ok = true
		}
	}
	if !ok {
		return geom.Box{}, false
	}
	return box.Pad(g.Padding), true
}

// PreciseIntersects reports whether the outline of e touches box.
func (g Geometry) PreciseIntersects(box geom.Box, e *Entity) bool {
	for _, s := range e.Shapes {
		if ShapeIntersects(s, box) {
			return true
		}
	}
	return false
}

// ShapeBounds returns the unpadded bounding box of a single shape.
func ShapeBounds(s Shape) (geom.Box, bool) {
	switch s.Kind {
	case KindLine, KindPolyline:
		if len(s.Points) < 2 {
			return geom.Box{}, false
		}
		b := geom.BoxOf(s.Points[0], s.Points[1])
		for _, p := range s.Points[2:] {
			b = b.ExtendPoint(p)
		}
		return b, true
	case KindText:
		if len(s.Points) < 2 {
			return geom.Box{}, false
		}
		return geom.BoxOf(s.Points[0], s.Points[1]), true
	case KindCircle:
		if len(s.Points) != 1 || s.Radius <= 0 {
			return geom.Box{}, false
		}
		return geom.BoxAround(s.Points[0], s.Radius), true
	case KindArc:
		a, ok := s.Arc()
		if !ok || a.Radius <= 0 {
			return geom.Box{}, false
		}
		return a.Bounds(), true
	}
	return geom.Box{}, false
}

// ShapeIntersects reports whether the outline of a single shape touches box.
func ShapeIntersects(s Shape, box geom.Box) bool {
	switch s.Kind {
	case KindLine, KindPolyline:
		for i := 1; i < len(s.Points); i++ {
			if geom.SegmentIntersectsBox(s.Points[i-1], s.Points[i], box) {
				return true
			}
		}
	case KindText:
		if len(s.Points) >= 2 {
			return geom.BoxOf(s.Points[0], s.Points[1]).Intersects(box)
		}
	case KindCircle:
		if len(s.Points) == 1 {
			return geom.CircleIntersectsBox(s.Points[0], s.Radius, box)
		}
	case KindArc:
		if a, ok := s.Arc(); ok {
			return a.IntersectsBox(box)
		}
	}
	return false
}
