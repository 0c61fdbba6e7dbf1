// Package entity defines the drawn objects of a vector drawing and the
// geometry kernel that derives their bounding boxes.
package entity

import (
	"slices"

	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/engine/layer"
)

// Kind identifies the geometric type of an entity or shape.
type Kind string

// Entity and shape kinds.
const (
	KindLine     Kind = "line"
	KindCircle   Kind = "circle"
	KindArc      Kind = "arc"
	KindPolyline Kind = "pline"
	KindText     Kind = "mtext"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindLine, KindCircle, KindArc, KindPolyline, KindText:
		return true
	}
	return false
}

// Shape is one primitive of an entity. Which fields are meaningful
// depends on Kind:
//
//	line:   Points (two or more vertices)
//	circle: Points[0] centre, Radius
//	arc:    Points[0] centre, Radius, StartAngle, EndAngle, Anticlockwise
//	mtext:  Points[0] and Points[1] opposite corners, Text
type Shape struct {
	Kind          Kind         `json:"kind"`
	Points        []geom.Point `json:"points,omitempty"`
	Radius        float64      `json:"radius,omitempty"`
	StartAngle    float64      `json:"startAngle,omitempty"`
	EndAngle      float64      `json:"endAngle,omitempty"`
	Anticlockwise bool         `json:"anticlockwise,omitempty"`
	Text          string       `json:"text,omitempty"`
	Color         string       `json:"color,omitempty"`
	LineWidth     float64      `json:"lineWidth,omitempty"`
	LineDash      []float64    `json:"lineDash,omitempty"`
}

// Arc returns the arc described by an arc shape.
func (s Shape) Arc() (geom.Arc, bool) {
	if s.Kind != KindArc || len(s.Points) != 1 {
		return geom.Arc{}, false
	}
	return geom.Arc{
		Center:        s.Points[0],
		Radius:        s.Radius,
		Start:         s.StartAngle,
		End:           s.EndAngle,
		Anticlockwise: s.Anticlockwise,
	}, true
}

// ArcShape builds a shape from an arc.
func ArcShape(a geom.Arc) Shape {
	return Shape{
		Kind:          KindArc,
		Points:        []geom.Point{a.Center},
		Radius:        a.Radius,
		StartAngle:    a.Start,
		EndAngle:      a.End,
		Anticlockwise: a.Anticlockwise,
	}
}

// Clone returns a deep copy of s.
func (s Shape) Clone() Shape {
	s.Points = slices.Clone(s.Points)
	s.LineDash = slices.Clone(s.LineDash)
	return s
}

// Translate returns s moved by v.
func (s Shape) Translate(v geom.Point) Shape {
	s = s.Clone()
	for i := range s.Points {
		s.Points[i] = s.Points[i].Add(v)
	}
	return s
}

// Flags is transient render state. It is not geometry.
type Flags struct {
	Hovered     bool `json:"hovered"`
	BoxSelected bool `json:"boxSelected"`
	Closed      bool `json:"closed,omitempty"`
}

// Entity is a drawn object.
type Entity struct {
	ID     string      `json:"id"`
	Kind   Kind        `json:"kind"`
	Shapes []Shape     `json:"shapeList"`
	AABB   *geom.Box   `json:"aabb"`
	Layer  layer.Layer `json:"layer"`
	Flags  Flags       `json:"flags"`
}

// New returns a transient entity of the given kind. It has no id, layer
// or bounding box until the store accepts it.
func New(kind Kind, shapes ...Shape) *Entity {
	return &Entity{Kind: kind, Shapes: shapes}
}

// Line returns a transient line entity from a to b.
func Line(a, b geom.Point) *Entity {
	return New(KindLine, Shape{Kind: KindLine, Points: []geom.Point{a, b}})
}

// Circle returns a transient circle entity.
func Circle(c geom.Point, r float64) *Entity {
	return New(KindCircle, Shape{Kind: KindCircle, Points: []geom.Point{c}, Radius: r})
}

// Clone returns a deep copy of e. Nothing is shared with the original.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	c := *e
	if e.AABB != nil {
		box := *e.AABB
		c.AABB = &box
	}
	if e.Shapes != nil {
		c.Shapes = make([]Shape, len(e.Shapes))
		for i, s := range e.Shapes {
			c.Shapes[i] = s.Clone()
		}
	}
	return &c
}

// Translate returns a deep copy of e moved by v. The copy's cached box is
// cleared so the store recomputes it.
func (e *Entity) Translate(v geom.Point) *Entity {
	c := e.Clone()
	for i, s := range c.Shapes {
		c.Shapes[i] = s.Translate(v)
	}
	c.AABB = nil
	return c
}

// Box returns the cached bounding box, or an empty box for a transient
// entity.
func (e *Entity) Box() geom.Box {
	if e.AABB == nil {
		return geom.EmptyBox()
	}
	return *e.AABB
}

// CloneAll deep copies a batch.
func CloneAll(es []*Entity) []*Entity {
	out := make([]*Entity, len(es))
	for i, e := range es {
		out[i] = e.Clone()
	}
	return out
}

// IDs returns the ids of a batch in order.
func IDs(es []*Entity) []string {
	ids := make([]string, len(es))
	for i, e := range es {
		ids[i] = e.ID
	}
	return ids
}

// UnionBox returns the union of the cached boxes of a batch. Transient
// entities contribute nothing.
func UnionBox(es []*Entity) geom.Box {
	u := geom.EmptyBox()
	for _, e := range es {
		if e.AABB != nil {
			u = u.Union(*e.AABB)
		}
	}
	return u
}
