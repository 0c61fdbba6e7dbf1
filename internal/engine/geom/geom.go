// Package geom holds the planar primitives shared by the drawing engine:
// points, axis-aligned boxes and the exact intersection tests used for
// hit-testing.
package geom

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a location in drawing space. It encodes as a two element array.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p multiplied by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }

// Toward returns the point reached by walking distance d from p in the
// direction of q. If p and q coincide, p is returned.
func (p Point) Toward(q Point, d float64) Point {
	v := q.Sub(p)
	l := v.Len()
	if l == 0 {
		return p
	}
	return p.Add(v.Scale(d / l))
}

func (p Point) String() string {
	return fmt.Sprintf("[%g,%g]", p.X, p.Y)
}

// MarshalJSON encodes the point as [x,y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a point from [x,y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("geom: point needs 2 coordinates, got %d", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Box is an axis-aligned bounding box. It encodes as [[minX,minY],[maxX,maxY]].
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBox returns the identity element for Union: a box that contains
// nothing and intersects nothing.
func EmptyBox() Box {
	return Box{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// BoxOf returns the smallest box containing both points.
func BoxOf(a, b Point) Box {
	return Box{
		MinX: math.Min(a.X, b.X),
		MinY: math.Min(a.Y, b.Y),
		MaxX: math.Max(a.X, b.X),
		MaxY: math.Max(a.Y, b.Y),
	}
}

// BoxAround returns the square of half-size r centred on p.
func BoxAround(p Point, r float64) Box {
	return Box{MinX: p.X - r, MinY: p.Y - r, MaxX: p.X + r, MaxY: p.Y + r}
}

// Min returns the lower corner.
func (b Box) Min() Point { return Point{b.MinX, b.MinY} }

// Max returns the upper corner.
func (b Box) Max() Point { return Point{b.MaxX, b.MaxY} }

// IsEmpty reports whether b contains no points.
func (b Box) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Width returns the horizontal extent.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Area returns the area of b.
func (b Box) Area() float64 {
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// Margin returns the half perimeter of b.
func (b Box) Margin() float64 {
	return (b.MaxX - b.MinX) + (b.MaxY - b.MinY)
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	return Box{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// ExtendPoint returns b grown to include p.
func (b Box) ExtendPoint(p Point) Box {
	return b.Union(Box{p.X, p.Y, p.X, p.Y})
}

// EnlargedArea returns the area of the union of b and o.
func (b Box) EnlargedArea(o Box) float64 {
	return (math.Max(o.MaxX, b.MaxX) - math.Min(o.MinX, b.MinX)) *
		(math.Max(o.MaxY, b.MaxY) - math.Min(o.MinY, b.MinY))
}

// IntersectionArea returns the area shared by b and o, or 0.
func (b Box) IntersectionArea(o Box) float64 {
	minX := math.Max(b.MinX, o.MinX)
	minY := math.Max(b.MinY, o.MinY)
	maxX := math.Min(b.MaxX, o.MaxX)
	maxY := math.Min(b.MaxY, o.MaxY)
	return math.Max(0, maxX-minX) * math.Max(0, maxY-minY)
}

// Contains reports whether o lies entirely inside b, borders included.
func (b Box) Contains(o Box) bool {
	return b.MinX <= o.MinX &&
		b.MinY <= o.MinY &&
		o.MaxX <= b.MaxX &&
		o.MaxY <= b.MaxY
}

// Intersects reports whether b and o share at least one point.
func (b Box) Intersects(o Box) bool {
	return o.MinX <= b.MaxX &&
		o.MinY <= b.MaxY &&
		o.MaxX >= b.MinX &&
		o.MaxY >= b.MinY
}

// ContainsPoint reports whether p lies inside b, borders included.
func (b Box) ContainsPoint(p Point) bool {
	return b.MinX <= p.X && p.X <= b.MaxX && b.MinY <= p.Y && p.Y <= b.MaxY
}

// Pad returns b grown by d on every side.
func (b Box) Pad(d float64) Box {
	if d == 0 {
		return b
	}
	return Box{b.MinX - d, b.MinY - d, b.MaxX + d, b.MaxY + d}
}

func (b Box) String() string {
	return fmt.Sprintf("[[%g,%g],[%g,%g]]", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// MarshalJSON encodes the box as [[minX,minY],[maxX,maxY]].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([2][2]float64{{b.MinX, b.MinY}, {b.MaxX, b.MaxY}})
}

// UnmarshalJSON decodes a box from [[minX,minY],[maxX,maxY]].
func (b *Box) UnmarshalJSON(data []byte) error {
	var corners []Point
	if err := json.Unmarshal(data, &corners); err != nil {
		return err
	}
	if len(corners) != 2 {
		return fmt.Errorf("geom: box needs 2 corners, got %d", len(corners))
	}
	*b = BoxOf(corners[0], corners[1])
	return nil
}
