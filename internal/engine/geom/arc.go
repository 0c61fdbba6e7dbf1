package geom

import (
	"errors"
	"math"
)

// ErrCollinear is returned when three points do not define a circle.
var ErrCollinear = errors.New("geom: points are collinear")

// Arc is a circular arc. Angles are in radians measured with atan2 in
// drawing space. When Anticlockwise is false the arc sweeps from Start
// towards increasing angles until End.
type Arc struct {
	Center        Point
	Radius        float64
	Start, End    float64
	Anticlockwise bool
}

// ArcThrough returns the arc that starts at p0, passes through p1 and ends
// at p2.
func ArcThrough(p0, p1, p2 Point) (Arc, error) {
	d := 2 * (p0.X*(p1.Y-p2.Y) + p1.X*(p2.Y-p0.Y) + p2.X*(p0.Y-p1.Y))
	if d == 0 {
		return Arc{}, ErrCollinear
	}
	s0 := p0.X*p0.X + p0.Y*p0.Y
	s1 := p1.X*p1.X + p1.Y*p1.Y
	s2 := p2.X*p2.X + p2.Y*p2.Y
	c := Point{
		X: (s0*(p1.Y-p2.Y) + s1*(p2.Y-p0.Y) + s2*(p0.Y-p1.Y)) / d,
		Y: (s0*(p2.X-p1.X) + s1*(p0.X-p2.X) + s2*(p1.X-p0.X)) / d,
	}
	v1 := p1.Sub(p0)
	v2 := p2.Sub(p0)
	return Arc{
		Center:        c,
		Radius:        p0.Dist(c),
		Start:         math.Atan2(p0.Y-c.Y, p0.X-c.X),
		End:           math.Atan2(p2.Y-c.Y, p2.X-c.X),
		Anticlockwise: v1.X*v2.Y-v1.Y*v2.X < 0,
	}, nil
}

// normalizeAngle maps a into [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// PointAt returns the point of the arc's circle at angle a.
func (a Arc) PointAt(angle float64) Point {
	return Point{
		X: a.Center.X + a.Radius*math.Cos(angle),
		Y: a.Center.Y + a.Radius*math.Sin(angle),
	}
}

// StartPoint returns the first end of the arc.
func (a Arc) StartPoint() Point { return a.PointAt(a.Start) }

// EndPoint returns the second end of the arc.
func (a Arc) EndPoint() Point { return a.PointAt(a.End) }

// Covers reports whether the sweep of the arc includes angle.
func (a Arc) Covers(angle float64) bool {
	if a.Anticlockwise {
		return normalizeAngle(a.Start-angle) <= normalizeAngle(a.Start-a.End)
	}
	return normalizeAngle(angle-a.Start) <= normalizeAngle(a.End-a.Start)
}

// Bounds returns the tight bounding box of the arc.
func (a Arc) Bounds() Box {
	b := BoxOf(a.StartPoint(), a.EndPoint())
	for _, k := range [4]float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2} {
		if a.Covers(k) {
			b = b.ExtendPoint(a.PointAt(k))
		}
	}
	return b
}

// IntersectsBox reports whether the arc outline touches box.
func (a Arc) IntersectsBox(box Box) bool {
	if !CircleIntersectsBox(a.Center, a.Radius, box) {
		return false
	}
	if box.ContainsPoint(a.StartPoint()) || box.ContainsPoint(a.EndPoint()) {
		return true
	}
	corners := [5]Point{
		{box.MinX, box.MinY},
		{box.MaxX, box.MinY},
		{box.MaxX, box.MaxY},
		{box.MinX, box.MaxY},
		{box.MinX, box.MinY},
	}
	for i := 0; i < 4; i++ {
		for _, angle := range circleSegmentAngles(a.Center, a.Radius, corners[i], corners[i+1]) {
			if a.Covers(angle) {
				return true
			}
		}
	}
	return false
}
