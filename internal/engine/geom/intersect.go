package geom

import "math"

// SegmentIntersectsBox reports whether the segment a-b touches box.
// It clips the segment against the box (Liang-Barsky).
func SegmentIntersectsBox(a, b Point, box Box) bool {
	if box.IsEmpty() {
		return false
	}
	if box.ContainsPoint(a) || box.ContainsPoint(b) {
		return true
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}
	return clip(-dx, a.X-box.MinX) &&
		clip(dx, box.MaxX-a.X) &&
		clip(-dy, a.Y-box.MinY) &&
		clip(dy, box.MaxY-a.Y) &&
		t0 <= t1
}

// CircleIntersectsBox reports whether the outline of the circle touches
// box. A box lying strictly inside the circle does not touch the outline.
func CircleIntersectsBox(c Point, r float64, box Box) bool {
	if box.IsEmpty() || r < 0 {
		return false
	}
	// nearest point of the box to the centre
	nx := math.Max(box.MinX, math.Min(c.X, box.MaxX))
	ny := math.Max(box.MinY, math.Min(c.Y, box.MaxY))
	if math.Hypot(nx-c.X, ny-c.Y) > r {
		return false
	}
	// farthest corner
	fx := math.Max(math.Abs(box.MinX-c.X), math.Abs(box.MaxX-c.X))
	fy := math.Max(math.Abs(box.MinY-c.Y), math.Abs(box.MaxY-c.Y))
	return math.Hypot(fx, fy) >= r
}

// circleSegmentAngles returns the angles at which the circle crosses the
// segment a-b.
func circleSegmentAngles(c Point, r float64, a, b Point) []float64 {
	d := b.Sub(a)
	f := a.Sub(c)
	qa := d.X*d.X + d.Y*d.Y
	if qa == 0 {
		return nil
	}
	qb := 2 * (f.X*d.X + f.Y*d.Y)
	qc := f.X*f.X + f.Y*f.Y - r*r
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	var out []float64
	for _, t := range [2]float64{(-qb - sq) / (2 * qa), (-qb + sq) / (2 * qa)} {
		if t < 0 || t > 1 {
			continue
		}
		p := a.Add(d.Scale(t))
		out = append(out, math.Atan2(p.Y-c.Y, p.X-c.X))
	}
	return out
}
