package entity

import "github.com/dshills/vecstorm/internal/engine/geom"

// KeyNodeKind is the role of a grip point on a shape.
type KeyNodeKind uint8

// Key node kinds.
const (
	// KeyEndpoint is a line vertex or a text box corner.
	KeyEndpoint KeyNodeKind = iota
	// KeyMidpoint is the middle of a line segment.
	KeyMidpoint
	// KeyCenter is the centre of a circle or arc.
	KeyCenter
	// KeyQuadrant is one of the four axis points of a circle.
	KeyQuadrant
)

func (k KeyNodeKind) String() string {
	switch k {
	case KeyEndpoint:
		return "endpoint"
	case KeyMidpoint:
		return "midpoint"
	case KeyCenter:
		return "center"
	case KeyQuadrant:
		return "quadrant"
	default:
		return "unknown"
	}
}

// KeyNode is a grip point of one shape of an entity.
//
//	line:   an endpoint per vertex, a midpoint per segment
//	mtext:  four corner endpoints, clockwise from Points[0]
//	circle: the centre and four quadrants (east, north, west, south)
//	arc:    the centre
type KeyNode struct {
	Shape int         `json:"shape"`
	Kind  KeyNodeKind `json:"kind"`
	Index int         `json:"index"`
	At    geom.Point  `json:"at"`
}

// KeyNodes returns every key node of e.
func (e *Entity) KeyNodes() []KeyNode {
	var out []KeyNode
	for i, s := range e.Shapes {
		out = append(out, s.keyNodes(i)...)
	}
	return out
}

// KeyNodesIn returns the key nodes of e that lie inside box.
func (e *Entity) KeyNodesIn(box geom.Box) []KeyNode {
	var out []KeyNode
	for _, n := range e.KeyNodes() {
		if box.ContainsPoint(n.At) {
			out = append(out, n)
		}
	}
	return out
}

func (s Shape) keyNodes(shape int) []KeyNode {
	node := func(kind KeyNodeKind, index int, at geom.Point) KeyNode {
		return KeyNode{Shape: shape, Kind: kind, Index: index, At: at}
	}
	var out []KeyNode
	switch s.Kind {
	case KindLine:
		for i, p := range s.Points {
			out = append(out, node(KeyEndpoint, i, p))
		}
		for i := 1; i < len(s.Points); i++ {
			out = append(out, node(KeyMidpoint, i-1, midpoint(s.Points[i-1], s.Points[i])))
		}
	case KindText:
		if len(s.Points) == 2 {
			for i, c := range textCorners(s.Points[0], s.Points[1]) {
				out = append(out, node(KeyEndpoint, i, c))
			}
		}
	case KindCircle:
		if len(s.Points) == 1 {
			c, r := s.Points[0], s.Radius
			out = append(out,
				node(KeyCenter, 0, c),
				node(KeyQuadrant, 0, geom.Pt(c.X+r, c.Y)),
				node(KeyQuadrant, 1, geom.Pt(c.X, c.Y+r)),
				node(KeyQuadrant, 2, geom.Pt(c.X-r, c.Y)),
				node(KeyQuadrant, 3, geom.Pt(c.X, c.Y-r)),
			)
		}
	case KindArc:
		if len(s.Points) == 1 {
			out = append(out, node(KeyCenter, 0, s.Points[0]))
		}
	}
	return out
}

func midpoint(a, b geom.Point) geom.Point { return a.Add(b).Scale(0.5) }

// textCorners lists a text box's corners starting at a and going round to
// b and back.
func textCorners(a, b geom.Point) [4]geom.Point {
	return [4]geom.Point{a, geom.Pt(b.X, a.Y), b, geom.Pt(a.X, b.Y)}
}

// DragKeyNode returns a copy of e with key node n moved to. Endpoints move
// alone; a segment midpoint or a centre carries the whole entity; a
// quadrant resizes its circle. The copy's box is cleared. It reports false
// when n does not name a node of e.
func (e *Entity) DragKeyNode(n KeyNode, to geom.Point) (*Entity, bool) {
	if n.Shape < 0 || n.Shape >= len(e.Shapes) {
		return nil, false
	}
	s := e.Shapes[n.Shape]
	c := e.Clone()
	c.AABB = nil
	switch {
	case s.Kind == KindLine && n.Kind == KeyEndpoint && n.Index >= 0 && n.Index < len(s.Points):
		pts := c.Shapes[n.Shape].Points
		last := len(pts) - 1
		// a closed outline repeats its first vertex, and they move together
		if e.Flags.Closed && last > 0 && (n.Index == 0 || n.Index == last) && pts[0] == pts[last] {
			pts[0], pts[last] = to, to
		} else {
			pts[n.Index] = to
		}
	case s.Kind == KindLine && n.Kind == KeyMidpoint && n.Index >= 0 && n.Index+1 < len(s.Points):
		c = e.Translate(to.Sub(midpoint(s.Points[n.Index], s.Points[n.Index+1])))
	case s.Kind == KindText && n.Kind == KeyEndpoint && n.Index >= 0 && n.Index < 4 && len(s.Points) == 2:
		a, b := s.Points[0], s.Points[1]
		switch n.Index {
		case 0:
			a = to
		case 1:
			b.X, a.Y = to.X, to.Y
		case 2:
			b = to
		case 3:
			a.X, b.Y = to.X, to.Y
		}
		c.Shapes[n.Shape].Points = []geom.Point{a, b}
	case (s.Kind == KindCircle || s.Kind == KindArc) && n.Kind == KeyCenter && len(s.Points) == 1:
		c = e.Translate(to.Sub(s.Points[0]))
	case s.Kind == KindCircle && n.Kind == KeyQuadrant && len(s.Points) == 1:
		r := s.Points[0].Dist(to)
		if r == 0 {
			return nil, false
		}
		c.Shapes[n.Shape].Radius = r
	default:
		return nil, false
	}
	return c, true
}
