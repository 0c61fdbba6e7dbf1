package entity

import (
	"slices"
	"testing"

	"github.com/dshills/vecstorm/internal/engine/geom"
)

func TestKeyNodes(t *testing.T) {
	text := New(KindText, Shape{Kind: KindText, Points: []geom.Point{{X: 0, Y: 10}, {X: 20, Y: 0}}})

	tests := []struct {
		name   string
		entity *Entity
		want   []KeyNode
	}{
		{"line", Line(geom.Pt(0, 0), geom.Pt(10, 0)), []KeyNode{
			{Kind: KeyEndpoint, Index: 0, At: geom.Pt(0, 0)},
			{Kind: KeyEndpoint, Index: 1, At: geom.Pt(10, 0)},
			{Kind: KeyMidpoint, Index: 0, At: geom.Pt(5, 0)},
		}},
		{"circle", Circle(geom.Pt(1, 1), 2), []KeyNode{
			{Kind: KeyCenter, At: geom.Pt(1, 1)},
			{Kind: KeyQuadrant, Index: 0, At: geom.Pt(3, 1)},
			{Kind: KeyQuadrant, Index: 1, At: geom.Pt(1, 3)},
			{Kind: KeyQuadrant, Index: 2, At: geom.Pt(-1, 1)},
			{Kind: KeyQuadrant, Index: 3, At: geom.Pt(1, -1)},
		}},
		{"text", text, []KeyNode{
			{Kind: KeyEndpoint, Index: 0, At: geom.Pt(0, 10)},
			{Kind: KeyEndpoint, Index: 1, At: geom.Pt(20, 10)},
			{Kind: KeyEndpoint, Index: 2, At: geom.Pt(20, 0)},
			{Kind: KeyEndpoint, Index: 3, At: geom.Pt(0, 0)},
		}},
		{"empty", New(KindLine), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entity.KeyNodes(); !slices.Equal(got, tt.want) {
				t.Errorf("KeyNodes() = %+v, want %+v", got, tt.want)
			}
		})
	}

	in := Line(geom.Pt(0, 0), geom.Pt(10, 0)).KeyNodesIn(geom.BoxAround(geom.Pt(9, 1), 2))
	if len(in) != 1 || in[0].Kind != KeyEndpoint || in[0].Index != 1 {
		t.Errorf("KeyNodesIn = %+v, want the end point", in)
	}
}

func TestDragKeyNode(t *testing.T) {
	closed := New(KindPolyline, Shape{Kind: KindLine, Points: []geom.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 0}}})
	closed.Flags.Closed = true
	text := New(KindText, Shape{Kind: KindText, Points: []geom.Point{{X: 0, Y: 10}, {X: 20, Y: 0}}})

	tests := []struct {
		name   string
		entity *Entity
		node   KeyNode
		to     geom.Point
		want   []geom.Point
		radius float64
		ok     bool
	}{
		{"line end", Line(geom.Pt(0, 0), geom.Pt(10, 0)), KeyNode{Kind: KeyEndpoint, Index: 1}, geom.Pt(10, 5),
			[]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 5}}, 0, true},
		{"line midpoint", Line(geom.Pt(0, 0), geom.Pt(10, 0)), KeyNode{Kind: KeyMidpoint, Index: 0}, geom.Pt(6, 1),
			[]geom.Point{{X: 1, Y: 1}, {X: 11, Y: 1}}, 0, true},
		{"closed outline start", closed, KeyNode{Kind: KeyEndpoint, Index: 0}, geom.Pt(-1, -1),
			[]geom.Point{{X: -1, Y: -1}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: -1, Y: -1}}, 0, true},
		{"text corner 3", text, KeyNode{Kind: KeyEndpoint, Index: 3}, geom.Pt(-5, -5),
			[]geom.Point{{X: -5, Y: 10}, {X: 20, Y: -5}}, 0, true},
		{"circle centre", Circle(geom.Pt(0, 0), 2), KeyNode{Kind: KeyCenter}, geom.Pt(3, 3),
			[]geom.Point{{X: 3, Y: 3}}, 2, true},
		{"circle quadrant", Circle(geom.Pt(0, 0), 2), KeyNode{Kind: KeyQuadrant, Index: 1}, geom.Pt(0, 7),
			[]geom.Point{{X: 0, Y: 0}}, 7, true},
		{"quadrant onto centre", Circle(geom.Pt(0, 0), 2), KeyNode{Kind: KeyQuadrant}, geom.Pt(0, 0), nil, 0, false},
		{"bad index", Line(geom.Pt(0, 0), geom.Pt(10, 0)), KeyNode{Kind: KeyEndpoint, Index: 5}, geom.Pt(0, 0), nil, 0, false},
		{"bad shape", Line(geom.Pt(0, 0), geom.Pt(10, 0)), KeyNode{Shape: 2}, geom.Pt(0, 0), nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.entity.Clone()
			got, ok := tt.entity.DragKeyNode(tt.node, tt.to)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !sameGeometry(tt.entity, before) {
				t.Error("DragKeyNode modified its receiver")
			}
			if !ok {
				return
			}
			if got.AABB != nil {
				t.Error("dragged copy keeps a stale box")
			}
			if !slices.Equal(got.Shapes[0].Points, tt.want) {
				t.Errorf("points = %v, want %v", got.Shapes[0].Points, tt.want)
			}
			if got.Shapes[0].Radius != tt.radius {
				t.Errorf("radius = %g, want %g", got.Shapes[0].Radius, tt.radius)
			}
		})
	}
}

func sameGeometry(a, b *Entity) bool {
	if len(a.Shapes) != len(b.Shapes) {
		return false
	}
	for i := range a.Shapes {
		if !slices.Equal(a.Shapes[i].Points, b.Shapes[i].Points) || a.Shapes[i].Radius != b.Shapes[i].Radius {
			return false
		}
	}
	return true
}
