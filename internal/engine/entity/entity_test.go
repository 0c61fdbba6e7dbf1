package entity

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/engine/layer"
)

func TestComputeAABB(t *testing.T) {
	arc, err := geom.ArcThrough(geom.Pt(10, 0), geom.Pt(0, 10), geom.Pt(-10, 0))
	if err != nil {
		t.Fatalf("ArcThrough: %v", err)
	}

	tests := []struct {
		name   string
		entity *Entity
		want   geom.Box
		ok     bool
	}{
		{"line", Line(geom.Pt(10, 10), geom.Pt(0, 0)), geom.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, true},
		{"circle", Circle(geom.Pt(5, 5), 2), geom.Box{MinX: 3, MinY: 3, MaxX: 7, MaxY: 7}, true},
		{"text", New(KindText, Shape{Kind: KindText, Points: []geom.Point{{X: 4, Y: 8}, {X: 1, Y: 2}}}), geom.Box{MinX: 1, MinY: 2, MaxX: 4, MaxY: 8}, true},
		{"polyline", New(KindPolyline,
			Shape{Kind: KindLine, Points: []geom.Point{{X: 0, Y: 0}, {X: 5, Y: 0}}},
			Shape{Kind: KindLine, Points: []geom.Point{{X: 5, Y: 0}, {X: 5, Y: -3}}},
		), geom.Box{MinX: 0, MinY: -3, MaxX: 5, MaxY: 0}, true},
		{"arc", New(KindArc, ArcShape(arc)), geom.Box{MinX: -10, MinY: 0, MaxX: 10, MaxY: 10}, true},
		{"degenerate line", New(KindLine, Shape{Kind: KindLine, Points: []geom.Point{{X: 1, Y: 1}}}), geom.Box{}, false},
		{"empty", New(KindLine), geom.Box{}, false},
	}

	var g Geometry
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.ComputeAABB(tt.entity)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if math.Abs(got.MinX-tt.want.MinX) > 1e-9 || math.Abs(got.MinY-tt.want.MinY) > 1e-9 ||
				math.Abs(got.MaxX-tt.want.MaxX) > 1e-9 || math.Abs(got.MaxY-tt.want.MaxY) > 1e-9 {
				t.Errorf("ComputeAABB = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeAABBPadding(t *testing.T) {
	g := Geometry{Padding: 1}
	got, ok := g.ComputeAABB(Line(geom.Pt(0, 0), geom.Pt(10, 10)))
	if !ok {
		t.Fatal("expected a box")
	}
	if want := (geom.Box{MinX: -1, MinY: -1, MaxX: 11, MaxY: 11}); got != want {
		t.Errorf("ComputeAABB = %v, want %v", got, want)
	}
}

func TestPreciseIntersects(t *testing.T) {
	var g Geometry
	diag := Line(geom.Pt(0, 0), geom.Pt(10, 10))
	circle := Circle(geom.Pt(0, 0), 10)

	tests := []struct {
		name   string
		entity *Entity
		box    geom.Box
		want   bool
	}{
		{"line on diagonal", diag, geom.BoxAround(geom.Pt(5, 5), 0.5), true},
		{"line box corner off diagonal", diag, geom.Box{MinX: 8, MinY: 0, MaxX: 10, MaxY: 2}, false},
		{"circle outline", circle, geom.BoxAround(geom.Pt(10, 0), 1), true},
		{"circle interior", circle, geom.BoxAround(geom.Pt(0, 0), 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.PreciseIntersects(tt.box, tt.entity); got != tt.want {
				t.Errorf("PreciseIntersects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	box := geom.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	e := Line(geom.Pt(0, 0), geom.Pt(10, 10))
	e.ID = "ent_1"
	e.AABB = &box
	e.Shapes[0].LineDash = []float64{2, 2}

	c := e.Clone()
	if !reflect.DeepEqual(e, c) {
		t.Fatalf("clone differs: %+v vs %+v", e, c)
	}

	c.Shapes[0].Points[0] = geom.Pt(99, 99)
	c.Shapes[0].LineDash[0] = 7
	c.AABB.MaxX = 50
	c.Flags.BoxSelected = true

	if e.Shapes[0].Points[0] != geom.Pt(0, 0) {
		t.Error("points shared with clone")
	}
	if e.Shapes[0].LineDash[0] != 2 {
		t.Error("line dash shared with clone")
	}
	if e.AABB.MaxX != 10 {
		t.Error("aabb shared with clone")
	}
	if e.Flags.BoxSelected {
		t.Error("flags shared with clone")
	}
}

func TestTranslateClearsBox(t *testing.T) {
	box := geom.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	e := Line(geom.Pt(0, 0), geom.Pt(10, 10))
	e.AABB = &box

	moved := e.Translate(geom.Pt(5, -5))
	if moved.AABB != nil {
		t.Error("translated copy should have no cached box")
	}
	if moved.Shapes[0].Points[1] != geom.Pt(15, 5) {
		t.Errorf("translated point = %v", moved.Shapes[0].Points[1])
	}
	if e.Shapes[0].Points[1] != geom.Pt(10, 10) {
		t.Error("Translate mutated the original")
	}
}

func TestEntityJSONShape(t *testing.T) {
	box := geom.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	e := Line(geom.Pt(0, 0), geom.Pt(10, 10))
	e.ID = "ent_1"
	e.AABB = &box
	e.Layer = layer.New("layer_1", "0")

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{
		`"id":"ent_1"`,
		`"kind":"line"`,
		`"shapeList":[{"kind":"line","points":[[0,0],[10,10]]}]`,
		`"aabb":[[0,0],[10,10]]`,
		`"flags":{"hovered":false,"boxSelected":false}`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s missing %s", data, want)
		}
	}

	transient := Line(geom.Pt(0, 0), geom.Pt(1, 1))
	data, err = json.Marshal(transient)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"aabb":null`) {
		t.Errorf("transient entity JSON %s should carry a null aabb", data)
	}
}

func TestUnionBox(t *testing.T) {
	a := geom.Box{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}
	b := geom.Box{MinX: 5, MinY: 5, MaxX: 6, MaxY: 6}
	es := []*Entity{{AABB: &a}, {AABB: &b}, {}}
	if got := UnionBox(es); got != (geom.Box{MinX: 0, MinY: 0, MaxX: 6, MaxY: 6}) {
		t.Errorf("UnionBox = %v", got)
	}
	if !UnionBox(nil).IsEmpty() {
		t.Error("UnionBox(nil) should be empty")
	}
}
