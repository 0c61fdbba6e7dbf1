package modify

import (
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

// EventNoKeyNode is the data event KEYNODESDRAG ends with when nothing
// selected has a key node under the grab point.
const EventNoKeyNode = "NoKeyNode"

// Grip names one key node of a stored entity.
type Grip struct {
	ID   string         `json:"id"`
	Node entity.KeyNode `json:"node"`
}

type dragState struct {
	base    geom.Point
	grips   []Grip
	order   []string
	targets map[string]*entity.Entity
}

// KeyNodeDrag returns the KEYNODESDRAG command. It starts with the grips
// to drag: a []Grip, or a grab point whose surrounding hit box picks the
// key nodes of the selected entities (the cursor when no input is given).
// The grips follow the cursor in the preview; the second point, or a
// distance along the grab point to cursor direction, commits one edit.
func KeyNodeDrag() *dispatcher.Graph[dragState] {
	return &dispatcher.Graph[dragState]{
		Name:        CommandKeyNodeDrag,
		Description: "Drag key nodes of the selected entities",
		Root: dispatcher.Rule[dragState]{
			Msg:    "Drag key node",
			Action: grab,
			Next:   []string{"POINT2"},
		},
		Sub: map[string]dispatcher.Rule[dragState]{
			"POINT2": {
				Msg: "Specify second point",
				Action: func(ctx *dispatcher.Context, s *dragState, params any) (dispatcher.Outcome, error) {
					v, ok := s.offset(ctx, params)
					if !ok {
						return dispatcher.Retry(), nil
					}
					ctx.CommitEdit(s.dragged(v))
					return dispatcher.Normal(), nil
				},
			},
		},
		Preview: func(_ *dispatcher.Context, s *dragState, cursor geom.Point) []*entity.Entity {
			if len(s.grips) == 0 {
				return nil
			}
			return s.dragged(cursor.Sub(s.base))
		},
	}
}

func grab(ctx *dispatcher.Context, s *dragState, params any) (dispatcher.Outcome, error) {
	if out, stop := guard(ctx); stop {
		return out, nil
	}
	selected := make(map[string]*entity.Entity, ctx.SelectionLen())
	for _, e := range ctx.Selection() {
		selected[e.ID] = e
	}

	var grips []Grip
	if given, ok := params.([]Grip); ok {
		grips = given
		if len(grips) > 0 {
			s.base = grips[0].Node.At
		}
	} else {
		p, ok := dispatcher.AsPoint(params)
		if !ok {
			p = ctx.Cursor()
		}
		s.base = p
		box := ctx.HitBox(p)
		for _, e := range ctx.Selection() {
			for _, n := range e.KeyNodesIn(box) {
				grips = append(grips, Grip{ID: e.ID, Node: n})
			}
		}
	}

	s.targets = make(map[string]*entity.Entity)
	for _, g := range grips {
		e, ok := selected[g.ID]
		if !ok {
			continue
		}
		if _, seen := s.targets[g.ID]; !seen {
			s.targets[g.ID] = e
			s.order = append(s.order, g.ID)
		}
		s.grips = append(s.grips, g)
	}
	if len(s.grips) == 0 {
		return dispatcher.Over(map[string]any{"event": EventNoKeyNode}), nil
	}
	return dispatcher.Normal(), nil
}

// offset resolves the second point input to a drag vector.
func (s *dragState) offset(ctx *dispatcher.Context, params any) (geom.Point, bool) {
	if p, ok := dispatcher.AsPoint(params); ok {
		return p.Sub(s.base), true
	}
	d, ok := dispatcher.AsNumber(params)
	if !ok || d == 0 {
		return geom.Point{}, false
	}
	cursor := ctx.Cursor()
	if cursor == s.base {
		return geom.Point{}, false
	}
	return s.base.Toward(cursor, d).Sub(s.base), true
}

// dragged applies every grip moved by v to copies of the grabbed entities,
// in the order they were grabbed. Grips that no longer apply are skipped.
func (s *dragState) dragged(v geom.Point) []*entity.Entity {
	work := make(map[string]*entity.Entity, len(s.order))
	for id, e := range s.targets {
		work[id] = e
	}
	for _, g := range s.grips {
		if moved, ok := work[g.ID].DragKeyNode(g.Node, g.Node.At.Add(v)); ok {
			work[g.ID] = moved
		}
	}
	out := make([]*entity.Entity, 0, len(s.order))
	for _, id := range s.order {
		e := work[id].Clone()
		e.AABB = nil
		e.Flags.BoxSelected = false
		e.Flags.Hovered = false
		out = append(out, e)
	}
	return out
}
