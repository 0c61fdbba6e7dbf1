package draw

import (
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

type plineState struct {
	vertices []geom.Point
	// id is the committed entity; empty until the second vertex.
	id string
}

// Polyline returns the PLINE command. The vertices build one entity: it
// is created with the second vertex and edited with every vertex after.
func Polyline() *dispatcher.Graph[plineState] {
	undo := dispatcher.Rule[plineState]{Msg: "Undo (U)", Action: plineUndo}

	return &dispatcher.Graph[plineState]{
		Name:        CommandPolyline,
		Description: "Draw a polyline",
		Root:        dispatcher.Rule[plineState]{Msg: "Polyline", Next: []string{"POINT1"}},
		Sub: map[string]dispatcher.Rule[plineState]{
			"POINT1": {
				Msg: "Specify start point",
				Action: func(ctx *dispatcher.Context, s *plineState, params any) (dispatcher.Outcome, error) {
					p, ok := pointOrRetry(ctx, params)
					if !ok {
						return dispatcher.Retry(), nil
					}
					s.vertices = []geom.Point{p}
					return dispatcher.Normal(), nil
				},
				Next: []string{"POINT2"},
			},
			"POINT2": {
				Msg:    "Specify next point",
				Action: plineNext,
				Next:   []string{"POINT2", StateClose, StateUndoShort, StateUndo},
			},
			StateClose: {
				Msg: "Close (C)",
				Action: func(ctx *dispatcher.Context, s *plineState, _ any) (dispatcher.Outcome, error) {
					if len(s.vertices) < 3 || s.id == "" {
						return dispatcher.Retry(), nil
					}
					return dispatcher.Normal(), s.commit(ctx, true)
				},
			},
			StateUndoShort: undo,
			StateUndo:      undo,
		},
		Preview: func(_ *dispatcher.Context, s *plineState, cursor geom.Point) []*entity.Entity {
			if len(s.vertices) == 0 {
				return nil
			}
			return []*entity.Entity{rubberBand(s.vertices[len(s.vertices)-1], cursor)}
		},
	}
}

func plineNext(ctx *dispatcher.Context, s *plineState, params any) (dispatcher.Outcome, error) {
	p, ok := pointOrRetry(ctx, params)
	if !ok {
		return dispatcher.Retry(), nil
	}
	if len(s.vertices) == 0 {
		return dispatcher.Outcome{}, dispatcher.Invariantf("polyline vertex without a start point")
	}
	if p == s.vertices[len(s.vertices)-1] {
		return dispatcher.Retry(), nil
	}
	s.vertices = append(s.vertices, p)
	return dispatcher.Normal(), s.commit(ctx, false)
}

// commit writes the current vertices: a create the first time, an edit
// afterwards.
func (s *plineState) commit(ctx *dispatcher.Context, closed bool) error {
	e := polyline(s.vertices, closed)
	if s.id == "" {
		added := ctx.CommitCreate([]*entity.Entity{e})
		if len(added) != 1 {
			return dispatcher.Invariantf("polyline create stored %d entities", len(added))
		}
		s.id = added[0].ID
		return nil
	}
	cur, ok := ctx.Get(s.id)
	if !ok {
		return dispatcher.Invariantf("polyline %s vanished", s.id)
	}
	cur.Shapes = e.Shapes
	cur.Flags.Closed = closed
	ctx.CommitEdit([]*entity.Entity{cur})
	return nil
}

func plineUndo(ctx *dispatcher.Context, s *plineState, _ any) (dispatcher.Outcome, error) {
	if len(s.vertices) > 0 {
		s.vertices = s.vertices[:len(s.vertices)-1]
	}
	switch {
	case len(s.vertices) >= 2:
		if err := s.commit(ctx, false); err != nil {
			return dispatcher.Outcome{}, err
		}
		return dispatcher.ResumeAfter("POINT2"), nil
	case s.id != "":
		if e, ok := ctx.Get(s.id); ok {
			ctx.CommitDelete([]*entity.Entity{e})
		}
		s.id = ""
	}
	if len(s.vertices) == 1 {
		return dispatcher.ResumeAfter("POINT1"), nil
	}
	return dispatcher.ResumeAfter(""), nil
}
