package modify

import (
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

type moveState struct {
	base    geom.Point
	hasBase bool
	// targets is the selection captured when the command started.
	targets []*entity.Entity
}

// Move returns the MOVE command. The selection follows the cursor in the
// preview only; the store sees a single edit when the second point is
// given. A number instead of the second point is a distance along the
// direction from the base point to the cursor. DISPLACEMENT takes the
// offset as a vector.
func Move() *dispatcher.Graph[moveState] {
	return &dispatcher.Graph[moveState]{
		Name:        CommandMove,
		Description: "Move the selected entities",
		Root: dispatcher.Rule[moveState]{
			Msg:    "Move",
			Action: captureSelection,
			Next:   []string{"POINT1", "DISPLACEMENT"},
		},
		Sub: map[string]dispatcher.Rule[moveState]{
			"POINT1": {
				Msg: "Specify base point",
				Action: func(_ *dispatcher.Context, s *moveState, params any) (dispatcher.Outcome, error) {
					p, ok := dispatcher.AsPoint(params)
					if !ok {
						return dispatcher.Retry(), nil
					}
					s.base, s.hasBase = p, true
					return dispatcher.Normal(), nil
				},
				Next: []string{"POINT2"},
			},
			"POINT2": {
				Msg: "Specify second point",
				Action: func(ctx *dispatcher.Context, s *moveState, params any) (dispatcher.Outcome, error) {
					v, ok := s.offset(ctx, params)
					if !ok {
						return dispatcher.Retry(), nil
					}
					ctx.CommitEdit(translated(s.targets, v))
					return dispatcher.Normal(), nil
				},
			},
			"DISPLACEMENT": {Msg: "Displacement", Next: []string{"VECTOR"}},
			"VECTOR": {
				Msg: "Specify displacement",
				Action: func(ctx *dispatcher.Context, s *moveState, params any) (dispatcher.Outcome, error) {
					v, ok := dispatcher.AsPoint(params)
					if !ok {
						return dispatcher.Retry(), nil
					}
					ctx.CommitEdit(translated(s.targets, v))
					return dispatcher.Normal(), nil
				},
			},
		},
		Preview: func(_ *dispatcher.Context, s *moveState, cursor geom.Point) []*entity.Entity {
			if !s.hasBase {
				return nil
			}
			return translated(s.targets, cursor.Sub(s.base))
		},
	}
}

func captureSelection(ctx *dispatcher.Context, s *moveState, _ any) (dispatcher.Outcome, error) {
	if out, stop := guard(ctx); stop {
		return out, nil
	}
	s.targets = ctx.Selection()
	return dispatcher.Normal(), nil
}

// offset resolves the second point input to a displacement.
func (s *moveState) offset(ctx *dispatcher.Context, params any) (geom.Point, bool) {
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
