package modify

import (
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

type copyState struct {
	moveState
	// placed holds the ids of each committed batch of copies.
	placed [][]string
}

// Copy returns the COPY command. After the base point every second point
// places one more translated copy of the selection; U takes the last
// copy back.
func Copy() *dispatcher.Graph[copyState] {
	undo := dispatcher.Rule[copyState]{
		Msg: "Undo (U)",
		Action: func(ctx *dispatcher.Context, s *copyState, _ any) (dispatcher.Outcome, error) {
			n := len(s.placed)
			if n == 0 {
				return dispatcher.ResumeAfter("POINT1"), nil
			}
			var batch []*entity.Entity
			for _, id := range s.placed[n-1] {
				if e, ok := ctx.Get(id); ok {
					batch = append(batch, e)
				}
			}
			s.placed = s.placed[:n-1]
			ctx.CommitDelete(batch)
			return dispatcher.ResumeAfter("POINT2"), nil
		},
	}

	return &dispatcher.Graph[copyState]{
		Name:        CommandCopy,
		Description: "Copy the selected entities",
		Root: dispatcher.Rule[copyState]{
			Msg: "Copy",
			Action: func(ctx *dispatcher.Context, s *copyState, params any) (dispatcher.Outcome, error) {
				return captureSelection(ctx, &s.moveState, params)
			},
			Next: []string{"POINT1"},
		},
		Sub: map[string]dispatcher.Rule[copyState]{
			"POINT1": {
				Msg: "Specify base point",
				Action: func(_ *dispatcher.Context, s *copyState, params any) (dispatcher.Outcome, error) {
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
				Action: func(ctx *dispatcher.Context, s *copyState, params any) (dispatcher.Outcome, error) {
					v, ok := s.offset(ctx, params)
					if !ok || v == (geom.Point{}) {
						return dispatcher.Retry(), nil
					}
					added := ctx.CommitCreate(translated(s.targets, v))
					s.placed = append(s.placed, entity.IDs(added))
					return dispatcher.Normal(), nil
				},
				Next: []string{"POINT2", "U", "UNDO"},
			},
			"U":    undo,
			"UNDO": undo,
		},
		Preview: func(_ *dispatcher.Context, s *copyState, cursor geom.Point) []*entity.Entity {
			if !s.hasBase {
				return nil
			}
			return translated(s.targets, cursor.Sub(s.base))
		},
	}
}
