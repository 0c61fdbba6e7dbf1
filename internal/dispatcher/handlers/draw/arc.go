package draw

import (
	"errors"

	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

type arcState struct {
	points []geom.Point
}

// Arc returns the ARC command: start point, a point on the arc, end point.
func Arc() *dispatcher.Graph[arcState] {
	collect := func(msg string, next ...string) dispatcher.Rule[arcState] {
		return dispatcher.Rule[arcState]{
			Msg: msg,
			Action: func(ctx *dispatcher.Context, s *arcState, params any) (dispatcher.Outcome, error) {
				p, ok := pointOrRetry(ctx, params)
				if !ok {
					return dispatcher.Retry(), nil
				}
				s.points = append(s.points, p)
				return dispatcher.Normal(), nil
			},
			Next: next,
		}
	}
	undo := dispatcher.Rule[arcState]{
		Msg: "Undo (U)",
		Action: func(_ *dispatcher.Context, s *arcState, _ any) (dispatcher.Outcome, error) {
			switch len(s.points) {
			case 0:
				return dispatcher.ResumeAfter(""), nil
			case 1:
				s.points = nil
				return dispatcher.ResumeAfter(""), nil
			default:
				s.points = s.points[:1]
				return dispatcher.ResumeAfter("POINT1"), nil
			}
		},
	}

	return &dispatcher.Graph[arcState]{
		Name:        CommandArc,
		Description: "Draw an arc through three points",
		Root:        dispatcher.Rule[arcState]{Msg: "Arc", Next: []string{"POINT1"}},
		Sub: map[string]dispatcher.Rule[arcState]{
			"POINT1": collect("Specify start point", "POINT2", StateUndo),
			"POINT2": collect("Specify second point", "POINT3", StateUndo),
			"POINT3": {
				Msg:    "Specify end point",
				Action: arcEnd,
			},
			StateUndo: undo,
		},
		Preview: func(_ *dispatcher.Context, s *arcState, cursor geom.Point) []*entity.Entity {
			switch len(s.points) {
			case 1:
				return []*entity.Entity{rubberBand(s.points[0], cursor)}
			case 2:
				a, err := geom.ArcThrough(s.points[0], s.points[1], cursor)
				if err != nil {
					return []*entity.Entity{rubberBand(s.points[0], cursor)}
				}
				return []*entity.Entity{entity.New(entity.KindArc, entity.ArcShape(a))}
			}
			return nil
		},
	}
}

func arcEnd(ctx *dispatcher.Context, s *arcState, params any) (dispatcher.Outcome, error) {
	p, ok := pointOrRetry(ctx, params)
	if !ok {
		return dispatcher.Retry(), nil
	}
	pts := append(s.points, p)
	if len(pts) != 3 {
		return dispatcher.Outcome{}, dispatcher.Invariantf("arc needs 3 points, has %d", len(pts))
	}
	a, err := geom.ArcThrough(pts[0], pts[1], pts[2])
	if errors.Is(err, geom.ErrCollinear) {
		ctx.Logger().Debug("draw: arc: %v", err)
		return dispatcher.Retry(), nil
	}
	if err != nil {
		return dispatcher.Outcome{}, err
	}
	s.points = pts
	ctx.CommitCreate([]*entity.Entity{entity.New(entity.KindArc, entity.ArcShape(a))})
	return dispatcher.Normal(), nil
}
