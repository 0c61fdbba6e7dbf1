package draw

import (
	"errors"

	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

type circleState struct {
	center    geom.Point
	hasCenter bool
	diameter  bool
	// through collects the points of the three-point form.
	through []geom.Point
}

// Circle returns the CIRCLE command. After the centre the radius is
// given directly (R, the default) or as a diameter (D); either may be a
// number or a point on the circle. P3 draws the circle through three
// points instead.
func Circle() *dispatcher.Graph[circleState] {
	size := func(diameter bool) dispatcher.Rule[circleState] {
		msg := "Specify radius"
		if diameter {
			msg = "Specify diameter"
		}
		return dispatcher.Rule[circleState]{
			Msg: msg,
			Action: func(ctx *dispatcher.Context, s *circleState, params any) (dispatcher.Outcome, error) {
				s.diameter = diameter
				r, ok := s.radius(params)
				if !ok {
					ctx.Logger().Debug("draw: circle: bad size %v", params)
					return dispatcher.Retry(), nil
				}
				ctx.CommitCreate([]*entity.Entity{entity.Circle(s.center, r)})
				return dispatcher.Normal(), nil
			},
		}
	}
	through := func(next ...string) dispatcher.Rule[circleState] {
		return dispatcher.Rule[circleState]{
			Msg:    "Specify point on circle",
			Action: circleThrough,
			Next:   next,
		}
	}

	return &dispatcher.Graph[circleState]{
		Name:        CommandCircle,
		Description: "Draw a circle",
		Root: dispatcher.Rule[circleState]{
			Msg:  "Circle",
			Next: []string{"CENTER", "P3"},
		},
		Sub: map[string]dispatcher.Rule[circleState]{
			"CENTER": {
				Msg: "Specify center point",
				Action: func(ctx *dispatcher.Context, s *circleState, params any) (dispatcher.Outcome, error) {
					p, ok := pointOrRetry(ctx, params)
					if !ok {
						return dispatcher.Retry(), nil
					}
					s.center, s.hasCenter = p, true
					return dispatcher.Normal(), nil
				},
				Next: []string{"R", "D"},
			},
			"R":      size(false),
			"D":      size(true),
			"P3":     {Msg: "Three point circle", Next: []string{"POINT1"}},
			"POINT1": through("POINT2"),
			"POINT2": through("POINT3"),
			"POINT3": through(),
		},
		Preview: func(_ *dispatcher.Context, s *circleState, cursor geom.Point) []*entity.Entity {
			if !s.hasCenter {
				return nil
			}
			r := s.center.Dist(cursor)
			if s.diameter {
				r /= 2
			}
			if r <= 0 {
				return nil
			}
			return []*entity.Entity{entity.Circle(s.center, r)}
		},
	}
}

// radius reads a radius or diameter from a number or a point.
func (s *circleState) radius(params any) (float64, bool) {
	r, ok := dispatcher.AsNumber(params)
	if !ok {
		p, isPoint := dispatcher.AsPoint(params)
		if !isPoint {
			return 0, false
		}
		r = s.center.Dist(p)
	}
	if s.diameter {
		r /= 2
	}
	return r, r > 0
}

func circleThrough(ctx *dispatcher.Context, s *circleState, params any) (dispatcher.Outcome, error) {
	p, ok := pointOrRetry(ctx, params)
	if !ok {
		return dispatcher.Retry(), nil
	}
	s.through = append(s.through, p)
	if len(s.through) < 3 {
		return dispatcher.Normal(), nil
	}
	if len(s.through) > 3 {
		return dispatcher.Outcome{}, dispatcher.Invariantf("circle has %d points", len(s.through))
	}

	arc, err := geom.ArcThrough(s.through[0], s.through[1], s.through[2])
	if errors.Is(err, geom.ErrCollinear) {
		ctx.Logger().Debug("draw: circle: %v", err)
		s.through = s.through[:2]
		return dispatcher.Retry(), nil
	}
	if err != nil {
		return dispatcher.Outcome{}, err
	}
	ctx.CommitCreate([]*entity.Entity{entity.Circle(arc.Center, arc.Radius)})
	return dispatcher.Normal(), nil
}
