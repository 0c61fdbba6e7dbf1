package draw

import (
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

type rectState struct {
	corner    geom.Point
	hasCorner bool
	length    float64
}

// rectangle returns the closed polyline with corners a and b.
func rectangle(a, b geom.Point) *entity.Entity {
	return polyline([]geom.Point{a, geom.Pt(b.X, a.Y), b, geom.Pt(a.X, b.Y)}, true)
}

// Rectangle returns the RECTANGLE command. The second corner is a point,
// or D followed by a length and a width measured from the first corner.
func Rectangle() *dispatcher.Graph[rectState] {
	dimension := func(msg string, last bool, next ...string) dispatcher.Rule[rectState] {
		return dispatcher.Rule[rectState]{
			Msg: msg,
			Action: func(ctx *dispatcher.Context, s *rectState, params any) (dispatcher.Outcome, error) {
				n, ok := dispatcher.AsNumber(params)
				if !ok || n <= 0 {
					return dispatcher.Retry(), nil
				}
				if !last {
					s.length = n
					return dispatcher.Normal(), nil
				}
				far := s.corner.Add(geom.Pt(s.length, n))
				ctx.CommitCreate([]*entity.Entity{rectangle(s.corner, far)})
				return dispatcher.Normal(), nil
			},
			Next: next,
		}
	}

	return &dispatcher.Graph[rectState]{
		Name:        CommandRectangle,
		Description: "Draw a rectangle",
		Root:        dispatcher.Rule[rectState]{Msg: "Rectangle", Next: []string{"POINT1"}},
		Sub: map[string]dispatcher.Rule[rectState]{
			"POINT1": {
				Msg: "Specify first corner",
				Action: func(ctx *dispatcher.Context, s *rectState, params any) (dispatcher.Outcome, error) {
					p, ok := pointOrRetry(ctx, params)
					if !ok {
						return dispatcher.Retry(), nil
					}
					s.corner, s.hasCorner = p, true
					return dispatcher.Normal(), nil
				},
				Next: []string{"POINT2", "D"},
			},
			"POINT2": {
				Msg: "Specify other corner",
				Action: func(ctx *dispatcher.Context, s *rectState, params any) (dispatcher.Outcome, error) {
					p, ok := pointOrRetry(ctx, params)
					if !ok || p.X == s.corner.X || p.Y == s.corner.Y {
						return dispatcher.Retry(), nil
					}
					ctx.CommitCreate([]*entity.Entity{rectangle(s.corner, p)})
					return dispatcher.Normal(), nil
				},
			},
			"D":      {Msg: "Dimensions", Next: []string{"LENGTH"}},
			"LENGTH": dimension("Specify length", false, "WIDTH"),
			"WIDTH":  dimension("Specify width", true),
		},
		Preview: func(_ *dispatcher.Context, s *rectState, cursor geom.Point) []*entity.Entity {
			if !s.hasCorner {
				return nil
			}
			return []*entity.Entity{rectangle(s.corner, cursor)}
		},
	}
}
