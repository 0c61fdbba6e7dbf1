package draw

import (
	"strings"

	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

// EventText is the data event the interaction layer receives once the
// text box is known, so it can open an editor over it.
const EventText = "MTEXT"

type textState struct {
	corners []geom.Point
}

// Text returns the MTEXT command: two corners of the text box, then the
// text itself.
func Text() *dispatcher.Graph[textState] {
	return &dispatcher.Graph[textState]{
		Name:        CommandText,
		Description: "Place a multi-line text box",
		Root:        dispatcher.Rule[textState]{Msg: "Text", Next: []string{"POINT1"}},
		Sub: map[string]dispatcher.Rule[textState]{
			"POINT1": {
				Msg: "Specify first corner",
				Action: func(ctx *dispatcher.Context, s *textState, params any) (dispatcher.Outcome, error) {
					p, ok := pointOrRetry(ctx, params)
					if !ok {
						return dispatcher.Retry(), nil
					}
					s.corners = []geom.Point{p}
					return dispatcher.Normal(), nil
				},
				Next: []string{"POINT2"},
			},
			"POINT2": {
				Msg: "Specify opposite corner",
				Action: func(ctx *dispatcher.Context, s *textState, params any) (dispatcher.Outcome, error) {
					p, ok := pointOrRetry(ctx, params)
					if !ok || p == s.corners[0] {
						return dispatcher.Retry(), nil
					}
					s.corners = append(s.corners[:1], p)
					return dispatcher.Emit(map[string]any{
						"event": EventText,
						"box":   geom.BoxOf(s.corners[0], p),
					}), nil
				},
				Next: []string{"TEXT"},
			},
			"TEXT": {
				Msg: "Enter text",
				Action: func(ctx *dispatcher.Context, s *textState, params any) (dispatcher.Outcome, error) {
					text, ok := dispatcher.AsText(params)
					if !ok || strings.TrimSpace(text) == "" {
						return dispatcher.Retry(), nil
					}
					if len(s.corners) != 2 {
						return dispatcher.Outcome{}, dispatcher.Invariantf("text box has %d corners", len(s.corners))
					}
					e := entity.New(entity.KindText, entity.Shape{
						Kind:   entity.KindText,
						Points: []geom.Point{s.corners[0], s.corners[1]},
						Text:   text,
					})
					ctx.CommitCreate([]*entity.Entity{e})
					return dispatcher.Normal(), nil
				},
			},
		},
		Preview: func(_ *dispatcher.Context, s *textState, cursor geom.Point) []*entity.Entity {
			if len(s.corners) != 1 {
				return nil
			}
			return []*entity.Entity{polyline([]geom.Point{
				s.corners[0], geom.Pt(cursor.X, s.corners[0].Y), cursor, geom.Pt(s.corners[0].X, cursor.Y),
			}, true)}
		},
	}
}
