package draw

import (
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

// lineState is the scratch state of one LINE run.
type lineState struct {
	first geom.Point
	// open holds the start of the next segment, if one is pending.
	open []geom.Point
	// segments holds the ids of committed segments, oldest first.
	segments []string
}

// Line returns the LINE command. Every point after the first commits one
// segment starting where the previous one ended. C closes back to the
// first point; U removes the last segment.
func Line() *dispatcher.Graph[lineState] {
	point := dispatcher.Rule[lineState]{
		Msg:    "Specify next point",
		Action: lineNext,
		Next:   []string{"POINT3", StateClose, StateUndoShort, StateUndo},
	}
	undo := dispatcher.Rule[lineState]{Msg: "Undo (U)", Action: lineUndo}

	return &dispatcher.Graph[lineState]{
		Name:        CommandLine,
		Description: "Draw line segments",
		Root: dispatcher.Rule[lineState]{
			Msg:  "Line",
			Next: []string{"POINT1"},
		},
		Sub: map[string]dispatcher.Rule[lineState]{
			"POINT1": {
				Msg: "Specify first point",
				Action: func(ctx *dispatcher.Context, s *lineState, params any) (dispatcher.Outcome, error) {
					p, ok := pointOrRetry(ctx, params)
					if !ok {
						return dispatcher.Retry(), nil
					}
					s.first = p
					s.open = []geom.Point{p}
					return dispatcher.Normal(), nil
				},
				Next: []string{"POINT2", StateUndoShort, StateUndo},
			},
			"POINT2": {
				Msg:    "Specify next point",
				Action: lineNext,
				Next:   []string{"POINT3", StateUndoShort, StateUndo},
			},
			"POINT3": point,
			StateClose: {
				Msg: "Close (C)",
				Action: func(ctx *dispatcher.Context, s *lineState, _ any) (dispatcher.Outcome, error) {
					if len(s.segments) == 0 || len(s.open) != 1 {
						return dispatcher.Retry(), nil
					}
					ctx.CommitCreate([]*entity.Entity{entity.Line(s.open[0], s.first)})
					return dispatcher.Normal(), nil
				},
			},
			StateUndoShort: undo,
			StateUndo:      undo,
		},
		Preview: func(_ *dispatcher.Context, s *lineState, cursor geom.Point) []*entity.Entity {
			if len(s.open) != 1 {
				return nil
			}
			return []*entity.Entity{rubberBand(s.open[0], cursor)}
		},
	}
}

func lineNext(ctx *dispatcher.Context, s *lineState, params any) (dispatcher.Outcome, error) {
	p, ok := pointOrRetry(ctx, params)
	if !ok {
		return dispatcher.Retry(), nil
	}
	switch len(s.open) {
	case 0:
		// everything was undone; this point starts over
		s.first = p
		s.open = []geom.Point{p}
		return dispatcher.ResumeAfter("POINT1"), nil
	case 1:
	default:
		return dispatcher.Outcome{}, dispatcher.Invariantf("line has %d pending points", len(s.open))
	}
	if p == s.open[0] {
		return dispatcher.Retry(), nil
	}

	added := ctx.CommitCreate([]*entity.Entity{entity.Line(s.open[0], p)})
	for _, e := range added {
		s.segments = append(s.segments, e.ID)
	}
	s.open = []geom.Point{p}
	return dispatcher.Normal(), nil
}

func lineUndo(ctx *dispatcher.Context, s *lineState, _ any) (dispatcher.Outcome, error) {
	if n := len(s.segments); n > 0 {
		id := s.segments[n-1]
		s.segments = s.segments[:n-1]
		if e, ok := ctx.Get(id); ok {
			ctx.CommitDelete([]*entity.Entity{e})
			s.open = []geom.Point{e.Shapes[0].Points[0]}
		}
		if len(s.segments) > 0 {
			return dispatcher.ResumeAfter("POINT3"), nil
		}
		return dispatcher.ResumeAfter("POINT1"), nil
	}
	s.open = nil
	return dispatcher.ResumeAfter(""), nil
}
