// Package draw provides the commands that create entities: LINE, CIRCLE,
// ARC, PLINE, RECTANGLE and MTEXT.
package draw

import (
	"slices"

	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

// Command names.
const (
	CommandLine      = "LINE"
	CommandCircle    = "CIRCLE"
	CommandArc       = "ARC"
	CommandPolyline  = "PLINE"
	CommandRectangle = "RECTANGLE"
	CommandText      = "MTEXT"
)

// State names shared by several commands.
const (
	StateUndo      = "UNDO"
	StateUndoShort = "U"
	StateClose     = "C"
)

// Commands returns the drawing commands.
func Commands() []dispatcher.Definition {
	return []dispatcher.Definition{
		Line(),
		Circle(),
		Arc(),
		Polyline(),
		Rectangle(),
		Text(),
	}
}

// pointOrRetry is the usual guard of a point-taking step.
func pointOrRetry(ctx *dispatcher.Context, params any) (geom.Point, bool) {
	p, ok := dispatcher.AsPoint(params)
	if !ok {
		ctx.Logger().Debug("draw: expected a point, got %T", params)
	}
	return p, ok
}

// rubberBand is the preview segment from an anchor to the cursor.
func rubberBand(from, cursor geom.Point) *entity.Entity {
	return entity.Line(from, cursor)
}

// polyline builds a polyline entity through vertices. A closed polyline
// repeats its first vertex at the end.
func polyline(vertices []geom.Point, closed bool) *entity.Entity {
	pts := slices.Clone(vertices)
	if closed && len(pts) > 0 {
		pts = append(pts, pts[0])
	}
	e := entity.New(entity.KindPolyline, entity.Shape{Kind: entity.KindPolyline, Points: pts})
	e.Flags.Closed = closed
	return e
}
