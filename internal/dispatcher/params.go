package dispatcher

import (
	"strconv"
	"strings"

	"github.com/dshills/vecstorm/internal/engine/geom"
)

// AsPoint interprets command input as a point. It accepts geom.Point,
// two-element numeric arrays and slices (as decoded from JSON or Lua), and
// "x,y" strings typed on a command line.
func AsPoint(params any) (geom.Point, bool) {
	switch v := params.(type) {
	case geom.Point:
		return v, true
	case *geom.Point:
		if v != nil {
			return *v, true
		}
	case [2]float64:
		return geom.Pt(v[0], v[1]), true
	case []float64:
		if len(v) == 2 {
			return geom.Pt(v[0], v[1]), true
		}
	case []any:
		if len(v) == 2 {
			x, okx := AsNumber(v[0])
			y, oky := AsNumber(v[1])
			if okx && oky {
				return geom.Pt(x, y), true
			}
		}
	case string:
		xs, ys, found := strings.Cut(v, ",")
		if !found {
			return geom.Point{}, false
		}
		x, errx := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		y, erry := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if errx == nil && erry == nil {
			return geom.Pt(x, y), true
		}
	}
	return geom.Point{}, false
}

// AsNumber interprets command input as a number.
func AsNumber(params any) (float64, bool) {
	switch v := params.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// AsText interprets command input as text.
func AsText(params any) (string, bool) {
	s, ok := params.(string)
	return s, ok
}
