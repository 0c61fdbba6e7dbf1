package lua

import (
	"fmt"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/vecstorm/internal/engine/geom"
)

// Bridge converts values between Go and Lua.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGoValue converts a Lua value to a Go value. Tables become a []any
// when their keys are 1..n and a map[string]any otherwise; a table with
// numeric x and y fields becomes a geom.Point.
func (b *Bridge) ToGoValue(lv lua.LValue) any {
	return b.toGo(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		if p, ok := tablePoint(v); ok {
			return p
		}
		return b.tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func (b *Bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = b.toGo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = b.toGo(v, visited)
	})
	return m
}

// tablePoint reads {x = 1, y = 2}.
func tablePoint(t *lua.LTable) (geom.Point, bool) {
	x, okx := t.RawGetString("x").(lua.LNumber)
	y, oky := t.RawGetString("y").(lua.LNumber)
	if !okx || !oky {
		return geom.Point{}, false
	}
	return geom.Pt(float64(x), float64(y)), true
}

// ToLuaValue converts a Go value to a Lua value. Points become {x, y}
// tables and boxes {minX, minY, maxX, maxY} tables. Unknown types become
// userdata.
func (b *Bridge) ToLuaValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case geom.Point:
		t := b.L.NewTable()
		t.RawSetString("x", lua.LNumber(val.X))
		t.RawSetString("y", lua.LNumber(val.Y))
		return t
	case geom.Box:
		t := b.L.NewTable()
		t.RawSetString("minX", lua.LNumber(val.MinX))
		t.RawSetString("minY", lua.LNumber(val.MinY))
		t.RawSetString("maxX", lua.LNumber(val.MaxX))
		t.RawSetString("maxY", lua.LNumber(val.MaxY))
		return t
	case []string:
		t := b.L.NewTable()
		for i, s := range val {
			t.RawSetInt(i+1, lua.LString(s))
		}
		return t
	case map[string]string:
		t := b.L.NewTable()
		for k, s := range val {
			t.RawSetString(k, lua.LString(s))
		}
		return t
	case []any:
		t := b.L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, b.ToLuaValue(e))
		}
		return t
	case map[string]any:
		t := b.L.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			t.RawSetString(k, b.ToLuaValue(val[k]))
		}
		return t
	case lua.LValue:
		return val
	default:
		ud := b.L.NewUserData()
		ud.Value = v
		return ud
	}
}
