// Package lua runs drawing macros written in Lua.
//
// A State is a gopher-lua runtime with io, os and debug left closed,
// the file loaders removed and require limited to string, table, math
// and the modules the host registers. print writes to the state's output.
//
//	state := lua.NewState(lua.WithExecutionTimeout(2 * time.Second))
//	defer state.Close()
//
//	lua.NewVecModule(manager, drawing).Install(state)
//	if err := state.DoFile(ctx, "house.lua"); err != nil {
//	    return err
//	}
//
// # The vec module
//
// Macros drive the command manager exactly as interactive input does:
//
//	vec.run("LINE")
//	vec.point(0, 0)
//	vec.point(10, 0)
//	vec.escape()
//	print(vec.count())
//
// # Bridge
//
// Bridge converts arguments and results. Lua tables with x and y fields
// become geom.Point values, so vec.input({x = 1, y = 2}) feeds a point.
package lua
