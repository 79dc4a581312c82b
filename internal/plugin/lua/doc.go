// Package lua runs event listeners written in Lua.
//
// Scripts execute in a sandboxed gopher-lua state: only the base, table,
// string and math libraries are opened, and the loaders that could reach
// the file system (dofile, loadfile, load, loadstring, require) are
// removed.
//
// # Listener scripts
//
// A listener script defines a global handle function that receives the
// event as a table:
//
//	function handle(event)
//	    if event.params.user == nil then
//	        error("missing user")
//	    end
//	    event.set("greeted", true)
//	    event.stop()
//	end
//
// The table exposes:
//   - name: the resolved event name
//   - params: a snapshot of the event parameters
//   - get(key): reads a parameter
//   - set(key, value): writes a parameter back to the Go event
//   - stop(): stops propagation
//
// Raising a Lua error fails the listener and halts the dispatch.
//
// # Bridge
//
// The Bridge converts values in both directions:
//
//	bridge := lua.NewBridge(state.LuaState())
//	lv := bridge.ToLuaValue(map[string]any{"count": 42})
//	gv := bridge.ToGoValue(lv)
//
// # Thread safety
//
// gopher-lua's LState is not goroutine-safe. State serializes access with
// a mutex, so a Listener may be attached to a Manager that dispatches from
// several goroutines.
package lua
