package lua

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/soochak/internal/event"
)

// HandlerFunc is the global a listener script must define.
const HandlerFunc = "handle"

// Listener is an event.Listener backed by a Lua script.
type Listener struct {
	state  *State
	source string
}

// NewListener compiles code and returns a listener calling its handle
// function. source labels the script in errors.
func NewListener(source, code string, opts ...StateOption) (*Listener, error) {
	state := NewState(opts...)
	if err := state.DoString(code); err != nil {
		state.Close()
		return nil, fmt.Errorf("loading lua listener %s: %w", source, err)
	}
	return newListener(state, source)
}

// LoadListener reads a script from path and returns its listener.
func LoadListener(path string, opts ...StateOption) (*Listener, error) {
	state := NewState(opts...)
	if err := state.DoFile(path); err != nil {
		state.Close()
		return nil, fmt.Errorf("loading lua listener %s: %w", path, err)
	}
	return newListener(state, path)
}

func newListener(state *State, source string) (*Listener, error) {
	if !state.HasFunction(HandlerFunc) {
		state.Close()
		return nil, fmt.Errorf("%s: %w", source, ErrNoHandler)
	}
	return &Listener{state: state, source: source}, nil
}

// Source returns the label or path the listener was loaded from.
func (l *Listener) Source() string {
	return l.source
}

// Handle calls the script's handle function with the event table.
func (l *Listener) Handle(ctx context.Context, ev any) error {
	_, err := l.state.Call(ctx, HandlerFunc, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{eventTable(L, ev)}
	})
	if err != nil {
		return fmt.Errorf("lua listener %s: %w", l.source, err)
	}
	return nil
}

// Close releases the script's Lua state.
func (l *Listener) Close() error {
	return l.state.Close()
}

// Capabilities the event table looks for on the Go event.
type (
	paramReader interface {
		Params() event.Params
	}
	paramWriter interface {
		SetParam(key string, value any)
	}
	propagationStopper interface {
		StopPropagation()
	}
)

// eventTable exposes ev to Lua.
func eventTable(L *lua.LState, ev any) *lua.LTable {
	bridge := NewBridge(L)
	t := L.NewTable()

	name, _ := event.NameOf(ev)
	t.RawSetString("name", lua.LString(name))

	params := L.NewTable()
	if pr, ok := ev.(paramReader); ok {
		for k, v := range pr.Params() {
			params.RawSetString(k, bridge.ToLuaValue(v))
		}
	}
	t.RawSetString("params", params)

	t.RawSetString("get", L.NewFunction(func(L *lua.LState) int {
		L.Push(params.RawGetString(L.CheckString(1)))
		return 1
	}))

	t.RawSetString("set", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		value := L.Get(2)
		pw, ok := ev.(paramWriter)
		if !ok {
			L.RaiseError("event %q does not accept parameters", name)
			return 0
		}
		pw.SetParam(key, bridge.ToGoValue(value))
		params.RawSetString(key, value)
		return 0
	}))

	t.RawSetString("stop", L.NewFunction(func(L *lua.LState) int {
		s, ok := ev.(propagationStopper)
		if !ok {
			L.RaiseError("event %q cannot be stopped", name)
			return 0
		}
		s.StopPropagation()
		return 0
	}))

	return t
}
