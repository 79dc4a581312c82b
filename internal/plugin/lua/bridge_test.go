package lua

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	glua "github.com/yuin/gopher-lua"
)

func TestBridgeRoundTrip(t *testing.T) {
	state := NewState()
	defer state.Close()
	bridge := NewBridge(state.LuaState())

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 42, int64(42)},
		{"float", 1.5, 1.5},
		{"string", "hello", "hello"},
		{"bytes", []byte("raw"), "raw"},
		{"slice", []any{"a", 2}, []any{"a", int64(2)}},
		{"string slice", []string{"x", "y"}, []any{"x", "y"}},
		{"map", map[string]any{"k": "v", "n": 1}, map[string]any{"k": "v", "n": int64(1)}},
		{"nested", map[string]any{"list": []any{true}}, map[string]any{"list": []any{true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bridge.ToGoValue(bridge.ToLuaValue(tt.in))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBridgeNamedTypes(t *testing.T) {
	state := NewState()
	defer state.Close()
	bridge := NewBridge(state.LuaState())

	type level int
	type labels map[string]string

	if got := bridge.ToLuaValue(level(3)); got != glua.LNumber(3) {
		t.Errorf("ToLuaValue(level) = %v, want 3", got)
	}

	tbl, ok := bridge.ToLuaValue(labels{"env": "prod"}).(*glua.LTable)
	if !ok {
		t.Fatal("ToLuaValue(labels) did not return a table")
	}
	if v := tbl.RawGetString("env"); v.String() != "prod" {
		t.Errorf("labels.env = %v, want prod", v)
	}

	var nilPtr *int
	if got := bridge.ToLuaValue(nilPtr); got != glua.LNil {
		t.Errorf("ToLuaValue(nil pointer) = %v, want nil", got)
	}
}

func TestBridgeCircularTable(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`loop = {name = "x"}; loop.self = loop`); err != nil {
		t.Fatal(err)
	}

	got, ok := NewBridge(state.LuaState()).ToGoValue(state.GetGlobal("loop")).(map[string]any)
	if !ok {
		t.Fatal("expected map")
	}
	if got["name"] != "x" || got["self"] != nil {
		t.Errorf("unexpected conversion %v", got)
	}
}
