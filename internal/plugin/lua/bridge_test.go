package lua

import (
	"context"
	"reflect"
	"testing"

	glua "github.com/yuin/gopher-lua"
)

func TestBridgeToLuaAndBack(t *testing.T) {
	state, _ := newTestState(t)
	b := NewBridge(state.L)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 7, int64(7)},
		{"float", 1.5, 1.5},
		{"string", "héllo", "héllo"},
		{"list", []any{"a", 1}, []any{"a", int64(1)}},
		{"strings", []string{"x", "y"}, []any{"x", "y"}},
		{"map", map[string]any{"k": "v"}, map[string]any{"k": "v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.ToGoValue(b.ToLuaValue(tt.in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("round trip = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBridgeTableFromScript(t *testing.T) {
	state, _ := newTestState(t)
	if err := state.DoString(context.Background(), `t = {name = "x", items = {1, 2, 3}}`); err != nil {
		t.Fatal(err)
	}

	got := NewBridge(state.L).ToGoValue(state.GetGlobal("t"))
	want := map[string]any{"name": "x", "items": []any{int64(1), int64(2), int64(3)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestBridgeCircularTable(t *testing.T) {
	state, _ := newTestState(t)
	if err := state.DoString(context.Background(), `t = {}; t.self = t`); err != nil {
		t.Fatal(err)
	}

	got := NewBridge(state.L).ToGoValue(state.GetGlobal("t"))
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if m["self"] != nil {
		t.Errorf("self = %v, want nil", m["self"])
	}
}

func TestBridgeTableOf(t *testing.T) {
	state, _ := newTestState(t)
	tbl := NewBridge(state.L).TableOf(map[string]any{"runes": 3})
	if v := tbl.RawGetString("runes"); v != glua.LNumber(3) {
		t.Errorf("runes = %v", v)
	}
}
