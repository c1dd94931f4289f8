package lua

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func newTestState(t *testing.T, opts ...StateOption) (*State, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	state, err := NewState(append([]StateOption{WithOutput(&out)}, opts...)...)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	t.Cleanup(func() { state.Close() })
	return state, &out
}

func TestStateDoString(t *testing.T) {
	state, _ := newTestState(t)

	if err := state.DoString(context.Background(), `x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNumber(2) {
		t.Errorf("x = %v, want 2", v)
	}
}

func TestStateSyntaxError(t *testing.T) {
	state, _ := newTestState(t)

	if err := state.DoString(context.Background(), `x = = 1`); err == nil {
		t.Error("expected syntax error")
	}
}

func TestStatePrintGoesToOutput(t *testing.T) {
	state, out := newTestState(t)

	if err := state.DoString(context.Background(), `print("a", 1, true)`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := out.String(); got != "a\t1\ttrue\n" {
		t.Errorf("output = %q", got)
	}
}

func TestStateTimeout(t *testing.T) {
	state, _ := newTestState(t, WithExecutionTimeout(50*time.Millisecond))

	start := time.Now()
	err := state.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("error = %v, want ErrExecutionTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}

	// The state stays usable after a timeout.
	if err := state.DoString(context.Background(), `y = 3`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateCanceled(t *testing.T) {
	state, _ := newTestState(t, WithExecutionTimeout(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := state.DoString(ctx, `while true do end`)
	if !errors.Is(err, ErrCanceled) {
		t.Errorf("error = %v, want ErrCanceled", err)
	}
}

func TestStateClosed(t *testing.T) {
	state, _ := newTestState(t)
	state.Close()

	if !state.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := state.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() error = %v, want ErrStateClosed", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNil {
		t.Errorf("GetGlobal() on closed state = %v", v)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	state, _ := newTestState(t)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os", "debug"} {
		if v := state.GetGlobal(name); v != glua.LNil {
			t.Errorf("%s is available: %v", name, v)
		}
	}
}

func TestSandboxRequire(t *testing.T) {
	state, _ := newTestState(t)
	state.PreloadModule("pted.test", func(L *glua.LState) int {
		mod := L.NewTable()
		L.SetField(mod, "answer", glua.LNumber(42))
		L.Push(mod)
		return 1
	})

	tests := []struct {
		name    string
		code    string
		wantErr string
	}{
		{"builtin", `local s = require("string"); assert(s.upper("a") == "A")`, ""},
		{"preloaded", `local m = require("pted.test"); assert(m.answer == 42)`, ""},
		{"io", `require("io")`, "not available"},
		{"os", `require("os")`, "not available"},
		{"unknown", `require("socket")`, "not available"},
		{"missing pted module", `require("pted.nope")`, "pted.nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := state.DoString(context.Background(), tt.code)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
