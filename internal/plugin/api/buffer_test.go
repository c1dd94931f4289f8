package api

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/piecetable/internal/engine/buffer"
)

func setupBufferTest(t *testing.T, text string) (*lua.LState, *buffer.Buffer) {
	t.Helper()

	buf, err := buffer.NewBufferFromString(text, buffer.WithDebugAssertions())
	if err != nil {
		t.Fatalf("NewBufferFromString: %v", err)
	}

	reg, err := DefaultRegistry(&Context{Buffer: buf, Path: "notes.txt"})
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}

	L := lua.NewState()
	t.Cleanup(L.Close)
	reg.Install(L)

	if err := L.DoString(`buf = require("pted.buf")`); err != nil {
		t.Fatalf("require: %v", err)
	}
	return L, buf
}

func TestBufferModuleReads(t *testing.T) {
	L, _ := setupBufferTest(t, "héllo\nworld")

	tests := []struct {
		name string
		code string
	}{
		{"text", `assert(buf.text() == "héllo\nworld")`},
		{"len counts runes", `assert(buf.len() == 11)`},
		{"text_range", `assert(buf.text_range(1, 5) == "éllo")`},
		{"line", `assert(buf.line(2) == "world")`},
		{"line_start", `assert(buf.line_start(2) == 6)`},
		{"line_count", `assert(buf.line_count() == 2)`},
		{"piece_count", `assert(buf.piece_count() == 1)`},
		{"path", `assert(buf.path() == "notes.txt")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestBufferModuleEdits(t *testing.T) {
	L, buf := setupBufferTest(t, "the quick brown fox")

	code := `
		local e = buf.insert(19, " jumps")
		assert(e == 25)
		buf.delete(4, 6)
		local old
		e, old = buf.replace(0, 3, "A")
		assert(e == 1 and old == "the")
	`
	if err := L.DoString(code); err != nil {
		t.Fatal(err)
	}
	if got := buf.Text(); got != "A brown fox jumps" {
		t.Errorf("Text() = %q", got)
	}
}

func TestBufferModuleUndoRedo(t *testing.T) {
	L, buf := setupBufferTest(t, "abc")

	code := `
		assert(buf.undo() == false)
		buf.insert(3, "d")
		assert(buf.undo() == true)
		assert(buf.text() == "abc")
		assert(buf.redo() == true)
		assert(buf.redo() == false)
	`
	if err := L.DoString(code); err != nil {
		t.Fatal(err)
	}
	if got := buf.Text(); got != "abcd" {
		t.Errorf("Text() = %q, want abcd", got)
	}
}

func TestBufferModuleGroup(t *testing.T) {
	L, buf := setupBufferTest(t, "one two")

	code := `
		buf.group("upper", function()
			buf.replace(0, 3, "ONE")
			buf.replace(4, 3, "TWO")
		end)
		assert(buf.text() == "ONE TWO")
		assert(buf.undo() == true)
	`
	if err := L.DoString(code); err != nil {
		t.Fatal(err)
	}
	if got := buf.Text(); got != "one two" {
		t.Errorf("Text() after one undo = %q, want %q", got, "one two")
	}
}

func TestBufferModuleUndoInsideGroup(t *testing.T) {
	L, buf := setupBufferTest(t, "doc")
	if _, err := buf.Insert(0, "E"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		code string
	}{
		{"undo", `buf.group("g", function() buf.insert(4, "A"); buf.undo() end)`},
		{"redo", `buf.group("g", function() buf.insert(4, "A"); buf.redo() end)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := L.DoString(tt.code)
			if err == nil || !strings.Contains(err.Error(), tt.name+": cannot undo or redo") {
				t.Fatalf("error = %v", err)
			}
			if got := buf.Text(); got != "EdocA" {
				t.Fatalf("Text() = %q, want EdocA", got)
			}
			if err := buf.Undo(); err != nil {
				t.Fatal(err)
			}
			if got := buf.Text(); got != "Edoc" {
				t.Errorf("Text() after undo = %q, want Edoc", got)
			}
		})
	}
}

func TestBufferModuleGroupError(t *testing.T) {
	L, buf := setupBufferTest(t, "abc")

	err := L.DoString(`buf.group("bad", function() buf.insert(0, "x"); error("boom") end)`)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error = %v, want boom", err)
	}

	// The group is closed, so later edits are undone separately.
	if _, err := buf.Insert(0, "y"); err != nil {
		t.Fatal(err)
	}
	if err := buf.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := buf.Text(); got != "xabc" {
		t.Errorf("Text() = %q, want xabc", got)
	}
}

func TestBufferModuleErrors(t *testing.T) {
	L, buf := setupBufferTest(t, "abc")

	tests := []struct {
		name string
		code string
		want string
	}{
		{"insert out of bounds", `buf.insert(10, "x")`, "insert"},
		{"delete out of bounds", `buf.delete(2, 5)`, "delete"},
		{"replace negative", `buf.replace(-1, 1, "x")`, "replace"},
		{"bad range", `buf.text_range(2, 1)`, "text_range"},
		{"line zero", `buf.line(0)`, "line"},
		{"line_start past end", `buf.line_start(5)`, "line out of range"},
		{"missing argument", `buf.insert(1)`, "string expected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := L.DoString(tt.code)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}

	if got := buf.Text(); got != "abc" {
		t.Errorf("failed calls changed the buffer: %q", got)
	}
}

func TestBufferModuleNoBuffer(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	reg, err := DefaultRegistry(&Context{})
	if err != nil {
		t.Fatal(err)
	}
	reg.Install(L)

	err = L.DoString(`require("pted.buf").text()`)
	if err == nil || !strings.Contains(err.Error(), "no buffer available") {
		t.Errorf("error = %v", err)
	}
}
