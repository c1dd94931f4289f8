package api

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/piecetable/internal/engine/buffer"
)

// BufferModule implements the pted.buf API module.
type BufferModule struct {
	ctx *Context
}

// NewBufferModule creates a new buffer module.
func NewBufferModule(ctx *Context) *BufferModule {
	return &BufferModule{ctx: ctx}
}

// Name returns the module name.
func (m *BufferModule) Name() string {
	return "buf"
}

// Table builds the module table.
func (m *BufferModule) Table(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"text":        m.text,
		"text_range":  m.textRange,
		"line":        m.line,
		"line_start":  m.lineStart,
		"line_count":  m.lineCount,
		"len":         m.bufLen,
		"insert":      m.insert,
		"delete":      m.delete,
		"replace":     m.replace,
		"undo":        m.undo,
		"redo":        m.redo,
		"group":       m.group,
		"piece_count": m.pieceCount,
		"path":        m.path,
	})
}

// buffer returns the context buffer or raises a Lua error.
func (m *BufferModule) buffer(L *lua.LState, fn string) BufferProvider {
	if m.ctx == nil || m.ctx.Buffer == nil {
		L.RaiseError("%s: no buffer available", fn)
		return nil
	}
	return m.ctx.Buffer
}

// text() -> string
func (m *BufferModule) text(L *lua.LState) int {
	L.Push(lua.LString(m.buffer(L, "text").Text()))
	return 1
}

// text_range(start, end) -> string
// Returns the text in runes [start, end).
func (m *BufferModule) textRange(L *lua.LState) int {
	start := L.CheckInt(1)
	end := L.CheckInt(2)

	text, err := m.buffer(L, "text_range").TextRange(start, end)
	if err != nil {
		L.RaiseError("text_range: %v", err)
		return 0
	}
	L.Push(lua.LString(text))
	return 1
}

// line(n) -> string
// Returns line n (1-indexed) without its newline.
func (m *BufferModule) line(L *lua.LState) int {
	n := L.CheckInt(1)

	text, err := m.buffer(L, "line").LineText(n - 1)
	if err != nil {
		L.RaiseError("line: %v", err)
		return 0
	}
	L.Push(lua.LString(text))
	return 1
}

// line_start(n) -> offset
func (m *BufferModule) lineStart(L *lua.LState) int {
	n := L.CheckInt(1)
	buf := m.buffer(L, "line_start")
	if n < 1 || n > buf.LineCount() {
		L.ArgError(1, "line out of range")
		return 0
	}
	L.Push(lua.LNumber(buf.LineStartOffset(n - 1)))
	return 1
}

// line_count() -> number
func (m *BufferModule) lineCount(L *lua.LState) int {
	L.Push(lua.LNumber(m.buffer(L, "line_count").LineCount()))
	return 1
}

// len() -> number
// Returns the buffer length in runes.
func (m *BufferModule) bufLen(L *lua.LState) int {
	L.Push(lua.LNumber(m.buffer(L, "len").Len()))
	return 1
}

// insert(offset, text) -> end_offset
func (m *BufferModule) insert(L *lua.LState) int {
	offset := L.CheckInt(1)
	text := L.CheckString(2)

	end, err := m.buffer(L, "insert").Insert(offset, text)
	if err != nil {
		L.RaiseError("insert: %v", err)
		return 0
	}
	L.Push(lua.LNumber(end))
	return 1
}

// delete(offset, length)
func (m *BufferModule) delete(L *lua.LState) int {
	offset := L.CheckInt(1)
	length := L.CheckInt(2)

	if err := m.buffer(L, "delete").Delete(offset, length); err != nil {
		L.RaiseError("delete: %v", err)
	}
	return 0
}

// replace(offset, length, text) -> end_offset, old_text
func (m *BufferModule) replace(L *lua.LState) int {
	offset := L.CheckInt(1)
	length := L.CheckInt(2)
	text := L.CheckString(3)

	edit := buffer.NewEdit(buffer.Range{Start: offset, End: offset + length}, text)
	res, err := m.buffer(L, "replace").ApplyEdit(edit)
	if err != nil {
		L.RaiseError("replace: %v", err)
		return 0
	}
	L.Push(lua.LNumber(res.NewRange.End))
	L.Push(lua.LString(res.OldText))
	return 2
}

// undo() -> bool
// Returns false when there is nothing to undo. Raises an error inside
// group(), where the step being recorded is not yet on the undo stack.
func (m *BufferModule) undo(L *lua.LState) int {
	err := m.buffer(L, "undo").Undo()
	return pushHistoryResult(L, "undo", err, buffer.ErrNothingToUndo)
}

// redo() -> bool
// Returns false when there is nothing to redo.
func (m *BufferModule) redo(L *lua.LState) int {
	err := m.buffer(L, "redo").Redo()
	return pushHistoryResult(L, "redo", err, buffer.ErrNothingToRedo)
}

func pushHistoryResult(L *lua.LState, fn string, err, empty error) int {
	switch {
	case err == nil:
		L.Push(lua.LTrue)
	case errors.Is(err, empty):
		L.Push(lua.LFalse)
	default:
		L.RaiseError("%s: %v", fn, err)
		return 0
	}
	return 1
}

// group(name, fn)
// Runs fn with every edit it makes recorded as one undo step.
func (m *BufferModule) group(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	buf := m.buffer(L, "group")

	buf.BeginUndoGroup(name)
	err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	buf.EndUndoGroup()

	if err != nil {
		L.RaiseError("group %s: %v", name, err)
	}
	return 0
}

// piece_count() -> number
func (m *BufferModule) pieceCount(L *lua.LState) int {
	L.Push(lua.LNumber(m.buffer(L, "piece_count").PieceCount()))
	return 1
}

// path() -> string
func (m *BufferModule) path(L *lua.LState) int {
	if m.ctx == nil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(m.ctx.Path))
	return 1
}
