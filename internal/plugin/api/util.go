package api

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	lua "github.com/yuin/gopher-lua"
)

// UtilModule implements the pted.util API module: string helpers that
// count the way the buffer does.
type UtilModule struct{}

// NewUtilModule creates a new util module.
func NewUtilModule() *UtilModule {
	return &UtilModule{}
}

// Name returns the module name.
func (m *UtilModule) Name() string {
	return "util"
}

// Table builds the module table.
func (m *UtilModule) Table(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"split":          m.split,
		"trim":           m.trim,
		"trim_left":      m.trimLeft,
		"trim_right":     m.trimRight,
		"starts_with":    m.startsWith,
		"ends_with":      m.endsWith,
		"contains":       m.contains,
		"escape_pattern": m.escapePattern,
		"lines":          m.lines,
		"join":           m.join,
		"len":            m.runeLen,
		"graphemes":      m.graphemes,
		"width":          m.width,
	})
}

// split(str, sep) -> {parts}
// Splits a string by separator.
func (m *UtilModule) split(L *lua.LState) int {
	str := L.CheckString(1)
	sep := L.CheckString(2)

	parts := strings.Split(str, sep)
	tbl := L.NewTable()
	for i, part := range parts {
		tbl.RawSetInt(i+1, lua.LString(part))
	}

	L.Push(tbl)
	return 1
}

// trim(str) -> string
// Trims whitespace from both ends of a string.
func (m *UtilModule) trim(L *lua.LState) int {
	str := L.CheckString(1)
	L.Push(lua.LString(strings.TrimSpace(str)))
	return 1
}

// trim_left(str) -> string
// Trims whitespace from the left side of a string.
func (m *UtilModule) trimLeft(L *lua.LState) int {
	str := L.CheckString(1)
	L.Push(lua.LString(strings.TrimLeft(str, " \t\n\r")))
	return 1
}

// trim_right(str) -> string
// Trims whitespace from the right side of a string.
func (m *UtilModule) trimRight(L *lua.LState) int {
	str := L.CheckString(1)
	L.Push(lua.LString(strings.TrimRight(str, " \t\n\r")))
	return 1
}

// starts_with(str, prefix) -> bool
// Checks if a string starts with a prefix.
func (m *UtilModule) startsWith(L *lua.LState) int {
	str := L.CheckString(1)
	prefix := L.CheckString(2)
	L.Push(lua.LBool(strings.HasPrefix(str, prefix)))
	return 1
}

// ends_with(str, suffix) -> bool
// Checks if a string ends with a suffix.
func (m *UtilModule) endsWith(L *lua.LState) int {
	str := L.CheckString(1)
	suffix := L.CheckString(2)
	L.Push(lua.LBool(strings.HasSuffix(str, suffix)))
	return 1
}

// contains(str, substr) -> bool
// Checks if a string contains a substring.
func (m *UtilModule) contains(L *lua.LState) int {
	str := L.CheckString(1)
	substr := L.CheckString(2)
	L.Push(lua.LBool(strings.Contains(str, substr)))
	return 1
}

// escape_pattern(str) -> string
// Escapes special characters for use in Lua patterns.
func (m *UtilModule) escapePattern(L *lua.LState) int {
	str := L.CheckString(1)

	// Lua pattern special characters: ^$()%.[]*+-?
	// IMPORTANT: % must be escaped first to avoid double-escaping
	escaped := strings.ReplaceAll(str, "%", "%%")

	otherSpecialChars := []string{"^", "$", "(", ")", ".", "[", "]", "*", "+", "-", "?"}
	for _, ch := range otherSpecialChars {
		escaped = strings.ReplaceAll(escaped, ch, "%"+ch)
	}

	L.Push(lua.LString(escaped))
	return 1
}

// lines(str) -> {lines}
// Splits a string into lines.
func (m *UtilModule) lines(L *lua.LState) int {
	str := L.CheckString(1)

	// Handle both \n and \r\n line endings
	normalized := strings.ReplaceAll(str, "\r\n", "\n")
	parts := strings.Split(normalized, "\n")

	tbl := L.NewTable()
	for i, part := range parts {
		tbl.RawSetInt(i+1, lua.LString(part))
	}

	L.Push(tbl)
	return 1
}

// join(tbl, sep) -> string
// Joins the array part of a table with a separator.
func (m *UtilModule) join(L *lua.LState) int {
	tbl := L.CheckTable(1)
	sep := L.OptString(2, "")

	n := tbl.Len()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, tbl.RawGetInt(i).String())
	}

	L.Push(lua.LString(strings.Join(parts, sep)))
	return 1
}

// len(str) -> number
// Returns the length of a string in runes, the unit buffer offsets use.
func (m *UtilModule) runeLen(L *lua.LState) int {
	L.Push(lua.LNumber(utf8.RuneCountInString(L.CheckString(1))))
	return 1
}

// graphemes(str) -> number
// Returns the number of user-perceived characters.
func (m *UtilModule) graphemes(L *lua.LState) int {
	L.Push(lua.LNumber(uniseg.GraphemeClusterCount(L.CheckString(1))))
	return 1
}

// width(str) -> number
// Returns the monospace display width.
func (m *UtilModule) width(L *lua.LState) int {
	L.Push(lua.LNumber(uniseg.StringWidth(L.CheckString(1))))
	return 1
}
