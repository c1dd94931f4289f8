// Package history provides undo/redo for piece tables.
//
// The history system uses the Command pattern to encapsulate edit operations,
// enabling them to be executed, undone, and redone.
//
// # Commands
//
// Commands implement the Command interface with Execute and Undo methods.
// Built-in commands include:
//   - InsertCommand: Insert text at a position
//   - DeleteCommand: Delete a run of text
//   - ReplaceCommand: Replace a run of text
//   - CompoundCommand: Group multiple commands as one undo unit
//
// A command records the piece list before and after it ran. Undo restores the
// earlier list and redo the later one; neither replays the edit nor copies
// text, since a piece table never overwrites its stores.
//
// # History Stack
//
// The History type manages undo/redo stacks and command grouping:
//
//	h := history.NewHistory(1000) // Max 1000 undo entries
//
//	h.Execute(history.NewInsertCommand(0, "hello"), table)
//
//	h.Undo(table)
//	h.Redo(table)
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	h.BeginGroup("Find and Replace")
//	// ... multiple edits ...
//	h.EndGroup()
//
// Each Operation describes its edit as a position plus the removed and
// inserted text, which is what callers display in undo menus.
package history
