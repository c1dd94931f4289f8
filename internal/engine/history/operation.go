package history

import (
	"time"
	"unicode/utf8"
)

// Operation represents a single undoable edit.
// Positions and lengths are in runes.
type Operation struct {
	Position int    // Where the edit starts
	OldText  string // Text that was removed (for undo)
	NewText  string // Text that was inserted (for redo)

	// Metadata
	Timestamp time.Time // When the operation occurred
}

// NewInsertOperation creates an operation for an insertion.
func NewInsertOperation(position int, text string) *Operation {
	return &Operation{
		Position:  position,
		NewText:   text,
		Timestamp: time.Now(),
	}
}

// NewDeleteOperation creates an operation for a deletion.
func NewDeleteOperation(position int, deletedText string) *Operation {
	return &Operation{
		Position:  position,
		OldText:   deletedText,
		Timestamp: time.Now(),
	}
}

// NewReplaceOperation creates an operation for a replacement.
func NewReplaceOperation(position int, oldText, newText string) *Operation {
	return &Operation{
		Position:  position,
		OldText:   oldText,
		NewText:   newText,
		Timestamp: time.Now(),
	}
}

// IsInsert returns true if this operation is a pure insertion.
func (op *Operation) IsInsert() bool {
	return op.OldText == "" && op.NewText != ""
}

// IsDelete returns true if this operation is a pure deletion.
func (op *Operation) IsDelete() bool {
	return op.OldText != "" && op.NewText == ""
}

// IsReplace returns true if this operation replaces text.
func (op *Operation) IsReplace() bool {
	return op.OldText != "" && op.NewText != ""
}

// IsNoop returns true if this operation makes no changes.
func (op *Operation) IsNoop() bool {
	return op.OldText == "" && op.NewText == ""
}

// RunesDelta returns the change in document length.
func (op *Operation) RunesDelta() int {
	return utf8.RuneCountInString(op.NewText) - utf8.RuneCountInString(op.OldText)
}

// OperationInfo provides read-only info about an operation.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the operation occurred
	RunesDelta  int       // Positive for insertions, negative for deletions
}

// OperationList is a collection of operations that can be applied together.
type OperationList []*Operation

// TotalRunesDelta returns the total change in document length.
func (ops OperationList) TotalRunesDelta() int {
	total := 0
	for _, op := range ops {
		total += op.RunesDelta()
	}
	return total
}
