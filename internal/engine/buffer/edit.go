package buffer

import "fmt"

// Edit replaces the runes in Range with NewText. An empty range inserts and
// empty text deletes.
type Edit struct {
	Range   Range
	NewText string
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

func (e Edit) String() string {
	switch {
	case e.Range.IsEmpty():
		return fmt.Sprintf("insert %q at %d", e.NewText, e.Range.Start)
	case e.NewText == "":
		return fmt.Sprintf("delete %s", e.Range)
	default:
		return fmt.Sprintf("replace %s with %q", e.Range, e.NewText)
	}
}

// IsNoOp reports whether the edit changes nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// EditResult describes an applied edit. NewText is the text as stored,
// after line ending and Unicode normalization.
type EditResult struct {
	OldRange Range
	NewRange Range
	OldText  string
	NewText  string
}

// Delta returns the change in buffer length.
func (r EditResult) Delta() int {
	return r.NewRange.Len() - r.OldRange.Len()
}
