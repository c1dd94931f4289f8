package buffer

import "fmt"

// Range represents a run of runes in the buffer.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start int // Inclusive start position
	End   int // Exclusive end position
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the length of the range in runes.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}
