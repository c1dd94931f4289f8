package piece

import "fmt"

// Origin identifies the store a piece refers to.
type Origin uint8

const (
	OriginOriginal Origin = iota // Text as loaded
	OriginAdded                  // Text inserted since
)

// String returns the name of the origin.
func (o Origin) String() string {
	switch o {
	case OriginOriginal:
		return "original"
	case OriginAdded:
		return "added"
	default:
		return "unknown"
	}
}

// Piece names the span [Start, Start+Length) of one store.
// Pieces are values; edits replace them rather than modify them.
type Piece struct {
	Origin Origin
	Start  int
	Length int
}

// End returns the exclusive end of the span in its store.
func (p Piece) End() int {
	return p.Start + p.Length
}

// String returns a human-readable representation of the piece.
func (p Piece) String() string {
	return fmt.Sprintf("%s[%d:%d)", p.Origin, p.Start, p.End())
}

// split cuts the piece at the given intra-piece offset.
func (p Piece) split(at int) (Piece, Piece) {
	return Piece{Origin: p.Origin, Start: p.Start, Length: at},
		Piece{Origin: p.Origin, Start: p.Start + at, Length: p.Length - at}
}

// Location is the result of resolving a logical offset against the piece list.
type Location struct {
	Index  int // Ordinal of the piece in the list
	Offset int // Offset within that piece
}

// String returns a human-readable representation of the location.
func (l Location) String() string {
	return fmt.Sprintf("piece %d+%d", l.Index, l.Offset)
}

// Point is a line and column position. Both are 0-indexed and the column
// is counted in runes from the start of the line.
type Point struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}
