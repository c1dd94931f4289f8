package buffer

import (
	"io"

	"github.com/dshills/piecetable/internal/engine/piece"
)

// Snapshot provides a read-only view of a buffer at a specific point in time.
// It is safe for concurrent access and will not change even if the original
// buffer is modified.
type Snapshot struct {
	view       piece.View
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return s.view.String()
}

// TextRange returns the text in [start, end).
func (s *Snapshot) TextRange(start, end int) (string, error) {
	return s.view.Slice(start, end)
}

// Len returns the snapshot length in runes.
func (s *Snapshot) Len() int {
	return s.view.Len()
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return s.view.LineCount()
}

// LineText returns the text of a specific line (without newline).
func (s *Snapshot) LineText(line int) (string, error) {
	return s.view.LineText(line)
}

// LineStartOffset returns the offset of the start of a line.
func (s *Snapshot) LineStartOffset(line int) int {
	return s.view.LineStart(line)
}

// LineEndOffset returns the offset of the end of a line (before newline).
func (s *Snapshot) LineEndOffset(line int) int {
	return s.view.LineEnd(line)
}

// RuneAt returns the rune at the given offset.
func (s *Snapshot) RuneAt(offset int) (rune, error) {
	return s.view.RuneAt(offset)
}

// OffsetToPoint converts an offset to line/column.
func (s *Snapshot) OffsetToPoint(offset int) (Point, error) {
	return s.view.OffsetToPoint(offset)
}

// PointToOffset converts line/column to an offset.
func (s *Snapshot) PointToOffset(point Point) (int, error) {
	return s.view.PointToOffset(point)
}

// RevisionID returns the revision ID of this snapshot.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return s.view.IsEmpty()
}

// LineEnding returns the snapshot's line ending style.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

// TabWidth returns the snapshot's tab width.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}

// Pieces returns the piece list of the snapshot in document order.
func (s *Snapshot) Pieces() []piece.Piece {
	return s.view.Pieces()
}

// PieceCount returns the number of pieces.
func (s *Snapshot) PieceCount() int {
	return s.view.PieceCount()
}

// Height returns the height of the piece tree.
func (s *Snapshot) Height() int {
	return s.view.Height()
}

// OriginalLen returns the size of the original store in runes.
func (s *Snapshot) OriginalLen() int {
	return s.view.OriginalLen()
}

// AddedLen returns the size of the added store in runes.
func (s *Snapshot) AddedLen() int {
	return s.view.AddedLen()
}

// Chunks returns an iterator over the per-piece chunks of the snapshot.
func (s *Snapshot) Chunks() *piece.ChunkIterator {
	return s.view.Chunks()
}

// ChunksInRange returns an iterator over the chunks in [start, end).
func (s *Snapshot) ChunksInRange(start, end int) (*piece.ChunkIterator, error) {
	return s.view.ChunksInRange(start, end)
}

// Runes returns an iterator over all runes in the snapshot.
func (s *Snapshot) Runes() *piece.RuneIterator {
	return s.view.Runes()
}

// RunesInRange returns an iterator over the runes in [start, end).
func (s *Snapshot) RunesInRange(start, end int) (*piece.RuneIterator, error) {
	return s.view.RunesInRange(start, end)
}

// WriteTo writes the snapshot content to w as UTF-8.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	return s.view.WriteTo(w)
}
