package buffer

import (
	"sync/atomic"

	"github.com/dshills/piecetable/internal/engine/piece"
)

// Point represents a line and column position.
// Both Line and Column are 0-indexed; Column counts runes from the start of
// the line.
type Point = piece.Point

// RevisionID uniquely identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

// revisionCounter is used to generate unique revision IDs.
var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
// This is thread-safe using atomic operations.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}
