// Package piece provides a piece table for efficient text editing.
//
// A piece table represents a document as an ordered list of pieces, where
// each piece names a contiguous span in one of two backing stores:
//
//   - the original store, holding the text the table was created from and
//     never modified afterwards
//   - the added store, an append-only buffer holding every inserted span in
//     chronological order
//
// Edits never rewrite store contents. An insertion appends its text to the
// added store and splices a new piece into the list, splitting the piece that
// straddles the insertion point. A deletion narrows or drops pieces. Because
// offsets already issued into the added store stay valid forever, old pieces
// keep referencing it safely after later insertions.
//
// The piece list is kept in a persistent B+ tree whose internal nodes carry
// per-child summaries (rune count, piece count, newline count). Locating an
// offset, splitting and joining are O(log n) in the number of pieces, and
// because published nodes are never mutated a View of a table is an O(1)
// consistent snapshot.
//
// All positions and lengths are measured in runes (Unicode code points).
//
// Basic usage:
//
//	t, _ := piece.New("abc")
//	t.Insert(3, "def")      // "abcdef"
//	t.Delete(0, 3)          // "def"
//	t.Insert(0, "X")        // "Xdef"
//	text := t.String()
//
// A Table is not safe for concurrent use. Callers that share a table across
// goroutines serialize writers and readers themselves, or hand readers a View.
package piece
