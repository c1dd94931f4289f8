package piece

import "sort"

// store is a rune buffer with a sorted index of its newline positions.
// The original store is never modified; the added store only grows.
type store struct {
	runes    []rune
	newlines []int
}

func newStore(rs []rune) store {
	s := store{runes: rs}
	for i, r := range rs {
		if r == '\n' {
			s.newlines = append(s.newlines, i)
		}
	}
	return s
}

// appendRunes appends rs and returns the offset it was stored at.
func (s *store) appendRunes(rs []rune) int {
	start := len(s.runes)
	s.runes = append(s.runes, rs...)
	for i, r := range rs {
		if r == '\n' {
			s.newlines = append(s.newlines, start+i)
		}
	}
	return start
}

// slice returns the runes in [start, start+length). The result has its
// capacity capped so appending to it never reaches into the store.
func (s store) slice(start, length int) []rune {
	end := start + length
	return s.runes[start:end:end]
}

// newlinesIn counts newlines in [start, end).
func (s store) newlinesIn(start, end int) int {
	if len(s.newlines) == 0 || start >= end {
		return 0
	}
	return sort.SearchInts(s.newlines, end) - sort.SearchInts(s.newlines, start)
}

// nthNewline returns the store position of the n-th (0-based) newline at or
// after start. The caller guarantees it exists.
func (s store) nthNewline(start, n int) int {
	return s.newlines[sort.SearchInts(s.newlines, start)+n]
}

// Stores owns the original and added stores of a table.
//
// Pieces reference stores by offset, so both stores must outlive every piece
// issued against them. Neither store is ever shrunk or rewritten; the added
// store grows only through Append.
type Stores struct {
	original store
	added    store
}

// newStores creates stores with the given original text and an empty
// added store.
func newStores(original []rune) Stores {
	return Stores{original: newStore(original)}
}

func (s *Stores) of(o Origin) *store {
	if o == OriginAdded {
		return &s.added
	}
	return &s.original
}

// Slice returns length runes of the given store starting at start.
// The returned slice must not be modified.
func (s *Stores) Slice(o Origin, start, length int) []rune {
	return s.of(o).slice(start, length)
}

// Append adds text to the added store and returns the span it occupies.
func (s *Stores) Append(text []rune) (start, length int) {
	return s.added.appendRunes(text), len(text)
}

// OriginalLen returns the number of runes in the original store.
func (s *Stores) OriginalLen() int {
	return len(s.original.runes)
}

// AddedLen returns the number of runes in the added store.
func (s *Stores) AddedLen() int {
	return len(s.added.runes)
}

// pieceText returns the runes referenced by p.
func (s *Stores) pieceText(p Piece) []rune {
	return s.Slice(p.Origin, p.Start, p.Length)
}

// pieceLines counts the newlines referenced by p.
func (s *Stores) pieceLines(p Piece) int {
	return s.of(p.Origin).newlinesIn(p.Start, p.End())
}

// item returns the leaf entry for p.
func (s *Stores) item(p Piece) item {
	return item{piece: p, lines: s.pieceLines(p)}
}

// splitItem cuts it at the intra-piece offset at.
func (s *Stores) splitItem(it item, at int) (item, item) {
	lp, rp := it.piece.split(at)
	left := s.item(lp)
	return left, item{piece: rp, lines: it.lines - left.lines}
}
