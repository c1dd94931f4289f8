package piece

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// iterFrame is a position in the tree traversal.
type iterFrame struct {
	node *node
	idx  int // Index of the child (or item) being visited
}

// ChunkIterator iterates over the pieces overlapping a range, yielding the
// runes each contributes. Chunks alias store memory and must not be modified.
type ChunkIterator struct {
	view       View
	start, end int

	stack   []iterFrame
	started bool
	skip    int // Runes to skip in the first chunk
	offset  int // Document offset of the next chunk
	chunk   []rune
	chunkAt int
}

// Chunks returns an iterator over the whole document.
func (v View) Chunks() *ChunkIterator {
	it, _ := v.ChunksInRange(0, v.Len())
	return it
}

// ChunksInRange returns an iterator over [start, end).
func (v View) ChunksInRange(start, end int) (*ChunkIterator, error) {
	if err := v.checkSpan(start, end); err != nil {
		return nil, err
	}
	return &ChunkIterator{
		view:  v,
		start: start,
		end:   end,
		stack: make([]iterFrame, 0, 8),
	}, nil
}

// Reset rewinds the iterator to the start of its range.
func (it *ChunkIterator) Reset() {
	it.stack = it.stack[:0]
	it.started = false
	it.chunk = nil
}

// seek descends from the root to the item holding the range start.
func (it *ChunkIterator) seek() {
	n := it.view.root
	offset := it.start
	it.offset = it.start
	for {
		idx, before := n.findByOffset(offset)
		offset -= before.runes
		it.stack = append(it.stack, iterFrame{node: n, idx: idx})
		if n.isLeaf() {
			it.skip = offset
			return
		}
		n = n.children[idx]
	}
}

// Next advances to the next chunk.
// Returns true if there is a chunk, false if iteration is complete.
func (it *ChunkIterator) Next() bool {
	if !it.started {
		it.started = true
		if it.start >= it.end {
			return false
		}
		it.seek()
	} else if !it.advance() {
		return false
	}
	if it.offset >= it.end {
		return false
	}

	frame := it.stack[len(it.stack)-1]
	p := frame.node.items[frame.idx].piece
	from, to := it.skip, p.Length
	it.skip = 0
	if remaining := it.end - it.offset; to-from > remaining {
		to = from + remaining
	}
	it.chunk = it.view.stores.Slice(p.Origin, p.Start+from, to-from)
	it.chunkAt = it.offset
	it.offset += to - from
	return true
}

// advance moves the stack to the next item in document order.
func (it *ChunkIterator) advance() bool {
	for len(it.stack) > 0 {
		frame := &it.stack[len(it.stack)-1]
		frame.idx++
		if frame.idx < frame.node.size() {
			// Descend to the leftmost leaf below the new position
			n := frame.node
			for !n.isLeaf() {
				n = n.children[it.stack[len(it.stack)-1].idx]
				it.stack = append(it.stack, iterFrame{node: n, idx: 0})
			}
			return true
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	return false
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() []rune {
	return it.chunk
}

// Offset returns the document offset of the start of the current chunk.
func (it *ChunkIterator) Offset() int {
	return it.chunkAt
}

// RuneIterator iterates over the runes of a range.
type RuneIterator struct {
	chunks *ChunkIterator
	chunk  []rune
	idx    int
	r      rune
	offset int
}

// Runes returns an iterator over all runes in the document.
func (v View) Runes() *RuneIterator {
	return &RuneIterator{chunks: v.Chunks()}
}

// RunesInRange returns an iterator over the runes in [start, end).
func (v View) RunesInRange(start, end int) (*RuneIterator, error) {
	chunks, err := v.ChunksInRange(start, end)
	if err != nil {
		return nil, err
	}
	return &RuneIterator{chunks: chunks}, nil
}

// Next advances to the next rune.
func (it *RuneIterator) Next() bool {
	for it.idx >= len(it.chunk) {
		if !it.chunks.Next() {
			return false
		}
		it.chunk = it.chunks.Chunk()
		it.offset = it.chunks.Offset()
		it.idx = 0
	}
	it.r = it.chunk[it.idx]
	it.idx++
	return true
}

// Rune returns the current rune.
func (it *RuneIterator) Rune() rune {
	return it.r
}

// Offset returns the document offset of the current rune.
func (it *RuneIterator) Offset() int {
	return it.offset + it.idx - 1
}

// Reset rewinds the iterator to the start of its range.
func (it *RuneIterator) Reset() {
	it.chunks.Reset()
	it.chunk = nil
	it.idx = 0
}

func (v *View) checkSpan(start, end int) error {
	if start < 0 || start > end || end > v.Len() {
		return fmt.Errorf("%w: [%d, %d) with length %d", ErrInvalidRange, start, end, v.Len())
	}
	return nil
}

// String returns the full document as a string.
// Use sparingly for large documents.
func (v View) String() string {
	s, _ := v.Slice(0, v.Len())
	return s
}

// Slice returns the text in [start, end).
func (v View) Slice(start, end int) (string, error) {
	it, err := v.ChunksInRange(start, end)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(end - start)
	for it.Next() {
		for _, r := range it.Chunk() {
			sb.WriteRune(r)
		}
	}
	return sb.String(), nil
}

// RuneAt returns the rune at offset.
func (v View) RuneAt(offset int) (rune, error) {
	if offset < 0 || offset >= v.Len() {
		return utf8.RuneError, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfBounds, offset, v.Len())
	}
	p, loc := v.find(offset)
	return v.stores.Slice(p.Origin, p.Start+loc.Offset, 1)[0], nil
}

// writeBufferSize is the encoding buffer size used by WriteTo.
const writeBufferSize = 32 * 1024

// WriteTo writes the document to w as UTF-8.
// It implements io.WriterTo.
func (v View) WriteTo(w io.Writer) (int64, error) {
	var total int64
	buf := make([]byte, 0, writeBufferSize)

	flush := func() error {
		n, err := w.Write(buf)
		total += int64(n)
		buf = buf[:0]
		return err
	}

	it := v.Chunks()
	for it.Next() {
		for _, r := range it.Chunk() {
			buf = utf8.AppendRune(buf, r)
			if len(buf) >= writeBufferSize-utf8.UTFMax {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
	if len(buf) > 0 {
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}
