package app

import (
	"fmt"
	"io"

	"github.com/rivo/uniseg"

	"github.com/dshills/piecetable/internal/engine/buffer"
)

// Stats describes a document's text and the piece table holding it.
type Stats struct {
	Runes     int
	Bytes     int
	Lines     int
	Graphemes int
	// MaxWidth is the display width of the widest line, tabs expanded.
	MaxWidth int

	Pieces      int
	Height      int
	OriginalLen int
	AddedLen    int
}

// ComputeStats measures a snapshot.
func ComputeStats(snap *buffer.Snapshot) Stats {
	st := Stats{
		Runes:       snap.Len(),
		Lines:       snap.LineCount(),
		Pieces:      snap.PieceCount(),
		Height:      snap.Height(),
		OriginalLen: snap.OriginalLen(),
		AddedLen:    snap.AddedLen(),
	}

	text := snap.Text()
	st.Bytes = len(text)
	st.Graphemes = uniseg.GraphemeClusterCount(text)

	for line := 0; line < st.Lines; line++ {
		s, err := snap.LineText(line)
		if err != nil {
			break
		}
		if w := DisplayWidth(s, snap.TabWidth()); w > st.MaxWidth {
			st.MaxWidth = w
		}
	}
	return st
}

// DisplayWidth returns the monospace width of a single line, expanding
// tabs to the next multiple of tabWidth.
func DisplayWidth(line string, tabWidth int) int {
	if tabWidth < 1 {
		tabWidth = 1
	}

	width := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		if g.Str() == "\t" {
			width += tabWidth - width%tabWidth
			continue
		}
		width += g.Width()
	}
	return width
}

// WriteTo prints the stats one per line.
func (st Stats) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"runes\t%d\nbytes\t%d\nlines\t%d\ngraphemes\t%d\nmax width\t%d\npieces\t%d\nheight\t%d\noriginal\t%d\nadded\t%d\n",
		st.Runes, st.Bytes, st.Lines, st.Graphemes, st.MaxWidth,
		st.Pieces, st.Height, st.OriginalLen, st.AddedLen)
	return int64(n), err
}
