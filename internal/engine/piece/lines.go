package piece

import "fmt"

// LineCount returns the number of lines (newlines + 1).
func (v View) LineCount() int {
	if v.root == nil {
		return 1
	}
	return v.root.summary.lines + 1
}

// LineStart returns the offset of the first rune of line.
// Lines past the end return Len.
func (v View) LineStart(line int) int {
	if line <= 0 || v.root == nil {
		return 0
	}
	if line >= v.LineCount() {
		return v.Len()
	}

	// The start of line N follows the N-th newline
	n := v.root
	target := line
	offset := 0
	for {
		idx, before := n.findByLine(target)
		target -= before.lines
		offset += before.runes
		if n.isLeaf() {
			p := n.items[idx].piece
			pos := v.stores.of(p.Origin).nthNewline(p.Start, target-1)
			return offset + pos - p.Start + 1
		}
		n = n.children[idx]
	}
}

// LineEnd returns the offset just past the last rune of line, before its
// newline. Lines past the end return Len.
func (v View) LineEnd(line int) int {
	if line < 0 {
		line = 0
	}
	if line >= v.LineCount()-1 {
		return v.Len()
	}
	return v.LineStart(line+1) - 1
}

// LineText returns the text of line without its newline.
func (v View) LineText(line int) (string, error) {
	if line < 0 || line >= v.LineCount() {
		return "", fmt.Errorf("%w: line %d not in [0, %d)", ErrOutOfBounds, line, v.LineCount())
	}
	return v.Slice(v.LineStart(line), v.LineEnd(line))
}

// linesBefore counts the newlines in [0, offset).
func (v *View) linesBefore(offset int) int {
	if v.root == nil {
		return 0
	}
	n := v.root
	lines := 0
	for {
		idx, before := n.findByOffset(offset)
		lines += before.lines
		offset -= before.runes
		if n.isLeaf() {
			p := n.items[idx].piece
			return lines + v.stores.of(p.Origin).newlinesIn(p.Start, p.Start+offset)
		}
		n = n.children[idx]
	}
}

// OffsetToPoint converts an offset to a line/column position.
func (v View) OffsetToPoint(offset int) (Point, error) {
	if err := v.checkPosition(offset); err != nil {
		return Point{}, err
	}
	line := v.linesBefore(offset)
	return Point{Line: line, Column: offset - v.LineStart(line)}, nil
}

// PointToOffset converts a line/column position to an offset.
// Columns past the end of the line clamp to the line end.
func (v View) PointToOffset(p Point) (int, error) {
	if p.Line < 0 || p.Line >= v.LineCount() || p.Column < 0 {
		return 0, fmt.Errorf("%w: point %s", ErrOutOfBounds, p)
	}
	start := v.LineStart(p.Line)
	end := v.LineEnd(p.Line)
	if start+p.Column > end {
		return end, nil
	}
	return start + p.Column, nil
}
