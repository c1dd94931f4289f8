package piece

import (
	"fmt"
	"unicode/utf8"
)

// View is a read-only view of a piece table.
// A View never changes, even when the table it came from is edited later,
// and is safe for concurrent readers.
type View struct {
	root   *node
	stores Stores
}

// Table is a piece table. The zero value is not usable; create tables with New.
type Table struct {
	View
}

// New creates a table whose original store holds text.
// Returns ErrInvalidEncoding if text is not valid UTF-8.
func New(text string) (*Table, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: original text", ErrInvalidEncoding)
	}
	return newTable([]rune(text)), nil
}

// NewFromRunes creates a table whose original store holds rs.
// The table takes ownership of rs. Returns ErrInvalidEncoding if rs holds a
// surrogate half or a value outside the Unicode range, since such runes
// cannot be written back out as UTF-8.
func NewFromRunes(rs []rune) (*Table, error) {
	for i, r := range rs {
		if !utf8.ValidRune(r) {
			return nil, fmt.Errorf("%w: rune %U at %d", ErrInvalidEncoding, r, i)
		}
	}
	return newTable(rs), nil
}

// Empty creates a table with no text.
func Empty() *Table {
	return newTable(nil)
}

func newTable(rs []rune) *Table {
	t := &Table{View: View{stores: newStores(rs)}}
	if len(rs) > 0 {
		p := Piece{Origin: OriginOriginal, Start: 0, Length: len(rs)}
		t.root = newLeaf([]item{t.stores.item(p)})
	}
	return t
}

// Snapshot returns a read-only view of the current table state.
func (t *Table) Snapshot() View {
	return t.View
}

// Insert inserts text at position.
// Inserting empty text is a no-op. Text is validated before the added store
// is touched, so a rejected insert leaves the table unchanged.
func (t *Table) Insert(position int, text string) error {
	if err := t.checkPosition(position); err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: insert at %d", ErrInvalidEncoding, position)
	}
	t.insertRunes(position, []rune(text))
	return nil
}

func (t *Table) insertRunes(position int, rs []rune) {
	if t.extend(position, rs) {
		return
	}

	start, length := t.stores.Append(rs)
	p := Piece{Origin: OriginAdded, Start: start, Length: length}
	left, right := split(t.root, position, &t.stores)
	t.root = join(join(left, newLeaf([]item{t.stores.item(p)})), right)
}

// extend grows the piece ending at position in place when it is the most
// recent span of the added store, which is what consecutive typing produces.
func (t *Table) extend(position int, rs []rune) bool {
	if position == 0 {
		return false
	}
	prev, loc := t.find(position - 1)
	if prev.Origin != OriginAdded || loc.Offset != prev.Length-1 ||
		prev.End() != t.stores.AddedLen() {
		return false
	}

	t.stores.Append(rs)
	grown := Piece{Origin: OriginAdded, Start: prev.Start, Length: prev.Length + len(rs)}
	left, _ := split(t.root, position-prev.Length, &t.stores)
	_, right := split(t.root, position, &t.stores)
	t.root = join(join(left, newLeaf([]item{t.stores.item(grown)})), right)
	return true
}

// Delete removes length runes starting at position.
// Deleting zero runes is a no-op. Store contents are never touched; pieces
// covered by the range are dropped and the two boundary pieces narrowed.
func (t *Table) Delete(position, length int) error {
	if err := t.checkRange(position, length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	t.deleteRange(position, length)
	return nil
}

func (t *Table) deleteRange(position, length int) {
	left, rest := split(t.root, position, &t.stores)
	_, right := split(rest, length, &t.stores)
	t.root = join(left, right)
}

// Replace removes length runes at position and inserts text in their place.
// All arguments are validated before anything changes.
func (t *Table) Replace(position, length int, text string) error {
	if err := t.checkRange(position, length); err != nil {
		return err
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: replace at %d", ErrInvalidEncoding, position)
	}
	if length > 0 {
		t.deleteRange(position, length)
	}
	if text != "" {
		t.insertRunes(position, []rune(text))
	}
	return nil
}

// Compact rebuilds the piece tree fully balanced, merging neighbouring pieces
// that reference contiguous spans of the same store. Content is unchanged.
// Returns the number of pieces removed.
func (t *Table) Compact() int {
	pieces := t.Pieces()
	items := make([]item, 0, len(pieces))
	for _, p := range pieces {
		if n := len(items); n > 0 {
			prev := items[n-1].piece
			if prev.Origin == p.Origin && prev.End() == p.Start {
				items[n-1] = t.stores.item(Piece{Origin: p.Origin, Start: prev.Start, Length: prev.Length + p.Length})
				continue
			}
		}
		items = append(items, t.stores.item(p))
	}
	t.root = buildTree(items)
	return len(pieces) - len(items)
}

// Restore resets the piece list to the one captured in v.
// v must have been taken from this table; the added store is kept as is, so
// every piece in v is still valid.
func (t *Table) Restore(v View) {
	t.root = v.root
}

func (v *View) checkPosition(position int) error {
	if position < 0 || position > v.Len() {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfBounds, position, v.Len())
	}
	return nil
}

func (v *View) checkRange(position, length int) error {
	if err := v.checkPosition(position); err != nil {
		return err
	}
	if length < 0 || position+length > v.Len() {
		return fmt.Errorf("%w: [%d, %d) exceeds length %d", ErrInvalidRange, position, position+length, v.Len())
	}
	return nil
}

// Len returns the document length in runes.
func (v View) Len() int {
	if v.root == nil {
		return 0
	}
	return v.root.summary.runes
}

// IsEmpty returns true if the document is empty.
func (v View) IsEmpty() bool {
	return v.Len() == 0
}

// PieceCount returns the number of pieces in the list.
func (v View) PieceCount() int {
	if v.root == nil {
		return 0
	}
	return v.root.summary.pieces
}

// Height returns the height of the piece tree.
// Useful for debugging and testing balance.
func (v View) Height() int {
	if v.root == nil {
		return 0
	}
	return int(v.root.height) + 1
}

// Pieces returns the piece list in document order.
func (v View) Pieces() []Piece {
	pieces := make([]Piece, 0, v.PieceCount())
	var walk func(n *node)
	walk = func(n *node) {
		if n.isLeaf() {
			for _, it := range n.items {
				pieces = append(pieces, it.piece)
			}
			return
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	if v.root != nil {
		walk(v.root)
	}
	return pieces
}

// OriginalLen returns the number of runes in the original store.
func (v View) OriginalLen() int {
	return v.stores.OriginalLen()
}

// AddedLen returns the number of runes in the added store.
func (v View) AddedLen() int {
	return v.stores.AddedLen()
}

// PieceText returns the runes referenced by p.
// The returned slice must not be modified.
func (v View) PieceText(p Piece) ([]rune, error) {
	if p.Start < 0 || p.Length < 0 || p.End() > len(v.stores.of(p.Origin).runes) {
		return nil, fmt.Errorf("%w: piece %s", ErrInvalidRange, p)
	}
	return v.stores.pieceText(p), nil
}

// Locate resolves a logical offset to a piece ordinal and intra-piece offset.
// An offset on a piece boundary resolves to the start of the following piece;
// an offset equal to Len resolves to the end of the last piece. On an empty
// document offset 0 resolves to {0, 0}.
func (v View) Locate(offset int) (Location, error) {
	if err := v.checkPosition(offset); err != nil {
		return Location{}, err
	}
	_, loc := v.find(offset)
	return loc, nil
}

// find walks to the piece holding offset. offset must be in [0, Len].
func (v *View) find(offset int) (Piece, Location) {
	if v.root == nil {
		return Piece{}, Location{}
	}
	n := v.root
	var index int
	for {
		idx, before := n.findByOffset(offset)
		index += before.pieces
		offset -= before.runes
		if n.isLeaf() {
			return n.items[idx].piece, Location{Index: index, Offset: offset}
		}
		n = n.children[idx]
	}
}

// Validate checks the structural invariants of the table: no empty pieces,
// piece spans inside their stores, cached summaries matching their contents,
// and every leaf at the same depth.
// A non-nil result is always ErrCorrupt and signals a defect.
func (v View) Validate() error {
	if v.root == nil {
		return nil
	}
	_, err := v.validateNode(v.root)
	return err
}

func (v *View) validateNode(n *node) (summary, error) {
	var total summary
	if n.isLeaf() {
		if len(n.items) == 0 {
			return total, fmt.Errorf("%w: empty leaf", ErrCorrupt)
		}
		for _, it := range n.items {
			p := it.piece
			if p.Length <= 0 {
				return total, fmt.Errorf("%w: zero-length piece %s", ErrCorrupt, p)
			}
			if p.Start < 0 || p.End() > len(v.stores.of(p.Origin).runes) {
				return total, fmt.Errorf("%w: piece %s outside store", ErrCorrupt, p)
			}
			if it.lines != v.stores.pieceLines(p) {
				return total, fmt.Errorf("%w: stale line count for %s", ErrCorrupt, p)
			}
			total = total.add(it.summary())
		}
	} else {
		if len(n.children) < 2 {
			return total, fmt.Errorf("%w: internal node with %d children", ErrCorrupt, len(n.children))
		}
		for i, child := range n.children {
			if child.height+1 != n.height {
				return total, fmt.Errorf("%w: unbalanced child at height %d", ErrCorrupt, n.height)
			}
			s, err := v.validateNode(child)
			if err != nil {
				return total, err
			}
			if s != n.childSummaries[i] {
				return total, fmt.Errorf("%w: stale child summary", ErrCorrupt)
			}
			total = total.add(s)
		}
	}
	if total != n.summary {
		return total, fmt.Errorf("%w: length sum %d, recorded %d", ErrCorrupt, total.runes, n.summary.runes)
	}
	return total, nil
}
