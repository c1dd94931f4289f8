package piece

// Tree structure constants
const (
	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxItemsPerLeaf is the maximum pieces in a leaf node.
	MaxItemsPerLeaf = 16
)

// summary holds aggregated metrics for a run of pieces.
type summary struct {
	runes  int // Document length covered
	pieces int // Number of pieces
	lines  int // Number of newline characters
}

func (s summary) add(other summary) summary {
	return summary{
		runes:  s.runes + other.runes,
		pieces: s.pieces + other.pieces,
		lines:  s.lines + other.lines,
	}
}

// item is a leaf entry: a piece plus its cached newline count.
type item struct {
	piece Piece
	lines int
}

func (it item) summary() summary {
	return summary{runes: it.piece.Length, pieces: 1, lines: it.lines}
}

// node is a node of the piece B+ tree.
// Leaf nodes (height == 0) contain pieces; internal nodes (height > 0)
// contain children. All leaves of a subtree sit at the same depth, every
// internal node has at least two children and no leaf is empty.
//
// Nodes are never modified once built; edits copy the path they touch.
// An empty tree is a nil *node.
type node struct {
	height  uint8
	summary summary

	// Internal node fields (height > 0)
	children       []*node
	childSummaries []summary

	// Leaf node fields (height == 0)
	items []item
}

func newLeaf(items []item) *node {
	n := &node{items: items}
	for _, it := range items {
		n.summary = n.summary.add(it.summary())
	}
	return n
}

func newInternal(children []*node) *node {
	n := &node{
		height:         children[0].height + 1,
		children:       children,
		childSummaries: make([]summary, len(children)),
	}
	for i, child := range children {
		n.childSummaries[i] = child.summary
		n.summary = n.summary.add(child.summary)
	}
	return n
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

// size returns the number of entries directly held by the node.
func (n *node) size() int {
	if n.isLeaf() {
		return len(n.items)
	}
	return len(n.children)
}

// entrySummary returns the summary of the i-th child or item.
func (n *node) entrySummary(i int) summary {
	if n.isLeaf() {
		return n.items[i].summary()
	}
	return n.childSummaries[i]
}

// findByOffset returns the entry containing offset together with the summary
// of all entries before it. An offset on an entry boundary resolves to the
// following entry; an offset at the end resolves to the last entry.
func (n *node) findByOffset(offset int) (int, summary) {
	var before summary
	last := n.size() - 1
	for i := 0; i < last; i++ {
		s := n.entrySummary(i)
		if before.runes+s.runes > offset {
			return i, before
		}
		before = before.add(s)
	}
	return last, before
}

// findByLine returns the entry holding the line-th newline (1-based) together
// with the summary of all entries before it.
func (n *node) findByLine(line int) (int, summary) {
	var before summary
	last := n.size() - 1
	for i := 0; i < last; i++ {
		s := n.entrySummary(i)
		if before.lines+s.lines >= line {
			return i, before
		}
		before = before.add(s)
	}
	return last, before
}

// buildTree builds a balanced tree bottom-up from leaf items.
func buildTree(items []item) *node {
	if len(items) == 0 {
		return nil
	}

	var nodes []*node
	for _, group := range groups(len(items), MaxItemsPerLeaf) {
		leafItems := make([]item, group[1]-group[0])
		copy(leafItems, items[group[0]:group[1]])
		nodes = append(nodes, newLeaf(leafItems))
	}

	for len(nodes) > 1 {
		var parents []*node
		for _, group := range groups(len(nodes), MaxChildren) {
			children := make([]*node, group[1]-group[0])
			copy(children, nodes[group[0]:group[1]])
			parents = append(parents, newInternal(children))
		}
		nodes = parents
	}
	return nodes[0]
}

// groups partitions n entries into the fewest runs of at most max entries,
// spreading them evenly so no run is left with a single straggler.
func groups(n, max int) [][2]int {
	count := (n + max - 1) / max
	out := make([][2]int, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		size := n / count
		if i < n%count {
			size++
		}
		out = append(out, [2]int{start, start + size})
		start += size
	}
	return out
}

// internalOf wraps same-height siblings into a single subtree.
func internalOf(children []*node) *node {
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	default:
		cp := make([]*node, len(children))
		copy(cp, children)
		return newInternal(cp)
	}
}

// leafOf wraps items into a single leaf, or nil when there are none.
func leafOf(items []item) *node {
	if len(items) == 0 {
		return nil
	}
	cp := make([]item, len(items))
	copy(cp, items)
	return newLeaf(cp)
}

// packItems builds a leaf from items, splitting into two leaves under a new
// parent when they do not fit.
func packItems(items []item) *node {
	if len(items) <= MaxItemsPerLeaf {
		return newLeaf(items)
	}
	mid := len(items) / 2
	return newInternal([]*node{leafOf(items[:mid]), leafOf(items[mid:])})
}

// packChildren builds an internal node from children, splitting into two
// nodes under a new parent when they do not fit.
func packChildren(children []*node) *node {
	if len(children) <= MaxChildren {
		return newInternal(children)
	}
	mid := len(children) / 2
	return newInternal([]*node{internalOf(children[:mid]), internalOf(children[mid:])})
}

// join concatenates two trees. The result is at most one level taller than
// the taller input.
func join(left, right *node) *node {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}

	switch {
	case left.height == right.height:
		if left.isLeaf() {
			items := make([]item, 0, len(left.items)+len(right.items))
			items = append(items, left.items...)
			items = append(items, right.items...)
			return packItems(items)
		}
		children := make([]*node, 0, len(left.children)+len(right.children))
		children = append(children, left.children...)
		children = append(children, right.children...)
		return packChildren(children)

	case left.height > right.height:
		last := len(left.children) - 1
		merged := join(left.children[last], right)
		if merged.height < left.height {
			children := make([]*node, len(left.children))
			copy(children, left.children)
			children[last] = merged
			return newInternal(children)
		}
		// merged grew to our height; adopt its children in place of the last one
		children := make([]*node, 0, last+len(merged.children))
		children = append(children, left.children[:last]...)
		children = append(children, merged.children...)
		return packChildren(children)

	default:
		merged := join(left, right.children[0])
		if merged.height < right.height {
			children := make([]*node, len(right.children))
			copy(children, right.children)
			children[0] = merged
			return newInternal(children)
		}
		children := make([]*node, 0, len(merged.children)+len(right.children)-1)
		children = append(children, merged.children...)
		children = append(children, right.children[1:]...)
		return packChildren(children)
	}
}

// split cuts the tree at the given document offset.
// Returns two trees: left holds [0, offset), right holds [offset, end).
// A piece straddling offset is cut into two narrower pieces of the same origin.
func split(n *node, offset int, st *Stores) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	if offset <= 0 {
		return nil, n
	}
	if offset >= n.summary.runes {
		return n, nil
	}

	if n.isLeaf() {
		idx, before := n.findByOffset(offset)
		at := offset - before.runes
		if at == 0 {
			return leafOf(n.items[:idx]), leafOf(n.items[idx:])
		}
		l, r := st.splitItem(n.items[idx], at)
		leftItems := make([]item, 0, idx+1)
		leftItems = append(leftItems, n.items[:idx]...)
		leftItems = append(leftItems, l)
		rightItems := make([]item, 0, len(n.items)-idx)
		rightItems = append(rightItems, r)
		rightItems = append(rightItems, n.items[idx+1:]...)
		return newLeaf(leftItems), newLeaf(rightItems)
	}

	idx, before := n.findByOffset(offset)
	if offset == before.runes {
		return internalOf(n.children[:idx]), internalOf(n.children[idx:])
	}
	cl, cr := split(n.children[idx], offset-before.runes, st)
	return join(internalOf(n.children[:idx]), cl), join(cr, internalOf(n.children[idx+1:]))
}
