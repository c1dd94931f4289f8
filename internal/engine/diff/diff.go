// Package diff computes line diffs between two versions of a document,
// typically two buffer snapshots, and renders them in unified format.
//
// Lines are compared with the Myers algorithm after the common prefix and
// suffix are stripped. Inputs too large for Myers fall back to replacing
// the differing middle wholesale.
//
// A final newline does not start an extra line. A last line that lacks one
// differs from the same line with one, and unified output marks it with
// "\ No newline at end of file".
package diff

import (
	"strings"
)

// Options configures diff computation.
type Options struct {
	// Context is the number of unchanged lines shown around each change.
	Context int

	// IgnoreCase compares lines case-insensitively.
	IgnoreCase bool

	// IgnoreWhitespace ignores leading and trailing whitespace on each line.
	IgnoreWhitespace bool

	// MaxLines bounds the differing region Myers is run on. Larger inputs
	// use the fallback. Zero means DefaultMaxLines; negative disables the
	// limit.
	MaxLines int
}

// DefaultMaxLines is the default Options.MaxLines.
const DefaultMaxLines = 10000

// DefaultOptions returns three lines of context and the default line limit.
func DefaultOptions() Options {
	return Options{
		Context:  3,
		MaxLines: DefaultMaxLines,
	}
}

// Op is the kind of an edit.
type Op uint8

const (
	// Equal is a line present in both versions.
	Equal Op = iota
	// Insert is a line only in the new version.
	Insert
	// Delete is a line only in the old version.
	Delete
)

// String returns a human-readable representation of the op.
func (op Op) String() string {
	switch op {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Edit is one step of an edit script. Old and New are 0-based line
// indexes; for an Insert, Old is the position in the old version the line
// goes before, and for a Delete, New is the matching position in the new
// version.
type Edit struct {
	Op  Op
	Old int
	New int
}

// NoNewlineMarker follows a hunk line that ends its file without a newline.
const NoNewlineMarker = "\\ No newline at end of file"

// Hunk is a run of changes with surrounding context.
type Hunk struct {
	// OldStart and NewStart are 0-based line indexes.
	OldStart, OldCount int
	NewStart, NewCount int

	// Lines are prefixed with ' ', '+' or '-', or are NoNewlineMarker.
	Lines []string
}

// Result is the outcome of a diff.
type Result struct {
	Hunks    []Hunk
	OldLines int
	NewLines int
	Inserted int
	Deleted  int
}

// HasChanges reports whether the versions differ.
func (r Result) HasChanges() bool {
	return r.Inserted > 0 || r.Deleted > 0
}

// LineSource is a document that can be read line by line.
// *buffer.Snapshot and *buffer.Buffer implement it.
type LineSource interface {
	LineCount() int
	LineText(line int) (string, error)
}

// version is one side of a diff. unterminated marks a last line with no
// newline after it.
type version struct {
	lines        []string
	unterminated bool
}

// Sources diffs two documents.
func Sources(oldSrc, newSrc LineSource, opts Options) (Result, error) {
	a, err := readLines(oldSrc)
	if err != nil {
		return Result{}, err
	}
	b, err := readLines(newSrc)
	if err != nil {
		return Result{}, err
	}
	return compare(a, b, opts), nil
}

// Strings diffs two texts.
func Strings(oldText, newText string, opts Options) Result {
	return compare(split(oldText), split(newText), opts)
}

// Lines diffs two sequences of newline-terminated lines.
func Lines(oldLines, newLines []string, opts Options) Result {
	return compare(version{lines: oldLines}, version{lines: newLines}, opts)
}

// SplitLines splits text on "\n". A final newline does not start a line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func split(text string) version {
	return version{
		lines:        SplitLines(text),
		unterminated: text != "" && !strings.HasSuffix(text, "\n"),
	}
}

func readLines(src LineSource) (version, error) {
	n := src.LineCount()
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := src.LineText(i)
		if err != nil {
			return version{}, err
		}
		lines = append(lines, s)
	}
	// The line after a final newline is always empty; anything else there
	// is an unterminated last line.
	if len(lines) == 0 {
		return version{}, nil
	}
	if lines[len(lines)-1] == "" {
		return version{lines: lines[:len(lines)-1]}, nil
	}
	return version{lines: lines, unterminated: true}, nil
}

func compare(a, b version, opts Options) Result {
	edits := script(a.keys(opts), b.keys(opts), opts.MaxLines)

	res := Result{
		Hunks:    buildHunks(a, b, edits, opts.Context),
		OldLines: len(a.lines),
		NewLines: len(b.lines),
	}
	for _, e := range edits {
		switch e.Op {
		case Insert:
			res.Inserted++
		case Delete:
			res.Deleted++
		}
	}
	return res
}

// keys returns the lines as they are compared. An unterminated last line
// keeps a trailing "\n", which no split line can contain, so it never
// matches a terminated one.
func (v version) keys(opts Options) []string {
	if !v.unterminated {
		return keys(v.lines, opts)
	}
	k := append([]string(nil), keys(v.lines, opts)...)
	k[len(k)-1] += "\n"
	return k
}

// endsUnterminated reports whether line i is an unterminated last line.
func (v version) endsUnterminated(i int) bool {
	return v.unterminated && i == len(v.lines)-1
}

// Script returns the edit script turning oldLines into newLines. Every line
// of both inputs appears in it exactly once, in order.
func Script(oldLines, newLines []string, opts Options) []Edit {
	return script(keys(oldLines, opts), keys(newLines, opts), opts.MaxLines)
}

func script(a, b []string, maxLines int) []Edit {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	edits := make([]Edit, 0, len(a)+len(b)-prefix-suffix)
	for i := 0; i < prefix; i++ {
		edits = append(edits, Edit{Op: Equal, Old: i, New: i})
	}

	midA := a[prefix : len(a)-suffix]
	midB := b[prefix : len(b)-suffix]
	if maxLines == 0 {
		maxLines = DefaultMaxLines
	}
	var mid []Edit
	if maxLines > 0 && (len(midA) > maxLines || len(midB) > maxLines) {
		mid = replaceAll(len(midA), len(midB))
	} else {
		mid = myers(midA, midB)
	}
	for _, e := range mid {
		e.Old += prefix
		e.New += prefix
		edits = append(edits, e)
	}

	for i := 0; i < suffix; i++ {
		edits = append(edits, Edit{Op: Equal, Old: len(a) - suffix + i, New: len(b) - suffix + i})
	}
	return edits
}

// keys returns the lines as they are compared.
func keys(lines []string, opts Options) []string {
	if !opts.IgnoreCase && !opts.IgnoreWhitespace {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if opts.IgnoreCase {
			line = strings.ToLower(line)
		}
		if opts.IgnoreWhitespace {
			line = strings.TrimSpace(line)
		}
		out[i] = line
	}
	return out
}

// replaceAll deletes every old line, then inserts every new one.
func replaceAll(n, m int) []Edit {
	edits := make([]Edit, 0, n+m)
	for i := 0; i < n; i++ {
		edits = append(edits, Edit{Op: Delete, Old: i, New: 0})
	}
	for j := 0; j < m; j++ {
		edits = append(edits, Edit{Op: Insert, Old: n, New: j})
	}
	return edits
}

// myers finds a shortest edit script between a and b.
func myers(a, b []string) []Edit {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return replaceAll(n, m)
	}

	maxD := n + m
	offset := maxD // v[k] is stored at v[offset+k]
	v := make([]int, 2*maxD+2)

	var trace [][]int
outer:
	for d := 0; d <= maxD; d++ {
		trace = append(trace, append([]int(nil), v...))

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x

			if x >= n && y >= m {
				break outer
			}
		}
	}

	return backtrack(trace, n, m, offset)
}

// backtrack walks the trace from (n, m) back to the origin.
func backtrack(trace [][]int, n, m, offset int) []Edit {
	x, y := n, m
	var edits []Edit

	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			edits = append(edits, Edit{Op: Equal, Old: x, New: y})
		}
		if d == 0 {
			break
		}
		if x > prevX {
			x--
			edits = append(edits, Edit{Op: Delete, Old: x, New: y})
		} else {
			y--
			edits = append(edits, Edit{Op: Insert, Old: x, New: y})
		}
	}

	for i, j := 0, len(edits)-1; i < j; i, j = i+1, j-1 {
		edits[i], edits[j] = edits[j], edits[i]
	}
	return edits
}

// buildHunks groups changes whose separating runs of equal lines are no
// longer than twice the context.
func buildHunks(a, b version, edits []Edit, context int) []Hunk {
	if context < 0 {
		context = 0
	}

	var hunks []Hunk
	i := 0
	for i < len(edits) {
		for i < len(edits) && edits[i].Op == Equal {
			i++
		}
		if i == len(edits) {
			break
		}

		end := i
		for {
			for end < len(edits) && edits[end].Op != Equal {
				end++
			}
			run := end
			for run < len(edits) && edits[run].Op == Equal {
				run++
			}
			if run < len(edits) && run-end <= 2*context {
				end = run
				continue
			}
			break
		}

		start := max(i-context, 0)
		stop := min(end+context, len(edits))

		h := Hunk{OldStart: edits[start].Old, NewStart: edits[start].New}
		for _, e := range edits[start:stop] {
			var last bool
			switch e.Op {
			case Equal:
				h.Lines = append(h.Lines, " "+a.lines[e.Old])
				h.OldCount++
				h.NewCount++
				last = a.endsUnterminated(e.Old)
			case Delete:
				h.Lines = append(h.Lines, "-"+a.lines[e.Old])
				h.OldCount++
				last = a.endsUnterminated(e.Old)
			case Insert:
				h.Lines = append(h.Lines, "+"+b.lines[e.New])
				h.NewCount++
				last = b.endsUnterminated(e.New)
			}
			if last {
				h.Lines = append(h.Lines, NoNewlineMarker)
			}
		}
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}
