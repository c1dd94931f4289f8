package diff

import (
	"io"
	"strconv"
	"strings"
)

// Unified returns the result in unified diff format, or "" when the
// versions are the same.
func (r Result) Unified(oldName, newName string) string {
	var sb strings.Builder
	_, _ = r.WriteUnified(&sb, oldName, newName)
	return sb.String()
}

// WriteUnified writes the result in unified diff format. Nothing is
// written when the versions are the same.
func (r Result) WriteUnified(w io.Writer, oldName, newName string) (int64, error) {
	if !r.HasChanges() {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString("--- " + oldName + "\n")
	sb.WriteString("+++ " + newName + "\n")
	for _, h := range r.Hunks {
		sb.WriteString("@@ -")
		sb.WriteString(hunkRange(h.OldStart, h.OldCount))
		sb.WriteString(" +")
		sb.WriteString(hunkRange(h.NewStart, h.NewCount))
		sb.WriteString(" @@\n")
		for _, line := range h.Lines {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// hunkRange formats a hunk's line range. An empty range names the line
// before it.
func hunkRange(start, count int) string {
	if count == 0 {
		return strconv.Itoa(start) + ",0"
	}
	if count == 1 {
		return strconv.Itoa(start + 1)
	}
	return strconv.Itoa(start+1) + "," + strconv.Itoa(count)
}
