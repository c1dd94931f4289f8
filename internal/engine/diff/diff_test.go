package diff

import (
	"fmt"
	"strings"
	"testing"
	"testing/quick"

	"github.com/dshills/piecetable/internal/engine/buffer"
)

func TestStrings(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		inserted int
		deleted  int
	}{
		{"identical", "a\nb\n", "a\nb\n", 0, 0},
		{"both empty", "", "", 0, 0},
		{"final newline added", "a", "a\n", 1, 1},
		{"final newline removed", "a\nb\n", "a\nb", 1, 1},
		{"both unterminated", "a\nb", "a\nb", 0, 0},
		{"only a newline", "", "\n", 1, 0},
		{"replace middle", "a\nb\nc", "a\nX\nc", 1, 1},
		{"append", "a\n", "a\nb\n", 1, 0},
		{"prepend", "b\n", "a\nb\n", 1, 0},
		{"delete all", "a\nb\n", "", 0, 2},
		{"from empty", "", "x\ny\n", 2, 0},
		{"move", "a\nb\nc\n", "b\nc\na\n", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Strings(tt.old, tt.new, DefaultOptions())
			if res.Inserted != tt.inserted || res.Deleted != tt.deleted {
				t.Errorf("inserted, deleted = %d, %d; want %d, %d", res.Inserted, res.Deleted, tt.inserted, tt.deleted)
			}
			if res.HasChanges() != (tt.inserted+tt.deleted > 0) {
				t.Errorf("HasChanges = %v", res.HasChanges())
			}
		})
	}
}

func TestUnified(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		context  int
		want     string
	}{
		{
			name:    "no changes",
			old:     "same\n",
			new:     "same\n",
			context: 3,
			want:    "",
		},
		{
			name:    "replace",
			old:     "a\nb\nc\n",
			new:     "a\nX\nc\n",
			context: 3,
			want:    "--- old\n+++ new\n@@ -1,3 +1,3 @@\n a\n-b\n+X\n c\n",
		},
		{
			name:    "into empty file",
			old:     "",
			new:     "x\n",
			context: 3,
			want:    "--- old\n+++ new\n@@ -0,0 +1 @@\n+x\n",
		},
		{
			name:    "newline added",
			old:     "a",
			new:     "a\n",
			context: 3,
			want:    "--- old\n+++ new\n@@ -1 +1 @@\n-a\n\\ No newline at end of file\n+a\n",
		},
		{
			name:    "newline removed",
			old:     "x\ny\n",
			new:     "x\ny",
			context: 3,
			want:    "--- old\n+++ new\n@@ -1,2 +1,2 @@\n x\n-y\n+y\n\\ No newline at end of file\n",
		},
		{
			name:    "unterminated context",
			old:     "a\nb",
			new:     "A\nb",
			context: 3,
			want:    "--- old\n+++ new\n@@ -1,2 +1,2 @@\n-a\n+A\n b\n\\ No newline at end of file\n",
		},
		{
			name:    "separate hunks",
			old:     "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n",
			new:     "1\ntwo\n3\n4\n5\n6\n7\n8\nnine\n10\n",
			context: 1,
			want: "--- old\n+++ new\n" +
				"@@ -1,3 +1,3 @@\n 1\n-2\n+two\n 3\n" +
				"@@ -8,3 +8,3 @@\n 8\n-9\n+nine\n 10\n",
		},
		{
			name:    "merged hunks",
			old:     "1\n2\n3\n4\n5\n",
			new:     "one\n2\n3\n4\nfive\n",
			context: 2,
			want:    "--- old\n+++ new\n@@ -1,5 +1,5 @@\n-1\n+one\n 2\n 3\n 4\n-5\n+five\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Context = tt.context
			got := Strings(tt.old, tt.new, opts).Unified("old", "new")
			if got != tt.want {
				t.Errorf("Unified() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	if Strings("HELLO", "hello", Options{IgnoreCase: true}).HasChanges() {
		t.Error("IgnoreCase: expected no changes")
	}
	if Strings("  hello ", "hello", Options{IgnoreWhitespace: true}).HasChanges() {
		t.Error("IgnoreWhitespace: expected no changes")
	}
	if !Strings("HELLO", "hello", Options{}).HasChanges() {
		t.Error("expected case to matter by default")
	}
}

func TestMaxLinesFallback(t *testing.T) {
	var old, new []string
	for i := 0; i < 50; i++ {
		old = append(old, fmt.Sprint(i))
		new = append(new, fmt.Sprint(i))
	}
	new[10] = "changed"
	new[40] = "changed"

	res := Lines(old, new, Options{MaxLines: 5})
	checkScript(t, old, new, Script(old, new, Options{MaxLines: 5}))
	if res.Inserted != 31 || res.Deleted != 31 {
		t.Errorf("fallback inserted, deleted = %d, %d; want 31, 31", res.Inserted, res.Deleted)
	}

	res = Lines(old, new, Options{MaxLines: -1})
	if res.Inserted != 2 || res.Deleted != 2 {
		t.Errorf("unlimited inserted, deleted = %d, %d; want 2, 2", res.Inserted, res.Deleted)
	}
}

func TestSources(t *testing.T) {
	buf, err := buffer.NewBufferFromString("alpha\nbeta\ngamma\n")
	if err != nil {
		t.Fatal(err)
	}
	before := buf.Snapshot()

	if _, err := buf.Replace(6, 4, "BETA"); err != nil {
		t.Fatal(err)
	}
	res, err := Sources(before, buf.Snapshot(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	want := "--- a\n+++ b\n@@ -1,3 +1,3 @@\n alpha\n-beta\n+BETA\n gamma\n"
	if got := res.Unified("a", "b"); got != want {
		t.Errorf("Unified() =\n%s\nwant\n%s", got, want)
	}
	if res.OldLines != 3 || res.NewLines != 3 {
		t.Errorf("OldLines, NewLines = %d, %d", res.OldLines, res.NewLines)
	}
}

func TestSourcesFinalNewline(t *testing.T) {
	buf, err := buffer.NewBufferFromString("alpha\nbeta")
	if err != nil {
		t.Fatal(err)
	}
	before := buf.Snapshot()

	if _, err := buf.Insert(buf.Len(), "\n"); err != nil {
		t.Fatal(err)
	}
	res, err := Sources(before, buf.Snapshot(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !res.HasChanges() {
		t.Fatal("adding a final newline reported no changes")
	}
	want := "--- a\n+++ b\n@@ -1,2 +1,2 @@\n alpha\n-beta\n" + NoNewlineMarker + "\n+beta\n"
	if got := res.Unified("a", "b"); got != want {
		t.Errorf("Unified() =\n%s\nwant\n%s", got, want)
	}
	if res.OldLines != 2 || res.NewLines != 2 {
		t.Errorf("OldLines, NewLines = %d, %d", res.OldLines, res.NewLines)
	}

	same, err := Sources(before, before, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if same.HasChanges() {
		t.Error("unterminated document differs from itself")
	}
}

func TestOpString(t *testing.T) {
	for op, want := range map[Op]string{Equal: "equal", Insert: "insert", Delete: "delete", Op(9): "unknown"} {
		if op.String() != want {
			t.Errorf("Op(%d).String() = %q, want %q", op, op.String(), want)
		}
	}
}

// checkScript verifies that every line of both inputs appears once, in
// order, and that equal steps pair equal lines.
func checkScript(t *testing.T, old, new []string, edits []Edit) {
	t.Helper()
	nextOld, nextNew := 0, 0
	for _, e := range edits {
		switch e.Op {
		case Equal:
			if e.Old != nextOld || e.New != nextNew {
				t.Fatalf("equal at (%d,%d), expected (%d,%d)", e.Old, e.New, nextOld, nextNew)
			}
			if old[e.Old] != new[e.New] {
				t.Fatalf("equal pairs %q with %q", old[e.Old], new[e.New])
			}
			nextOld++
			nextNew++
		case Delete:
			if e.Old != nextOld {
				t.Fatalf("delete of %d, expected %d", e.Old, nextOld)
			}
			nextOld++
		case Insert:
			if e.New != nextNew {
				t.Fatalf("insert of %d, expected %d", e.New, nextNew)
			}
			nextNew++
		}
	}
	if nextOld != len(old) || nextNew != len(new) {
		t.Fatalf("script covers %d/%d old and %d/%d new lines", nextOld, len(old), nextNew, len(new))
	}
}

// lcs is the reference length of the longest common subsequence.
func lcs(a, b []string) int {
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else {
				dp[i][j] = max(dp[i+1][j], dp[i][j+1])
			}
		}
	}
	return dp[0][0]
}

func TestScriptProperties(t *testing.T) {
	// Small alphabets make common lines likely.
	toLines := func(raw []byte) []string {
		lines := make([]string, len(raw)%12)
		for i := range lines {
			lines[i] = string(rune('a' + raw[i]%4))
		}
		return lines
	}

	f := func(x, y []byte) bool {
		old, new := toLines(x), toLines(y)
		edits := Script(old, new, Options{MaxLines: -1})
		checkScript(t, old, new, edits)

		equal := 0
		for _, e := range edits {
			if e.Op == Equal {
				equal++
			}
		}
		return equal == lcs(old, new)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 500}); err != nil {
		t.Error(err)
	}
}

func BenchmarkLines(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	old := sb.String()
	new := strings.Replace(old, "line 1000\n", "changed\n", 1)
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Strings(old, new, opts)
	}
}
