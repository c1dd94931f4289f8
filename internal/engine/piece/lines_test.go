package piece

import (
	"errors"
	"testing"
)

func TestLineCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"hello", 1},
		{"hello\n", 2},
		{"a\nb\nc", 3},
		{"\n\n\n", 4},
	}

	for _, tt := range tests {
		tbl := mustNew(t, tt.input)
		if got := tbl.LineCount(); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestLineText(t *testing.T) {
	tbl := mustNew(t, "a\nbc\n\nd")
	want := []string{"a", "bc", "", "d"}
	for i, w := range want {
		got, err := tbl.LineText(i)
		if err != nil {
			t.Fatalf("LineText(%d) failed: %v", i, err)
		}
		if got != w {
			t.Errorf("LineText(%d) = %q, want %q", i, got, w)
		}
	}

	if _, err := tbl.LineText(4); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
	if _, err := tbl.LineText(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestLinesAcrossPieces(t *testing.T) {
	tbl := mustNew(t, "a\nbc\n\nd")
	if err := tbl.Insert(1, "x\ny"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	// "ax\ny\nbc\n\nd"
	want := []string{"ax", "y", "bc", "", "d"}
	if tbl.LineCount() != len(want) {
		t.Fatalf("LineCount() = %d, want %d", tbl.LineCount(), len(want))
	}
	for i, w := range want {
		got, err := tbl.LineText(i)
		if err != nil {
			t.Fatalf("LineText(%d) failed: %v", i, err)
		}
		if got != w {
			t.Errorf("LineText(%d) = %q, want %q", i, got, w)
		}
	}

	if err := tbl.Delete(2, 3); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	// "axbc\n\nd"
	if got, _ := tbl.LineText(0); got != "axbc" {
		t.Errorf("LineText(0) = %q, want %q", got, "axbc")
	}
	if tbl.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", tbl.LineCount())
	}
}

func TestLineStartEnd(t *testing.T) {
	tbl := mustNew(t, "hello\nworld\n")

	tests := []struct {
		line       int
		start, end int
	}{
		{0, 0, 5},
		{1, 6, 11},
		{2, 12, 12},
		{3, 12, 12}, // past the end
	}
	for _, tt := range tests {
		if got := tbl.LineStart(tt.line); got != tt.start {
			t.Errorf("LineStart(%d) = %d, want %d", tt.line, got, tt.start)
		}
		if got := tbl.LineEnd(tt.line); got != tt.end {
			t.Errorf("LineEnd(%d) = %d, want %d", tt.line, got, tt.end)
		}
	}
}

func TestOffsetToPoint(t *testing.T) {
	tbl := mustNew(t, "héllo\nwörld")

	tests := []struct {
		offset int
		want   Point
	}{
		{0, Point{0, 0}},
		{4, Point{0, 4}},
		{5, Point{0, 5}},
		{6, Point{1, 0}},
		{8, Point{1, 2}},
		{11, Point{1, 5}},
	}
	for _, tt := range tests {
		got, err := tbl.OffsetToPoint(tt.offset)
		if err != nil {
			t.Fatalf("OffsetToPoint(%d) failed: %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("OffsetToPoint(%d) = %v, want %v", tt.offset, got, tt.want)
		}

		back, err := tbl.PointToOffset(got)
		if err != nil || back != tt.offset {
			t.Errorf("PointToOffset(%v) = %d, %v, want %d", got, back, err, tt.offset)
		}
	}

	if _, err := tbl.OffsetToPoint(12); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestPointToOffsetClampsColumn(t *testing.T) {
	tbl := mustNew(t, "ab\ncdef")
	got, err := tbl.PointToOffset(Point{Line: 0, Column: 10})
	if err != nil {
		t.Fatalf("PointToOffset failed: %v", err)
	}
	if got != 2 {
		t.Errorf("PointToOffset = %d, want 2", got)
	}

	if _, err := tbl.PointToOffset(Point{Line: 2}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}
