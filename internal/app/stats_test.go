package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/piecetable/internal/engine/buffer"
)

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		tabWidth int
		want     int
	}{
		{"empty", "", 4, 0},
		{"ascii", "abc", 4, 3},
		{"tab", "\t", 4, 4},
		{"tab after text", "a\t", 4, 4},
		{"tab stop", "ab\tc", 8, 9},
		{"wide", "日本", 4, 4},
		{"combining", "e\u0301", 4, 1},
		{"zero tab width", "\t\t", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayWidth(tt.line, tt.tabWidth); got != tt.want {
				t.Errorf("DisplayWidth(%q, %d) = %d, want %d", tt.line, tt.tabWidth, got, tt.want)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	buf, err := buffer.NewBufferFromString("a\tb\n日本\n", buffer.WithTabWidth(4))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := buf.Insert(buf.Len(), "end"); err != nil {
		t.Fatal(err)
	}

	st := ComputeStats(buf.Snapshot())

	if st.Runes != 10 {
		t.Errorf("Runes = %d, want 10", st.Runes)
	}
	if st.Bytes != 14 {
		t.Errorf("Bytes = %d, want 14", st.Bytes)
	}
	if st.Lines != 3 {
		t.Errorf("Lines = %d, want 3", st.Lines)
	}
	if st.Graphemes != 10 {
		t.Errorf("Graphemes = %d, want 10", st.Graphemes)
	}
	if st.MaxWidth != 5 {
		t.Errorf("MaxWidth = %d, want 5", st.MaxWidth)
	}
	if st.Pieces != 2 {
		t.Errorf("Pieces = %d, want 2", st.Pieces)
	}
	if st.OriginalLen != 7 || st.AddedLen != 3 {
		t.Errorf("OriginalLen, AddedLen = %d, %d; want 7, 3", st.OriginalLen, st.AddedLen)
	}
}

func TestStats_WriteTo(t *testing.T) {
	var out bytes.Buffer
	st := Stats{Runes: 3, Lines: 1, Pieces: 1}

	n, err := st.WriteTo(&out)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(out.Len()) {
		t.Errorf("WriteTo returned %d, wrote %d", n, out.Len())
	}
	for _, want := range []string{"runes\t3\n", "lines\t1\n", "pieces\t1\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
