package buffer

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingPreserve LineEnding = iota // Keep text as given
	LineEndingLF                         // Unix: \n
	LineEndingCRLF                       // Windows: \r\n
	LineEndingCR                         // Old Mac: \r
)

// String returns the configuration name of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingLF:
		return "lf"
	case LineEndingCRLF:
		return "crlf"
	case LineEndingCR:
		return "cr"
	default:
		return "preserve"
	}
}

// Sequence returns the actual line ending characters.
// LineEndingPreserve has no sequence of its own and reports "\n".
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// ParseLineEnding parses a line ending name as written in configuration.
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "preserve":
		return LineEndingPreserve, nil
	case "lf":
		return LineEndingLF, nil
	case "crlf":
		return LineEndingCRLF, nil
	case "cr":
		return LineEndingCR, nil
	}
	return LineEndingPreserve, fmt.Errorf("unknown line ending %q", s)
}

// Normalization selects the Unicode normalization applied to incoming text.
type Normalization uint8

const (
	NormalizeNone Normalization = iota // Keep text as given
	NormalizeNFC                       // Canonical composition
)

// String returns the configuration name of the normalization.
func (n Normalization) String() string {
	if n == NormalizeNFC {
		return "nfc"
	}
	return "none"
}

// ParseNormalization parses a normalization name as written in configuration.
func ParseNormalization(s string) (Normalization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NormalizeNone, nil
	case "nfc":
		return NormalizeNFC, nil
	}
	return NormalizeNone, fmt.Errorf("unknown normalization %q", s)
}

func (n Normalization) apply(s string) string {
	if n == NormalizeNFC {
		return norm.NFC.String(s)
	}
	return s
}

// WithLineEnding sets the buffer's line ending style.
// Any style other than LineEndingPreserve rewrites incoming line endings.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
	}
}

// WithTabWidth sets the buffer's tab width.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// WithLF configures the buffer to use Unix line endings (\n).
func WithLF() Option {
	return WithLineEnding(LineEndingLF)
}

// WithCRLF configures the buffer to use Windows line endings (\r\n).
func WithCRLF() Option {
	return WithLineEnding(LineEndingCRLF)
}

// WithCR configures the buffer to use old Mac line endings (\r).
func WithCR() Option {
	return WithLineEnding(LineEndingCR)
}

// WithNormalization normalizes loaded and inserted text.
func WithNormalization(n Normalization) Option {
	return func(b *Buffer) {
		b.normalization = n
	}
}

// WithMaxUndoEntries limits the undo depth.
func WithMaxUndoEntries(n int) Option {
	return func(b *Buffer) {
		b.history.SetMaxEntries(n)
	}
}

// WithReadOnly rejects every edit with ErrReadOnly.
func WithReadOnly() Option {
	return func(b *Buffer) {
		b.readOnly = true
	}
}

// WithDebugAssertions validates the piece table after every edit and panics
// on a broken invariant.
func WithDebugAssertions() Option {
	return func(b *Buffer) {
		b.debug = true
	}
}

// DetectLineEnding returns a LineEnding based on the most common line ending in the text.
// Returns LineEndingLF if no line endings are found.
func DetectLineEnding(text string) LineEnding {
	var lfCount, crlfCount, crCount int

	i := 0
	for i < len(text) {
		if i+1 < len(text) && text[i] == '\r' && text[i+1] == '\n' {
			crlfCount++
			i += 2
		} else if text[i] == '\r' {
			crCount++
			i++
		} else if text[i] == '\n' {
			lfCount++
			i++
		} else {
			i++
		}
	}

	// Return the most common line ending
	if crlfCount >= lfCount && crlfCount >= crCount {
		if crlfCount > 0 {
			return LineEndingCRLF
		}
	}
	if crCount >= lfCount && crCount >= crlfCount {
		if crCount > 0 {
			return LineEndingCR
		}
	}

	return LineEndingLF
}

// WithDetectedLineEnding sets the buffer's line ending style based on content.
func WithDetectedLineEnding(text string) Option {
	return WithLineEnding(DetectLineEnding(text))
}
