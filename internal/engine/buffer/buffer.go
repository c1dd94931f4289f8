package buffer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/piecetable/internal/engine/history"
	"github.com/dshills/piecetable/internal/engine/piece"
)

// Errors returned by buffer operations.
var (
	ErrOutOfBounds     = piece.ErrOutOfBounds
	ErrInvalidRange    = piece.ErrInvalidRange
	ErrInvalidEncoding = piece.ErrInvalidEncoding
	ErrNothingToUndo   = history.ErrNothingToUndo
	ErrNothingToRedo   = history.ErrNothingToRedo
	ErrGrouping        = history.ErrGrouping
	ErrReadOnly        = errors.New("buffer is read-only")
)

// Buffer wraps a piece table with undo history and editor settings.
// It provides the primary interface for text manipulation.
// All methods are thread-safe.
type Buffer struct {
	mu      sync.RWMutex
	id      uuid.UUID
	table   *piece.Table
	history *history.History

	revisionID    RevisionID
	lineEnding    LineEnding
	normalization Normalization
	tabWidth      int
	readOnly      bool
	debug         bool
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		id:         uuid.New(),
		table:      piece.Empty(),
		history:    history.NewHistory(history.DefaultMaxEntries),
		revisionID: NewRevisionID(),
		tabWidth:   4,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer whose original text is s.
func NewBufferFromString(s string, opts ...Option) (*Buffer, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: initial text", ErrInvalidEncoding)
	}
	b := NewBuffer(opts...)
	t, err := piece.NewFromRunes([]rune(b.prepare(s)))
	if err != nil {
		return nil, err
	}
	b.table = t
	return b, nil
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	// Read all content first to handle line ending normalization correctly
	// (CRLF sequences may be split across read boundaries)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...)
}

// prepare applies the buffer's line ending and Unicode normalization to
// incoming text. s must be valid UTF-8.
func (b *Buffer) prepare(s string) string {
	return b.normalization.apply(normalizeLineEndings(s, b.lineEnding))
}

// normalizeLineEndings converts all line endings to the given style.
func normalizeLineEndings(s string, le LineEnding) string {
	if le == LineEndingPreserve || (le == LineEndingLF && !strings.ContainsRune(s, '\r')) {
		return s
	}
	// First normalize to LF
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	switch le {
	case LineEndingCRLF:
		s = strings.ReplaceAll(s, "\n", "\r\n")
	case LineEndingCR:
		s = strings.ReplaceAll(s, "\n", "\r")
	}
	return s
}

// view returns the current piece list under the read lock. The returned view
// is immutable and may be read without holding the lock.
func (b *Buffer) view() piece.View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Snapshot()
}

// Read Operations

// ID returns the buffer's unique identity.
func (b *Buffer) ID() uuid.UUID {
	return b.id
}

// Text returns the full buffer content as a string.
// For large buffers, prefer using TextRange or iterators.
func (b *Buffer) Text() string {
	return b.view().String()
}

// TextRange returns the text in [start, end).
func (b *Buffer) TextRange(start, end int) (string, error) {
	return b.view().Slice(start, end)
}

// Len returns the buffer length in runes.
func (b *Buffer) Len() int {
	return b.view().Len()
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return b.view().LineCount()
}

// LineText returns the text of a specific line (without newline).
func (b *Buffer) LineText(line int) (string, error) {
	return b.view().LineText(line)
}

// LineStartOffset returns the offset of the start of a line.
func (b *Buffer) LineStartOffset(line int) int {
	return b.view().LineStart(line)
}

// LineEndOffset returns the offset of the end of a line (before newline).
func (b *Buffer) LineEndOffset(line int) int {
	return b.view().LineEnd(line)
}

// RuneAt returns the rune at the given offset.
func (b *Buffer) RuneAt(offset int) (rune, error) {
	return b.view().RuneAt(offset)
}

// OffsetToPoint converts an offset to line/column.
func (b *Buffer) OffsetToPoint(offset int) (Point, error) {
	return b.view().OffsetToPoint(offset)
}

// PointToOffset converts line/column to an offset.
func (b *Buffer) PointToOffset(point Point) (int, error) {
	return b.view().PointToOffset(point)
}

// WriteTo writes the buffer content to w as UTF-8.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	return b.view().WriteTo(w)
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset int, text string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkWritable(); err != nil {
		return 0, err
	}
	if offset < 0 || offset > b.table.Len() {
		return 0, fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfBounds, offset, b.table.Len())
	}
	if !utf8.ValidString(text) {
		return 0, fmt.Errorf("%w: insert at %d", ErrInvalidEncoding, offset)
	}
	if text == "" {
		return offset, nil
	}

	text = b.prepare(text)
	if err := b.execute(history.NewInsertCommand(offset, text)); err != nil {
		return 0, err
	}
	return offset + utf8.RuneCountInString(text), nil
}

// Delete removes length runes starting at offset.
func (b *Buffer) Delete(offset, length int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkWritable(); err != nil {
		return err
	}
	if err := b.checkRange(offset, length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	return b.execute(history.NewDeleteCommand(offset, length))
}

// Replace replaces length runes at offset with text.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(offset, length int, text string) (int, error) {
	res, err := b.ApplyEdit(NewEdit(Range{Start: offset, End: offset + length}, text))
	if err != nil {
		return 0, err
	}
	return res.NewRange.End, nil
}

// ApplyEdit replaces edit.Range with edit.NewText and reports what changed.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkWritable(); err != nil {
		return EditResult{}, err
	}
	if err := b.checkEdit(edit); err != nil {
		return EditResult{}, err
	}
	if edit.IsNoOp() {
		return EditResult{OldRange: edit.Range, NewRange: edit.Range}, nil
	}

	oldText, err := b.table.Slice(edit.Range.Start, edit.Range.End)
	if err != nil {
		return EditResult{}, err
	}
	text := b.prepare(edit.NewText)
	if err := b.execute(history.NewReplaceCommand(edit.Range.Start, edit.Range.Len(), text)); err != nil {
		return EditResult{}, err
	}

	newEnd := edit.Range.Start + utf8.RuneCountInString(text)
	return EditResult{
		OldRange: edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: newEnd},
		OldText:  oldText,
		NewText:  text,
	}, nil
}

// execute runs cmd through the history. Callers hold the write lock.
func (b *Buffer) execute(cmd history.Command) error {
	if err := b.history.Execute(cmd, b.table); err != nil {
		return err
	}
	b.afterEdit()
	return nil
}

// afterEdit bumps the revision and, with debug assertions on, checks the
// table invariants.
func (b *Buffer) afterEdit() {
	b.revisionID = NewRevisionID()
	if b.debug {
		if err := b.table.Validate(); err != nil {
			panic(err)
		}
	}
}

func (b *Buffer) checkWritable() error {
	if b.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (b *Buffer) checkRange(offset, length int) error {
	n := b.table.Len()
	if offset < 0 || offset > n {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfBounds, offset, n)
	}
	if length < 0 || offset+length > n {
		return fmt.Errorf("%w: [%d, %d) exceeds length %d", ErrInvalidRange, offset, offset+length, n)
	}
	return nil
}

func (b *Buffer) checkEdit(edit Edit) error {
	if err := b.checkRange(edit.Range.Start, edit.Range.Len()); err != nil {
		return err
	}
	if !utf8.ValidString(edit.NewText) {
		return fmt.Errorf("%w: edit %s", ErrInvalidEncoding, edit.Range)
	}
	return nil
}

// Undo and Redo

// Undo reverts the most recent edit or edit group.
func (b *Buffer) Undo() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkWritable(); err != nil {
		return err
	}
	if err := b.history.Undo(b.table); err != nil {
		return err
	}
	b.afterEdit()
	return nil
}

// Redo reapplies the most recently undone edit or edit group.
func (b *Buffer) Redo() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkWritable(); err != nil {
		return err
	}
	if err := b.history.Redo(b.table); err != nil {
		return err
	}
	b.afterEdit()
	return nil
}

// CanUndo returns true if undo is available.
func (b *Buffer) CanUndo() bool {
	return b.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (b *Buffer) CanRedo() bool {
	return b.history.CanRedo()
}

// BeginUndoGroup starts grouping edits into a single undo step.
func (b *Buffer) BeginUndoGroup(name string) {
	b.history.BeginGroup(name)
}

// EndUndoGroup closes the group started by BeginUndoGroup.
func (b *Buffer) EndUndoGroup() {
	b.history.EndGroup()
}

// UndoInfo describes the available undo steps, oldest first.
func (b *Buffer) UndoInfo() []history.OperationInfo {
	return b.history.UndoInfo()
}

// RedoInfo describes the available redo steps; the next redo is last.
func (b *Buffer) RedoInfo() []history.OperationInfo {
	return b.history.RedoInfo()
}

// Checkpoint marks the current position in the undo history.
func (b *Buffer) Checkpoint() history.Checkpoint {
	return b.history.CreateCheckpoint()
}

// UndoToCheckpoint undoes every step recorded after cp and returns how many
// steps it undid.
func (b *Buffer) UndoToCheckpoint(cp history.Checkpoint) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkWritable(); err != nil {
		return 0, err
	}
	n, err := b.history.UndoToCheckpoint(cp, b.table)
	if n > 0 {
		b.afterEdit()
	}
	return n, err
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	return b.view().IsEmpty()
}

// PieceCount returns the number of pieces describing the document.
func (b *Buffer) PieceCount() int {
	return b.view().PieceCount()
}

// Compact merges contiguous pieces and rebalances the piece tree.
// Content, revision and history are unchanged. Returns the number of pieces
// removed.
func (b *Buffer) Compact() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.table.Compact()
}

// Validate checks the piece table invariants.
func (b *Buffer) Validate() error {
	return b.view().Validate()
}

// IsReadOnly reports whether edits are rejected.
func (b *Buffer) IsReadOnly() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readOnly
}

// SetReadOnly enables or disables read-only mode.
func (b *Buffer) SetReadOnly(readOnly bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readOnly = readOnly
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// SetLineEnding sets the buffer's line ending style.
// This does not convert existing line endings.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetTabWidth sets the buffer's tab width.
func (b *Buffer) SetTabWidth(width int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabWidth = width
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access from other goroutines.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &Snapshot{
		view:       b.table.Snapshot(), // Piece trees are persistent, safe to share
		revisionID: b.revisionID,
		lineEnding: b.lineEnding,
		tabWidth:   b.tabWidth,
	}
}
