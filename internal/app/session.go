package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/piecetable/internal/config"
	"github.com/dshills/piecetable/internal/engine/buffer"
	"github.com/dshills/piecetable/internal/engine/diff"
)

// Session is one document being edited, with the settings, logger and
// metrics that go with it. Exec runs the line commands of pted edit.
type Session struct {
	doc     *Document
	cfg     *config.Config
	log     *Logger
	metrics *Metrics
	out     io.Writer

	watcher    *FileWatcher
	watchDelay time.Duration
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithOutput sets where command and script output goes.
func WithOutput(w io.Writer) SessionOption {
	return func(s *Session) {
		if w != nil {
			s.out = w
		}
	}
}

// NewSession creates a session for doc. A nil cfg means config.Default().
func NewSession(doc *Document, cfg *config.Config, opts ...SessionOption) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Session{
		doc:     doc,
		cfg:     cfg,
		log:     NullLogger,
		metrics: NewMetrics(),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("buffer", doc.Buffer.ID())
	return s
}

// Document returns the document being edited.
func (s *Session) Document() *Document {
	return s.doc
}

// Metrics returns the session metrics.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Watch starts reporting changes other programs make to the document's file.
func (s *Session) Watch(delay time.Duration) error {
	if s.doc.IsScratch() {
		return ErrNoFilePath
	}
	if s.watcher != nil {
		return nil
	}
	w, err := WatchFile(s.doc.Path, delay)
	if err != nil {
		return &FileError{Op: "watch", Path: s.doc.Path, Err: err}
	}
	s.watcher = w
	s.watchDelay = delay
	s.log.Debug("watching %s", w.Path())
	return nil
}

// CheckExternalChanges drains pending watcher events and reports whether
// the file now differs from what the session last read or wrote. Events
// caused by the session's own saves are not reported.
func (s *Session) CheckExternalChanges() bool {
	if s.watcher == nil {
		return false
	}

	seen := false
drain:
	for {
		select {
		case _, ok := <-s.watcher.Changes():
			if !ok {
				break drain
			}
			seen = true
		case err, ok := <-s.watcher.Errors():
			if !ok {
				break drain
			}
			s.log.Warn("watch: %v", err)
		default:
			break drain
		}
	}
	if !seen {
		return false
	}

	changed, err := s.doc.ChangedOnDisk()
	if err != nil {
		s.log.Warn("%v", err)
		return false
	}
	if changed {
		s.log.Info("%s changed on disk", s.doc.Path)
	}
	return changed
}

// rewatch moves the watcher to the document's current path.
func (s *Session) rewatch() {
	if err := s.watcher.Close(); err != nil {
		s.log.Warn("watch: %v", err)
	}
	s.watcher = nil
	if err := s.Watch(s.watchDelay); err != nil {
		s.log.Warn("%v", err)
	}
}

// Close releases the watcher.
func (s *Session) Close() error {
	var errs ErrorList
	if s.watcher != nil {
		errs.Add(s.watcher.Close())
		s.watcher = nil
	}
	return errs.AsError()
}

// Exec runs one command line. It returns ErrQuit when the session should
// end. Empty lines are ignored.
func (s *Session) Exec(ctx context.Context, line string) error {
	name, rest := splitWord(strings.TrimSpace(line))
	if name == "" {
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %q (h for help)", ErrUnknownCommand, name)
	}

	start := time.Now()
	err := cmd.run(ctx, s, rest)
	switch {
	case err == nil:
		if cmd.edit {
			s.metrics.RecordEdit(time.Since(start))
		}
	case errors.Is(err, ErrQuit):
	default:
		s.metrics.RecordFailure()
		s.log.Debug("%s failed: %v", name, err)
	}
	return err
}

type command struct {
	usage string
	help  string
	edit  bool
	run   func(ctx context.Context, s *Session, args string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"i":       {"i <pos> <text>", "insert text at a rune offset", true, cmdInsert},
		"a":       {"a <text>", "append text at the end", true, cmdAppend},
		"d":       {"d <pos> <len>", "delete len runes at pos", true, cmdDelete},
		"c":       {"c <pos> <len> <text>", "replace len runes at pos", true, cmdChange},
		"p":       {"p [start end]", "print the document or a rune range", false, cmdPrint},
		"l":       {"l <line>", "print a line (1-based)", false, cmdLine},
		"u":       {"u", "undo", false, cmdUndo},
		"r":       {"r", "redo", false, cmdRedo},
		"hist":    {"hist", "list undo and redo steps", false, cmdHistory},
		"w":       {"w [path]", "write the document", false, cmdWrite},
		"wq":      {"wq", "write and quit", false, cmdWriteQuit},
		"q":       {"q", "quit, refusing if there are unsaved changes", false, cmdQuit},
		"q!":      {"q!", "quit, discarding changes", false, cmdForceQuit},
		"s":       {"s", "print document and piece table statistics", false, cmdStats},
		"diff":    {"diff", "show unsaved changes as a unified diff", false, cmdDiff},
		"compact": {"compact", "merge adjacent pieces", false, cmdCompact},
		"run":     {"run <script.lua>", "run a Lua edit script", false, cmdRun},
		"h":       {"h", "show this help", false, cmdHelp},
	}
}

// splitWord splits off the first space-separated word.
func splitWord(s string) (word, rest string) {
	word, rest, _ = strings.Cut(s, " ")
	return word, strings.TrimLeft(rest, " ")
}

// parseInt parses a non-empty integer argument.
func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrUsage, name, s)
	}
	return n, nil
}

// parseText returns a text argument. Double-quoted text is unquoted with
// Go escape rules, so "a\nb" inserts a newline; anything else is literal.
func parseText(s string) (string, error) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		t, err := strconv.Unquote(s)
		if err != nil {
			return "", fmt.Errorf("%w: bad quoted text: %v", ErrUsage, err)
		}
		return t, nil
	}
	return s, nil
}

func usage(name string) error {
	return fmt.Errorf("%w: %s", ErrUsage, commands[name].usage)
}

func cmdInsert(_ context.Context, s *Session, args string) error {
	posArg, textArg := splitWord(args)
	if posArg == "" || textArg == "" {
		return usage("i")
	}
	pos, err := parseInt("pos", posArg)
	if err != nil {
		return err
	}
	text, err := parseText(textArg)
	if err != nil {
		return err
	}
	if _, err := s.doc.Buffer.Insert(pos, text); err != nil {
		return NewOperationError("insert", posArg, err)
	}
	return nil
}

func cmdAppend(ctx context.Context, s *Session, args string) error {
	if args == "" {
		return usage("a")
	}
	return cmdInsert(ctx, s, strconv.Itoa(s.doc.Buffer.Len())+" "+args)
}

func cmdDelete(_ context.Context, s *Session, args string) error {
	posArg, lenArg := splitWord(args)
	if posArg == "" || lenArg == "" {
		return usage("d")
	}
	pos, err := parseInt("pos", posArg)
	if err != nil {
		return err
	}
	n, err := parseInt("len", lenArg)
	if err != nil {
		return err
	}
	if err := s.doc.Buffer.Delete(pos, n); err != nil {
		return NewOperationError("delete", posArg, err)
	}
	return nil
}

func cmdChange(_ context.Context, s *Session, args string) error {
	posArg, rest := splitWord(args)
	lenArg, textArg := splitWord(rest)
	if posArg == "" || lenArg == "" {
		return usage("c")
	}
	pos, err := parseInt("pos", posArg)
	if err != nil {
		return err
	}
	n, err := parseInt("len", lenArg)
	if err != nil {
		return err
	}
	text, err := parseText(textArg)
	if err != nil {
		return err
	}
	edit := buffer.NewEdit(buffer.Range{Start: pos, End: pos + n}, text)
	res, err := s.doc.Buffer.ApplyEdit(edit)
	if err != nil {
		return NewOperationError("replace", posArg, err)
	}
	s.log.Debug("%v: replaced %q (%+d runes)", edit, res.OldText, res.Delta())
	return nil
}

func cmdPrint(_ context.Context, s *Session, args string) error {
	if args == "" {
		text := s.doc.Buffer.Text()
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, err := io.WriteString(s.out, text)
		return err
	}

	startArg, endArg := splitWord(args)
	if endArg == "" {
		return usage("p")
	}
	start, err := parseInt("start", startArg)
	if err != nil {
		return err
	}
	end, err := parseInt("end", endArg)
	if err != nil {
		return err
	}
	text, err := s.doc.Buffer.TextRange(start, end)
	if err != nil {
		return NewOperationError("print", args, err)
	}
	_, err = fmt.Fprintf(s.out, "%q\n", text)
	return err
}

func cmdLine(_ context.Context, s *Session, args string) error {
	if args == "" {
		return usage("l")
	}
	n, err := parseInt("line", args)
	if err != nil {
		return err
	}
	text, err := s.doc.Buffer.LineText(n - 1)
	if err != nil {
		return NewOperationError("line", args, err)
	}
	_, err = fmt.Fprintf(s.out, "%d\t%s\n", n, text)
	return err
}

func cmdUndo(_ context.Context, s *Session, _ string) error {
	if err := s.doc.Buffer.Undo(); err != nil {
		return err
	}
	s.metrics.RecordUndo()
	return nil
}

func cmdRedo(_ context.Context, s *Session, _ string) error {
	if err := s.doc.Buffer.Redo(); err != nil {
		return err
	}
	s.metrics.RecordRedo()
	return nil
}

func cmdHistory(_ context.Context, s *Session, _ string) error {
	undo := s.doc.Buffer.UndoInfo()
	redo := s.doc.Buffer.RedoInfo()
	if len(undo) == 0 && len(redo) == 0 {
		_, err := fmt.Fprintln(s.out, "no history")
		return err
	}

	// Newest first; ">" marks the step u would undo.
	var sb strings.Builder
	for i := range redo {
		fmt.Fprintf(&sb, "  redo %+5d  %s\n", redo[i].RunesDelta, redo[i].Description)
	}
	for i := len(undo) - 1; i >= 0; i-- {
		mark := " "
		if i == len(undo)-1 {
			mark = ">"
		}
		fmt.Fprintf(&sb, "%s undo %+5d  %s\n", mark, undo[i].RunesDelta, undo[i].Description)
	}
	_, err := io.WriteString(s.out, sb.String())
	return err
}

func cmdWrite(_ context.Context, s *Session, args string) error {
	var err error
	if args != "" {
		err = s.doc.SaveAs(args)
	} else {
		err = s.doc.Save()
	}
	if err != nil {
		return err
	}
	if s.watcher != nil && s.watcher.Path() != s.doc.Path {
		s.rewatch()
	}
	s.log.Info("wrote %s (%d runes)", s.doc.Path, s.doc.Buffer.Len())
	_, err = fmt.Fprintf(s.out, "wrote %s\n", s.doc.Path)
	return err
}

func cmdWriteQuit(ctx context.Context, s *Session, _ string) error {
	if err := cmdWrite(ctx, s, ""); err != nil {
		return err
	}
	return ErrQuit
}

func cmdQuit(_ context.Context, s *Session, _ string) error {
	if s.doc.IsModified() {
		return fmt.Errorf("%w (w to save, q! to discard)", ErrUnsavedChanges)
	}
	return ErrQuit
}

func cmdForceQuit(_ context.Context, _ *Session, _ string) error {
	return ErrQuit
}

func cmdStats(_ context.Context, s *Session, _ string) error {
	_, err := ComputeStats(s.doc.Buffer.Snapshot()).WriteTo(s.out)
	if err != nil {
		return err
	}
	m := s.metrics.Snapshot()
	_, err = fmt.Fprintf(s.out, "edits\t%d\nundos\t%d\nredos\t%d\n", m.EditCount, m.UndoCount, m.RedoCount)
	return err
}

func cmdDiff(_ context.Context, s *Session, _ string) error {
	res, err := s.doc.Diff(diff.DefaultOptions())
	if err != nil {
		return NewOperationError("diff", s.doc.Name, err)
	}
	if !res.HasChanges() {
		_, err = fmt.Fprintln(s.out, "no changes")
		return err
	}
	_, err = res.WriteUnified(s.out, s.doc.Name+" (saved)", s.doc.Name)
	return err
}

func cmdCompact(_ context.Context, s *Session, _ string) error {
	merged := s.doc.Buffer.Compact()
	_, err := fmt.Fprintf(s.out, "merged %d pieces\n", merged)
	return err
}

func cmdRun(ctx context.Context, s *Session, args string) error {
	if args == "" {
		return usage("run")
	}
	return s.RunScript(ctx, args)
}

func cmdHelp(_ context.Context, s *Session, _ string) error {
	names := []string{"i", "a", "d", "c", "p", "l", "u", "r", "hist", "w", "wq", "q", "q!", "s", "diff", "compact", "run", "h"}
	for _, name := range names {
		cmd := commands[name]
		if _, err := fmt.Fprintf(s.out, "  %-22s %s\n", cmd.usage, cmd.help); err != nil {
			return err
		}
	}
	return nil
}
