package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/dshills/piecetable/internal/plugin/api"
	plua "github.com/dshills/piecetable/internal/plugin/lua"
)

// RunScript runs the Lua file at path against the session's document.
func (s *Session) RunScript(ctx context.Context, path string) error {
	return s.runScript(ctx, filepath.Base(path), func(state *plua.State) error {
		return state.DoFile(ctx, path)
	})
}

// RunScriptString runs Lua source against the session's document.
// name labels the run in logs and undo history.
func (s *Session) RunScriptString(ctx context.Context, name, code string) error {
	return s.runScript(ctx, name, func(state *plua.State) error {
		return state.DoString(ctx, code)
	})
}

// runScript executes a script as one undo step. A script that fails is
// rolled back, leaving the document as it was.
func (s *Session) runScript(ctx context.Context, name string, run func(*plua.State) error) error {
	buf := s.doc.Buffer
	before := buf.RevisionID()
	log := s.log.WithComponent("script").WithFields(map[string]any{
		"script":   name,
		"revision": before,
	})

	state, err := plua.NewState(
		plua.WithExecutionTimeout(s.cfg.Script.Timeout),
		plua.WithOutput(s.out),
	)
	if err != nil {
		return NewOperationError("run", name, err)
	}
	defer state.Close()

	reg, err := api.DefaultRegistry(&api.Context{Buffer: buf, Path: s.doc.Path})
	if err != nil {
		return NewOperationError("run", name, err)
	}
	reg.Install(state)

	cp := buf.Checkpoint()
	start := time.Now()

	buf.BeginUndoGroup("script " + name)
	err = run(state)
	buf.EndUndoGroup()

	elapsed := time.Since(start)
	s.metrics.RecordScript(elapsed)

	if err != nil {
		if buf.RevisionID() != before {
			if _, undoErr := buf.UndoToCheckpoint(cp); undoErr != nil {
				log.Error("rollback failed: %v", undoErr)
			}
		}
		log.Warn("failed after %v: %v", elapsed, err)
		return NewOperationError("run", name, err)
	}

	log.Debug("finished in %v, %d pieces", elapsed, buf.PieceCount())
	return nil
}
