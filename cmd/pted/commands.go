package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dshills/piecetable/internal/app"
	"github.com/dshills/piecetable/internal/config"
	"github.com/dshills/piecetable/internal/engine/diff"
)

// cmdEnv is what every subcommand runs with.
type cmdEnv struct {
	cfg    *config.Config
	log    *app.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type commandFunc func(ctx context.Context, env *cmdEnv, args []string) error

var commands = map[string]commandFunc{
	"cat":  cmdCat,
	"stat": cmdStat,
	"run":  cmdRun,
	"edit": cmdEdit,
}

func (env *cmdEnv) open(path string) (*app.Document, error) {
	doc, err := app.OpenDocument(path, env.cfg.BufferOptions()...)
	if err != nil {
		return nil, err
	}
	env.log.Debug("opened %s (%d runes, %d lines)", doc.Path, doc.Buffer.Len(), doc.Buffer.LineCount())
	return doc, nil
}

func (env *cmdEnv) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("pted "+name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	return fs
}

func cmdCat(_ context.Context, env *cmdEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: pted cat <file>", app.ErrUsage)
	}
	doc, err := env.open(args[0])
	if err != nil {
		return err
	}
	_, err = doc.Buffer.WriteTo(env.stdout)
	return err
}

func cmdStat(_ context.Context, env *cmdEnv, args []string) error {
	fs := env.flags("stat")
	compact := fs.Bool("compact", false, "Compact the piece table before measuring")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: pted stat [-compact] <file>", app.ErrUsage)
	}

	doc, err := env.open(fs.Arg(0))
	if err != nil {
		return err
	}
	if *compact {
		merged := doc.Buffer.Compact()
		env.log.Debug("compact merged %d pieces", merged)
	}
	_, err = app.ComputeStats(doc.Buffer.Snapshot()).WriteTo(env.stdout)
	return err
}

func cmdRun(ctx context.Context, env *cmdEnv, args []string) error {
	fs := env.flags("run")
	write := fs.Bool("w", false, "Save the file after the script succeeds")
	showDiff := fs.Bool("diff", false, "Print the script's changes as a unified diff instead of the result")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: pted run [-w] [-diff] <script.lua> <file>", app.ErrUsage)
	}

	doc, err := env.open(fs.Arg(1))
	if err != nil {
		return err
	}
	s := app.NewSession(doc, env.cfg, app.WithLogger(env.log), app.WithOutput(env.stderr))
	defer s.Close()

	if err := s.RunScript(ctx, fs.Arg(0)); err != nil {
		return err
	}

	if *showDiff {
		res, err := doc.Diff(diff.DefaultOptions())
		if err != nil {
			return err
		}
		if _, err := res.WriteUnified(env.stdout, "a/"+doc.Name, "b/"+doc.Name); err != nil {
			return err
		}
	}

	if *write {
		if !doc.IsModified() {
			env.log.Info("%s unchanged", doc.Path)
			return nil
		}
		if err := doc.Save(); err != nil {
			return err
		}
		env.log.Info("wrote %s", doc.Path)
		return nil
	}
	if *showDiff {
		return nil
	}
	_, err = doc.Buffer.WriteTo(env.stdout)
	return err
}

func cmdEdit(ctx context.Context, env *cmdEnv, args []string) error {
	var doc *app.Document
	switch len(args) {
	case 0:
		doc = app.NewScratchDocument(env.cfg.BufferOptions()...)
	case 1:
		var err error
		if doc, err = env.open(args[0]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: pted edit [file]", app.ErrUsage)
	}

	s := app.NewSession(doc, env.cfg, app.WithLogger(env.log), app.WithOutput(env.stdout))
	defer s.Close()

	if !doc.IsScratch() {
		if err := s.Watch(app.DefaultWatchDelay); err != nil {
			env.log.Warn("not watching %s: %v", doc.Path, err)
		}
	}

	interactive := isTerminal(env.stdin)
	if interactive {
		fmt.Fprintf(env.stdout, "%s: %d lines, %d runes (h for help)\n", doc.Name, doc.Buffer.LineCount(), doc.Buffer.Len())
	}

	scanner := bufio.NewScanner(env.stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for {
		if s.CheckExternalChanges() {
			fmt.Fprintf(env.stderr, "warning: %s changed on disk\n", doc.Path)
		}
		if interactive {
			fmt.Fprint(env.stdout, prompt(doc))
		}
		if !scanner.Scan() {
			break
		}

		err := s.Exec(ctx, scanner.Text())
		switch {
		case err == nil:
		case errors.Is(err, app.ErrQuit):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			if !interactive {
				return err
			}
			fmt.Fprintf(env.stderr, "error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if doc.IsModified() {
		env.log.Warn("input ended with unsaved changes to %s", doc.Name)
		return app.ErrUnsavedChanges
	}
	return nil
}

func prompt(doc *app.Document) string {
	if doc.IsModified() {
		return doc.Name + " [+]> "
	}
	return doc.Name + "> "
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
