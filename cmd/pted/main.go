// Package main is the entry point for pted, a piece table text editor
// driven from the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/piecetable/internal/app"
	"github.com/dshills/piecetable/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the global flags.
type options struct {
	ConfigPath string
	LogLevel   string
	Debug      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pted", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	var showVersion bool
	fs.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	fs.BoolVar(&opts.Debug, "debug", false, "Enable debug logging and piece table assertions")
	fs.BoolVar(&opts.Debug, "d", false, "Enable debug logging and piece table assertions (shorthand)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "pted - piece table text editor\n\n")
		fmt.Fprintf(stderr, "Usage: pted [options] <command> [arguments]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  cat <file>                      Print a file through the buffer\n")
		fmt.Fprintf(stderr, "  stat [-compact] <file>          Print text and piece table statistics\n")
		fmt.Fprintf(stderr, "  run [-w] [-diff] <script.lua> <file>\n")
		fmt.Fprintf(stderr, "                                  Run an edit script; -w saves, -diff shows changes\n")
		fmt.Fprintf(stderr, "  edit [file]                     Edit a file with line commands (h for help)\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  pted edit notes.txt\n")
		fmt.Fprintf(stderr, "  pted run -w upcase.lua notes.txt\n")
		fmt.Fprintf(stderr, "  PTED_EDITOR_LINE_ENDING=lf pted cat dos.txt\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "pted %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, closer, err := app.OpenLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	if cfg.Source != "" {
		logger.Debug("loaded config from %s", cfg.Source)
	}
	for _, key := range cfg.Unknown {
		logger.Warn("unknown config key %q ignored", key)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := &cmdEnv{
		cfg:    cfg,
		log:    logger,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	name, cmdArgs := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", name)
		fs.Usage()
		return 2
	}

	if err := cmd(ctx, env, cmdArgs); err != nil {
		switch {
		case errors.Is(err, app.ErrQuit):
			return 0
		case errors.Is(err, app.ErrUsage), errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		logger.Error("%s: %v", name, err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
		cfg.Editor.DebugAssertions = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
