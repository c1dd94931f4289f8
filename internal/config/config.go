package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dshills/piecetable/internal/config/loader"
	"github.com/dshills/piecetable/internal/engine/buffer"
	"github.com/dshills/piecetable/internal/engine/history"
)

// EnvPrefix prefixes every environment variable pted reads.
const EnvPrefix = "PTED_"

// Config holds every pted setting.
type Config struct {
	Editor  EditorConfig
	Logging LoggingConfig
	Script  ScriptConfig

	// Source is the file the configuration was read from, empty if none.
	Source string

	// Unknown lists setting paths that were present but not recognized.
	Unknown []string
}

// EditorConfig configures buffers.
type EditorConfig struct {
	LineEnding      buffer.LineEnding
	Normalization   buffer.Normalization
	MaxUndo         int
	TabWidth        int
	DebugAssertions bool
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string
	File  string
}

// ScriptConfig configures Lua edit scripts.
type ScriptConfig struct {
	Timeout time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			LineEnding:    buffer.LineEndingPreserve,
			Normalization: buffer.NormalizeNone,
			MaxUndo:       history.DefaultMaxEntries,
			TabWidth:      4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Script: ScriptConfig{
			Timeout: 5 * time.Second,
		},
	}
}

// DefaultPath returns the user configuration file, $XDG_CONFIG_HOME/pted/config.toml
// or its platform equivalent. It returns "" when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pted", "config.toml")
}

// Load reads the TOML file at path, then the environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := LoadFrom(loader.NewTOMLLoader(path), loader.NewEnvLoader(EnvPrefix))
	if err != nil {
		return nil, err
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			cfg.Source = path
		}
	}
	return cfg, nil
}

// LoadFrom merges the given sources over the defaults, in order, and
// validates the result.
func LoadFrom(sources ...loader.Loader) (*Config, error) {
	merged := make(map[string]any)
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if err := cfg.apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply copies recognized settings from m into c.
func (c *Config) apply(m map[string]any) error {
	for section, raw := range m {
		values, ok := raw.(map[string]any)
		if !ok {
			c.Unknown = append(c.Unknown, section)
			continue
		}
		for key, v := range values {
			path := section + "." + key
			known, err := c.set(path, v)
			if err != nil {
				return err
			}
			if !known {
				c.Unknown = append(c.Unknown, path)
			}
		}
	}
	sort.Strings(c.Unknown)
	return nil
}

// set assigns one setting. It reports false for an unknown path.
func (c *Config) set(path string, v any) (bool, error) {
	var err error
	switch path {
	case "editor.line_ending":
		var s string
		if s, err = asString(v); err == nil {
			c.Editor.LineEnding, err = buffer.ParseLineEnding(s)
		}
	case "editor.normalize":
		var s string
		if s, err = asString(v); err == nil {
			c.Editor.Normalization, err = buffer.ParseNormalization(s)
		}
	case "editor.max_undo":
		c.Editor.MaxUndo, err = asInt(v)
	case "editor.tab_width":
		c.Editor.TabWidth, err = asInt(v)
	case "editor.debug_assertions":
		c.Editor.DebugAssertions, err = asBool(v)
	case "logging.level":
		c.Logging.Level, err = asString(v)
	case "logging.file":
		c.Logging.File, err = asString(v)
	case "script.timeout":
		c.Script.Timeout, err = asDuration(v)
	default:
		return false, nil
	}
	if err != nil {
		return true, fmt.Errorf("%s: %w", path, wrapInvalid(err))
	}
	return true, nil
}

// wrapInvalid tags parse failures from the buffer package as ErrInvalidValue.
func wrapInvalid(err error) error {
	if errors.Is(err, ErrTypeMismatch) || errors.Is(err, ErrInvalidValue) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidValue, err)
}

// Validate checks ranges that the types alone don't enforce.
func (c *Config) Validate() error {
	if c.Editor.MaxUndo < 1 {
		return fmt.Errorf("editor.max_undo: %w: %d is not positive", ErrInvalidValue, c.Editor.MaxUndo)
	}
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		return fmt.Errorf("editor.tab_width: %w: %d not in [1, 16]", ErrInvalidValue, c.Editor.TabWidth)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: %w: %q", ErrInvalidValue, c.Logging.Level)
	}
	if c.Script.Timeout < 0 {
		return fmt.Errorf("script.timeout: %w: %v is negative", ErrInvalidValue, c.Script.Timeout)
	}
	return nil
}

// BufferOptions returns the buffer options the editor settings describe.
func (c *Config) BufferOptions() []buffer.Option {
	opts := []buffer.Option{
		buffer.WithLineEnding(c.Editor.LineEnding),
		buffer.WithNormalization(c.Editor.Normalization),
		buffer.WithMaxUndoEntries(c.Editor.MaxUndo),
		buffer.WithTabWidth(c.Editor.TabWidth),
	}
	if c.Editor.DebugAssertions {
		opts = append(opts, buffer.WithDebugAssertions())
	}
	return opts
}
