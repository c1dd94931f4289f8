package loader

import (
	"strings"
	"testing"
)

func getByPath(data map[string]any, path string) (any, bool) {
	section, key, ok := strings.Cut(path, ".")
	if !ok {
		return nil, false
	}
	m, ok := data[section].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

func TestEnvLoader_Load(t *testing.T) {
	loader := NewEnvLoaderFrom("PTED_", []string{
		"PTED_EDITOR_LINE_ENDING=crlf",
		"PTED_EDITOR_MAX_UNDO=25",
		"PTED_EDITOR_DEBUG_ASSERTIONS=true",
		"PTED_LOGGING_LEVEL=debug",
		"PTED_SCRIPT_TIMEOUT=500ms",
		"HOME=/root",
		"PTED_BROKEN",
		"PTED_NOSECTION=1",
	})

	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"editor.line_ending", "crlf"},
		{"editor.max_undo", int64(25)},
		{"editor.debug_assertions", true},
		{"logging.level", "debug"},
		{"script.timeout", "500ms"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := getByPath(config, tt.path)
			if !ok || got != tt.want {
				t.Errorf("%s = %v (%T), want %v", tt.path, got, got, tt.want)
			}
		})
	}

	if _, ok := config["home"]; ok {
		t.Error("unprefixed variable loaded")
	}
	if _, ok := config["nosection"]; ok {
		t.Error("variable without key loaded")
	}
}

func TestEnvLoader_Environment(t *testing.T) {
	t.Setenv("PTED_LOGGING_FILE", "/tmp/pted.log")

	config, err := NewEnvLoader("PTED_").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, _ := getByPath(config, "logging.file"); got != "/tmp/pted.log" {
		t.Errorf("logging.file = %v, want /tmp/pted.log", got)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"Yes", true},
		{"off", false},
		{"42", int64(42)},
		{"-3", int64(-3)},
		{"5s", "5s"},
		{"nfc", "nfc"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}
