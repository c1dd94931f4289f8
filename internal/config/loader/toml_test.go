package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/pted.toml", `
[editor]
line_ending = "lf"
max_undo = 50
debug_assertions = true

[script]
timeout = "2s"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/pted.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	editor, ok := config["editor"].(map[string]any)
	if !ok {
		t.Fatalf("editor section missing: %v", config)
	}
	if editor["line_ending"] != "lf" {
		t.Errorf("line_ending = %v, want lf", editor["line_ending"])
	}
	if editor["max_undo"] != int64(50) {
		t.Errorf("max_undo = %v (%T), want 50", editor["max_undo"], editor["max_undo"])
	}
	if editor["debug_assertions"] != true {
		t.Errorf("debug_assertions = %v, want true", editor["debug_assertions"])
	}

	script := config["script"].(map[string]any)
	if script["timeout"] != "2s" {
		t.Errorf("timeout = %v, want 2s", script["timeout"])
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/nope.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config != nil {
		t.Errorf("config = %v, want nil", config)
	}
}

func TestTOMLLoader_EmptyPath(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "").Load()
	if err != nil || config != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[editor]\nmax_undo = = 3\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	if err == nil {
		t.Fatal("expected parse error")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q, want /bad.toml", perr.Path)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
	if !strings.Contains(perr.Error(), "/bad.toml") {
		t.Errorf("Error() = %q, missing path", perr.Error())
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[logging]\nlevel = \"debug\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	logging := config["logging"].(map[string]any)
	if logging["level"] != "debug" {
		t.Errorf("level = %v, want debug", logging["level"])
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"editor": map[string]any{
			"max_undo":    int64(10),
			"line_ending": "lf",
		},
		"logging": map[string]any{"level": "info"},
	}
	src := map[string]any{
		"editor": map[string]any{"max_undo": int64(20)},
		"script": map[string]any{"timeout": "1s"},
	}

	got := DeepMerge(dst, src)

	editor := got["editor"].(map[string]any)
	if editor["max_undo"] != int64(20) {
		t.Errorf("max_undo = %v, want 20", editor["max_undo"])
	}
	if editor["line_ending"] != "lf" {
		t.Errorf("line_ending = %v, want lf", editor["line_ending"])
	}
	if got["logging"].(map[string]any)["level"] != "info" {
		t.Error("logging section lost")
	}
	if got["script"].(map[string]any)["timeout"] != "1s" {
		t.Error("script section not merged")
	}
}

func TestDeepMerge_NilDst(t *testing.T) {
	got := DeepMerge(nil, map[string]any{"a": int64(1)})
	if got["a"] != int64(1) {
		t.Errorf("got %v", got)
	}
}
