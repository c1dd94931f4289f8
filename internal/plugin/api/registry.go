package api

import (
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/piecetable/internal/engine/buffer"
)

// Version is reported to scripts as pted.api_version.
const Version = 1

// Module represents a Lua API module.
type Module interface {
	// Name returns the module name (e.g., "buf", "util").
	Name() string

	// Table builds the module table in the given state.
	Table(L *lua.LState) *lua.LTable
}

// Preloader is anything modules can be preloaded into.
// Both *lua.LState and the sandboxed plugin state satisfy it.
type Preloader interface {
	PreloadModule(name string, loader lua.LGFunction)
}

// Registry manages API modules and their registration.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates a new API registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}
	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns all registered module names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install preloads every module as pted.<name>, and the aggregate pted
// module holding them all.
func (r *Registry) Install(p Preloader) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mods := make([]Module, 0, len(r.modules))
	for _, mod := range r.modules {
		mods = append(mods, mod)
		p.PreloadModule("pted."+mod.Name(), moduleLoader(mod))
	}

	p.PreloadModule("pted", func(L *lua.LState) int {
		root := L.NewTable()
		for _, mod := range mods {
			L.SetField(root, mod.Name(), mod.Table(L))
		}
		L.SetField(root, "api_version", lua.LNumber(Version))
		L.Push(root)
		return 1
	})
}

func moduleLoader(mod Module) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(mod.Table(L))
		return 1
	}
}

// DefaultRegistry creates a registry with the standard modules registered.
func DefaultRegistry(ctx *Context) (*Registry, error) {
	r := NewRegistry()

	modules := []Module{
		NewBufferModule(ctx),
		NewUtilModule(),
	}
	for _, mod := range modules {
		if err := r.Register(mod); err != nil {
			return nil, fmt.Errorf("failed to register module %q: %w", mod.Name(), err)
		}
	}
	return r, nil
}

// Context provides access to editor state for API modules.
type Context struct {
	// Buffer is the document scripts edit.
	Buffer BufferProvider

	// Path is the file the buffer was loaded from, if any.
	Path string
}

// BufferProvider defines the buffer operations scripts can reach.
// *buffer.Buffer implements it.
type BufferProvider interface {
	Text() string
	TextRange(start, end int) (string, error)
	LineText(line int) (string, error)
	LineStartOffset(line int) int
	LineCount() int
	Len() int

	Insert(offset int, text string) (int, error)
	Delete(offset, length int) error
	ApplyEdit(edit buffer.Edit) (buffer.EditResult, error)

	Undo() error
	Redo() error
	BeginUndoGroup(name string)
	EndUndoGroup()

	PieceCount() int
}
