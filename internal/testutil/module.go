package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/modload"
	"github.com/specialistvlad/kiln/internal/version"
	"github.com/specialistvlad/kiln/internal/window"
	"github.com/stretchr/testify/require"
)

// FakeModule is an in-memory modload.Module backed by a symbol table.
type FakeModule struct {
	path    string
	Symbols map[string]any

	mu     sync.Mutex
	closed int
}

func (m *FakeModule) Path() string { return m.path }

func (m *FakeModule) Lookup(symbol string) (any, error) {
	sym, ok := m.Symbols[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", m.path, modload.ErrSymbolNotFound, symbol)
	}
	return sym, nil
}

func (m *FakeModule) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// Closed reports how many times Close was called.
func (m *FakeModule) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Symbols returns a complete contract symbol table for a backend. A factory
// is only included for window backends and when f is non-nil.
func Symbols(name string, t backend.Type, v version.Version, f window.Factory) map[string]any {
	syms := map[string]any{
		modload.SymbolName:        func() string { return name },
		modload.SymbolAuthor:      func() string { return "kiln tests" },
		modload.SymbolDescription: func() string { return name + " test backend" },
		modload.SymbolVersion:     func() version.Version { return v },
		modload.SymbolType:        func() backend.Type { return t },
	}
	if t == backend.Window && f != nil {
		syms[modload.SymbolFactory] = func() window.Factory { return f }
	}
	return syms
}

// FakeOpener serves FakeModules keyed by file base name. Files without an
// entry fail to open.
type FakeOpener struct {
	mu      sync.Mutex
	modules map[string]map[string]any
	opened  map[string]*FakeModule
}

// NewFakeOpener creates an empty FakeOpener.
func NewFakeOpener() *FakeOpener {
	return &FakeOpener{
		modules: make(map[string]map[string]any),
		opened:  make(map[string]*FakeModule),
	}
}

// Add registers the symbol table served for the file named base.
func (o *FakeOpener) Add(base string, symbols map[string]any) *FakeOpener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.modules[base] = symbols
	return o
}

// Open implements modload.Opener.
func (o *FakeOpener) Open(path string) (modload.Module, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	syms, ok := o.modules[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("open %s: not a loadable module", path)
	}
	m := &FakeModule{path: path, Symbols: syms}
	o.opened[filepath.Base(path)] = m
	return m, nil
}

// Opened returns the last module opened for base, or nil.
func (o *FakeOpener) Opened(base string) *FakeModule {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opened[base]
}

// TouchModules creates empty files with the given names in dir so a scan
// finds them.
func TouchModules(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}
