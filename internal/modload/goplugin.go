package modload

import (
	"fmt"
	"plugin"
)

// GoPlugin opens modules built with -buildmode=plugin.
type GoPlugin struct{}

// Open implements Opener.
func (GoPlugin) Open(path string) (Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open go plugin %s: %w", path, err)
	}
	return &goModule{path: path, p: p}, nil
}

type goModule struct {
	path string
	p    *plugin.Plugin
}

func (m *goModule) Path() string { return m.path }

func (m *goModule) Lookup(symbol string) (any, error) {
	ident := goIdentifier(symbol)
	sym, err := m.p.Lookup(ident)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %v", ErrSymbolNotFound, symbol, ident, err)
	}
	return sym, nil
}

// Close is a no-op: the Go runtime cannot unload a plugin.
func (m *goModule) Close() error { return nil }
