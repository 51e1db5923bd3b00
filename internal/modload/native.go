//go:build linux || darwin || freebsd

package modload

import (
	"fmt"

	"github.com/ebitengine/purego"
	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/version"
)

// Native opens C-ABI shared libraries with purego.
type Native struct{}

// Open implements Opener.
func (Native) Open(path string) (Module, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("open native module %s: %w", path, err)
	}
	return &nativeModule{path: path, handle: handle}, nil
}

type nativeModule struct {
	path   string
	handle uintptr
}

func (m *nativeModule) Path() string { return m.path }

// Lookup wraps the C entry point into the Go signature of the contract.
// get_version returns a packed uint32 and get_type an int32 on the C side.
func (m *nativeModule) Lookup(symbol string) (any, error) {
	if symbol == SymbolFactory {
		return nil, fmt.Errorf("%w: %s: native modules cannot provide a Go factory", ErrSymbolNotFound, symbol)
	}

	addr, err := purego.Dlsym(m.handle, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSymbolNotFound, symbol, err)
	}

	switch symbol {
	case SymbolName, SymbolAuthor, SymbolDescription:
		var fn func() string
		purego.RegisterFunc(&fn, addr)
		return fn, nil
	case SymbolVersion:
		var fn func() uint32
		purego.RegisterFunc(&fn, addr)
		return func() version.Version { return version.Unpack(fn()) }, nil
	case SymbolType:
		var fn func() int32
		purego.RegisterFunc(&fn, addr)
		return func() backend.Type { return backend.Type(fn()) }, nil
	default:
		return nil, fmt.Errorf("%w: %s is not part of the module contract", ErrSymbolNotFound, symbol)
	}
}

func (m *nativeModule) Close() error {
	if m.handle == 0 {
		return nil
	}
	err := purego.Dlclose(m.handle)
	m.handle = 0
	return err
}
