package modload

import (
	"debug/buildinfo"
	"errors"
	"strings"
	"unicode"
)

// Contract entry point names every backend module exports.
const (
	SymbolName        = "get_name"
	SymbolAuthor      = "get_author"
	SymbolDescription = "get_description"
	SymbolVersion     = "get_version"
	SymbolType        = "get_type"
	SymbolFactory     = "get_factory"
)

var (
	// ErrSymbolNotFound is returned by Lookup when a module does not export
	// the requested entry point.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrUnsupported is returned by openers that cannot run on this platform.
	ErrUnsupported = errors.New("dynamic modules are not supported on this platform")
)

// Module is an opened loadable module.
type Module interface {
	// Path returns the file the module was opened from.
	Path() string
	// Lookup resolves a contract entry point. Errors wrap ErrSymbolNotFound
	// when the module does not export it.
	Lookup(symbol string) (any, error)
	// Close releases the module. Symbols must not be used afterwards.
	Close() error
}

// Opener opens a module file.
type Opener interface {
	Open(path string) (Module, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Module, error)

func (f OpenerFunc) Open(path string) (Module, error) { return f(path) }

// ByBuild sends Go plugins to Plugin and every other file to Native, so each
// file is opened by exactly one loader.
type ByBuild struct {
	Plugin Opener
	Native Opener
}

// Open implements Opener.
func (o ByBuild) Open(path string) (Module, error) {
	if IsGoPlugin(path) {
		return o.Plugin.Open(path)
	}
	return o.Native.Open(path)
}

// IsGoPlugin reports whether path is a Go binary built with
// -buildmode=plugin, as recorded in its embedded build information.
func IsGoPlugin(path string) bool {
	info, err := buildinfo.ReadFile(path)
	if err != nil {
		return false
	}
	for _, s := range info.Settings {
		if s.Key == "-buildmode" {
			return s.Value == "plugin"
		}
	}
	return false
}

// Default returns the opener used by the engine.
func Default() Opener {
	return ByBuild{Plugin: GoPlugin{}, Native: Native{}}
}

// goIdentifier maps a contract name to the exported Go identifier a Go
// plugin uses for it: get_name -> GetName.
func goIdentifier(symbol string) string {
	var b strings.Builder
	for _, part := range strings.Split(symbol, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
