package registry

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/modload"
	"github.com/specialistvlad/kiln/internal/version"
	"github.com/specialistvlad/kiln/internal/window"
)

// describe resolves the whole entry point contract of mod and invokes it.
// Either every entry point resolves and a complete descriptor is returned,
// or an ErrIncompleteModule error lists every problem found.
func describe(mod modload.Module) (d backend.Descriptor, factory window.Factory, err error) {
	var problems []string
	lookup := func(symbol string) any {
		sym, err := mod.Lookup(symbol)
		if err != nil {
			problems = append(problems, fmt.Sprintf("missing %s", symbol))
			return nil
		}
		return sym
	}

	getName := stringFunc(lookup(modload.SymbolName), modload.SymbolName, &problems)
	getAuthor := stringFunc(lookup(modload.SymbolAuthor), modload.SymbolAuthor, &problems)
	getDescription := stringFunc(lookup(modload.SymbolDescription), modload.SymbolDescription, &problems)
	getVersion := versionFunc(lookup(modload.SymbolVersion), &problems)
	getType := typeFunc(lookup(modload.SymbolType), &problems)

	if len(problems) > 0 {
		return backend.Descriptor{}, nil, incomplete(problems)
	}

	// A module that panics while describing itself is treated like one
	// missing its entry points.
	defer func() {
		if rec := recover(); rec != nil {
			d, factory = backend.Descriptor{}, nil
			err = fmt.Errorf("%w: entry point panicked: %v", ErrIncompleteModule, rec)
		}
	}()

	d = backend.Descriptor{
		Name:        getName(),
		Author:      getAuthor(),
		Description: getDescription(),
		Version:     getVersion(),
		Type:        getType(),
	}

	if d.Name == "" {
		problems = append(problems, fmt.Sprintf("%s returned an empty name", modload.SymbolName))
	}
	if !d.Type.Valid() {
		problems = append(problems, fmt.Sprintf("%s returned unknown capability %d", modload.SymbolType, int32(d.Type)))
	}

	if d.Type == backend.Window {
		switch fn := lookup(modload.SymbolFactory).(type) {
		case nil:
		case func() window.Factory:
			factory = fn()
			if factory == nil {
				problems = append(problems, fmt.Sprintf("%s returned a nil factory", modload.SymbolFactory))
			}
		default:
			problems = append(problems, fmt.Sprintf("%s has type %T", modload.SymbolFactory, fn))
		}
	}

	if len(problems) > 0 {
		return backend.Descriptor{}, nil, incomplete(problems)
	}
	return d, factory, nil
}

func incomplete(problems []string) error {
	return fmt.Errorf("%w: %s", ErrIncompleteModule, strings.Join(problems, "; "))
}

func stringFunc(sym any, symbol string, problems *[]string) func() string {
	switch fn := sym.(type) {
	case nil:
		return nil
	case func() string:
		return fn
	default:
		*problems = append(*problems, fmt.Sprintf("%s has type %T", symbol, sym))
		return nil
	}
}

func versionFunc(sym any, problems *[]string) func() version.Version {
	switch fn := sym.(type) {
	case nil:
		return nil
	case func() version.Version:
		return fn
	case func() string:
		return func() version.Version {
			v, err := version.Parse(fn())
			if err != nil {
				panic(err)
			}
			return v
		}
	default:
		*problems = append(*problems, fmt.Sprintf("%s has type %T", modload.SymbolVersion, sym))
		return nil
	}
}

func typeFunc(sym any, problems *[]string) func() backend.Type {
	switch fn := sym.(type) {
	case nil:
		return nil
	case func() backend.Type:
		return fn
	case func() int32:
		return func() backend.Type { return backend.Type(fn()) }
	default:
		*problems = append(*problems, fmt.Sprintf("%s has type %T", modload.SymbolType, sym))
		return nil
	}
}
