package registry

import "errors"

var (
	// ErrIncompleteModule is returned when a module misses or mistypes an
	// entry point of the contract.
	ErrIncompleteModule = errors.New("incomplete backend module")

	// ErrUnknownModule is returned for a module path that is not catalogued.
	ErrUnknownModule = errors.New("backend module not catalogued")

	// ErrNoFactory is returned when a descriptor has no window factory,
	// for example the Fallback sentinel or a non-window backend.
	ErrNoFactory = errors.New("backend has no window factory")

	// ErrModuleDisabled is returned when a disabled backend is requested.
	ErrModuleDisabled = errors.New("backend module is disabled")
)
