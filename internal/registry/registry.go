package registry

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/modload"
	"github.com/specialistvlad/kiln/internal/window"
)

// Registry holds the catalog of the last scan together with the modules it
// opened and the window factories they provide. It is not safe for
// concurrent use; the engine drives it from its single main goroutine.
type Registry struct {
	opener    modload.Opener
	catalog   *backend.Catalog
	modules   map[string]modload.Module
	factories map[string]window.Factory
	// retained keeps modules of previous scans whose backend was active, so
	// code still running from them stays mapped until Close.
	retained []modload.Module
}

// New creates a Registry that opens modules with opener.
func New(opener modload.Opener) *Registry {
	return &Registry{
		opener:    opener,
		catalog:   backend.NewCatalog(),
		modules:   make(map[string]modload.Module),
		factories: make(map[string]window.Factory),
	}
}

// Catalog returns the catalog of the most recent scan.
func (r *Registry) Catalog() *backend.Catalog {
	return r.catalog
}

// List returns the names of backends of type t that are not Disabled, in
// scan order.
func (r *Registry) List(t backend.Type) []string {
	return r.catalog.Names(t)
}

// Lookup returns the usable backend of type t named name.
func (r *Registry) Lookup(t backend.Type, name string) (backend.Descriptor, bool) {
	return r.catalog.Find(t, name)
}

// SetState changes the state of the backend loaded from modulePath.
func (r *Registry) SetState(modulePath string, s backend.State) error {
	if !r.catalog.SetState(modulePath, s) {
		return fmt.Errorf("%w: %s", ErrUnknownModule, modulePath)
	}
	return nil
}

// Factory returns the window factory of the backend described by d.
func (r *Registry) Factory(d backend.Descriptor) (window.Factory, error) {
	if d.IsFallback() {
		return nil, fmt.Errorf("%w: %s", ErrNoFactory, d.Name)
	}
	current, ok := r.catalog.ByPath(d.ModulePath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, d.ModulePath)
	}
	if current.State == backend.Disabled {
		return nil, fmt.Errorf("%w: %s", ErrModuleDisabled, current.Name)
	}
	f, ok := r.factories[d.ModulePath]
	if !ok {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoFactory, current.Name, current.Type)
	}
	return f, nil
}

// Close releases every module opened by any scan, most recent first.
func (r *Registry) Close() error {
	var errs []error
	for _, d := range reverse(r.catalog.Entries()) {
		if m, ok := r.modules[d.ModulePath]; ok {
			if err := m.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", d.ModulePath, err))
			}
		}
	}
	for i := len(r.retained) - 1; i >= 0; i-- {
		if err := r.retained[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", r.retained[i].Path(), err))
		}
	}

	r.catalog = backend.NewCatalog()
	r.modules = make(map[string]modload.Module)
	r.factories = make(map[string]window.Factory)
	r.retained = nil
	return errors.Join(errs...)
}

func reverse(in []backend.Descriptor) []backend.Descriptor {
	out := make([]backend.Descriptor, len(in))
	for i, d := range in {
		out[len(in)-1-i] = d
	}
	return out
}
