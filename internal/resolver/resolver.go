// Package resolver picks the backend to activate for a capability from the
// catalog and the persisted backend configuration.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/config"
	"github.com/specialistvlad/kiln/internal/ctxlog"
)

// ErrUnknownBackend is returned by SetDefault for a name that is not
// catalogued under the requested capability.
var ErrUnknownBackend = errors.New("backend not present")

// CatalogSource provides the current backend catalog. The registry
// satisfies it; the catalog may be replaced by a rescan between calls.
type CatalogSource interface {
	Catalog() *backend.Catalog
}

// Static adapts a fixed catalog to CatalogSource.
type Static struct{ C *backend.Catalog }

func (s Static) Catalog() *backend.Catalog { return s.C }

// Resolver maps a capability to a concrete backend descriptor.
type Resolver struct {
	src CatalogSource
	cfg *config.Backend
}

// New creates a Resolver over src that reads and writes preferences in cfg.
func New(src CatalogSource, cfg *config.Backend) *Resolver {
	if cfg == nil {
		def := config.DefaultBackend("")
		cfg = &def
	}
	return &Resolver{src: src, cfg: cfg}
}

// Config returns the backend configuration the resolver works on.
func (r *Resolver) Config() *config.Backend {
	return r.cfg
}

// Resolve returns the backend to use for t. It never fails: when nothing of
// type t is catalogued the Fallback descriptor is returned.
func (r *Resolver) Resolve(ctx context.Context, t backend.Type) backend.Descriptor {
	logger := ctxlog.FromContext(ctx).With("type", t.String())
	catalog := r.src.Catalog()
	name := r.cfg.DefaultFor(t)

	if !config.IsAutoSelect(name) {
		if d, ok := catalog.Find(t, name); ok {
			logger.Debug("Configured backend selected.", "name", d.Name)
			return d
		}
		logger.Warn("Configured backend not present, selecting the first available one.", "configured", name)
	}

	if d, ok := catalog.FirstOfType(t); ok {
		logger.Debug("Backend auto-selected.", "name", d.Name)
		return d
	}

	logger.Warn("No backend available, using fallback.")
	return backend.Fallback(t)
}

// SetDefault records name as the preferred backend for t. The configuration
// is left untouched when no such backend is catalogued.
func (r *Resolver) SetDefault(ctx context.Context, t backend.Type, name string) error {
	if _, ok := r.src.Catalog().Find(t, name); !ok {
		ctxlog.FromContext(ctx).Warn("Cannot set default backend, it is not present.", "type", t.String(), "name", name)
		return fmt.Errorf("%w: %s %q", ErrUnknownBackend, t, name)
	}
	r.cfg.SetDefaultFor(t, name)
	return nil
}
