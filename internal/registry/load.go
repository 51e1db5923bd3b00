package registry

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/ctxlog"
	"github.com/specialistvlad/kiln/internal/fsutil"
	"github.com/specialistvlad/kiln/internal/modload"
	"github.com/specialistvlad/kiln/internal/window"
)

// Scan rebuilds the catalog from the modules in dir whose name ends with
// ext. A missing dir is created and yields an empty catalog. The returned
// error is only non-nil when dir could neither be read nor created; the
// catalog is valid (possibly empty) in every case.
func (r *Registry) Scan(ctx context.Context, dir, ext string) (*backend.Catalog, error) {
	ctx = ctxlog.Component(ctx, "registry")
	logger := ctxlog.FromContext(ctx)
	logger.Info("Searching for backend modules...", "dir", dir, "ext", ext)

	r.discard()

	created, err := fsutil.EnsureDir(dir)
	if err != nil {
		logger.Error("Backend directory could not be created.", "dir", dir, "error", err)
		return r.catalog, fmt.Errorf("failed to prepare backend directory %s: %w", dir, err)
	}
	if created {
		logger.Warn("Backend directory did not exist and was created.", "dir", dir)
		logger.Info("No backend modules found.")
		return r.catalog, nil
	}

	paths, err := fsutil.FindFilesByExtension(dir, ext)
	if err != nil {
		logger.Error("Failed to read backend directory.", "dir", dir, "error", err)
		return r.catalog, fmt.Errorf("failed to read backend directory %s: %w", dir, err)
	}
	logger.Debug("Found candidate module files.", "files", paths)

	for _, path := range paths {
		r.scanOne(ctx, path)
	}

	if r.catalog.Len() == 0 {
		logger.Info("No backend modules found.")
	} else {
		logger.Info("Backend searching complete.", "backends", r.catalog.Len())
	}
	return r.catalog, nil
}

// scanOne catalogues a single module file or logs why it was skipped.
func (r *Registry) scanOne(ctx context.Context, path string) {
	logger := ctxlog.FromContext(ctx).With("file", filepath.Base(path))
	logger.Debug("Found module file.")

	mod, err := r.opener.Open(path)
	if err != nil {
		logger.Warn("Could not load module, skipping.", "error", err)
		return
	}

	d, factory, err := describe(mod)
	if err != nil {
		logger.Warn("Module does not satisfy the backend contract, skipping.", "error", err)
		closeQuietly(ctx, mod)
		return
	}
	d.ModulePath = path
	d.State = backend.Unloaded

	if err := r.catalog.Add(d); err != nil {
		logger.Warn("Module already catalogued, skipping.", "error", err)
		closeQuietly(ctx, mod)
		return
	}
	r.modules[path] = mod
	if factory != nil {
		r.factories[path] = factory
	}
	logger.Info("Added backend.", "name", d.Name, "type", d.Type.String(), "version", d.Version.String())
}

// discard drops the previous catalog. Modules whose backend is active stay
// open until Close; the rest are closed now.
func (r *Registry) discard() {
	for _, d := range r.catalog.Entries() {
		m, ok := r.modules[d.ModulePath]
		if !ok {
			continue
		}
		if d.State == backend.Active {
			r.retained = append(r.retained, m)
			continue
		}
		_ = m.Close()
	}
	r.catalog = backend.NewCatalog()
	r.modules = make(map[string]modload.Module)
	r.factories = make(map[string]window.Factory)
}

func closeQuietly(ctx context.Context, mod modload.Module) {
	if err := mod.Close(); err != nil {
		ctxlog.FromContext(ctx).Debug("Closing rejected module failed.", "file", mod.Path(), "error", err)
	}
}
