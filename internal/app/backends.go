package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/ctxlog"
	"github.com/specialistvlad/kiln/internal/editorlink"
	"github.com/specialistvlad/kiln/internal/window"
)

// installFallback installs and initializes the null window backend.
func (a *App) installFallback(ctx context.Context) {
	null := window.NewNull(ctx)
	_ = null.Init(a.windowCfg)
	a.window = null
	a.active = backend.Fallback(backend.Window)
}

// activate installs the module backend described by d. On any failure the
// module is disabled and the null backend is installed.
func (a *App) activate(ctx context.Context, d backend.Descriptor) {
	logger := ctxlog.FromContext(ctx).With("backend", d.Name, "type", d.Type.String())

	factory, err := a.registry.Factory(d)
	if err == nil {
		err = a.RegisterBackend(d.Type, factory)
	}
	if err != nil {
		logger.Warn("Backend could not be activated, disabling it.", "error", err)
		if serr := a.registry.SetState(d.ModulePath, backend.Disabled); serr != nil {
			logger.Debug("Disabling backend failed.", "error", serr)
		}
		return
	}

	if err := a.registry.SetState(d.ModulePath, backend.Active); err != nil {
		logger.Debug("Marking backend active failed.", "error", err)
	}
	d.State = backend.Active
	a.active = d
	logger.Info("Backend activated.", "version", d.Version.String())
	a.publisher.Publish(editorlink.EventBackendSelected, editorlink.Payload{
		"type":    d.Type.String(),
		"name":    d.Name,
		"version": d.Version.String(),
	})
}

// RegisterBackend installs the backend built by factory for capability t.
// The currently installed backend is released first and its module, if any,
// is marked Unloaded. When the new backend fails to initialize it is
// released and the null backend is reinstalled; the returned error reports
// the failure. It returns ErrInFrame when called from a frame hook.
func (a *App) RegisterBackend(t backend.Type, factory window.Factory) error {
	if a.dispatching.Load() {
		return ErrInFrame
	}
	if t != backend.Window {
		return fmt.Errorf("%w: %s", ErrNoBackendSlot, t)
	}
	if factory == nil {
		return fmt.Errorf("nil %s backend factory", t)
	}
	ctx := a.ctx

	if a.window != nil {
		if err := a.window.Release(); err != nil {
			a.logger.Warn("Releasing window backend failed.", "error", err)
		}
		if prev := a.active.ModulePath; prev != "" {
			if err := a.registry.SetState(prev, backend.Unloaded); err != nil {
				a.logger.Debug("Marking previous backend unloaded failed.", "error", err)
			}
		}
	}

	b := factory(ctx)
	if b == nil {
		a.installFallback(ctx)
		return fmt.Errorf("%s backend factory returned nil", t)
	}
	if err := b.Init(a.windowCfg); err != nil {
		a.logger.Warn("Window backend failed to initialize, falling back.", "error", err)
		if rerr := b.Release(); rerr != nil {
			a.logger.Debug("Releasing failed window backend failed.", "error", rerr)
		}
		a.installFallback(ctx)
		return fmt.Errorf("failed to initialize %s backend: %w", t, err)
	}

	a.window = b
	a.active = backend.Descriptor{Name: "unregistered", Type: t, State: backend.Active}
	a.lastState = b.State()
	return nil
}

// SelectBackend makes name the default backend for t. For the window
// capability the backend is also activated right away, replacing the
// installed one. Like RegisterBackend it is refused inside a frame hook.
func (a *App) SelectBackend(t backend.Type, name string) error {
	if a.dispatching.Load() {
		return ErrInFrame
	}
	ctx := a.ctx
	if err := a.resolver.SetDefault(ctx, t, name); err != nil {
		return err
	}
	if t != backend.Window || a.active.Name == name {
		return nil
	}

	d := a.resolver.Resolve(ctx, t)
	a.activate(ctx, d)
	if a.window == nil {
		a.installFallback(ctx)
	}
	if a.active.ModulePath != d.ModulePath {
		return fmt.Errorf("backend %q selected but could not be activated", name)
	}
	return nil
}
