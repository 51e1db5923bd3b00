package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/config"
	"github.com/specialistvlad/kiln/internal/ctxlog"
	"github.com/specialistvlad/kiln/internal/dirs"
	"github.com/specialistvlad/kiln/internal/editorlink"
	"github.com/specialistvlad/kiln/internal/fsutil"
	"github.com/specialistvlad/kiln/internal/hclstore"
	"github.com/specialistvlad/kiln/internal/registry"
	"github.com/specialistvlad/kiln/internal/resolver"
	"github.com/specialistvlad/kiln/internal/window"
)

var (
	// ErrNotInitialized is returned by Run on an App that was torn down.
	ErrNotInitialized = errors.New("application not initialized")

	// ErrAlreadyRunning is returned by Run while the loop is running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrStopped is returned by Run after the loop has stopped. The only way
	// forward from there is Exit.
	ErrStopped = errors.New("application stopped")

	// ErrInFrame is returned by backend mutations attempted from inside a
	// frame hook.
	ErrInFrame = errors.New("backend cannot change during frame dispatch")

	// ErrNoBackendSlot is returned by RegisterBackend for capabilities the
	// core cannot host yet.
	ErrNoBackendSlot = errors.New("no backend slot for capability")
)

// FatalError is the panic value of Init when the engine cannot start.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "fatal: " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

var (
	instanceMu sync.Mutex
	instance   *App
)

// App encapsulates the engine's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	logger     *slog.Logger
	identity   Identity
	instanceID uuid.UUID
	terminate  func(code int)
	frameLimit uint64

	dirs      *dirs.Resolver
	store     *hclstore.Store
	registry  *registry.Registry
	resolver  *resolver.Resolver
	publisher editorlink.Publisher

	backendCfg config.Backend
	windowCfg  window.Config

	window      window.Backend
	active      backend.Descriptor
	lastState   window.State
	frames      uint64
	phase       atomic.Int32
	running     atomic.Bool
	exitAsked   atomic.Bool
	dispatching atomic.Bool
	teardownMu  sync.Mutex
}

// Init creates the process-wide App. A second call returns the existing
// instance unchanged. Init panics with *FatalError when the directory
// layout is unusable; every other problem is logged and worked around.
func Init(cfg Config, opts ...Option) *App {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		instance.logger.Debug("Application already initialized, returning existing instance.")
		return instance
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = newLogger(cfg.LogLevel, cfg.LogFormat, o.out)
	}
	a := &App{
		logger:     logger,
		identity:   cfg.Identity,
		instanceID: uuid.New(),
		terminate:  o.terminate,
		frameLimit: cfg.FrameLimit,
	}
	a.logger = logger.With("instance", a.instanceID.String())
	a.ctx = ctxlog.WithLogger(context.Background(), a.logger)
	ctx := a.ctx
	a.logger.Debug("Logger configured successfully.")

	if err := cfg.Validate(); err != nil {
		panic(&FatalError{Err: err})
	}

	d, err := dirs.New(cfg.Developer, cfg.Name, dirs.WithRoot(cfg.Root), dirs.WithHome(cfg.Home))
	if err != nil {
		panic(&FatalError{Err: err})
	}
	if err := d.Prepare(ctx); err != nil {
		a.logger.Error("Directory layout is unusable, cannot start.", "error", err)
		panic(&FatalError{Err: err})
	}
	a.dirs = d

	a.openConfig(ctx)
	a.openEditorLink(ctx, o.publisher)

	a.registry = registry.New(o.opener)
	if _, err := a.registry.Scan(ctx, a.PluginDir(), fsutil.ModuleExt()); err != nil {
		a.logger.Warn("Backend scan failed, continuing without modules.", "error", err)
	}
	a.resolver = resolver.New(a.registry, &a.backendCfg)

	if selected := a.resolver.Resolve(ctx, backend.Window); !selected.IsFallback() {
		a.activate(ctx, selected)
	}
	if a.window == nil {
		a.installFallback(ctx)
	}
	a.lastState = a.window.State()

	a.phase.Store(int32(Initialized))
	instance = a

	a.logger.Info("Application initialized.",
		"name", a.identity.Name,
		"developer", a.identity.Developer,
		"version", a.identity.Version.String(),
		"window_backend", a.active.Name,
	)
	a.publisher.Publish(editorlink.EventInit, editorlink.Payload{
		"instance": a.instanceID.String(),
		"name":     a.identity.Name,
		"version":  a.identity.Version.String(),
	})
	return a
}

func (a *App) openConfig(ctx context.Context) {
	a.store = hclstore.New(
		a.dirs.Path(dirs.PersistentConfig),
		a.dirs.Path(dirs.Config),
		hclstore.WithApp(a.identity.Name, a.identity.Developer, a.identity.Version.String()),
	)
	if _, err := a.store.Seed(ctx, filepath.Join(a.dirs.Path(dirs.Resource), hclstore.PackageName)); err != nil {
		a.logger.Warn("Config package could not be unpacked.", "error", err)
	}

	rel, err := filepath.Rel(a.dirs.Root(), a.dirs.Path(dirs.Plugin))
	if err != nil {
		rel = a.dirs.Path(dirs.Plugin)
	}
	a.backendCfg, _ = config.LoadOrCreate(ctx, a.store, config.BackendName, config.DefaultBackend(filepath.ToSlash(rel)))
	a.windowCfg, _ = config.LoadOrCreate(ctx, a.store, config.WindowName, window.DefaultConfig())
}

func (a *App) openEditorLink(ctx context.Context, p editorlink.Publisher) {
	if p != nil {
		a.publisher = p
		return
	}
	linkCfg, _ := config.LoadOrCreate(ctx, a.store, config.EditorLinkName, config.DefaultEditorLink())
	p, err := editorlink.Connect(ctx, linkCfg)
	if err != nil {
		a.logger.Warn("Editor link unavailable.", "error", err)
	}
	a.publisher = p
}

// PluginDir returns the scanned plugin directory: the configured one
// resolved against the installation root.
func (a *App) PluginDir() string {
	dir := a.backendCfg.PluginDir
	if dir == "" {
		return a.dirs.Path(dirs.Plugin)
	}
	dir = filepath.FromSlash(dir)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(a.dirs.Root(), dir)
	}
	return dir
}

// Instance returns the current App, or nil before Init and after teardown.
func Instance() *App {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	return instance
}

// IsInitialized reports whether an App exists.
func IsInitialized() bool {
	return Instance() != nil
}

func (a *App) Identity() Identity            { return a.identity }
func (a *App) InstanceID() uuid.UUID         { return a.instanceID }
func (a *App) Phase() Phase                  { return Phase(a.phase.Load()) }
func (a *App) Frames() uint64                { return a.frames }
func (a *App) Registry() *registry.Registry  { return a.registry }
func (a *App) Resolver() *resolver.Resolver  { return a.resolver }
func (a *App) WindowBackend() window.Backend { return a.window }
func (a *App) WindowConfig() window.Config   { return a.windowCfg }

// ActiveBackend describes the installed window backend; the Fallback
// descriptor when the null backend is installed.
func (a *App) ActiveBackend() backend.Descriptor { return a.active }

// Context returns a context carrying the App's logger.
func (a *App) Context() context.Context { return a.ctx }

// Dir returns the path of a directory role.
func (a *App) Dir(role dirs.Role) string { return a.dirs.Path(role) }

func (a *App) String() string {
	return fmt.Sprintf("%s/%s %s (%s)", a.identity.Developer, a.identity.Name, a.identity.Version, a.Phase())
}
