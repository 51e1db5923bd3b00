package window

import (
	"context"
	"sync"

	"github.com/specialistvlad/kiln/internal/ctxlog"
)

// Null is the built-in inert window backend. It creates no window, its
// frame hooks do nothing and it stays Active forever.
type Null struct {
	ctx  context.Context
	warn sync.Once
	cfg  Config
}

// NewNull returns a Null backend logging through ctx.
func NewNull(ctx context.Context) *Null {
	return &Null{ctx: ctx}
}

// NullFactory is the Factory of the Null backend.
func NullFactory(ctx context.Context) Backend {
	return NewNull(ctx)
}

// Init records cfg and warns, once, that no real window exists.
func (n *Null) Init(cfg Config) error {
	n.cfg = cfg
	n.warn.Do(func() {
		ctxlog.FromContext(n.ctx).Warn("The fallback window backend is in use. The application will keep running, but no window will be shown.", "title", cfg.Title)
	})
	return nil
}

func (n *Null) State() State { return Active }

func (n *Null) OnPreRender() {}

func (n *Null) OnRender() {}

func (n *Null) OnPostRender() {}

func (n *Null) PlatformDisplay() (uintptr, error) { return 0, ErrNotSupported }

func (n *Null) PlatformWindow() (uintptr, error) { return 0, ErrNotSupported }

func (n *Null) Release() error { return nil }

// Config returns the configuration passed to Init.
func (n *Null) Config() Config { return n.cfg }
