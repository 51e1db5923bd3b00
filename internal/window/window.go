package window

import (
	"context"
	"errors"
)

// ErrNotSupported is returned by backends that cannot expose a native handle.
var ErrNotSupported = errors.New("not supported by this window backend")

// State is the lifecycle state of a window.
type State int

const (
	// Active - the default, focused state.
	Active State = iota
	// Inactive - open but not focused.
	Inactive
	// Minimized - iconified.
	Minimized
	// Maximized - occupying the whole work area.
	Maximized
	// Closed - terminal; the window never leaves this state.
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case Minimized:
		return "minimized"
	case Maximized:
		return "maximized"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Transition returns the state a window moves to when the platform reports
// next. Closed is absorbing: once closed, every report is ignored.
func Transition(current, next State) State {
	if current == Closed {
		return Closed
	}
	return next
}

// Config is the persisted window configuration.
type Config struct {
	Title      string `hcl:"title,optional"`
	Width      int    `hcl:"width,optional"`
	Height     int    `hcl:"height,optional"`
	X          int    `hcl:"x,optional"`
	Y          int    `hcl:"y,optional"`
	Fullscreen bool   `hcl:"fullscreen,optional"`
	Resizable  bool   `hcl:"resizable,optional"`
}

// DefaultConfig returns the settings used when no window.cfg exists.
func DefaultConfig() Config {
	return Config{
		Title:     "Untitled Window",
		Width:     1024,
		Height:    768,
		Resizable: true,
	}
}

// Backend is the window capability.
type Backend interface {
	// Init establishes the window from cfg.
	Init(cfg Config) error
	// State reports the current window state.
	State() State
	// OnPreRender drains pending platform events and updates State.
	OnPreRender()
	// OnRender is called once per frame after OnPreRender.
	OnRender()
	// OnPostRender is called once per frame after OnRender.
	OnPostRender()
	// PlatformDisplay returns the native display handle.
	PlatformDisplay() (uintptr, error)
	// PlatformWindow returns the native window handle.
	PlatformWindow() (uintptr, error)
	// Release destroys the window. The backend is unusable afterwards.
	Release() error
}

// Factory produces a fresh window backend. The context carries the logger.
type Factory func(ctx context.Context) Backend
