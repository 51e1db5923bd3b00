package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/kiln/internal/window"
)

// FakeWindow is a scriptable window.Backend that records what the engine
// asked of it.
type FakeWindow struct {
	mu sync.Mutex

	// InitErr is returned from Init when set.
	InitErr error
	// PreRender, Render and PostRender run inside the matching hook.
	PreRender  func(w *FakeWindow)
	Render     func(w *FakeWindow)
	PostRender func(w *FakeWindow)

	state    window.State
	cfg      window.Config
	inits    int
	frames   int
	pre      int
	post     int
	released int
}

// NewFakeWindow creates a FakeWindow in the Active state.
func NewFakeWindow() *FakeWindow {
	return &FakeWindow{state: window.Active}
}

// Factory returns a window.Factory that always yields w.
func (w *FakeWindow) Factory() window.Factory {
	return func(context.Context) window.Backend { return w }
}

func (w *FakeWindow) Init(cfg window.Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inits++
	w.cfg = cfg
	return w.InitErr
}

func (w *FakeWindow) State() window.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SetState moves the window to s following the window state rules.
func (w *FakeWindow) SetState(s window.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = window.Transition(w.state, s)
}

func (w *FakeWindow) OnPreRender() {
	w.mu.Lock()
	w.pre++
	fn := w.PreRender
	w.mu.Unlock()
	if fn != nil {
		fn(w)
	}
}

func (w *FakeWindow) OnRender() {
	w.mu.Lock()
	w.frames++
	fn := w.Render
	w.mu.Unlock()
	if fn != nil {
		fn(w)
	}
}

func (w *FakeWindow) OnPostRender() {
	w.mu.Lock()
	w.post++
	fn := w.PostRender
	w.mu.Unlock()
	if fn != nil {
		fn(w)
	}
}

func (w *FakeWindow) PlatformDisplay() (uintptr, error) {
	return 0, window.ErrNotSupported
}

func (w *FakeWindow) PlatformWindow() (uintptr, error) {
	return 0, window.ErrNotSupported
}

func (w *FakeWindow) Release() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.released++
	return nil
}

// Counts reports how often each hook ran.
func (w *FakeWindow) Counts() (inits, pre, render, post, released int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inits, w.pre, w.frames, w.post, w.released
}

// Config returns the configuration passed to the last Init.
func (w *FakeWindow) Config() window.Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}
