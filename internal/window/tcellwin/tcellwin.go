// Package tcellwin is a window backend that renders into a terminal using
// tcell. The terminal is the window: Esc or Ctrl-C closes it, and losing
// terminal focus makes it inactive.
package tcellwin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/specialistvlad/kiln/internal/ctxlog"
	"github.com/specialistvlad/kiln/internal/window"
)

// Name is the backend name reported to the registry.
const Name = "Terminal"

// Window implements window.Backend on a tcell screen.
type Window struct {
	logger    *slog.Logger
	newScreen func() (tcell.Screen, error)

	screen tcell.Screen
	cfg    window.Config
	state  window.State
	frames uint64
}

var _ window.Backend = (*Window)(nil)

// New creates a Window on the process terminal.
func New(ctx context.Context) *Window {
	return NewWithScreen(ctx, tcell.NewScreen)
}

// NewWithScreen creates a Window whose screen is produced by newScreen on
// Init.
func NewWithScreen(ctx context.Context, newScreen func() (tcell.Screen, error)) *Window {
	return &Window{
		logger:    ctxlog.FromContext(ctx).With("backend", Name),
		newScreen: newScreen,
		state:     window.Active,
	}
}

// Factory is the window.Factory of this backend.
func Factory(ctx context.Context) window.Backend {
	return New(ctx)
}

func (w *Window) Init(cfg window.Config) error {
	w.cfg = cfg
	if w.screen != nil {
		w.logger.Debug("Terminal already initialized, configuration updated.", "title", cfg.Title)
		return nil
	}

	screen, err := w.newScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	screen.EnableFocus()
	screen.HideCursor()
	screen.Clear()

	w.screen = screen
	width, height := screen.Size()
	w.logger.Info("Terminal window initialized.", "title", cfg.Title, "cols", width, "rows", height)
	return nil
}

func (w *Window) State() window.State {
	return w.state
}

// OnPreRender drains pending terminal events without blocking and applies
// them to the window state.
func (w *Window) OnPreRender() {
	if w.screen == nil {
		return
	}
	for w.screen.HasPendingEvent() {
		w.handle(w.screen.PollEvent())
	}
}

func (w *Window) handle(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			w.setState(window.Closed)
		}
	case *tcell.EventFocus:
		if e.Focused {
			w.setState(window.Active)
		} else {
			w.setState(window.Inactive)
		}
	case *tcell.EventResize:
		w.screen.Sync()
	}
}

func (w *Window) setState(next window.State) {
	prev := w.state
	w.state = window.Transition(prev, next)
	if w.state != prev {
		w.logger.Debug("Window state changed.", "from", prev.String(), "to", w.state.String())
	}
}

func (w *Window) OnRender() {
	if w.screen == nil {
		return
	}
	w.frames++
	w.screen.Clear()

	title := tcell.StyleDefault.Bold(true)
	plain := tcell.StyleDefault
	if w.state == window.Inactive {
		title = title.Dim(true)
		plain = plain.Dim(true)
	}

	w.drawText(0, 0, title, w.cfg.Title)
	w.drawText(0, 1, plain, fmt.Sprintf("frame %d  %s", w.frames, w.state))
	_, rows := w.screen.Size()
	w.drawText(0, rows-1, plain, "Esc to close")
}

func (w *Window) drawText(x, y int, style tcell.Style, text string) {
	cols, rows := w.screen.Size()
	if y < 0 || y >= rows {
		return
	}
	for _, r := range text {
		if x >= cols {
			return
		}
		w.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (w *Window) OnPostRender() {
	if w.screen == nil {
		return
	}
	w.screen.Show()
}

// Frames returns the number of rendered frames.
func (w *Window) Frames() uint64 {
	return w.frames
}

func (w *Window) PlatformDisplay() (uintptr, error) {
	return 0, window.ErrNotSupported
}

func (w *Window) PlatformWindow() (uintptr, error) {
	return 0, window.ErrNotSupported
}

// Release restores the terminal. It is safe to call more than once.
func (w *Window) Release() error {
	if w.screen == nil {
		return nil
	}
	w.screen.Fini()
	w.screen = nil
	w.logger.Debug("Terminal window released.", "frames", w.frames)
	return nil
}
