package app

import (
	"context"

	"github.com/specialistvlad/kiln/internal/config"
	"github.com/specialistvlad/kiln/internal/ctxlog"
	"github.com/specialistvlad/kiln/internal/editorlink"
	"github.com/specialistvlad/kiln/internal/window"
)

// Run drives the main loop until an exit is requested, either through Exit,
// the window closing, or ctx being cancelled. It returns nil after a normal
// stop; the App stays initialized until Exit is called again and cannot be
// run a second time.
func (a *App) Run(ctx context.Context) error {
	if Instance() != a {
		return ErrNotInitialized
	}
	if a.Phase() == Stopped {
		return ErrStopped
	}
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)

	a.exitAsked.Store(false)
	a.phase.Store(int32(Running))
	logger.Info("Entering main loop.", "window_backend", a.active.Name)

	for {
		if !a.exitAsked.Load() && ctx.Err() != nil {
			logger.Info("Context cancelled, requesting exit.", "cause", context.Cause(ctx))
			a.Exit()
		}
		if a.exitAsked.Load() {
			break
		}
		a.frame(ctx)
	}

	a.running.Store(false)
	a.phase.Store(int32(Stopped))
	logger.Info("Main loop stopped.", "frames", a.frames)
	a.publisher.Publish(editorlink.EventStop, editorlink.Payload{"frames": a.frames})
	return nil
}

// frame runs one iteration of the window backend. Only the pre-render hook
// may move the window to Closed; when it does the rest of the frame is
// skipped.
func (a *App) frame(ctx context.Context) {
	a.dispatching.Store(true)
	defer a.dispatching.Store(false)
	b := a.window

	b.OnPreRender()
	state := b.State()
	if state != a.lastState {
		ctxlog.FromContext(ctx).Debug("Window state changed.", "from", a.lastState.String(), "to", state.String())
		a.publisher.Publish(editorlink.EventWindowState, editorlink.Payload{"state": state.String()})
		a.lastState = state
	}
	if state == window.Closed {
		ctxlog.FromContext(ctx).Info("Window closed, requesting exit.")
		a.Exit()
		return
	}

	b.OnRender()
	b.OnPostRender()
	a.frames++

	if a.frameLimit > 0 && a.frames >= a.frameLimit {
		ctxlog.FromContext(ctx).Info("Frame limit reached, requesting exit.", "frames", a.frames)
		a.Exit()
	}
}

// Exit is two-phase. While the loop runs it only requests a stop, which
// takes effect at the top of the next iteration. Otherwise it tears the
// engine down and terminates the process with status 0. After teardown it
// does nothing.
func (a *App) Exit() {
	if a.running.Load() {
		if a.exitAsked.CompareAndSwap(false, true) {
			a.phase.Store(int32(StopRequested))
			a.logger.Info("Exit requested, stopping after this frame.")
		}
		return
	}
	if !a.teardown() {
		return
	}
	a.terminate(0)
}

// teardown releases everything in dependency order and reports whether it
// did anything.
func (a *App) teardown() bool {
	a.teardownMu.Lock()
	defer a.teardownMu.Unlock()

	instanceMu.Lock()
	if instance != a {
		instanceMu.Unlock()
		return false
	}
	instance = nil
	instanceMu.Unlock()

	ctx := a.ctx
	a.logger.Info("Tearing down.")

	if err := a.window.Release(); err != nil {
		a.logger.Warn("Releasing window backend failed.", "error", err)
	}
	if err := a.registry.Close(); err != nil {
		a.logger.Warn("Closing backend modules failed.", "error", err)
	}
	if err := a.store.Save(ctx, config.BackendName, a.backendCfg); err != nil {
		a.logger.Warn("Backend config could not be saved.", "error", err)
	}

	a.publisher.Publish(editorlink.EventTeardown, editorlink.Payload{"instance": a.instanceID.String()})
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("Closing editor link failed.", "error", err)
	}

	a.phase.Store(int32(Terminated))
	a.logger.Info("Teardown complete.")
	return true
}
