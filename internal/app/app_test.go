package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/dirs"
	"github.com/specialistvlad/kiln/internal/editorlink"
	"github.com/specialistvlad/kiln/internal/resolver"
	"github.com/specialistvlad/kiln/internal/testutil"
	"github.com/specialistvlad/kiln/internal/version"
	"github.com/specialistvlad/kiln/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FatalWhenRequiredDirsMissing(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)
	require.NoError(t, os.RemoveAll(filepath.Join(env.cfg.Root, "res")))
	require.NoError(t, os.RemoveAll(filepath.Join(env.cfg.Root, "config")))

	// --- Act ---
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		env.init(t)
	}()

	// --- Assert ---
	fatal, ok := recovered.(*FatalError)
	require.True(t, ok, "expected *FatalError, got %T", recovered)
	var missing *dirs.MissingError
	require.True(t, errors.As(fatal, &missing))
	assert.Contains(t, missing.Missing, dirs.Resource)
	assert.Contains(t, missing.Missing, dirs.Config)
	assert.False(t, IsInitialized())
}

func TestInit_FallsBackToNullWindow(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)

	// --- Act ---
	a := env.init(t)

	// --- Assert ---
	assert.True(t, a.ActiveBackend().IsFallback())
	assert.IsType(t, &window.Null{}, a.WindowBackend())
	assert.Equal(t, Initialized, a.Phase())
	assert.Same(t, a, Instance())
	assert.FileExists(t, env.persistentConfig("backend"))
	assert.FileExists(t, env.persistentConfig("window"))
	assert.Equal(t, []string{editorlink.EventInit}, env.publisher.Events())
	assert.Contains(t, env.logs.String(), "No backend modules found.")
}

func TestInit_SecondCallReturnsExistingInstance(t *testing.T) {
	env := newTestEnv(t)

	first := env.init(t)
	second := Init(Config{Identity: Identity{Name: "Other", Developer: "Else"}})

	assert.Same(t, first, second)
	assert.Equal(t, "Sandbox", second.Identity().Name)
}

func TestInit_ActivatesConfiguredWindowBackend(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)
	first, second := testutil.NewFakeWindow(), testutil.NewFakeWindow()
	env.addModule(t, "a_first", testutil.Symbols("First", backend.Window, version.New(1, 0, 0), first.Factory()))
	env.addModule(t, "b_second", testutil.Symbols("Second", backend.Window, version.New(2, 0, 0), second.Factory()))
	env.writeConfig(t, "backend", "defaults = { window = \"Second\" }\n")
	env.writeConfig(t, "window", "title = \"${app.name} sandbox\"\nwidth = 320\n")

	// --- Act ---
	a := env.init(t)

	// --- Assert ---
	assert.Equal(t, "Second", a.ActiveBackend().Name)
	assert.Same(t, second, a.WindowBackend())
	assert.Equal(t, window.Config{Title: "Sandbox sandbox", Width: 320, Height: 768, Resizable: true}, second.Config())

	inits, _, _, _, _ := first.Counts()
	assert.Zero(t, inits)

	d, ok := a.Registry().Lookup(backend.Window, "Second")
	require.True(t, ok)
	assert.Equal(t, backend.Active, d.State)
	assert.Contains(t, env.publisher.Events(), editorlink.EventBackendSelected)
}

func TestInit_FailingBackendIsDisabled(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)
	broken := testutil.NewFakeWindow()
	broken.InitErr = errors.New("no display")
	env.addModule(t, "broken", testutil.Symbols("Broken", backend.Window, version.New(1, 0, 0), broken.Factory()))

	// --- Act ---
	a := env.init(t)

	// --- Assert ---
	assert.True(t, a.ActiveBackend().IsFallback())
	assert.IsType(t, &window.Null{}, a.WindowBackend())
	_, _, _, _, released := broken.Counts()
	assert.Equal(t, 1, released)
	assert.Empty(t, a.Registry().List(backend.Window))
}

func TestRun_TwoPhaseExit(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)
	fake := testutil.NewFakeWindow()
	env.addModule(t, "term", testutil.Symbols("Term", backend.Window, version.New(1, 0, 0), fake.Factory()))
	a := env.init(t)
	fake.PostRender = func(w *testutil.FakeWindow) {
		if _, _, render, _, _ := w.Counts(); render == 3 {
			a.Exit()
		}
	}

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert: first phase only stops the loop ---
	require.NoError(t, err)
	assert.Equal(t, uint64(3), a.Frames())
	assert.Equal(t, Stopped, a.Phase())
	assert.True(t, IsInitialized())
	assert.Empty(t, env.exitCodes)
	_, _, _, _, released := fake.Counts()
	assert.Zero(t, released)

	// --- Act: second phase tears down ---
	require.NoError(t, os.Remove(env.persistentConfig("backend")))
	a.Exit()

	// --- Assert ---
	assert.Equal(t, []int{0}, env.exitCodes)
	assert.False(t, IsInitialized())
	assert.Equal(t, Terminated, a.Phase())
	_, _, _, _, released = fake.Counts()
	assert.Equal(t, 1, released)
	assert.FileExists(t, env.persistentConfig("backend"), "backend config is flushed on teardown")
	assert.True(t, env.publisher.closed)
	assert.ErrorIs(t, a.Run(context.Background()), ErrNotInitialized)

	a.Exit()
	assert.Equal(t, []int{0}, env.exitCodes, "exit after teardown is a no-op")
}

func TestRun_ClosedInPreRenderSkipsRestOfFrame(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)
	fake := testutil.NewFakeWindow()
	fake.PreRender = func(w *testutil.FakeWindow) {
		if _, pre, _, _, _ := w.Counts(); pre == 2 {
			w.SetState(window.Closed)
		}
	}
	env.addModule(t, "term", testutil.Symbols("Term", backend.Window, version.New(1, 0, 0), fake.Factory()))
	a := env.init(t)

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	_, pre, render, post, _ := fake.Counts()
	assert.Equal(t, 2, pre)
	assert.Equal(t, 1, render)
	assert.Equal(t, 1, post)
	assert.Equal(t, window.Closed, fake.State())
	assert.Contains(t, env.publisher.Events(), editorlink.EventWindowState)
	assert.Contains(t, env.publisher.Events(), editorlink.EventStop)
	assert.Empty(t, env.exitCodes)
}

func TestRun_ContextCancellationStopsLoop(t *testing.T) {
	env := newTestEnv(t)
	fake := testutil.NewFakeWindow()
	env.addModule(t, "term", testutil.Symbols("Term", backend.Window, version.New(1, 0, 0), fake.Factory()))
	a := env.init(t)

	ctx, cancel := context.WithCancel(context.Background())
	fake.Render = func(*testutil.FakeWindow) { cancel() }

	require.NoError(t, a.Run(ctx))
	assert.Equal(t, uint64(1), a.Frames())
	assert.Equal(t, Stopped, a.Phase())
}

func TestRun_RejectsReentry(t *testing.T) {
	env := newTestEnv(t)
	fake := testutil.NewFakeWindow()
	env.addModule(t, "term", testutil.Symbols("Term", backend.Window, version.New(1, 0, 0), fake.Factory()))
	a := env.init(t)

	var nested error
	fake.Render = func(*testutil.FakeWindow) {
		nested = a.Run(context.Background())
		a.Exit()
	}

	require.NoError(t, a.Run(context.Background()))
	assert.ErrorIs(t, nested, ErrAlreadyRunning)
}

func TestRegisterBackend(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)
	term := testutil.NewFakeWindow()
	env.addModule(t, "term", testutil.Symbols("Term", backend.Window, version.New(1, 0, 0), term.Factory()))
	a := env.init(t)
	require.Equal(t, "Term", a.ActiveBackend().Name)
	good := testutil.NewFakeWindow()
	bad := testutil.NewFakeWindow()
	bad.InitErr = errors.New("boom")

	// --- Act & Assert ---
	err := a.RegisterBackend(backend.Audio, good.Factory())
	assert.ErrorIs(t, err, ErrNoBackendSlot)

	require.NoError(t, a.RegisterBackend(backend.Window, good.Factory()))
	assert.Same(t, good, a.WindowBackend())
	assert.Equal(t, "unregistered", a.ActiveBackend().Name)

	_, _, _, _, termReleased := term.Counts()
	assert.Equal(t, 1, termReleased)
	d, ok := a.Registry().Lookup(backend.Window, "Term")
	require.True(t, ok)
	assert.Equal(t, backend.Unloaded, d.State, "replaced module is no longer active")

	err = a.RegisterBackend(backend.Window, bad.Factory())
	require.Error(t, err)
	assert.IsType(t, &window.Null{}, a.WindowBackend())
	assert.True(t, a.ActiveBackend().IsFallback())

	_, _, _, _, goodReleased := good.Counts()
	_, _, _, _, badReleased := bad.Counts()
	assert.Equal(t, 1, goodReleased)
	assert.Equal(t, 1, badReleased)
}

func TestRegisterBackend_RefusedDuringFrame(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)
	term := testutil.NewFakeWindow()
	env.addModule(t, "term", testutil.Symbols("Term", backend.Window, version.New(1, 0, 0), term.Factory()))
	a := env.init(t)
	other := testutil.NewFakeWindow()

	var registerErr, selectErr error
	term.Render = func(*testutil.FakeWindow) {
		registerErr = a.RegisterBackend(backend.Window, other.Factory())
		selectErr = a.SelectBackend(backend.Window, "Term")
		a.Exit()
	}

	// --- Act ---
	require.NoError(t, a.Run(context.Background()))

	// --- Assert ---
	assert.ErrorIs(t, registerErr, ErrInFrame)
	assert.ErrorIs(t, selectErr, ErrInFrame)
	assert.Same(t, term, a.WindowBackend())
	_, _, render, post, released := term.Counts()
	assert.Equal(t, 1, render)
	assert.Equal(t, 1, post, "the frame finishes on the backend it started with")
	assert.Zero(t, released)
	inits, _, _, _, _ := other.Counts()
	assert.Zero(t, inits)

	// Outside a frame the swap goes through.
	require.NoError(t, a.RegisterBackend(backend.Window, other.Factory()))
	assert.Same(t, other, a.WindowBackend())
}

func TestSelectBackend_SwitchesWindowBackend(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)
	first, second := testutil.NewFakeWindow(), testutil.NewFakeWindow()
	env.addModule(t, "a_first", testutil.Symbols("First", backend.Window, version.New(1, 0, 0), first.Factory()))
	env.addModule(t, "b_second", testutil.Symbols("Second", backend.Window, version.New(1, 0, 0), second.Factory()))
	a := env.init(t)
	require.Equal(t, "First", a.ActiveBackend().Name)

	// --- Act ---
	err := a.SelectBackend(backend.Window, "Second")

	// --- Assert ---
	require.NoError(t, err)
	assert.Same(t, second, a.WindowBackend())
	_, _, _, _, released := first.Counts()
	assert.Equal(t, 1, released)

	prev, ok := a.Registry().Lookup(backend.Window, "First")
	require.True(t, ok)
	assert.Equal(t, backend.Unloaded, prev.State)
	assert.Equal(t, "Second", a.Resolver().Config().DefaultFor(backend.Window))

	assert.ErrorIs(t, a.SelectBackend(backend.Window, "Missing"), resolver.ErrUnknownBackend)
	assert.Same(t, second, a.WindowBackend())
}

func TestRun_FrameLimit(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.FrameLimit = 5
	a := env.init(t)

	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, uint64(5), a.Frames())
}

func TestRun_StoppedCannotRunAgain(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.FrameLimit = 2
	a := env.init(t)
	require.NoError(t, a.Run(context.Background()))

	err := a.Run(context.Background())

	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, Stopped, a.Phase())
	assert.Equal(t, uint64(2), a.Frames())
	assert.Empty(t, env.exitCodes)
}

func TestInit_MissingPluginDirIsCreatedAndFallsBack(t *testing.T) {
	// --- Arrange ---
	env := newTestEnv(t)
	env.writeConfig(t, "backend", "plugin_dir = \"modules/window\"\n")
	pluginDir := filepath.Join(env.cfg.Root, "modules", "window")
	require.NoDirExists(t, pluginDir)

	// --- Act ---
	a := env.init(t)

	// --- Assert ---
	assert.Equal(t, pluginDir, a.PluginDir())
	assert.DirExists(t, pluginDir)
	assert.Zero(t, a.Registry().Catalog().Len())
	assert.True(t, a.ActiveBackend().IsFallback())
	assert.True(t, a.Resolver().Resolve(a.Context(), backend.Window).IsFallback())
	assert.IsType(t, &window.Null{}, a.WindowBackend())
}
