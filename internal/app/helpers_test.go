package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/kiln/internal/editorlink"
	"github.com/specialistvlad/kiln/internal/fsutil"
	"github.com/specialistvlad/kiln/internal/testutil"
	"github.com/specialistvlad/kiln/internal/version"
	"github.com/stretchr/testify/require"
)

// recorder is an editorlink.Publisher that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []string
	closed bool
}

func (r *recorder) Publish(event string, _ editorlink.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// testEnv is an installation root and home directory for one App.
type testEnv struct {
	cfg       Config
	opener    *testutil.FakeOpener
	publisher *recorder
	exitCodes []int
	logs      *testutil.SafeBuffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	for _, d := range []string{"res", "bin/plugins", "config"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}

	env := &testEnv{
		cfg: Config{
			Identity: Identity{Name: "Sandbox", Developer: "Kiln", Version: version.New(1, 0, 0)},
			Root:     root,
			Home:     t.TempDir(),
			LogLevel: "debug",
		},
		opener:    testutil.NewFakeOpener(),
		publisher: &recorder{},
		logs:      &testutil.SafeBuffer{},
	}

	t.Cleanup(func() {
		if a := Instance(); a != nil {
			a.running.Store(false)
			a.teardown()
		}
		if os.Getenv("KILN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), env.logs.String())
		}
	})
	return env
}

// addModule places a module file in the plugin directory served by the
// fake opener with symbols.
func (e *testEnv) addModule(t *testing.T, base string, symbols map[string]any) {
	t.Helper()
	file := base + fsutil.ModuleExt()
	testutil.TouchModules(t, filepath.Join(e.cfg.Root, "bin", "plugins"), file)
	e.opener.Add(file, symbols)
}

func (e *testEnv) writeConfig(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.cfg.Root, "config", name+".cfg"), []byte(content), 0o644))
}

func (e *testEnv) persistentConfig(name string) string {
	return filepath.Join(e.cfg.Home, ".Kiln", "Sandbox", "config", name+".cfg")
}

func (e *testEnv) init(t *testing.T) *App {
	t.Helper()
	return Init(e.cfg,
		WithOutput(e.logs),
		WithOpener(e.opener),
		WithPublisher(e.publisher),
		WithTerminator(func(code int) { e.exitCodes = append(e.exitCodes, code) }),
	)
}
