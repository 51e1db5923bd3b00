package dirs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/kiln/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func makeLayout(t *testing.T, root string) {
	t.Helper()
	for _, d := range []string{"res", "bin/plugins", "config"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
}

func TestPath(t *testing.T) {
	t.Parallel()

	r, err := New("acme", "demo", WithRoot("/opt/demo"), WithHome("/home/u"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/opt/demo", "res"), r.Path(Resource))
	assert.Equal(t, filepath.Join("/opt/demo", "bin"), r.Path(Binary))
	assert.Equal(t, filepath.Join("/opt/demo", "bin", "plugins"), r.Path(Plugin))
	assert.Equal(t, filepath.Join("/opt/demo", "config"), r.Path(Config))
	assert.Equal(t, filepath.Join("/home/u", ".acme", "demo"), r.Path(PersistentData))
	assert.Equal(t, filepath.Join("/home/u", ".acme", "demo", "config"), r.Path(PersistentConfig))
}

func TestPrepare_CreatesWritableDirs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root, home := t.TempDir(), t.TempDir()
	makeLayout(t, root)
	r, err := New("acme", "demo", WithRoot(root), WithHome(home))
	require.NoError(t, err)

	// --- Act ---
	err = r.Prepare(testCtx())

	// --- Assert ---
	require.NoError(t, err)
	assert.DirExists(t, r.Path(PersistentData))
	assert.DirExists(t, r.Path(PersistentConfig))
}

func TestPrepare_ReportsEveryMissingRequiredDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	r, err := New("acme", "demo", WithRoot(root), WithHome(t.TempDir()))
	require.NoError(t, err)

	err = r.Prepare(testCtx())

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Len(t, missing.Missing, 3)
	assert.Contains(t, missing.Missing, Resource)
	assert.Contains(t, missing.Missing, Plugin)
	assert.Contains(t, missing.Missing, Config)
	assert.NotContains(t, missing.Missing, Binary)
	assert.Contains(t, err.Error(), "plugin path")
}

func TestPrepare_UncreatableWritableDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	makeLayout(t, root)
	// A regular file where the home directory should be blocks creation.
	home := filepath.Join(t.TempDir(), "home-file")
	require.NoError(t, os.WriteFile(home, nil, 0o644))

	r, err := New("acme", "demo", WithRoot(root), WithHome(home))
	require.NoError(t, err)

	err = r.Prepare(testCtx())

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Contains(t, missing.Missing, PersistentData)
	assert.Error(t, missing.Cause)
}

func TestRoleString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "persistent-config", PersistentConfig.String())
	assert.Equal(t, "role(42)", Role(42).String())
	assert.True(t, PersistentData.Writable())
	assert.False(t, Plugin.Writable())
}
