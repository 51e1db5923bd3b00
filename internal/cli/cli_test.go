package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	opts, shouldExit, err := Parse([]string{"-root", root}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "Untitled", opts.App.Name)
	assert.Equal(t, "Unknown", opts.App.Developer)
	assert.Equal(t, root, opts.App.Root)
	assert.Equal(t, "info", opts.App.LogLevel)
	assert.Empty(t, opts.App.LogFormat)
	assert.False(t, opts.ListBackends)
	assert.Empty(t, opts.Use)
}

func TestParse_ManifestAndOverrides(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	manifest := "name: Sandbox\ndeveloper: Kiln\nversion: 0.3.1\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "project.yaml"), []byte(manifest), 0o644))

	// --- Act ---
	opts, _, err := Parse([]string{
		"-root", root,
		"-developer", "Forge",
		"-log-format", "JSON",
		"-use", "window=Terminal, audio=Beep",
		"-frames", "10",
		"-list-backends",
	}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "Sandbox", opts.App.Name)
	assert.Equal(t, "Forge", opts.App.Developer)
	assert.Equal(t, version.New(0, 3, 1), opts.App.Version)
	assert.Equal(t, "json", opts.App.LogFormat)
	assert.Equal(t, uint64(10), opts.App.FrameLimit)
	assert.True(t, opts.ListBackends)
	assert.Equal(t, map[backend.Type]string{backend.Window: "Terminal", backend.Audio: "Beep"}, opts.Use)
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	opts, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, opts)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_UsageErrors(t *testing.T) {
	t.Parallel()

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("name: [unterminated\n"), 0o644))

	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "positional argument", args: []string{"extra"}},
		{name: "bad log format", args: []string{"-log-format", "xml"}},
		{name: "bad log level", args: []string{"-log-level", "loud"}},
		{name: "bad version", args: []string{"-version", "one"}},
		{name: "bad use pair", args: []string{"-use", "window"}},
		{name: "bad use type", args: []string{"-use", "physics=Box2D"}},
		{name: "broken manifest", args: []string{"-project", broken}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"-root", t.TempDir()}, tc.args...)
			_, _, err := Parse(args, &bytes.Buffer{})

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
