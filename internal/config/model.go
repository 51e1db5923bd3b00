package config

import (
	"strings"

	"github.com/specialistvlad/kiln/internal/backend"
)

// Record names of the persisted configuration files.
const (
	BackendName    = "backend"
	WindowName     = "window"
	EditorLinkName = "editor"
)

// AutoSelect is the default backend name meaning "pick the first suitable
// backend". "fallback" and the empty string are accepted as synonyms.
const AutoSelect = "none"

// Backend is the persisted configuration of the backend registry.
type Backend struct {
	// PluginDir is the directory scanned for loadable modules.
	PluginDir string `hcl:"plugin_dir,optional"`
	// Defaults maps a capability name to the preferred backend name.
	Defaults map[string]string `hcl:"defaults,optional"`
}

// DefaultBackend returns the backend config with every capability set to
// auto-select.
func DefaultBackend(pluginDir string) Backend {
	defaults := make(map[string]string, len(backend.Types()))
	for _, t := range backend.Types() {
		defaults[t.String()] = AutoSelect
	}
	return Backend{PluginDir: pluginDir, Defaults: defaults}
}

// DefaultFor returns the configured backend name for t. An unset entry
// reads as AutoSelect.
func (c *Backend) DefaultFor(t backend.Type) string {
	if name, ok := c.Defaults[t.String()]; ok && name != "" {
		return name
	}
	return AutoSelect
}

// SetDefaultFor records name as the preferred backend for t.
func (c *Backend) SetDefaultFor(t backend.Type, name string) {
	if c.Defaults == nil {
		c.Defaults = make(map[string]string)
	}
	c.Defaults[t.String()] = name
}

// IsAutoSelect reports whether name is one of the auto-select sentinels.
func IsAutoSelect(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AutoSelect, "fallback":
		return true
	}
	return false
}

// EditorLink configures the optional connection to an external editor that
// receives engine lifecycle events.
type EditorLink struct {
	Enabled            bool   `hcl:"enabled,optional"`
	URL                string `hcl:"url,optional"`
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// DefaultEditorLink returns a disabled editor link pointing at a local
// editor on its conventional port.
func DefaultEditorLink() EditorLink {
	return EditorLink{
		Enabled:   false,
		URL:       "http://localhost:7331/socket.io/",
		Namespace: "/engine",
	}
}
