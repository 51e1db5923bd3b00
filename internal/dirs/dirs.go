// Package dirs maps the logical directory roles of the engine to filesystem
// paths and checks that the layout is usable before anything else starts.
package dirs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/kiln/internal/ctxlog"
	"github.com/specialistvlad/kiln/internal/fsutil"
)

// Role names a directory the engine depends on.
type Role int

const (
	// Resource holds shipped, read-only assets.
	Resource Role = iota
	// Binary holds the executable and its companions.
	Binary
	// Plugin holds dynamically loadable backend modules.
	Plugin
	// Config holds shipped default configuration files.
	Config
	// PersistentData is the per-user writable data directory.
	PersistentData
	// PersistentConfig is the per-user writable configuration directory.
	PersistentConfig
)

var roleNames = map[Role]string{
	Resource:         "resource",
	Binary:           "binary",
	Plugin:           "plugin",
	Config:           "config",
	PersistentData:   "persistent-data",
	PersistentConfig: "persistent-config",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Writable reports whether the role is created on demand rather than
// required to pre-exist.
func (r Role) Writable() bool {
	return r == PersistentData || r == PersistentConfig
}

// Roles lists every role in check order.
func Roles() []Role {
	return []Role{Resource, Binary, Plugin, Config, PersistentData, PersistentConfig}
}

// MissingError reports required directories that do not exist, or writable
// ones that could not be created.
type MissingError struct {
	Missing map[Role]string
	Cause   error
}

func (e *MissingError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, r := range Roles() {
		if p, ok := e.Missing[r]; ok {
			parts = append(parts, fmt.Sprintf("%s path %q", r, p))
		}
	}
	msg := "required directories unavailable: " + strings.Join(parts, ", ")
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MissingError) Unwrap() error { return e.Cause }

// Resolver resolves roles relative to an installation root and a per-user
// home directory.
type Resolver struct {
	root      string
	home      string
	developer string
	name      string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRoot sets the installation root the read-only roles are relative to.
func WithRoot(root string) Option {
	return func(r *Resolver) { r.root = root }
}

// WithHome overrides the user home directory used for the persistent roles.
func WithHome(home string) Option {
	return func(r *Resolver) { r.home = home }
}

// New creates a Resolver for the application identified by developer and
// name. The root defaults to the working directory and the home to the
// user's home directory.
func New(developer, name string, opts ...Option) (*Resolver, error) {
	r := &Resolver{developer: developer, name: name}
	for _, opt := range opts {
		opt(r)
	}

	if r.root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		r.root = wd
	}
	if r.home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		r.home = home
	}
	return r, nil
}

// Root returns the installation root.
func (r *Resolver) Root() string {
	return r.root
}

// Path returns the absolute path for role.
func (r *Resolver) Path(role Role) string {
	switch role {
	case Resource:
		return filepath.Join(r.root, "res")
	case Binary:
		return filepath.Join(r.root, "bin")
	case Plugin:
		return filepath.Join(r.root, "bin", "plugins")
	case Config:
		return filepath.Join(r.root, "config")
	case PersistentData:
		return filepath.Join(r.home, "."+r.developer, r.name)
	case PersistentConfig:
		return filepath.Join(r.home, "."+r.developer, r.name, "config")
	default:
		panic(fmt.Sprintf("dirs: unknown role %d", int(role)))
	}
}

// Prepare checks every read-only role exists and creates the writable ones.
// All problems are collected into a single *MissingError.
func (r *Resolver) Prepare(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	missing := make(map[Role]string)
	var cause error

	for _, role := range Roles() {
		path := r.Path(role)
		if !role.Writable() {
			if !fsutil.DirExists(path) {
				logger.Error("Required directory does not exist.", "role", role.String(), "path", path)
				missing[role] = path
			}
			continue
		}

		created, err := fsutil.EnsureDir(path)
		if err != nil {
			logger.Error("Writable directory could not be created.", "role", role.String(), "path", path, "error", err)
			missing[role] = path
			if cause == nil {
				cause = err
			}
			continue
		}
		if created {
			logger.Info("Created directory.", "role", role.String(), "path", path)
		}
	}

	if len(missing) > 0 {
		return &MissingError{Missing: missing, Cause: cause}
	}
	logger.Debug("Directory layout verified.", "root", r.root)
	return nil
}
