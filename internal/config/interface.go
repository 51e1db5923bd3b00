package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/kiln/internal/ctxlog"
)

var (
	// ErrNotFound is returned by Load when no file exists for the name.
	ErrNotFound = errors.New("config not found")

	// ErrMalformed is returned by Load when the file exists but cannot be decoded.
	ErrMalformed = errors.New("config malformed")
)

// Store is the interface for a format-specific configuration store.
type Store interface {
	// Exists reports whether a record with the given name can be loaded.
	Exists(name string) bool

	// Load decodes the named record into v, which must be a non-nil pointer.
	// Errors wrap ErrNotFound or ErrMalformed so callers can tell them apart.
	Load(ctx context.Context, name string, v any) error

	// New persists def as the initial value of the named record. Only after
	// New succeeds does the name become loadable.
	New(ctx context.Context, name string, def any) error

	// Save overwrites the named record with v.
	Save(ctx context.Context, name string, v any) error
}

// LoadOrCreate loads the named record. When the record is absent or
// malformed it logs a warning, persists def in its place and returns def.
// It only fails when the default cannot be written either, and even then
// def is returned so callers can carry on with in-memory defaults.
func LoadOrCreate[T any](ctx context.Context, store Store, name string, def T) (T, error) {
	logger := ctxlog.FromContext(ctx)

	loaded := def
	err := store.Load(ctx, name, &loaded)
	if err == nil {
		return loaded, nil
	}

	switch {
	case errors.Is(err, ErrNotFound):
		logger.Info("Config not found, creating default.", "name", name)
	case errors.Is(err, ErrMalformed):
		logger.Warn("Config malformed, replacing with default.", "name", name, "error", err)
	default:
		logger.Warn("Config could not be loaded, using default.", "name", name, "error", err)
	}

	if err := store.New(ctx, name, def); err != nil {
		logger.Error("Default config could not be written.", "name", name, "error", err)
		return def, fmt.Errorf("failed to create default config %q: %w", name, err)
	}
	return def, nil
}
