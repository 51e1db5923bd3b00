package hclstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/kiln/internal/config"
	"github.com/specialistvlad/kiln/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Ext is the file extension of every record.
const Ext = ".cfg"

// Store is an HCL backed config.Store.
type Store struct {
	writeDir string
	readDirs []string
	vars     map[string]cty.Value
}

var _ config.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithApp exposes the application identity to expressions as app.name,
// app.developer and app.version.
func WithApp(name, developer, version string) Option {
	return func(s *Store) {
		s.vars["app"] = cty.ObjectVal(map[string]cty.Value{
			"name":      cty.StringVal(name),
			"developer": cty.StringVal(developer),
			"version":   cty.StringVal(version),
		})
	}
}

// New creates a Store writing to persistentDir and reading from
// persistentDir then defaultsDir. An empty defaultsDir disables the
// fallback.
func New(persistentDir, defaultsDir string, opts ...Option) *Store {
	s := &Store{
		writeDir: persistentDir,
		readDirs: []string{persistentDir},
		vars:     make(map[string]cty.Value),
	}
	if defaultsDir != "" && defaultsDir != persistentDir {
		s.readDirs = append(s.readDirs, defaultsDir)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file the named record is written to.
func (s *Store) Path(name string) string {
	return filepath.Join(s.writeDir, name+Ext)
}

// Exists reports whether any read directory holds the named record.
func (s *Store) Exists(name string) bool {
	_, ok := s.locate(name)
	return ok
}

// Load decodes the first record found for name into v.
func (s *Store) Load(ctx context.Context, name string, v any) error {
	logger := ctxlog.FromContext(ctx)

	path, ok := s.locate(name)
	if !ok {
		return fmt.Errorf("%w: %s%s", config.ErrNotFound, name, Ext)
	}
	logger.Debug("Decoding config file.", "name", name, "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", config.ErrNotFound, path)
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return fmt.Errorf("%w: failed to parse %s: %s", config.ErrMalformed, path, diags.Error())
	}

	diags = gohcl.DecodeBody(file.Body, s.evalContext(), v)
	if diags.HasErrors() {
		return fmt.Errorf("%w: failed to decode %s: %s", config.ErrMalformed, path, diags.Error())
	}

	logger.Debug("Successfully decoded config file.", "name", name)
	return nil
}

// New writes def as the initial value of the named record.
func (s *Store) New(ctx context.Context, name string, def any) error {
	ctxlog.FromContext(ctx).Info("Creating config file.", "name", name, "path", s.Path(name))
	return s.write(name, def)
}

// Save overwrites the named record with v.
func (s *Store) Save(ctx context.Context, name string, v any) error {
	ctxlog.FromContext(ctx).Debug("Saving config file.", "name", name, "path", s.Path(name))
	return s.write(name, v)
}

func (s *Store) write(name string, v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("cannot encode %T as config %q: value must be a struct", v, name)
	}

	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(rv.Interface(), f.Body())

	if err := os.MkdirAll(s.writeDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", s.writeDir, err)
	}

	path := s.Path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, f.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config file %s: %w", path, err)
	}
	return nil
}

func (s *Store) locate(name string) (string, bool) {
	for _, dir := range s.readDirs {
		path := filepath.Join(dir, name+Ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

func (s *Store) evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{Variables: s.vars}
}
