// Package project reads the manifest that names the application hosted by
// the engine.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/specialistvlad/kiln/internal/version"
	"gopkg.in/yaml.v3"
)

// FileName is the conventional manifest file name.
const FileName = "project.yaml"

// Manifest identifies the application.
type Manifest struct {
	Name      string          `yaml:"name"`
	Developer string          `yaml:"developer"`
	Version   version.Version `yaml:"version"`
}

// Default returns the identity used when no manifest exists.
func Default() Manifest {
	return Manifest{Name: "Untitled", Developer: "Unknown"}
}

// Load reads the manifest at path. A missing file yields Default. Fields
// absent from the file keep their default values; unknown fields are an
// error.
func Load(path string) (Manifest, error) {
	m := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return m, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return Default(), fmt.Errorf("%s: failed to parse yaml: %w", path, err)
	}
	if m.Name == "" || m.Developer == "" {
		return Default(), fmt.Errorf("%s: name and developer must not be empty", path)
	}
	return m, nil
}
