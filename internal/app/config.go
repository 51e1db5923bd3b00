package app

import (
	"errors"

	"github.com/specialistvlad/kiln/internal/version"
)

// Identity names the application hosted by the engine. Developer and Name
// also locate the per-user persistent directories.
type Identity struct {
	Name      string
	Developer string
	Version   version.Version
}

// Config holds all the necessary configuration for an App instance.
type Config struct {
	Identity

	// Root is the installation root. Empty means the working directory.
	Root string
	// Home overrides the user home directory. Empty means the OS default.
	Home string

	LogFormat string
	LogLevel  string

	// FrameLimit stops the loop after that many frames. Zero means no limit.
	FrameLimit uint64
}

// Validate checks the fields Init cannot work without.
func (c Config) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("application name must not be empty"))
	}
	if c.Developer == "" {
		errs = append(errs, errors.New("developer name must not be empty"))
	}
	return errors.Join(errs...)
}
