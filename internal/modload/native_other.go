//go:build !(linux || darwin || freebsd)

package modload

import "fmt"

// Native is unavailable on this platform.
type Native struct{}

// Open implements Opener.
func (Native) Open(path string) (Module, error) {
	return nil, fmt.Errorf("open native module %s: %w", path, ErrUnsupported)
}
