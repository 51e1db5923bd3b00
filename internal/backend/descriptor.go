package backend

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/kiln/internal/version"
)

// FallbackName is the name of the synthesized descriptor returned when no
// real backend of a capability exists.
const FallbackName = "Fallback"

// ErrDuplicatePath is returned when a catalog already holds a descriptor for
// the same module path.
var ErrDuplicatePath = errors.New("module path already catalogued")

// Descriptor is the metadata of one discovered backend module.
type Descriptor struct {
	Name        string
	Author      string
	Description string
	Version     version.Version
	Type        Type
	ModulePath  string
	State       State
}

// Fallback synthesizes the sentinel descriptor for capability t.
func Fallback(t Type) Descriptor {
	return Descriptor{
		Name:        FallbackName,
		Author:      FallbackName,
		Description: "Built-in inert backend used when no module is available.",
		Type:        t,
		State:       Unloaded,
	}
}

// IsFallback reports whether d is the synthesized sentinel rather than a
// scanned module.
func (d Descriptor) IsFallback() bool {
	return d.ModulePath == "" && d.Name == FallbackName
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", d.Name, d.Version, d.Type, d.State)
}

// Catalog is an insertion-ordered collection of descriptors keyed by module
// path. It is not safe for concurrent use.
type Catalog struct {
	entries []*Descriptor
	byPath  map[string]int
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byPath: make(map[string]int)}
}

// Add appends a copy of d. A second descriptor with the same ModulePath is
// rejected with ErrDuplicatePath.
func (c *Catalog) Add(d Descriptor) error {
	if _, exists := c.byPath[d.ModulePath]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, d.ModulePath)
	}
	c.byPath[d.ModulePath] = len(c.entries)
	c.entries = append(c.entries, &d)
	return nil
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns copies of all descriptors in insertion order.
func (c *Catalog) Entries() []Descriptor {
	out := make([]Descriptor, len(c.entries))
	for i, e := range c.entries {
		out[i] = *e
	}
	return out
}

// ByPath returns the descriptor for a module path.
func (c *Catalog) ByPath(path string) (Descriptor, bool) {
	idx, ok := c.byPath[path]
	if !ok {
		return Descriptor{}, false
	}
	return *c.entries[idx], true
}

// FirstOfType returns the first descriptor of type t that is not Disabled.
func (c *Catalog) FirstOfType(t Type) (Descriptor, bool) {
	for _, e := range c.entries {
		if e.Type == t && e.State != Disabled {
			return *e, true
		}
	}
	return Descriptor{}, false
}

// Find returns the first descriptor of type t named name that is not
// Disabled.
func (c *Catalog) Find(t Type, name string) (Descriptor, bool) {
	for _, e := range c.entries {
		if e.Type == t && e.Name == name && e.State != Disabled {
			return *e, true
		}
	}
	return Descriptor{}, false
}

// Names returns the names of descriptors of type t that are not Disabled,
// in insertion order.
func (c *Catalog) Names(t Type) []string {
	var names []string
	for _, e := range c.entries {
		if e.Type == t && e.State != Disabled {
			names = append(names, e.Name)
		}
	}
	return names
}

// SetState changes the state of the descriptor at path.
func (c *Catalog) SetState(path string, s State) bool {
	idx, ok := c.byPath[path]
	if !ok {
		return false
	}
	c.entries[idx].State = s
	return true
}
