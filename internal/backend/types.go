package backend

import (
	"fmt"
	"strings"
)

// Type is the capability a backend module implements.
type Type int32

const (
	// Window backends create the native window and pump its events.
	Window Type = iota
	// Renderer backends draw frames.
	Renderer
	// Audio backends play sound.
	Audio
	// Input backends read devices other than the window's own events.
	Input
)

// Types lists every capability type.
func Types() []Type {
	return []Type{Window, Renderer, Audio, Input}
}

// String returns the lower-case capability name used in configuration.
func (t Type) String() string {
	switch t {
	case Window:
		return "window"
	case Renderer:
		return "renderer"
	case Audio:
		return "audio"
	case Input:
		return "input"
	default:
		return fmt.Sprintf("type(%d)", int32(t))
	}
}

// Valid reports whether t is one of the known capability types.
func (t Type) Valid() bool {
	return t >= Window && t <= Input
}

// ParseType converts a capability name back into a Type.
func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown capability type %q", s)
}

// State is the lifecycle state of a catalogued backend.
type State int

const (
	// Unloaded - discovered but not in use. This is the default.
	Unloaded State = iota
	// Active - loaded and currently serving its capability.
	Active
	// Disabled - cannot be used, usually because activation failed.
	Disabled
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Active:
		return "active"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}
