// Package config defines the persisted configuration records of the engine
// and the format-agnostic Store contract used to load and save them.
//
// Concrete stores, such as the HCL one, live in separate packages. Records
// are addressed by name; a store maps a name to one file.
package config
