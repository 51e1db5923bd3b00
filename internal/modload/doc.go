// Package modload opens dynamically loadable backend modules and exposes
// their exported entry points by contract name.
//
// Two kinds of modules are understood. Go plugins, built with
// -buildmode=plugin against this module, export CamelCase Go identifiers
// (GetName for get_name). Native modules are C-ABI shared libraries opened
// through purego without cgo; their entry points are wrapped into Go funcs
// with the same signatures a Go plugin would export. Default picks the
// loader from the build mode recorded in the file, never trying both.
package modload
