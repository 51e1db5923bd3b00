// Package registry discovers backend modules on disk and keeps the catalog
// of what was found.
//
// A scan opens every file with the platform's module extension, resolves the
// full entry point contract eagerly and only then catalogues the module. A
// module that fails to open, or that misses any entry point, is logged and
// skipped as a whole; nothing partially resolved is ever exposed. One bad
// module never aborts a scan.
package registry
