// Package hclstore implements config.Store on top of HCL files.
//
// Each record lives in "<name>.cfg". Reads look in the writable persistent
// config directory first and fall back to the shipped, read-only config
// directory, so user overrides shadow defaults. Writes always go to the
// persistent directory. Expressions in a record are evaluated against an
// "app" object exposing the application's name, developer and version:
//
//	title = "${app.name} ${app.version}"
package hclstore
