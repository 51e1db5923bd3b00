// Package app contains the application core: the single per-process App
// that owns the directory layout, configuration, backend registry and the
// active window backend, and drives the main loop.
//
// The lifecycle is Init, Run, then Exit twice. The first Exit, issued while
// the loop is running, only asks the loop to stop; Run then returns. The
// second Exit tears everything down and terminates the process.
package app
