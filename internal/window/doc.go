// Package window defines the capability contract every window backend
// satisfies, the persisted window settings and the inert Null backend the
// engine falls back to when no window module is available.
//
// The engine drives a backend once per frame, always in the order
// OnPreRender, OnRender, OnPostRender. OnPreRender is the only hook allowed
// to drain platform events and therefore the only one that may change the
// reported State. Event draining must poll: a backend never blocks waiting
// for the platform.
package window
