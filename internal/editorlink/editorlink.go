// Package editorlink publishes engine lifecycle events to an external
// editor over socket.io.
package editorlink

// Lifecycle events published by the engine.
const (
	EventInit            = "engine.init"
	EventBackendSelected = "backend.selected"
	EventWindowState     = "window.state"
	EventStop            = "engine.stop"
	EventTeardown        = "engine.teardown"
)

// Payload is the body of a published event.
type Payload map[string]any

// Publisher sends lifecycle events. Publish must not block the caller;
// delivery failures are only logged.
type Publisher interface {
	Publish(event string, payload Payload)
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(string, Payload) {}
func (Nop) Close() error            { return nil }
