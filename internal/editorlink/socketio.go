package editorlink

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/specialistvlad/kiln/internal/config"
	"github.com/specialistvlad/kiln/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIO publishes events to a socket.io namespace. Emits issued before
// the connection is up are buffered by the client and flushed on connect.
type SocketIO struct {
	io     *socket.Socket
	logger *slog.Logger
}

// Connect returns the publisher described by cfg: Nop when the link is
// disabled, otherwise a SocketIO that connects in the background.
func Connect(ctx context.Context, cfg config.EditorLink) (Publisher, error) {
	logger := ctxlog.FromContext(ctx)
	if !cfg.Enabled {
		logger.Debug("Editor link disabled.")
		return Nop{}, nil
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return Nop{}, fmt.Errorf("failed to parse editor URL: %w", err)
	}
	switch parsedURL.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return Nop{}, fmt.Errorf("unsupported editor URL scheme %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return Nop{}, fmt.Errorf("editor URL %q has no host", cfg.URL)
	}

	logger = logger.With("component", "editorlink", "url", cfg.URL, "namespace", cfg.Namespace)
	logger.Info("Connecting to editor...")

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Editor connected", "sid", io.Id())
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		logger.Warn("Editor connection failed", "error", fmt.Sprint(errs...))
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Debug("Editor disconnected", "reason", fmt.Sprint(reason...))
	})

	io.Connect()
	return &SocketIO{io: io, logger: logger}, nil
}

// Publish emits event with payload.
func (s *SocketIO) Publish(event string, payload Payload) {
	if !s.io.Connected() {
		s.logger.Debug("Editor not connected, event buffered.", "event", event)
	}
	s.io.Emit(event, map[string]any(payload))
}

// Close disconnects from the editor.
func (s *SocketIO) Close() error {
	s.logger.Info("Closing editor link", "sid", s.io.Id())
	s.io.Disconnect()
	return nil
}
