package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/kiln/internal/editorlink"
	"github.com/specialistvlad/kiln/internal/modload"
)

// Option customizes Init.
type Option func(*options)

type options struct {
	out       io.Writer
	logger    *slog.Logger
	opener    modload.Opener
	terminate func(code int)
	publisher editorlink.Publisher
}

func defaultOptions() options {
	return options{
		out:       os.Stderr,
		opener:    modload.Default(),
		terminate: os.Exit,
	}
}

// WithOutput sets where the engine logs. Ignored when WithLogger is given.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithLogger makes the engine log through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithOpener sets how backend modules are opened.
func WithOpener(opener modload.Opener) Option {
	return func(o *options) { o.opener = opener }
}

// WithTerminator replaces os.Exit as the final step of teardown.
func WithTerminator(fn func(code int)) Option {
	return func(o *options) { o.terminate = fn }
}

// WithPublisher replaces the editor link configured in editor.cfg.
func WithPublisher(p editorlink.Publisher) Option {
	return func(o *options) { o.publisher = p }
}
