package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/kiln/internal/app"
	"github.com/specialistvlad/kiln/internal/cli"
	"github.com/specialistvlad/kiln/internal/ctxlog"
	"golang.org/x/term"
)

// main is the entrypoint for the kiln sandbox.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Reports go to outW, logs to logW.
func run(outW, logW io.Writer, args []string) (err error) {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	if opts.App.LogFormat == "" {
		opts.App.LogFormat = defaultLogFormat(logW)
	}

	// The app panics on fatal startup errors, so we recover here to provide
	// a clean exit code to the user.
	defer func() {
		if r := recover(); r != nil {
			err = &cli.ExitError{Code: 1, Message: fmt.Sprintf("application startup panicked: %v", r)}
		}
	}()

	exitCode := -1
	a := app.Init(opts.App,
		app.WithOutput(logW),
		app.WithTerminator(func(code int) { exitCode = code }),
	)

	for t, name := range opts.Use {
		if err := a.SelectBackend(t, name); err != nil {
			ctxlog.FromContext(a.Context()).Warn("Backend selection failed.", "type", t.String(), "name", name, "error", err)
		}
	}

	if opts.ListBackends {
		printBackends(outW, a)
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := a.Run(ctx); err != nil {
			return fmt.Errorf("main loop failed: %w", err)
		}
	}

	a.Exit()
	if exitCode > 0 {
		return &cli.ExitError{Code: exitCode, Message: fmt.Sprintf("exited with status %d", exitCode)}
	}
	return nil
}

// defaultLogFormat picks text for an interactive terminal and json
// otherwise.
func defaultLogFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "text"
	}
	return "json"
}
