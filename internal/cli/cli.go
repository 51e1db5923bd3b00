package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/kiln/internal/app"
	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/project"
	"github.com/specialistvlad/kiln/internal/version"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options is the parsed command line.
type Options struct {
	App app.Config
	// ListBackends prints the backend catalog and exits.
	ListBackends bool
	// Use maps a capability to the backend to select as its default.
	Use map[backend.Type]string
}

// Parse processes command-line arguments. It returns the populated Options,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("kiln", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
kiln - engine sandbox host.

Usage:
  kiln [options]

The application identity is read from project.yaml in the root directory
unless -project names another manifest; -name, -developer and -version
override it.

Options:
`)
		flagSet.PrintDefaults()
	}

	rootFlag := flagSet.String("root", "", "Installation root containing res/, bin/ and config/. Defaults to the working directory.")
	projectFlag := flagSet.String("project", "", "Path to the project manifest. Defaults to <root>/"+project.FileName+".")
	nameFlag := flagSet.String("name", "", "Application name.")
	developerFlag := flagSet.String("developer", "", "Developer name.")
	versionFlag := flagSet.String("version", "", "Application version (major.minor.patch).")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'. Defaults to text on a terminal, json otherwise.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	listFlag := flagSet.Bool("list-backends", false, "List discovered backends and exit.")
	useFlag := flagSet.String("use", "", "Comma separated capability=backend defaults to select, e.g. 'window=Terminal'.")
	framesFlag := flagSet.Uint64("frames", 0, "Stop after this many frames. 0 runs until the window closes.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))}
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "" && logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	use, err := parseUse(*useFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	manifestPath := *projectFlag
	if manifestPath == "" {
		manifestPath = filepath.Join(*rootFlag, project.FileName)
	}
	manifest, err := project.Load(manifestPath)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Project manifest loaded.", "path", manifestPath, "name", manifest.Name)

	identity := app.Identity{Name: manifest.Name, Developer: manifest.Developer, Version: manifest.Version}
	if *nameFlag != "" {
		identity.Name = *nameFlag
	}
	if *developerFlag != "" {
		identity.Developer = *developerFlag
	}
	if *versionFlag != "" {
		v, err := version.Parse(*versionFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid version: %v", err)}
		}
		identity.Version = v
	}

	cfg := app.Config{
		Identity:   identity,
		Root:       *rootFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		FrameLimit: *framesFlag,
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	opts := &Options{App: cfg, ListBackends: *listFlag, Use: use}
	slog.Debug("CLI parser finished successfully.", "options", opts)
	return opts, false, nil
}

func parseUse(s string) (map[backend.Type]string, error) {
	use := make(map[backend.Type]string)
	if strings.TrimSpace(s) == "" {
		return use, nil
	}
	for _, pair := range strings.Split(s, ",") {
		typ, name, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid -use entry %q: want capability=backend", pair)
		}
		t, err := backend.ParseType(strings.TrimSpace(typ))
		if err != nil {
			return nil, fmt.Errorf("invalid -use entry %q: %w", pair, err)
		}
		use[t] = strings.TrimSpace(name)
	}
	return use, nil
}
