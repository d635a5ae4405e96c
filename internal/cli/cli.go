package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/texgraph/internal/app"
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

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Values from a -config file are defaults that explicitly set flags and
// positional paths override.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("texgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
texgraph - Node graph engine and GLSL shader generator for procedural textures.

Usage:
  texgraph [options] [PATH...]

Arguments:
  PATH
    A graph document (.hcl or .json) or a directory searched recursively.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := app.DefaultConfig()
	configFlag := flagSet.String("config", "", "Path to a YAML configuration file.")
	outputFlag := flagSet.String("output", "", "Directory generated fragment shaders are written to.")
	oFlag := flagSet.String("o", "", "Output directory (shorthand).")
	watchFlag := flagSet.Bool("watch", false, "Keep running and reload documents when they change.")
	strictFlag := flagSet.Bool("strict", false, "Fail on unknown node types instead of skipping them.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the health check and metrics server in watch mode. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", defaults.WorkerCount, "Workers evaluating value graphs. 0 uses one per CPU.")
	samplersFlag := flagSet.Int("samplers", defaults.Samplers, "Input samplers declared by generated shaders.")
	notifyURLFlag := flagSet.String("notify-url", "", "socket.io endpoint compile events are published to.")
	notifyNamespaceFlag := flagSet.String("notify-namespace", "", "socket.io namespace for compile events.")
	notifyInsecureFlag := flagSet.Bool("notify-insecure", false, "Skip TLS certificate verification for the socket.io endpoint.")
	notifyTimeoutFlag := flagSet.Duration("notify-timeout", 0, "How long to wait for the socket.io connection. 0 uses the default.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := defaults
	if *configFlag != "" {
		loaded, err := app.LoadConfigFile(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = loaded
		slog.Debug("Configuration file loaded.", "path", *configFlag)
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["output"] {
		cfg.OutputDir = *outputFlag
	} else if set["o"] {
		cfg.OutputDir = *oFlag
	}
	if set["watch"] {
		cfg.Watch = *watchFlag
	}
	if set["strict"] {
		cfg.Strict = *strictFlag
	}
	if set["healthcheck-port"] {
		cfg.HealthcheckPort = *healthPortFlag
	}
	if set["log-format"] {
		cfg.LogFormat = *logFormatFlag
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevelFlag
	}
	if set["workers"] {
		cfg.WorkerCount = *workersFlag
	}
	if set["samplers"] {
		cfg.Samplers = *samplersFlag
	}
	if set["notify-url"] {
		cfg.Notify.URL = *notifyURLFlag
	}
	if set["notify-namespace"] {
		cfg.Notify.Namespace = *notifyNamespaceFlag
	}
	if set["notify-insecure"] {
		cfg.Notify.InsecureSkipVerify = *notifyInsecureFlag
	}
	if set["notify-timeout"] {
		cfg.Notify.Timeout = *notifyTimeoutFlag
	}
	if flagSet.NArg() > 0 {
		cfg.Paths = flagSet.Args()
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if len(cfg.Paths) == 0 {
		slog.Debug("No document path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
