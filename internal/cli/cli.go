package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/skyparse/internal/app"
	"github.com/vk/skyparse/internal/config"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("skyparse", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Skyparse - A build-file parser producing JSON rule manifests.

Usage:
  skyparse [options] [PATH]

Arguments:
  PATH
    Path to a single build file or a directory searched recursively
    for build files.

Options:
`)
		flagSet.PrintDefaults()
	}

	cells := mapFlag{}
	configValues := sectionFlag{}
	pathFlag := flagSet.String("path", "", "Path to the build file or directory.")
	rootFlag := flagSet.String("root", "", "Project root directory. Defaults to the directory containing PATH.")
	cellNameFlag := flagSet.String("cell-name", "", "Name of the main cell. Defaults to 'main'.")
	buildFileNameFlag := flagSet.String("build-file-name", config.DefaultBuildFileName, "File name treated as a build file.")
	flagSet.Var(&cells, "cell", "Additional cell as name=path. Repeatable.")
	flagSet.Var(&configValues, "c", "Configuration value as section.field=value, served to read_config. Repeatable.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 10, "Number of build files parsed concurrently.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *pathFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Build path determined.", "path", path)

	if path == "" {
		slog.Debug("No path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		Path:          path,
		ProjectRoot:   *rootFlag,
		CellName:      *cellNameFlag,
		CellRoots:     cells,
		BuildFileName: *buildFileNameFlag,
		ConfigValues:  configValues,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		WorkerCount:   *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

// mapFlag collects repeated name=value flags into a map.
type mapFlag map[string]string

func (m *mapFlag) String() string {
	pairs := make([]string, 0, len(*m))
	for name, value := range *m {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, ",")
}

func (m *mapFlag) Set(value string) error {
	name, val, ok := strings.Cut(value, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", value)
	}
	if *m == nil {
		*m = map[string]string{}
	}
	(*m)[name] = val
	return nil
}

// sectionFlag collects repeated section.field=value flags into a nested map.
type sectionFlag map[string]map[string]string

func (s *sectionFlag) String() string {
	pairs := make([]string, 0, len(*s))
	for section, fields := range *s {
		for field, value := range fields {
			pairs = append(pairs, section+"."+field+"="+value)
		}
	}
	return strings.Join(pairs, ",")
}

func (s *sectionFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected section.field=value, got %q", value)
	}
	section, field, ok := strings.Cut(key, ".")
	if !ok || section == "" || field == "" {
		return fmt.Errorf("expected section.field=value, got %q", value)
	}
	if *s == nil {
		*s = map[string]map[string]string{}
	}
	if (*s)[section] == nil {
		(*s)[section] = map[string]string{}
	}
	(*s)[section][field] = val
	return nil
}
