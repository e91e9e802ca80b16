package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/skyparse/internal/config"
	"github.com/vk/skyparse/internal/events"
	"github.com/vk/skyparse/internal/parser"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config
	opts   *config.Options
	parser *parser.Parser
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and parser.
// Logs go to logW; parsed manifests are written to outW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	opts, err := buildOptions(cfg)
	if err != nil {
		// A failure to derive parser options is a fatal startup error.
		panic(fmt.Errorf("failed to configure parser: %w", err))
	}
	logger.Debug("Parser options derived.", "project_root", opts.ProjectRoot, "build_file_name", opts.BuildFileName)

	return &App{
		outW:   outW,
		logger: logger,
		cfg:    cfg,
		opts:   opts,
		parser: parser.New(opts, nil, nil, events.NewLogSink(), nil),
	}
}

// Parser returns the application's parser. This is primarily for testing.
func (a *App) Parser() *parser.Parser {
	return a.parser
}

// buildOptions translates the application configuration into parser
// options, making every path absolute.
func buildOptions(cfg *Config) (*config.Options, error) {
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, err
	}

	root := cfg.ProjectRoot
	if root == "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			root = path
		} else {
			root = filepath.Dir(path)
		}
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cellRoots := make(map[string]string, len(cfg.CellRoots))
	for name, cellRoot := range cfg.CellRoots {
		abs, err := filepath.Abs(cellRoot)
		if err != nil {
			return nil, err
		}
		cellRoots[name] = abs
	}

	return config.New(config.Options{
		ProjectRoot:   root,
		CellName:      cfg.CellName,
		CellRoots:     cellRoots,
		RawConfig:     cfg.ConfigValues,
		BuildFileName: cfg.BuildFileName,
	})
}
