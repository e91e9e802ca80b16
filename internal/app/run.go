package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vk/skyparse/internal/ctxlog"
	"github.com/vk/skyparse/internal/fsutil"
	"github.com/vk/skyparse/internal/model"
)

// Result pairs a parsed build file with its manifest.
type Result struct {
	Path     string          `json:"path"`
	Manifest *model.Manifest `json:"manifest"`
}

// Run executes the main application logic: discover build files, parse
// them concurrently, and write the manifests to the output writer as a
// JSON array in discovery order.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.parser.Close()

	paths, err := a.discover()
	if err != nil {
		return fmt.Errorf("failed to discover build files: %w", err)
	}
	if len(paths) == 0 {
		a.logger.Warn("No build files found, nothing to parse.", "path", a.cfg.Path)
		return nil
	}
	a.logger.Info("Starting parse.", "files", len(paths), "workers", a.cfg.WorkerCount)

	results := make([]Result, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.cfg.WorkerCount)
	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			manifest, err := a.parser.ParseBuildFile(groupCtx, path)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			results[i] = Result{Path: path, Manifest: manifest}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	a.logger.Info("Parse finished.", "files", len(paths))

	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode manifests: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// discover returns the build files named by the configured path: the
// file itself, or every build file under it when it is a directory.
func (a *App) discover() ([]string, error) {
	path, err := filepath.Abs(a.cfg.Path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	return fsutil.FindFilesByName(path, a.opts.BuildFileName)
}
