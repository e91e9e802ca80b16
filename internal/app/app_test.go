package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/skyparse/internal/app"
	"github.com/vk/skyparse/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRun_DirectoryOfBuildFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "defs", "rules.hcl"), `
default_visibility = "PUBLIC"
`)
	writeFile(t, filepath.Join(root, "app", "BUILD.hcl"), `
load "//defs:rules.hcl" {
  symbols = ["default_visibility"]
}

binary "app" {
  visibility = default_visibility
}
`)
	writeFile(t, filepath.Join(root, "lib", "BUILD.hcl"), `
library "lib" {
  srcs = ["lib.go"]
}
`)

	cfg, err := app.NewConfig(app.Config{
		Path:        root,
		LogLevel:    "debug",
		WorkerCount: 4,
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	a := app.NewApp(out, logs, cfg)

	require.NoError(t, a.Run(context.Background()))

	var results []app.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)

	// Discovery walks lexically, so app comes before lib.
	require.Equal(t, filepath.Join(root, "app", "BUILD.hcl"), results[0].Path)
	require.Equal(t, filepath.Join(root, "lib", "BUILD.hcl"), results[1].Path)

	appManifest := results[0].Manifest
	require.Equal(t, []model.Rule{{
		Kind: "binary",
		Name: "app",
		Attributes: map[string]any{
			"visibility": "PUBLIC",
		},
	}}, appManifest.Rules)
	require.Equal(t, []string{
		filepath.Join(root, "app", "BUILD.hcl"),
		filepath.Join(root, "defs", "rules.hcl"),
	}, appManifest.LoadedPaths)
}

func TestRun_SingleFileWithConfigValues(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	buildFile := filepath.Join(root, "BUILD.hcl")
	writeFile(t, buildFile, `
library "core" {
  mode = read_config("build", "mode", "dev")
}
`)

	cfg, err := app.NewConfig(app.Config{
		Path:         buildFile,
		ConfigValues: map[string]map[string]string{"build": {"mode": "release"}},
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a := app.NewApp(out, &bytes.Buffer{}, cfg)

	require.NoError(t, a.Run(context.Background()))

	var results []app.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 1)
	require.Equal(t, "release", results[0].Manifest.Rules[0].Attributes["mode"])
	require.Equal(t, []string{"build.mode"}, results[0].Manifest.ConfigReads)
}

func TestRun_NoBuildFilesFound(t *testing.T) {
	t.Parallel()

	cfg, err := app.NewConfig(app.Config{Path: t.TempDir()})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a := app.NewApp(out, &bytes.Buffer{}, cfg)

	require.NoError(t, a.Run(context.Background()))
	require.Empty(t, out.String(), "no manifests should be emitted")
}

func TestRun_ParseFailurePropagates(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	buildFile := filepath.Join(root, "BUILD.hcl")
	writeFile(t, buildFile, `
load "//missing:defs.hcl" {}

library "core" {}
`)

	cfg, err := app.NewConfig(app.Config{Path: buildFile})
	require.NoError(t, err)

	a := app.NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg)

	err = a.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, model.KindMissingFile, model.KindOf(err))
}

func TestNewConfig_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := app.NewConfig(app.Config{})
	require.Error(t, err)
}
