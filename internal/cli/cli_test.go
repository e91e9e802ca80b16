package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/skyparse/internal/cli"
)

func TestParse_FullFlagSet(t *testing.T) {
	t.Parallel()

	args := []string{
		"-root", "/repo",
		"-cell-name", "work",
		"-cell", "tools=/repo/tools",
		"-c", "build.mode=release",
		"-c", "project.visibility=PUBLIC",
		"-log-format", "text",
		"-log-level", "debug",
		"-workers", "4",
		"/repo/app/BUILD.hcl",
	}

	cfg, shouldExit, err := cli.Parse(args, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	require.Equal(t, "/repo/app/BUILD.hcl", cfg.Path)
	require.Equal(t, "/repo", cfg.ProjectRoot)
	require.Equal(t, "work", cfg.CellName)
	require.Equal(t, map[string]string{"tools": "/repo/tools"}, cfg.CellRoots)
	require.Equal(t, map[string]map[string]string{
		"build":   {"mode": "release"},
		"project": {"visibility": "PUBLIC"},
	}, cfg.ConfigValues)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 4, cfg.WorkerCount)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, shouldExit, err := cli.Parse(nil, out)
	require.NoError(t, err)
	require.True(t, shouldExit)
	require.Contains(t, out.String(), "Usage:")
}

func TestParse_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	_, _, err := cli.Parse([]string{"-log-level", "loud", "BUILD.hcl"}, &bytes.Buffer{})
	require.Error(t, err)

	exitErr, ok := err.(*cli.ExitError)
	require.True(t, ok)
	require.Equal(t, 2, exitErr.Code)
}

func TestParse_MalformedConfigValue(t *testing.T) {
	t.Parallel()

	_, _, err := cli.Parse([]string{"-c", "not-a-pair", "BUILD.hcl"}, &bytes.Buffer{})
	require.Error(t, err)
}
