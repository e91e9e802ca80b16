package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	err := run(out, logs, args)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, logs.String(), "Usage:", "Expected help text to be printed")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	err := run(out, logs, args)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// A missing path makes the startup configuration fail, which the app
	// reports by panicking; run must recover and return it as an error.
	args := []string{filepath.Join(t.TempDir(), "does-not-exist")}
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	err := run(out, logs, args)

	require.Error(t, err, "run() should have returned an error after recovering from a panic")
	require.Contains(t, err.Error(), "application startup panicked")
}

func TestRun_ParsesBuildFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	buildFile := filepath.Join(tempDir, "BUILD.hcl")
	src := `
library "core" {
  srcs = ["core.go"]
}
`
	require.NoError(t, os.WriteFile(buildFile, []byte(src), 0600))

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	err := run(out, logs, []string{buildFile})

	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 1)
	require.Equal(t, buildFile, results[0]["path"])
}
