package resolver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/skyparse/internal/config"
	"github.com/vk/skyparse/internal/label"
	"github.com/vk/skyparse/internal/model"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	opts, err := config.New(config.Options{
		ProjectRoot: absPath(t, "/repo"),
		CellName:    "main",
		CellRoots: map[string]string{
			"tools": absPath(t, "/cells/tools"),
		},
	})
	require.NoError(t, err)
	return New(opts)
}

func absPath(t *testing.T, p string) string {
	t.Helper()
	abs, err := filepath.Abs(p)
	require.NoError(t, err)
	return abs
}

func TestResolve_MainCell(t *testing.T) {
	r := newTestResolver(t)
	containing := label.Label{Cell: "main", Package: "src/app", Name: "BUILD.hcl"}

	got, err := r.Resolve(containing, "//lib:defs.hcl")
	require.NoError(t, err)
	assert.Equal(t, absPath(t, "/repo/lib/defs.hcl"), got)

	// Same-directory relative import is allowed.
	got, err = r.Resolve(containing, ":defs.hcl")
	require.NoError(t, err)
	assert.Equal(t, absPath(t, "/repo/src/app/defs.hcl"), got)
}

func TestResolve_OtherCell(t *testing.T) {
	r := newTestResolver(t)
	containing := label.Label{Cell: "main", Package: "src", Name: "BUILD.hcl"}

	got, err := r.Resolve(containing, "@tools//macros:go.hcl")
	require.NoError(t, err)
	assert.Equal(t, absPath(t, "/cells/tools/macros/go.hcl"), got)
}

func TestResolve_RejectsNestedRelativeImport(t *testing.T) {
	r := newTestResolver(t)
	containing := label.Label{Cell: "main", Package: "src", Name: "BUILD.hcl"}

	// Rejected regardless of whether the target exists.
	_, err := r.Resolve(containing, ":nested/defs.hcl")
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidRelativeImport, model.KindOf(err))
}

func TestResolve_UnknownRepository(t *testing.T) {
	r := newTestResolver(t)
	containing := label.Label{Cell: "main", Package: "src", Name: "BUILD.hcl"}

	_, err := r.Resolve(containing, "@missing//lib:defs.hcl")
	require.Error(t, err)
	assert.Equal(t, model.KindUnknownRepository, model.KindOf(err))
	assert.Contains(t, err.Error(), "missing")
	assert.Contains(t, err.Error(), "@missing//lib:defs.hcl")
}

func TestResolve_InheritsContainingCell(t *testing.T) {
	r := newTestResolver(t)
	containing := label.Label{Cell: "tools", Package: "macros", Name: "go.hcl"}

	// An absolute import without a cell stays in the containing cell.
	got, err := r.Resolve(containing, "//common:util.hcl")
	require.NoError(t, err)
	assert.Equal(t, absPath(t, "/cells/tools/common/util.hcl"), got)
}
