package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImport_Forms(t *testing.T) {
	containing := Label{Cell: "main", Package: "src/app", Name: "BUILD.hcl"}

	tests := []struct {
		name string
		spec string
		want Label
	}{
		{
			name: "same package",
			spec: ":defs.hcl",
			want: Label{Cell: "main", Package: "src/app", Name: "defs.hcl"},
		},
		{
			name: "absolute in same cell",
			spec: "//lib:defs.hcl",
			want: Label{Cell: "main", Package: "lib", Name: "defs.hcl"},
		},
		{
			name: "absolute in cell root",
			spec: "//:defs.hcl",
			want: Label{Cell: "main", Package: "", Name: "defs.hcl"},
		},
		{
			name: "explicit cell",
			spec: "@tools//macros:go.hcl",
			want: Label{Cell: "tools", Package: "macros", Name: "go.hcl"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseImport(tt.spec, containing)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseImport_Malformed(t *testing.T) {
	containing := Label{Cell: "main", Package: "src", Name: "BUILD.hcl"}

	for _, spec := range []string{"", "defs.hcl", ":", "//lib", "@//lib:defs.hcl", "@tools:defs.hcl"} {
		_, err := ParseImport(spec, containing)
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestImportReference_Identity(t *testing.T) {
	a := Label{Cell: "main", Package: "pkg", Name: "BUILD.hcl"}
	b := Label{Cell: "main", Package: "other", Name: "BUILD.hcl"}

	// Same specifier from the same file is one identity; from another
	// file it is a distinct one.
	assert.Equal(t,
		ImportReference{ContainingLabel: a, Import: "//lib:defs.hcl"},
		ImportReference{ContainingLabel: a, Import: "//lib:defs.hcl"})
	assert.NotEqual(t,
		ImportReference{ContainingLabel: a, Import: "//lib:defs.hcl"},
		ImportReference{ContainingLabel: b, Import: "//lib:defs.hcl"})
}

func TestLabel_Strings(t *testing.T) {
	l := Label{Cell: "main", Package: "src/app", Name: "BUILD.hcl"}
	assert.Equal(t, "@main//src/app:BUILD.hcl", l.String())
	assert.Equal(t, "src/app/BUILD.hcl", l.PathFragment())

	root := Label{Cell: "main", Package: "", Name: "defs.hcl"}
	assert.Equal(t, "defs.hcl", root.PathFragment())
}
