package model

import (
	"sort"
	"strings"
)

// GlobSpec identifies one glob query. Pattern order is irrelevant to
// identity; two specs with the same pattern sets and directory flag are
// the same query.
type GlobSpec struct {
	Include            []string `json:"include"`
	Exclude            []string `json:"exclude,omitempty"`
	ExcludeDirectories bool     `json:"exclude_directories,omitempty"`
}

// Key returns a canonical string identity for the spec, independent of
// pattern order.
func (s GlobSpec) Key() string {
	var b strings.Builder
	b.WriteString(strings.Join(sortedCopy(s.Include), "\x00"))
	b.WriteString("\x01")
	b.WriteString(strings.Join(sortedCopy(s.Exclude), "\x00"))
	if s.ExcludeDirectories {
		b.WriteString("\x01d")
	}
	return b.String()
}

// GlobSnapshot pairs a glob query with the set of paths it matched at
// evaluation time. Paths are stored sorted; equality is set equality.
type GlobSnapshot struct {
	Spec  GlobSpec `json:"spec"`
	Paths []string `json:"paths"`
}

// SamePaths reports whether the snapshot's match set equals paths,
// compared as sets.
func (s GlobSnapshot) SamePaths(paths []string) bool {
	if len(s.Paths) != len(paths) {
		return false
	}
	set := make(map[string]struct{}, len(s.Paths))
	for _, p := range s.Paths {
		set[p] = struct{}{}
	}
	for _, p := range paths {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
