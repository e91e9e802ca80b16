package globber

import (
	"github.com/vk/skyparse/internal/model"
)

// Caching wraps a Globber so that identical queries issued multiple
// times during one evaluation hit the file system once, and so the
// full set of (query, result) pairs can be snapshotted afterwards.
//
// A Caching globber is owned by a single evaluation and is not safe
// for concurrent use.
type Caching struct {
	delegate Globber
	order    []string
	results  map[string]model.GlobSnapshot
}

// NewCaching wraps delegate with query deduplication and recording.
func NewCaching(delegate Globber) *Caching {
	return &Caching{
		delegate: delegate,
		results:  make(map[string]model.GlobSnapshot),
	}
}

// Run evaluates the query, serving repeats from the recorded result.
// Pattern order does not affect query identity.
func (c *Caching) Run(include, exclude []string, excludeDirectories bool) ([]string, error) {
	spec := model.GlobSpec{
		Include:            include,
		Exclude:            exclude,
		ExcludeDirectories: excludeDirectories,
	}
	key := spec.Key()
	if snap, ok := c.results[key]; ok {
		return append([]string(nil), snap.Paths...), nil
	}

	paths, err := c.delegate.Run(include, exclude, excludeDirectories)
	if err != nil {
		return nil, err
	}
	c.order = append(c.order, key)
	c.results[key] = model.GlobSnapshot{Spec: spec, Paths: paths}
	return append([]string(nil), paths...), nil
}

// Snapshot returns every distinct query issued so far and its result,
// in first-issued order.
func (c *Caching) Snapshot() []model.GlobSnapshot {
	out := make([]model.GlobSnapshot, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.results[key])
	}
	return out
}

// MatchesCurrentState re-runs every snapshot's query against g and
// compares the result sets with the recorded ones. It returns false on
// the first mismatch and true only if every snapshot is unchanged,
// which lets a caller reuse a previously produced manifest without
// re-evaluating the build file.
func MatchesCurrentState(g Globber, snapshots []model.GlobSnapshot) (bool, error) {
	c := NewCaching(g)
	for _, snap := range snapshots {
		paths, err := c.Run(snap.Spec.Include, snap.Spec.Exclude, snap.Spec.ExcludeDirectories)
		if err != nil {
			return false, err
		}
		if !snap.SamePaths(paths) {
			return false, nil
		}
	}
	return true, nil
}
