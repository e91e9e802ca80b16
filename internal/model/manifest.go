package model

// Rule is one recorded rule declaration: its kind (the block type that
// declared it), its name, and the fully evaluated attribute map.
type Rule struct {
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Manifest is the complete output of parsing one build file. It is
// assembled once per parse and never mutated afterwards.
type Manifest struct {
	// Rules lists the declared rules in declaration order.
	Rules []Rule `json:"rules"`

	// LoadedPaths is the transitive closure of files that participated
	// in producing this manifest: the build file itself first, then
	// every loaded extension's closure in first-seen order, with
	// duplicates removed. Callers use it as a cache/invalidation key.
	LoadedPaths []string `json:"loaded_paths"`

	// ConfigReads lists the configuration keys read during evaluation
	// as "section.field", in first-read order, deduplicated.
	ConfigReads []string `json:"config_reads,omitempty"`

	// GlobSnapshots records every distinct glob query issued during
	// evaluation together with its result, in first-issued order.
	GlobSnapshots []GlobSnapshot `json:"glob_snapshots,omitempty"`
}

// FlattenClosures builds a loaded-path closure: self first, then each
// dependency closure in order. Duplicates across dependency subtrees
// are kept; consumers that need uniqueness treat the result as a set.
func FlattenClosures(self string, closures [][]string) []string {
	size := 1
	for _, c := range closures {
		size += len(c)
	}
	out := make([]string, 0, size)
	out = append(out, self)
	for _, c := range closures {
		out = append(out, c...)
	}
	return out
}

// DedupPaths removes duplicates from a path closure while preserving
// first-seen order.
func DedupPaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
