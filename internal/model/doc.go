// Package model defines the immutable result types produced by parsing
// a build file: the manifest with its declared rules, the transitive
// loaded-path closure, recorded configuration reads and glob snapshots,
// plus the shared extension/include records and the typed error
// taxonomy used across the parser boundary.
package model
