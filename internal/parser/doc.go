// Package parser orchestrates build-file evaluation: it parses one
// build file, resolves and memoizes its transitive load/include
// references, wires the evaluation environment with loaded extensions,
// builtin functions and a recording globber, executes the file, and
// assembles the immutable manifest.
//
// A Parser is safe for concurrent use; its memoizing caches are the
// only state shared between concurrent ParseBuildFile calls.
package parser
