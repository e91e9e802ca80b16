// Package syntax is the HCL binding of the build-file language: it
// parses source into an AST, extracts load/include references without
// evaluating anything, and executes a file against a scoped evaluation
// environment. The rest of the parser treats this package as the
// opaque interpreter collaborator.
package syntax
