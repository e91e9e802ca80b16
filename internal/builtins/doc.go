// Package builtins is the rule-declaration surface injected into build
// file environments: a registry mapping rule kinds to handler
// functions, plus the glob and read_config functions every build file
// can call. Extensions never see any of it.
package builtins
