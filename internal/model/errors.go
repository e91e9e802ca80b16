package model

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a parse failure. Every error crossing the parser
// boundary carries exactly one kind; errors surfacing from a recursive
// load keep their original kind through the memoizing cache layer.
type Kind int

const (
	// KindUnknown marks errors that did not originate in this package.
	KindUnknown Kind = iota

	// KindParse: the source could not be parsed.
	KindParse

	// KindMissingFile: a referenced file does not exist.
	KindMissingFile

	// KindInvalidRelativeImport: a same-package reference crosses
	// directories.
	KindInvalidRelativeImport

	// KindUnknownRepository: a reference names a cell absent from the
	// configured root table.
	KindUnknownRepository

	// KindEvaluation: the file parsed but executing it failed.
	KindEvaluation

	// KindCyclicImport: a load chain references one of its ancestors.
	KindCyclicImport

	// KindCancelled: cooperative cancellation aborted the operation.
	KindCancelled

	// KindIO: a file-system access failed for a reason other than the
	// file being absent.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindMissingFile:
		return "missing file"
	case KindInvalidRelativeImport:
		return "invalid relative import"
	case KindUnknownRepository:
		return "unknown repository"
	case KindEvaluation:
		return "evaluation error"
	case KindCyclicImport:
		return "cyclic import"
	case KindCancelled:
		return "cancelled"
	case KindIO:
		return "io error"
	default:
		return "unknown error"
	}
}

// Error is the typed failure returned by parse and load operations.
type Error struct {
	Kind Kind
	// Msg is the rendered, user-facing message.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two typed errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the kind of err, unwrapping as needed. Context
// cancellation and deadline errors report KindCancelled even when they
// were never wrapped in an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindUnknown
}

// NewParseError reports that path could not be parsed.
func NewParseError(path string, cause error) *Error {
	return &Error{
		Kind: KindParse,
		Msg:  fmt.Sprintf("cannot parse %s: %v", path, cause),
		Err:  cause,
	}
}

// NewMissingFile reports that a referenced file does not exist.
func NewMissingFile(path, referencedFrom string) *Error {
	return &Error{
		Kind: KindMissingFile,
		Msg: fmt.Sprintf(
			"%s cannot be loaded because it does not exist. It was referenced from %s",
			path, referencedFrom),
	}
}

// NewInvalidRelativeImport rejects a same-package reference that
// targets a nested directory.
func NewInvalidRelativeImport(importStr string) *Error {
	return &Error{
		Kind: KindInvalidRelativeImport,
		Msg: fmt.Sprintf(
			"relative loads work only for files in the same directory but %s "+
				"is trying to load a file from a nested directory; "+
				"use an absolute label instead ([cell]//pkg[/pkg]:name)",
			importStr),
	}
}

// NewUnknownRepository reports a reference to a cell missing from the
// root table.
func NewUnknownRepository(repository, importStr string) *Error {
	return &Error{
		Kind: KindUnknownRepository,
		Msg:  fmt.Sprintf("%s references an unknown repository %s", importStr, repository),
	}
}

// NewEvaluationError reports that executing path failed.
func NewEvaluationError(path string, cause error) *Error {
	return &Error{
		Kind: KindEvaluation,
		Msg:  fmt.Sprintf("cannot evaluate %s: %v", path, cause),
		Err:  cause,
	}
}

// NewCyclicImport reports that importStr closes a load cycle through
// the given chain of import specifiers.
func NewCyclicImport(importStr string, chain []string) *Error {
	return &Error{
		Kind: KindCyclicImport,
		Msg:  fmt.Sprintf("%s forms a load cycle: %v", importStr, chain),
	}
}

// NewCancelled wraps a context cancellation.
func NewCancelled(cause error) *Error {
	return &Error{
		Kind: KindCancelled,
		Msg:  fmt.Sprintf("operation cancelled: %v", cause),
		Err:  cause,
	}
}

// NewIOError wraps a file-system failure on path.
func NewIOError(path string, cause error) *Error {
	return &Error{
		Kind: KindIO,
		Msg:  fmt.Sprintf("cannot read %s: %v", path, cause),
		Err:  cause,
	}
}
