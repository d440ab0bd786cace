// Package dherr holds the core's concrete error taxonomy (§7) as plain
// error structs. Wrapf and Errorf re-export github.com/pkg/errors the way
// the teacher's base/contract and cache packages build their own errors;
// the envelope helpers (AsOne, AsImported) build the structs directly and
// record no stack trace.
package dherr

import (
	"fmt"

	"github.com/pkg/errors"

	"dhall/internal/ast"
)

// MissingFile means a local import's file does not exist.
type MissingFile struct{ Path string }

func (e *MissingFile) Error() string { return fmt.Sprintf("missing file %s", e.Path) }

// MissingEnvironmentVariable means an env: import's variable is unset.
type MissingEnvironmentVariable struct{ Name string }

func (e *MissingEnvironmentVariable) Error() string {
	return fmt.Sprintf("missing environment variable %s", e.Name)
}

// CannotImportHTTPURL means a Remote import could not be fetched (HTTP
// disabled, non-2xx response, transport error).
type CannotImportHTTPURL struct {
	URL    string
	Reason string
}

func (e *CannotImportHTTPURL) Error() string {
	return fmt.Sprintf("cannot import HTTP URL %s: %s", e.URL, e.Reason)
}

// Cycle means the import graph closes back on an ancestor.
type Cycle struct{ Import ast.Import }

func (e *Cycle) Error() string { return "cyclic import" }

// ReferentiallyOpaque means a non-local import tried to depend on a local
// child (§3 invariant 5).
type ReferentiallyOpaque struct{ Import ast.Import }

func (e *ReferentiallyOpaque) Error() string { return "referentially opaque import" }

// HashMismatch means the SHA-256 of a resolved/cached expression disagreed
// with the hash pinned on the import.
type HashMismatch struct {
	Expected string
	Actual   string
}

func (e *HashMismatch) Error() string {
	return fmt.Sprintf("hash mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// MissingImports is the aggregate-failure envelope (§7) that the `?`
// operator catches and merges. An empty MissingImports (Causes == nil) is
// the sentinel raised by the `missing` locator.
type MissingImports struct {
	Causes []error
}

func (e *MissingImports) Error() string {
	if len(e.Causes) == 0 {
		return "missing"
	}
	msg := fmt.Sprintf("%d import(s) failed:", len(e.Causes))
	for _, c := range e.Causes {
		msg += "\n  " + c.Error()
	}
	return msg
}

// Imported wraps any failure raised while resolving a specific import with
// the stack of enclosing imports at the moment of failure (§7).
type Imported struct {
	Stack []ast.Import
	Cause error
}

func (e *Imported) Error() string {
	return fmt.Sprintf("error: %v\nimport stack:\n%s", e.Cause, formatStack(e.Stack))
}

func (e *Imported) Unwrap() error { return e.Cause }

func formatStack(stack []ast.Import) string {
	out := ""
	for i := len(stack) - 1; i >= 0; i-- {
		out += fmt.Sprintf("  %d: %+v\n", len(stack)-1-i, stack[i])
	}
	return out
}

// AsOne wraps err as a MissingImports of length 1, the one-deep pattern
// every fetch/parse/type/integrity failure funnels through (§4.2, §9).
func AsOne(err error) *MissingImports {
	return &MissingImports{Causes: []error{err}}
}

// AsImported wraps err as an Imported envelope carrying stack, unless err is
// already a MissingImports of length 0 (from `missing`), which must pass
// through unchanged so `?` can keep searching (§7). A MissingImports of any
// other length stays a MissingImports — only its causes get Imported-wrapped
// — so `?` can recover uniformly regardless of recursion depth (§9, "the
// one-deep MissingImports([e]) pattern").
func AsImported(stack []ast.Import, err error) error {
	if mi, ok := errors.Cause(err).(*MissingImports); ok {
		if len(mi.Causes) == 0 {
			return err
		}
		wrapped := make([]error, len(mi.Causes))
		for i, c := range mi.Causes {
			wrapped[i] = &Imported{Stack: stack, Cause: c}
		}
		return &MissingImports{Causes: wrapped}
	}
	return &Imported{Stack: stack, Cause: err}
}

// AsMissingImports reports whether err is (or wraps) a *MissingImports, and
// returns it. Used by the `?` operator (§4.5) which recovers only this
// envelope.
func AsMissingImports(err error) (*MissingImports, bool) {
	mi, ok := errors.Cause(err).(*MissingImports)
	return mi, ok
}

// Wrapf re-exports github.com/pkg/errors.Wrapf.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Errorf re-exports github.com/pkg/errors.Errorf.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}
