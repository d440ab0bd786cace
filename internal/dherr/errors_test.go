package dherr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dhall/internal/ast"
)

func sampleStack() []ast.Import {
	return []ast.Import{{Locator: ast.Local{Prefix: ast.Here, File: "a"}}}
}

func TestAsImportedPassesThroughEmptyMissingImports(t *testing.T) {
	err := AsImported(sampleStack(), &MissingImports{})
	mi, ok := err.(*MissingImports)
	if assert.True(t, ok, "an empty MissingImports must pass through unchanged") {
		assert.Len(t, mi.Causes, 0)
	}
}

func TestAsImportedKeepsSingleCauseMissingImportsEnvelope(t *testing.T) {
	// §9's "one-deep MissingImports([e]) pattern": wrapping a length-1
	// MissingImports must still be a MissingImports, not collapse to a bare
	// *Imported, so `?` can keep recovering regardless of recursion depth.
	inner := &MissingFile{Path: "x"}
	err := AsImported(sampleStack(), AsOne(inner))

	mi, ok := err.(*MissingImports)
	if assert.True(t, ok, "wrapping a length-1 MissingImports must still yield a MissingImports") {
		assert.Len(t, mi.Causes, 1)
		var imported *Imported
		if assert.ErrorAs(t, mi.Causes[0], &imported) {
			assert.Equal(t, inner, imported.Cause)
		}
	}
}

func TestAsImportedWrapsEachCauseOfMultiCauseMissingImports(t *testing.T) {
	inner1 := &MissingFile{Path: "a"}
	inner2 := &MissingEnvironmentVariable{Name: "B"}
	err := AsImported(sampleStack(), &MissingImports{Causes: []error{inner1, inner2}})

	mi, ok := err.(*MissingImports)
	if assert.True(t, ok) {
		assert.Len(t, mi.Causes, 2)
		for _, c := range mi.Causes {
			var imported *Imported
			assert.ErrorAs(t, c, &imported)
		}
	}
}

func TestAsImportedWrapsNonMissingImportsAsBareImported(t *testing.T) {
	err := AsImported(sampleStack(), &Cycle{})
	var imported *Imported
	if assert.ErrorAs(t, err, &imported) {
		_, isMissing := imported.Cause.(*MissingImports)
		assert.False(t, isMissing)
	}
}

func TestAsMissingImportsUnwrapsThroughCause(t *testing.T) {
	mi := &MissingImports{Causes: []error{&MissingFile{Path: "x"}}}
	wrapped := Wrapf(mi, "context")
	got, ok := AsMissingImports(wrapped)
	if assert.True(t, ok) {
		assert.Same(t, mi, got)
	}
}
