package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"

	"dhall/internal/ast"
	"dhall/internal/binary"
	"dhall/internal/cache"
	"dhall/internal/dherr"
	"dhall/internal/fetch"
	"dhall/internal/hashkit"
	"dhall/internal/normalize"
	"dhall/internal/syntax"
	"dhall/internal/typecheck"
)

// fakeFetcher resolves ast.Local imports by file name against a canned
// source map, ast.Env against an in-memory map, and ast.Missing as the
// empty MissingImports sentinel — a test double for fetch.Fetcher (§2
// "resolver: the fetcher function, indirected").
type fakeFetcher struct {
	files map[string]string
	env   map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, imp ast.Import) (fetch.Result, error) {
	switch loc := imp.Locator.(type) {
	case ast.Local:
		text, ok := f.files[loc.File]
		if !ok {
			return fetch.Result{}, dherr.AsOne(&dherr.MissingFile{Path: loc.File})
		}
		return fetch.Result{DisplayPath: loc.File, Text: text}, nil
	case ast.Env:
		v, ok := f.env[loc.Name]
		if !ok {
			return fetch.Result{}, dherr.AsOne(&dherr.MissingEnvironmentVariable{Name: loc.Name})
		}
		return fetch.Result{DisplayPath: "env:" + loc.Name, Text: v}, nil
	case ast.Missing:
		return fetch.Result{}, &dherr.MissingImports{}
	}
	return fetch.Result{}, dherr.AsOne(dherr.Errorf("fakeFetcher: unsupported locator %T", imp.Locator))
}

func statusWithFiles(files map[string]string) *Status {
	return EmptyStatus(".").WithFetcher(&fakeFetcher{files: files})
}

// testCache builds a mem://-backed integrity cache so hash-pinned tests
// never touch the real filesystem cache root.
func testCache(name string) *cache.Cache {
	return cache.New(afs.New(), "mem://localhost/dhall-cache/"+name)
}

// TestResolvePolymorphicIdentityImport mirrors S1: "./id Bool True" where
// ./id resolves to the rank-1-polymorphic identity function.
func TestResolvePolymorphicIdentityImport(t *testing.T) {
	st := statusWithFiles(map[string]string{
		"id": "λ(a : Type) → λ(x : a) → x",
	})
	parsed, err := syntax.Parse("./id Bool True")
	if !assert.NoError(t, err) {
		return
	}
	resolved, err := LoadWith(context.Background(), st, parsed)
	if !assert.NoError(t, err) {
		return
	}
	assert.False(t, ast.HasImports(resolved))
	typ, err := typecheck.TypeOf(typecheck.Empty, resolved)
	if assert.NoError(t, err) {
		assert.True(t, typecheck.Equivalent(typ, ast.Builtin{Name: ast.BoolType}))
	}
	assert.Equal(t, ast.BoolLit(true), normalize.Normalize(resolved))
}

// TestResolveDetectsCycle mirrors S2: a imports b, b imports a.
func TestResolveDetectsCycle(t *testing.T) {
	st := statusWithFiles(map[string]string{
		"a": "./b",
		"b": "./a",
	})
	parsed, err := syntax.Parse("./a")
	if !assert.NoError(t, err) {
		return
	}
	_, err = LoadWith(context.Background(), st, parsed)
	if assert.Error(t, err) {
		var imported *dherr.Imported
		if assert.ErrorAs(t, err, &imported) {
			var cycle *dherr.Cycle
			assert.ErrorAs(t, imported, &cycle)
		}
	}
}

// TestResolveAlternativeRecoversFromMissingLeft mirrors S5: `missing ? X`
// recovers to X's value when X succeeds.
func TestResolveAlternativeRecoversFromMissingLeft(t *testing.T) {
	st := statusWithFiles(map[string]string{
		"fallback": "True",
	})
	parsed, err := syntax.Parse("missing ? ./fallback")
	if !assert.NoError(t, err) {
		return
	}
	resolved, err := LoadWith(context.Background(), st, parsed)
	if assert.NoError(t, err) {
		assert.Equal(t, ast.BoolLit(true), resolved)
	}
}

// TestResolveAlternativeAggregatesWhenBothFail exercises §8 property 8:
// when both sides of `?` fail, the causes accumulate into one
// MissingImports rather than reporting only the last failure.
func TestResolveAlternativeAggregatesWhenBothFail(t *testing.T) {
	st := statusWithFiles(map[string]string{})
	parsed, err := syntax.Parse("./nope1 ? ./nope2")
	if !assert.NoError(t, err) {
		return
	}
	_, err = LoadWith(context.Background(), st, parsed)
	mi, ok := dherr.AsMissingImports(err)
	if assert.True(t, ok) {
		assert.Len(t, mi.Causes, 2)
	}
}

// TestResolveMemoizesRepeatedImport checks that importing the same file
// twice only needs it to be fetchable once — the second occurrence is
// served from the memo (§3 "memo").
func TestResolveMemoizesRepeatedImport(t *testing.T) {
	calls := 0
	st := EmptyStatus(".").WithFetcher(fetcherFunc(func(_ context.Context, imp ast.Import) (fetch.Result, error) {
		if loc, ok := imp.Locator.(ast.Local); ok && loc.File == "shared" {
			calls++
			return fetch.Result{DisplayPath: "shared", Text: "True"}, nil
		}
		return fetch.Result{}, dherr.AsOne(&dherr.MissingFile{Path: loc(imp)})
	}))
	parsed, err := syntax.Parse("{ a = ./shared, b = ./shared }")
	if !assert.NoError(t, err) {
		return
	}
	_, err = LoadWith(context.Background(), st, parsed)
	if assert.NoError(t, err) {
		assert.Equal(t, 1, calls, "a repeated import must be fetched at most once")
	}
}

// TestResolveDetectsHashMismatch mirrors S6: a pinned hash that does not
// match the fetched content's digest fails resolution.
func TestResolveDetectsHashMismatch(t *testing.T) {
	st := statusWithFiles(map[string]string{
		"pinned": "True",
	}).WithCache(testCache("case-mismatch"))
	parsed, err := syntax.Parse("./pinned sha256:" + sixtyFourZeros())
	if !assert.NoError(t, err) {
		return
	}
	_, err = LoadWith(context.Background(), st, parsed)
	if assert.Error(t, err) {
		var mismatch *dherr.HashMismatch
		assert.ErrorAs(t, err, &mismatch)
	}
}

// TestResolveAcceptsMatchingHash confirms the positive case of S6: the
// real digest of the fetched, normalized expression is accepted.
func TestResolveAcceptsMatchingHash(t *testing.T) {
	code, err := hashkit.HashExpressionToCode(binary.ProtocolV1, normalize.AlphaNormalize(ast.BoolLit(true)))
	if !assert.NoError(t, err) {
		return
	}
	hex := code[len("sha256:"):]

	st := statusWithFiles(map[string]string{"pinned": "True"}).WithCache(testCache("case-match"))
	parsed, err := syntax.Parse("./pinned sha256:" + hex)
	if !assert.NoError(t, err) {
		return
	}
	resolved, err := LoadWith(context.Background(), st, parsed)
	if assert.NoError(t, err) {
		assert.Equal(t, ast.BoolLit(true), resolved)
	}
}

// TestResolveWritesThroughIntegrityCache exercises §4.4's write path and
// confirms a subsequent resolution of the same hashed import can be served
// straight from the cache without the fetcher being consulted.
func TestResolveWritesThroughIntegrityCache(t *testing.T) {
	code, err := hashkit.HashExpressionToCode(binary.ProtocolV1, normalize.AlphaNormalize(ast.BoolLit(true)))
	if !assert.NoError(t, err) {
		return
	}
	hex := code[len("sha256:"):]
	c := testCache("resolve-case")

	st1 := statusWithFiles(map[string]string{"pinned": "True"}).WithCache(c)
	parsed, err := syntax.Parse("./pinned sha256:" + hex)
	if !assert.NoError(t, err) {
		return
	}
	_, err = LoadWith(context.Background(), st1, parsed)
	if !assert.NoError(t, err) {
		return
	}

	calls := 0
	st2 := EmptyStatus(".").WithCache(c).WithFetcher(fetcherFunc(func(_ context.Context, imp ast.Import) (fetch.Result, error) {
		calls++
		return fetch.Result{}, dherr.AsOne(&dherr.MissingFile{Path: "should not be reached"})
	}))
	resolved, err := LoadWith(context.Background(), st2, parsed)
	if assert.NoError(t, err) {
		assert.Equal(t, ast.BoolLit(true), resolved)
		assert.Equal(t, 0, calls, "a cache hit must not fall through to the fetcher")
	}
}

type fetcherFunc func(ctx context.Context, imp ast.Import) (fetch.Result, error)

func (f fetcherFunc) Fetch(ctx context.Context, imp ast.Import) (fetch.Result, error) {
	return f(ctx, imp)
}

func loc(imp ast.Import) string {
	if l, ok := imp.Locator.(ast.Local); ok {
		return l.File
	}
	return "?"
}

func sixtyFourZeros() string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}
