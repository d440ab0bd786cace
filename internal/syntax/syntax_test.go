package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dhall/internal/ast"
)

func TestParseLocatorForms(t *testing.T) {
	var useCases = []struct {
		description string
		text        string
		expect      ast.Locator
	}{
		{"missing", "missing", ast.Missing{}},
		{"env", "env:FOO", ast.Env{Name: "FOO"}},
		{"here", "./a/b.dhall", ast.Local{Prefix: ast.Here, Dir: []string{"a"}, File: "b.dhall"}},
		{"home", "~/a/b.dhall", ast.Local{Prefix: ast.Home, Dir: []string{"a"}, File: "b.dhall"}},
		{"absolute", "/a/b.dhall", ast.Local{Prefix: ast.Absolute, Dir: []string{"a"}, File: "b.dhall"}},
		{"parent", "../a/b.dhall", ast.Local{Prefix: ast.Parent, Dir: []string{"a"}, File: "b.dhall"}},
	}
	for _, useCase := range useCases {
		actual, err := ParseLocator(useCase.text)
		if assert.NoError(t, err, useCase.description) {
			assert.Equal(t, useCase.expect, actual, useCase.description)
		}
	}
}

func TestParseLocatorRemoteSplitsAuthorityPathQueryFragment(t *testing.T) {
	actual, err := ParseLocator("https://example.com/a/b.dhall?q=1#frag")
	if assert.NoError(t, err) {
		remote, ok := actual.(ast.Remote)
		if assert.True(t, ok) {
			assert.Equal(t, "https", remote.Scheme)
			assert.Equal(t, "example.com", remote.Authority)
			assert.Equal(t, []string{"a", "b.dhall"}, remote.Path)
			if assert.NotNil(t, remote.Query) {
				assert.Equal(t, "q=1", *remote.Query)
			}
			if assert.NotNil(t, remote.Fragment) {
				assert.Equal(t, "frag", *remote.Fragment)
			}
		}
	}
}

func TestParseLocatorRejectsUnrecognized(t *testing.T) {
	_, err := ParseLocator("not-a-locator")
	assert.Error(t, err)
}

func TestParseImportLeaf(t *testing.T) {
	e, err := Parse("./id")
	if assert.NoError(t, err) {
		embed, ok := e.(ast.Embed)
		if assert.True(t, ok) {
			local, ok := embed.Import.Locator.(ast.Local)
			if assert.True(t, ok) {
				assert.Equal(t, "id", local.File)
			}
		}
	}
}

func TestParseApplication(t *testing.T) {
	// "./id Bool True" parses to App(App(Embed(./id), Bool), True).
	e, err := Parse("./id Bool True")
	if assert.NoError(t, err) {
		outer, ok := e.(ast.App)
		if assert.True(t, ok) {
			assert.Equal(t, ast.BoolLit(true), outer.Arg)
			inner, ok := outer.Fn.(ast.App)
			if assert.True(t, ok) {
				assert.Equal(t, ast.Builtin{Name: ast.BoolType}, inner.Arg)
				_, ok := inner.Fn.(ast.Embed)
				assert.True(t, ok)
			}
		}
	}
}

func TestParseRecordLiteralOfEnvImports(t *testing.T) {
	e, err := Parse(`{ foo = env:FOO, bar = env:BAR, baz = env:BAZ }`)
	if assert.NoError(t, err) {
		rec, ok := e.(ast.RecordLit)
		if assert.True(t, ok) {
			assert.Len(t, rec.Fields, 3)
			assert.Equal(t, "foo", rec.Fields[0].Name)
			embed, ok := rec.Fields[0].Value.(ast.Embed)
			if assert.True(t, ok) {
				assert.Equal(t, ast.Env{Name: "FOO"}, embed.Import.Locator)
			}
		}
	}
}

func TestParseAlternativeChain(t *testing.T) {
	e, err := Parse("missing ? env:NOPE ? ./does-not-exist")
	if assert.NoError(t, err) {
		outer, ok := e.(ast.ImportAlt)
		if assert.True(t, ok) {
			inner, ok := outer.A.(ast.ImportAlt)
			if assert.True(t, ok) {
				_, ok := inner.A.(ast.Embed)
				assert.True(t, ok)
				_, ok = inner.B.(ast.Embed)
				assert.True(t, ok)
			}
			_, ok = outer.B.(ast.Embed)
			assert.True(t, ok)
		}
	}
}

func TestParseImportWithHashSuffix(t *testing.T) {
	hex := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	e, err := Parse("./x sha256:" + hex)
	if assert.NoError(t, err) {
		embed, ok := e.(ast.Embed)
		if assert.True(t, ok) {
			if assert.NotNil(t, embed.Import.Hash) {
				assert.Equal(t, hex, *embed.Import.Hash)
			}
		}
	}
}

func TestParseImportAsText(t *testing.T) {
	e, err := Parse("./x as Text")
	if assert.NoError(t, err) {
		embed, ok := e.(ast.Embed)
		if assert.True(t, ok) {
			assert.Equal(t, ast.RawText, embed.Import.Mode)
		}
	}
}

func TestParseLambdaAndPi(t *testing.T) {
	e, err := Parse(`λ(x : Bool) → x`)
	if assert.NoError(t, err) {
		lam, ok := e.(ast.Lambda)
		if assert.True(t, ok) {
			assert.Equal(t, "x", lam.Label)
			assert.Equal(t, ast.Builtin{Name: ast.BoolType}, lam.Type)
		}
	}

	pi, err := Parse(`∀(x : Bool) → Bool`)
	if assert.NoError(t, err) {
		p, ok := pi.(ast.Pi)
		if assert.True(t, ok) {
			assert.Equal(t, "x", p.Label)
		}
	}
}

func TestParseListLiteral(t *testing.T) {
	e, err := Parse("[1, 2, 3]")
	if assert.NoError(t, err) {
		list, ok := e.(ast.ListLit)
		if assert.True(t, ok) {
			assert.Len(t, list.Elems, 3)
		}
	}
}

func TestParseRejectsTrailingInput(t *testing.T) {
	_, err := Parse("True True True )")
	assert.Error(t, err)
}
