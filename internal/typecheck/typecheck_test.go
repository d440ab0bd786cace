package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dhall/internal/ast"
)

func TestTypeOfLiterals(t *testing.T) {
	var useCases = []struct {
		description string
		expr        ast.Expr
		expect      ast.Expr
	}{
		{"Bool literal", ast.BoolLit(true), ast.Builtin{Name: ast.BoolType}},
		{"Integer literal", ast.IntegerLit(3), ast.Builtin{Name: ast.Integer}},
		{"Text literal", ast.TextLit{Chunk: "hi"}, ast.Builtin{Name: ast.TextType}},
		{"Bool builtin", ast.Builtin{Name: ast.BoolType}, ast.Builtin{Name: ast.TypeConst}},
	}
	for _, useCase := range useCases {
		actual, err := TypeOf(Empty, useCase.expr)
		if assert.NoError(t, err, useCase.description) {
			assert.True(t, Equivalent(useCase.expect, actual), useCase.description)
		}
	}
}

func TestTypeOfPolymorphicIdentityApplication(t *testing.T) {
	// S1: (λ(a : Type) → λ(x : a) → x) Bool True : Bool
	id := ast.Lambda{
		Label: "a", Type: ast.Builtin{Name: ast.TypeConst},
		Body: ast.Lambda{Label: "x", Type: ast.Var{Name: "a"}, Body: ast.Var{Name: "x"}},
	}
	appliedToBool := ast.App{Fn: id, Arg: ast.Builtin{Name: ast.BoolType}}
	full := ast.App{Fn: appliedToBool, Arg: ast.BoolLit(true)}

	typ, err := TypeOf(Empty, full)
	if assert.NoError(t, err) {
		assert.True(t, Equivalent(typ, ast.Builtin{Name: ast.BoolType}))
	}
}

func TestTypeOfRecord(t *testing.T) {
	rec := ast.RecordLit{Fields: []ast.Field{
		{Name: "foo", Value: ast.IntegerLit(1)},
		{Name: "bar", Value: ast.TextLit{Chunk: "Hi"}},
	}}
	typ, err := TypeOf(Empty, rec)
	if assert.NoError(t, err) {
		expect := ast.RecordType{Fields: []ast.Field{
			{Name: "foo", Value: ast.Builtin{Name: ast.Integer}},
			{Name: "bar", Value: ast.Builtin{Name: ast.TextType}},
		}}
		assert.True(t, Equivalent(typ, expect))
	}
}

func TestTypeOfUnboundVariable(t *testing.T) {
	_, err := TypeOf(Empty, ast.Var{Name: "nope"})
	assert.Error(t, err)
}

func TestTypeOfRejectsUnresolvedImport(t *testing.T) {
	_, err := TypeOf(Empty, ast.Embed{Import: ast.Import{Locator: ast.Missing{}}})
	assert.Error(t, err)
}
