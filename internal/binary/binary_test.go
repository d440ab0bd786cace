package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dhall/internal/ast"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var useCases = []struct {
		description string
		expr        ast.Expr
	}{
		{"variable", ast.Var{Name: "x", Index: 2}},
		{"builtin", ast.Builtin{Name: ast.Natural}},
		{"bool literal true", ast.BoolLit(true)},
		{"bool literal false", ast.BoolLit(false)},
		{"natural literal", ast.NaturalLit(42)},
		{"negative integer literal", ast.IntegerLit(-7)},
		{"positive integer literal", ast.IntegerLit(7)},
		{"text literal", ast.TextLit{Chunk: "hello"}},
		{"lambda", ast.Lambda{Label: "x", Type: ast.Builtin{Name: ast.BoolType}, Body: ast.Var{Name: "x"}}},
		{"pi", ast.Pi{Label: "x", Type: ast.Builtin{Name: ast.BoolType}, Body: ast.Builtin{Name: ast.BoolType}}},
		{"application", ast.App{Fn: ast.Var{Name: "f"}, Arg: ast.NaturalLit(1)}},
		{"bool equality", ast.BoolEQ{L: ast.BoolLit(true), R: ast.BoolLit(false)}},
		{"record literal", ast.RecordLit{Fields: []ast.Field{{Name: "a", Value: ast.NaturalLit(1)}}}},
		{"record type", ast.RecordType{Fields: []ast.Field{{Name: "a", Value: ast.Builtin{Name: ast.Integer}}}}},
		{"list literal with annotation", ast.ListLit{Elem: ast.Builtin{Name: ast.Integer}, Elems: []ast.Expr{ast.IntegerLit(1), ast.IntegerLit(2)}}},
		{"list literal without annotation", ast.ListLit{Elems: []ast.Expr{ast.NaturalLit(1)}}},
		{"list type", ast.ListType{Elem: ast.Builtin{Name: ast.BoolType}}},
	}

	for _, useCase := range useCases {
		encoded, err := Encode(ProtocolV1, useCase.expr)
		if !assert.NoError(t, err, useCase.description) {
			continue
		}
		protocol, decoded, err := Decode(encoded)
		if assert.NoError(t, err, useCase.description) {
			assert.Equal(t, ProtocolV1, protocol, useCase.description)
			assert.Equal(t, useCase.expr, decoded, useCase.description)
		}
	}
}

func TestEncodeRejectsUnresolvedImport(t *testing.T) {
	_, err := Encode(ProtocolV1, ast.Embed{Import: ast.Import{Locator: ast.Missing{}}})
	assert.Error(t, err)
}

func TestEncodeRejectsUnresolvedAlternative(t *testing.T) {
	_, err := Encode(ProtocolV1, ast.ImportAlt{A: ast.BoolLit(true), B: ast.BoolLit(false)})
	assert.Error(t, err)
}

func TestDecodeRejectsEmptyInput(t *testing.T) {
	_, _, err := Decode(nil)
	assert.Error(t, err)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	encoded, err := Encode(ProtocolV1, ast.BoolLit(true))
	if !assert.NoError(t, err) {
		return
	}
	_, _, err = Decode(append(encoded, 0xff))
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	_, _, err := Decode([]byte{byte(ProtocolV1), 0xff})
	assert.Error(t, err)
}
