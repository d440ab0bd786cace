// Package typecheck implements the external collaborator "the type
// checker" (§1): given a context and an expression, yield either a type or
// a typing error. It covers the subset of internal/ast exercised by this
// module — Bool/Natural/Integer/Text, non-dependent and rank-1-polymorphic
// function types, records, and lists.
package typecheck

import (
	"fmt"

	"dhall/internal/ast"
	"dhall/internal/normalize"
)

// Context maps free variable names to their type.
type Context struct {
	parent *Context
	name   string
	typ    ast.Expr
}

// Empty is the starting typing context with no bindings.
var Empty *Context

// Extend returns a new context with name:typ bound in front of c.
func (c *Context) Extend(name string, typ ast.Expr) *Context {
	return &Context{parent: c, name: name, typ: typ}
}

// Lookup finds the type bound to name, innermost first. index selects
// among multiple same-named bindings the way ast.Var.Index does.
func (c *Context) Lookup(name string, index int) (ast.Expr, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.name == name {
			if index == 0 {
				return cur.typ, true
			}
			index--
		}
	}
	return nil, false
}

// TypeOf infers the type of e under ctx, or returns a typing error. e must
// contain no ast.Embed or ast.ImportAlt nodes — those are the resolver's
// job to eliminate first.
func TypeOf(ctx *Context, e ast.Expr) (ast.Expr, error) {
	switch v := e.(type) {
	case ast.Var:
		t, ok := ctx.Lookup(v.Name, v.Index)
		if !ok {
			return nil, fmt.Errorf("unbound variable %s", v.Name)
		}
		return t, nil

	case ast.Builtin:
		switch v.Name {
		case ast.BoolType, ast.Natural, ast.Integer, ast.TextType:
			return ast.Builtin{Name: ast.TypeConst}, nil
		case ast.TypeConst:
			return ast.Builtin{Name: ast.KindConst}, nil
		}
		return nil, fmt.Errorf("unknown builtin %s", v.Name)

	case ast.BoolLit:
		return ast.Builtin{Name: ast.BoolType}, nil
	case ast.NaturalLit, ast.IntegerLit:
		return ast.Builtin{Name: ast.Integer}, nil
	case ast.TextLit:
		return ast.Builtin{Name: ast.TextType}, nil

	case ast.BoolEQ:
		if err := expectType(ctx, v.L, ast.Builtin{Name: ast.BoolType}); err != nil {
			return nil, err
		}
		if err := expectType(ctx, v.R, ast.Builtin{Name: ast.BoolType}); err != nil {
			return nil, err
		}
		return ast.Builtin{Name: ast.BoolType}, nil

	case ast.Lambda:
		if _, err := TypeOf(ctx, v.Type); err != nil {
			return nil, err
		}
		bodyCtx := ctx.Extend(v.Label, v.Type)
		bodyType, err := TypeOf(bodyCtx, v.Body)
		if err != nil {
			return nil, err
		}
		return ast.Pi{Label: v.Label, Type: v.Type, Body: bodyType}, nil

	case ast.Pi:
		if _, err := TypeOf(ctx, v.Type); err != nil {
			return nil, err
		}
		bodyCtx := ctx.Extend(v.Label, v.Type)
		if _, err := TypeOf(bodyCtx, v.Body); err != nil {
			return nil, err
		}
		return ast.Builtin{Name: ast.TypeConst}, nil

	case ast.App:
		fnType, err := TypeOf(ctx, v.Fn)
		if err != nil {
			return nil, err
		}
		pi, ok := normalize.Normalize(fnType).(ast.Pi)
		if !ok {
			return nil, fmt.Errorf("not a function: %T", v.Fn)
		}
		if err := expectType(ctx, v.Arg, pi.Type); err != nil {
			return nil, err
		}
		return normalize.Normalize(normalize.Subst(pi.Body, pi.Label, v.Arg)), nil

	case ast.RecordLit:
		fields := make([]ast.Field, len(v.Fields))
		for i, f := range v.Fields {
			t, err := TypeOf(ctx, f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.Field{Name: f.Name, Value: t}
		}
		return ast.RecordType{Fields: fields}, nil

	case ast.RecordType:
		for _, f := range v.Fields {
			if _, err := TypeOf(ctx, f.Value); err != nil {
				return nil, err
			}
		}
		return ast.Builtin{Name: ast.TypeConst}, nil

	case ast.ListType:
		if _, err := TypeOf(ctx, v.Elem); err != nil {
			return nil, err
		}
		return ast.Builtin{Name: ast.TypeConst}, nil

	case ast.ListLit:
		var elemType ast.Expr
		if v.Elem != nil {
			elemType = v.Elem
		} else if len(v.Elems) > 0 {
			t, err := TypeOf(ctx, v.Elems[0])
			if err != nil {
				return nil, err
			}
			elemType = t
		} else {
			return nil, fmt.Errorf("empty list literal requires an element type annotation")
		}
		for _, el := range v.Elems {
			if err := expectType(ctx, el, elemType); err != nil {
				return nil, err
			}
		}
		return ast.ListType{Elem: elemType}, nil

	case ast.Embed:
		return nil, fmt.Errorf("internal error: unresolved import leaf reached the type checker")
	case ast.ImportAlt:
		return nil, fmt.Errorf("internal error: unresolved import alternative reached the type checker")
	}
	return nil, fmt.Errorf("typecheck: unhandled node %T", e)
}

// expectType checks that e has type expected, up to α/β-equivalence.
func expectType(ctx *Context, e ast.Expr, expected ast.Expr) error {
	actual, err := TypeOf(ctx, e)
	if err != nil {
		return err
	}
	if !Equivalent(actual, expected) {
		return fmt.Errorf("type mismatch: expected %s, got %s", Render(expected), Render(actual))
	}
	return nil
}

// Equivalent reports whether two types are equal up to α/β-equivalence,
// i.e. whether their normal, α-normal forms coincide.
func Equivalent(a, b ast.Expr) bool {
	na := normalize.AlphaNormalize(normalize.Normalize(a))
	nb := normalize.AlphaNormalize(normalize.Normalize(b))
	return structEqual(na, nb)
}

func structEqual(a, b ast.Expr) bool {
	switch av := a.(type) {
	case ast.Var:
		bv, ok := b.(ast.Var)
		return ok && av.Name == bv.Name && av.Index == bv.Index
	case ast.Builtin:
		bv, ok := b.(ast.Builtin)
		return ok && av.Name == bv.Name
	case ast.BoolLit:
		bv, ok := b.(ast.BoolLit)
		return ok && av == bv
	case ast.NaturalLit:
		bv, ok := b.(ast.NaturalLit)
		return ok && av == bv
	case ast.IntegerLit:
		bv, ok := b.(ast.IntegerLit)
		return ok && av == bv
	case ast.TextLit:
		bv, ok := b.(ast.TextLit)
		return ok && av.Chunk == bv.Chunk
	case ast.Lambda:
		bv, ok := b.(ast.Lambda)
		return ok && structEqual(av.Type, bv.Type) && structEqual(av.Body, bv.Body)
	case ast.Pi:
		bv, ok := b.(ast.Pi)
		return ok && structEqual(av.Type, bv.Type) && structEqual(av.Body, bv.Body)
	case ast.App:
		bv, ok := b.(ast.App)
		return ok && structEqual(av.Fn, bv.Fn) && structEqual(av.Arg, bv.Arg)
	case ast.BoolEQ:
		bv, ok := b.(ast.BoolEQ)
		return ok && structEqual(av.L, bv.L) && structEqual(av.R, bv.R)
	case ast.RecordLit:
		bv, ok := b.(ast.RecordLit)
		return ok && fieldsEqual(av.Fields, bv.Fields)
	case ast.RecordType:
		bv, ok := b.(ast.RecordType)
		return ok && fieldsEqual(av.Fields, bv.Fields)
	case ast.ListType:
		bv, ok := b.(ast.ListType)
		return ok && structEqual(av.Elem, bv.Elem)
	case ast.ListLit:
		bv, ok := b.(ast.ListLit)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !structEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func fieldsEqual(a, b []ast.Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !structEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// Render is a minimal, debug-oriented rendering of e used in error
// messages; it is not the pretty-printer (out of scope per §1).
func Render(e ast.Expr) string {
	return fmt.Sprintf("%+v", e)
}
