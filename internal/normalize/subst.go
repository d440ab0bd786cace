// Package normalize implements β/η-reduction and α-normalization (§1,
// external collaborator "the normalizer"). It operates on the subset of
// internal/ast exercised by this module: functions, booleans, records,
// lists, and the `==` operator.
package normalize

import (
	"fmt"
	"sync/atomic"

	"dhall/internal/ast"
)

var gensymCounter int64

func gensym(base string) string {
	n := atomic.AddInt64(&gensymCounter, 1)
	return fmt.Sprintf("%s~%d", base, n)
}

// FreeVars returns the set of free variable names in e.
func FreeVars(e ast.Expr) map[string]bool {
	free := map[string]bool{}
	collect(e, free)
	return free
}

func collect(e ast.Expr, free map[string]bool) {
	switch v := e.(type) {
	case ast.Var:
		free[v.Name] = true
		return
	case ast.Lambda:
		collect(v.Type, free)
		inner := map[string]bool{}
		collect(v.Body, inner)
		delete(inner, v.Label)
		for k := range inner {
			free[k] = true
		}
		return
	case ast.Pi:
		collect(v.Type, free)
		inner := map[string]bool{}
		collect(v.Body, inner)
		delete(inner, v.Label)
		for k := range inner {
			free[k] = true
		}
		return
	}
	e.Walk(func(c ast.Expr) ast.Expr {
		collect(c, free)
		return c
	})
}

// rename replaces every bound occurrence of Var{old} with Var{new} in e,
// stopping at any binder that shadows old (that binder's body refers to its
// own old, not the outer one).
func rename(e ast.Expr, old, new string) ast.Expr {
	switch v := e.(type) {
	case ast.Var:
		if v.Name == old {
			return ast.Var{Name: new, Index: v.Index}
		}
		return v
	case ast.Lambda:
		newType := rename(v.Type, old, new)
		if v.Label == old {
			return ast.Lambda{Label: v.Label, Type: newType, Body: v.Body}
		}
		return ast.Lambda{Label: v.Label, Type: newType, Body: rename(v.Body, old, new)}
	case ast.Pi:
		newType := rename(v.Type, old, new)
		if v.Label == old {
			return ast.Pi{Label: v.Label, Type: newType, Body: v.Body}
		}
		return ast.Pi{Label: v.Label, Type: newType, Body: rename(v.Body, old, new)}
	default:
		return e.Walk(func(c ast.Expr) ast.Expr { return rename(c, old, new) })
	}
}

// Subst performs capture-avoiding substitution of Var{name} with value in
// e, alpha-renaming binders on demand when value's free variables would
// otherwise be captured.
func Subst(e ast.Expr, name string, value ast.Expr) ast.Expr {
	switch v := e.(type) {
	case ast.Var:
		if v.Name == name && v.Index == 0 {
			return value
		}
		return v
	case ast.Lambda:
		newType := Subst(v.Type, name, value)
		if v.Label == name {
			return ast.Lambda{Label: v.Label, Type: newType, Body: v.Body}
		}
		if FreeVars(value)[v.Label] {
			fresh := gensym(v.Label)
			body := rename(v.Body, v.Label, fresh)
			return ast.Lambda{Label: fresh, Type: newType, Body: Subst(body, name, value)}
		}
		return ast.Lambda{Label: v.Label, Type: newType, Body: Subst(v.Body, name, value)}
	case ast.Pi:
		newType := Subst(v.Type, name, value)
		if v.Label == name {
			return ast.Pi{Label: v.Label, Type: newType, Body: v.Body}
		}
		if FreeVars(value)[v.Label] {
			fresh := gensym(v.Label)
			body := rename(v.Body, v.Label, fresh)
			return ast.Pi{Label: fresh, Type: newType, Body: Subst(body, name, value)}
		}
		return ast.Pi{Label: v.Label, Type: newType, Body: Subst(v.Body, name, value)}
	default:
		return e.Walk(func(c ast.Expr) ast.Expr { return Subst(c, name, value) })
	}
}
