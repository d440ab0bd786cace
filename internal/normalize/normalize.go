package normalize

import "dhall/internal/ast"

// Normalize performs innermost-first β/η-reduction (§1, §4.5 step 8). It
// assumes e has already been fully resolved (no ast.Embed / ast.ImportAlt
// nodes remain); those are the resolver's job, not the normalizer's.
func Normalize(e ast.Expr) ast.Expr {
	e = e.Walk(Normalize)
	switch v := e.(type) {
	case ast.App:
		if lam, ok := v.Fn.(ast.Lambda); ok {
			return Normalize(Subst(lam.Body, lam.Label, v.Arg))
		}
		return v
	case ast.BoolEQ:
		l, lok := v.L.(ast.BoolLit)
		r, rok := v.R.(ast.BoolLit)
		if lok && rok {
			return ast.BoolLit(l == r)
		}
		return v
	case ast.Lambda:
		// η-reduction: λ(x : T) → f x  ~>  f, when x is not free in f.
		if app, ok := v.Body.(ast.App); ok {
			if arg, ok := app.Arg.(ast.Var); ok && arg.Name == v.Label && arg.Index == 0 {
				if !FreeVars(app.Fn)[v.Label] {
					return app.Fn
				}
			}
		}
		return v
	default:
		return v
	}
}

// AlphaNormalize renames every bound variable to "_", using Var.Index to
// disambiguate references the way Dhall's own α-normal form does, so two
// expressions differing only in bound-variable spelling compare and hash
// identically (§3, §8 property 3).
func AlphaNormalize(e ast.Expr) ast.Expr {
	return alpha(e, nil)
}

// scope is the stack of original binder names in scope, outermost first.
func alpha(e ast.Expr, scope []string) ast.Expr {
	switch v := e.(type) {
	case ast.Var:
		depth := -1
		for i := len(scope) - 1; i >= 0; i-- {
			if scope[i] == v.Name {
				depth = len(scope) - 1 - i
				break
			}
		}
		if depth < 0 {
			// free variable: left untouched.
			return v
		}
		return ast.Var{Name: "_", Index: depth}
	case ast.Lambda:
		newType := alpha(v.Type, scope)
		newBody := alpha(v.Body, append(append([]string{}, scope...), v.Label))
		return ast.Lambda{Label: "_", Type: newType, Body: newBody}
	case ast.Pi:
		newType := alpha(v.Type, scope)
		newBody := alpha(v.Body, append(append([]string{}, scope...), v.Label))
		return ast.Pi{Label: "_", Type: newType, Body: newBody}
	default:
		return e.Walk(func(c ast.Expr) ast.Expr { return alpha(c, scope) })
	}
}
