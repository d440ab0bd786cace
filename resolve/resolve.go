package resolve

import (
	"context"
	"fmt"

	"dhall/internal/ast"
	"dhall/internal/dherr"
	"dhall/internal/fetch"
	"dhall/internal/hashkit"
	"dhall/internal/normalize"
	"dhall/internal/pathkit"
	"dhall/internal/syntax"
	"dhall/internal/typecheck"
)

// Load resolves e starting from startingDir, per §6 `load(expr)`.
func Load(ctx context.Context, e ast.Expr, startingDir string) (ast.Expr, error) {
	return LoadWith(ctx, EmptyStatus(startingDir), e)
}

// LoadWith resolves e under the given session, per §6 `loadWith(expr)`.
func LoadWith(ctx context.Context, st *Status, e ast.Expr) (ast.Expr, error) {
	return st.resolveExpr(ctx, e)
}

// ExprFromImport fetches and parses (but does not recursively resolve) a
// single import, per §6 `exprFromImport(import)` — the base layer the
// resolver's import-leaf case builds on.
func (st *Status) ExprFromImport(ctx context.Context, imp ast.Import) (ast.Expr, error) {
	res, err := st.fetcher.Fetch(ctx, imp)
	if err != nil {
		return nil, err
	}
	if imp.Mode == ast.RawText {
		return ast.TextLit{Chunk: res.Text}, nil
	}
	parsed, err := syntax.Parse(res.Text)
	if err != nil {
		return nil, dherr.AsOne(fmt.Errorf("parse error in %s: %w", res.DisplayPath, err))
	}
	return parsed, nil
}

// resolveExpr is the structural traversal of §4.5: import leaves and
// alternatives get non-trivial handling, every other node recurses
// left-to-right into its immediate children and is rebuilt.
func (st *Status) resolveExpr(ctx context.Context, e ast.Expr) (ast.Expr, error) {
	switch v := e.(type) {
	case ast.Embed:
		return st.resolveImport(ctx, v.Import)
	case ast.ImportAlt:
		return st.resolveAlt(ctx, v)
	default:
		return st.resolveChildren(ctx, e)
	}
}

// resolveChildren rebuilds e with each immediate child resolved, left to
// right (§4.5 "Structural recursion"). ast.Expr.Walk's callback signature is
// synchronous and cannot itself return an error, so the first child failure
// is captured in err and every subsequent child is skipped (echoed back
// unchanged) once set.
func (st *Status) resolveChildren(ctx context.Context, e ast.Expr) (ast.Expr, error) {
	var err error
	out := e.Walk(func(c ast.Expr) ast.Expr {
		if err != nil {
			return c
		}
		resolved, cerr := st.resolveExpr(ctx, c)
		if cerr != nil {
			err = cerr
			return c
		}
		return resolved
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// resolveAlt implements `a ? b` (§4.5 "Alternative").
func (st *Status) resolveAlt(ctx context.Context, alt ast.ImportAlt) (ast.Expr, error) {
	left, leftErr := st.resolveExpr(ctx, alt.A)
	if leftErr == nil {
		return left, nil
	}
	leftMissing, ok := dherr.AsMissingImports(leftErr)
	if !ok {
		return nil, leftErr
	}
	right, rightErr := st.resolveExpr(ctx, alt.B)
	if rightErr == nil {
		return right, nil
	}
	rightMissing, ok := dherr.AsMissingImports(rightErr)
	if !ok {
		return nil, rightErr
	}
	return nil, &dherr.MissingImports{Causes: append(append([]error{}, leftMissing.Causes...), rightMissing.Causes...)}
}

// resolveImport implements the ten-step import-leaf algorithm of §4.5.
func (st *Status) resolveImport(ctx context.Context, imp ast.Import) (ast.Expr, error) {
	parent := pathkit.Compose(st.stack)
	stackPrime := append(append([]ast.Import{}, st.stack...), imp)
	here := pathkit.Compose(stackPrime)

	// step 2: opacity check.
	if here.IsLocal() && !parent.IsLocal() {
		return nil, dherr.AsImported(stackPrime, &dherr.ReferentiallyOpaque{Import: imp})
	}

	// step 3: cycle check.
	for _, ancestor := range pathkit.CanonicalizeAll(st.stack) {
		if pathkit.Equal(ancestor, here) {
			return nil, dherr.AsImported(stackPrime, &dherr.Cycle{Import: imp})
		}
	}

	key := importKey(here)

	// step 4: memo lookup (only skips hash verification when unhashed).
	if cached, ok := st.memo[key]; ok {
		if here.Hash == nil {
			return cached, nil
		}
		if err := st.verifyHash(cached, *here.Hash); err != nil {
			return nil, dherr.AsImported(stackPrime, err)
		}
		return cached, nil
	}

	// step 5: hashed read path.
	if here.Hash != nil && st.cache != nil {
		decoded, ok, err := st.cache.Read(ctx, *here.Hash)
		if err != nil {
			return nil, dherr.AsImported(stackPrime, err)
		}
		if ok {
			st.logger.CacheHit(key)
			st.memo[key] = decoded
			return decoded, nil
		}
		st.logger.CacheMiss(key)
	}

	st.logger.Resolving(stringerImport{imp})

	// step 6: fetch & parse.
	dynamic, err := st.ExprFromImport(ctx, imp)
	if err != nil {
		return nil, dherr.AsImported(stackPrime, err)
	}

	// step 7: recurse with push/pop discipline.
	st.stack = stackPrime
	resolved, err := st.resolveExpr(ctx, dynamic)
	st.stack = st.stack[:len(st.stack)-1]
	if err != nil {
		return nil, dherr.AsImported(stackPrime, err)
	}

	// step 8: type-check & normalize, then memoize.
	if _, terr := typecheck.TypeOf(st.startingContext, resolved); terr != nil {
		return nil, dherr.AsImported(stackPrime, terr)
	}
	normalized := normalize.Normalize(resolved)
	st.memo[key] = normalized

	// step 9: hash verify / write.
	if here.Hash != nil {
		if err := st.verifyHash(normalized, *here.Hash); err != nil {
			return nil, dherr.AsImported(stackPrime, err)
		}
		if st.cache != nil {
			_ = st.cache.Write(ctx, st.options.Protocol, *here.Hash, normalize.AlphaNormalize(normalized))
		}
	}

	return normalized, nil
}

func (st *Status) verifyHash(e ast.Expr, expectedHex string) error {
	code, err := hashkit.HashExpressionToCode(st.options.Protocol, normalize.AlphaNormalize(e))
	if err != nil {
		return err
	}
	actual := code[len("sha256:"):]
	if actual != expectedHex {
		return &dherr.HashMismatch{Expected: expectedHex, Actual: actual}
	}
	return nil
}

// resolveHeaders resolves a Remote import's headersImport to reshaped
// (name, value) pairs, per §4.2 and the §9 "Headers-import recursion" note:
// it is resolved against the *parent's parent* (the stack without the
// current Remote import pushed) so a local headers import does not trip the
// opacity check against its own non-local sibling.
func (st *Status) resolveHeaders(ctx context.Context, headersImp ast.Import) ([]fetch.HeaderPair, error) {
	resolved, err := st.resolveImport(ctx, headersImp)
	if err != nil {
		return nil, err
	}
	expected := ast.ListType{Elem: ast.RecordType{Fields: []ast.Field{
		{Name: "header", Value: ast.Builtin{Name: ast.TextType}},
		{Name: "value", Value: ast.Builtin{Name: ast.TextType}},
	}}}
	actual, err := typecheck.TypeOf(st.startingContext, resolved)
	if err != nil {
		return nil, err
	}
	if !typecheck.Equivalent(actual, expected) {
		return nil, fmt.Errorf("headers import must have type List { header : Text, value : Text }, got %s", typecheck.Render(actual))
	}
	list, ok := normalize.Normalize(resolved).(ast.ListLit)
	if !ok {
		return nil, fmt.Errorf("headers import did not normalize to a list literal")
	}
	pairs := make([]fetch.HeaderPair, 0, len(list.Elems))
	for _, elem := range list.Elems {
		rec, ok := elem.(ast.RecordLit)
		if !ok {
			return nil, fmt.Errorf("headers import element is not a record literal")
		}
		var name, value string
		for _, f := range rec.Fields {
			text, ok := f.Value.(ast.TextLit)
			if !ok {
				return nil, fmt.Errorf("headers import field %s is not a text literal", f.Name)
			}
			switch f.Name {
			case "header":
				name = text.Chunk
			case "value":
				value = text.Chunk
			}
		}
		pairs = append(pairs, fetch.HeaderPair{Name: name, Value: value})
	}
	return pairs, nil
}

// stringerImport adapts ast.Import to fmt.Stringer for dlog.Logger.Resolving.
type stringerImport struct{ imp ast.Import }

func (s stringerImport) String() string { return importKey(s.imp) }
