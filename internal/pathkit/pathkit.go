// Package pathkit implements the canonicalization and composition algebra
// of §4.1. It has no third-party dependency: the ".."-cancellation law is
// bespoke semantics that none of the retrieved example repos' path-joining
// helpers (including github.com/viant/afs/url) express — see DESIGN.md.
package pathkit

import "dhall/internal/ast"

// CanonicalizeDir applies the idempotent directory-component rules of §3:
// drop leading ".", retain a leading ".." only when the canonicalized tail
// is empty or all "..", otherwise cancel the tail's first surviving
// component.
func CanonicalizeDir(components []string) []string {
	if len(components) == 0 {
		return nil
	}
	head, tail := components[0], components[1:]
	switch head {
	case ".":
		return CanonicalizeDir(tail)
	case "..":
		tailCanon := CanonicalizeDir(tail)
		if isEmptyOrAllParent(tailCanon) {
			out := make([]string, 0, len(tailCanon)+1)
			out = append(out, "..")
			out = append(out, tailCanon...)
			return out
		}
		return tailCanon[1:]
	default:
		out := make([]string, 0, len(tail)+1)
		out = append(out, head)
		out = append(out, CanonicalizeDir(tail)...)
		return out
	}
}

func isEmptyOrAllParent(dir []string) bool {
	for _, c := range dir {
		if c != ".." {
			return false
		}
	}
	return true
}

// CanonicalizeLocator canonicalizes the directory of a Local locator or the
// path of a Remote locator; Env and Missing are returned unchanged.
func CanonicalizeLocator(loc ast.Locator) ast.Locator {
	switch l := loc.(type) {
	case ast.Local:
		return ast.Local{Prefix: l.Prefix, Dir: CanonicalizeDir(l.Dir), File: l.File}
	case ast.Remote:
		r := l
		r.Path = CanonicalizeDir(l.Path)
		return r
	default:
		return loc
	}
}

// CanonicalizeImport canonicalizes imp's locator; Hash and Mode are
// unchanged (§3).
func CanonicalizeImport(imp ast.Import) ast.Import {
	return ast.Import{Hash: imp.Hash, Locator: CanonicalizeLocator(imp.Locator), Mode: imp.Mode}
}

// ComposeChildParent folds a child import against its parent's locator to
// produce the un-canonicalized "here" import (§3 "Composition").
func ComposeChildParent(child, parent ast.Import) ast.Import {
	childLocal, childIsHere := child.Locator.(ast.Local)
	if !childIsHere || childLocal.Prefix != ast.Here {
		// Absolute|Home|Parent Local, Remote, Env, Missing children ignore
		// the parent entirely.
		return child
	}
	switch p := parent.Locator.(type) {
	case ast.Local:
		dir := make([]string, 0, len(p.Dir)+len(childLocal.Dir))
		dir = append(dir, p.Dir...)
		dir = append(dir, childLocal.Dir...)
		return ast.Import{
			Hash:    child.Hash,
			Mode:    child.Mode,
			Locator: ast.Local{Prefix: p.Prefix, Dir: dir, File: childLocal.File},
		}
	case ast.Remote:
		base := p.Path
		if len(base) > 0 {
			base = base[:len(base)-1]
		}
		path := make([]string, 0, len(base)+len(childLocal.Dir)+1)
		path = append(path, base...)
		path = append(path, childLocal.Dir...)
		path = append(path, childLocal.File)
		return ast.Import{
			Hash: child.Hash,
			Mode: child.Mode,
			Locator: ast.Remote{
				Scheme:    p.Scheme,
				Authority: p.Authority,
				Path:      path,
				Headers:   p.Headers,
			},
		}
	default:
		// parent is Env or Missing: a Here-relative child cannot compose
		// meaningfully against it. Treated as ignoring the parent, matching
		// the "non-Local/Remote parent" fallthrough rather than panicking.
		return child
	}
}

// Compose folds a non-empty stack (first = outermost synthetic root, last =
// tip = innermost) from the root towards the tip under ComposeChildParent,
// canonicalizing after every fold, and returns the composed "here" of the
// tip (§4.1).
func Compose(stack []ast.Import) ast.Import {
	acc := CanonicalizeImport(stack[0])
	for i := 1; i < len(stack); i++ {
		acc = CanonicalizeImport(ComposeChildParent(stack[i], acc))
	}
	return acc
}

// CanonicalizeAll returns, for every prefix stack[:i+1], the composed and
// canonicalized "here" of that prefix's tip (§4.1) — used by cycle
// detection to compare each ancestor's resolved identity.
func CanonicalizeAll(stack []ast.Import) []ast.Import {
	out := make([]ast.Import, len(stack))
	for i := range stack {
		out[i] = Compose(stack[:i+1])
	}
	return out
}

// Equal reports whether two imports are equal, defined as "canonicalized
// forms are byte-equal" (§3) — implemented structurally rather than via an
// actual byte comparison, since the binary codec is reserved for resolved
// expressions, not imports.
func Equal(a, b ast.Import) bool {
	a, b = CanonicalizeImport(a), CanonicalizeImport(b)
	return importEqual(a, b)
}

func importEqual(a, b ast.Import) bool {
	if (a.Hash == nil) != (b.Hash == nil) {
		return false
	}
	if a.Hash != nil && *a.Hash != *b.Hash {
		return false
	}
	if a.Mode != b.Mode {
		return false
	}
	return locatorEqual(a.Locator, b.Locator)
}

func locatorEqual(a, b ast.Locator) bool {
	switch av := a.(type) {
	case ast.Local:
		bv, ok := b.(ast.Local)
		return ok && av.Prefix == bv.Prefix && av.File == bv.File && stringsEqual(av.Dir, bv.Dir)
	case ast.Remote:
		bv, ok := b.(ast.Remote)
		if !ok || av.Scheme != bv.Scheme || av.Authority != bv.Authority || !stringsEqual(av.Path, bv.Path) {
			return false
		}
		return optStrEqual(av.Query, bv.Query) && optStrEqual(av.Fragment, bv.Fragment)
	case ast.Env:
		bv, ok := b.(ast.Env)
		return ok && av.Name == bv.Name
	case ast.Missing:
		_, ok := b.(ast.Missing)
		return ok
	default:
		return false
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func optStrEqual(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
