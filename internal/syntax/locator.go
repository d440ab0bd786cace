package syntax

import (
	"fmt"
	"strings"

	"dhall/internal/ast"
)

// ParseLocator converts the text of a tokImport token into an ast.Locator
// (§2 "Locator", §6). It does not handle the trailing `sha256:`/`as
// Text`/`using` suffixes — those are consumed by the caller once the
// locator itself is known.
func ParseLocator(text string) (ast.Locator, error) {
	switch {
	case text == "missing":
		return ast.Missing{}, nil
	case strings.HasPrefix(text, "env:"):
		return ast.Env{Name: text[len("env:"):]}, nil
	case strings.HasPrefix(text, "http://"):
		return parseRemote("http", text[len("http://"):])
	case strings.HasPrefix(text, "https://"):
		return parseRemote("https", text[len("https://"):])
	case strings.HasPrefix(text, "~/"):
		return parseLocal(ast.Home, text[len("~/"):])
	case strings.HasPrefix(text, "./"):
		return parseLocal(ast.Here, text[len("./"):])
	case strings.HasPrefix(text, "../"):
		return parseLocal(ast.Parent, text[len(".."):])
	case strings.HasPrefix(text, "/"):
		return parseLocal(ast.Absolute, text)
	}
	return nil, fmt.Errorf("syntax: unrecognized import literal %q", text)
}

func parseLocal(prefix ast.LocalPrefix, remainder string) (ast.Local, error) {
	parts := splitNonEmpty(remainder, "/")
	if len(parts) == 0 {
		return ast.Local{}, fmt.Errorf("syntax: local import %q has no file component", remainder)
	}
	file := parts[len(parts)-1]
	dir := parts[:len(parts)-1]
	return ast.Local{Prefix: prefix, Dir: append([]string{}, dir...), File: file}, nil
}

func parseRemote(scheme, rest string) (ast.Remote, error) {
	authority := rest
	path := ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		authority = rest[:i]
		path = rest[i:]
	}

	var fragment *string
	if i := strings.IndexByte(path, '#'); i >= 0 {
		f := path[i+1:]
		fragment = &f
		path = path[:i]
	}
	var query *string
	if i := strings.IndexByte(path, '?'); i >= 0 {
		q := path[i+1:]
		query = &q
		path = path[:i]
	}

	return ast.Remote{
		Scheme:    scheme,
		Authority: authority,
		Path:      splitNonEmpty(path, "/"),
		Query:     query,
		Fragment:  fragment,
	}, nil
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
