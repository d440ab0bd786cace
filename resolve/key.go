package resolve

import (
	"fmt"
	"strings"

	"dhall/internal/ast"
)

// importKey renders a canonical import into a deterministic string for use
// as a memo-map key. It dereferences every pointer field by value (Hash,
// Remote.Query, Remote.Fragment, Remote.Headers) rather than printing
// addresses, which a naive %#v would do.
func importKey(imp ast.Import) string {
	var b strings.Builder
	if imp.Hash != nil {
		fmt.Fprintf(&b, "h=%s;", *imp.Hash)
	}
	fmt.Fprintf(&b, "m=%d;", imp.Mode)
	writeLocatorKey(&b, imp.Locator)
	return b.String()
}

func writeLocatorKey(b *strings.Builder, loc ast.Locator) {
	switch l := loc.(type) {
	case ast.Local:
		fmt.Fprintf(b, "local:%d:%s/%s", l.Prefix, strings.Join(l.Dir, "/"), l.File)
	case ast.Remote:
		fmt.Fprintf(b, "remote:%s://%s/%s", l.Scheme, l.Authority, strings.Join(l.Path, "/"))
		if l.Query != nil {
			fmt.Fprintf(b, "?%s", *l.Query)
		}
		if l.Fragment != nil {
			fmt.Fprintf(b, "#%s", *l.Fragment)
		}
		if l.Headers != nil {
			b.WriteString(";headers=")
			b.WriteString(importKey(*l.Headers))
		}
	case ast.Env:
		fmt.Fprintf(b, "env:%s", l.Name)
	case ast.Missing:
		b.WriteString("missing")
	default:
		fmt.Fprintf(b, "unknown:%T", l)
	}
}
