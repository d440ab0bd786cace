package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"dhall/internal/ast"
)

// Parse lifts text to an expression tree with import leaves (§4.3 "Code"
// mode). It requires the whole input to be consumed by a single
// expression.
func Parse(src string) (ast.Expr, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	p := &parser{lex: lex}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.lex.peek().kind != tokEOF {
		return nil, fmt.Errorf("syntax: unexpected trailing input %q at offset %d", p.lex.peek().text, p.lex.peek().pos)
	}
	return e, nil
}

type parser struct{ lex *lexer }

func (p *parser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("syntax: "+format, args...)
}

func (p *parser) expectSymbol(sym string) error {
	t := p.lex.next()
	if t.kind != tokSymbol || t.text != sym {
		return p.errf("expected %q, got %q at offset %d", sym, t.text, t.pos)
	}
	return nil
}

// parseExpr := EqExpr
func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseEq()
}

func (p *parser) parseEq() (ast.Expr, error) {
	l, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	for p.lex.peek().kind == tokSymbol && p.lex.peek().text == "==" {
		p.lex.next()
		r, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		l = ast.BoolEQ{L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseAlt() (ast.Expr, error) {
	l, err := p.parseApp()
	if err != nil {
		return nil, err
	}
	for p.lex.peek().kind == tokSymbol && p.lex.peek().text == "?" {
		p.lex.next()
		r, err := p.parseApp()
		if err != nil {
			return nil, err
		}
		l = ast.ImportAlt{A: l, B: r}
	}
	return l, nil
}

func (p *parser) parseApp() (ast.Expr, error) {
	fn, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.startsPrimary() {
		arg, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		fn = ast.App{Fn: fn, Arg: arg}
	}
	return fn, nil
}

// startsPrimary reports whether the next token can begin a primary
// expression, used to decide whether application continues.
func (p *parser) startsPrimary() bool {
	t := p.lex.peek()
	switch t.kind {
	case tokIdent, tokInt, tokString, tokImport:
		return true
	case tokSymbol:
		return t.text == "(" || t.text == "{" || t.text == "[" || t.text == "λ" || t.text == "\\" || t.text == "∀"
	}
	return false
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	t := p.lex.peek()
	switch t.kind {
	case tokImport:
		return p.parseImportExpr()
	case tokString:
		p.lex.next()
		return ast.TextLit{Chunk: t.text}, nil
	case tokInt:
		p.lex.next()
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, p.errf("invalid integer literal %q: %v", t.text, err)
		}
		return ast.IntegerLit(n), nil
	case tokSymbol:
		switch t.text {
		case "(":
			p.lex.next()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
			return e, nil
		case "{":
			return p.parseRecord()
		case "[":
			return p.parseList()
		case "λ", "\\":
			return p.parseLambda()
		case "∀":
			return p.parsePi()
		}
		return nil, p.errf("unexpected symbol %q at offset %d", t.text, t.pos)
	case tokIdent:
		return p.parseIdentExpr()
	}
	return nil, p.errf("unexpected end of input")
}

func (p *parser) parseIdentExpr() (ast.Expr, error) {
	t := p.lex.next()
	switch t.text {
	case "True":
		return ast.BoolLit(true), nil
	case "False":
		return ast.BoolLit(false), nil
	case "Type", "Kind", "Bool", "Natural", "Integer", "Text":
		return ast.Builtin{Name: t.text}, nil
	case "List":
		elem, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return ast.ListType{Elem: elem}, nil
	default:
		return ast.Var{Name: t.text, Index: 0}, nil
	}
}

func (p *parser) parseLambda() (ast.Expr, error) {
	p.lex.next() // consume λ or backslash
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	label := p.lex.next()
	if label.kind != tokIdent {
		return nil, p.errf("expected lambda parameter name, got %q", label.text)
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	if err := p.expectSymbol("→"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.Lambda{Label: label.text, Type: typ, Body: body}, nil
}

func (p *parser) parsePi() (ast.Expr, error) {
	p.lex.next() // consume ∀
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	label := p.lex.next()
	if label.kind != tokIdent {
		return nil, p.errf("expected pi parameter name, got %q", label.text)
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	if err := p.expectSymbol("→"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.Pi{Label: label.text, Type: typ, Body: body}, nil
}

func (p *parser) parseRecord() (ast.Expr, error) {
	p.lex.next() // consume {
	if p.lex.peek().kind == tokSymbol && p.lex.peek().text == "}" {
		p.lex.next()
		return ast.RecordLit{}, nil
	}
	var litFields []ast.Field
	var typeFields []ast.Field
	isType := false
	first := true
	for {
		if !first {
			if err := p.expectSymbol(","); err != nil {
				return nil, err
			}
		}
		first = false
		name := p.lex.next()
		if name.kind != tokIdent {
			return nil, p.errf("expected field name, got %q", name.text)
		}
		sep := p.lex.next()
		if sep.kind != tokSymbol || (sep.text != "=" && sep.text != ":") {
			return nil, p.errf("expected '=' or ':' after field name, got %q", sep.text)
		}
		if sep.text == ":" {
			isType = true
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if isType {
			typeFields = append(typeFields, ast.Field{Name: name.text, Value: val})
		} else {
			litFields = append(litFields, ast.Field{Name: name.text, Value: val})
		}
		if p.lex.peek().kind == tokSymbol && p.lex.peek().text == "}" {
			p.lex.next()
			break
		}
	}
	if isType {
		return ast.RecordType{Fields: typeFields}, nil
	}
	return ast.RecordLit{Fields: litFields}, nil
}

func (p *parser) parseList() (ast.Expr, error) {
	p.lex.next() // consume [
	var elems []ast.Expr
	if p.lex.peek().kind == tokSymbol && p.lex.peek().text == "]" {
		p.lex.next()
		return ast.ListLit{Elems: elems}, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		t := p.lex.next()
		if t.kind == tokSymbol && t.text == "]" {
			break
		}
		if t.kind != tokSymbol || t.text != "," {
			return nil, p.errf("expected ',' or ']' in list literal, got %q", t.text)
		}
	}
	return ast.ListLit{Elems: elems}, nil
}

// parseImportExpr parses a locator literal and its optional `using`,
// `sha256:`, and `as Text` suffixes (§6).
func (p *parser) parseImportExpr() (ast.Expr, error) {
	locTok := p.lex.next()
	loc, err := ParseLocator(locTok.text)
	if err != nil {
		return nil, err
	}
	imp := ast.Import{Locator: loc, Mode: ast.Code}

	if remote, ok := loc.(ast.Remote); ok && p.lex.peek().kind == tokIdent && p.lex.peek().text == "using" {
		p.lex.next()
		headersExpr, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		headersEmbed, ok := headersExpr.(ast.Embed)
		if !ok {
			return nil, p.errf("'using' must be followed by an import")
		}
		remote.Headers = &headersEmbed.Import
		imp.Locator = remote
	}

	if p.lex.peek().kind == tokIdent && p.lex.peek().text == "sha256" {
		// lexed as ident "sha256" followed by symbol ":" followed by ident/hex text; but our
		// lexer tokenizes "sha256:<hex>" — hex runs of letters/digits are idents, ':' is a symbol.
		p.lex.next() // "sha256"
		if err := p.expectSymbol(":"); err != nil {
			return nil, err
		}
		hexTok := p.lex.next()
		if hexTok.kind != tokIdent && hexTok.kind != tokInt {
			return nil, p.errf("expected hex digest after sha256:, got %q", hexTok.text)
		}
		h := strings.ToLower(hexTok.text)
		imp.Hash = &h
	}

	if p.lex.peek().kind == tokIdent && p.lex.peek().text == "as" {
		p.lex.next()
		asTok := p.lex.next()
		if asTok.kind != tokIdent || asTok.text != "Text" {
			return nil, p.errf("expected 'Text' after 'as', got %q", asTok.text)
		}
		imp.Mode = ast.RawText
	}

	return ast.Embed{Import: imp}, nil
}
