// Package syntax implements the external collaborator "the expression
// parser" (§1): consumes UTF-8 text, yields an expression tree with import
// leaves. It covers the literal forms named bit-exactly in §6 plus the
// handful of term-level constructs the §8 scenarios exercise (lambdas,
// records, lists, `==`, application); it is not a general-purpose language
// front end.
package syntax

import (
	"fmt"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"

	"dhall/internal/syntax/matchers"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokString
	tokImport // a contiguous locator literal: ./x, ../x, /x, ~/x, http(s)://..., env:NAME, missing
	tokSymbol
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	toks  []token
	index int
}

func (l *lexer) peek() token { return l.toks[l.index] }
func (l *lexer) peekAt(n int) token {
	if l.index+n >= len(l.toks) {
		return l.toks[len(l.toks)-1]
	}
	return l.toks[l.index+n]
}
func (l *lexer) next() token {
	t := l.toks[l.index]
	if l.index < len(l.toks)-1 {
		l.index++
	}
	return t
}

const (
	whitespaceToken int = iota
	missingToken
	importLiteralToken
	stringToken
	numberToken
	identToken
	eqEqToken
	arrowToken
	forallToken
	lambdaToken
	backslashToken
	lparenToken
	rparenToken
	lbraceToken
	rbraceToken
	lbracketToken
	rbracketToken
	commaToken
	colonToken
	eqToken
	questionToken
)

var (
	whitespaceMatcher    = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
	missingMatcher       = parsly.NewToken(missingToken, "Missing", matchers.NewKeyword("missing"))
	importLiteralMatcher = parsly.NewToken(importLiteralToken, "ImportLiteral", matchers.NewImportLiteral())
	stringMatcher        = parsly.NewToken(stringToken, "String", matcher.NewBlock('"', '"', '\\'))
	numberMatcher        = parsly.NewToken(numberToken, "Number", matchers.NewSignedInteger())
	identMatcher         = parsly.NewToken(identToken, "Ident", matchers.NewIdent())
	eqEqMatcher          = parsly.NewToken(eqEqToken, "EqEq", matcher.NewFragment("=="))
	arrowMatcher         = parsly.NewToken(arrowToken, "Arrow", matcher.NewFragment("→"))
	forallMatcher        = parsly.NewToken(forallToken, "Forall", matcher.NewFragment("∀"))
	lambdaMatcher        = parsly.NewToken(lambdaToken, "Lambda", matcher.NewFragment("λ"))
	backslashMatcher     = parsly.NewToken(backslashToken, "Backslash", matcher.NewByte('\\'))
	lparenMatcher        = parsly.NewToken(lparenToken, "LParen", matcher.NewByte('('))
	rparenMatcher        = parsly.NewToken(rparenToken, "RParen", matcher.NewByte(')'))
	lbraceMatcher        = parsly.NewToken(lbraceToken, "LBrace", matcher.NewByte('{'))
	rbraceMatcher        = parsly.NewToken(rbraceToken, "RBrace", matcher.NewByte('}'))
	lbracketMatcher      = parsly.NewToken(lbracketToken, "LBracket", matcher.NewByte('['))
	rbracketMatcher      = parsly.NewToken(rbracketToken, "RBracket", matcher.NewByte(']'))
	commaMatcher         = parsly.NewToken(commaToken, "Comma", matcher.NewByte(','))
	colonMatcher         = parsly.NewToken(colonToken, "Colon", matcher.NewByte(':'))
	eqMatcher            = parsly.NewToken(eqToken, "Eq", matcher.NewByte('='))
	questionMatcher      = parsly.NewToken(questionToken, "Question", matcher.NewByte('?'))
)

// candidates is tried in order by cursor.MatchAfterOptional, so "missing"
// and import literals must precede the general ident matcher (both can
// start with a letter, e.g. "env:" and "http://"), "λ" must precede the
// ident matcher too (unicode.IsLetter accepts it), and "==" must precede
// "=" (both start with the same byte).
var candidates = []*parsly.Token{
	missingMatcher, importLiteralMatcher, stringMatcher, numberMatcher, lambdaMatcher, identMatcher,
	eqEqMatcher, arrowMatcher, forallMatcher, backslashMatcher,
	lparenMatcher, rparenMatcher, lbraceMatcher, rbraceMatcher, lbracketMatcher, rbracketMatcher,
	commaMatcher, colonMatcher, eqMatcher, questionMatcher,
}

func newLexer(src string) (*lexer, error) {
	l := &lexer{}
	cursor := parsly.NewCursor("", []byte(src), 0)
	for {
		tok, err := scanToken(cursor)
		if err != nil {
			return nil, err
		}
		l.toks = append(l.toks, tok)
		if tok.kind == tokEOF {
			break
		}
	}
	return l, nil
}

func scanToken(cursor *parsly.Cursor) (token, error) {
	matched := cursor.MatchAfterOptional(whitespaceMatcher, candidates...)
	switch matched.Code {
	case parsly.EOF:
		return token{kind: tokEOF, pos: cursor.Pos}, nil
	case parsly.Invalid:
		return token{}, cursor.NewError(candidates...)
	case missingToken, importLiteralToken:
		text := matched.Text(cursor)
		return token{kind: tokImport, text: text, pos: cursor.Pos - len(text)}, nil
	case stringToken:
		raw := matched.Text(cursor)
		text, err := unescapeString(raw[1 : len(raw)-1])
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: text, pos: cursor.Pos - len(raw)}, nil
	case numberToken:
		text := matched.Text(cursor)
		return token{kind: tokInt, text: text, pos: cursor.Pos - len(text)}, nil
	case identToken:
		text := matched.Text(cursor)
		return token{kind: tokIdent, text: text, pos: cursor.Pos - len(text)}, nil
	default:
		text := matched.Text(cursor)
		return token{kind: tokSymbol, text: text, pos: cursor.Pos - len(text)}, nil
	}
}

// unescapeString decodes the backslash escapes of a text literal's inner
// content (quotes already stripped by the caller): \" \\ \n \t, and any
// other escaped byte passes through literally.
func unescapeString(s string) (string, error) {
	var sb strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\\' {
			if i+1 >= len(s) {
				return "", fmt.Errorf("syntax: dangling escape in text literal")
			}
			switch s[i+1] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		sb.WriteByte(c)
		i++
	}
	return sb.String(), nil
}
