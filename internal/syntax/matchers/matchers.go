// Package matchers supplies the parsly.Matcher implementations the lexer's
// token table needs beyond what github.com/viant/parsly/matcher ships:
// Dhall-style identifiers, the signed Natural/Integer literal, the keyword
// "missing" (with a word-boundary check), and a contiguous import-literal
// run. Modeled on github.com/viant/datly/cmd/ast/matchers.
package matchers

import (
	"unicode"
	"unicode/utf8"

	"github.com/viant/parsly"
)

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

type ident struct{}

// Match recognizes a letter- or underscore-led run of letters, digits,
// underscores, and hyphens.
func (m *ident) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	r, w := utf8.DecodeRune(input[pos:size])
	if r == utf8.RuneError || !isIdentStart(r) {
		return 0
	}
	matched = w
	for pos+matched < size {
		r, w = utf8.DecodeRune(input[pos+matched : size])
		if r == utf8.RuneError || !isIdentPart(r) {
			break
		}
		matched += w
	}
	return matched
}

// NewIdent returns a matcher for bare identifiers.
func NewIdent() parsly.Matcher { return &ident{} }

type keyword struct {
	word []byte
}

// Match recognizes the literal word only when it is not immediately
// followed by another identifier byte, so "missing" matches but the
// "missing" prefix of "missingFoo" does not.
func (k *keyword) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	end := pos + len(k.word)
	if end > size {
		return 0
	}
	for i, b := range k.word {
		if input[pos+i] != b {
			return 0
		}
	}
	if end < size && isIdentPart(rune(input[end])) {
		return 0
	}
	return len(k.word)
}

// NewKeyword returns a word-boundary-aware matcher for a literal keyword.
func NewKeyword(word string) parsly.Matcher { return &keyword{word: []byte(word)} }

type signedInteger struct{}

// Match recognizes an optional leading sign followed by a run of digits,
// covering both signed and unsigned forms; the parser turns every matched
// literal into an ast.IntegerLit.
func (m *signedInteger) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	i := pos
	if i < size && (input[i] == '+' || input[i] == '-') {
		i++
	}
	start := i
	for i < size && input[i] >= '0' && input[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	return i - pos
}

// NewSignedInteger returns a matcher for signed decimal integer literals.
func NewSignedInteger() parsly.Matcher { return &signedInteger{} }

var importPrefixes = [][]byte{
	[]byte("http://"),
	[]byte("https://"),
	[]byte("~/"),
	[]byte("../"),
	[]byte("./"),
	[]byte("env:"),
}

type importLiteral struct{}

func hasPrefixAt(input []byte, pos int, size int, prefix []byte) bool {
	end := pos + len(prefix)
	if end > size {
		return false
	}
	for i, b := range prefix {
		if input[pos+i] != b {
			return false
		}
	}
	return true
}

// Match recognizes a contiguous, non-whitespace run that begins with one of
// the recognized locator prefixes (relative/absolute/home path, http(s)
// URL, or env var reference). It stops at the first whitespace byte so any
// trailing "sha256:...", "as Text", or "using ..." stays in separate tokens,
// and at any of the delimiters , ) ] } so a locator inside a record, list,
// or parenthesized expression does not swallow them.
func (m *importLiteral) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	ok := pos < size && input[pos] == '/'
	for _, p := range importPrefixes {
		if hasPrefixAt(input, pos, size, p) {
			ok = true
			break
		}
	}
	if !ok {
		return 0
	}

	i := pos
	for i < size {
		switch input[i] {
		case ' ', '\t', '\n', '\r', ',', ')', ']', '}':
			return i - pos
		}
		i++
	}
	return i - pos
}

// NewImportLiteral returns a matcher for contiguous locator literals.
func NewImportLiteral() parsly.Matcher { return &importLiteral{} }
