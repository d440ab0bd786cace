// Package ast defines the expression and import data model shared by every
// other package in this module. The core (package resolve) only inspects two
// node shapes structurally — Embed and ImportAlt — and walks everything else
// homomorphically; the concrete node set below exists so the collaborator
// packages (internal/syntax, internal/typecheck, internal/normalize,
// internal/binary) have something real to operate on.
package ast

// Expr is a node in the expression tree. Implementations are value types
// recursing into Expr fields; there is no interning or sharing requirement.
type Expr interface {
	// Walk rebuilds this node with each immediate child replaced by fn(child).
	// Leaf nodes (Var, BoolLit, NaturalLit, TextLit, Builtin, Embed) return
	// themselves unchanged. This is the single homomorphic-recursion point
	// every structural traversal (resolve, normalize, alpha-rename) shares.
	Walk(fn func(Expr) Expr) Expr
}

// Var is a bound or free variable reference. Index disambiguates references
// under shadowing binders of the same Name, Dhall-style: Index counts how
// many enclosing binders of that same Name lie between the reference and the
// one it denotes (0 = the nearest). Ordinary source syntax always produces
// Index 0; non-zero indices only arise from internal alpha-normalization.
type Var struct {
	Name  string
	Index int
}

func (v Var) Walk(func(Expr) Expr) Expr { return v }

// Builtin is one of the fixed type/kind constants: Type, Kind, Bool,
// Natural, Integer, Text.
type Builtin struct{ Name string }

func (b Builtin) Walk(func(Expr) Expr) Expr { return b }

const (
	TypeConst = "Type"
	KindConst = "Kind"
	BoolType  = "Bool"
	Natural   = "Natural"
	Integer   = "Integer"
	TextType  = "Text"
)

type BoolLit bool

func (b BoolLit) Walk(func(Expr) Expr) Expr { return b }

type NaturalLit int64

func (n NaturalLit) Walk(func(Expr) Expr) Expr { return n }

type IntegerLit int64

func (n IntegerLit) Walk(func(Expr) Expr) Expr { return n }

// TextLit is a text literal. This module does not implement string
// interpolation; fetched raw text and parsed text literals are always a
// single Chunk.
type TextLit struct{ Chunk string }

func (t TextLit) Walk(func(Expr) Expr) Expr { return t }

// Lambda is a term-level abstraction: λ(Label : Type) → Body.
type Lambda struct {
	Label string
	Type  Expr
	Body  Expr
}

func (l Lambda) Walk(fn func(Expr) Expr) Expr {
	return Lambda{Label: l.Label, Type: fn(l.Type), Body: fn(l.Body)}
}

// Pi is a (possibly dependent) function type: ∀(Label : Type) → Body.
type Pi struct {
	Label string
	Type  Expr
	Body  Expr
}

func (p Pi) Walk(fn func(Expr) Expr) Expr {
	return Pi{Label: p.Label, Type: fn(p.Type), Body: fn(p.Body)}
}

// App is function application.
type App struct {
	Fn  Expr
	Arg Expr
}

func (a App) Walk(fn func(Expr) Expr) Expr {
	return App{Fn: fn(a.Fn), Arg: fn(a.Arg)}
}

// BoolEQ is the `==` operator, defined only on Bool in this subset.
type BoolEQ struct {
	L, R Expr
}

func (b BoolEQ) Walk(fn func(Expr) Expr) Expr {
	return BoolEQ{L: fn(b.L), R: fn(b.R)}
}

// Field is one (name, value-or-type) pair of a record literal or record type.
// Fields are kept in an ordered slice (not a map) because §3's equality and
// hashing are sensitive to the canonical encoding of field order.
type Field struct {
	Name  string
	Value Expr
}

type RecordLit struct{ Fields []Field }

func (r RecordLit) Walk(fn func(Expr) Expr) Expr {
	out := make([]Field, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = Field{Name: f.Name, Value: fn(f.Value)}
	}
	return RecordLit{Fields: out}
}

type RecordType struct{ Fields []Field }

func (r RecordType) Walk(fn func(Expr) Expr) Expr {
	out := make([]Field, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = Field{Name: f.Name, Value: fn(f.Value)}
	}
	return RecordType{Fields: out}
}

type ListLit struct {
	// Elem is the declared element type; required when Elems is empty.
	Elem  Expr
	Elems []Expr
}

func (l ListLit) Walk(fn func(Expr) Expr) Expr {
	var elem Expr
	if l.Elem != nil {
		elem = fn(l.Elem)
	}
	out := make([]Expr, len(l.Elems))
	for i, e := range l.Elems {
		out[i] = fn(e)
	}
	return ListLit{Elem: elem, Elems: out}
}

type ListType struct{ Elem Expr }

func (l ListType) Walk(fn func(Expr) Expr) Expr {
	return ListType{Elem: fn(l.Elem)}
}

// Embed is an import leaf — the only node besides ImportAlt that the
// resolver inspects structurally.
type Embed struct{ Import Import }

func (e Embed) Walk(func(Expr) Expr) Expr { return e }

// ImportAlt is the `?` alternative operator.
type ImportAlt struct {
	A, B Expr
}

func (i ImportAlt) Walk(fn func(Expr) Expr) Expr {
	return ImportAlt{A: fn(i.A), B: fn(i.B)}
}

// HasImports reports whether e still contains an Embed leaf anywhere in its
// tree — used to assert the "fully resolved" fixpoint property.
func HasImports(e Expr) bool {
	found := false
	var walk func(Expr)
	walk = func(e Expr) {
		if found {
			return
		}
		switch e.(type) {
		case Embed:
			found = true
			return
		}
		e.Walk(func(c Expr) Expr {
			walk(c)
			return c
		})
	}
	walk(e)
	return found
}
