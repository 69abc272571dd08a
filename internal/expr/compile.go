package expr

import "strings"

// Idents is the set of identifiers an expression may reference.
type Idents map[string]struct{}

func NewIdents(names ...string) Idents {
	set := make(Idents, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (s Idents) With(names ...string) Idents {
	out := make(Idents, len(s)+len(names))
	for n := range s {
		out[n] = struct{}{}
	}
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// Expr is a compiled expression. It is immutable, side-effect free and
// may be shared across goroutines; the same (Expr, Context) pair always
// yields the same result.
type Expr struct {
	root node
	src  string
}

// Compile lexes, parses and resolves src against the declared
// identifier set. Function names come from the closed registry and are
// checked for arity here, never at evaluation time.
func Compile(src string, idents Idents) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	return compileTokens(src, toks, idents)
}

func compileTokens(src string, toks []Token, idents Idents) (*Expr, error) {
	root, err := parse(toks)
	if err != nil {
		return nil, err
	}
	if err := resolve(root, idents); err != nil {
		return nil, err
	}
	return &Expr{root: root, src: strings.TrimSpace(src)}, nil
}

// Eval evaluates the expression against ctx. It is total: division by
// zero and out-of-domain function arguments yield IEEE Inf/NaN.
func (e *Expr) Eval(ctx Context) float64 { return e.root.eval(ctx) }

// Source returns the original source text.
func (e *Expr) Source() string { return e.src }

// Equal reports structural equality of the compiled trees. Compiling
// the same source twice yields Equal results.
func (e *Expr) Equal(other *Expr) bool {
	return other != nil && e.root.equal(other.root)
}

// String renders the tree in prefix form, mainly for tests and error
// reporting.
func (e *Expr) String() string {
	var sb strings.Builder
	e.root.writeTo(&sb)
	return sb.String()
}

func resolve(n node, idents Idents) error {
	switch t := n.(type) {
	case *varRef:
		if _, ok := idents[t.name]; !ok {
			return &UnknownIdentifierError{Name: t.name, Pos: t.pos}
		}
	case *unaryOp:
		return resolve(t.operand, idents)
	case *binaryOp:
		if err := resolve(t.lhs, idents); err != nil {
			return err
		}
		return resolve(t.rhs, idents)
	case *callOp:
		b, ok := builtins[t.name]
		if !ok {
			return &UnknownIdentifierError{Name: t.name, Pos: t.pos}
		}
		if len(t.args) != b.arity {
			return &ArityError{Name: t.name, Expected: b.arity, Got: len(t.args)}
		}
		t.fn = b.fn
		for _, a := range t.args {
			if err := resolve(a, idents); err != nil {
				return err
			}
		}
	}
	return nil
}
