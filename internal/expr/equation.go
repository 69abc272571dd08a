package expr

import "strings"

// Equation is one compiled model equation. Two forms are accepted:
//
//	v = rhs        assignment: the target takes the value of rhs
//	dv/dt = rhs    differential: integrated per tick as v += dt*rhs
type Equation struct {
	Target       string
	Differential bool
	RHS          *Expr
}

// CompileEquation splits src on its single top-level '=' and compiles
// the right-hand side against idents. The left-hand side must be a bare
// identifier or a d<var>/dt derivative.
func CompileEquation(src string, idents Idents) (*Equation, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	eq := -1
	for i, t := range toks {
		if t.Kind == TokenOp && t.Text == "=" {
			if eq >= 0 {
				return nil, &ParseError{Pos: t.Pos, Expected: "a single '='", Found: t.String()}
			}
			eq = i
		}
	}
	if eq < 0 {
		return nil, &ParseError{Pos: len(src), Expected: "'='", Found: "end of input"}
	}

	target, differential, err := parseTarget(toks[:eq], src)
	if err != nil {
		return nil, err
	}

	rhsToks := make([]Token, 0, len(toks)-eq-1)
	rhsToks = append(rhsToks, toks[eq+1:]...)
	rhs, err := compileTokens(src, rhsToks, idents)
	if err != nil {
		return nil, err
	}
	return &Equation{Target: target, Differential: differential, RHS: rhs}, nil
}

func parseTarget(toks []Token, src string) (string, bool, error) {
	switch {
	case len(toks) == 1 && toks[0].Kind == TokenIdent:
		return toks[0].Text, false, nil
	case len(toks) == 3 &&
		toks[0].Kind == TokenIdent &&
		toks[1].Kind == TokenOp && toks[1].Text == "/" &&
		toks[2].Kind == TokenIdent && toks[2].Text == "dt":
		name := toks[0].Text
		if len(name) < 2 || !strings.HasPrefix(name, "d") {
			return "", false, &ParseError{Pos: toks[0].Pos, Expected: "derivative of the form d<var>/dt", Found: Token{Kind: TokenIdent, Text: name}.String()}
		}
		return name[1:], true, nil
	}
	pos := 0
	found := "end of input"
	if len(toks) > 0 {
		pos = toks[0].Pos
		found = toks[0].String()
	} else {
		pos = len(src)
	}
	return "", false, &ParseError{Pos: pos, Expected: "'<var> =' or 'd<var>/dt ='", Found: found}
}
