package expr

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != TokenEOF {
		p.pos++
	}
	return t
}

// parse consumes the full token stream; trailing tokens are an error.
func parse(toks []Token) (node, error) {
	p := &parser{toks: toks}
	n, err := p.parseBinary(precCompare)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != TokenEOF {
		return nil, &ParseError{Pos: t.Pos, Expected: "end of input", Found: t.String()}
	}
	return n, nil
}

// Precedence levels, low to high. Unary minus binds tighter than '*'
// but looser than '^'; '^' is right associative.
const (
	precNone = iota
	precCompare
	precAdd
	precMul
)

func binaryPrec(t Token) int {
	if t.Kind != TokenOp {
		return precNone
	}
	switch t.Text {
	case ">", "<", ">=", "<=", "==", "!=":
		return precCompare
	case "+", "-":
		return precAdd
	case "*", "/":
		return precMul
	}
	return precNone
}

func (p *parser) parseBinary(minPrec int) (node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		prec := binaryPrec(t)
		if prec == precNone || prec < minPrec {
			return lhs, nil
		}
		p.next()
		rhs, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = &binaryOp{op: t.Text, lhs: lhs, rhs: rhs}
	}
}

func (p *parser) parseUnary() (node, error) {
	t := p.peek()
	if t.Kind == TokenOp && (t.Text == "-" || t.Text == "+") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.Text == "+" {
			return operand, nil
		}
		return &unaryOp{operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind == TokenOp && t.Text == "^" {
		p.next()
		// right associativity and 2^-3 both fall out of recursing
		// through the unary level
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &binaryOp{op: "^", lhs: base, rhs: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.Kind {
	case TokenNumber:
		return &literal{val: t.Num}, nil
	case TokenIdent:
		if p.peek().Kind == TokenLParen {
			return p.parseCall(t)
		}
		return &varRef{name: t.Text, pos: t.Pos}, nil
	case TokenLParen:
		n, err := p.parseBinary(precCompare)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Kind != TokenRParen {
			return nil, &ParseError{Pos: closing.Pos, Expected: "')'", Found: closing.String()}
		}
		return n, nil
	}
	return nil, &ParseError{Pos: t.Pos, Expected: "number, identifier or '('", Found: t.String()}
}

func (p *parser) parseCall(name Token) (node, error) {
	p.next() // '('
	call := &callOp{name: name.Text, pos: name.Pos}
	if p.peek().Kind == TokenRParen {
		p.next()
		return call, nil
	}
	for {
		arg, err := p.parseBinary(precCompare)
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)
		t := p.next()
		if t.Kind == TokenRParen {
			return call, nil
		}
		if t.Kind != TokenComma {
			return nil, &ParseError{Pos: t.Pos, Expected: "',' or ')'", Found: t.String()}
		}
	}
}
