package expr

import "fmt"

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenIdent
	TokenOp
	TokenLParen
	TokenRParen
	TokenComma
)

type Token struct {
	Kind TokenKind
	Text string
	Num  float64
	Pos  int
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Text)
}
