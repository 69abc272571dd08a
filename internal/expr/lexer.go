package expr

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// lex tokenizes src. The returned slice always ends with a TokenEOF
// positioned at the end of the input.
func lex(src string) ([]Token, error) {
	toks := make([]Token, 0, 16)
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r >= '0' && r <= '9':
			start := i
			i = scanNumber(src, i)
			num, err := strconv.ParseFloat(src[start:i], 64)
			if err != nil {
				return nil, &LexError{Pos: start, Char: r}
			}
			toks = append(toks, Token{Kind: TokenNumber, Text: src[start:i], Num: num, Pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(src) {
				r2, s2 := utf8.DecodeRuneInString(src[i:])
				if !unicode.IsLetter(r2) && !unicode.IsDigit(r2) && r2 != '_' {
					break
				}
				i += s2
			}
			toks = append(toks, Token{Kind: TokenIdent, Text: src[start:i], Pos: start})
		case r == '(':
			toks = append(toks, Token{Kind: TokenLParen, Text: "(", Pos: i})
			i++
		case r == ')':
			toks = append(toks, Token{Kind: TokenRParen, Text: ")", Pos: i})
			i++
		case r == ',':
			toks = append(toks, Token{Kind: TokenComma, Text: ",", Pos: i})
			i++
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '^':
			toks = append(toks, Token{Kind: TokenOp, Text: string(r), Pos: i})
			i++
		case r == '>' || r == '<':
			op := string(r)
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				op += "="
				i++
			}
			toks = append(toks, Token{Kind: TokenOp, Text: op, Pos: start})
		case r == '=':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				toks = append(toks, Token{Kind: TokenOp, Text: "==", Pos: start})
				i++
			} else {
				// single '=' is only meaningful at the equation level
				toks = append(toks, Token{Kind: TokenOp, Text: "=", Pos: start})
			}
		case r == '!':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				toks = append(toks, Token{Kind: TokenOp, Text: "!=", Pos: start})
				i++
			} else {
				return nil, &LexError{Pos: start, Char: r}
			}
		default:
			return nil, &LexError{Pos: i, Char: r}
		}
	}
	toks = append(toks, Token{Kind: TokenEOF, Pos: len(src)})
	return toks, nil
}

// scanNumber advances past a decimal literal with optional fraction and
// exponent, starting at a digit.
func scanNumber(src string, i int) int {
	for i < len(src) && src[i] >= '0' && src[i] <= '9' {
		i++
	}
	if i < len(src) && src[i] == '.' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9' {
		i++
		for i < len(src) && src[i] >= '0' && src[i] <= '9' {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && src[j] >= '0' && src[j] <= '9' {
			i = j
			for i < len(src) && src[i] >= '0' && src[i] <= '9' {
				i++
			}
		}
	}
	return i
}
