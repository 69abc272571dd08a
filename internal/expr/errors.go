package expr

import "fmt"

// LexError reports an unrecognized character in the source text.
type LexError struct {
	Pos  int
	Char rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("expr: unexpected character %q at position %d", e.Char, e.Pos)
}

// ParseError reports malformed syntax.
type ParseError struct {
	Pos      int
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expr: expected %s, found %s at position %d", e.Expected, e.Found, e.Pos)
}

// UnknownIdentifierError reports a reference that does not resolve
// against the declared identifier set or the function registry.
type UnknownIdentifierError struct {
	Name string
	Pos  int
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("expr: unknown identifier %q at position %d", e.Name, e.Pos)
}

// ArityError reports a function call with the wrong argument count.
type ArityError struct {
	Name     string
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("expr: function %q expects %d argument(s), got %d", e.Name, e.Expected, e.Got)
}
