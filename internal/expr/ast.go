package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Context maps identifier names to their current numeric values. It is
// rebuilt or refreshed by the caller before each evaluation and never
// retained by an expression.
type Context map[string]float64

type node interface {
	eval(ctx Context) float64
	equal(other node) bool
	writeTo(sb *strings.Builder)
}

type literal struct {
	val float64
}

func (l *literal) eval(Context) float64 { return l.val }

func (l *literal) equal(other node) bool {
	o, ok := other.(*literal)
	return ok && (l.val == o.val || (math.IsNaN(l.val) && math.IsNaN(o.val)))
}

func (l *literal) writeTo(sb *strings.Builder) {
	sb.WriteString(strconv.FormatFloat(l.val, 'g', -1, 64))
}

type varRef struct {
	name string
	pos  int
}

// Missing bindings evaluate to NaN rather than failing: compilation
// guarantees the name was declared, so a hole in the context is a
// caller bug that must still keep the stepping loop alive.
func (v *varRef) eval(ctx Context) float64 {
	val, ok := ctx[v.name]
	if !ok {
		return math.NaN()
	}
	return val
}

func (v *varRef) equal(other node) bool {
	o, ok := other.(*varRef)
	return ok && v.name == o.name
}

func (v *varRef) writeTo(sb *strings.Builder) { sb.WriteString(v.name) }

type unaryOp struct {
	operand node
}

func (u *unaryOp) eval(ctx Context) float64 { return -u.operand.eval(ctx) }

func (u *unaryOp) equal(other node) bool {
	o, ok := other.(*unaryOp)
	return ok && u.operand.equal(o.operand)
}

func (u *unaryOp) writeTo(sb *strings.Builder) {
	sb.WriteString("(- ")
	u.operand.writeTo(sb)
	sb.WriteByte(')')
}

type binaryOp struct {
	op  string
	lhs node
	rhs node
}

func (b *binaryOp) eval(ctx Context) float64 {
	l := b.lhs.eval(ctx)
	r := b.rhs.eval(ctx)
	switch b.op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		// IEEE semantics: x/0 is Inf or NaN, never an error
		return l / r
	case "^":
		return math.Pow(l, r)
	case ">":
		return boolVal(l > r)
	case "<":
		return boolVal(l < r)
	case ">=":
		return boolVal(l >= r)
	case "<=":
		return boolVal(l <= r)
	case "==":
		return boolVal(l == r)
	case "!=":
		return boolVal(l != r)
	}
	return math.NaN()
}

// boolVal encodes a comparison result. NaN operands make every
// comparison except != false, so NaN never satisfies a spike condition.
func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (b *binaryOp) equal(other node) bool {
	o, ok := other.(*binaryOp)
	return ok && b.op == o.op && b.lhs.equal(o.lhs) && b.rhs.equal(o.rhs)
}

func (b *binaryOp) writeTo(sb *strings.Builder) {
	fmt.Fprintf(sb, "(%s ", b.op)
	b.lhs.writeTo(sb)
	sb.WriteByte(' ')
	b.rhs.writeTo(sb)
	sb.WriteByte(')')
}

type callOp struct {
	name string
	pos  int
	fn   func(args []float64) float64
	args []node
}

func (c *callOp) eval(ctx Context) float64 {
	var buf [maxArity]float64
	for i, a := range c.args {
		buf[i] = a.eval(ctx)
	}
	return c.fn(buf[:len(c.args)])
}

func (c *callOp) equal(other node) bool {
	o, ok := other.(*callOp)
	if !ok || c.name != o.name || len(c.args) != len(o.args) {
		return false
	}
	for i := range c.args {
		if !c.args[i].equal(o.args[i]) {
			return false
		}
	}
	return true
}

func (c *callOp) writeTo(sb *strings.Builder) {
	fmt.Fprintf(sb, "(%s", c.name)
	for _, a := range c.args {
		sb.WriteByte(' ')
		a.writeTo(sb)
	}
	sb.WriteByte(')')
}
