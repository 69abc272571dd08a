package expr

import (
	"math"
	"sort"
)

const maxArity = 2

type builtin struct {
	arity int
	fn    func(args []float64) float64
}

// The registry is closed: unknown functions are rejected at compile
// time, never at evaluation time. Out-of-domain arguments follow IEEE
// semantics (log(-1) is NaN, not an error).
var builtins = map[string]builtin{
	"abs":   {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"exp":   {1, func(a []float64) float64 { return math.Exp(a[0]) }},
	"log":   {1, func(a []float64) float64 { return math.Log(a[0]) }},
	"sqrt":  {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"sin":   {1, func(a []float64) float64 { return math.Sin(a[0]) }},
	"cos":   {1, func(a []float64) float64 { return math.Cos(a[0]) }},
	"tan":   {1, func(a []float64) float64 { return math.Tan(a[0]) }},
	"tanh":  {1, func(a []float64) float64 { return math.Tanh(a[0]) }},
	"floor": {1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"ceil":  {1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	"min":   {2, func(a []float64) float64 { return math.Min(a[0], a[1]) }},
	"max":   {2, func(a []float64) float64 { return math.Max(a[0], a[1]) }},
	"pow":   {2, func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
}

// Functions returns the registered function names, sorted.
func Functions() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
