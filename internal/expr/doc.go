// Package expr compiles textual equations into immutable, re-evaluable
// expressions. Compilation resolves every identifier and function call
// against a declared set, so evaluation inside the simulation loop can
// never fail: it always produces a float64, including IEEE Inf/NaN.
package expr
