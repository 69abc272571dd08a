package expr

import (
	"errors"
	"testing"
)

func TestCompileEquationAssignment(t *testing.T) {
	idents := NewIdents("v", "v_reset")

	eq, err := CompileEquation("v = v_reset", idents)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if eq.Target != "v" {
		t.Errorf("expected target v, got %q", eq.Target)
	}
	if eq.Differential {
		t.Error("assignment reported as differential")
	}
	if got := eq.RHS.Eval(Context{"v_reset": -75}); got != -75 {
		t.Errorf("expected -75, got %v", got)
	}
}

func TestCompileEquationDifferential(t *testing.T) {
	idents := NewIdents("v", "v_rest", "tau_m")

	eq, err := CompileEquation("dv/dt = (v_rest - v) / tau_m", idents)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if eq.Target != "v" {
		t.Errorf("expected target v, got %q", eq.Target)
	}
	if !eq.Differential {
		t.Error("derivative not reported as differential")
	}

	got := eq.RHS.Eval(Context{"v": -60, "v_rest": -70, "tau_m": 10})
	if got != -1 {
		t.Errorf("expected -1, got %v", got)
	}
}

func TestCompileEquationMultiCharTarget(t *testing.T) {
	eq, err := CompileEquation("du/dt = a * (b - u)", NewIdents("u", "a", "b"))
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if eq.Target != "u" || !eq.Differential {
		t.Errorf("unexpected equation: %+v", eq)
	}
}

func TestCompileEquationErrors(t *testing.T) {
	idents := NewIdents("v", "a")

	tests := []string{
		"v + 1",         // no '='
		"v = a = 1",     // two '='
		"v + 1 = a",     // lhs not an identifier
		"dv/dx = a",     // derivative not over dt
		"d/dt = a",      // no variable in derivative
		"= a",           // empty lhs
		"v =",           // empty rhs
		"dv/dt = x + 1", // unknown rhs identifier
	}

	for _, src := range tests {
		if _, err := CompileEquation(src, idents); err == nil {
			t.Errorf("%q: expected error, got nil", src)
		}
	}
}

func TestCompileEquationUnknownTargetIsCallerProblem(t *testing.T) {
	// the target is syntactic only; semantic validation against the
	// declared state variables happens in the neuron model compiler
	eq, err := CompileEquation("w = v", NewIdents("v", "w"))
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if eq.Target != "w" {
		t.Errorf("expected target w, got %q", eq.Target)
	}
}

func TestCompileEquationLexError(t *testing.T) {
	_, err := CompileEquation("v = $", NewIdents("v"))
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected LexError, got %v", err)
	}
}
