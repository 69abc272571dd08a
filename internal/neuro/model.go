package neuro

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/spikesim/internal/expr"
)

// Reserved identifiers available to every equation in addition to the
// model's declared state variables and parameters.
const (
	// InputVar accumulates delivered synaptic input for the tick.
	InputVar = "I_syn"
	// DriveVar carries the external drive current.
	DriveVar = "I_ext"
	// TimeVar is the current simulated time.
	TimeVar = "t"
)

// ModelSpec is the textual definition of a neuron model, as written by
// a user or loaded from configuration.
type ModelSpec struct {
	Name string `yaml:"name"`
	// Vars declares the state variables; the first is conventionally
	// the membrane potential.
	Vars   []string           `yaml:"vars"`
	Init   map[string]float64 `yaml:"init"`
	Params map[string]float64 `yaml:"params"`
	// Update holds one equation per line: "v = rhs" or "dv/dt = rhs".
	Update []string `yaml:"update"`
	// Spike is the firing condition, e.g. "v > v_thresh".
	Spike string `yaml:"spike"`
	// Reset holds assignment equations applied when the neuron fires.
	Reset []string `yaml:"reset"`
	// Refractory is the post-spike window in simulated time during
	// which the neuron neither updates nor fires.
	Refractory float64 `yaml:"refractory"`
}

// Model is a compiled, immutable neuron model. Many neurons share one
// Model; all mutable state lives in the per-neuron state table.
type Model struct {
	name       string
	vars       []string
	init       map[string]float64
	params     map[string]float64
	updates    []*expr.Equation
	spike      *expr.Expr
	resets     []*expr.Equation
	refractory float64
}

// CompileModel validates and compiles a ModelSpec. Every equation is
// resolved against the declared variables, parameters and the reserved
// identifiers; failures carry the offending equation text.
func CompileModel(spec ModelSpec) (*Model, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("neuro: model name is required")
	}
	if len(spec.Vars) == 0 {
		return nil, fmt.Errorf("neuro: model %q declares no state variables", spec.Name)
	}
	if spec.Spike == "" {
		return nil, fmt.Errorf("neuro: model %q has no spike condition", spec.Name)
	}
	if spec.Refractory < 0 || math.IsNaN(spec.Refractory) {
		return nil, fmt.Errorf("neuro: model %q has negative refractory duration", spec.Name)
	}

	vars := make(map[string]struct{}, len(spec.Vars))
	for _, v := range spec.Vars {
		if v == InputVar || v == DriveVar || v == TimeVar {
			return nil, fmt.Errorf("neuro: model %q redeclares reserved identifier %q", spec.Name, v)
		}
		if _, dup := vars[v]; dup {
			return nil, fmt.Errorf("neuro: model %q declares variable %q twice", spec.Name, v)
		}
		vars[v] = struct{}{}
	}
	for p := range spec.Params {
		if _, clash := vars[p]; clash {
			return nil, fmt.Errorf("neuro: model %q parameter %q clashes with a state variable", spec.Name, p)
		}
		if p == InputVar || p == DriveVar || p == TimeVar {
			return nil, fmt.Errorf("neuro: model %q redeclares reserved identifier %q", spec.Name, p)
		}
	}
	for v := range spec.Init {
		if _, ok := vars[v]; !ok {
			return nil, fmt.Errorf("neuro: model %q initializes undeclared variable %q", spec.Name, v)
		}
	}

	idents := expr.NewIdents(InputVar, DriveVar, TimeVar)
	idents = idents.With(spec.Vars...)
	for p := range spec.Params {
		idents = idents.With(p)
	}

	m := &Model{
		name:       spec.Name,
		vars:       append([]string(nil), spec.Vars...),
		init:       make(map[string]float64, len(spec.Vars)),
		params:     make(map[string]float64, len(spec.Params)),
		refractory: spec.Refractory,
	}
	for _, v := range spec.Vars {
		m.init[v] = spec.Init[v]
	}
	for p, val := range spec.Params {
		m.params[p] = val
	}

	seen := make(map[string]struct{}, len(spec.Update))
	for _, src := range spec.Update {
		eq, err := expr.CompileEquation(src, idents)
		if err != nil {
			return nil, fmt.Errorf("neuro: model %q update %q: %w", spec.Name, src, err)
		}
		if _, ok := vars[eq.Target]; !ok {
			return nil, fmt.Errorf("neuro: model %q update %q targets undeclared variable %q", spec.Name, src, eq.Target)
		}
		if _, dup := seen[eq.Target]; dup {
			return nil, fmt.Errorf("neuro: model %q has two update rules for %q", spec.Name, eq.Target)
		}
		seen[eq.Target] = struct{}{}
		m.updates = append(m.updates, eq)
	}

	spike, err := expr.Compile(spec.Spike, idents)
	if err != nil {
		return nil, fmt.Errorf("neuro: model %q spike condition %q: %w", spec.Name, spec.Spike, err)
	}
	m.spike = spike

	for _, src := range spec.Reset {
		eq, err := expr.CompileEquation(src, idents)
		if err != nil {
			return nil, fmt.Errorf("neuro: model %q reset %q: %w", spec.Name, src, err)
		}
		if eq.Differential {
			return nil, fmt.Errorf("neuro: model %q reset %q must be an assignment", spec.Name, src)
		}
		if _, ok := vars[eq.Target]; !ok {
			return nil, fmt.Errorf("neuro: model %q reset %q targets undeclared variable %q", spec.Name, src, eq.Target)
		}
		m.resets = append(m.resets, eq)
	}

	return m, nil
}

func (m *Model) Name() string        { return m.name }
func (m *Model) Refractory() float64 { return m.refractory }

// Vars returns the declared state variable names in declaration order.
func (m *Model) Vars() []string { return append([]string(nil), m.vars...) }

// Params returns a copy of the parameter table.
func (m *Model) Params() map[string]float64 {
	out := make(map[string]float64, len(m.params))
	for k, v := range m.params {
		out[k] = v
	}
	return out
}

// ParamNames returns the parameter names, sorted.
func (m *Model) ParamNames() []string {
	names := make([]string, 0, len(m.params))
	for p := range m.params {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// InitialState returns a fresh state-variable table for one neuron.
func (m *Model) InitialState() map[string]float64 {
	out := make(map[string]float64, len(m.init))
	for k, v := range m.init {
		out[k] = v
	}
	return out
}

// FillContext writes the model parameters into ctx. State variables,
// reserved identifiers and the drive value are the caller's part.
func (m *Model) FillContext(ctx expr.Context) {
	for k, v := range m.params {
		ctx[k] = v
	}
}

// ApplyUpdates evaluates every update rule against ctx (which holds
// the pre-update values) and writes the results into vars. Because all
// right-hand sides read ctx, the order of update rules within a model
// is unobservable.
func (m *Model) ApplyUpdates(ctx expr.Context, dt float64, vars map[string]float64) {
	for _, eq := range m.updates {
		v := eq.RHS.Eval(ctx)
		if eq.Differential {
			vars[eq.Target] = ctx[eq.Target] + dt*v
		} else {
			vars[eq.Target] = v
		}
	}
}

// SpikeFires evaluates the spike condition. NaN never fires.
func (m *Model) SpikeFires(ctx expr.Context) bool {
	v := m.spike.Eval(ctx)
	return v != 0 && !math.IsNaN(v)
}

// ApplyResets evaluates the reset assignments against ctx and writes
// the results into vars.
func (m *Model) ApplyResets(ctx expr.Context, vars map[string]float64) {
	for _, eq := range m.resets {
		vars[eq.Target] = eq.RHS.Eval(ctx)
	}
}
