package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/spikesim/internal/models"
	"github.com/san-kum/spikesim/internal/neuro"
)

// Registry resolves model names to specs. It starts with the built-in
// presets; inline definitions from a scenario shadow them.
type Registry struct {
	specs map[string]neuro.ModelSpec
}

func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]neuro.ModelSpec)}
	for _, name := range models.Names() {
		spec, _ := models.Get(name)
		r.specs[name] = spec
	}
	return r
}

// Register adds or replaces a model definition.
func (r *Registry) Register(spec neuro.ModelSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("experiment: model with empty name")
	}
	r.specs[spec.Name] = spec
	return nil
}

// ModelSpec returns a copy of the named model definition.
func (r *Registry) ModelSpec(name string) (neuro.ModelSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return neuro.ModelSpec{}, fmt.Errorf("experiment: unknown model: %s", name)
	}
	out := spec
	out.Params = make(map[string]float64, len(spec.Params))
	for k, v := range spec.Params {
		out.Params[k] = v
	}
	out.Init = make(map[string]float64, len(spec.Init))
	for k, v := range spec.Init {
		out.Init[k] = v
	}
	return out, nil
}

// ListModels returns the registered model names, sorted.
func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
