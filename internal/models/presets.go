// Package models ships the built-in neuron model definitions. Each
// preset is a plain equation set; users can start from one, override
// parameters and recompile.
package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/spikesim/internal/neuro"
)

// Leaky is a leaky integrate-and-fire neuron. The membrane decays
// toward rest and fires past a fixed threshold.
func Leaky() neuro.ModelSpec {
	return neuro.ModelSpec{
		Name: "leaky",
		Vars: []string{"v"},
		Init: map[string]float64{"v": -70},
		Params: map[string]float64{
			"v_rest":   -70,
			"v_reset":  -90,
			"v_thresh": -55,
			"r_m":      1.3,
		},
		Update:     []string{"dv/dt = (v_rest - v) / r_m + I_syn + I_ext"},
		Spike:      "v > v_thresh",
		Reset:      []string{"v = v_reset"},
		Refractory: 0.09,
	}
}

// Izhikevich is the two-variable quadratic model with regular-spiking
// parameters.
func Izhikevich() neuro.ModelSpec {
	return neuro.ModelSpec{
		Name: "izhikevich",
		Vars: []string{"v", "u"},
		Init: map[string]float64{"v": -65, "u": -13},
		Params: map[string]float64{
			"a": 0.02,
			"b": 0.2,
			"c": -65,
			"d": 8,
		},
		Update: []string{
			"dv/dt = 0.04 * v * v + 5 * v + 140 - u + I_syn + I_ext",
			"du/dt = a * (b * v - u)",
		},
		Spike: "v >= 30",
		Reset: []string{
			"v = c",
			"u = u + d",
		},
	}
}

// Oscillating is a pacemaker: the membrane is pushed a little past the
// threshold so it fires periodically with no input. The frequency
// parameter scales the climb rate.
func Oscillating() neuro.ModelSpec {
	return neuro.ModelSpec{
		Name: "oscillating",
		Vars: []string{"v"},
		Init: map[string]float64{"v": -70},
		Params: map[string]float64{
			"v_reset":   -90,
			"v_thresh":  -55,
			"r_m":       1.3,
			"frequency": 0.1,
		},
		Update:     []string{"dv/dt = r_m * (v_thresh + 5 - v) * frequency + I_syn + I_ext"},
		Spike:      "v >= v_thresh",
		Reset:      []string{"v = v_reset"},
		Refractory: 0,
	}
}

var presets = map[string]func() neuro.ModelSpec{
	"leaky":       Leaky,
	"izhikevich":  Izhikevich,
	"oscillating": Oscillating,
}

// Get returns a preset spec by name.
func Get(name string) (neuro.ModelSpec, error) {
	fn, ok := presets[name]
	if !ok {
		return neuro.ModelSpec{}, fmt.Errorf("models: unknown preset: %s", name)
	}
	return fn(), nil
}

// Names lists the preset names, sorted.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
