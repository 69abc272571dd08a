// Package experiment assembles a runnable simulation from a scenario
// configuration: models, populations, synapses, drives, recorders and
// the default metric set.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/drive"
	"github.com/san-kum/spikesim/internal/engine"
	"github.com/san-kum/spikesim/internal/metrics"
	"github.com/san-kum/spikesim/internal/neuro"
	"github.com/san-kum/spikesim/internal/record"
)

// Experiment is a fully wired simulation ready to run.
type Experiment struct {
	cfg         *config.Config
	stepper     *engine.Stepper
	populations map[string][]neuro.NeuronID
	order       []string
	spikes      *record.SpikeRecorder
	trace       *record.TraceRecorder
	metrics     []neuro.Metric
}

// Result summarizes one completed run.
type Result struct {
	Ticks    int
	Duration float64
	Spikes   []neuro.Spike
	Dropped  int
	Metrics  map[string]float64
}

// New builds an experiment from a scenario. Inline model definitions
// shadow the built-in presets of the same name.
func New(cfg *config.Config) (*Experiment, error) {
	registry := NewRegistry()
	for _, spec := range cfg.Models {
		if err := registry.Register(spec); err != nil {
			return nil, err
		}
	}

	if len(cfg.Populations) == 0 {
		return nil, fmt.Errorf("experiment: scenario defines no populations")
	}

	e := &Experiment{
		cfg:         cfg,
		populations: make(map[string][]neuro.NeuronID, len(cfg.Populations)),
	}

	net := engine.NewNetwork()
	for _, pop := range cfg.Populations {
		if pop.Name == "" {
			return nil, fmt.Errorf("experiment: population with empty name")
		}
		if _, dup := e.populations[pop.Name]; dup {
			return nil, fmt.Errorf("experiment: duplicate population %q", pop.Name)
		}
		if pop.Count <= 0 {
			return nil, fmt.Errorf("experiment: population %q has count %d", pop.Name, pop.Count)
		}

		spec, err := registry.ModelSpec(pop.Model)
		if err != nil {
			return nil, err
		}
		for name, val := range pop.Params {
			if _, ok := spec.Params[name]; !ok {
				return nil, fmt.Errorf("experiment: population %q overrides unknown parameter %q of model %q", pop.Name, name, pop.Model)
			}
			spec.Params[name] = val
		}

		model, err := neuro.CompileModel(spec)
		if err != nil {
			return nil, err
		}
		ids, err := net.AddPopulation(model, pop.Count)
		if err != nil {
			return nil, err
		}
		e.populations[pop.Name] = ids
		e.order = append(e.order, pop.Name)
	}

	for _, syn := range cfg.Synapses {
		from, err := e.resolve(syn.From, syn.FromIndex)
		if err != nil {
			return nil, err
		}
		to, err := e.resolve(syn.To, syn.ToIndex)
		if err != nil {
			return nil, err
		}
		if _, err := net.Connect(from, to, syn.Weight, syn.Delay); err != nil {
			return nil, err
		}
	}

	for _, proj := range cfg.Projections {
		fromIDs, ok := e.populations[proj.From]
		if !ok {
			return nil, fmt.Errorf("experiment: projection from unknown population %q", proj.From)
		}
		toIDs, ok := e.populations[proj.To]
		if !ok {
			return nil, fmt.Errorf("experiment: projection to unknown population %q", proj.To)
		}
		for _, from := range fromIDs {
			for _, to := range toIDs {
				if _, err := net.Connect(from, to, proj.Weight, proj.Delay); err != nil {
					return nil, err
				}
			}
		}
	}

	stepper, err := engine.NewStepper(net, cfg.EngineConfig())
	if err != nil {
		return nil, err
	}
	e.stepper = stepper

	for _, dc := range cfg.Drives {
		ids, ok := e.populations[dc.Population]
		if !ok {
			return nil, fmt.Errorf("experiment: drive targets unknown population %q", dc.Population)
		}
		d, err := drive.New(dc.Kind, dc.Params)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if err := stepper.SetDrive(id, d); err != nil {
				return nil, err
			}
		}
	}

	e.spikes = record.NewSpikeRecorder(cfg.Record.SpikeCapacity)
	stepper.AddObserver(e.spikes)

	traceVar := cfg.Record.TraceVar
	if traceVar == "" {
		traceVar = "v"
	}
	tracePop := cfg.Record.TracePopulation
	if tracePop == "" {
		tracePop = e.order[0]
	}
	traceIDs, ok := e.populations[tracePop]
	if !ok {
		return nil, fmt.Errorf("experiment: trace targets unknown population %q", tracePop)
	}
	e.trace = record.NewTraceRecorder(stepper, traceVar, traceIDs...)
	stepper.AddObserver(e.trace)

	e.metrics = []neuro.Metric{
		metrics.NewSpikeCount(),
		metrics.NewFiringRate(),
		metrics.NewActiveNeurons(),
	}
	for _, m := range e.metrics {
		stepper.AddMetric(m)
	}

	return e, nil
}

func (e *Experiment) resolve(pop string, index int) (neuro.NeuronID, error) {
	ids, ok := e.populations[pop]
	if !ok {
		return 0, fmt.Errorf("experiment: synapse references unknown population %q", pop)
	}
	if index < 0 || index >= len(ids) {
		return 0, fmt.Errorf("experiment: index %d out of range for population %q of size %d", index, pop, len(ids))
	}
	return ids[index], nil
}

// Run advances the configured number of ticks and collects the result.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if _, err := e.stepper.Run(ctx, e.cfg.Ticks); err != nil {
		return nil, err
	}

	res := &Result{
		Ticks:    e.cfg.Ticks,
		Duration: e.stepper.Now(),
		Spikes:   e.spikes.Spikes(),
		Dropped:  e.spikes.Dropped(),
		Metrics:  make(map[string]float64, len(e.metrics)),
	}
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}

// Stepper exposes the underlying stepper for interactive hosts.
func (e *Experiment) Stepper() *engine.Stepper { return e.stepper }

// Population returns the neuron ids of one population.
func (e *Experiment) Population(name string) []neuro.NeuronID {
	return append([]neuro.NeuronID(nil), e.populations[name]...)
}

// Populations returns the population names in declaration order.
func (e *Experiment) Populations() []string {
	return append([]string(nil), e.order...)
}

// SpikeRecorder returns the run's spike recorder.
func (e *Experiment) SpikeRecorder() *record.SpikeRecorder { return e.spikes }

// TraceRecorder returns the run's membrane trace recorder.
func (e *Experiment) TraceRecorder() *record.TraceRecorder { return e.trace }
