// Package record collects spike trains and membrane traces during a
// run. Recorders attach to the stepper as observers.
package record

import (
	"github.com/san-kum/spikesim/internal/engine"
	"github.com/san-kum/spikesim/internal/neuro"
)

// DefaultSpikeCapacity bounds a spike recorder unless overridden.
const DefaultSpikeCapacity = 1000

// SpikeRecorder keeps the most informative prefix of the run: once the
// capacity is reached, further spikes are counted but not stored.
type SpikeRecorder struct {
	capacity int
	spikes   []neuro.Spike
	dropped  int
}

// NewSpikeRecorder builds a recorder bounded to capacity spikes; zero
// or negative means DefaultSpikeCapacity.
func NewSpikeRecorder(capacity int) *SpikeRecorder {
	if capacity <= 0 {
		capacity = DefaultSpikeCapacity
	}
	return &SpikeRecorder{capacity: capacity}
}

func (r *SpikeRecorder) OnTick(t float64, fired []neuro.Spike) {
	for _, s := range fired {
		if len(r.spikes) >= r.capacity {
			r.dropped++
			continue
		}
		r.spikes = append(r.spikes, s)
	}
}

// Spikes returns the stored spikes in firing order.
func (r *SpikeRecorder) Spikes() []neuro.Spike {
	return append([]neuro.Spike(nil), r.spikes...)
}

// Dropped reports spikes lost to the capacity bound.
func (r *SpikeRecorder) Dropped() int { return r.dropped }

// ForNeuron filters the stored spikes down to one neuron.
func (r *SpikeRecorder) ForNeuron(id neuro.NeuronID) []neuro.Spike {
	var out []neuro.Spike
	for _, s := range r.spikes {
		if s.Neuron == id {
			out = append(out, s)
		}
	}
	return out
}

// Sample is one point of a membrane trace.
type Sample struct {
	Time  float64
	Value float64
}

// TraceRecorder samples one state variable of selected neurons after
// every tick.
type TraceRecorder struct {
	stepper *engine.Stepper
	varName string
	neurons []neuro.NeuronID
	traces  map[neuro.NeuronID][]Sample
}

// NewTraceRecorder builds a recorder over an already-built stepper.
// Unknown neurons or variables surface on the first tick as missing
// traces, not as panics.
func NewTraceRecorder(s *engine.Stepper, varName string, neurons ...neuro.NeuronID) *TraceRecorder {
	return &TraceRecorder{
		stepper: s,
		varName: varName,
		neurons: append([]neuro.NeuronID(nil), neurons...),
		traces:  make(map[neuro.NeuronID][]Sample),
	}
}

func (r *TraceRecorder) OnTick(t float64, fired []neuro.Spike) {
	for _, id := range r.neurons {
		v, err := r.stepper.Var(id, r.varName)
		if err != nil {
			continue
		}
		r.traces[id] = append(r.traces[id], Sample{Time: t, Value: v})
	}
}

// Trace returns the samples recorded for one neuron.
func (r *TraceRecorder) Trace(id neuro.NeuronID) []Sample {
	return append([]Sample(nil), r.traces[id]...)
}

// Traces returns a copy of every recorded trace, keyed by neuron.
func (r *TraceRecorder) Traces() map[neuro.NeuronID][]Sample {
	out := make(map[neuro.NeuronID][]Sample, len(r.traces))
	for id, samples := range r.traces {
		out[id] = append([]Sample(nil), samples...)
	}
	return out
}

// Values returns just the sampled values for one neuron, for plotting.
func (r *TraceRecorder) Values(id neuro.NeuronID) []float64 {
	trace := r.traces[id]
	out := make([]float64, len(trace))
	for i, s := range trace {
		out[i] = s.Value
	}
	return out
}
