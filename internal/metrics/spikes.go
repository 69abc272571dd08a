// Package metrics implements per-run spike statistics observed tick by
// tick.
package metrics

import (
	"github.com/san-kum/spikesim/internal/neuro"
)

// SpikeCount counts every spike across the whole network.
type SpikeCount struct {
	name  string
	count int
}

func NewSpikeCount() *SpikeCount {
	return &SpikeCount{name: "spike_count"}
}

func (c *SpikeCount) Name() string { return c.name }

func (c *SpikeCount) Observe(t float64, fired []neuro.Spike) {
	c.count += len(fired)
}

func (c *SpikeCount) Value() float64 { return float64(c.count) }

func (c *SpikeCount) Reset() { c.count = 0 }

// FiringRate is total spikes divided by observed simulated time, in
// spikes per time unit across the network.
type FiringRate struct {
	name  string
	count int
	start float64
	last  float64
	seen  bool
}

func NewFiringRate() *FiringRate {
	return &FiringRate{name: "firing_rate"}
}

func (r *FiringRate) Name() string { return r.name }

func (r *FiringRate) Observe(t float64, fired []neuro.Spike) {
	if !r.seen {
		r.start = t
		r.seen = true
	}
	r.last = t
	r.count += len(fired)
}

func (r *FiringRate) Value() float64 {
	if !r.seen || r.last <= r.start {
		return 0
	}
	return float64(r.count) / (r.last - r.start)
}

func (r *FiringRate) Reset() {
	r.count = 0
	r.start = 0
	r.last = 0
	r.seen = false
}

// ActiveNeurons tracks how many distinct neurons fired at least once.
type ActiveNeurons struct {
	name string
	seen map[neuro.NeuronID]struct{}
}

func NewActiveNeurons() *ActiveNeurons {
	return &ActiveNeurons{
		name: "active_neurons",
		seen: make(map[neuro.NeuronID]struct{}),
	}
}

func (a *ActiveNeurons) Name() string { return a.name }

func (a *ActiveNeurons) Observe(t float64, fired []neuro.Spike) {
	for _, s := range fired {
		a.seen[s.Neuron] = struct{}{}
	}
}

func (a *ActiveNeurons) Value() float64 { return float64(len(a.seen)) }

func (a *ActiveNeurons) Reset() { a.seen = make(map[neuro.NeuronID]struct{}) }
