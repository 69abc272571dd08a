// Package neuro holds the core value types of the simulator: neuron
// models, synapses, spike events and the simulation configuration.
package neuro

import "math"

// NeuronID is a stable index into a network's neuron table.
type NeuronID int

// SynapseID is a stable index into a network's synapse table.
type SynapseID int

// Synapse is a directed weighted connection with a transmission delay
// in simulated time. Negative weights are inhibitory. Immutable once
// the topology is frozen.
type Synapse struct {
	ID     SynapseID
	Source NeuronID
	Target NeuronID
	Weight float64
	Delay  float64
}

// SpikeEvent is a pending delivery: Magnitude is added to the target's
// input accumulator once the clock reaches Time. Seq preserves
// insertion order for deterministic tie-breaking.
type SpikeEvent struct {
	Target    NeuronID
	Time      float64
	Magnitude float64
	Seq       uint64
}

// Spike records that a neuron fired at a simulated time.
type Spike struct {
	Neuron NeuronID
	Time   float64
}

// Snapshot is a read-only copy of one neuron's post-tick state.
type Snapshot struct {
	Neuron          NeuronID
	Model           string
	Vars            map[string]float64
	Input           float64
	Refractory      bool
	RefractoryUntil float64
	LastSpike       float64
}

// Config controls one simulation run. It is read at the start of every
// advance call; the host owns it and passes it explicitly.
type Config struct {
	// Dt is the base tick duration in simulated time.
	Dt float64
	// Speed scales the effective step duration per tick. Purely a
	// timing parameter; it never changes evaluation order.
	Speed float64
	// DropRefractoryInput discards synaptic input delivered to a
	// refractory neuron instead of retaining it for the first
	// post-refractory evaluation.
	DropRefractoryInput bool
	// MaxPendingEvents bounds the spike event queue. Zero means
	// unbounded; exceeding the bound is a loud error, never a drop.
	MaxPendingEvents int
	// Workers is the size of the phase worker pool. Zero or one runs
	// the evaluation phases serially.
	Workers int
}

// DefaultConfig matches the original clock resolution (tau = 0.025).
func DefaultConfig() Config {
	return Config{
		Dt:    0.025,
		Speed: 1.0,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return ErrInvalidDt
	}
	if c.Speed <= 0 || math.IsNaN(c.Speed) || math.IsInf(c.Speed, 0) {
		return ErrInvalidSpeed
	}
	if c.MaxPendingEvents < 0 {
		return ErrInvalidCapacity
	}
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	return nil
}

// Drive injects external input current into a neuron; the value is
// exposed to its equations as I_ext.
type Drive interface {
	Current(t float64) float64
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(t float64, fired []Spike)
	Value() float64
	Reset()
}
