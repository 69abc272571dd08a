package engine

import (
	"math"

	"github.com/san-kum/spikesim/internal/neuro"
)

// Network owns the neuron and synapse tables. Topology is mutable
// until a Stepper is built over it; after that every edit fails with
// ErrFrozenTopology.
type Network struct {
	neurons  []*neuronState
	synapses []neuro.Synapse
	outgoing [][]int
	frozen   bool
}

func NewNetwork() *Network {
	return &Network{}
}

// AddNeuron creates one neuron instance over a shared compiled model
// and returns its stable index.
func (n *Network) AddNeuron(m *neuro.Model) (neuro.NeuronID, error) {
	if n.frozen {
		return 0, neuro.ErrFrozenTopology
	}
	id := neuro.NeuronID(len(n.neurons))
	n.neurons = append(n.neurons, newNeuronState(id, m))
	n.outgoing = append(n.outgoing, nil)
	return id, nil
}

// AddPopulation creates count neurons sharing one model and returns
// their ids in order.
func (n *Network) AddPopulation(m *neuro.Model, count int) ([]neuro.NeuronID, error) {
	ids := make([]neuro.NeuronID, 0, count)
	for i := 0; i < count; i++ {
		id, err := n.AddNeuron(m)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Connect adds a directed synapse. Self-loops and duplicate edges are
// allowed; duplicates are distinct entries whose effects sum at
// delivery.
func (n *Network) Connect(source, target neuro.NeuronID, weight, delay float64) (neuro.SynapseID, error) {
	if n.frozen {
		return 0, neuro.ErrFrozenTopology
	}
	if !n.valid(source) || !n.valid(target) {
		return 0, neuro.ErrUnknownNeuron
	}
	if delay < 0 || math.IsNaN(delay) {
		return 0, neuro.ErrInvalidDelay
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return 0, neuro.ErrInvalidWeight
	}

	id := neuro.SynapseID(len(n.synapses))
	n.synapses = append(n.synapses, neuro.Synapse{
		ID:     id,
		Source: source,
		Target: target,
		Weight: weight,
		Delay:  delay,
	})
	n.outgoing[source] = append(n.outgoing[source], int(id))
	return id, nil
}

func (n *Network) NumNeurons() int  { return len(n.neurons) }
func (n *Network) NumSynapses() int { return len(n.synapses) }

// Synapses returns a copy of the synapse table.
func (n *Network) Synapses() []neuro.Synapse {
	return append([]neuro.Synapse(nil), n.synapses...)
}

func (n *Network) valid(id neuro.NeuronID) bool {
	return id >= 0 && int(id) < len(n.neurons)
}

func (n *Network) freeze() { n.frozen = true }
