package engine

import (
	"math"

	"github.com/san-kum/spikesim/internal/expr"
	"github.com/san-kum/spikesim/internal/neuro"
)

// timeEpsilon absorbs float accumulation drift when comparing event and
// refractory deadlines against the simulation clock.
const timeEpsilon = 1e-9

// neuronState is the per-neuron mutable state. The compiled model is
// shared; everything else here belongs to exactly one neuron, so the
// evaluation phases may visit neurons concurrently without locking.
type neuronState struct {
	id    neuro.NeuronID
	model *neuro.Model
	drive neuro.Drive

	vars  map[string]float64
	input float64
	// consumed marks that the last tick's evaluation read the input
	// accumulator, so the next tick starts it from zero.
	consumed        bool
	refractoryUntil float64
	lastSpike       float64

	// fired is scratch for the spike-check phase, applied serially.
	fired bool
	ctx   expr.Context
}

func newNeuronState(id neuro.NeuronID, m *neuro.Model) *neuronState {
	n := &neuronState{
		id:        id,
		model:     m,
		vars:      m.InitialState(),
		lastSpike: math.Inf(-1),
		ctx:       make(expr.Context, 8),
	}
	m.FillContext(n.ctx)
	return n
}

func (n *neuronState) active(now float64) bool {
	return now >= n.refractoryUntil-timeEpsilon
}

// refreshCtx copies the current state into the evaluation context.
// Parameters were written once at construction and never change.
func (n *neuronState) refreshCtx(now float64) {
	for k, v := range n.vars {
		n.ctx[k] = v
	}
	n.ctx[neuro.InputVar] = n.input
	drive := 0.0
	if n.drive != nil {
		drive = n.drive.Current(now)
	}
	n.ctx[neuro.DriveVar] = drive
	n.ctx[neuro.TimeVar] = now
}

func (n *neuronState) evaluate(now, dt float64) {
	n.refreshCtx(now)
	n.model.ApplyUpdates(n.ctx, dt, n.vars)
	n.consumed = true
}

// checkSpike evaluates the firing condition against the post-update
// state. Effects are applied later, serially.
func (n *neuronState) checkSpike(now float64) {
	n.refreshCtx(now)
	n.fired = n.model.SpikeFires(n.ctx)
}

func (n *neuronState) snapshot(now float64) neuro.Snapshot {
	vars := make(map[string]float64, len(n.vars))
	for k, v := range n.vars {
		vars[k] = v
	}
	return neuro.Snapshot{
		Neuron:          n.id,
		Model:           n.model.Name(),
		Vars:            vars,
		Input:           n.input,
		Refractory:      !n.active(now),
		RefractoryUntil: n.refractoryUntil,
		LastSpike:       n.lastSpike,
	}
}
