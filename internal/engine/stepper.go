package engine

import (
	"context"
	"math"

	"github.com/san-kum/spikesim/internal/neuro"
)

// Observer is notified after every completed tick with the spikes that
// fired during it. Observers run on the stepping goroutine.
type Observer interface {
	OnTick(t float64, fired []neuro.Spike)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(t float64, fired []neuro.Spike)

func (f ObserverFunc) OnTick(t float64, fired []neuro.Spike) { f(t, fired) }

// Stepper advances a frozen network tick by tick. All methods must be
// called from a single goroutine; the stepper parallelizes internally
// across neurons when configured with workers.
type Stepper struct {
	net *Network
	cfg neuro.Config

	time   float64
	tick   int64
	paused bool

	queue     *eventQueue
	observers []Observer
	metrics   []neuro.Metric

	fired []neuro.Spike
	due   []neuro.SpikeEvent
}

// NewStepper validates the configuration, freezes the network topology
// and returns a stepper positioned at time zero.
func NewStepper(net *Network, cfg neuro.Config) (*Stepper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if net.NumNeurons() == 0 {
		return nil, neuro.ErrEmptyNetwork
	}
	net.freeze()
	return &Stepper{
		net:   net,
		cfg:   cfg,
		queue: newEventQueue(cfg.MaxPendingEvents),
	}, nil
}

func (s *Stepper) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Stepper) AddMetric(m neuro.Metric) {
	m.Reset()
	s.metrics = append(s.metrics, m)
}

// SetDrive attaches an external drive to one neuron, replacing any
// previous drive. A nil drive detaches.
func (s *Stepper) SetDrive(id neuro.NeuronID, d neuro.Drive) error {
	if !s.net.valid(id) {
		return neuro.ErrUnknownNeuron
	}
	s.net.neurons[id].drive = d
	return nil
}

func (s *Stepper) Pause()       { s.paused = true }
func (s *Stepper) Resume()      { s.paused = false }
func (s *Stepper) Paused() bool { return s.paused }

// SetSpeed changes the per-tick time multiplier. It takes effect on
// the next tick; past ticks keep the dt they were computed with.
func (s *Stepper) SetSpeed(multiplier float64) error {
	if multiplier <= 0 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return neuro.ErrInvalidSpeed
	}
	s.cfg.Speed = multiplier
	return nil
}

func (s *Stepper) Speed() float64 { return s.cfg.Speed }
func (s *Stepper) Now() float64   { return s.time }
func (s *Stepper) Tick() int64    { return s.tick }

// PendingEvents reports the number of queued spike deliveries.
func (s *Stepper) PendingEvents() int { return s.queue.len() }

// Inspect returns a copy of one neuron's state as of the last tick.
func (s *Stepper) Inspect(id neuro.NeuronID) (neuro.Snapshot, error) {
	if !s.net.valid(id) {
		return neuro.Snapshot{}, neuro.ErrUnknownNeuron
	}
	return s.net.neurons[id].snapshot(s.time), nil
}

// Var reads one state variable of one neuron.
func (s *Stepper) Var(id neuro.NeuronID, name string) (float64, error) {
	if !s.net.valid(id) {
		return 0, neuro.ErrUnknownNeuron
	}
	v, ok := s.net.neurons[id].vars[name]
	if !ok {
		return 0, neuro.ErrUnknownVariable
	}
	return v, nil
}

// Advance runs up to ticks ticks and returns the spikes fired, in
// firing order. While paused it advances nothing and returns nil.
func (s *Stepper) Advance(ticks int) ([]neuro.Spike, error) {
	if s.paused {
		return nil, nil
	}
	var all []neuro.Spike
	for i := 0; i < ticks; i++ {
		fired, err := s.step()
		all = append(all, fired...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

// Step runs exactly one tick regardless of the paused flag. It is the
// single-step debugging primitive.
func (s *Stepper) Step() ([]neuro.Spike, error) {
	return s.step()
}

// Run advances ticks ticks, checking ctx between ticks. Unlike
// Advance it ignores the paused flag; it is the batch entry point for
// hosts that own the whole run.
func (s *Stepper) Run(ctx context.Context, ticks int) ([]neuro.Spike, error) {
	var all []neuro.Spike
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}
		fired, err := s.step()
		all = append(all, fired...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

// step is one tick: advance the clock, expire consumed input, deliver
// due events, evaluate updates, then check and apply spikes.
func (s *Stepper) step() ([]neuro.Spike, error) {
	dt := s.cfg.Dt * s.cfg.Speed
	s.tick++
	s.time += dt
	now := s.time

	for _, n := range s.net.neurons {
		if n.consumed || s.cfg.DropRefractoryInput {
			n.input = 0
			n.consumed = false
		}
	}

	s.due = s.queue.popDue(now, s.due[:0])
	for _, ev := range s.due {
		s.net.neurons[ev.Target].input += ev.Magnitude
	}

	s.forEachActive(now, func(n *neuronState) { n.evaluate(now, dt) })
	s.forEachActive(now, func(n *neuronState) { n.checkSpike(now) })

	s.fired = s.fired[:0]
	var queueErr error
	for _, n := range s.net.neurons {
		if !n.fired {
			continue
		}
		n.fired = false
		n.model.ApplyResets(n.ctx, n.vars)
		n.refractoryUntil = now + n.model.Refractory()
		n.lastSpike = now
		s.fired = append(s.fired, neuro.Spike{Neuron: n.id, Time: now})

		if queueErr != nil {
			continue
		}
		for _, si := range s.net.outgoing[n.id] {
			syn := s.net.synapses[si]
			if err := s.queue.push(syn.Target, now+syn.Delay, syn.Weight); err != nil {
				queueErr = err
				break
			}
		}
	}

	for _, m := range s.metrics {
		m.Observe(now, s.fired)
	}
	for _, o := range s.observers {
		o.OnTick(now, s.fired)
	}

	fired := append([]neuro.Spike(nil), s.fired...)
	return fired, queueErr
}
