package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/spikesim/internal/neuro"
)

func mustModel(t testing.TB, spec neuro.ModelSpec) *neuro.Model {
	t.Helper()
	m, err := neuro.CompileModel(spec)
	if err != nil {
		t.Fatalf("compile model %q: %v", spec.Name, err)
	}
	return m
}

// quietModel integrates its input and never fires on its own.
func quietModel(t testing.TB) *neuro.Model {
	return mustModel(t, neuro.ModelSpec{
		Name:   "integrator",
		Vars:   []string{"v"},
		Update: []string{"dv/dt = I_syn + I_ext"},
		Spike:  "v > 1e9",
	})
}

// onceModel fires on the first tick and then stays refractory forever.
func onceModel(t testing.TB) *neuro.Model {
	return mustModel(t, neuro.ModelSpec{
		Name:       "once",
		Vars:       []string{"v"},
		Update:     []string{"v = 0"},
		Spike:      "v >= 0",
		Refractory: 1e9,
	})
}

// burstModel fires on every tick.
func burstModel(t testing.TB) *neuro.Model {
	return mustModel(t, neuro.ModelSpec{
		Name:   "burst",
		Vars:   []string{"v"},
		Update: []string{"v = 0"},
		Spike:  "v >= 0",
	})
}

func lifModel(t testing.TB) *neuro.Model {
	return mustModel(t, neuro.ModelSpec{
		Name: "lif",
		Vars: []string{"v"},
		Init: map[string]float64{"v": -70},
		Params: map[string]float64{
			"v_rest":   -70,
			"v_reset":  -75,
			"v_thresh": -55,
			"tau_m":    10,
		},
		Update:     []string{"dv/dt = (v_rest - v) / tau_m + I_syn + I_ext"},
		Spike:      "v > v_thresh",
		Reset:      []string{"v = v_reset"},
		Refractory: 0.1,
	})
}

type driveFunc func(t float64) float64

func (f driveFunc) Current(t float64) float64 { return f(t) }

func TestStepperQuiescentNeuronNeverSpikes(t *testing.T) {
	net := NewNetwork()
	id, _ := net.AddNeuron(lifModel(t))
	s, err := NewStepper(net, neuro.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fired, err := s.Advance(1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fired) != 0 {
		t.Errorf("neuron at rest with no input fired %d times", len(fired))
	}
	if v, _ := s.Var(id, "v"); v != -70 {
		t.Errorf("expected v to stay at rest -70, got %v", v)
	}
}

func TestStepperSpikeDeliveryAfterDelay(t *testing.T) {
	cfg := neuro.DefaultConfig()
	net := NewNetwork()
	src, _ := net.AddNeuron(onceModel(t))
	dst, _ := net.AddNeuron(quietModel(t))
	net.Connect(src, dst, 2.0, 3*cfg.Dt)

	s, err := NewStepper(net, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// source fires on tick 1; three ticks later nothing has arrived yet
	if _, err := s.Advance(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, _ := s.Inspect(dst)
	if snap.Input != 0 {
		t.Fatalf("input arrived early: %v", snap.Input)
	}

	// tick 4 is exactly spike time + delay
	if _, err := s.Advance(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, _ = s.Inspect(dst)
	if snap.Input != 2.0 {
		t.Errorf("expected input 2.0 at the delivery tick, got %v", snap.Input)
	}
	if v, _ := s.Var(dst, "v"); math.Abs(v-2.0*s.Speed()*cfg.Dt) > 1e-12 {
		t.Errorf("delivered input must feed the same tick's update, v=%v", v)
	}

	// the accumulator is spent after one evaluation
	if _, err := s.Advance(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, _ = s.Inspect(dst)
	if snap.Input != 0 {
		t.Errorf("consumed input must clear on the next tick, got %v", snap.Input)
	}
}

func TestStepperPauseResumePreservesTrajectory(t *testing.T) {
	build := func() *Stepper {
		net := NewNetwork()
		id, _ := net.AddNeuron(lifModel(t))
		s, err := NewStepper(net, neuro.DefaultConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s.SetDrive(id, driveFunc(func(tm float64) float64 { return 20 * math.Sin(tm) }))
		return s
	}

	a := build()
	a.Advance(100)

	b := build()
	b.Advance(40)
	b.Pause()
	if fired, err := b.Advance(25); err != nil || fired != nil {
		t.Fatalf("paused Advance must be a no-op, got %v, %v", fired, err)
	}
	if b.Tick() != 40 {
		t.Fatalf("paused stepper advanced to tick %d", b.Tick())
	}
	b.Resume()
	b.Advance(60)

	va, _ := a.Var(0, "v")
	vb, _ := b.Var(0, "v")
	if va != vb {
		t.Errorf("pause/resume perturbed the trajectory: %v vs %v", va, vb)
	}
	if a.Now() != b.Now() {
		t.Errorf("clock diverged: %v vs %v", a.Now(), b.Now())
	}
}

func TestStepperStepWhilePaused(t *testing.T) {
	net := NewNetwork()
	net.AddNeuron(quietModel(t))
	s, _ := NewStepper(net, neuro.DefaultConfig())

	s.Pause()
	if _, err := s.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Tick() != 1 {
		t.Errorf("Step while paused must advance one tick, got %d", s.Tick())
	}
	if !s.Paused() {
		t.Error("Step must not clear the paused flag")
	}
}

func TestStepperSetSpeed(t *testing.T) {
	net := NewNetwork()
	net.AddNeuron(quietModel(t))
	cfg := neuro.DefaultConfig()
	s, _ := NewStepper(net, cfg)

	if err := s.SetSpeed(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Advance(1)
	if want := 2 * cfg.Dt; s.Now() != want {
		t.Errorf("expected time %v after one double-speed tick, got %v", want, s.Now())
	}

	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := s.SetSpeed(bad); !errors.Is(err, neuro.ErrInvalidSpeed) {
			t.Errorf("SetSpeed(%v): expected ErrInvalidSpeed, got %v", bad, err)
		}
	}
	if s.Speed() != 2 {
		t.Errorf("rejected speed must not stick, got %v", s.Speed())
	}
}

func refractoryTarget(t testing.TB) *neuro.Model {
	// fires on the first tick, then sits refractory for 0.5
	return mustModel(t, neuro.ModelSpec{
		Name:       "sleeper",
		Vars:       []string{"v"},
		Update:     []string{"v = v"},
		Spike:      "t < 0.03",
		Refractory: 0.5,
	})
}

func TestStepperRefractoryInputRetained(t *testing.T) {
	net := NewNetwork()
	src, _ := net.AddNeuron(burstModel(t))
	dst, _ := net.AddNeuron(refractoryTarget(t))
	net.Connect(src, dst, 1.0, 0)

	s, _ := NewStepper(net, neuro.DefaultConfig())
	s.Advance(4)

	// deliveries on ticks 2, 3 and 4 accumulate while refractory
	snap, _ := s.Inspect(dst)
	if !snap.Refractory {
		t.Fatal("target should still be refractory")
	}
	if snap.Input != 3.0 {
		t.Errorf("expected retained input 3.0, got %v", snap.Input)
	}
}

func TestStepperRefractoryInputDropped(t *testing.T) {
	net := NewNetwork()
	src, _ := net.AddNeuron(burstModel(t))
	dst, _ := net.AddNeuron(refractoryTarget(t))
	net.Connect(src, dst, 1.0, 0)

	cfg := neuro.DefaultConfig()
	cfg.DropRefractoryInput = true
	s, _ := NewStepper(net, cfg)
	s.Advance(4)

	// only the current tick's delivery survives the per-tick clear
	snap, _ := s.Inspect(dst)
	if snap.Input != 1.0 {
		t.Errorf("expected dropped accumulator to hold 1.0, got %v", snap.Input)
	}
}

func TestStepperZeroSynapsesAreIndependent(t *testing.T) {
	net := NewNetwork()
	driven, _ := net.AddNeuron(quietModel(t))
	idle, _ := net.AddNeuron(quietModel(t))

	s, _ := NewStepper(net, neuro.DefaultConfig())
	s.SetDrive(driven, driveFunc(func(float64) float64 { return 5 }))
	s.Advance(50)

	if v, _ := s.Var(driven, "v"); v == 0 {
		t.Error("driven neuron did not integrate its drive")
	}
	if v, _ := s.Var(idle, "v"); v != 0 {
		t.Errorf("unconnected neuron changed state: v=%v", v)
	}
}

func TestStepperQueueCapacityOverflow(t *testing.T) {
	net := NewNetwork()
	src, _ := net.AddNeuron(onceModel(t))
	dst, _ := net.AddNeuron(quietModel(t))
	net.Connect(src, dst, 1.0, 1.0)
	net.Connect(src, dst, 1.0, 2.0)

	cfg := neuro.DefaultConfig()
	cfg.MaxPendingEvents = 1
	s, _ := NewStepper(net, cfg)

	fired, err := s.Advance(1)
	if !errors.Is(err, neuro.ErrQueueCapacity) {
		t.Fatalf("expected ErrQueueCapacity, got %v", err)
	}
	if len(fired) != 1 {
		t.Errorf("the spike itself must still be reported, got %d", len(fired))
	}
}

func TestStepperDriveFeedsUpdate(t *testing.T) {
	net := NewNetwork()
	id, _ := net.AddNeuron(quietModel(t))
	cfg := neuro.DefaultConfig()
	s, _ := NewStepper(net, cfg)
	s.SetDrive(id, driveFunc(func(float64) float64 { return 1 }))

	s.Advance(10)
	v, _ := s.Var(id, "v")
	if math.Abs(v-10*cfg.Dt) > 1e-9 {
		t.Errorf("expected v near %v, got %v", 10*cfg.Dt, v)
	}

	// detaching the drive stops the integration
	s.SetDrive(id, nil)
	s.Advance(10)
	if v2, _ := s.Var(id, "v"); v2 != v {
		t.Errorf("detached drive still integrating: %v vs %v", v2, v)
	}
}

type spikeCounter struct {
	n int
}

func (c *spikeCounter) Name() string { return "spike_count" }
func (c *spikeCounter) Observe(t float64, fired []neuro.Spike) {
	c.n += len(fired)
}
func (c *spikeCounter) Value() float64 { return float64(c.n) }
func (c *spikeCounter) Reset()         { c.n = 0 }

func TestStepperMetricsAndObservers(t *testing.T) {
	net := NewNetwork()
	net.AddNeuron(burstModel(t))
	s, _ := NewStepper(net, neuro.DefaultConfig())

	counter := &spikeCounter{n: 99}
	s.AddMetric(counter)
	if counter.n != 0 {
		t.Fatal("AddMetric must reset the metric")
	}

	var ticks int
	s.AddObserver(ObserverFunc(func(tm float64, fired []neuro.Spike) {
		ticks++
	}))

	s.Advance(20)
	if counter.Value() != 20 {
		t.Errorf("expected 20 observed spikes, got %v", counter.Value())
	}
	if ticks != 20 {
		t.Errorf("expected 20 observer calls, got %d", ticks)
	}
}

func TestStepperLookupErrors(t *testing.T) {
	net := NewNetwork()
	net.AddNeuron(quietModel(t))
	s, _ := NewStepper(net, neuro.DefaultConfig())

	if _, err := s.Inspect(9); !errors.Is(err, neuro.ErrUnknownNeuron) {
		t.Errorf("expected ErrUnknownNeuron, got %v", err)
	}
	if err := s.SetDrive(9, nil); !errors.Is(err, neuro.ErrUnknownNeuron) {
		t.Errorf("expected ErrUnknownNeuron, got %v", err)
	}
	if _, err := s.Var(0, "w"); !errors.Is(err, neuro.ErrUnknownVariable) {
		t.Errorf("expected ErrUnknownVariable, got %v", err)
	}
}

func TestStepperRunHonorsContext(t *testing.T) {
	net := NewNetwork()
	net.AddNeuron(quietModel(t))
	s, _ := NewStepper(net, neuro.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Run(ctx, 100); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if s.Tick() != 0 {
		t.Errorf("cancelled run advanced to tick %d", s.Tick())
	}
}

func TestStepperParallelMatchesSerial(t *testing.T) {
	const neurons = 16

	build := func(workers int) *Stepper {
		net := NewNetwork()
		ids, _ := net.AddPopulation(lifModel(t), neurons)
		for i := range ids {
			net.Connect(ids[i], ids[(i+1)%len(ids)], 1.5, 0.05)
		}
		cfg := neuro.DefaultConfig()
		cfg.Workers = workers
		s, err := NewStepper(net, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, id := range ids {
			s.SetDrive(id, driveFunc(func(float64) float64 { return 2 }))
		}
		return s
	}

	serial := build(0)
	parallel := build(4)

	fs, _ := serial.Advance(2000)
	fp, _ := parallel.Advance(2000)

	if len(fs) != len(fp) {
		t.Fatalf("spike counts diverged: %d vs %d", len(fs), len(fp))
	}
	for i := range fs {
		if fs[i] != fp[i] {
			t.Fatalf("spike %d diverged: %+v vs %+v", i, fs[i], fp[i])
		}
	}
	for id := 0; id < neurons; id++ {
		vs, _ := serial.Var(neuro.NeuronID(id), "v")
		vp, _ := parallel.Var(neuro.NeuronID(id), "v")
		if vs != vp {
			t.Errorf("neuron %d state diverged: %v vs %v", id, vs, vp)
		}
	}
}
