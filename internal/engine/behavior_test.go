package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spikesim/internal/engine"
	"github.com/san-kum/spikesim/internal/neuro"
)

type constantDrive float64

func (d constantDrive) Current(float64) float64 { return float64(d) }

func compile(spec neuro.ModelSpec) *neuro.Model {
	m, err := neuro.CompileModel(spec)
	Expect(err).NotTo(HaveOccurred())
	return m
}

func lif() *neuro.Model {
	return compile(neuro.ModelSpec{
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
		Refractory: 0.5,
	})
}

func integrator() *neuro.Model {
	return compile(neuro.ModelSpec{
		Name:   "integrator",
		Vars:   []string{"v"},
		Update: []string{"dv/dt = I_syn + I_ext"},
		Spike:  "v > 1e9",
	})
}

var _ = Describe("Stepper", func() {
	var cfg neuro.Config

	BeforeEach(func() {
		cfg = neuro.DefaultConfig()
	})

	Describe("time control", func() {
		var s *engine.Stepper

		BeforeEach(func() {
			net := engine.NewNetwork()
			id, err := net.AddNeuron(lif())
			Expect(err).NotTo(HaveOccurred())
			s, err = engine.NewStepper(net, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SetDrive(id, constantDrive(10))).To(Succeed())
		})

		It("starts at time zero, unpaused", func() {
			Expect(s.Now()).To(BeZero())
			Expect(s.Tick()).To(BeZero())
			Expect(s.Paused()).To(BeFalse())
		})

		It("advances the clock by dt per tick", func() {
			_, err := s.Advance(4)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Now()).To(BeNumerically("~", 4*cfg.Dt, 1e-12))
		})

		It("freezes time while paused", func() {
			s.Pause()
			fired, err := s.Advance(50)
			Expect(err).NotTo(HaveOccurred())
			Expect(fired).To(BeEmpty())
			Expect(s.Tick()).To(BeZero())
		})

		It("single-steps while paused without resuming", func() {
			s.Pause()
			_, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Tick()).To(Equal(int64(1)))
			Expect(s.Paused()).To(BeTrue())
		})

		It("scales elapsed time by the speed multiplier", func() {
			Expect(s.SetSpeed(4)).To(Succeed())
			s.Advance(1)
			Expect(s.Now()).To(BeNumerically("~", 4*cfg.Dt, 1e-12))
		})

		It("rejects non-positive speed", func() {
			Expect(s.SetSpeed(0)).To(MatchError(neuro.ErrInvalidSpeed))
			Expect(s.SetSpeed(-2)).To(MatchError(neuro.ErrInvalidSpeed))
			Expect(s.Speed()).To(Equal(1.0))
		})
	})

	Describe("spike propagation", func() {
		It("carries excitation along a delayed chain", func() {
			net := engine.NewNetwork()
			a, _ := net.AddNeuron(lif())
			b, _ := net.AddNeuron(integrator())
			_, err := net.Connect(a, b, 3.0, 10*cfg.Dt)
			Expect(err).NotTo(HaveOccurred())

			s, err := engine.NewStepper(net, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SetDrive(a, constantDrive(30))).To(Succeed())

			fired, err := s.Advance(2000)
			Expect(err).NotTo(HaveOccurred())
			Expect(fired).NotTo(BeEmpty(), "a driven LIF neuron should fire")

			v, err := s.Var(b, "v")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNumerically(">", 0), "downstream neuron should have integrated the spikes")
		})

		It("treats negative weights as inhibition", func() {
			net := engine.NewNetwork()
			a, _ := net.AddNeuron(lif())
			b, _ := net.AddNeuron(integrator())
			net.Connect(a, b, -2.0, cfg.Dt)

			s, _ := engine.NewStepper(net, cfg)
			s.SetDrive(a, constantDrive(30))
			s.Advance(2000)

			v, _ := s.Var(b, "v")
			Expect(v).To(BeNumerically("<", 0))
		})

		It("keeps pending events across a pause", func() {
			net := engine.NewNetwork()
			a, _ := net.AddNeuron(lif())
			b, _ := net.AddNeuron(integrator())
			net.Connect(a, b, 1.0, 100*cfg.Dt)

			s, _ := engine.NewStepper(net, cfg)
			s.SetDrive(a, constantDrive(30))

			for s.PendingEvents() == 0 {
				_, err := s.Advance(1)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Tick()).To(BeNumerically("<", int64(5000)))
			}
			pending := s.PendingEvents()
			s.Pause()
			s.Advance(10)
			Expect(s.PendingEvents()).To(Equal(pending))
		})
	})

	Describe("refractory period", func() {
		It("suppresses firing inside the window even under strong drive", func() {
			net := engine.NewNetwork()
			id, _ := net.AddNeuron(lif())
			s, _ := engine.NewStepper(net, cfg)
			s.SetDrive(id, constantDrive(1000))

			fired, err := s.Advance(2000)
			Expect(err).NotTo(HaveOccurred())
			Expect(fired).NotTo(BeEmpty())

			window := 0.5 - 1e-9
			for i := 1; i < len(fired); i++ {
				gap := fired[i].Time - fired[i-1].Time
				Expect(gap).To(BeNumerically(">=", window),
					"interval %v between consecutive spikes is inside the refractory window", gap)
			}
		})

		It("records the last spike time in snapshots", func() {
			net := engine.NewNetwork()
			id, _ := net.AddNeuron(lif())
			s, _ := engine.NewStepper(net, cfg)

			snap, err := s.Inspect(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsInf(snap.LastSpike, -1)).To(BeTrue(), "a neuron that never fired has no last spike")

			s.SetDrive(id, constantDrive(1000))
			fired, _ := s.Advance(2000)
			Expect(fired).NotTo(BeEmpty())

			snap, _ = s.Inspect(id)
			Expect(snap.LastSpike).To(Equal(fired[len(fired)-1].Time))
		})
	})
})
