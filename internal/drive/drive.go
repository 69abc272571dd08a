// Package drive provides external input currents for neurons. A drive
// is a pure function of simulated time; the stepper samples it once
// per tick.
package drive

import (
	"fmt"
	"math"

	"github.com/san-kum/spikesim/internal/neuro"
)

type None struct{}

func NewNone() None { return None{} }

func (None) Current(t float64) float64 { return 0 }

type Constant struct {
	amplitude float64
}

func NewConstant(amplitude float64) *Constant {
	return &Constant{amplitude: amplitude}
}

func (c *Constant) Current(t float64) float64 { return c.amplitude }

// Sine is amplitude * sin(2*pi*frequency*t + phase) on top of an
// offset.
type Sine struct {
	amplitude float64
	frequency float64
	phase     float64
	offset    float64
}

func NewSine(amplitude, frequency, phase, offset float64) *Sine {
	return &Sine{amplitude: amplitude, frequency: frequency, phase: phase, offset: offset}
}

func (s *Sine) Current(t float64) float64 {
	return s.offset + s.amplitude*math.Sin(2*math.Pi*s.frequency*t+s.phase)
}

// Pulse emits amplitude during [start, start+width) of every period;
// period zero means a single pulse.
type Pulse struct {
	amplitude float64
	start     float64
	width     float64
	period    float64
}

func NewPulse(amplitude, start, width, period float64) *Pulse {
	return &Pulse{amplitude: amplitude, start: start, width: width, period: period}
}

func (p *Pulse) Current(t float64) float64 {
	if t < p.start {
		return 0
	}
	offset := t - p.start
	if p.period > 0 {
		offset = math.Mod(offset, p.period)
	}
	if offset < p.width {
		return p.amplitude
	}
	return 0
}

// New builds a drive by name from a parameter table. Unset parameters
// default to zero.
func New(kind string, params map[string]float64) (neuro.Drive, error) {
	switch kind {
	case "", "none":
		return NewNone(), nil
	case "constant":
		return NewConstant(params["amplitude"]), nil
	case "sine":
		return NewSine(params["amplitude"], params["frequency"], params["phase"], params["offset"]), nil
	case "pulse":
		return NewPulse(params["amplitude"], params["start"], params["width"], params["period"]), nil
	default:
		return nil, fmt.Errorf("drive: unknown kind: %s", kind)
	}
}

// Kinds lists the drive kinds New accepts.
func Kinds() []string {
	return []string{"none", "constant", "sine", "pulse"}
}
