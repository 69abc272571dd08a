package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spikesim/internal/neuro"
)

const (
	DefaultDt            = 0.025
	DefaultTicks         = 4000
	DefaultSpeed         = 1.0
	DefaultSpikeCapacity = 1000
)

// Config is one full simulation scenario: timing, the neuron
// populations, how they are wired and what gets recorded.
type Config struct {
	Dt                  float64 `yaml:"dt"`
	Ticks               int     `yaml:"ticks"`
	Speed               float64 `yaml:"speed"`
	DropRefractoryInput bool    `yaml:"drop_refractory_input"`
	MaxPendingEvents    int     `yaml:"max_pending_events"`
	Workers             int     `yaml:"workers"`

	// Models holds inline model definitions; populations may also name
	// the built-in presets.
	Models      []neuro.ModelSpec  `yaml:"models"`
	Populations []PopulationConfig `yaml:"populations"`
	Synapses    []SynapseConfig    `yaml:"synapses"`
	Projections []ProjectionConfig `yaml:"projections"`
	Drives      []DriveConfig      `yaml:"drives"`
	Record      RecordConfig       `yaml:"record"`
}

// PopulationConfig creates Count neurons over one model. Params
// override the model's parameter defaults for this population.
type PopulationConfig struct {
	Name   string             `yaml:"name"`
	Model  string             `yaml:"model"`
	Count  int                `yaml:"count"`
	Params map[string]float64 `yaml:"params"`
}

// SynapseConfig wires two individual neurons, addressed as population
// name plus index within it.
type SynapseConfig struct {
	From      string  `yaml:"from"`
	FromIndex int     `yaml:"from_index"`
	To        string  `yaml:"to"`
	ToIndex   int     `yaml:"to_index"`
	Weight    float64 `yaml:"weight"`
	Delay     float64 `yaml:"delay"`
}

// ProjectionConfig wires every neuron of one population to every
// neuron of another with a shared weight and delay.
type ProjectionConfig struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	Weight float64 `yaml:"weight"`
	Delay  float64 `yaml:"delay"`
}

// DriveConfig attaches an external current to every neuron of a
// population.
type DriveConfig struct {
	Population string             `yaml:"population"`
	Kind       string             `yaml:"kind"`
	Params     map[string]float64 `yaml:"params"`
}

type RecordConfig struct {
	SpikeCapacity int    `yaml:"spike_capacity"`
	TraceVar      string `yaml:"trace_var"`
	// TracePopulation selects whose membranes to sample; empty means
	// the first population.
	TracePopulation string `yaml:"trace_population"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:    DefaultDt,
		Ticks: DefaultTicks,
		Speed: DefaultSpeed,
		Populations: []PopulationConfig{
			{Name: "main", Model: "leaky", Count: 1},
		},
		Drives: []DriveConfig{
			{Population: "main", Kind: "constant", Params: map[string]float64{"amplitude": 20}},
		},
		Record: RecordConfig{
			SpikeCapacity: DefaultSpikeCapacity,
			TraceVar:      "v",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EngineConfig translates the scenario timing into the stepper's
// configuration.
func (c *Config) EngineConfig() neuro.Config {
	return neuro.Config{
		Dt:                  c.Dt,
		Speed:               c.Speed,
		DropRefractoryInput: c.DropRefractoryInput,
		MaxPendingEvents:    c.MaxPendingEvents,
		Workers:             c.Workers,
	}
}
