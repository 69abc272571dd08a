package config

// Presets are ready-to-run scenarios keyed by model family and name.
var Presets = map[string]map[string]*Config{
	"leaky": {
		"single": {
			Dt: DefaultDt, Ticks: 4000, Speed: 1,
			Populations: []PopulationConfig{
				{Name: "main", Model: "leaky", Count: 1},
			},
			Drives: []DriveConfig{
				{Population: "main", Kind: "constant", Params: map[string]float64{"amplitude": 20}},
			},
			Record: RecordConfig{SpikeCapacity: 1000, TraceVar: "v"},
		},
		"chain": {
			Dt: DefaultDt, Ticks: 8000, Speed: 1,
			Populations: []PopulationConfig{
				{Name: "in", Model: "leaky", Count: 1},
				{Name: "relay", Model: "leaky", Count: 3},
			},
			Projections: []ProjectionConfig{
				{From: "in", To: "relay", Weight: 8.0, Delay: 0.25},
			},
			Drives: []DriveConfig{
				{Population: "in", Kind: "pulse", Params: map[string]float64{
					"amplitude": 40, "start": 1, "width": 5, "period": 20,
				}},
			},
			Record: RecordConfig{SpikeCapacity: 1000, TraceVar: "v", TracePopulation: "relay"},
		},
		"inhibited": {
			Dt: DefaultDt, Ticks: 8000, Speed: 1,
			Populations: []PopulationConfig{
				{Name: "exc", Model: "leaky", Count: 1},
				{Name: "inh", Model: "oscillating", Count: 1},
			},
			Synapses: []SynapseConfig{
				{From: "inh", To: "exc", Weight: -15, Delay: 0.1},
			},
			Drives: []DriveConfig{
				{Population: "exc", Kind: "constant", Params: map[string]float64{"amplitude": 25}},
			},
			Record: RecordConfig{SpikeCapacity: 1000, TraceVar: "v", TracePopulation: "exc"},
		},
	},
	"izhikevich": {
		"regular": {
			Dt: DefaultDt, Ticks: 40000, Speed: 1,
			Populations: []PopulationConfig{
				{Name: "main", Model: "izhikevich", Count: 1},
			},
			Drives: []DriveConfig{
				{Population: "main", Kind: "constant", Params: map[string]float64{"amplitude": 10}},
			},
			Record: RecordConfig{SpikeCapacity: 1000, TraceVar: "v"},
		},
		"bursting": {
			Dt: DefaultDt, Ticks: 40000, Speed: 1,
			Populations: []PopulationConfig{
				{Name: "main", Model: "izhikevich", Count: 1,
					Params: map[string]float64{"c": -50, "d": 2}},
			},
			Drives: []DriveConfig{
				{Population: "main", Kind: "constant", Params: map[string]float64{"amplitude": 10}},
			},
			Record: RecordConfig{SpikeCapacity: 1000, TraceVar: "v"},
		},
	},
	"oscillating": {
		"pair": {
			Dt: DefaultDt, Ticks: 20000, Speed: 1,
			Populations: []PopulationConfig{
				{Name: "pace", Model: "oscillating", Count: 2},
				{Name: "out", Model: "leaky", Count: 1},
			},
			Projections: []ProjectionConfig{
				{From: "pace", To: "out", Weight: 10, Delay: 0.2},
			},
			Record: RecordConfig{SpikeCapacity: 1000, TraceVar: "v", TracePopulation: "out"},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
