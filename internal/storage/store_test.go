package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/spikesim/internal/neuro"
	"github.com/san-kum/spikesim/internal/record"
)

func sampleRun() RunData {
	return RunData{
		Dt:       0.025,
		Ticks:    100,
		Duration: 2.5,
		Neurons:  2,
		Spikes: []neuro.Spike{
			{Neuron: 0, Time: 0.5},
			{Neuron: 1, Time: 0.75},
			{Neuron: 0, Time: 1.25},
		},
		Traces: map[neuro.NeuronID][]record.Sample{
			0: {{Time: 0.025, Value: -70}, {Time: 0.05, Value: -69.5}},
		},
		Metrics: map[string]float64{"spike_count": 3},
	}
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRunWritesFiles(t *testing.T) {
	s := newStore(t)

	runID, err := s.SaveRun(sampleRun())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected a run id")
	}

	runDir := filepath.Join(s.baseDir, runID)
	for _, name := range []string{"metadata.json", "spikes.csv", "trace.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)

	runID, err := s.SaveRun(sampleRun())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := s.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Ticks != 100 || meta.SpikeCount != 3 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["spike_count"] != 3 {
		t.Errorf("metrics not preserved: %v", meta.Metrics)
	}

	spikes, err := s.LoadSpikes(runID)
	if err != nil {
		t.Fatalf("load spikes failed: %v", err)
	}
	if len(spikes) != 3 {
		t.Fatalf("expected 3 spikes, got %d", len(spikes))
	}
	if spikes[1].Neuron != 1 || spikes[1].Time != 0.75 {
		t.Errorf("unexpected spike: %+v", spikes[1])
	}
}

func TestLoadTrace(t *testing.T) {
	s := newStore(t)
	runID, err := s.SaveRun(sampleRun())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	traces, err := s.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(traces[0]) != 2 {
		t.Fatalf("expected 2 samples for neuron 0, got %d", len(traces[0]))
	}
	if traces[0][1].Value != -69.5 {
		t.Errorf("unexpected sample: %+v", traces[0][1])
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newStore(t)

	first, _ := s.SaveRun(sampleRun())
	second, _ := s.SaveRun(sampleRun())

	runs, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	seen := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !seen[first] || !seen[second] {
		t.Errorf("listing does not cover saved runs: %v", runs)
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("runs must list newest first")
	}
}

func TestListEmptyStore(t *testing.T) {
	s := newStore(t)
	runs, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	runID, _ := s.SaveRun(sampleRun())

	if err := s.Delete(runID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Load(runID); err == nil {
		t.Error("expected error loading a deleted run")
	}
	runs, _ := s.List()
	if len(runs) != 0 {
		t.Errorf("deleted run still indexed: %v", runs)
	}
}

func TestDeleteRejectsBadID(t *testing.T) {
	s := newStore(t)
	if err := s.Delete("../escape"); err == nil {
		t.Error("expected error for a non-uuid run id")
	}
}

func TestLoadUnknownRun(t *testing.T) {
	s := newStore(t)
	if _, err := s.Load("00000000-0000-0000-0000-000000000000"); err == nil {
		t.Error("expected error for unknown run")
	}
}
