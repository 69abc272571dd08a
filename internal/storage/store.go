// Package storage persists completed runs. Each run gets its own
// directory with metadata.json plus CSV spike and trace files, and a
// row in a SQLite index used for fast listing.
package storage

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/spikesim/internal/neuro"
	"github.com/san-kum/spikesim/internal/record"
)

type Store struct {
	baseDir string
	db      *sql.DB
}

// New opens (and if needed creates) a run store rooted at baseDir.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(baseDir, "runs.db"))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		dt          REAL NOT NULL,
		ticks       INTEGER NOT NULL,
		duration    REAL NOT NULL,
		neurons     INTEGER NOT NULL,
		spike_count INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{baseDir: baseDir, db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// RunData is everything a finished run hands to the store.
type RunData struct {
	Dt       float64
	Ticks    int
	Duration float64
	Neurons  int
	Spikes   []neuro.Spike
	Traces   map[neuro.NeuronID][]record.Sample
	Metrics  map[string]float64
}

// RunMetadata is the per-run metadata.json payload.
type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Ticks      int                `json:"ticks"`
	Duration   float64            `json:"duration"`
	Neurons    int                `json:"neurons"`
	SpikeCount int                `json:"spike_count"`
	Metrics    map[string]float64 `json:"metrics"`
}

// SaveRun writes one run to disk and indexes it, returning the run id.
func (s *Store) SaveRun(data RunData) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now().UTC(),
		Dt:         data.Dt,
		Ticks:      data.Ticks,
		Duration:   data.Duration,
		Neurons:    data.Neurons,
		SpikeCount: len(data.Spikes),
		Metrics:    data.Metrics,
	}
	if err := s.writeMetadata(runDir, meta); err != nil {
		return "", err
	}
	if err := s.writeSpikes(runDir, data.Spikes); err != nil {
		return "", err
	}
	if err := s.writeTraces(runDir, data.Traces); err != nil {
		return "", err
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, created_at, dt, ticks, duration, neurons, spike_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, meta.Timestamp.Format(time.RFC3339Nano),
		meta.Dt, meta.Ticks, meta.Duration, meta.Neurons, meta.SpikeCount,
	)
	if err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) writeMetadata(runDir string, meta RunMetadata) error {
	f, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) writeSpikes(runDir string, spikes []neuro.Spike) error {
	f, err := os.Create(filepath.Join(runDir, "spikes.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "neuron"}); err != nil {
		return err
	}
	for _, sp := range spikes {
		row := []string{
			strconv.FormatFloat(sp.Time, 'f', 6, 64),
			strconv.Itoa(int(sp.Neuron)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) writeTraces(runDir string, traces map[neuro.NeuronID][]record.Sample) error {
	f, err := os.Create(filepath.Join(runDir, "trace.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "neuron", "value"}); err != nil {
		return err
	}
	for id, samples := range traces {
		for _, sample := range samples {
			row := []string{
				strconv.FormatFloat(sample.Time, 'f', 6, 64),
				strconv.Itoa(int(id)),
				strconv.FormatFloat(sample.Value, 'f', 6, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the indexed runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, dt, ticks, duration, neurons, spike_count
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var created string
		if err := rows.Scan(&meta.ID, &created, &meta.Dt, &meta.Ticks,
			&meta.Duration, &meta.Neurons, &meta.SpikeCount); err != nil {
			return nil, err
		}
		meta.Timestamp, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// Load reads one run's full metadata, including metrics.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSpikes reads a run's spike train back from its CSV.
func (s *Store) LoadSpikes(runID string) ([]neuro.Spike, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "spikes.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	spikes := make([]neuro.Spike, 0, len(records))
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != 2 {
			return nil, fmt.Errorf("storage: malformed spike row %d in run %s", i, runID)
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, err
		}
		id, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, err
		}
		spikes = append(spikes, neuro.Spike{Neuron: neuro.NeuronID(id), Time: t})
	}
	return spikes, nil
}

// LoadTrace reads a run's membrane traces back from its CSV, keyed by
// neuron.
func (s *Store) LoadTrace(runID string) (map[neuro.NeuronID][]record.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traces := make(map[neuro.NeuronID][]record.Sample)
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != 3 {
			return nil, fmt.Errorf("storage: malformed trace row %d in run %s", i, runID)
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, err
		}
		id, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, err
		}
		nid := neuro.NeuronID(id)
		traces[nid] = append(traces[nid], record.Sample{Time: t, Value: v})
	}
	return traces, nil
}

// Delete removes a run's directory and its index row.
func (s *Store) Delete(runID string) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("storage: invalid run id %q", runID)
	}
	if err := os.RemoveAll(filepath.Join(s.baseDir, runID)); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, runID)
	return err
}
