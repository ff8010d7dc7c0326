// Package store persists simulation runs as a directory per run holding
// metadata.json and states.csv, and exports runs as JSON, PNG plots and
// SVG traces.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Preset      string             `json:"preset,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Integrator  string             `json:"integrator"`
	Controller  string             `json:"controller"`
	Coordinates []string           `json:"coordinates"`
	StepsTaken  int                `json:"steps_taken"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`

	// Mechanism is set for runs of a custom mechanism so that they can be
	// replayed without the configuration file.
	Mechanism *config.Mechanism `json:"mechanism,omitempty"`

	// Error is set when the run stopped early.
	Error string `json:"error,omitempty"`
}

// ResolveMechanism returns the mechanism the run simulated.
func (m *RunMetadata) ResolveMechanism() (*config.Mechanism, error) {
	if m.Mechanism != nil {
		return m.Mechanism, nil
	}
	mech, ok := config.Mechanisms[m.Model]
	if !ok {
		return nil, fmt.Errorf("%w: run %s uses unknown model %q", dynamo.ErrConfiguration, m.ID, m.Model)
	}
	return mech, nil
}

// NQ is the number of generalized coordinates of the run.
func (m *RunMetadata) NQ() int { return len(m.Coordinates) }

// Save writes a run. meta.ID and meta.Timestamp are filled in; the states
// file has one row per stored state: time, q, qDot, then the controller
// force that was applied from that state.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Model, meta.Timestamp.UnixNano())
	meta.StepsTaken = result.StepsTaken
	meta.EnergyDrift = result.EnergyDrift
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), meta.Coordinates, result); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, coords []string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"time"}
	for _, c := range coords {
		header = append(header, "q_"+c)
	}
	for _, c := range coords {
		header = append(header, "qdot_"+c)
	}
	for _, c := range coords {
		header = append(header, "u_"+c)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	nq := len(coords)
	for i, x := range result.States {
		if len(x) != 2*nq {
			return dynamo.Dimension(fmt.Sprintf("stored state %d", i), len(x), 2*nq)
		}
		row := []string{format(result.Times[i])}
		for _, val := range x {
			row = append(row, format(val))
		}
		for j := 0; j < nq; j++ {
			u := 0.0
			if i < len(result.Controls) && j < len(result.Controls[i]) {
				u = result.Controls[i][j]
			}
			row = append(row, format(u))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// List returns the stored runs, oldest first. Unreadable entries are
// skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads the stored states x = [q; qDot] and their times. The
// controller columns are returned separately.
func (s *Store) LoadStates(runID string) (states []dynamo.State, controls []dynamo.Control, times []float64, err error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	nq := meta.NQ()

	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 1 + 3*nq

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []dynamo.State{}, []dynamo.Control{}, []float64{}, nil
	}

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			if vals[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, nil, nil, fmt.Errorf("run %s line %d: %w", runID, line+2, err)
			}
		}
		times = append(times, vals[0])
		states = append(states, dynamo.State(vals[1:1+2*nq]))
		controls = append(controls, dynamo.Control(vals[1+2*nq:]))
	}
	return states, controls, times, nil
}
