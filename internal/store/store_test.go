package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States:      []dynamo.State{{0.5, -0.1, 0, 0}, {0.49, -0.09, -0.2, 0.1}, {0.47, -0.08, -0.4, 0.2}},
		Controls:    []dynamo.Control{{1, 0}, {0.5, 0}},
		Times:       []float64{0, 0.01, 0.02},
		Metrics:     map[string]float64{"energy_drift": 1e-4},
		EnergyDrift: 1e-4,
		StepsTaken:  2,
	}
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		Model:       "double_pendulum",
		Preset:      "gentle",
		Dt:          0.01,
		Duration:    0.02,
		Integrator:  "semi_implicit",
		Controller:  "pd",
		Coordinates: []string{"shoulder", "elbow"},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "runs"))
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	id, err := s.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != id || meta.Model != "double_pendulum" || meta.NQ() != 2 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.StepsTaken != 2 || meta.Metrics["energy_drift"] != 1e-4 {
		t.Errorf("result fields not stored: %+v", meta)
	}

	states, controls, times, err := s.LoadStates(id)
	if err != nil {
		t.Fatal(err)
	}
	want := sampleResult()
	if len(states) != 3 || len(times) != 3 || len(controls) != 3 {
		t.Fatalf("got %d states, %d controls, %d times", len(states), len(controls), len(times))
	}
	for i := range want.States {
		for j := range want.States[i] {
			if states[i][j] != want.States[i][j] {
				t.Errorf("state[%d][%d] = %g, want %g", i, j, states[i][j], want.States[i][j])
			}
		}
	}
	if controls[0][0] != 1 || controls[2][0] != 0 {
		t.Errorf("controls = %v", controls)
	}
	if times[2] != 0.02 {
		t.Errorf("times = %v", times)
	}
}

func TestSaveRejectsMismatchedStates(t *testing.T) {
	s := New(t.TempDir())
	meta := sampleMeta()
	meta.Coordinates = []string{"only"}

	if _, err := s.Save(meta, sampleResult()); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := s.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty store: %v, %v", runs, err)
	}

	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	first, err := s.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(s.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != first || runs[1].ID != second {
		t.Errorf("runs = %v", runs)
	}
}

func TestLoadStatesCorrupt(t *testing.T) {
	s := New(t.TempDir())
	id, err := s.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		csv  string
	}{
		{"short row", "time,a,b,c,d,e,f\n0,1,2\n"},
		{"not a number", "time,a,b,c,d,e,f\n0,1,2,3,x,5,6\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(s.baseDir, id, "states.csv")
			if err := os.WriteFile(path, []byte(tt.csv), 0644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := s.LoadStates(id); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExportJSON(t *testing.T) {
	meta := sampleMeta()
	meta.StepsTaken = 2
	r := sampleResult()

	var buf bytes.Buffer
	if err := ExportJSON(&buf, &meta, r.Times, r.States, r.Controls); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Model != "double_pendulum" || got.Steps != 2 || len(got.States) != 3 || got.States[1][2] != -0.2 {
		t.Errorf("exported %+v", got)
	}
	if len(got.Coordinates) != 2 || got.Coordinates[1] != "elbow" {
		t.Errorf("coordinates = %v", got.Coordinates)
	}
}

func TestPlots(t *testing.T) {
	dir := t.TempDir()
	meta := sampleMeta()
	r := sampleResult()

	tests := []struct {
		name string
		plot func(path string) error
		file string
	}{
		{"coordinates png", func(p string) error { return PlotCoordinates(p, &meta, r.Times, r.States) }, "q.png"},
		{"coordinates svg", func(p string) error { return PlotCoordinates(p, &meta, r.Times, r.States) }, "q.svg"},
		{"paths", func(p string) error {
			return PlotPaths(p, "paths", []Path{{Name: "tip", X: []float64{0, 0.5, 1}, Z: []float64{-1, -0.8, 0}}})
		}, "paths.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := tt.plot(path); err != nil {
				t.Fatal(err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size() == 0 {
				t.Error("empty image")
			}
		})
	}
}

func TestPlotErrors(t *testing.T) {
	meta := sampleMeta()
	r := sampleResult()
	dir := t.TempDir()

	if err := PlotCoordinates(filepath.Join(dir, "q.png"), &meta, r.Times[:1], r.States); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("times/states mismatch: %v", err)
	}
	if err := PlotCoordinates(filepath.Join(dir, "noext"), &meta, r.Times, r.States); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("missing extension: %v", err)
	}
	bad := []Path{{Name: "tip", X: []float64{0, 1}, Z: []float64{0}}}
	if err := PlotPaths(filepath.Join(dir, "p.png"), "", bad); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("ragged path: %v", err)
	}
}

func TestResolveMechanism(t *testing.T) {
	meta := sampleMeta()
	mech, err := meta.ResolveMechanism()
	if err != nil || mech != config.Mechanisms["double_pendulum"] {
		t.Errorf("built-in: %v, %v", mech, err)
	}

	custom := &config.Mechanism{Description: "custom"}
	meta.Model = "mine"
	meta.Mechanism = custom
	if mech, err := meta.ResolveMechanism(); err != nil || mech != custom {
		t.Errorf("custom: %v, %v", mech, err)
	}

	meta.Mechanism = nil
	if _, err := meta.ResolveMechanism(); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("unknown: %v", err)
	}
}
