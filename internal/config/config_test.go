package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "pendulum" {
		t.Errorf("expected model pendulum, got %s", cfg.Model)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fourbar.yaml")
	cfg := DefaultConfig()
	cfg.Model = "custom"
	cfg.Mechanism = Mechanisms["fourbar"]
	cfg.InitState = InitStateConfig{Q: []float64{0, -1.5707963267948966, 0}}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Mechanism == nil || len(loaded.Mechanism.Bodies) != 3 {
		t.Fatalf("mechanism not restored: %+v", loaded.Mechanism)
	}
	if got := loaded.Mechanism.Constraints[0].A.Body; got != "coupler" {
		t.Errorf("constraint body %q, want coupler", got)
	}
	if loaded.Mechanism.DOF() != 3 {
		t.Errorf("DOF %d, want 3", loaded.Mechanism.DOF())
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.yaml")
	if err := os.WriteFile(path, []byte("model: double_pendulum\ninit_state:\n  q: [1, 0.5]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dt != DefaultDt || cfg.Integrator != "semi_implicit" {
		t.Errorf("defaults not applied: dt=%g integrator=%s", cfg.Dt, cfg.Integrator)
	}
	x, err := cfg.GetInitState(2)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{1, 0.5, 0, 0}; !equal(x, want) {
		t.Errorf("init state %v, want %v", x, want)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "model: [unclosed"},
		{"unknown model", "model: trebuchet"},
		{"negative dt", "dt: -1"},
		{"unknown integrator", "integrator: rk4"},
		{"too many coordinates", "init_state:\n  q: [1, 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, dynamo.ErrConfiguration) && !errors.Is(err, dynamo.ErrDimensionMismatch) {
				t.Errorf("got %v, want a configuration error", err)
			}
		})
	}
}

func TestMechanismValidate(t *testing.T) {
	base := func() *Mechanism {
		return &Mechanism{
			Bodies: []Body{rod("a", 1), rod("b", 1)},
			Joints: []Joint{
				{Type: "revolute", Parent: GroundName, Child: "a", Axis: yAxis},
				{Type: "prismatic", Parent: "a", Child: "b", Axis: Vec{1, 0, 0}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(m *Mechanism)
		ok     bool
	}{
		{"valid", func(m *Mechanism) {}, true},
		{"no bodies", func(m *Mechanism) { m.Bodies = nil }, false},
		{"duplicate name", func(m *Mechanism) { m.Bodies[1].Name = "a" }, false},
		{"body named ground", func(m *Mechanism) { m.Bodies[0].Name = GroundName }, false},
		{"unknown shape", func(m *Mechanism) { m.Bodies[0].Shape = "torus" }, false},
		{"unknown joint type", func(m *Mechanism) { m.Joints[0].Type = "ball" }, false},
		{"unknown parent", func(m *Mechanism) { m.Joints[1].Parent = "z" }, false},
		{"ground as child", func(m *Mechanism) { m.Joints[1].Child = GroundName }, false},
		{"missing axis", func(m *Mechanism) { m.Joints[0].Axis = nil }, false},
		{"short offset", func(m *Mechanism) { m.Joints[0].ParentOffset = Vec{1} }, false},
		{"bad gravity", func(m *Mechanism) { m.Gravity = Vec{0, 0} }, false},
		{"joint spring", func(m *Mechanism) {
			m.Springs = []Spring{{Type: "joint", Joint: "b", Stiffness: 1}}
		}, true},
		{"joint spring on unknown joint", func(m *Mechanism) {
			m.Springs = []Spring{{Type: "joint", Joint: "ground"}}
		}, false},
		{"point spring to itself", func(m *Mechanism) {
			m.Springs = []Spring{{Type: "point", A: Point{Body: "a"}, B: Point{Body: "a"}}}
		}, false},
		{"point constraint to ground", func(m *Mechanism) {
			m.Constraints = []Constraint{{Type: "point", A: Point{Body: "b"}, B: Point{Body: GroundName}}}
		}, true},
		{"constraint with bad axis", func(m *Mechanism) {
			m.Constraints = []Constraint{{Type: "point", A: Point{Body: "b"}, B: Point{Body: GroundName}, Axes: []Vec{{1, 0}}}}
		}, false},
		{"constraint with zero axis", func(m *Mechanism) {
			m.Constraints = []Constraint{{Type: "point", A: Point{Body: "b"}, B: Point{Body: GroundName}, Axes: []Vec{{1, 0, 0}, {0, 0, 0}}}}
		}, false},
		{"lock", func(m *Mechanism) { m.Constraints = []Constraint{{Type: "lock", Joint: "a"}} }, true},
		{"unknown constraint", func(m *Mechanism) { m.Constraints = []Constraint{{Type: "weld"}} }, false},
		{"force on ground", func(m *Mechanism) {
			m.Forces = []Force{{At: Point{Body: GroundName}, Force: Vec{1, 0, 0}}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			err := m.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, dynamo.ErrConfiguration) {
				t.Errorf("got %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestBuiltinMechanismsValidate(t *testing.T) {
	for _, name := range ListModels() {
		if err := Mechanisms[name].Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestPresetsValidate(t *testing.T) {
	for model := range Presets {
		for _, name := range ListPresets(model) {
			cfg := GetPreset(model, name)
			if cfg.Model != model {
				t.Errorf("%s/%s: model field is %q", model, name, cfg.Model)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum", "small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.InitState.Q[0] != 0.2 {
		t.Errorf("expected q 0.2, got %f", cfg.InitState.Q[0])
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("pendulum", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "small")
	if cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("pendulum")
	if len(presets) == 0 {
		t.Error("expected presets for pendulum")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestGetInitState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitState = InitStateConfig{Q: []float64{1}, QDot: []float64{2, 3}}

	x, err := cfg.GetInitState(2)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{1, 0, 2, 3}; !equal(x, want) {
		t.Errorf("got %v, want %v", x, want)
	}

	if _, err := cfg.GetInitState(1); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
