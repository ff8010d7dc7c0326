package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

const (
	DefaultDt             = 0.001
	DefaultDuration       = 10.0
	DefaultFPS            = 30
	DefaultConditionLimit = 1e12
	DefaultKp             = 20.0
	DefaultKd             = 2.0
)

type Config struct {
	Model            string           `yaml:"model"`
	Integrator       string           `yaml:"integrator"`
	Controller       string           `yaml:"controller"`
	Dt               float64          `yaml:"dt"`
	Duration         float64          `yaml:"duration"`
	FPS              int              `yaml:"fps"`
	Parallel         int              `yaml:"parallel"`
	ConditionLimit   float64          `yaml:"condition_limit"`
	InitState        InitStateConfig  `yaml:"init_state"`
	ControllerParams ControllerConfig `yaml:"controller_params"`

	// Mechanism describes a custom model. When nil, Model names one of the
	// built-in Mechanisms.
	Mechanism *Mechanism `yaml:"mechanism,omitempty"`
}

// InitStateConfig holds the initial joint coordinates and rates. Missing
// entries are zero.
type InitStateConfig struct {
	Q    []float64 `yaml:"q,flow"`
	QDot []float64 `yaml:"qdot,flow"`
}

// ControllerConfig holds per-coordinate gains. A single gain applies to
// every coordinate.
type ControllerConfig struct {
	Kp     []float64   `yaml:"kp,flow"`
	Ki     []float64   `yaml:"ki,flow"`
	Kd     []float64   `yaml:"kd,flow"`
	Target []float64   `yaml:"target,flow"`
	K      [][]float64 `yaml:"k,flow"`
}

var (
	Integrators = []string{"euler", "semi_implicit"}
	Controllers = []string{"none", "pd", "pid", "lqr", "manual"}
)

func DefaultConfig() *Config {
	return &Config{
		Model:          "pendulum",
		Integrator:     "semi_implicit",
		Controller:     "none",
		Dt:             DefaultDt,
		Duration:       DefaultDuration,
		FPS:            DefaultFPS,
		ConditionLimit: DefaultConditionLimit,
		InitState: InitStateConfig{
			Q: []float64{0.5},
		},
		ControllerParams: ControllerConfig{
			Kp: []float64{DefaultKp},
			Kd: []float64{DefaultKd},
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
		return nil, fmt.Errorf("%w: %s: %v", dynamo.ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

// ResolveMechanism returns the custom mechanism, or the built-in one named
// by Model.
func (c *Config) ResolveMechanism() (*Mechanism, error) {
	if c.Mechanism != nil {
		return c.Mechanism, nil
	}
	m, ok := Mechanisms[c.Model]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", dynamo.ErrConfiguration, c.Model)
	}
	return m, nil
}

// GetInitState returns x0 = [q; qDot] for a mechanism with nq coordinates.
func (c *Config) GetInitState(nq int) ([]float64, error) {
	if len(c.InitState.Q) > nq {
		return nil, dynamo.Dimension("init_state.q", len(c.InitState.Q), nq)
	}
	if len(c.InitState.QDot) > nq {
		return nil, dynamo.Dimension("init_state.qdot", len(c.InitState.QDot), nq)
	}
	x := make([]float64, 2*nq)
	copy(x, c.InitState.Q)
	copy(x[nq:], c.InitState.QDot)
	return x, nil
}

// Validate checks the simulation settings and the mechanism description.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrConfiguration, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrConfiguration, c.Duration)
	}
	if c.FPS < 0 || c.Parallel < 0 || c.ConditionLimit < 0 {
		return fmt.Errorf("%w: fps, parallel and condition_limit must not be negative", dynamo.ErrConfiguration)
	}
	if !contains(Integrators, c.Integrator) {
		return fmt.Errorf("%w: unknown integrator %q (have %v)", dynamo.ErrConfiguration, c.Integrator, Integrators)
	}
	if !contains(Controllers, c.Controller) {
		return fmt.Errorf("%w: unknown controller %q (have %v)", dynamo.ErrConfiguration, c.Controller, Controllers)
	}

	m, err := c.ResolveMechanism()
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if _, err := c.GetInitState(m.DOF()); err != nil {
		return err
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
