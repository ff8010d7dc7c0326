// Package automation runs scripted batches of simulations described in YAML.
//
// A scenario is a list of steps. Each step starts from the default
// configuration, optionally layers a built-in preset, then applies its own
// configuration keys:
//
//	name: hold sweep
//	steps:
//	  - name: soft
//	    preset: pendulum/hold
//	    controller_params: {kp: [20]}
//	  - name: chaos
//	    preset: double_pendulum/chaos
//	    duration: 5
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/experiment"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/store"
)

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

type Step struct {
	Name   string
	Preset string // model/preset
	Config *config.Config
}

// UnmarshalYAML layers the step's keys over its preset.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Name   string `yaml:"name"`
		Preset string `yaml:"preset"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	cfg := config.DefaultConfig()
	if head.Preset != "" {
		model, preset, ok := strings.Cut(head.Preset, "/")
		p := config.GetPreset(model, preset)
		if !ok || p == nil {
			return fmt.Errorf("%w: unknown preset %q, want model/preset", dynamo.ErrConfiguration, head.Preset)
		}
		c := *p
		cfg = &c
	}
	if err := node.Decode(cfg); err != nil {
		return err
	}
	s.Name, s.Preset, s.Config = head.Name, head.Preset, cfg
	if s.Name == "" {
		s.Name = cfg.Model
	}
	return nil
}

// Parse decodes a scenario and validates every step before anything runs.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrConfiguration, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no steps", dynamo.ErrConfiguration, sc.Name)
	}
	for i, step := range sc.Steps {
		if err := step.Config.Validate(); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
	}
	return &sc, nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Outcome is the result of one step. A step whose integration failed keeps
// its partial metrics and the failure in Err.
type Outcome struct {
	Step    string
	RunID   string
	Steps   int
	Metrics map[string]float64
	Err     error
}

// RunScenario runs the steps in order. Each run is saved to st unless st is
// nil. A failed integration does not stop the batch; a configuration error
// or cancellation does. progress, if set, is called before each step.
func RunScenario(ctx context.Context, sc *Scenario, st *store.Store, progress func(i int, step Step)) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		if progress != nil {
			progress(i, step)
		}

		exp, err := experiment.New(step.Config)
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		result, runErr := exp.Run(ctx)
		var simErr *dynamo.SimulationError
		if runErr != nil && !errors.As(runErr, &simErr) {
			return outcomes, fmt.Errorf("step %d (%s): %w", i+1, step.Name, runErr)
		}

		out := Outcome{Step: step.Name, Err: runErr}
		if result != nil {
			out.Steps = result.StepsTaken
			out.Metrics = result.Metrics
		}
		if st != nil && result != nil {
			meta := exp.Metadata(presetName(step.Preset))
			if runErr != nil {
				meta.Error = runErr.Error()
			}
			if out.RunID, err = st.Save(meta, result); err != nil {
				return outcomes, err
			}
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func presetName(p string) string {
	_, name, _ := strings.Cut(p, "/")
	return name
}
