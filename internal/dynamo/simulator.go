package dynamo

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates x0 over cfg.Duration. A failed step stops the run; the
// partial result is returned together with a *SimulationError.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg, x0); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	initialEnergy := s.computeEnergy(x)

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.compute(x, t)

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		newX, err := s.integrator.Step(s.dyn, x, u, t, cfg.Dt)
		if err == nil && cfg.ValidateState && !newX.IsValid() {
			err = ErrInvalidState
		}
		if err != nil {
			runErr = &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
			break
		}

		x = newX
		t += cfg.Dt
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	finalEnergy := s.computeEnergy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

// RunWithCallback steps the system until the duration elapses or callback
// returns false. It stores no history.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, Control, float64) bool) error {
	if err := s.validateConfig(cfg, x0); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0
	step := 0

	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u := s.compute(x, t)

		if !callback(x, u, t) {
			return nil
		}

		newX, err := s.integrator.Step(s.dyn, x, u, t, cfg.Dt)
		if err != nil {
			return &SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: err}
		}
		x = newX
		t += cfg.Dt
		step++

		if cfg.ValidateState && !x.IsValid() {
			return &SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}
	}

	return nil
}

func (s *Simulator) compute(x State, t float64) Control {
	if s.controller == nil {
		return nil
	}
	return s.controller.Compute(x, t)
}

func (s *Simulator) validateConfig(cfg Config, x0 State) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrConfiguration, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrConfiguration, cfg.Duration)
	}
	if len(x0) != s.dyn.StateDim() {
		return Dimension("initial state", len(x0), s.dyn.StateDim())
	}
	return nil
}

func (s *Simulator) computeEnergy(x State) float64 {
	if ec, ok := s.dyn.(Hamiltonian); ok {
		return ec.Energy(x)
	}
	return 0
}
