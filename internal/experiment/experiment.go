// Package experiment assembles a simulation from a configuration: it
// builds the mechanism, picks the integrator and controller, attaches the
// standard metrics and runs the simulator.
package experiment

import (
	"context"
	"fmt"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/metrics"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/models"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/multibody"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/store"
)

type Experiment struct {
	cfg *config.Config

	Model      *models.Model
	Integrator dynamo.Integrator
	Controller dynamo.Controller

	simulator *dynamo.Simulator
	x0        dynamo.State
}

// New validates cfg and assembles everything Run needs.
func New(cfg *config.Config) (*Experiment, error) {
	return NewWithRegistry(cfg, NewRegistry())
}

func NewWithRegistry(cfg *config.Config, r *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mech, err := cfg.ResolveMechanism()
	if err != nil {
		return nil, err
	}

	opts := []multibody.Option{}
	if cfg.Parallel > 0 {
		opts = append(opts, multibody.WithParallel(cfg.Parallel))
	}
	if cfg.ConditionLimit > 0 {
		opts = append(opts, multibody.WithConditionLimit(cfg.ConditionLimit))
	}
	model, err := models.Build(mech, opts...)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Model, err)
	}
	nq, err := model.NQ()
	if err != nil {
		return nil, err
	}

	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	ctrl, err := r.GetController(cfg.Controller, cfg.ControllerParams, nq)
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", cfg.Controller, err)
	}
	x0, err := cfg.GetInitState(nq)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:        cfg,
		Model:      model,
		Integrator: integ,
		Controller: ctrl,
		simulator:  dynamo.New(model, integ, ctrl),
		x0:         x0,
	}
	e.simulator.AddMetric(metrics.NewEnergyDrift(model))
	e.simulator.AddMetric(metrics.NewActuatorWork())
	if len(mech.Constraints) > 0 {
		e.simulator.AddMetric(metrics.NewConstraintDrift(model))
	}
	switch cfg.Controller {
	case "pd", "pid", "lqr":
		e.simulator.AddMetric(metrics.NewTrackingError(cfg.ControllerParams.Target))
	}
	return e, nil
}

// InitState returns a copy of x0.
func (e *Experiment) InitState() dynamo.State { return e.x0.Clone() }

func (e *Experiment) Simulator() *dynamo.Simulator { return e.simulator }

// Run integrates the configured duration from x0. On a failed step the
// partial result is returned with the error.
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.simulator.Run(ctx, e.InitState(), dynamo.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		ValidateState: true,
	})
}

// Metadata describes the experiment for the run store.
func (e *Experiment) Metadata(preset string) store.RunMetadata {
	return store.RunMetadata{
		Model:       e.cfg.Model,
		Preset:      preset,
		Dt:          e.cfg.Dt,
		Duration:    e.cfg.Duration,
		Integrator:  e.cfg.Integrator,
		Controller:  e.cfg.Controller,
		Coordinates: e.Model.CoordinateNames(),
		Mechanism:   e.cfg.Mechanism,
	}
}

// Paths replays states through the mechanism and collects the centre of
// mass trace of every body.
func (e *Experiment) Paths(states []dynamo.State) ([]store.Path, error) {
	return Paths(e.Model.MultiRigidBody, states)
}

// Paths replays states through mb and collects the centre of mass trace of
// every dynamic body.
func Paths(mb *multibody.MultiRigidBody, states []dynamo.State) ([]store.Path, error) {
	var paths []store.Path
	for k, x := range states {
		if err := mb.SetState(x); err != nil {
			return nil, fmt.Errorf("state %d: %w", k, err)
		}
		poses := mb.Poses()
		if paths == nil {
			paths = make([]store.Path, len(poses))
			for i, p := range poses {
				paths[i].Name = p.Name
			}
		}
		for i, p := range poses {
			paths[i].X = append(paths[i].X, p.Position.X())
			paths[i].Z = append(paths[i].Z, p.Position.Z())
		}
	}
	return paths, nil
}
