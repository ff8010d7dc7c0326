package models

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/multibody"
)

// FreeBody integrates a single unconstrained body with no external wrench,
// stepping the body state directly rather than joint coordinates.
type FreeBody struct {
	Body *body.RigidBody
	Time float64
}

// NewFreeBody starts b at the origin with body-frame angular velocity omega.
func NewFreeBody(b *body.RigidBody, omega mgl64.Vec3) (*FreeBody, error) {
	if b == nil || b.IsAnchor() {
		return nil, fmt.Errorf("%w: free body must be dynamic", dynamo.ErrConfiguration)
	}
	b.State = body.Kinematics{AIB: mgl64.Ident3(), Omega: omega}
	return &FreeBody{Body: b}, nil
}

// Step solves Euler's equations for the current state and advances by dt.
func (f *FreeBody) Step(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrConfiguration, dt)
	}
	if err := f.Body.ComputeNaturalDynamics(); err != nil {
		return err
	}
	f.Body.IntegrationStep(dt)
	f.Time += dt
	return nil
}

// Run steps until duration has elapsed, calling observe after every step
// when it is non-nil. observe returning false stops the run.
func (f *FreeBody) Run(dt, duration float64, observe func(*FreeBody) bool) error {
	if dt <= 0 || duration <= 0 {
		return fmt.Errorf("%w: dt and duration must be positive, got %g and %g", dynamo.ErrConfiguration, dt, duration)
	}
	steps := int(math.Round(duration / dt))
	for i := 0; i < steps; i++ {
		if err := f.Step(dt); err != nil {
			return &dynamo.SimulationError{Step: i, Time: f.Time, Wrapped: err}
		}
		if observe != nil && !observe(f) {
			return nil
		}
	}
	return nil
}

// AngularMomentum returns A_IB·I·ω, which is conserved by the exact motion.
func (f *FreeBody) AngularMomentum() mgl64.Vec3 {
	s := &f.Body.State
	return s.AIB.Mul3x1(f.Body.Inertia.Mul3x1(s.Omega))
}

// Energy returns the rotational kinetic energy.
func (f *FreeBody) Energy() float64 {
	return f.Body.KineticEnergy()
}

// Pose describes the body for the visualization layer.
func (f *FreeBody) Pose() multibody.Pose {
	return multibody.Pose{
		ID:       1,
		Name:     f.Body.Name,
		AIB:      f.Body.State.AIB,
		Position: f.Body.State.WorldPosition(),
		Joint:    f.Body.State.WorldPosition(),
	}
}
