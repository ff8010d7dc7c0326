// Package integrators advances a dynamo.System by one fixed time step.
//
// Only first-order explicit schemes live here: [Euler] and
// [SemiImplicitEuler]. Orientation is carried by joint coordinates, so no
// rotation correction is needed at this level.
package integrators

import (
	"fmt"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

// Step returns x + dt·f(x, u, t).
func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) (dynamo.State, error) {
	dx, err := dyn.Derive(x, u, t)
	if err != nil {
		return nil, err
	}
	if len(dx) != len(x) {
		return nil, dynamo.Dimension("derivative", len(dx), len(x))
	}
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}

// SemiImplicitEuler updates the velocity half of x = [q; qDot] first and
// advances q with the new velocity. It costs one evaluation per step, like
// Euler, but keeps the energy of conservative systems bounded.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (s *SemiImplicitEuler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) (dynamo.State, error) {
	n := len(x)
	if n%2 != 0 {
		return nil, fmt.Errorf("%w: state of size %d is not [q; qDot]", dynamo.ErrDimensionMismatch, n)
	}
	dx, err := dyn.Derive(x, u, t)
	if err != nil {
		return nil, err
	}
	if len(dx) != n {
		return nil, dynamo.Dimension("derivative", len(dx), n)
	}

	half := n / 2
	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dt*dx[half+i]
		result[i] = x[i] + dt*result[half+i]
	}
	return result, nil
}
