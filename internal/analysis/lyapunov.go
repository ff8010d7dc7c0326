package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent of the
// uncontrolled system. A shadow trajectory starts d0 away from x0 along the
// first coordinate; after every step the separation is logged and rescaled
// back to d0.
func LyapunovExponent(
	ctx context.Context,
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration, d0 float64,
) (float64, error) {
	if len(x0) == 0 {
		return 0, fmt.Errorf("%w: empty initial state", dynamo.ErrConfiguration)
	}
	if dt <= 0 || duration <= 0 || d0 <= 0 {
		return 0, fmt.Errorf("%w: dt, duration and separation must be positive", dynamo.ErrConfiguration)
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += d0
	u := make(dynamo.Control, dyn.ControlDim())

	steps := int(math.Round(duration / dt))
	sumLog := 0.0
	t := 0.0
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		next, err := integ.Step(dyn, x, u, t, dt)
		if err != nil {
			return 0, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: err}
		}
		shadow, err := integ.Step(dyn, xp, u, t, dt)
		if err != nil {
			return 0, &dynamo.SimulationError{Step: i, Time: t, State: xp, Wrapped: err}
		}
		x, xp = next, shadow
		t += dt

		sep := 0.0
		for k := range x {
			d := xp[k] - x[k]
			sep += d * d
		}
		sep = math.Sqrt(sep)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			return 0, &dynamo.SimulationError{Step: i, Time: t, State: xp, Wrapped: dynamo.ErrInvalidState}
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		for k := range xp {
			xp[k] = x[k] + (xp[k]-x[k])*scale
		}
	}
	return sumLog / t, nil
}
