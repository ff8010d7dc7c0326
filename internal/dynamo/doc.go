// Package dynamo provides core simulation primitives for multibody systems.
//
// The package defines the interfaces and types shared by the dynamics core
// and the simulation driver:
//
//   - [State]: vector representing system state, x = [q; qDot]
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: explicit time stepper
//   - [Controller]: produces the generalized controller force tauC
//   - [Simulator]: orchestrates simulation runs
//
// # Example
//
//	mb := models.Pendulum(cfg)
//	sim := dynamo.New(mb, integrators.NewEuler(), control.NewNone(mb.StateDim()/2))
//	result, err := sim.Run(ctx, x0, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. A system is mutated in place on
// every evaluation and must have exactly one writer.
package dynamo
