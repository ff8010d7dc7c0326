// Package control provides joint-space controllers. Each one implements
// [dynamo.Controller] and returns the generalized controller force tauC
// for a state x = [q; qDot]:
//
//   - [None]: zero force
//   - [PID]: per-coordinate regulator toward a target configuration
//   - [LQR]: full-state linear feedback u = −K·(x − target)
//   - [Manual]: a force vector set from outside, e.g. by the live view
//
// # Usage
//
//	pd := control.NewPD([]float64{20}, []float64{2}, []float64{0})
//	sim := dynamo.New(mb, integrators.NewEuler(), pd)
package control
