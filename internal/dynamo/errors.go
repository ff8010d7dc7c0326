package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for dynamics and simulation operations.
var (
	// ErrConfiguration indicates a model used before Setup, or set up with
	// invalid parameters (non-positive nq, cyclic tree, bad geometry).
	ErrConfiguration = errors.New("dynamo: configuration error")

	// ErrDimensionMismatch indicates a Jacobian, mass block, force vector or
	// state vector whose size disagrees with nq.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrSingularSystem indicates the assembled linear system is singular or
	// too ill-conditioned to solve (redundant or conflicting constraints,
	// degenerate mass matrix).
	ErrSingularSystem = errors.New("dynamo: singular system")

	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Dimension returns an ErrDimensionMismatch describing the offending quantity.
func Dimension(what string, got, want int) error {
	return fmt.Errorf("%w: %s has size %d, want %d", ErrDimensionMismatch, what, got, want)
}
