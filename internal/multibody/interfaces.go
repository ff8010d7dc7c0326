package multibody

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
)

// Joint is an edge of the kinematic tree. It owns DOF() consecutive
// entries of the global q, qDot and qDDot vectors starting at Index().
type Joint interface {
	DOF() int
	SetIndex(i int)
	Index() int

	// SetState reads the joint's slice of the global vectors.
	SetState(q, qDot, qDDot []float64)
	// GetState writes the joint's slice into the global vectors.
	GetState(q, qDot, qDDot []float64)

	// Propagate computes the successor kinematics (pose, twist, bias
	// acceleration, 3×nq Jacobians) from those of the parent.
	Propagate(nq int, parent, successor *body.Kinematics) error
}

// SpringDamper contributes a generalized force of length nq, evaluated
// against the current body and joint state.
type SpringDamper interface {
	GeneralizedForce(nq int) (*mat.VecDense, error)
}

// BilateralConstraint contributes rows of J·qDDot + sigma = 0, with J of
// size nc×nq and sigma of length nc.
type BilateralConstraint interface {
	Terms(nq int) (j *mat.Dense, sigma *mat.VecDense, err error)
}

// PotentialEnergy is implemented by force elements that store energy.
type PotentialEnergy interface {
	PotentialEnergy() float64
}

// Violator is implemented by constraints that can measure how far the
// current kinematics are from satisfying them at position level.
type Violator interface {
	Violation() float64
}

// JointPointer is implemented by joints that know where they hold the
// successor: the joint point relative to its centre of mass, in successor
// coordinates.
type JointPointer interface {
	JointPoint() mgl64.Vec3
}
