package multibody

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// Derive implements dynamo.System for x = [q; qDot]. The control u is the
// generalized controller force tauC.
func (m *MultiRigidBody) Derive(x dynamo.State, u dynamo.Control, t float64) (dynamo.State, error) {
	nq, err := m.NQ()
	if err != nil {
		return nil, err
	}
	if len(x) != 2*nq {
		return nil, dynamo.Dimension("state", len(x), 2*nq)
	}

	q, qDot := x.Split()
	ev, err := m.Evaluate(q, qDot, u)
	if err != nil {
		return nil, err
	}

	dx := make(dynamo.State, 0, 2*nq)
	dx = append(dx, qDot...)
	return append(dx, ev.QDDot...), nil
}

// StateDim is 2·nq, or 0 before Setup.
func (m *MultiRigidBody) StateDim() int { return 2 * m.nq }

// ControlDim is nq, or 0 before Setup.
func (m *MultiRigidBody) ControlDim() int { return m.nq }

// SetState distributes x = [q; qDot] with zero accelerations and runs the
// kinematics pass, leaving every body posed at x.
func (m *MultiRigidBody) SetState(x dynamo.State) error {
	nq, err := m.NQ()
	if err != nil {
		return err
	}
	if len(x) != 2*nq {
		return dynamo.Dimension("state", len(x), 2*nq)
	}
	q, qDot := x.Split()
	if err := m.DistributeState(q, qDot, make([]float64, nq)); err != nil {
		return err
	}
	return m.UpdateKinematicTree()
}

// Energy returns the kinetic plus potential energy of x = [q; qDot],
// including energy stored in force elements. It re-runs the kinematics
// pass and returns NaN when x cannot be evaluated.
func (m *MultiRigidBody) Energy(x dynamo.State) float64 {
	if err := m.SetState(x); err != nil {
		return math.NaN()
	}

	e := 0.0
	for _, n := range m.nodes {
		e += n.body.KineticEnergy() + n.body.PotentialEnergy()
	}
	for _, s := range m.springs {
		if p, ok := s.(PotentialEnergy); ok {
			e += p.PotentialEnergy()
		}
	}
	return e
}

// Pose is what a renderer needs to draw one body.
type Pose struct {
	ID       BodyID
	Name     string
	AIB      mgl64.Mat3
	Position mgl64.Vec3 // centre of mass, inertial frame
	Joint    mgl64.Vec3 // point where the inbound joint holds the body, inertial frame
}

// Poses returns the pose of every dynamic body as of the last kinematics
// pass.
func (m *MultiRigidBody) Poses() []Pose {
	poses := make([]Pose, 0, len(m.nodes)-1)
	for i, n := range m.nodes {
		if n.body.IsAnchor() {
			continue
		}
		pose := Pose{
			ID:       BodyID(i),
			Name:     n.body.Name,
			AIB:      n.body.State.AIB,
			Position: n.body.State.WorldPosition(),
		}
		pose.Joint = pose.Position
		if n.parent >= 0 {
			if j, ok := m.edges[n.parent].joint.(JointPointer); ok {
				pose.Joint = pose.Position.Add(pose.AIB.Mul3x1(j.JointPoint()))
			}
		}
		poses = append(poses, pose)
	}
	return poses
}

// ParentPosition returns the inertial centre of mass of the parent of body
// id. The ground sits at the origin.
func (m *MultiRigidBody) ParentPosition(id BodyID) (mgl64.Vec3, bool) {
	if !m.valid(id) || m.nodes[id].parent < 0 {
		return mgl64.Vec3{}, false
	}
	p := m.nodes[m.edges[m.nodes[id].parent].parent].body
	return p.State.WorldPosition(), true
}

// ConstraintViolation returns the largest position-level violation over the
// constraints that can measure one, as of the last kinematics pass.
func (m *MultiRigidBody) ConstraintViolation() float64 {
	worst := 0.0
	for _, c := range m.constraints {
		if v, ok := c.(Violator); ok {
			worst = math.Max(worst, v.Violation())
		}
	}
	return worst
}
