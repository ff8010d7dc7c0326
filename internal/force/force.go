// Package force provides spring-damper elements that contribute
// generalized forces to a multibody system.
package force

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/spatial"
)

// Attachment is a body-fixed point, as an offset from the centre of mass
// in body coordinates.
type Attachment struct {
	Body   *body.RigidBody
	Offset mgl64.Vec3
}

func (a Attachment) position() mgl64.Vec3 { return a.Body.PointPosition(a.Offset) }
func (a Attachment) velocity() mgl64.Vec3 { return a.Body.PointVelocity(a.Offset) }

// PointSpringDamper is a linear spring and damper acting along the line
// between two attachment points.
type PointSpringDamper struct {
	A, B       Attachment
	Stiffness  float64
	Damping    float64
	RestLength float64
}

func NewPointSpringDamper(a, b Attachment, stiffness, damping, restLength float64) (*PointSpringDamper, error) {
	if a.Body == nil || b.Body == nil {
		return nil, fmt.Errorf("%w: spring-damper needs two bodies", dynamo.ErrConfiguration)
	}
	if stiffness < 0 || damping < 0 || restLength < 0 {
		return nil, fmt.Errorf("%w: negative spring-damper parameter", dynamo.ErrConfiguration)
	}
	return &PointSpringDamper{A: a, B: b, Stiffness: stiffness, Damping: damping, RestLength: restLength}, nil
}

// Force returns the inertial force on attachment B; A receives the
// opposite. It is zero when the points coincide.
func (s *PointSpringDamper) Force() mgl64.Vec3 {
	d := s.B.position().Sub(s.A.position())
	l := d.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	n := d.Mul(1 / l)
	rate := s.B.velocity().Sub(s.A.velocity()).Dot(n)
	return n.Mul(-s.Stiffness*(l-s.RestLength) - s.Damping*rate)
}

// GeneralizedForce projects the spring force through both point
// Jacobians: tau = J_Bᵀ·F − J_Aᵀ·F.
func (s *PointSpringDamper) GeneralizedForce(nq int) (*mat.VecDense, error) {
	f := spatial.Vec(s.Force())

	ja, err := s.A.Body.PointJacobian(s.A.Offset)
	if err != nil {
		return nil, err
	}
	jb, err := s.B.Body.PointJacobian(s.B.Offset)
	if err != nil {
		return nil, err
	}
	if _, c := ja.Dims(); c != nq {
		return nil, dynamo.Dimension("spring attachment Jacobian", c, nq)
	}

	var tau, ta mat.VecDense
	tau.MulVec(jb.T(), f)
	ta.MulVec(ja.T(), f)
	tau.SubVec(&tau, &ta)
	return &tau, nil
}

func (s *PointSpringDamper) PotentialEnergy() float64 {
	stretch := s.B.position().Sub(s.A.position()).Len() - s.RestLength
	return 0.5 * s.Stiffness * stretch * stretch
}

// Coordinate is a joint that exposes one generalized coordinate.
type Coordinate interface {
	Index() int
	Coordinate() (q, qDot float64)
}

// JointSpringDamper acts directly on one generalized coordinate:
// tau_i = −k·(q_i − q0) − d·qDot_i.
type JointSpringDamper struct {
	Joint     Coordinate
	Stiffness float64
	Damping   float64
	Rest      float64
}

func NewJointSpringDamper(j Coordinate, stiffness, damping, rest float64) (*JointSpringDamper, error) {
	if j == nil {
		return nil, fmt.Errorf("%w: joint spring-damper needs a joint", dynamo.ErrConfiguration)
	}
	if stiffness < 0 || damping < 0 {
		return nil, fmt.Errorf("%w: negative spring-damper parameter", dynamo.ErrConfiguration)
	}
	return &JointSpringDamper{Joint: j, Stiffness: stiffness, Damping: damping, Rest: rest}, nil
}

func (s *JointSpringDamper) GeneralizedForce(nq int) (*mat.VecDense, error) {
	i := s.Joint.Index()
	if i < 0 || i >= nq {
		return nil, fmt.Errorf("%w: joint index %d outside nq=%d", dynamo.ErrDimensionMismatch, i, nq)
	}
	q, qDot := s.Joint.Coordinate()
	tau := mat.NewVecDense(nq, nil)
	tau.SetVec(i, -s.Stiffness*(q-s.Rest)-s.Damping*qDot)
	return tau, nil
}

func (s *JointSpringDamper) PotentialEnergy() float64 {
	q, _ := s.Joint.Coordinate()
	return 0.5 * s.Stiffness * (q - s.Rest) * (q - s.Rest)
}

// ConstantForce applies a fixed inertial force at a body-fixed point.
type ConstantForce struct {
	At    Attachment
	Force mgl64.Vec3
}

func (c *ConstantForce) GeneralizedForce(nq int) (*mat.VecDense, error) {
	j, err := c.At.Body.PointJacobian(c.At.Offset)
	if err != nil {
		return nil, err
	}
	if _, cols := j.Dims(); cols != nq {
		return nil, dynamo.Dimension("force attachment Jacobian", cols, nq)
	}
	var tau mat.VecDense
	tau.MulVec(j.T(), spatial.Vec(c.Force))
	return &tau, nil
}
