package body

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/spatial"
)

// Kind distinguishes the fixed root of a tree from bodies that move.
type Kind int

const (
	// Dynamic bodies have inertia and contribute to the equations of motion.
	Dynamic Kind = iota

	// Anchor bodies are fixed to the inertial frame. They carry no inertia
	// and contribute nothing to the equations of motion.
	Anchor
)

func (k Kind) String() string {
	switch k {
	case Anchor:
		return "anchor"
	default:
		return "dynamic"
	}
}

// DefaultGravity points down the inertial z axis.
var DefaultGravity = mgl64.Vec3{0, 0, -9.81}

// RigidBody holds the inertial constants of one body and the kinematic
// state written by the last forward-kinematics pass.
type RigidBody struct {
	Name    string
	Kind    Kind
	Mass    float64
	Inertia mgl64.Mat3 // about the centre of mass, body frame
	Gravity mgl64.Vec3 // inertial frame

	State Kinematics
}

// New returns a dynamic body. Zero mass is allowed for massless
// intermediate frames; negative mass or an asymmetric inertia tensor is not.
func New(mass float64, inertia mgl64.Mat3, gravity mgl64.Vec3) (*RigidBody, error) {
	if mass < 0 || math.IsNaN(mass) {
		return nil, fmt.Errorf("%w: mass must be non-negative, got %g", dynamo.ErrConfiguration, mass)
	}
	if !inertia.ApproxEqualThreshold(inertia.Transpose(), 1e-12) {
		return nil, fmt.Errorf("%w: inertia tensor is not symmetric", dynamo.ErrConfiguration)
	}
	b := &RigidBody{
		Kind:    Dynamic,
		Mass:    mass,
		Inertia: inertia,
		Gravity: gravity,
	}
	b.State.AIB = mgl64.Ident3()
	return b, nil
}

// NewGround returns the anchor used as the root of every tree.
func NewGround() *RigidBody {
	b := &RigidBody{Name: "ground", Kind: Anchor}
	b.State.AIB = mgl64.Ident3()
	return b
}

func (b *RigidBody) IsAnchor() bool { return b.Kind == Anchor }

// IntegrationStep advances the body state by dt with explicit Euler. R and V
// are body-frame quantities, so their derivatives carry the -ω×(·) term of
// the rotating frame. The orientation update is exact for constant ω.
func (b *RigidBody) IntegrationStep(dt float64) {
	s := &b.State
	bw := spatial.Skew(s.Omega)
	iw := spatial.Skew(s.AIB.Mul3x1(s.Omega))

	s.R = s.R.Add(s.V.Sub(bw.Mul3x1(s.R)).Mul(dt))
	s.V = s.V.Add(s.A.Sub(bw.Mul3x1(s.V)).Mul(dt))
	s.AIB = spatial.Expm(iw.Mul(dt)).Mul3(s.AIB)
	s.Omega = s.Omega.Add(s.OmegaDot.Mul(dt))
}

// PointPosition returns the inertial position of the body-fixed point at
// offset r from the centre of mass.
func (b *RigidBody) PointPosition(r mgl64.Vec3) mgl64.Vec3 {
	return b.State.AIB.Mul3x1(b.State.R.Add(r))
}

// PointVelocity returns the inertial velocity of the body-fixed point r.
func (b *RigidBody) PointVelocity(r mgl64.Vec3) mgl64.Vec3 {
	s := &b.State
	return s.AIB.Mul3x1(s.V.Add(s.Omega.Cross(r)))
}

// PointAcceleration returns the inertial acceleration of the body-fixed
// point r, including the centripetal ω×(ω×r) term.
func (b *RigidBody) PointAcceleration(r mgl64.Vec3) mgl64.Vec3 {
	s := &b.State
	return s.AIB.Mul3x1(s.A.Add(s.OmegaDot.Cross(r)).Add(s.Omega.Cross(s.Omega.Cross(r))))
}

// PointJacobian returns the 3×nq inertial translational Jacobian of the
// body-fixed point r: A_IB·(J_S − skew(r)·J_R).
func (b *RigidBody) PointJacobian(r mgl64.Vec3) (*mat.Dense, error) {
	s := &b.State
	if s.JS == nil || s.JR == nil {
		return nil, fmt.Errorf("%w: body %q has no kinematics yet", dynamo.ErrConfiguration, b.Name)
	}
	var j mat.Dense
	j.Sub(s.JS, spatial.Mul(spatial.Skew(r), s.JR))
	return spatial.Mul(s.AIB, &j), nil
}

// ComputeDynamics solves the Newton-Euler equations of the unconstrained
// body for the body-frame force f and torque tau about the centre of mass.
func (b *RigidBody) ComputeDynamics(f, tau mgl64.Vec3) error {
	if b.Mass <= 0 || b.Inertia.Det() == 0 {
		return fmt.Errorf("%w: body %q has no invertible inertia", dynamo.ErrSingularSystem, b.Name)
	}
	s := &b.State
	l := b.Inertia.Mul3x1(s.Omega)
	s.A = f.Mul(1 / b.Mass)
	s.OmegaDot = b.Inertia.Inv().Mul3x1(tau.Sub(s.Omega.Cross(l)))
	return nil
}

// ComputeNaturalDynamics sets the accelerations of a free body with no
// external wrench: a = 0 and I·ωDot = −ω×(I·ω).
func (b *RigidBody) ComputeNaturalDynamics() error {
	return b.ComputeDynamics(mgl64.Vec3{}, mgl64.Vec3{})
}

// Contribution returns this body's share of the generalized mass matrix,
// bias force and gravity force. The kinematics must come from a pass with
// all generalized accelerations set to zero, so that A and OmegaDot are
// bias accelerations.
func (b *RigidBody) Contribution() (m *mat.Dense, f, g *mat.VecDense, err error) {
	s := &b.State
	nq := s.NQ()
	if nq == 0 {
		return nil, nil, nil, fmt.Errorf("%w: body %q has no kinematics yet", dynamo.ErrConfiguration, b.Name)
	}
	if r, c := s.JR.Dims(); r != 3 || c != nq {
		return nil, nil, nil, dynamo.Dimension(fmt.Sprintf("rotational Jacobian of %q", b.Name), c, nq)
	}

	m = mat.NewDense(nq, nq, nil)
	f = mat.NewVecDense(nq, nil)
	g = mat.NewVecDense(nq, nil)
	if b.IsAnchor() {
		return m, f, g, nil
	}

	var rot mat.Dense
	m.Mul(s.JS.T(), s.JS)
	m.Scale(b.Mass, m)
	rot.Mul(s.JR.T(), spatial.Mul(b.Inertia, s.JR))
	m.Add(m, &rot)

	gyro := b.Inertia.Mul3x1(s.OmegaDot).Add(s.Omega.Cross(b.Inertia.Mul3x1(s.Omega)))
	var fr mat.VecDense
	f.MulVec(s.JS.T(), spatial.Vec(s.A.Mul(-b.Mass)))
	fr.MulVec(s.JR.T(), spatial.Vec(gyro.Mul(-1)))
	f.AddVec(f, &fr)

	g.MulVec(s.JS.T(), spatial.Vec(s.AIB.Transpose().Mul3x1(b.Gravity).Mul(b.Mass)))

	return m, f, g, nil
}

// KineticEnergy returns ½·m·v·v + ½·ω·I·ω.
func (b *RigidBody) KineticEnergy() float64 {
	if b.IsAnchor() {
		return 0
	}
	s := &b.State
	return 0.5*b.Mass*s.V.Dot(s.V) + 0.5*s.Omega.Dot(b.Inertia.Mul3x1(s.Omega))
}

// PotentialEnergy returns the gravitational potential −m·g·r, zero at the
// inertial origin.
func (b *RigidBody) PotentialEnergy() float64 {
	if b.IsAnchor() {
		return 0
	}
	return -b.Mass * b.Gravity.Dot(b.State.WorldPosition())
}

// InertiaEllipsoid returns the semi-axes of the homogeneous ellipsoid with
// the same mass and inertia, and the rotation from its principal axes to
// the body frame.
func (b *RigidBody) InertiaEllipsoid() (semiAxes mgl64.Vec3, abp mgl64.Mat3, err error) {
	if b.Mass <= 0 {
		return semiAxes, abp, fmt.Errorf("%w: body %q has no mass", dynamo.ErrConfiguration, b.Name)
	}

	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			sym.SetSym(i, j, b.Inertia.At(i, j))
		}
	}
	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return semiAxes, abp, fmt.Errorf("%w: eigendecomposition of %q inertia failed", dynamo.ErrSingularSystem, b.Name)
	}
	d := es.Values(nil)
	var v mat.Dense
	es.VectorsTo(&v)

	for i := 0; i < 3; i++ {
		j, k := (i+1)%3, (i+2)%3
		semiAxes[i] = math.Sqrt(math.Max(0, 2.5/b.Mass*(d[j]+d[k]-d[i])))
	}
	return semiAxes, spatial.FromDense(&v), nil
}
