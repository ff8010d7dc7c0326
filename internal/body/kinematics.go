package body

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Kinematics is the per-evaluation state of one body. All vectors except
// AIB are expressed in the body frame B.
type Kinematics struct {
	AIB      mgl64.Mat3 // rotation body → inertial
	R        mgl64.Vec3 // centre of mass position (B_r_IB)
	V        mgl64.Vec3 // absolute velocity of the centre of mass
	A        mgl64.Vec3 // absolute acceleration of the centre of mass
	Omega    mgl64.Vec3 // absolute angular velocity
	OmegaDot mgl64.Vec3 // absolute angular acceleration
	JS       *mat.Dense // 3×nq translational Jacobian
	JR       *mat.Dense // 3×nq rotational Jacobian
}

// Reset puts k at the inertial origin at rest with zero 3×nq Jacobians.
func (k *Kinematics) Reset(nq int) {
	k.AIB = mgl64.Ident3()
	k.R = mgl64.Vec3{}
	k.V = mgl64.Vec3{}
	k.A = mgl64.Vec3{}
	k.Omega = mgl64.Vec3{}
	k.OmegaDot = mgl64.Vec3{}
	k.JS = zeroJacobian(k.JS, nq)
	k.JR = zeroJacobian(k.JR, nq)
}

// NQ returns the Jacobian width, or 0 before the first kinematics pass.
func (k *Kinematics) NQ() int {
	if k.JS == nil {
		return 0
	}
	_, c := k.JS.Dims()
	return c
}

// WorldPosition returns the centre of mass in inertial coordinates.
func (k *Kinematics) WorldPosition() mgl64.Vec3 {
	return k.AIB.Mul3x1(k.R)
}

func zeroJacobian(j *mat.Dense, nq int) *mat.Dense {
	if j != nil {
		if r, c := j.Dims(); r == 3 && c == nq {
			j.Zero()
			return j
		}
	}
	return mat.NewDense(3, nq, nil)
}
