// Package joint implements the edges of a kinematic tree. A joint maps its
// own generalized coordinates into the pose, twist, bias acceleration and
// Jacobians of its successor body, given those of the parent body.
//
// Frames: P is the parent body frame, Dp the joint frame fixed on the
// parent, Ds the joint frame fixed on the successor and S the successor
// body frame. The joint motion is the transform from Dp to Ds.
package joint

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/spatial"
)

// Geometry places the joint frames on the two bodies. Zero rotations are
// read as identity.
type Geometry struct {
	ParentOffset      mgl64.Vec3 // parent COM → Dp, parent frame
	ParentRotation    mgl64.Mat3 // A_PDp
	SuccessorOffset   mgl64.Vec3 // Ds → successor COM, successor frame
	SuccessorRotation mgl64.Mat3 // A_DsS
}

// JointPoint returns the joint point Ds relative to the successor centre
// of mass, in successor coordinates.
func (g Geometry) JointPoint() mgl64.Vec3 { return g.SuccessorOffset.Mul(-1) }

func (g Geometry) normalized() Geometry {
	if g.ParentRotation == (mgl64.Mat3{}) {
		g.ParentRotation = mgl64.Ident3()
	}
	if g.SuccessorRotation == (mgl64.Mat3{}) {
		g.SuccessorRotation = mgl64.Ident3()
	}
	return g
}

// motion is the relative state of Ds with respect to Dp, in Dp coordinates.
type motion struct {
	rotation mgl64.Mat3 // A_DpDs
	offset   mgl64.Vec3 // Dp → Ds
	omega    mgl64.Vec3
	omegaDot mgl64.Vec3
	vel      mgl64.Vec3
	acc      mgl64.Vec3
	// columns added to the Jacobians at the joint index
	rotAxis   mgl64.Vec3
	transAxis mgl64.Vec3
}

// propagate computes the successor kinematics from the parent's. index is
// the global coordinate of a single-DOF joint, or -1 for a rigid one.
func propagate(nq int, g Geometry, m motion, index int, parent, succ *body.Kinematics) error {
	if parent.NQ() != nq {
		return dynamo.Dimension("parent Jacobian", parent.NQ(), nq)
	}
	if index >= nq {
		return fmt.Errorf("%w: joint index %d outside nq=%d", dynamo.ErrDimensionMismatch, index, nq)
	}

	apd := g.ParentRotation
	aps := apd.Mul3(m.rotation).Mul3(g.SuccessorRotation)
	asp := aps.Transpose()

	rPD := g.ParentOffset.Add(apd.Mul3x1(m.offset))
	wRel := apd.Mul3x1(m.omega)
	vRel := apd.Mul3x1(m.vel)

	wP, wDotP := parent.Omega, parent.OmegaDot

	// parent-frame quantities of the successor and of the joint point D
	w := wP.Add(wRel)
	wDot := wDotP.Add(apd.Mul3x1(m.omegaDot)).Add(wP.Cross(wRel))
	vD := parent.V.Add(wP.Cross(rPD)).Add(vRel)
	aD := parent.A.
		Add(wDotP.Cross(rPD)).
		Add(wP.Cross(wP.Cross(rPD))).
		Add(wP.Cross(vRel).Mul(2)).
		Add(apd.Mul3x1(m.acc))

	rDS := g.SuccessorOffset

	succ.AIB = parent.AIB.Mul3(aps)
	succ.Omega = asp.Mul3x1(w)
	succ.OmegaDot = asp.Mul3x1(wDot)
	succ.R = asp.Mul3x1(parent.R.Add(rPD)).Add(rDS)
	succ.V = asp.Mul3x1(vD).Add(succ.Omega.Cross(rDS))
	succ.A = asp.Mul3x1(aD).
		Add(succ.OmegaDot.Cross(rDS)).
		Add(succ.Omega.Cross(succ.Omega.Cross(rDS)))

	jr := mat.DenseCopyOf(parent.JR)
	var jv mat.Dense
	jv.Sub(parent.JS, spatial.Mul(spatial.Skew(rPD), parent.JR))
	if index >= 0 {
		addColumn(jr, index, apd.Mul3x1(m.rotAxis))
		addColumn(&jv, index, apd.Mul3x1(m.transAxis))
	}

	succ.JR = spatial.Mul(asp, jr)
	js := spatial.Mul(asp, &jv)
	js.Sub(js, spatial.Mul(spatial.Skew(rDS), succ.JR))
	succ.JS = js

	return nil
}

func addColumn(j *mat.Dense, col int, v mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		j.Set(i, col, j.At(i, col)+v[i])
	}
}

// single holds the coordinate of a one-DOF joint.
type single struct {
	index          int
	q, qDot, qDDot float64
	indexAssigned  bool
}

func (s *single) DOF() int { return 1 }

func (s *single) SetIndex(i int) {
	s.index = i
	s.indexAssigned = true
}

func (s *single) Index() int { return s.index }

// Coordinate returns the joint position and rate.
func (s *single) Coordinate() (q, qDot float64) { return s.q, s.qDot }

func (s *single) SetState(q, qDot, qDDot []float64) {
	s.q, s.qDot, s.qDDot = q[s.index], qDot[s.index], qDDot[s.index]
}

func (s *single) GetState(q, qDot, qDDot []float64) {
	q[s.index], qDot[s.index], qDDot[s.index] = s.q, s.qDot, s.qDDot
}

func (s *single) checkIndex() error {
	if !s.indexAssigned {
		return fmt.Errorf("%w: joint coordinate index not assigned", dynamo.ErrConfiguration)
	}
	return nil
}

func unitAxis(axis mgl64.Vec3) (mgl64.Vec3, error) {
	if axis.Len() == 0 {
		return axis, fmt.Errorf("%w: joint axis must be non-zero", dynamo.ErrConfiguration)
	}
	return axis.Normalize(), nil
}
