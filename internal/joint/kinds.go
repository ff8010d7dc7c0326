package joint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/spatial"
)

// Revolute rotates the successor about Axis (Dp frame) by q radians.
type Revolute struct {
	single
	Geometry
	Axis mgl64.Vec3
}

func NewRevolute(axis mgl64.Vec3, g Geometry) (*Revolute, error) {
	u, err := unitAxis(axis)
	if err != nil {
		return nil, err
	}
	return &Revolute{Geometry: g.normalized(), Axis: u}, nil
}

func (r *Revolute) Propagate(nq int, parent, succ *body.Kinematics) error {
	if err := r.checkIndex(); err != nil {
		return err
	}
	m := motion{
		rotation: spatial.Rotation(r.Axis, r.q),
		omega:    r.Axis.Mul(r.qDot),
		omegaDot: r.Axis.Mul(r.qDDot),
		rotAxis:  r.Axis,
	}
	return propagate(nq, r.Geometry, m, r.index, parent, succ)
}

// Prismatic translates the successor along Axis (Dp frame) by q metres.
type Prismatic struct {
	single
	Geometry
	Axis mgl64.Vec3
}

func NewPrismatic(axis mgl64.Vec3, g Geometry) (*Prismatic, error) {
	u, err := unitAxis(axis)
	if err != nil {
		return nil, err
	}
	return &Prismatic{Geometry: g.normalized(), Axis: u}, nil
}

func (p *Prismatic) Propagate(nq int, parent, succ *body.Kinematics) error {
	if err := p.checkIndex(); err != nil {
		return err
	}
	m := motion{
		rotation:  mgl64.Ident3(),
		offset:    p.Axis.Mul(p.q),
		vel:       p.Axis.Mul(p.qDot),
		acc:       p.Axis.Mul(p.qDDot),
		transAxis: p.Axis,
	}
	return propagate(nq, p.Geometry, m, p.index, parent, succ)
}

// Fixed welds the successor to the parent. It owns no coordinates.
type Fixed struct {
	Geometry
}

func NewFixed(g Geometry) *Fixed {
	return &Fixed{Geometry: g.normalized()}
}

func (f *Fixed) DOF() int                          { return 0 }
func (f *Fixed) SetIndex(int)                      {}
func (f *Fixed) Index() int                        { return -1 }
func (f *Fixed) SetState(q, qDot, qDDot []float64) {}
func (f *Fixed) GetState(q, qDot, qDDot []float64) {}

func (f *Fixed) Propagate(nq int, parent, succ *body.Kinematics) error {
	return propagate(nq, f.Geometry, motion{rotation: mgl64.Ident3()}, -1, parent, succ)
}
