// Package constraint provides bilateral constraints expressed on the
// generalized accelerations as J·qDDot + sigma = 0.
package constraint

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// Point makes two body-fixed points coincide. Either body may be the
// ground, which pins the other point in space.
type Point struct {
	BodyA   *body.RigidBody
	OffsetA mgl64.Vec3
	BodyB   *body.RigidBody
	OffsetB mgl64.Vec3

	// Axes selects the inertial directions that are constrained. All three
	// are constrained when nil.
	Axes []mgl64.Vec3
}

func NewPoint(a *body.RigidBody, offsetA mgl64.Vec3, b *body.RigidBody, offsetB mgl64.Vec3) (*Point, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: point constraint needs two bodies", dynamo.ErrConfiguration)
	}
	if a == b {
		return nil, fmt.Errorf("%w: point constraint on a single body", dynamo.ErrConfiguration)
	}
	return &Point{BodyA: a, OffsetA: offsetA, BodyB: b, OffsetB: offsetB}, nil
}

func (p *Point) axes() []mgl64.Vec3 {
	if len(p.Axes) == 0 {
		return []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	return p.Axes
}

// Terms returns one row per constrained axis n:
// J = nᵀ(J_A − J_B), sigma = nᵀ(a_A − a_B) with bias accelerations a.
func (p *Point) Terms(nq int) (*mat.Dense, *mat.VecDense, error) {
	ja, err := p.BodyA.PointJacobian(p.OffsetA)
	if err != nil {
		return nil, nil, err
	}
	jb, err := p.BodyB.PointJacobian(p.OffsetB)
	if err != nil {
		return nil, nil, err
	}
	if _, c := ja.Dims(); c != nq {
		return nil, nil, dynamo.Dimension("point constraint Jacobian", c, nq)
	}

	var diff mat.Dense
	diff.Sub(ja, jb)
	bias := p.BodyA.PointAcceleration(p.OffsetA).Sub(p.BodyB.PointAcceleration(p.OffsetB))

	axes := p.axes()
	j := mat.NewDense(len(axes), nq, nil)
	sigma := mat.NewVecDense(len(axes), nil)
	for i, n := range axes {
		l := n.Len()
		if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return nil, nil, fmt.Errorf("%w: point constraint axis %d is %v", dynamo.ErrConfiguration, i, n)
		}
		n = n.Mul(1 / l)
		for c := 0; c < nq; c++ {
			j.Set(i, c, n[0]*diff.At(0, c)+n[1]*diff.At(1, c)+n[2]*diff.At(2, c))
		}
		sigma.SetVec(i, n.Dot(bias))
	}
	return j, sigma, nil
}

// Violation returns the inertial distance between the two points.
func (p *Point) Violation() float64 {
	return p.BodyA.PointPosition(p.OffsetA).Sub(p.BodyB.PointPosition(p.OffsetB)).Len()
}

// Coordinate is a joint that exposes one generalized coordinate.
type Coordinate interface {
	Index() int
	Coordinate() (q, qDot float64)
}

// Lock holds one generalized coordinate at constant rate: qDDot_i = 0.
type Lock struct {
	Joint Coordinate
}

func (l *Lock) Terms(nq int) (*mat.Dense, *mat.VecDense, error) {
	i := l.Joint.Index()
	if i < 0 || i >= nq {
		return nil, nil, fmt.Errorf("%w: joint index %d outside nq=%d", dynamo.ErrDimensionMismatch, i, nq)
	}
	j := mat.NewDense(1, nq, nil)
	j.Set(0, i, 1)
	return j, mat.NewVecDense(1, nil), nil
}
