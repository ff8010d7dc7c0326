package body

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// Rod is a hollow cylinder whose axis is the body x axis.
type Rod struct {
	Length      float64
	OuterRadius float64
	InnerRadius float64
	Density     float64
}

// Ellipsoid is a solid ellipsoid with semi-axes along the body axes.
type Ellipsoid struct {
	RX, RY, RZ float64
	Density    float64
}

// NewRod builds a rod body. The inertia is about the centre of mass:
// m·diag(½(ro²+ri²), ¼(ro²+ri²+L²/3), ¼(ro²+ri²+L²/3)).
func NewRod(r Rod, gravity mgl64.Vec3) (*RigidBody, error) {
	if r.Length <= 0 || r.OuterRadius <= 0 || r.Density <= 0 {
		return nil, fmt.Errorf("%w: rod needs positive length, outer radius and density", dynamo.ErrConfiguration)
	}
	if r.InnerRadius < 0 || r.InnerRadius >= r.OuterRadius {
		return nil, fmt.Errorf("%w: rod inner radius %g outside [0, %g)", dynamo.ErrConfiguration, r.InnerRadius, r.OuterRadius)
	}

	ro2, ri2, l2 := r.OuterRadius*r.OuterRadius, r.InnerRadius*r.InnerRadius, r.Length*r.Length
	mass := r.Density * math.Pi * (ro2 - ri2) * r.Length
	axial := 0.5 * (ro2 + ri2)
	transverse := 0.25 * (ro2 + ri2 + l2/3)
	inertia := mgl64.Diag3(mgl64.Vec3{axial, transverse, transverse}).Mul(mass)

	return New(mass, inertia, gravity)
}

// NewEllipsoid builds a solid ellipsoid body:
// m = ρ·4/3·π·rx·ry·rz, I = m/5·diag(ry²+rz², rx²+rz², rx²+ry²).
func NewEllipsoid(e Ellipsoid, gravity mgl64.Vec3) (*RigidBody, error) {
	if e.RX <= 0 || e.RY <= 0 || e.RZ <= 0 || e.Density <= 0 {
		return nil, fmt.Errorf("%w: ellipsoid needs positive semi-axes and density", dynamo.ErrConfiguration)
	}

	mass := e.Density * 4.0 / 3.0 * math.Pi * e.RX * e.RY * e.RZ
	x2, y2, z2 := e.RX*e.RX, e.RY*e.RY, e.RZ*e.RZ
	inertia := mgl64.Diag3(mgl64.Vec3{y2 + z2, x2 + z2, x2 + y2}).Mul(mass / 5)

	return New(mass, inertia, gravity)
}

// NewSphere builds a solid sphere of the given radius.
func NewSphere(radius, density float64, gravity mgl64.Vec3) (*RigidBody, error) {
	return NewEllipsoid(Ellipsoid{RX: radius, RY: radius, RZ: radius, Density: density}, gravity)
}

// NewCuboid builds a solid box with edge lengths a, b, c along x, y, z.
func NewCuboid(a, b, c, density float64, gravity mgl64.Vec3) (*RigidBody, error) {
	if a <= 0 || b <= 0 || c <= 0 || density <= 0 {
		return nil, fmt.Errorf("%w: cuboid needs positive edges and density", dynamo.ErrConfiguration)
	}

	mass := density * a * b * c
	inertia := mgl64.Diag3(mgl64.Vec3{b*b + c*c, a*a + c*c, a*a + b*b}).Mul(mass / 12)

	return New(mass, inertia, gravity)
}

// NewPointMass builds a body with mass but no rotational inertia, e.g. the
// massless-link bob of a textbook pendulum. A zero mass gives a massless
// connector frame.
func NewPointMass(mass float64, gravity mgl64.Vec3) (*RigidBody, error) {
	return New(mass, mgl64.Mat3{}, gravity)
}
