package models

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
)

// NewTumbler returns the classic intermediate-axis demonstration: a
// triaxial ellipsoid spun mostly about its middle principal axis, with a
// small perturbation that makes the spin flip periodically.
func NewTumbler(spin float64) (*FreeBody, error) {
	b, err := body.NewEllipsoid(body.Ellipsoid{RX: 0.3, RY: 0.2, RZ: 0.1, Density: 1000}, mgl64.Vec3{})
	if err != nil {
		return nil, err
	}
	b.Name = "tumbler"
	return NewFreeBody(b, mgl64.Vec3{0.01 * spin, spin, 0.01 * spin})
}
