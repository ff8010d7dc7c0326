package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/multibody"
)

// far returns the end of a body opposite its joint point. For a rod held
// at one end this is the free tip.
func far(p multibody.Pose) mgl64.Vec3 {
	return p.Position.Mul(2).Sub(p.Joint)
}

// DrawMechanism draws every body as a segment from its joint point through
// its centre of mass. Bodies held at their centre of mass are drawn as a
// small box.
func DrawMechanism(c *Canvas, v Viewport, poses []multibody.Pose) {
	for _, p := range poses {
		jx, jy := v.Dot(p.Joint)
		if p.Joint.ApproxEqualThreshold(p.Position, 1e-9) {
			for d := -2; d <= 2; d++ {
				c.DrawLine(jx-3, jy+d, jx+3, jy+d)
			}
			continue
		}
		v.Line(c, p.Joint, far(p))
		c.DrawMark(jx, jy)
	}
}

// Reach returns the largest distance from the origin that any body in
// poses extends to.
func Reach(poses []multibody.Pose) float64 {
	r := 0.0
	for _, p := range poses {
		r = math.Max(r, p.Joint.Len())
		r = math.Max(r, far(p).Len())
	}
	return r
}
