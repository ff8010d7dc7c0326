package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera looks down its own z axis at the inertial origin after rotating
// the scene by RotX then RotY.
type Camera struct {
	Distance   float64
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 5, RotX: -0.4, RotY: 0.6, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DY(c.RotY).Mul3(mgl64.Rotate3DX(c.RotX))
}

// Project maps p to canvas dots. depth grows away from the camera; points
// behind the camera are not visible.
func (c *Camera) Project(p mgl64.Vec3, cv *Canvas) (x, y int, depth float64, visible bool) {
	r := c.view().Mul3x1(p).Mul(c.Zoom)
	if r.Z() >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	w, h := cv.Dots()
	persp := c.Distance / (c.Distance - r.Z())
	scale := math.Min(float64(w), float64(h)) / 3
	x = int(math.Round(r.X()*persp*scale)) + w/2
	y = int(math.Round(-r.Y()*persp*scale)) + h/2
	return x, y, -r.Z(), true
}

type Segment struct {
	A, B mgl64.Vec3
}

// Render3D draws the segments back to front.
func Render3D(cv *Canvas, segs []Segment, cam *Camera) {
	type projected struct {
		x0, y0, x1, y1 int
		depth          float64
	}
	out := make([]projected, 0, len(segs))
	for _, s := range segs {
		x0, y0, d0, ok0 := cam.Project(s.A, cv)
		x1, y1, d1, ok1 := cam.Project(s.B, cv)
		if ok0 && ok1 {
			out = append(out, projected{x0, y0, x1, y1, (d0 + d1) / 2})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].depth > out[j].depth })
	for _, p := range out {
		cv.DrawLine(p.x0, p.y0, p.x1, p.y1)
	}
}

// BodyFrame outlines a body with semi-axes extent: its three principal
// ellipses and the longest body axis, rotated by aib about centre.
func BodyFrame(centre mgl64.Vec3, aib mgl64.Mat3, extent mgl64.Vec3) []Segment {
	const n = 32
	world := func(p mgl64.Vec3) mgl64.Vec3 { return centre.Add(aib.Mul3x1(p)) }

	segs := make([]Segment, 0, 3*n+1)
	for axis := 0; axis < 3; axis++ {
		u, v := (axis+1)%3, (axis+2)%3
		prev := mgl64.Vec3{}
		for k := 0; k <= n; k++ {
			a := 2 * math.Pi * float64(k) / n
			var p mgl64.Vec3
			p[u] = extent[u] * math.Cos(a)
			p[v] = extent[v] * math.Sin(a)
			if k > 0 {
				segs = append(segs, Segment{world(prev), world(p)})
			}
			prev = p
		}
	}

	long := 0
	for i := range extent {
		if extent[i] > extent[long] {
			long = i
		}
	}
	var tip mgl64.Vec3
	tip[long] = 1.3 * extent[long]
	segs = append(segs, Segment{world(tip.Mul(-1)), world(tip)})
	return segs
}

// Arrow is a segment from the origin along v scaled to length.
func Arrow(v mgl64.Vec3, length float64) Segment {
	if v.Len() == 0 {
		return Segment{}
	}
	return Segment{B: v.Normalize().Mul(length)}
}
