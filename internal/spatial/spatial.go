// Package spatial holds the small amount of 3D algebra shared by bodies,
// joints, forces and constraints: skew matrices, the rotation matrix
// exponential and conversions between mgl64 values and gonum matrices.
package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Skew returns the cross-product matrix of v, so that Skew(v)·w = v×w.
func Skew(v mgl64.Vec3) mgl64.Mat3 {
	// mgl64 matrices are column-major.
	return mgl64.Mat3{
		0, v[2], -v[1],
		-v[2], 0, v[0],
		v[1], -v[0], 0,
	}
}

// Expm returns the matrix exponential of m.
func Expm(m mgl64.Mat3) mgl64.Mat3 {
	var e mat.Dense
	e.Exp(Dense(m))
	return FromDense(&e)
}

// Rotation returns the rotation of angle radians about axis.
func Rotation(axis mgl64.Vec3, angle float64) mgl64.Mat3 {
	if axis.Len() == 0 || angle == 0 {
		return mgl64.Ident3()
	}
	return mgl64.QuatRotate(angle, axis.Normalize()).Mat4().Mat3()
}

// Dense copies m into a new 3×3 gonum matrix.
func Dense(m mgl64.Mat3) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, m.At(i, j))
		}
	}
	return d
}

// FromDense copies the leading 3×3 block of d.
func FromDense(d mat.Matrix) mgl64.Mat3 {
	var m mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, d.At(i, j))
		}
	}
	return m
}

// Vec returns v as a 3-element gonum vector.
func Vec(v mgl64.Vec3) *mat.VecDense {
	return mat.NewVecDense(3, []float64{v[0], v[1], v[2]})
}

// Mul returns m·J for a 3×n matrix J.
func Mul(m mgl64.Mat3, j mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(Dense(m), j)
	return &out
}

// OrthonormalityError returns max |AᵀA − I| over all entries.
func OrthonormalityError(a mgl64.Mat3) float64 {
	p := a.Transpose().Mul3(a)
	id := mgl64.Ident3()
	worst := 0.0
	for i := range p {
		worst = math.Max(worst, math.Abs(p[i]-id[i]))
	}
	return worst
}
