package multibody_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gcustom"
	"github.com/onsi/gomega/types"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/joint"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/multibody"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/spatial"
)

var yAxis = mgl64.Vec3{0, 1, 0}

// hangingRod returns a revolute joint about y that hangs a rod of length l
// straight down at q = 0.
func hangingRod(l float64) *joint.Revolute {
	j, err := joint.NewRevolute(yAxis, joint.Geometry{
		SuccessorOffset:   mgl64.Vec3{l / 2, 0, 0},
		SuccessorRotation: spatial.Rotation(yAxis, math.Pi/2),
	})
	Expect(err).NotTo(HaveOccurred())
	return j
}

// linkedRod is a revolute about y at the far end of a parent rod of length
// parentLen.
func linkedRod(parentLen, l float64) *joint.Revolute {
	j, err := joint.NewRevolute(yAxis, joint.Geometry{
		ParentOffset:    mgl64.Vec3{parentLen / 2, 0, 0},
		SuccessorOffset: mgl64.Vec3{l / 2, 0, 0},
	})
	Expect(err).NotTo(HaveOccurred())
	return j
}

func rod(l float64) *body.RigidBody {
	b, err := body.NewRod(body.Rod{Length: l, OuterRadius: 0.01, Density: 7800}, body.DefaultGravity)
	Expect(err).NotTo(HaveOccurred())
	return b
}

type pendulum struct {
	mb     *multibody.MultiRigidBody
	bodies []*body.RigidBody
	joints []*joint.Revolute
}

// chain builds an n-link planar pendulum of rods with the given lengths.
func chain(opts []multibody.Option, lengths ...float64) *pendulum {
	p := &pendulum{mb: multibody.New(opts...)}
	parent := multibody.Ground
	for i, l := range lengths {
		var j *joint.Revolute
		if i == 0 {
			j = hangingRod(l)
		} else {
			j = linkedRod(lengths[i-1], l)
		}
		b := rod(l)
		id, err := p.mb.Attach(parent, b, j)
		Expect(err).NotTo(HaveOccurred())
		p.bodies = append(p.bodies, b)
		p.joints = append(p.joints, j)
		parent = id
	}
	Expect(p.mb.Setup(len(lengths))).To(Succeed())
	return p
}

func hingeInertia(b *body.RigidBody, l float64) float64 {
	return b.Inertia.At(1, 1) + b.Mass*l*l/4
}

// zeroRows is a constraint whose first row never constrains anything.
type zeroRows struct {
	col int
}

func (z zeroRows) Terms(nq int) (*mat.Dense, *mat.VecDense, error) {
	j := mat.NewDense(2, nq, nil)
	j.Set(1, z.col, 1)
	return j, mat.NewVecDense(2, nil), nil
}

// coupling ties the first two coordinates: qDDot_0 - qDDot_1 = 0.
type coupling struct{}

func (coupling) Terms(nq int) (*mat.Dense, *mat.VecDense, error) {
	j := mat.NewDense(1, nq, nil)
	j.Set(0, 0, 1)
	j.Set(0, 1, -1)
	return j, mat.NewVecDense(1, nil), nil
}

func isSymmetric(m *mat.Dense, tol float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return false
			}
		}
	}
	return true
}

// BeNumericallyVec matches a vector within 1e-9 of want in every component.
func BeNumericallyVec(want mgl64.Vec3) types.GomegaMatcher {
	return gcustom.MakeMatcher(func(got mgl64.Vec3) (bool, error) {
		return got.ApproxEqualThreshold(want, 1e-9), nil
	}).WithTemplate("Expected\n{{.FormattedActual}}\n{{.To}} be within 1e-9 of\n{{format .Data 1}}", want)
}
