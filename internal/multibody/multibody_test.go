package multibody_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/force"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/joint"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/multibody"
)

var _ = Describe("MultiRigidBody", func() {
	var mb *multibody.MultiRigidBody

	BeforeEach(func() {
		mb = multibody.New()
	})

	Describe("before Setup", func() {
		It("has no coordinate count", func() {
			_, err := mb.NQ()
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
			Expect(mb.StateDim()).To(BeZero())
		})

		It("refuses to evaluate", func() {
			_, err := mb.EvaluateAccelerations(nil, nil)
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
			Expect(mb.UpdateKinematicTree()).To(MatchError(dynamo.ErrConfiguration))
		})

		It("holds only the ground", func() {
			Expect(mb.NumBodies()).To(Equal(1))
			Expect(mb.Body(multibody.Ground).IsAnchor()).To(BeTrue())
			Expect(mb.Joint(multibody.Ground)).To(BeNil())
			Expect(mb.Body(5)).To(BeNil())
		})
	})

	Describe("Setup", func() {
		It("rejects a non-positive coordinate count", func() {
			Expect(mb.Setup(0)).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects a coordinate count the joints do not provide", func() {
			_, err := mb.Attach(multibody.Ground, rod(1), hangingRod(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Setup(2)).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("may only run once", func() {
			_, err := mb.Attach(multibody.Ground, rod(1), hangingRod(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Setup(1)).To(Succeed())
			Expect(mb.Setup(1)).To(MatchError(dynamo.ErrConfiguration))

			_, err = mb.AddBody(rod(1))
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})

		It("numbers coordinates in connection order", func() {
			a, b := hangingRod(1), linkedRod(1, 1)
			id, err := mb.Attach(multibody.Ground, rod(1), a)
			Expect(err).NotTo(HaveOccurred())
			_, err = mb.Attach(id, rod(1), b)
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.DOF()).To(Equal(2))

			Expect(mb.Setup(2)).To(Succeed())
			Expect(a.Index()).To(Equal(0))
			Expect(b.Index()).To(Equal(1))
			Expect(mb.StateDim()).To(Equal(4))
			Expect(mb.ControlDim()).To(Equal(2))
		})

		It("orders parents before children regardless of connection order", func() {
			upper, err := mb.AddBody(rod(1))
			Expect(err).NotTo(HaveOccurred())
			lower, err := mb.AddBody(rod(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Connect(upper, lower, linkedRod(1, 1))).To(Succeed())
			Expect(mb.Connect(multibody.Ground, upper, hangingRod(1))).To(Succeed())
			Expect(mb.Setup(2)).To(Succeed())

			// lower is coordinate 0, upper is coordinate 1
			_, err = mb.EvaluateAccelerations([]float64{0, math.Pi / 2}, []float64{0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Body(upper).State.WorldPosition()).To(BeNumericallyVec(mgl64.Vec3{-0.5, 0, 0}))
			Expect(mb.Body(lower).State.WorldPosition()).To(BeNumericallyVec(mgl64.Vec3{-1.5, 0, 0}))
		})

		It("rejects a cycle", func() {
			a, err := mb.AddBody(rod(1))
			Expect(err).NotTo(HaveOccurred())
			b, err := mb.AddBody(rod(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Connect(a, b, linkedRod(1, 1))).To(Succeed())
			Expect(mb.Connect(b, a, linkedRod(1, 1))).To(Succeed())
			Expect(mb.Setup(2)).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects a body with two parents", func() {
			a, err := mb.Attach(multibody.Ground, rod(1), hangingRod(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Connect(multibody.Ground, a, hangingRod(1))).To(Succeed())
			Expect(mb.Setup(2)).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects a disconnected body", func() {
			_, err := mb.Attach(multibody.Ground, rod(1), hangingRod(1))
			Expect(err).NotTo(HaveOccurred())
			_, err = mb.AddBody(rod(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Setup(1)).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects the ground as a successor", func() {
			a, err := mb.AddBody(rod(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Connect(a, multibody.Ground, hangingRod(1))).To(Succeed())
			Expect(mb.Setup(1)).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects unknown bodies and anchors", func() {
			Expect(mb.Connect(multibody.Ground, 7, hangingRod(1))).To(MatchError(dynamo.ErrConfiguration))
			_, err := mb.AddBody(body.NewGround())
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
			b := rod(1)
			_, err = mb.AddBody(b)
			Expect(err).NotTo(HaveOccurred())
			_, err = mb.AddBody(b)
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})
	})

	Describe("a welded body", func() {
		It("moves with its parent without adding coordinates", func() {
			id, err := mb.Attach(multibody.Ground, rod(1), hangingRod(1))
			Expect(err).NotTo(HaveOccurred())
			bob, err := body.NewSphere(0.05, 7800, body.DefaultGravity)
			Expect(err).NotTo(HaveOccurred())
			weld := joint.NewFixed(joint.Geometry{ParentOffset: mgl64.Vec3{0.5, 0, 0}})
			bobID, err := mb.Attach(id, bob, weld)
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Setup(1)).To(Succeed())

			_, err = mb.EvaluateAccelerations([]float64{0}, []float64{0})
			Expect(err).NotTo(HaveOccurred())
			Expect(mb.Body(bobID).State.WorldPosition()).To(BeNumericallyVec(mgl64.Vec3{0, 0, -1}))
			pos, ok := mb.ParentPosition(bobID)
			Expect(ok).To(BeTrue())
			Expect(pos).To(BeNumericallyVec(mgl64.Vec3{0, 0, -0.5}))
		})
	})

	Describe("as a dynamo.System", func() {
		var p *pendulum

		BeforeEach(func() {
			p = chain(nil, 1, 1)
		})

		It("derives [qDot; qDDot]", func() {
			x := dynamo.State{0.3, 0.1, -1, 2}
			dx, err := p.mb.Derive(x, nil, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect([]float64(dx[:2])).To(Equal([]float64{-1, 2}))

			qDDot, err := p.mb.EvaluateAccelerations(x[:2], x[2:])
			Expect(err).NotTo(HaveOccurred())
			Expect([]float64(dx[2:])).To(Equal(qDDot))
		})

		It("rejects a state of the wrong size", func() {
			_, err := p.mb.Derive(dynamo.State{1, 2, 3}, nil, 0)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("reports potential energy of the hanging chain", func() {
			e := p.mb.Energy(dynamo.State{0, 0, 0, 0})
			m0, m1 := p.bodies[0].Mass, p.bodies[1].Mass
			Expect(e).To(BeNumerically("~", -9.81*(m0*0.5+m1*1.5), 1e-9))
		})

		It("counts spring energy", func() {
			s, err := force.NewJointSpringDamper(p.joints[0], 10, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			p.mb.AddSpringDamper(s)
			base := p.mb.Energy(dynamo.State{0, 0, 0, 0})
			Expect(base).NotTo(BeNumerically("~", 0, 1e-12))

			withSpring := p.mb.Energy(dynamo.State{0.2, -0.2, 0, 0})
			noSpring := multibodyEnergyWithoutSprings(0.2, -0.2)
			Expect(withSpring - noSpring).To(BeNumerically("~", 0.5*10*0.2*0.2, 1e-9))
		})

		It("returns NaN for a state it cannot evaluate", func() {
			Expect(math.IsNaN(p.mb.Energy(dynamo.State{1}))).To(BeTrue())
		})

		It("lists the poses of the moving bodies", func() {
			_, err := p.mb.EvaluateAccelerations([]float64{0, 0}, []float64{0, 0})
			Expect(err).NotTo(HaveOccurred())
			poses := p.mb.Poses()
			Expect(poses).To(HaveLen(2))
			Expect(poses[1].Position).To(BeNumericallyVec(mgl64.Vec3{0, 0, -1.5}))
			Expect(poses[0].Joint).To(BeNumericallyVec(mgl64.Vec3{}))
			Expect(poses[1].Joint).To(BeNumericallyVec(mgl64.Vec3{0, 0, -1}))
		})
	})
})

func multibodyEnergyWithoutSprings(q0, q1 float64) float64 {
	return chain(nil, 1, 1).mb.Energy(dynamo.State{q0, q1, 0, 0})
}
