package multibody_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/constraint"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/force"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/joint"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/multibody"
)

var _ = Describe("Dynamics", func() {
	Describe("a body on three prismatic joints", func() {
		var mb *multibody.MultiRigidBody

		BeforeEach(func() {
			mb = multibody.New()
			parent := multibody.Ground
			axes := []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
			for i, axis := range axes {
				var b *body.RigidBody
				var err error
				if i < len(axes)-1 {
					b, err = body.NewPointMass(0, body.DefaultGravity)
				} else {
					b, err = body.NewSphere(0.1, 1000, body.DefaultGravity)
				}
				Expect(err).NotTo(HaveOccurred())
				j, err := joint.NewPrismatic(axis, joint.Geometry{})
				Expect(err).NotTo(HaveOccurred())
				parent, err = mb.Attach(parent, b, j)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(mb.Setup(3)).To(Succeed())
		})

		It("falls with the gravitational acceleration", func() {
			qDDot, err := mb.EvaluateAccelerations([]float64{0.3, -1, 2}, []float64{1, 2, 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(qDDot[0]).To(BeNumerically("~", 0, 1e-12))
			Expect(qDDot[1]).To(BeNumerically("~", 0, 1e-12))
			Expect(qDDot[2]).To(BeNumerically("~", -9.81, 1e-12))
		})

		It("accelerates as F/m under a controller force", func() {
			m := mb.Body(3).Mass
			ev, err := mb.Evaluate([]float64{0, 0, 0}, []float64{0, 0, 0}, []float64{2 * m, 0, 9.81 * m})
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.QDDot[0]).To(BeNumerically("~", 2, 1e-9))
			Expect(ev.QDDot[2]).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("a single rod pendulum", func() {
		const l = 1.0
		var p *pendulum

		BeforeEach(func() {
			p = chain(nil, l)
		})

		DescribeTable("matches the rigid pendulum equation",
			func(q float64) {
				b := p.bodies[0]
				want := -b.Mass * 9.81 * l / 2 * math.Sin(q) / hingeInertia(b, l)

				qDDot, err := p.mb.EvaluateAccelerations([]float64{q}, []float64{0.7})
				Expect(err).NotTo(HaveOccurred())
				Expect(qDDot[0]).To(BeNumerically("~", want, 1e-9))

				// slender rod: 3g/(2L)·cos φ with φ measured from the horizontal
				phi := math.Pi/2 - q
				Expect(qDDot[0]).To(BeNumerically("~", -3*9.81/(2*l)*math.Cos(phi), 1e-3*3*9.81/(2*l)))
			},
			Entry("horizontal", math.Pi/2),
			Entry("hanging", 0.0),
			Entry("inclined", 0.4),
			Entry("beyond horizontal", 2.5),
		)

		DescribeTable("matches 3g/(2L)·cos φ for a built rod",
			func(length, outer, density, q float64) {
				b, err := body.NewRod(body.Rod{Length: length, OuterRadius: outer, Density: density}, body.DefaultGravity)
				Expect(err).NotTo(HaveOccurred())
				mb := multibody.New()
				_, err = mb.Attach(multibody.Ground, b, hangingRod(length))
				Expect(err).NotTo(HaveOccurred())
				Expect(mb.Setup(1)).To(Succeed())

				qDDot, err := mb.EvaluateAccelerations([]float64{q}, []float64{0})
				Expect(err).NotTo(HaveOccurred())
				phi := math.Pi/2 - q
				scale := 3 * 9.81 / (2 * length)
				Expect(qDDot[0]).To(BeNumerically("~", -scale*math.Cos(phi), 1e-3*scale))
			},
			Entry("steel rod L=1 r_o=0.01 ρ=8000 released horizontally", 1.0, 0.01, 8000.0, math.Pi/2),
		)

		It("stores the solved acceleration in the joint", func() {
			qDDot, err := p.mb.EvaluateAccelerations([]float64{1}, []float64{0})
			Expect(err).NotTo(HaveOccurred())

			_, _, stored, err := p.mb.CollectState()
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(Equal(qDDot))
		})

		It("treats a nil controller force as zero", func() {
			a, err := p.mb.Evaluate([]float64{0.5}, []float64{1}, nil)
			Expect(err).NotTo(HaveOccurred())
			b, err := p.mb.Evaluate([]float64{0.5}, []float64{1}, []float64{0})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.QDDot).To(Equal(b.QDDot))
		})

		It("rejects a controller force of the wrong size", func() {
			_, err := p.mb.Evaluate([]float64{0}, []float64{0}, []float64{1, 2})
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})
	})

	Describe("a triple pendulum", func() {
		var p *pendulum
		q := []float64{0.3, -0.8, 1.9}
		qDot := []float64{1.2, -0.4, 2.5}

		BeforeEach(func() {
			p = chain(nil, 1, 0.7, 0.5)
			s, err := force.NewJointSpringDamper(p.joints[1], 40, 0.5, 0)
			Expect(err).NotTo(HaveOccurred())
			p.mb.AddSpringDamper(s)
		})

		It("has a symmetric positive definite mass matrix", func() {
			ev, err := p.mb.Evaluate(q, qDot, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(isSymmetric(ev.M, 1e-12)).To(BeTrue())

			var eig mat.EigenSym
			Expect(eig.Factorize(mat.NewSymDense(3, ev.M.RawMatrix().Data), false)).To(BeTrue())
			for _, v := range eig.Values(nil) {
				Expect(v).To(BeNumerically(">", 0))
			}
		})

		It("is idempotent for the same state", func() {
			a, err := p.mb.Evaluate(q, qDot, nil)
			Expect(err).NotTo(HaveOccurred())
			b, err := p.mb.Evaluate(q, qDot, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.QDDot).To(Equal(a.QDDot))
			Expect(mat.Equal(a.M, b.M)).To(BeTrue())
		})

		It("satisfies M·qDDot = f + g + tau", func() {
			ev, err := p.mb.Evaluate(q, qDot, nil)
			Expect(err).NotTo(HaveOccurred())

			var lhs, rhs mat.VecDense
			lhs.MulVec(ev.M, mat.NewVecDense(3, ev.QDDot))
			rhs.AddVec(ev.F, ev.G)
			rhs.AddVec(&rhs, ev.Tau)
			Expect(mat.EqualApprox(&lhs, &rhs, 1e-9)).To(BeTrue())
			Expect(ev.Tau.AtVec(1)).To(BeNumerically("~", -40*q[1]-0.5*qDot[1], 1e-12))
		})

		It("gives the same answer with parallel accumulation", func() {
			par := chain([]multibody.Option{multibody.WithParallel(1)}, 1, 0.7, 0.5)
			s, err := force.NewJointSpringDamper(par.joints[1], 40, 0.5, 0)
			Expect(err).NotTo(HaveOccurred())
			par.mb.AddSpringDamper(s)

			serial, err := p.mb.Evaluate(q, qDot, nil)
			Expect(err).NotTo(HaveOccurred())
			parallel, err := par.mb.Evaluate(q, qDot, nil)
			Expect(err).NotTo(HaveOccurred())
			for i := range serial.QDDot {
				Expect(parallel.QDDot[i]).To(BeNumerically("~", serial.QDDot[i], 1e-12))
			}
		})

		It("round-trips state through the joints", func() {
			qDDot := []float64{7, 8, 9}
			Expect(p.mb.DistributeState(q, qDot, qDDot)).To(Succeed())
			gq, gqDot, gqDDot, err := p.mb.CollectState()
			Expect(err).NotTo(HaveOccurred())
			Expect(gq).To(Equal(q))
			Expect(gqDot).To(Equal(qDot))
			Expect(gqDDot).To(Equal(qDDot))
		})

		It("rejects state vectors of the wrong length", func() {
			Expect(p.mb.DistributeState(q[:2], qDot, qDot)).To(MatchError(dynamo.ErrDimensionMismatch))
			_, err := p.mb.EvaluateAccelerations(q, qDot[:1])
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})
	})

	Describe("constraints", func() {
		var p *pendulum

		BeforeEach(func() {
			p = chain(nil, 1, 1)
		})

		It("keeps a pinned tip on its pin", func() {
			q := []float64{0.3, 0.8}
			Expect(p.mb.DistributeState(q, []float64{0, 0}, []float64{0, 0})).To(Succeed())
			Expect(p.mb.UpdateKinematicTree()).To(Succeed())
			tip := mgl64.Vec3{0.5, 0, 0}
			pin := p.bodies[1].PointPosition(tip)

			c, err := constraint.NewPoint(p.bodies[1], tip, p.mb.Body(multibody.Ground), pin)
			Expect(err).NotTo(HaveOccurred())
			c.Axes = []mgl64.Vec3{{1, 0, 0}, {0, 0, 1}}
			p.mb.AddConstraint(c)

			ev, err := p.mb.Evaluate(q, []float64{1.5, -0.5}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.ActiveConstraints).To(Equal(2))
			Expect(ev.Lambda).To(HaveLen(2))

			var residual mat.VecDense
			residual.MulVec(ev.J, mat.NewVecDense(2, ev.QDDot))
			residual.AddVec(&residual, ev.Sigma)
			Expect(mat.Norm(&residual, 2)).To(BeNumerically("<", 1e-6))
		})

		It("locks a joint", func() {
			p.mb.AddConstraint(&constraint.Lock{Joint: p.joints[0]})
			ev, err := p.mb.Evaluate([]float64{0.4, 0.2}, []float64{0.1, 0}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.QDDot[0]).To(BeNumerically("~", 0, 1e-9))
			Expect(ev.QDDot[1]).NotTo(BeNumerically("~", 0, 1e-6))
		})

		It("drops identically zero rows and records them", func() {
			p.mb.AddConstraint(zeroRows{col: 1})
			ev, err := p.mb.Evaluate([]float64{0.4, 0.2}, []float64{0, 0}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.DroppedRows).To(Equal([]int{0}))
			Expect(ev.ActiveConstraints).To(Equal(1))
			Expect(ev.QDDot[1]).To(BeNumerically("~", 0, 1e-9))
		})

		It("keeps a coupling row whose entries cancel", func() {
			p.mb.AddConstraint(coupling{})
			ev, err := p.mb.Evaluate([]float64{0.4, 0.2}, []float64{0.3, -0.1}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.DroppedRows).To(BeEmpty())
			Expect(ev.ActiveConstraints).To(Equal(1))
			Expect(ev.QDDot[0]).To(BeNumerically("~", ev.QDDot[1], 1e-9))
		})

		It("rejects a zero-length point constraint axis before solving", func() {
			c, err := constraint.NewPoint(p.bodies[1], mgl64.Vec3{0.5, 0, 0}, p.mb.Body(multibody.Ground), mgl64.Vec3{})
			Expect(err).NotTo(HaveOccurred())
			c.Axes = []mgl64.Vec3{{1, 0, 0}, {0, 0, 0}}
			p.mb.AddConstraint(c)

			_, err = p.mb.Evaluate([]float64{0.3, 0.8}, []float64{0, 0}, nil)
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
			Expect(err).NotTo(MatchError(dynamo.ErrSingularSystem))
		})

		It("reports redundant constraints as singular", func() {
			p.mb.AddConstraint(&constraint.Lock{Joint: p.joints[0]})
			p.mb.AddConstraint(&constraint.Lock{Joint: p.joints[0]})
			_, err := p.mb.Evaluate([]float64{0.4, 0.2}, []float64{0, 0}, nil)
			Expect(err).To(MatchError(dynamo.ErrSingularSystem))
		})
	})
})
