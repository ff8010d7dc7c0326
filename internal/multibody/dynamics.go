package multibody

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// Evaluation is the outcome of one dynamics evaluation.
type Evaluation struct {
	QDDot  []float64
	Lambda []float64 // constraint multipliers, one per active row

	M    *mat.Dense
	F    *mat.VecDense // bias forces
	G    *mat.VecDense // gravity forces
	Tau  *mat.VecDense // spring-damper forces
	TauC *mat.VecDense // controller forces

	J     *mat.Dense    // active constraint rows, nil when unconstrained
	Sigma *mat.VecDense // active constraint bias, nil when unconstrained

	// ActiveConstraints counts the rows kept for the solve. DroppedRows
	// lists, by stacked row index, constraint rows with an all-zero
	// Jacobian that were removed before solving.
	ActiveConstraints int
	DroppedRows       []int
}

type contribution struct {
	m    *mat.Dense
	f, g *mat.VecDense
	err  error
}

// AccumulateDynamics sums the per-body contributions over the tree, leaves
// first, and returns the system mass matrix, bias force and gravity force.
// It uses the kinematics of the last UpdateKinematicTree.
func (m *MultiRigidBody) AccumulateDynamics() (*mat.Dense, *mat.VecDense, *mat.VecDense, error) {
	if _, err := m.NQ(); err != nil {
		return nil, nil, nil, err
	}

	parts := make([]contribution, len(m.nodes))
	local := func(start, end int) {
		for i := start; i < end; i++ {
			p := &parts[i]
			p.m, p.f, p.g, p.err = m.nodes[i].body.Contribution()
		}
	}
	if m.parallelChunk > 0 {
		dynamo.ParallelFor(len(parts), m.parallelChunk, local)
	} else {
		local(0, len(parts))
	}
	for i := range parts {
		if parts[i].err != nil {
			return nil, nil, nil, fmt.Errorf("body %d: %w", i, parts[i].err)
		}
	}

	// children before parents: fold each subtree total into its parent
	for k := len(m.order) - 1; k >= 0; k-- {
		e := m.edges[m.order[k]]
		child, parent := &parts[e.child], &parts[e.parent]
		parent.m.Add(parent.m, child.m)
		parent.f.AddVec(parent.f, child.f)
		parent.g.AddVec(parent.g, child.g)
	}

	root := parts[Ground]
	return root.m, root.f, root.g, nil
}

// EvaluateAccelerations returns qDDot for the state (q, qDot) with no
// controller input.
func (m *MultiRigidBody) EvaluateAccelerations(q, qDot []float64) ([]float64, error) {
	ev, err := m.Evaluate(q, qDot, nil)
	if err != nil {
		return nil, err
	}
	return ev.QDDot, nil
}

// Evaluate runs one full dynamics evaluation. tauC is the generalized
// controller force; nil or empty means zero.
func (m *MultiRigidBody) Evaluate(q, qDot, tauC []float64) (*Evaluation, error) {
	nq, err := m.NQ()
	if err != nil {
		return nil, err
	}

	// zero accelerations so the kinematics pass yields bias terms
	if err := m.DistributeState(q, qDot, make([]float64, nq)); err != nil {
		return nil, err
	}
	if err := m.UpdateKinematicTree(); err != nil {
		return nil, err
	}

	ev := &Evaluation{}
	if ev.M, ev.F, ev.G, err = m.AccumulateDynamics(); err != nil {
		return nil, err
	}
	if ev.Tau, err = m.springForces(nq); err != nil {
		return nil, err
	}

	ev.TauC = mat.NewVecDense(nq, nil)
	switch len(tauC) {
	case 0:
	case nq:
		ev.TauC.CopyVec(mat.NewVecDense(nq, tauC))
	default:
		return nil, dynamo.Dimension("controller force", len(tauC), nq)
	}

	if err := m.gatherConstraints(nq, ev); err != nil {
		return nil, err
	}

	rhs := mat.NewVecDense(nq, nil)
	rhs.AddVec(ev.F, ev.G)
	rhs.AddVec(rhs, ev.Tau)
	rhs.AddVec(rhs, ev.TauC)

	x, err := m.solve(nq, ev, rhs)
	if err != nil {
		return nil, err
	}

	ev.QDDot = make([]float64, nq)
	for i := range ev.QDDot {
		ev.QDDot[i] = x.AtVec(i)
	}
	if nc := ev.ActiveConstraints; nc > 0 {
		ev.Lambda = make([]float64, nc)
		for i := range ev.Lambda {
			ev.Lambda[i] = x.AtVec(nq + i)
		}
	}

	// joints keep the solved accelerations; body kinematics keep the bias terms
	copy(m.qDDot, ev.QDDot)
	for _, k := range m.order {
		m.edges[k].joint.SetState(m.q, m.qDot, m.qDDot)
	}
	return ev, nil
}

func (m *MultiRigidBody) springForces(nq int) (*mat.VecDense, error) {
	tau := mat.NewVecDense(nq, nil)
	for i, s := range m.springs {
		f, err := s.GeneralizedForce(nq)
		if err != nil {
			return nil, fmt.Errorf("spring-damper %d: %w", i, err)
		}
		if f.Len() != nq {
			return nil, dynamo.Dimension(fmt.Sprintf("spring-damper %d force", i), f.Len(), nq)
		}
		tau.AddVec(tau, f)
	}
	return tau, nil
}

// gatherConstraints stacks the rows of every constraint and drops rows
// whose Jacobian is identically zero: the current kinematics cannot
// determine their multiplier. A row is zero only when every entry is;
// rows like [1, -1] whose entries cancel still constrain and are kept.
func (m *MultiRigidBody) gatherConstraints(nq int, ev *Evaluation) error {
	var rows [][]float64
	var sigma []float64
	stacked := 0

	for i, c := range m.constraints {
		j, s, err := c.Terms(nq)
		if err != nil {
			return fmt.Errorf("constraint %d: %w", i, err)
		}
		r, cols := j.Dims()
		if cols != nq {
			return dynamo.Dimension(fmt.Sprintf("constraint %d Jacobian width", i), cols, nq)
		}
		if s.Len() != r {
			return dynamo.Dimension(fmt.Sprintf("constraint %d bias", i), s.Len(), r)
		}

		for row := 0; row < r; row++ {
			data := mat.Row(nil, row, j)
			if isZero(data) {
				ev.DroppedRows = append(ev.DroppedRows, stacked)
			} else {
				rows = append(rows, data)
				sigma = append(sigma, s.AtVec(row))
			}
			stacked++
		}
	}

	ev.ActiveConstraints = len(rows)
	if len(rows) == 0 {
		return nil
	}

	ev.J = mat.NewDense(len(rows), nq, nil)
	for i, r := range rows {
		ev.J.SetRow(i, r)
	}
	ev.Sigma = mat.NewVecDense(len(sigma), sigma)
	return nil
}

func isZero(row []float64) bool {
	for _, v := range row {
		if v != 0 {
			return false
		}
	}
	return true
}

// solve assembles M·qDDot = rhs, or the saddle-point system when
// constraints are active, and solves it by LU factorization.
func (m *MultiRigidBody) solve(nq int, ev *Evaluation, rhs *mat.VecDense) (*mat.VecDense, error) {
	nc := ev.ActiveConstraints
	n := nq + nc

	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	a.Slice(0, nq, 0, nq).(*mat.Dense).Copy(ev.M)
	b.SliceVec(0, nq).(*mat.VecDense).CopyVec(rhs)

	if nc > 0 {
		var negJT mat.Dense
		negJT.Scale(-1, ev.J.T())
		a.Slice(0, nq, nq, n).(*mat.Dense).Copy(&negJT)
		a.Slice(nq, n, 0, nq).(*mat.Dense).Copy(ev.J)

		var negSigma mat.VecDense
		negSigma.ScaleVec(-1, ev.Sigma)
		b.SliceVec(nq, n).(*mat.VecDense).CopyVec(&negSigma)
	}

	var lu mat.LU
	lu.Factorize(a)
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > m.conditionLimit {
		return nil, fmt.Errorf("%w: condition number %g with %d active constraints", dynamo.ErrSingularSystem, cond, nc)
	}

	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrSingularSystem, err)
	}
	return &x, nil
}
