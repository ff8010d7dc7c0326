package multibody

import (
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// UpdateKinematicTree runs one forward-kinematics pass from the ground
// using the joint states currently held by the joints.
func (m *MultiRigidBody) UpdateKinematicTree() error {
	nq, err := m.NQ()
	if err != nil {
		return err
	}

	m.nodes[Ground].body.State.Reset(nq)
	for _, k := range m.order {
		e := m.edges[k]
		parent := &m.nodes[e.parent].body.State
		succ := &m.nodes[e.child].body.State
		if err := e.joint.Propagate(nq, parent, succ); err != nil {
			return err
		}
	}
	return nil
}

// DistributeState hands the global state vectors to the joints.
func (m *MultiRigidBody) DistributeState(q, qDot, qDDot []float64) error {
	nq, err := m.NQ()
	if err != nil {
		return err
	}
	for _, v := range []struct {
		name string
		x    []float64
	}{{"q", q}, {"qDot", qDot}, {"qDDot", qDDot}} {
		if len(v.x) != nq {
			return dynamo.Dimension(v.name, len(v.x), nq)
		}
	}

	copy(m.q, q)
	copy(m.qDot, qDot)
	copy(m.qDDot, qDDot)
	for _, k := range m.order {
		m.edges[k].joint.SetState(m.q, m.qDot, m.qDDot)
	}
	return nil
}

// CollectState reads the global state vectors back from the joints.
func (m *MultiRigidBody) CollectState() (q, qDot, qDDot []float64, err error) {
	nq, err := m.NQ()
	if err != nil {
		return nil, nil, nil, err
	}

	q, qDot, qDDot = make([]float64, nq), make([]float64, nq), make([]float64, nq)
	for _, k := range m.order {
		m.edges[k].joint.GetState(q, qDot, qDDot)
	}
	return q, qDot, qDDot, nil
}
