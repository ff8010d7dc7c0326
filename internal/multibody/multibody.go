package multibody

import (
	"fmt"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// BodyID addresses a body in the arena.
type BodyID int

// Ground is the ID of the root anchor.
const Ground BodyID = 0

// DefaultConditionLimit is the largest condition number accepted by the
// linear solve.
const DefaultConditionLimit = 1e12

type node struct {
	body   *body.RigidBody
	parent int // index into edges, -1 for the root
}

type edge struct {
	parent, child BodyID
	joint         Joint
}

// MultiRigidBody owns the body tree, the force elements and the
// constraints of one mechanism.
type MultiRigidBody struct {
	nodes       []node
	edges       []edge
	springs     []SpringDamper
	constraints []BilateralConstraint

	nq    int
	order []int // edges, parents before children

	q, qDot, qDDot []float64

	parallelChunk  int
	conditionLimit float64
}

type Option func(*MultiRigidBody)

// WithParallel computes per-body contributions concurrently once the tree
// has more than minChunk bodies.
func WithParallel(minChunk int) Option {
	return func(m *MultiRigidBody) { m.parallelChunk = minChunk }
}

// WithConditionLimit overrides DefaultConditionLimit.
func WithConditionLimit(limit float64) Option {
	return func(m *MultiRigidBody) { m.conditionLimit = limit }
}

// New returns an empty mechanism holding only the ground anchor.
func New(opts ...Option) *MultiRigidBody {
	m := &MultiRigidBody{
		nodes:          []node{{body: body.NewGround(), parent: -1}},
		conditionLimit: DefaultConditionLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MultiRigidBody) frozen() bool { return m.nq > 0 }

// AddBody places b in the arena without connecting it.
func (m *MultiRigidBody) AddBody(b *body.RigidBody) (BodyID, error) {
	if m.frozen() {
		return 0, fmt.Errorf("%w: cannot add bodies after Setup", dynamo.ErrConfiguration)
	}
	if b == nil {
		return 0, fmt.Errorf("%w: nil body", dynamo.ErrConfiguration)
	}
	if b.IsAnchor() {
		return 0, fmt.Errorf("%w: only the root may be an anchor", dynamo.ErrConfiguration)
	}
	for _, n := range m.nodes {
		if n.body == b {
			return 0, fmt.Errorf("%w: body %q added twice", dynamo.ErrConfiguration, b.Name)
		}
	}
	m.nodes = append(m.nodes, node{body: b, parent: -1})
	return BodyID(len(m.nodes) - 1), nil
}

// Connect makes child the successor of j on parent. The joint's coordinates
// are numbered in the order joints are connected.
func (m *MultiRigidBody) Connect(parent, child BodyID, j Joint) error {
	if m.frozen() {
		return fmt.Errorf("%w: cannot connect joints after Setup", dynamo.ErrConfiguration)
	}
	if !m.valid(parent) || !m.valid(child) {
		return fmt.Errorf("%w: joint %d→%d references an unknown body", dynamo.ErrConfiguration, parent, child)
	}
	if j == nil {
		return fmt.Errorf("%w: nil joint", dynamo.ErrConfiguration)
	}
	m.edges = append(m.edges, edge{parent: parent, child: child, joint: j})
	return nil
}

// Attach adds b and connects it to parent through j.
func (m *MultiRigidBody) Attach(parent BodyID, b *body.RigidBody, j Joint) (BodyID, error) {
	id, err := m.AddBody(b)
	if err != nil {
		return 0, err
	}
	if err := m.Connect(parent, id, j); err != nil {
		m.nodes = m.nodes[:len(m.nodes)-1]
		return 0, err
	}
	return id, nil
}

func (m *MultiRigidBody) AddSpringDamper(s SpringDamper) {
	m.springs = append(m.springs, s)
}

func (m *MultiRigidBody) AddConstraint(c BilateralConstraint) {
	m.constraints = append(m.constraints, c)
}

// Setup validates the tree, numbers the joint coordinates and fixes nq. It
// may be called once.
func (m *MultiRigidBody) Setup(nq int) error {
	if m.frozen() {
		return fmt.Errorf("%w: Setup already called with nq=%d", dynamo.ErrConfiguration, m.nq)
	}
	if nq <= 0 {
		return fmt.Errorf("%w: nq must be positive, got %d", dynamo.ErrConfiguration, nq)
	}

	order, err := m.topology()
	if err != nil {
		return err
	}

	dof := 0
	for _, e := range m.edges {
		e.joint.SetIndex(dof)
		dof += e.joint.DOF()
	}
	if dof != nq {
		return dynamo.Dimension("joint coordinates", dof, nq)
	}

	m.order = order
	m.q = make([]float64, nq)
	m.qDot = make([]float64, nq)
	m.qDDot = make([]float64, nq)
	m.nq = nq
	return nil
}

// DOF returns the number of coordinates owned by the connected joints.
func (m *MultiRigidBody) DOF() int {
	dof := 0
	for _, e := range m.edges {
		dof += e.joint.DOF()
	}
	return dof
}

// NQ returns the generalized coordinate count fixed by Setup.
func (m *MultiRigidBody) NQ() (int, error) {
	if !m.frozen() {
		return 0, fmt.Errorf("%w: nq read before Setup", dynamo.ErrConfiguration)
	}
	return m.nq, nil
}

// Body returns the body with the given ID, or nil.
func (m *MultiRigidBody) Body(id BodyID) *body.RigidBody {
	if !m.valid(id) {
		return nil
	}
	return m.nodes[id].body
}

// NumBodies counts the bodies including the ground.
func (m *MultiRigidBody) NumBodies() int { return len(m.nodes) }

// Joint returns the joint whose successor is id, or nil for the root.
func (m *MultiRigidBody) Joint(id BodyID) Joint {
	if !m.valid(id) || m.nodes[id].parent < 0 {
		return nil
	}
	return m.edges[m.nodes[id].parent].joint
}

func (m *MultiRigidBody) valid(id BodyID) bool {
	return id >= 0 && int(id) < len(m.nodes)
}
