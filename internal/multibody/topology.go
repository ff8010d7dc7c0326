package multibody

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// topology links every body to its parent edge and returns the edges in an
// order where each parent body is reached before its children. The tree
// must be singly rooted at Ground and acyclic.
func (m *MultiRigidBody) topology() ([]int, error) {
	for i := range m.nodes {
		m.nodes[i].parent = -1
	}

	g := simple.NewDirectedGraph()
	for i := range m.nodes {
		g.AddNode(simple.Node(i))
	}

	for k, e := range m.edges {
		switch {
		case e.child == Ground:
			return nil, fmt.Errorf("%w: the ground cannot be a joint successor", dynamo.ErrConfiguration)
		case e.parent == e.child:
			return nil, fmt.Errorf("%w: body %d is jointed to itself", dynamo.ErrConfiguration, e.child)
		case m.nodes[e.child].parent >= 0:
			return nil, fmt.Errorf("%w: body %d has more than one parent joint", dynamo.ErrConfiguration, e.child)
		}
		m.nodes[e.child].parent = k
		g.SetEdge(g.NewEdge(simple.Node(e.parent), simple.Node(e.child)))
	}

	for i := 1; i < len(m.nodes); i++ {
		if m.nodes[i].parent < 0 {
			return nil, fmt.Errorf("%w: body %d (%s) is not connected to the tree", dynamo.ErrConfiguration, i, m.nodes[i].body.Name)
		}
	}

	sorted, err := topo.SortStabilized(g, byID)
	if err != nil {
		return nil, fmt.Errorf("%w: kinematic tree has a cycle: %v", dynamo.ErrConfiguration, err)
	}

	order := make([]int, 0, len(m.edges))
	for _, n := range sorted {
		if n.ID() == int64(Ground) {
			continue
		}
		order = append(order, m.nodes[n.ID()].parent)
	}
	return order, nil
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
