package control

import (
	"sync"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// Manual returns a force vector set from outside the simulation loop. The
// live view uses it to push joints from the keyboard.
type Manual struct {
	mu sync.Mutex
	u  dynamo.Control
}

func NewManual(dim int) *Manual {
	return &Manual{u: make(dynamo.Control, dim)}
}

// Set replaces the force on coordinate i. Out-of-range indices are ignored.
func (m *Manual) Set(i int, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= 0 && i < len(m.u) {
		m.u[i] = v
	}
}

// Clear zeroes every force.
func (m *Manual) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.u {
		m.u[i] = 0
	}
}

func (m *Manual) Compute(x dynamo.State, t float64) dynamo.Control {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(dynamo.Control(nil), m.u...)
}
