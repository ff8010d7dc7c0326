package metrics

import (
	"math"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// Posable places a mechanism at a state and reports how far its
// constraints are from being satisfied there.
type Posable interface {
	SetState(x dynamo.State) error
	ConstraintViolation() float64
}

// ConstraintDrift records the largest position-level constraint violation
// seen during a run. Constraints act on accelerations only, so integration
// error accumulates here.
type ConstraintDrift struct {
	name  string
	mech  Posable
	worst float64
}

func NewConstraintDrift(mech Posable) *ConstraintDrift {
	return &ConstraintDrift{
		name: "constraint_drift",
		mech: mech,
	}
}

func (c *ConstraintDrift) Name() string { return c.name }

func (c *ConstraintDrift) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if err := c.mech.SetState(x); err != nil {
		c.worst = math.Inf(1)
		return
	}
	c.worst = math.Max(c.worst, c.mech.ConstraintViolation())
}

func (c *ConstraintDrift) Value() float64 { return c.worst }

func (c *ConstraintDrift) Reset() { c.worst = 0 }
