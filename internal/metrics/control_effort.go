package metrics

import (
	"math"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// ActuatorWork integrates the absolute mechanical power |tauC·qDot| put
// in by the controller.
type ActuatorWork struct {
	name  string
	work  float64
	prevT float64
	first bool
}

func NewActuatorWork() *ActuatorWork {
	return &ActuatorWork{
		name:  "actuator_work",
		first: true,
	}
}

func (a *ActuatorWork) Name() string {
	return a.name
}

func (a *ActuatorWork) Observe(x dynamo.State, u dynamo.Control, t float64) {
	_, qDot := x.Split()
	power := 0.0
	for i := 0; i < len(u) && i < len(qDot); i++ {
		power += u[i] * qDot[i]
	}
	if !a.first {
		a.work += math.Abs(power) * (t - a.prevT)
	}
	a.first = false
	a.prevT = t
}

func (a *ActuatorWork) Value() float64 {
	return a.work
}

func (a *ActuatorWork) Reset() {
	a.work = 0
	a.first = true
}
