package control

import "github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"

// PID drives each coordinate q_i toward Target_i:
// tauC_i = Kp_i·e_i + Ki_i·∫e_i − Kd_i·qDot_i with e = Target − q.
// The derivative acts on the measured rate, so target changes do not kick.
type PID struct {
	Kp, Ki, Kd []float64
	Target     []float64

	integral []float64
	prevT    float64
	first    bool
}

// NewPID takes per-coordinate gains. Short gain slices leave the
// remaining coordinates uncontrolled.
func NewPID(kp, ki, kd, target []float64) *PID {
	return &PID{
		Kp:       kp,
		Ki:       ki,
		Kd:       kd,
		Target:   target,
		integral: make([]float64, len(target)),
		first:    true,
	}
}

// NewPD is a PID without the integral term.
func NewPD(kp, kd, target []float64) *PID {
	return NewPID(kp, nil, kd, target)
}

func (p *PID) Compute(x dynamo.State, t float64) dynamo.Control {
	q, qDot := x.Split()
	u := make(dynamo.Control, len(q))

	dt := 0.0
	if !p.first {
		dt = t - p.prevT
	}
	p.first = false
	p.prevT = t

	for i := range q {
		if i >= len(p.Target) {
			break
		}
		e := p.Target[i] - q[i]
		if dt > 0 && i < len(p.integral) {
			p.integral[i] += e * dt
		}
		u[i] = gain(p.Kp, i)*e - gain(p.Kd, i)*qDot[i]
		if i < len(p.integral) {
			u[i] += gain(p.Ki, i) * p.integral[i]
		}
	}
	return u
}

// Reset clears the integral state.
func (p *PID) Reset() {
	for i := range p.integral {
		p.integral[i] = 0
	}
	p.first = true
}

func gain(k []float64, i int) float64 {
	if i < len(k) {
		return k[i]
	}
	return 0
}
