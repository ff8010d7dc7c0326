package control

import "github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"

// LQR applies full-state feedback u = −K·(x − Target). K has one row per
// generalized force and one column per state entry; the gains come from
// an offline Riccati solve.
type LQR struct {
	K      [][]float64
	Target dynamo.State
}

func NewLQR(k [][]float64, target dynamo.State) *LQR {
	return &LQR{K: k, Target: target}
}

func (l *LQR) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, len(l.K))
	for i := range u {
		for j := range x {
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			if j < len(l.K[i]) {
				u[i] -= l.K[i][j] * (x[j] - target)
			}
		}
	}
	return u
}
