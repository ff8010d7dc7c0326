package metrics

import (
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// TrackingError integrates the squared distance of q from a target over
// time. Missing target entries are zero.
type TrackingError struct {
	target []float64
	sum    float64
	prevT  float64
	first  bool
}

func NewTrackingError(target []float64) *TrackingError {
	return &TrackingError{target: append([]float64(nil), target...), first: true}
}

func (e *TrackingError) Name() string { return "tracking_error" }

func (e *TrackingError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	q, _ := x.Split()
	sq := 0.0
	for i, qi := range q {
		d := qi
		if i < len(e.target) {
			d -= e.target[i]
		}
		sq += d * d
	}
	if !e.first {
		e.sum += sq * (t - e.prevT)
	}
	e.first = false
	e.prevT = t
}

func (e *TrackingError) Value() float64 { return e.sum }

func (e *TrackingError) Reset() {
	e.sum = 0
	e.first = true
}
