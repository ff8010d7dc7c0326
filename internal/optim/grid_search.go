// Package optim tunes controller gains by exhaustive search over a grid of
// candidate values.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/experiment"
)

// Tunable names the controller parameters a grid may vary. Each value is
// applied to every coordinate.
var Tunable = []string{"kp", "ki", "kd"}

type Param struct {
	Name   string
	Values []float64
}

// Trial is one evaluated grid point. Err is set when the run failed; Value
// is then +Inf.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	params []Param
	metric string
}

func NewGridSearch(metric string, params ...Param) (*GridSearch, error) {
	if metric == "" {
		return nil, fmt.Errorf("%w: no metric to minimise", dynamo.ErrConfiguration)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: empty grid", dynamo.ErrConfiguration)
	}
	seen := map[string]bool{}
	for _, p := range params {
		if !tunable(p.Name) {
			return nil, fmt.Errorf("%w: %q is not tunable, want one of %v", dynamo.ErrConfiguration, p.Name, Tunable)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: %q listed twice", dynamo.ErrConfiguration, p.Name)
		}
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("%w: no values for %q", dynamo.ErrConfiguration, p.Name)
		}
		seen[p.Name] = true
	}
	return &GridSearch{params: params, metric: metric}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, p := range g.params {
		n *= len(p.Values)
	}
	return n
}

// Search runs base once per grid point and returns the point with the
// smallest metric along with every trial, best first. Trials run
// concurrently; each builds its own mechanism.
func (g *GridSearch) Search(ctx context.Context, base *config.Config) (Trial, []Trial, error) {
	points := g.points()
	trials := make([]Trial, len(points))

	dynamo.ParallelFor(len(points), 1, func(start, end int) {
		for i := start; i < end; i++ {
			trials[i] = g.evaluate(ctx, base, points[i])
		}
	})
	if err := ctx.Err(); err != nil {
		return Trial{}, trials, err
	}

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Value < trials[j].Value })
	if trials[0].Err != nil {
		return Trial{}, trials, fmt.Errorf("every trial failed: %w", trials[0].Err)
	}
	return trials[0], trials, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64) Trial {
	trial := Trial{Params: params, Value: math.Inf(1)}
	if err := ctx.Err(); err != nil {
		trial.Err = err
		return trial
	}

	cfg := *base
	for name, v := range params {
		switch name {
		case "kp":
			cfg.ControllerParams.Kp = []float64{v}
		case "ki":
			cfg.ControllerParams.Ki = []float64{v}
		case "kd":
			cfg.ControllerParams.Kd = []float64{v}
		}
	}

	exp, err := experiment.New(&cfg)
	if err != nil {
		trial.Err = err
		return trial
	}
	result, err := exp.Run(ctx)
	if err != nil {
		trial.Err = err
		return trial
	}
	v, ok := result.Metrics[g.metric]
	if !ok {
		trial.Err = fmt.Errorf("%w: run has no metric %q", dynamo.ErrConfiguration, g.metric)
		return trial
	}
	if !math.IsNaN(v) {
		trial.Value = v
	}
	return trial
}

// points enumerates the grid with the last parameter varying fastest.
func (g *GridSearch) points() []map[string]float64 {
	points := []map[string]float64{{}}
	for _, p := range g.params {
		next := make([]map[string]float64, 0, len(points)*len(p.Values))
		for _, prev := range points {
			for _, v := range p.Values {
				point := make(map[string]float64, len(prev)+1)
				for k, pv := range prev {
					point[k] = pv
				}
				point[p.Name] = v
				next = append(next, point)
			}
		}
		points = next
	}
	return points
}

func tunable(name string) bool {
	for _, t := range Tunable {
		if t == name {
			return true
		}
	}
	return false
}
