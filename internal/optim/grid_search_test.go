package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

func pdConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Duration = 1
	cfg.Controller = "pd"
	cfg.InitState = config.InitStateConfig{}
	cfg.ControllerParams = config.ControllerConfig{Kp: []float64{1}, Kd: []float64{10}, Target: []float64{0.5}}
	return cfg
}

func TestNewGridSearchRejects(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		params []Param
	}{
		{"no metric", "", []Param{{"kp", []float64{1}}}},
		{"empty grid", "tracking_error", nil},
		{"unknown gain", "tracking_error", []Param{{"mass", []float64{1}}}},
		{"duplicate", "tracking_error", []Param{{"kp", []float64{1}}, {"kp", []float64{2}}}},
		{"no values", "tracking_error", []Param{{"kd", nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGridSearch(tt.metric, tt.params...); !errors.Is(err, dynamo.ErrConfiguration) {
				t.Errorf("got %v", err)
			}
		})
	}
}

func TestPointsCoverGrid(t *testing.T) {
	g, err := NewGridSearch("tracking_error", Param{"kp", []float64{1, 2, 3}}, Param{"kd", []float64{4, 5}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 6 {
		t.Errorf("size = %d", g.Size())
	}
	points := g.points()
	if len(points) != 6 {
		t.Fatalf("%d points", len(points))
	}
	if points[0]["kp"] != 1 || points[0]["kd"] != 4 || points[1]["kd"] != 5 || points[5]["kp"] != 3 {
		t.Errorf("points = %v", points)
	}
}

func TestSearchPrefersStifferGain(t *testing.T) {
	g, err := NewGridSearch("tracking_error", Param{"kp", []float64{5, 50}})
	if err != nil {
		t.Fatal(err)
	}
	best, trials, err := g.Search(context.Background(), pdConfig())
	if err != nil {
		t.Fatal(err)
	}
	if best.Params["kp"] != 50 {
		t.Errorf("best = %v, trials %v", best.Params, trials)
	}
	if len(trials) != 2 || trials[0].Value > trials[1].Value {
		t.Errorf("trials not sorted: %v", trials)
	}
}

func TestSearchLeavesBaseUntouched(t *testing.T) {
	base := pdConfig()
	g, err := NewGridSearch("tracking_error", Param{"kd", []float64{3}})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := g.Search(context.Background(), base); err != nil {
		t.Fatal(err)
	}
	if base.ControllerParams.Kd[0] != 10 {
		t.Errorf("base kd = %v", base.ControllerParams.Kd)
	}
}

func TestSearchUnknownMetric(t *testing.T) {
	g, err := NewGridSearch("overshoot", Param{"kp", []float64{5}})
	if err != nil {
		t.Fatal(err)
	}
	_, trials, err := g.Search(context.Background(), pdConfig())
	if !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("got %v", err)
	}
	if !math.IsInf(trials[0].Value, 1) {
		t.Errorf("failed trial value %g", trials[0].Value)
	}
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, err := NewGridSearch("tracking_error", Param{"kp", []float64{5, 50}})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := g.Search(ctx, pdConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
}
