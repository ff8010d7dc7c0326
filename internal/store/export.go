package store

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

type ExportData struct {
	Model       string             `json:"model"`
	Preset      string             `json:"preset,omitempty"`
	Integrator  string             `json:"integrator"`
	Controller  string             `json:"controller"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Coordinates []string           `json:"coordinates"`
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	States      [][]float64        `json:"states"`
	Controls    [][]float64        `json:"controls"`
	Metrics     map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run with its full trajectory as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, times []float64, states []dynamo.State, controls []dynamo.Control) error {
	data := ExportData{
		Model:       meta.Model,
		Preset:      meta.Preset,
		Integrator:  meta.Integrator,
		Controller:  meta.Controller,
		Dt:          meta.Dt,
		Duration:    meta.Duration,
		Coordinates: meta.Coordinates,
		Steps:       meta.StepsTaken,
		Times:       times,
		States:      make([][]float64, len(states)),
		Controls:    make([][]float64, len(controls)),
		Metrics:     meta.Metrics,
	}
	for i, s := range states {
		data.States[i] = s
	}
	for i, c := range controls {
		data.Controls[i] = c
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Size of saved plots in inches.
const (
	PlotWidth  = 8.0
	PlotHeight = 5.0
)

// PlotCoordinates saves q_i(t) of every coordinate. The image format
// follows the file extension (png, svg, pdf, ...).
func PlotCoordinates(path string, meta *RunMetadata, times []float64, states []dynamo.State) error {
	if len(states) != len(times) {
		return dynamo.Dimension("plotted states", len(states), len(times))
	}

	p := newPlot(fmt.Sprintf("%s (%s, dt=%g)", meta.Model, meta.Integrator, meta.Dt), "t [s]", "q")
	nq := meta.NQ()
	for i, name := range meta.Coordinates {
		pts := make(plotter.XYs, len(times))
		for k, x := range states {
			if len(x) != 2*nq {
				return dynamo.Dimension(fmt.Sprintf("state %d", k), len(x), 2*nq)
			}
			pts[k].X = times[k]
			pts[k].Y = x[i]
		}
		if err := addLine(p, name, i, pts); err != nil {
			return err
		}
	}
	return save(p, path)
}

// Path is the trace of one body's centre of mass projected on the
// inertial x-z plane.
type Path struct {
	Name string
	X, Z []float64
}

// PlotPaths saves the traces of the given bodies with equal axis scales.
func PlotPaths(path, title string, paths []Path) error {
	p := newPlot(title, "x [m]", "z [m]")
	for i, tr := range paths {
		if len(tr.X) != len(tr.Z) {
			return dynamo.Dimension("path "+tr.Name, len(tr.Z), len(tr.X))
		}
		pts := make(plotter.XYs, len(tr.X))
		for k := range tr.X {
			pts[k].X, pts[k].Y = tr.X[k], tr.Z[k]
		}
		if err := addLine(p, tr.Name, i, pts); err != nil {
			return err
		}
	}
	equalAxes(p)
	return save(p, path)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

func addLine(p *plot.Plot, name string, i int, pts plotter.XYs) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(i)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func equalAxes(p *plot.Plot) {
	dx := p.X.Max - p.X.Min
	dy := p.Y.Max - p.Y.Min
	if dx > dy {
		mid := (p.Y.Max + p.Y.Min) / 2
		p.Y.Min, p.Y.Max = mid-dx/2, mid+dx/2
	} else {
		mid := (p.X.Max + p.X.Min) / 2
		p.X.Min, p.X.Max = mid-dy/2, mid+dy/2
	}
}

func save(p *plot.Plot, path string) error {
	if strings.TrimPrefix(filepath.Ext(path), ".") == "" {
		return fmt.Errorf("%w: %q has no image extension", dynamo.ErrConfiguration, path)
	}
	return p.Save(vg.Length(PlotWidth)*vg.Inch, vg.Length(PlotHeight)*vg.Inch, path)
}
