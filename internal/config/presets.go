package config

import (
	"math"
	"sort"
)

var yAxis = Vec{0, 1, 0}

// hanging rotates a rod's body x axis to point down the inertial z axis at
// q = 0.
var hanging = &Rotation{Axis: yAxis, Angle: math.Pi / 2}

func rod(name string, length float64) Body {
	return Body{Name: name, Shape: "rod", Length: length, OuterRadius: 0.02, Density: 2700}
}

// Mechanisms are the built-in models, addressed by Config.Model.
var Mechanisms = map[string]*Mechanism{
	"pendulum": {
		Description: "rod pendulum on a revolute joint",
		Bodies:      []Body{rod("rod", 1)},
		Joints: []Joint{
			{Type: "revolute", Parent: GroundName, Child: "rod", Axis: yAxis,
				SuccessorOffset: Vec{0.5, 0, 0}, SuccessorRotation: hanging},
		},
	},
	"double_pendulum": {
		Description: "two rods in series",
		Bodies:      []Body{rod("upper", 1), rod("lower", 1)},
		Joints: []Joint{
			{Type: "revolute", Parent: GroundName, Child: "upper", Axis: yAxis,
				SuccessorOffset: Vec{0.5, 0, 0}, SuccessorRotation: hanging},
			{Type: "revolute", Parent: "upper", Child: "lower", Axis: yAxis,
				ParentOffset: Vec{0.5, 0, 0}, SuccessorOffset: Vec{0.5, 0, 0}},
		},
	},
	"slider": {
		Description: "cart on a sprung rail carrying a pendulum",
		Bodies: []Body{
			{Name: "cart", Shape: "cuboid", Size: Vec{0.4, 0.2, 0.1}, Density: 500},
			rod("pole", 0.8),
		},
		Joints: []Joint{
			{Type: "prismatic", Parent: GroundName, Child: "cart", Axis: Vec{1, 0, 0}},
			{Type: "revolute", Parent: "cart", Child: "pole", Axis: yAxis,
				SuccessorOffset: Vec{0.4, 0, 0}, SuccessorRotation: hanging},
		},
		Springs: []Spring{
			{Type: "joint", Joint: "cart", Stiffness: 50, Damping: 1},
		},
	},
	"fourbar": {
		Description: "parallelogram four-bar linkage closed by a point constraint",
		Bodies:      []Body{rod("crank", 1), rod("coupler", 2), rod("rocker", 1)},
		Joints: []Joint{
			{Type: "revolute", Parent: GroundName, Child: "crank", Axis: yAxis,
				SuccessorOffset: Vec{0.5, 0, 0}, SuccessorRotation: hanging},
			{Type: "revolute", Parent: "crank", Child: "coupler", Axis: yAxis,
				ParentOffset: Vec{0.5, 0, 0}, SuccessorOffset: Vec{1, 0, 0}},
			{Type: "revolute", Parent: GroundName, Child: "rocker", Axis: yAxis,
				ParentOffset: Vec{2, 0, 0}, SuccessorOffset: Vec{0.5, 0, 0}, SuccessorRotation: hanging},
		},
		Constraints: []Constraint{
			{Type: "point", A: Point{Body: "coupler", Offset: Vec{1, 0, 0}}, B: Point{Body: "rocker", Offset: Vec{0.5, 0, 0}}},
		},
	},
	"spring_pendulum": {
		Description: "rod pendulum tied to a wall anchor by a spring-damper",
		Bodies:      []Body{rod("rod", 1)},
		Joints: []Joint{
			{Type: "revolute", Parent: GroundName, Child: "rod", Axis: yAxis,
				SuccessorOffset: Vec{0.5, 0, 0}, SuccessorRotation: hanging},
		},
		Springs: []Spring{
			{Type: "point", A: Point{Body: GroundName, Offset: Vec{1, 0, -1}},
				B: Point{Body: "rod", Offset: Vec{0.5, 0, 0}}, Stiffness: 30, Damping: 0.2, Rest: 0.5},
		},
	},
}

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": {
			Model: "pendulum", Integrator: "semi_implicit", Controller: "none", Dt: 0.001, Duration: 20.0,
			InitState: InitStateConfig{Q: []float64{0.2}},
		},
		"large": {
			Model: "pendulum", Integrator: "semi_implicit", Controller: "none", Dt: 0.001, Duration: 20.0,
			InitState: InitStateConfig{Q: []float64{2.5}},
		},
		"spinning": {
			Model: "pendulum", Integrator: "semi_implicit", Controller: "none", Dt: 0.001, Duration: 30.0,
			InitState: InitStateConfig{Q: []float64{0.1}, QDot: []float64{8.0}},
		},
		"hold": {
			Model: "pendulum", Integrator: "semi_implicit", Controller: "pd", Dt: 0.001, Duration: 10.0,
			InitState:        InitStateConfig{Q: []float64{0}},
			ControllerParams: ControllerConfig{Kp: []float64{60}, Kd: []float64{8}, Target: []float64{math.Pi / 2}},
		},
	},
	"double_pendulum": {
		"gentle": {
			Model: "double_pendulum", Integrator: "semi_implicit", Controller: "none", Dt: 0.001, Duration: 30.0,
			InitState: InitStateConfig{Q: []float64{0.3, 0}},
		},
		"chaos": {
			Model: "double_pendulum", Integrator: "semi_implicit", Controller: "none", Dt: 0.0005, Duration: 60.0,
			InitState: InitStateConfig{Q: []float64{3.0, 0}},
		},
	},
	"slider": {
		"oscillate": {
			Model: "slider", Integrator: "semi_implicit", Controller: "none", Dt: 0.001, Duration: 20.0,
			InitState: InitStateConfig{Q: []float64{0.5, 0}},
		},
		"kick": {
			Model: "slider", Integrator: "semi_implicit", Controller: "none", Dt: 0.001, Duration: 20.0,
			InitState: InitStateConfig{QDot: []float64{0, 4}},
		},
	},
	"fourbar": {
		"swing": {
			Model: "fourbar", Integrator: "semi_implicit", Controller: "none", Dt: 0.0005, Duration: 10.0,
			InitState: InitStateConfig{Q: []float64{0, -math.Pi / 2, 0}, QDot: []float64{1, -1, 1}},
		},
	},
	"spring_pendulum": {
		"bounce": {
			Model: "spring_pendulum", Integrator: "semi_implicit", Controller: "none", Dt: 0.001, Duration: 20.0,
			InitState: InitStateConfig{Q: []float64{-0.5}},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns the preset names of model, sorted.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListModels returns the names of the built-in mechanisms, sorted.
func ListModels() []string {
	names := make([]string, 0, len(Mechanisms))
	for name := range Mechanisms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
