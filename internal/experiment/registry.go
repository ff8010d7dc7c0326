package experiment

import (
	"fmt"
	"sort"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/control"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/integrators"
)

// ControllerFactory builds a controller for a mechanism with nq coordinates.
type ControllerFactory func(p config.ControllerConfig, nq int) (dynamo.Controller, error)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		controllers: make(map[string]ControllerFactory),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["semi_implicit"] = func() dynamo.Integrator { return integrators.NewSemiImplicitEuler() }

	r.controllers["none"] = func(_ config.ControllerConfig, nq int) (dynamo.Controller, error) {
		return control.NewNone(nq), nil
	}
	r.controllers["manual"] = func(_ config.ControllerConfig, nq int) (dynamo.Controller, error) {
		return control.NewManual(nq), nil
	}
	r.controllers["pd"] = func(p config.ControllerConfig, nq int) (dynamo.Controller, error) {
		target, err := pad("target", p.Target, nq)
		if err != nil {
			return nil, err
		}
		return control.NewPD(broadcast(p.Kp, nq), broadcast(p.Kd, nq), target), nil
	}
	r.controllers["pid"] = func(p config.ControllerConfig, nq int) (dynamo.Controller, error) {
		target, err := pad("target", p.Target, nq)
		if err != nil {
			return nil, err
		}
		return control.NewPID(broadcast(p.Kp, nq), broadcast(p.Ki, nq), broadcast(p.Kd, nq), target), nil
	}
	r.controllers["lqr"] = func(p config.ControllerConfig, nq int) (dynamo.Controller, error) {
		if len(p.K) != nq {
			return nil, dynamo.Dimension("lqr gain rows", len(p.K), nq)
		}
		for i, row := range p.K {
			if len(row) != 2*nq {
				return nil, dynamo.Dimension(fmt.Sprintf("lqr gain row %d", i), len(row), 2*nq)
			}
		}
		target, err := pad("target", p.Target, 2*nq)
		if err != nil {
			return nil, err
		}
		return control.NewLQR(p.K, target), nil
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", dynamo.ErrConfiguration, name)
	}
	return fn(), nil
}

func (r *Registry) GetController(name string, p config.ControllerConfig, nq int) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown controller %q", dynamo.ErrConfiguration, name)
	}
	return fn(p, nq)
}

func (r *Registry) ListIntegrators() []string { return keys(r.integrators) }
func (r *Registry) ListControllers() []string { return keys(r.controllers) }

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// broadcast repeats a single gain for every coordinate.
func broadcast(k []float64, n int) []float64 {
	if len(k) != 1 {
		return k
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = k[0]
	}
	return out
}

func pad(what string, v []float64, n int) ([]float64, error) {
	if len(v) > n {
		return nil, dynamo.Dimension(what, len(v), n)
	}
	out := make([]float64, n)
	copy(out, v)
	return out, nil
}
