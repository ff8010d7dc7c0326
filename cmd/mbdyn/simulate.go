package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/experiment"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/models"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/store"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/viz"
)

// resolveConfig layers the configuration: defaults, then a preset or a
// config file, then the model argument, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	model := ""
	if len(args) > 0 {
		model = args[0]
	}

	switch {
	case preset != "":
		if model == "" {
			return nil, fmt.Errorf("%w: --preset needs a model", dynamo.ErrConfiguration)
		}
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %s (available: %v)", dynamo.ErrConfiguration, preset, config.ListPresets(model))
		}
		c := *p
		cfg = &c
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		if model != "" {
			cfg.Model = model
		}
	case model != "":
		cfg.Model = model
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("kp") {
		cfg.ControllerParams.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.ControllerParams.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.ControllerParams.Kd = kd
	}
	if flags.Changed("target") {
		cfg.ControllerParams.Target = target
	}
	if flags.Changed("q") {
		cfg.InitState.Q = q0
	}
	if flags.Changed("qdot") {
		cfg.InitState.QDot = qDot0
	}
	if flags.Lookup("parallel") != nil && flags.Changed("parallel") {
		cfg.Parallel = parallel
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.FPS = frameRate
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printf("%s %s (%s, %s, dt=%g, %gs)\n", titleStyle.Render("running"), cfg.Model, cfg.Integrator, cfg.Controller, cfg.Dt, cfg.Duration)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	meta := exp.Metadata(preset)
	var simErr *dynamo.SimulationError
	if runErr != nil {
		if !errors.As(runErr, &simErr) && !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		meta.Error = runErr.Error()
	}

	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	printf("completed in %v\n", elapsed)
	printf("%s %s\n", labelStyle.Render("run id:"), runID)
	printf("%s %d\n", labelStyle.Render("steps: "), result.StepsTaken)
	printf("\nmetrics:\n")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printf("  %-18s %.6g\n", name, result.Metrics[name])
	}

	if runErr != nil {
		printf("\n%s %v\n", warnStyle.Render("stopped early:"), runErr)
		return runErr
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(exp.Model, exp.Integrator, exp.Controller, exp.InitState(), viz.Options{
		Title:       cfg.Model,
		Coordinates: exp.Model.CoordinateNames(),
		Dt:          cfg.Dt,
		FPS:         cfg.FPS,
		Effort:      effort,
		GIFPath:     gifPath,
	})
	if err != nil {
		return err
	}
	return viz.Run(m)
}

// tumblerExtent is the semi-axes of the body built by models.NewTumbler.
var tumblerExtent = mgl64.Vec3{0.3, 0.2, 0.1}

func runTumble(cmd *cobra.Command, args []string) error {
	if !headless {
		m, err := viz.NewTumbleModel(func() (viz.Tumbler, error) { return models.NewTumbler(spin) }, tumblerExtent, tumbleDt, tumbleFPS)
		if err != nil {
			return err
		}
		return viz.RunTumble(m)
	}

	drift, err := tumbleDrift(spin, tumbleDt, tumbleTime)
	if err != nil {
		return err
	}
	printf("%s spin=%g rad/s, dt=%g, %gs, %d steps\n", titleStyle.Render("free body"), spin, tumbleDt, tumbleTime, drift.steps)
	printf("%s %.3e\n", labelStyle.Render("max |L| drift:"), drift.momentum)
	printf("%s %.3e\n", labelStyle.Render("max E drift:  "), drift.energy)
	return nil
}

// conservation holds the worst relative drift of angular momentum and
// energy over a free-body run.
type conservation struct {
	momentum, energy float64
	steps            int
}

func tumbleDrift(spin, dt, duration float64) (conservation, error) {
	var c conservation
	fb, err := models.NewTumbler(spin)
	if err != nil {
		return c, err
	}
	l0, e0 := fb.AngularMomentum(), fb.Energy()
	err = fb.Run(dt, duration, func(f *models.FreeBody) bool {
		c.steps++
		c.momentum = max(c.momentum, f.AngularMomentum().Sub(l0).Len()/l0.Len())
		c.energy = max(c.energy, abs(f.Energy()-e0)/e0)
		return true
	})
	return c, err
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
