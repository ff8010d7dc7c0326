package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/analysis"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/automation"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/experiment"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/optim"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/store"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, _, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(times) < analysis.MinSamples {
		return fmt.Errorf("%w: run %s has only %d samples", dynamo.ErrConfiguration, meta.ID, len(times))
	}

	peaks, err := analysis.DominantFrequencies(states, meta.NQ(), times[1]-times[0])
	if err != nil {
		return err
	}

	printf("%s %s (%s)\n\n", titleStyle.Render("spectrum"), meta.ID, meta.Model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COORDINATE\tFREQ\tPERIOD\tAMPLITUDE")
	for i, p := range peaks {
		period := "-"
		if !math.IsInf(p.Period, 1) {
			period = fmt.Sprintf("%.4fs", p.Period)
		}
		fmt.Fprintf(w, "%s\t%.4f Hz\t%s\t%.4g\n", meta.Coordinates[i], p.Freq, period, p.Amplitude)
	}
	return w.Flush()
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printf("%s %s (%s, dt=%g, %gs)\n", titleStyle.Render("lyapunov"), cfg.Model, cfg.Integrator, cfg.Dt, cfg.Duration)
	lambda, err := analysis.LyapunovExponent(ctx, exp.Model, exp.Integrator, exp.InitState(), cfg.Dt, cfg.Duration, separation)
	if err != nil {
		return err
	}
	verdict := "regular"
	if lambda > 0.01 {
		verdict = warnStyle.Render("chaotic")
	}
	printf("%s %.4f 1/s (%s)\n", labelStyle.Render("largest exponent:"), lambda, verdict)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Controller == "none" {
		cfg.Controller = "pd"
	}

	var params []optim.Param
	for _, g := range []struct {
		name   string
		values []float64
	}{{"kp", kpGrid}, {"ki", kiGrid}, {"kd", kdGrid}} {
		if len(g.values) > 0 {
			params = append(params, optim.Param{Name: g.name, Values: g.values})
		}
	}
	search, err := optim.NewGridSearch(metric, params...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printf("%s %s with %s over %d points, minimising %s\n", titleStyle.Render("tuning"), cfg.Model, cfg.Controller, search.Size(), metric)
	best, trials, err := search.Search(ctx, cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GAINS\tVALUE")
	for _, t := range trials {
		value := fmt.Sprintf("%.6g", t.Value)
		if t.Err != nil {
			value = "failed: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", formatGains(t.Params), value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printf("\n%s %s (%s = %.6g)\n", labelStyle.Render("best:"), formatGains(best.Params), metric, best.Value)
	return nil
}

func formatGains(p map[string]float64) string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	s := ""
	for i, name := range names {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%g", name, p[name])
	}
	return s
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printf("%s %s (%d steps)\n", titleStyle.Render("batch"), sc.Name, len(sc.Steps))
	outcomes, err := automation.RunScenario(ctx, sc, st, func(i int, step automation.Step) {
		printf("  [%d/%d] %s\n", i+1, len(sc.Steps), step.Name)
	})

	printf("\n")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tSTEPS\tENERGY DRIFT\tSTATUS")
	failed := 0
	for _, o := range outcomes {
		status := "ok"
		var simErr *dynamo.SimulationError
		if errors.As(o.Err, &simErr) {
			status = "failed"
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3g\t%s\n", o.Step, o.RunID, o.Steps, o.Metrics["energy_drift"], status)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		printf("\n%s %d of %d steps stopped early\n", warnStyle.Render("warning:"), failed, len(outcomes))
	}
	return nil
}
