package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/experiment"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/models"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/store"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tCTRL\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Controller,
			status,
		)
	}

	return w.Flush()
}

const maxPlots = 6

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, _, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	for i, name := range meta.Coordinates {
		if i == maxPlots {
			fmt.Printf("(%d more coordinates not shown)\n", len(meta.Coordinates)-maxPlots)
			break
		}
		data := make([]float64, len(states))
		for k := range states {
			data[k] = states[k][i]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("q "+name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, controls, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	if output == "" {
		return store.ExportJSON(os.Stdout, meta, times, states, controls)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := store.ExportJSON(f, meta, times, states, controls); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", output)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, _, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = meta.ID + ".png"
	}

	if paths {
		mech, err := meta.ResolveMechanism()
		if err != nil {
			return err
		}
		model, err := models.Build(mech)
		if err != nil {
			return err
		}
		traces, err := experiment.Paths(model.MultiRigidBody, states)
		if err != nil {
			return err
		}
		err = store.PlotPaths(path, meta.Model+" centre of mass paths", traces)
		if err != nil {
			return err
		}
	} else if err := store.PlotCoordinates(path, meta, times, states); err != nil {
		return err
	}

	full, _ := filepath.Abs(path)
	fmt.Printf("wrote %s\n", full)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println(titleStyle.Render("models"))
		for _, name := range config.ListModels() {
			fmt.Printf("  %-16s %s\n", name, labelStyle.Render(config.Mechanisms[name].Description))
		}
		return nil
	}

	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		cfg := config.GetPreset(args[0], p)
		fmt.Printf("  %-10s %s\n", p, labelStyle.Render(fmt.Sprintf("%s, %s, %gs", cfg.Integrator, cfg.Controller, cfg.Duration)))
	}
	return nil
}

// initConfig writes a configuration with the built-in mechanism spelled
// out, ready to be edited into a custom one.
func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		model, name := filepath.Split(preset)
		model = filepath.Clean(model)
		p := config.GetPreset(model, name)
		if p == nil {
			return fmt.Errorf("unknown preset %q, want model/preset", preset)
		}
		c := *p
		cfg = &c
	}
	mech, err := cfg.ResolveMechanism()
	if err != nil {
		return err
	}
	cfg.Mechanism = mech

	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
