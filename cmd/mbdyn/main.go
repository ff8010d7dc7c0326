package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	controller string
	kp         []float64
	ki         []float64
	kd         []float64
	target     []float64
	q0         []float64
	qDot0      []float64
	parallel   int
	frameRate  int
	effort     float64
	gifPath    string
	output     string
	paths      bool
	spin       float64
	headless   bool
	tumbleDt   float64
	tumbleTime float64
	tumbleFPS  int
	separation float64
	metric     string
	kpGrid     []float64
	kiGrid     []float64
	kdGrid     []float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mbdyn",
		Short: "articulated rigid-body dynamics lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mbdyn", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	simulationFlags(runCmd)
	runCmd.Flags().IntVar(&parallel, "parallel", 0, "compute body contributions concurrently above this many bodies (0 = serial)")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	simulationFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate (default from config)")
	liveCmd.Flags().Float64Var(&effort, "effort", 5, "force applied per key press with the manual controller")
	liveCmd.Flags().StringVar(&gifPath, "gif", "simulation.gif", "where G saves the recording")

	tumbleCmd := &cobra.Command{
		Use:   "tumble",
		Short: "spin a free ellipsoid about its intermediate axis",
		Args:  cobra.NoArgs,
		RunE:  runTumble,
	}
	tumbleCmd.Flags().Float64Var(&spin, "spin", 2, "spin rate about the intermediate axis (rad/s)")
	tumbleCmd.Flags().Float64Var(&tumbleDt, "dt", 0.001, "timestep")
	tumbleCmd.Flags().Float64Var(&tumbleTime, "time", 20, "duration (headless)")
	tumbleCmd.Flags().IntVar(&tumbleFPS, "fps", 30, "frame rate")
	tumbleCmd.Flags().BoolVar(&headless, "headless", false, "print conservation errors instead of drawing")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run coordinates in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "plot a run to an image file",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&output, "output", "o", "", "output file; the extension picks the format (default <run_id>.png)")
	exportPNGCmd.Flags().BoolVar(&paths, "paths", false, "plot the centre of mass paths instead of the coordinates")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list models, or the presets of one model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a configuration file to start from",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset (model/preset)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "find the dominant oscillation of every coordinate of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "estimate the largest Lyapunov exponent of the uncontrolled motion",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLyapunov,
	}
	simulationFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&separation, "separation", 1e-8, "initial distance of the shadow trajectory")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid search controller gains",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	simulationFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&metric, "metric", "tracking_error", "metric to minimise")
	tuneCmd.Flags().Float64SliceVar(&kpGrid, "kp-grid", nil, "proportional gains to try")
	tuneCmd.Flags().Float64SliceVar(&kiGrid, "ki-grid", nil, "integral gains to try")
	tuneCmd.Flags().Float64SliceVar(&kdGrid, "kd-grid", nil, "derivative gains to try")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every step of a scenario and store the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	rootCmd.AddCommand(runCmd, liveCmd, tumbleCmd, listCmd, plotCmd, exportJSONCmd, exportPNGCmd, presetsCmd, initCmd,
		analyzeCmd, lyapunovCmd, tuneCmd, batchCmd)
	return rootCmd
}

func simulationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset of the model")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (euler, semi_implicit)")
	cmd.Flags().StringVar(&controller, "controller", "", "controller (none, pd, pid, lqr, manual)")
	cmd.Flags().Float64SliceVar(&kp, "kp", nil, "proportional gains")
	cmd.Flags().Float64SliceVar(&ki, "ki", nil, "integral gains")
	cmd.Flags().Float64SliceVar(&kd, "kd", nil, "derivative gains")
	cmd.Flags().Float64SliceVar(&target, "target", nil, "controller target")
	cmd.Flags().Float64SliceVar(&q0, "q", nil, "initial joint coordinates")
	cmd.Flags().Float64SliceVar(&qDot0, "qdot", nil, "initial joint rates")
}

func printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}
