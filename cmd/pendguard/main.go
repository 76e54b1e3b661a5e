package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ossian-dev/pendguard/internal/config"
	"github.com/ossian-dev/pendguard/internal/export"
	"github.com/ossian-dev/pendguard/internal/metrics"
	"github.com/ossian-dev/pendguard/internal/mode"
	"github.com/ossian-dev/pendguard/internal/physics"
	"github.com/ossian-dev/pendguard/internal/scenario"
	"github.com/ossian-dev/pendguard/internal/sim"
	"github.com/ossian-dev/pendguard/internal/store"
	"github.com/ossian-dev/pendguard/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	preset     string
	configFile string
	dt         float64
	duration   float64
	theta1     float64
	omega1     float64
	theta2     float64
	omega2     float64
	outDir     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pendguard",
		Short: "confidence-aware double pendulum controller",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pendguard", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "per-tick debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario and store the result",
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&preset, "preset", "small", "scenario preset")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration override")
	runCmd.Flags().Float64Var(&theta1, "theta1", 0, "initial joint 1 angle override")
	runCmd.Flags().Float64Var(&omega1, "omega1", 0, "initial joint 1 velocity override")
	runCmd.Flags().Float64Var(&theta2, "theta2", 0, "initial joint 2 angle override")
	runCmd.Flags().Float64Var(&omega2, "omega2", 0, "initial joint 2 velocity override")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("%-12s %4.0fs  theta=(%.2f, %.2f) omega=(%.2f, %.2f) faults=%d\n",
					name, cfg.Duration,
					cfg.InitState.Theta1, cfg.InitState.Theta2,
					cfg.InitState.Omega1, cfg.InitState.Omega2,
					len(cfg.Faults))
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print a stored run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportPlotCmd := &cobra.Command{
		Use:   "export-plot [run_id]",
		Short: "render a stored run to PNG files",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPlot,
	}
	exportPlotCmd.Flags().StringVar(&outDir, "out", ".", "output directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive live view with fault injection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return viz.Run(cfg)
		},
	}
	liveCmd.Flags().StringVar(&preset, "preset", "small", "scenario preset")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run every preset concurrently",
		RunE:  runSweep,
	}

	rootCmd.AddCommand(runCmd, presetsCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportPlotCmd, liveCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).With().Timestamp().Str("app", "pendguard").Logger().Level(level)
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// CLI flags override preset and config file.
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("theta1") {
		cfg.InitState.Theta1 = theta1
	}
	if cmd.Flags().Changed("omega1") {
		cfg.InitState.Omega1 = omega1
	}
	if cmd.Flags().Changed("theta2") {
		cfg.InitState.Theta2 = theta2
	}
	if cmd.Flags().Changed("omega2") {
		cfg.InitState.Omega2 = omega2
	}

	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log := initLogger()

	runner, err := scenario.NewRunner(cfg, log)
	if err != nil {
		return err
	}

	dyn, err := physics.NewDoublePendulum(cfg.Params())
	if err != nil {
		return err
	}
	runner.AddMetric(metrics.NewEnergyDrift(dyn))
	runner.AddMetric(metrics.NewControllability(dyn.Controllable))
	runner.AddMetric(metrics.NewControlEffort())

	result, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(result)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d steps, final mode %s, %d transitions\n",
		runID, result.Steps(), result.FinalMode, result.Transitions)
	for name, value := range result.Metrics {
		fmt.Printf("  %-18s %.6f\n", name, value)
	}
	return nil
}

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

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tSTEPS\tFINAL MODE\tTRANSITIONS\tTIME")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
			run.ID, run.Scenario, run.Steps, run.FinalMode, run.Transitions,
			run.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	tr, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(tr.Times) == 0 {
		return fmt.Errorf("run %s has no trace data", args[0])
	}

	theta1s := make([]float64, len(tr.States))
	for i, x := range tr.States {
		theta1s[i] = x[0]
	}

	fmt.Println(asciigraph.Plot(theta1s,
		asciigraph.Height(12), asciigraph.Width(80), asciigraph.Caption("theta1 (rad)")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(tr.Confidences,
		asciigraph.Height(12), asciigraph.Width(80), asciigraph.Caption("fused confidence")))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	tr, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}

	fmt.Println("time,theta1,omega1,theta2,omega2,torque,confidence,mode")
	for i := range tr.Times {
		fmt.Printf("%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%s\n",
			tr.Times[i],
			tr.States[i][0], tr.States[i][1], tr.States[i][2], tr.States[i][3],
			tr.Torques[i], tr.Confidences[i], tr.Modes[i])
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}

	out := struct {
		Meta  *store.RunMetadata `json:"meta"`
		Trace *store.Trace       `json:"trace"`
	}{meta, tr}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func exportPlot(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}

	result := &scenario.Result{
		Scenario:    meta.Scenario,
		Times:       tr.Times,
		Torques:     tr.Torques,
		Confidences: tr.Confidences,
	}
	for _, x := range tr.States {
		result.States = append(result.States, sim.State(x))
	}
	for _, name := range tr.Modes {
		m, ok := mode.Parse(name)
		if !ok {
			return fmt.Errorf("run %s has unknown mode %q", args[0], name)
		}
		result.Modes = append(result.Modes, m)
	}

	if err := export.Plots(outDir, result); err != nil {
		return err
	}
	fmt.Printf("wrote angles.png, torque.png, confidence.png, mode.png to %s\n", outDir)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	log := initLogger()

	results, err := scenario.Sweep(context.Background(), config.ListPresets(), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tSTEPS\tFINAL MODE\tTRANSITIONS\tUNCONTROLLABLE")
	for _, name := range config.ListPresets() {
		r := results[name]
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\n",
			name, r.Steps(), r.FinalMode, r.Transitions, r.Stats.UncontrollableSteps)
	}
	return w.Flush()
}
