package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/go-nbody/galaxysim/internal/engine"
	"github.com/go-nbody/galaxysim/internal/livetui"
	"github.com/go-nbody/galaxysim/internal/store"
)

var (
	dataDir string

	numBodies      int
	seed           uint64
	iterations     int
	parallelism    int
	sectorExponent int
	leafSize       uint32
	fixedCapacity  int
	outputDir      string
	verbose        bool
	configFile     string
	presetName     string
	theta          float64
	delta          float64

	frameRate int
)

// main registers the galaxysim command tree and runs it, exiting 1 on
// any error the way a fatal assertion is reported.
func main() {
	rootCmd := &cobra.Command{
		Use:   "galaxysim",
		Short: "Barnes-Hut two-galaxy N-body simulator",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".galaxysim", "run storage directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	bindRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with a live terminal view",
		RunE:  runLive,
	}
	bindRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "terminal refresh rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the named starting configurations available to run --preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, p := range presets {
				fmt.Fprintf(w, "%s\t%s\n", p.name, p.description)
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run's energy trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, listCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "galaxysim:", err)
		os.Exit(1)
	}
}

// bindRunFlags wires the documented CLI surface plus the preset and
// config-file overrides shared by run and live.
func bindRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&numBodies, "bodies", "b", 16384, "number of bodies")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 213, "random seed")
	cmd.Flags().IntVarP(&iterations, "iterations", "i", 10, "iteration count")
	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 8, "parallel worker count")
	cmd.Flags().IntVarP(&sectorExponent, "sector-exp", "N", 4, "sector-precision exponent k, S = 2^k sectors per axis")
	cmd.Flags().Uint32VarP(&leafSize, "leaf-size", "l", 32, "leaf bucket size")
	cmd.Flags().IntVarP(&fixedCapacity, "fixed-capacity", "x", -1, "fixed arena per-sector capacity (-1 = compute)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "frame output directory (unset = no frames)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose per-iteration logging")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file overriding unset flags")
	cmd.Flags().StringVar(&presetName, "preset", "", "use a named starting configuration instead of the galaxy generator")
	cmd.Flags().Float64Var(&theta, "theta", 0, "opening-angle threshold override (0 = use default)")
	cmd.Flags().Float64Var(&delta, "delta", 0, "integration timestep override (0 = use default)")
}

// buildConfig assembles an engine.Config from the bound flags and an
// optional config file, CLI flags winning over the file for anything
// explicitly set.
func buildConfig(cmd *cobra.Command) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	cfg.NumBodies = numBodies
	cfg.Seed = seed
	cfg.Iterations = iterations
	cfg.Parallelism = parallelism
	cfg.SectorExponent = sectorExponent
	cfg.LeafSize = leafSize
	cfg.FixedCapacity = fixedCapacity
	cfg.OutputDir = outputDir
	cfg.Verbose = verbose
	if theta != 0 {
		cfg.Force.Theta = theta
	}
	if delta != 0 {
		cfg.Force.Delta = delta
	}

	if configFile != "" {
		fc, err := loadFileConfig(configFile)
		if err != nil {
			return engine.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		fc.applyTo(&cfg, cmd.Flags().Changed)
	}

	return cfg, nil
}

// buildEngine constructs the engine for a run or live command, using
// --preset's hand-specified bodies when given instead of the galaxy
// generator.
func buildEngine(cmd *cobra.Command) (*engine.Engine, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	if presetName == "" {
		return engine.New(cfg)
	}

	p := findPreset(presetName)
	if p == nil {
		names := make([]string, len(presets))
		for i, pr := range presets {
			names[i] = pr.name
		}
		return nil, fmt.Errorf("unknown preset %q (available: %v)", presetName, names)
	}
	if !cmd.Flags().Changed("sector-exp") {
		cfg.SectorExponent = p.sectorExp
	}
	return engine.NewWithBodies(cfg, p.bodies())
}

func runSimulation(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(cmd)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	trace := make([]store.EnergySample, 0, eng.Bodies().Len())
	recordEnergy := func() {
		s := eng.Bodies()
		ke := engine.KineticEnergy(s)
		pe := engine.PotentialEnergy(s, eng.Config().Force.G)
		trace = append(trace, store.EnergySample{Iteration: eng.Iteration(), Kinetic: ke, Potential: pe, Total: ke + pe})
	}

	fmt.Printf("running galaxysim: %d bodies, %d iterations\n", eng.Bodies().Len(), eng.Config().Iterations)
	start := time.Now()

	recordEnergy()
	for i := 0; i < eng.Config().Iterations; i++ {
		if err := eng.Step(); err != nil {
			return err
		}
		recordEnergy()
	}

	elapsed := time.Since(start)

	runID, err := st.Save(eng.Config(), trace)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	if len(trace) > 0 {
		fmt.Printf("energy drift: %.6f -> %.6f\n", trace[0].Total, trace[len(trace)-1].Total)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	return livetui.Run(eng, eng.Config().Iterations, frameRate)
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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBODIES\tITERATIONS\tSTART ENERGY\tFINAL ENERGY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NumBodies,
			run.Iterations,
			run.StartEnergy,
			run.FinalEnergy,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) == 0 {
		return fmt.Errorf("no energy trace to plot")
	}

	data := make([]float64, len(trace))
	for i, s := range trace {
		data[i] = s.Total
	}

	fmt.Printf("run: %s (%d bodies, %d iterations)\n\n", meta.ID, meta.NumBodies, meta.Iterations)
	fmt.Println(asciigraph.Plot(data, asciigraph.Caption("total energy vs iteration"), asciigraph.Height(15)))
	return nil
}
