package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/spikesim/internal/analysis"
	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/experiment"
	"github.com/san-kum/spikesim/internal/export"
	"github.com/san-kum/spikesim/internal/models"
	"github.com/san-kum/spikesim/internal/neuro"
	"github.com/san-kum/spikesim/internal/storage"
	"github.com/san-kum/spikesim/internal/tui"
	"github.com/san-kum/spikesim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	ticks      int
	dt         float64
	speed      float64
	workers    int
	dropInput  bool
	maxPending int
	noSave     bool
	outDir     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spikesim",
		Short: "equation-driven spiking neural network simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spikesim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip writing the run to the data directory")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's membrane trace and firing rate",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	rasterCmd := &cobra.Command{
		Use:   "raster [run_id]",
		Short: "print a stored run's spike raster",
		Args:  cobra.ExactArgs(1),
		RunE:  rasterRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "interval and frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outDir, "out", ".", "output directory")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in models and scenarios",
		RunE:  listPresets,
	}

	checkCmd := &cobra.Command{
		Use:   "check [scenario.yaml]",
		Short: "validate a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  checkScenario,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "measure stepping throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	addScenarioFlags(benchCmd)

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, rasterCmd,
		analyzeCmd, exportCmd, deleteCmd, presetsCmd, checkCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "scenario preset name")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "tick timestep")
	cmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "time multiplier")
	cmd.Flags().IntVar(&workers, "workers", 0, "evaluation workers (0 = serial)")
	cmd.Flags().BoolVar(&dropInput, "drop-refractory-input", false, "discard input delivered during refractory periods")
	cmd.Flags().IntVar(&maxPending, "max-pending", 0, "pending spike event bound (0 = unbounded)")
}

func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case len(args) == 1 && preset != "":
		cfg = config.GetPreset(args[0], preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", args[0], preset)
		}
	case len(args) == 1:
		cfg = config.DefaultConfig()
		cfg.Populations[0].Model = args[0]
	default:
		cfg = config.DefaultConfig()
	}

	if cmd.Flags().Changed("ticks") {
		cfg.Ticks = ticks
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("speed") {
		cfg.Speed = speed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("drop-refractory-input") {
		cfg.DropRefractoryInput = dropInput
	}
	if cmd.Flags().Changed("max-pending") {
		cfg.MaxPendingEvents = maxPending
	}
	return cfg, nil
}

func countNeurons(exp *experiment.Experiment) int {
	total := 0
	for _, pop := range exp.Populations() {
		total += len(exp.Population(pop))
	}
	return total
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ticks\t%d\n", res.Ticks)
	fmt.Fprintf(w, "sim time\t%.3f\n", res.Duration)
	fmt.Fprintf(w, "wall time\t%s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "spikes\t%d\n", len(res.Spikes))
	if res.Dropped > 0 {
		fmt.Fprintf(w, "dropped\t%d\n", res.Dropped)
	}
	metricNames := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		metricNames = append(metricNames, name)
	}
	sort.Strings(metricNames)
	for _, name := range metricNames {
		fmt.Fprintf(w, "%s\t%.4f\n", name, res.Metrics[name])
	}
	w.Flush()

	if len(res.Spikes) > 0 {
		bins := analysis.BinnedRates(res.Spikes, 0, res.Duration, res.Duration/60)
		fmt.Println()
		fmt.Println(viz.RatePlot(bins, 70, 8, "network firing rate"))
	}

	if noSave {
		return nil
	}

	store, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.SaveRun(storage.RunData{
		Dt:       cfg.Dt,
		Ticks:    res.Ticks,
		Duration: res.Duration,
		Neurons:  countNeurons(exp),
		Spikes:   res.Spikes,
		Traces:   exp.TraceRecorder().Traces(),
		Metrics:  res.Metrics,
	})
	if err != nil {
		return err
	}
	fmt.Println("\nsaved run", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	return tui.Run(exp)
}

func listRuns(cmd *cobra.Command, args []string) error {
	store, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tNEURONS\tTICKS\tSIM TIME\tSPIKES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2f\t%d\n",
			run.ID, run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Neurons, run.Ticks, run.Duration, run.SpikeCount)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	runID := args[0]
	traces, err := store.LoadTrace(runID)
	if err != nil {
		return err
	}

	ids := make([]int, 0, len(traces))
	for id := range traces {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		samples := traces[neuro.NeuronID(id)]
		chart := viz.TracePlot(samples, 80, 10, fmt.Sprintf("neuron %d membrane", id))
		if chart != "" {
			fmt.Println(chart)
			fmt.Println()
		}
	}

	meta, err := store.Load(runID)
	if err != nil {
		return err
	}
	spikes, err := store.LoadSpikes(runID)
	if err != nil {
		return err
	}
	if len(spikes) > 0 {
		bins := analysis.BinnedRates(spikes, 0, meta.Duration, meta.Duration/60)
		fmt.Println(viz.RatePlot(bins, 80, 8, "network firing rate"))
	}
	return nil
}

func rasterRun(cmd *cobra.Command, args []string) error {
	store, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	spikes, err := store.LoadSpikes(args[0])
	if err != nil {
		return err
	}

	fmt.Print(viz.Raster(spikes, meta.Neurons, 0, meta.Duration, 100))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	store, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	spikes, err := store.LoadSpikes(args[0])
	if err != nil {
		return err
	}
	if len(spikes) == 0 {
		fmt.Println("run has no spikes")
		return nil
	}

	counts := analysis.PerNeuronCounts(spikes)
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	byNeuron := make(map[neuro.NeuronID][]neuro.Spike)
	for _, s := range spikes {
		byNeuron[s.Neuron] = append(byNeuron[s.Neuron], s)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NEURON\tSPIKES\tMEAN ISI\tMIN\tMAX\tCV")
	for _, id := range ids {
		stats := analysis.ISIStats(byNeuron[neuro.NeuronID(id)])
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%.4f\t%.4f\t%.3f\n",
			id, counts[neuro.NeuronID(id)], stats.Mean, stats.Min, stats.Max, stats.CV)
	}
	w.Flush()

	bins := analysis.BinnedRates(spikes, 0, meta.Duration, meta.Duration/128)
	if amps := analysis.RateSpectrum(bins); len(amps) > 1 {
		peak := 1
		for i := 2; i < len(amps); i++ {
			if amps[i] > amps[peak] {
				peak = i
			}
		}
		freq := float64(peak) / meta.Duration
		fmt.Printf("\ndominant rate oscillation: %.3f cycles per time unit\n", freq)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	runID := args[0]
	meta, err := store.Load(runID)
	if err != nil {
		return err
	}
	spikes, err := store.LoadSpikes(runID)
	if err != nil {
		return err
	}
	traces, err := store.LoadTrace(runID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	raster := export.RasterToSVG(spikes, meta.Neurons, 0, meta.Duration, 800, 20*meta.Neurons, "#00ff00")
	if raster != "" {
		path := fmt.Sprintf("%s/%s_raster.svg", outDir, runID)
		if err := os.WriteFile(path, []byte(raster), 0644); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}

	ids := make([]int, 0, len(traces))
	for id := range traces {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		svg := export.TraceToSVG(traces[neuro.NeuronID(id)], 800, 300, "#00ff00")
		if svg == "" {
			continue
		}
		path := fmt.Sprintf("%s/%s_trace_%d.svg", outDir, runID, id)
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	store, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Delete(args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("models:")
	for _, name := range models.Names() {
		fmt.Println("  " + name)
	}

	fmt.Println("\nscenarios:")
	families := make([]string, 0, len(config.Presets))
	for family := range config.Presets {
		families = append(families, family)
	}
	sort.Strings(families)
	for _, family := range families {
		names := config.ListPresets(family)
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s/%s\n", family, name)
		}
	}
	return nil
}

func checkScenario(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("ok: %d populations, %d neurons, %d ticks at dt=%g\n",
		len(exp.Populations()), countNeurons(exp), cfg.Ticks, cfg.Dt)
	return nil
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	perTick := elapsed / time.Duration(res.Ticks)
	fmt.Printf("%d ticks in %s (%s/tick, %.0f ticks/s)\n",
		res.Ticks, elapsed.Round(time.Millisecond), perTick, float64(res.Ticks)/elapsed.Seconds())
	fmt.Printf("%d neurons, %d spikes\n", countNeurons(exp), len(res.Spikes))
	return nil
}
