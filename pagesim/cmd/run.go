package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/simulation"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/tracing"
	"github.com/sarchlab/pagesim/vm"
	"github.com/spf13/cobra"
)

const engineName = "Engine"

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <algorithm> <trace> <page-size-kb> <memory-size-kb> [table]",
		Short: "Replay a trace and print the fault statistics.",
		Long: `Replays <trace>, read from the trace directory, with the ` +
			`given replacement algorithm (random, lru, mfu or lfu). Page ` +
			`and memory sizes are in KB. The table organization is dense, ` +
			`two-level, three-level or inverted, or their codes 0 to 3.`,
		Args: cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseRunOptions(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runSimulation(ctx, cmd.OutOrStdout(), opts)
		},
	}

	flags := runCmd.Flags()
	flags.String("table", "dense",
		"Page table organization [env PAGESIM_TABLE].")
	flags.String("seed", "1",
		"Seed of the random policy [env PAGESIM_SEED].")
	flags.String("trace-dir", "logs",
		"Directory the traces are read from [env PAGESIM_TRACE_DIR].")
	flags.String("record", "",
		"Record the run into <record>.sqlite3 [env PAGESIM_RECORD].")
	flags.Bool("record-accesses", true,
		"Also record one row per access when recording.")
	flags.String("csv", "", "Write every access into <csv>.csv.")
	flags.Bool("debug", false, "Log every access to stderr.")
	flags.Bool("breakdown", false, "Print the outcome of the accesses.")
	flags.Bool("monitor", false, "Serve the progress of the run over HTTP.")
	flags.String("monitor-port", "0",
		"Port of the monitoring server [env PAGESIM_MONITOR_PORT].")
	flags.Bool("open-monitor", false, "Open the monitor in a browser.")

	return runCmd
}

type runOptions struct {
	config simulation.Config
	pageKB uint64
	memKB  uint64

	traceName string
	traceDir  string

	recordPath     string
	recordAccesses bool
	csvPath        string
	debug          bool
	breakdown      bool

	monitor     bool
	monitorPort int
	openMonitor bool
}

func parseRunOptions(cmd *cobra.Command, args []string) (runOptions, error) {
	opts := runOptions{
		traceName: args[1],
		traceDir:  stringOption(cmd, "trace-dir", "PAGESIM_TRACE_DIR"),
	}

	var err error

	opts.pageKB, err = parseKB("page size", args[2])
	if err != nil {
		return opts, err
	}

	opts.memKB, err = parseKB("memory size", args[3])
	if err != nil {
		return opts, err
	}

	tableName := stringOption(cmd, "table", "PAGESIM_TABLE")
	if len(args) == 5 {
		tableName = args[4]
	}

	tableType, err := vm.ParseTableType(tableName)
	if err != nil {
		return opts, err
	}

	seedText := stringOption(cmd, "seed", "PAGESIM_SEED")
	seed, err := strconv.ParseInt(seedText, 10, 64)
	if err != nil {
		return opts, &vm.ConfigurationError{
			Field:  "seed",
			Value:  seedText,
			Reason: "must be an integer",
		}
	}

	portText := stringOption(cmd, "monitor-port", "PAGESIM_MONITOR_PORT")
	opts.monitorPort, err = strconv.Atoi(portText)
	if err != nil {
		return opts, &vm.ConfigurationError{
			Field:  "monitor port",
			Value:  portText,
			Reason: "must be an integer",
		}
	}

	opts.config = simulation.Config{
		Algorithm:  args[0],
		PageSize:   opts.pageKB << 10,
		MemorySize: opts.memKB << 10,
		TableType:  tableType,
		Seed:       seed,
	}

	flags := cmd.Flags()
	opts.recordPath = stringOption(cmd, "record", "PAGESIM_RECORD")
	opts.recordAccesses, _ = flags.GetBool("record-accesses")
	opts.csvPath, _ = flags.GetString("csv")
	opts.debug, _ = flags.GetBool("debug")
	opts.breakdown, _ = flags.GetBool("breakdown")
	opts.monitor, _ = flags.GetBool("monitor")
	opts.openMonitor, _ = flags.GetBool("open-monitor")

	return opts, nil
}

func parseKB(field, text string) (uint64, error) {
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil || n == 0 || n > math.MaxUint64>>10 {
		return 0, &vm.ConfigurationError{
			Field:  field,
			Value:  text,
			Reason: "must be a positive number of KB",
		}
	}

	return n, nil
}

// progressSource moves a progress bar as the trace file is consumed.
type progressSource struct {
	file *trace.File
	bar  *monitoring.ProgressBar
}

func (s *progressSource) Next() (trace.Record, error) {
	rec, err := s.file.Next()
	s.bar.SetFinished(uint64(s.file.BytesRead()))

	return rec, err
}

func runSimulation(ctx context.Context, out io.Writer, opts runOptions) error {
	engine, err := simulation.MakeBuilder().
		WithConfig(opts.config).
		Build(engineName)
	if err != nil {
		return err
	}

	file, err := trace.Open(opts.traceDir, opts.traceName)
	if err != nil {
		return err
	}
	defer file.Close()

	if opts.debug {
		engine.AcceptHook(simulation.NewAccessLogger(os.Stderr))
	}

	breakdown, err := attachTracers(engine, opts)
	if err != nil {
		return err
	}

	var src simulation.Source = file

	if opts.monitor || opts.openMonitor {
		src, err = startMonitor(engine, file, opts)
		if err != nil {
			return err
		}
	}

	stats, err := engine.Run(ctx, src)
	if err != nil {
		return err
	}

	printStats(out, opts, stats)

	if breakdown != nil {
		printBreakdown(out, breakdown)
	}

	return nil
}

func attachTracers(
	engine *simulation.Engine,
	opts runOptions,
) (*tracing.OutcomeCountTracer, error) {
	if opts.recordPath != "" {
		recorder, err := datarecording.New(opts.recordPath)
		if err != nil {
			return nil, err
		}

		dbTracer := tracing.NewDBTracer(
			recorder, engine.Name(), opts.traceName, engine.Config())
		if !opts.recordAccesses {
			dbTracer.SkipAccesses()
		}

		tracing.CollectTrace(engine, dbTracer)
	}

	if opts.csvPath != "" {
		csvWriter := tracing.NewCSVTraceWriter(opts.csvPath)
		if err := csvWriter.Init(); err != nil {
			return nil, err
		}

		tracing.CollectTrace(engine, csvWriter)
	}

	if !opts.breakdown {
		return nil, nil
	}

	counter := tracing.NewOutcomeCountTracer()
	tracing.CollectTrace(engine, counter)

	return counter, nil
}

func startMonitor(
	engine *simulation.Engine,
	file *trace.File,
	opts runOptions,
) (simulation.Source, error) {
	monitor := monitoring.NewMonitor().WithPortNumber(opts.monitorPort)
	monitor.RegisterEngine(engine)

	bar := monitor.CreateProgressBar(opts.traceName, uint64(file.Size()))

	url, err := monitor.StartServer()
	if err != nil {
		return nil, err
	}

	if opts.openMonitor {
		if err := monitoring.OpenInBrowser(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return &progressSource{file: file, bar: bar}, nil
}

func printStats(out io.Writer, opts runOptions, stats simulation.Stats) {
	fmt.Fprintf(out, "Algorithm: %s\n", opts.config.Algorithm)
	fmt.Fprintf(out, "Filename: %s\n", opts.traceName)
	fmt.Fprintf(out, "Page size: %d\n", opts.pageKB)
	fmt.Fprintf(out, "Memory size: %d\n", opts.memKB)
	fmt.Fprintf(out, "Table type: %s\n", opts.config.TableType)
	fmt.Fprintf(out, "Trace events: %d\n", stats.Events)
	fmt.Fprintf(out, "Memory accesses: %d\n", stats.TotalAccesses)
	fmt.Fprintf(out, "Page faults: %d\n", stats.PageFaults)
	fmt.Fprintf(out, "Dirty pages: %d\n", stats.DirtyPages)
}

func printBreakdown(out io.Writer, counter *tracing.OutcomeCountTracer) {
	for _, o := range []simulation.Outcome{
		simulation.Hit,
		simulation.FaultFreeFrame,
		simulation.FaultEviction,
	} {
		fmt.Fprintf(out, "  %s: %d\n", o, counter.Count(o))
	}
}
