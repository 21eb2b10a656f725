package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/iammxrn/MRFoundation/internal/report"
	"github.com/iammxrn/MRFoundation/internal/testbench"
	"github.com/iammxrn/MRFoundation/pkg/config"
	"github.com/iammxrn/MRFoundation/pkg/locking"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bench",
		Short:         "Benchmark the guarded ring queue and guarded values per lock strategy",
		SilenceUsage:  true,
	}
	root.AddCommand(newRunCmd(), newTableCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cfg := config.DefaultBench()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark matrix",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSessions(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Iterations, "iter", cfg.Iterations, "Number of test iterations per concurrency setting")
	f.IntVar(&cfg.MaxCPU, "cpu", cfg.MaxCPU, "If non-zero, test only that GOMAXPROCS value; if 0, test common CPU/vCPU values up to runtime.NumCPU()")
	f.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Duration of each test run")
	f.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "Initial ring capacity of each queue")
	f.StringVar(&cfg.Workload, "workload", cfg.Workload, "Workload to run: queue or readheavy")
	f.BoolVar(&cfg.HighConcurrency, "high-concurrency", cfg.HighConcurrency, "Include high concurrency configurations")
	f.BoolVar(&cfg.JSONExport, "json", cfg.JSONExport, "Append results as JSON to --jsonfile")
	f.StringVar(&cfg.JSONFile, "jsonfile", cfg.JSONFile, "Path to the JSON results file")
	f.BoolVar(&cfg.Progress, "progress", cfg.Progress, "Display a progress bar with ETA")
	return cmd
}

func newTableCmd() *cobra.Command {
	var jsonFile string
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print a markdown table of the last session in the JSON results file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := report.Load(jsonFile)
			if err != nil {
				return err
			}
			return report.MarkdownTable(cmd.OutOrStdout(), sessions, implementationMeta())
		},
	}
	cmd.Flags().StringVar(&jsonFile, "jsonfile", "test-results.json", "Path to JSON file for markdown table")
	return cmd
}

// runSessions runs one session per GOMAXPROCS setting and optionally stores
// them. An interrupted run still stores the sessions completed so far.
func runSessions(ctx context.Context, out io.Writer, cfg config.Bench) error {
	trueCPUCount := runtime.NumCPU()
	cpuSettings := cfg.CPUSettings(trueCPUCount)
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(0))

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = progressbar.NewOptions(len(cpuSettings)*cfg.Iterations*runsPerIteration(cfg),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Progress"),
			progressbar.OptionSetWidth(20),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	slog.Info("starting benchmark",
		slog.String("workload", cfg.Workload),
		slog.Int("iterations", cfg.Iterations),
		slog.Duration("duration", cfg.Duration),
		slog.Bool("deadlock_detection", locking.DeadlockEnabled))

	var allSessions []report.FullReport
	for _, cpus := range cpuSettings {
		if ctx.Err() != nil {
			break
		}
		runtime.GOMAXPROCS(cpus)
		sysInfo := report.GatherSystemInfo()
		sysInfo.NumCPU = cpus
		sysInfo.TrueCPU = trueCPUCount
		sysInfo.SimulatedCPUCount = cpus

		fmt.Fprintf(out, "\n=============================\n")
		fmt.Fprintf(out, "GOMAXPROCS = %d\n", cpus)
		fmt.Fprintf(out, "=============================\n")

		var results []report.BenchmarkResult
		step := func(r report.BenchmarkResult) {
			fmt.Fprintf(out, "    %s => produced=%d, consumed=%d, throughput=%.0f ops/s, took=%s\n",
				r.Implementation, r.NumMessages, r.NumMessagesConsumed, r.Throughput, r.ActualElapsed)
			results = append(results, r)
			if bar != nil {
				_ = bar.Add(1)
			}
		}
		if cfg.Workload == report.WorkloadReadHeavy {
			runReadHeavy(ctx, out, cfg, step)
		} else {
			runQueue(ctx, out, cfg, step)
		}

		allSessions = append(allSessions, report.FullReport{
			SessionTime: time.Now().Format(time.RFC3339),
			SystemInfo:  sysInfo,
			Benchmarks:  results,
		})
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if ctx.Err() != nil {
		slog.Warn("benchmark interrupted", slog.Int("sessions", len(allSessions)))
	}
	if !cfg.JSONExport {
		return nil
	}
	if err := report.Append(cfg.JSONFile, allSessions); err != nil {
		slog.Error("storing results failed", slog.String("error", err.Error()))
		return err
	}
	fmt.Fprintf(out, "\nWrote results to %s\n", cfg.JSONFile)
	return nil
}

func runsPerIteration(cfg config.Bench) int {
	if cfg.Workload == report.WorkloadReadHeavy {
		return len(cfg.ReadHeavyConfigs()) * len(getValueImplementations())
	}
	return len(cfg.ConcurrencyConfigs()) * len(getImplementations())
}

func runQueue(ctx context.Context, out io.Writer, cfg config.Bench, step func(report.BenchmarkResult)) {
	impls := getImplementations()
	for _, cc := range cfg.ConcurrencyConfigs() {
		fmt.Fprintf(out, "  [Concurrency: producers=%d, consumers=%d]\n", cc.NumProducers, cc.NumConsumers)
		for iteration := 1; iteration <= cfg.Iterations; iteration++ {
			fmt.Fprintf(out, "    iteration %d/%d\n", iteration, cfg.Iterations)
			for _, impl := range impls {
				if ctx.Err() != nil {
					return
				}
				runtime.GC()
				q := impl.newQueue(uint64(cfg.Capacity))

				produced, consumed, elapsed := testbench.RunTimedTest(ctx, q, cc, cfg.Duration,
					func(i int) *int {
						v := i
						return &v
					})
				step(newResult(impl.name, report.WorkloadQueue, impl.strategy,
					cc.NumProducers, cc.NumConsumers, produced, consumed, cfg.Duration, elapsed))
			}
		}
	}
}

func runReadHeavy(ctx context.Context, out io.Writer, cfg config.Bench, step func(report.BenchmarkResult)) {
	impls := getValueImplementations()
	for _, rc := range cfg.ReadHeavyConfigs() {
		fmt.Fprintf(out, "  [Concurrency: readers=%d, writers=%d]\n", rc.NumReaders, rc.NumWriters)
		for iteration := 1; iteration <= cfg.Iterations; iteration++ {
			fmt.Fprintf(out, "    iteration %d/%d\n", iteration, cfg.Iterations)
			for _, impl := range impls {
				if ctx.Err() != nil {
					return
				}
				runtime.GC()
				v := impl.newValue()

				reads, writes, elapsed := testbench.RunReadHeavyTest(ctx, v, rc, cfg.Duration)
				if got := v.Load(); got != writes {
					slog.Error("lost guarded updates",
						slog.String("implementation", impl.name),
						slog.Int64("writes", writes),
						slog.Int64("value", got))
				}
				step(newResult(impl.name, report.WorkloadReadHeavy, impl.strategy,
					rc.NumWriters, rc.NumReaders, writes, reads+writes, cfg.Duration, elapsed))
			}
		}
	}
}

func newResult(name, workload string, s locking.Strategy, producers, consumers int,
	produced, consumed int64, duration, elapsed time.Duration) report.BenchmarkResult {
	return report.BenchmarkResult{
		Implementation:      name,
		Workload:            workload,
		Strategy:            s.String(),
		NumProducers:        producers,
		NumConsumers:        consumers,
		NumMessages:         produced,
		NumMessagesConsumed: consumed,
		TestDuration:        duration.String(),
		ActualElapsed:       elapsed.String(),
		Throughput:          float64(consumed) / elapsed.Seconds(),
		Timestamp:           time.Now().Unix(),
		GoVersion:           runtime.Version(),
		DeadlockDetection:   locking.DeadlockEnabled,
	}
}
