package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dosewise/pillcache"
	"github.com/dosewise/pillcache/internal/stats"
	statslogger "github.com/dosewise/pillcache/internal/stats/logger"
	statsprom "github.com/dosewise/pillcache/internal/stats/prometheus"
	"github.com/dosewise/pillcache/internal/store/memstore"
	"github.com/dosewise/pillcache/internal/workload"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a synthetic multi-tenant workload against the cache",
	Long: `Populate an in-memory store with records for many users, then replay a
Zipf-skewed mix of reads, writes and sign-outs through the cache.
Reports hit rate, evictions and per-operation latency.

With --sweep the same workload is replayed once per capacity and the
results are written as a Markdown report.

Examples:
  pillcache simulate --capacity 64
  pillcache simulate --tenants 100 --records 50 --ops 100000 --metrics
  pillcache simulate --sweep 16,64,256,1024 > report.md`,
	RunE: runSimulate,
}

var (
	simCfg      = workload.DefaultConfig()
	sweep       []int
	dumpMetrics bool
)

func init() {
	simulateCmd.Flags().IntVar(&simCfg.Tenants, "tenants", simCfg.Tenants, "number of simulated users")
	simulateCmd.Flags().IntVar(&simCfg.RecordsPerTenant, "records", simCfg.RecordsPerTenant, "records per user")
	simulateCmd.Flags().IntVar(&simCfg.Ops, "ops", simCfg.Ops, "number of operations")
	simulateCmd.Flags().Float64Var(&simCfg.WriteRatio, "write-ratio", simCfg.WriteRatio, "fraction of operations that are writes")
	simulateCmd.Flags().Float64Var(&simCfg.Skew, "skew", simCfg.Skew, "Zipf exponent for record popularity (> 1)")
	simulateCmd.Flags().IntVar(&simCfg.SignOutEvery, "sign-out-every", simCfg.SignOutEvery, "sign a random user out every N operations (0 disables)")
	simulateCmd.Flags().Int64Var(&simCfg.Seed, "seed", simCfg.Seed, "random seed")
	simulateCmd.Flags().IntSliceVar(&sweep, "sweep", nil, "capacities to compare; writes a Markdown report")
	simulateCmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "print Prometheus metrics after the run")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	sim, err := workload.NewSimulator(simCfg)
	if err != nil {
		return err
	}

	if len(sweep) > 0 {
		return runSweep(ctx, sim, logger)
	}

	registry := prometheus.NewRegistry()
	logCollector := statslogger.New(logger)
	collector := stats.NewMulti(statsprom.New(registry), logCollector)

	run, err := simulateOnce(ctx, sim, capacity, collector, logger)
	if err != nil {
		return err
	}
	logCollector.Flush()

	res := run.Result
	fmt.Printf("Users:          %d x %d records\n", simCfg.Tenants, simCfg.RecordsPerTenant)
	fmt.Printf("Capacity:       %d\n", run.Capacity)
	fmt.Printf("Operations:     %d (%d gets, %d puts, %d sign-outs, %d errors)\n",
		res.Ops, res.Gets, res.Puts, res.SignOuts, res.Errors)
	fmt.Printf("Hit rate:       %.1f%% (%d hits, %d misses)\n", run.HitRate()*100, run.Hits, run.Misses)
	fmt.Printf("Evictions:      %d\n", run.Evictions)
	fmt.Printf("Store reads:    %d\n", run.StoreReads)
	fmt.Printf("Latency (µs):   %s\n", res.Latency)

	if dumpMetrics {
		fmt.Println()
		return statsprom.Dump(os.Stdout, registry)
	}
	return nil
}

func runSweep(ctx context.Context, sim *workload.Simulator, logger *zap.Logger) error {
	runs := make([]workload.Run, 0, len(sweep))
	for _, c := range sweep {
		logger.Info("simulating", zap.Int("capacity", c))
		run, err := simulateOnce(ctx, sim, c, nil, logger)
		if err != nil {
			return fmt.Errorf("capacity %d: %w", c, err)
		}
		runs = append(runs, run)
	}

	report := workload.NewMarkdownReport(os.Stdout)
	report.WriteHeader("Pillcache Capacity Sweep")
	report.WriteWorkload(simCfg)
	report.WriteSummaryTable(runs)
	report.WriteFooter()
	return nil
}

// simulateOnce runs the workload against a fresh store and cache.
func simulateOnce(ctx context.Context, sim *workload.Simulator, capacity int, collector stats.Collector, logger *zap.Logger) (workload.Run, error) {
	mem := memstore.New()
	if err := workload.Populate(ctx, mem, simCfg); err != nil {
		return workload.Run{}, fmt.Errorf("populating store: %w", err)
	}
	populated := mem.Reads()

	opts := []pillcache.Option{
		pillcache.WithStore(mem),
		pillcache.WithCapacity(capacity),
		pillcache.WithLogger(logger),
	}
	if collector != nil {
		opts = append(opts, pillcache.WithStats(collector))
	}
	client, err := pillcache.New(opts...)
	if err != nil {
		return workload.Run{}, fmt.Errorf("creating client: %w", err)
	}
	defer client.Close()

	res, err := sim.Run(ctx, client)
	if err != nil {
		return workload.Run{}, fmt.Errorf("running workload: %w", err)
	}

	st := client.Stats()
	return workload.Run{
		Capacity:   st.Capacity,
		Result:     res,
		Hits:       st.Hits,
		Misses:     st.Misses,
		Evictions:  st.Evictions,
		StoreReads: mem.Reads() - populated,
	}, nil
}
