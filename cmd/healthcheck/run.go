package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/healthcheck/internal/aggregate"
	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/dispatch"
	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/endpoints"
	"github.com/hamed0406/healthcheck/internal/httpapi"
	"github.com/hamed0406/healthcheck/internal/logging"
	"github.com/hamed0406/healthcheck/internal/probe"
	"github.com/hamed0406/healthcheck/internal/report"
	"github.com/hamed0406/healthcheck/internal/repo/memory"
	"github.com/hamed0406/healthcheck/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Probe endpoints every cycle and report availability",
	Long: `Load the endpoint file and probe every endpoint once per cycle, with at
most --threads requests in flight. After each cycle the cumulative availability
of every domain is printed.

Every flag can also be set through the environment, e.g. HEALTHCHECK_THREADS=4
or HEALTHCHECK_CYCLE_LENGTH=30. Flags take precedence.

Example:
  healthcheck run -f endpoints.yaml -t 4 --cycle-length 30
  healthcheck run -f endpoints.yaml -v --listen 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	config.BindFlags(runCmd.Flags())
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	eps, err := endpoints.Load(cfg.File)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, eps, logger)
}

func run(ctx context.Context, cfg config.Config, eps []domain.Endpoint, logger *zap.Logger) error {
	checker := probe.NewHTTPChecker(cfg.RequestTimeout)
	checker.SlowThreshold = cfg.SlowThreshold
	checker.DNSDiagnostics = cfg.DNSDiagnostics
	defer checker.Close()

	colorize := cfg.Colorize
	if !cfg.ColorizeSet {
		colorize = colorize && report.IsTerminal(os.Stdout)
	}

	agg := aggregate.New()
	store := memory.New(memory.DefaultKeep)
	sinks := report.Multi{
		report.NewConsole(os.Stdout, colorize, cfg.Verbose),
		report.NewLogSink(logger),
		store,
	}

	var api *httpapi.Server
	if cfg.Listen != "" {
		hub := httpapi.NewHub(logger)
		sinks = append(sinks, hub)
		api = httpapi.NewServer(logger, agg, store, eps, hub)
	}

	pool := dispatch.NewPool(logger, checker, cfg.MaxParallelism)
	sched := scheduler.New(logger, eps, pool, agg, sinks, cfg.CycleLength)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if api != nil {
		g.Go(func() error { return api.ListenAndServe(gctx, cfg.Listen) })
	}
	g.Go(func() error {
		// a finished --cycles run also stops the status API
		defer cancel()
		return sched.RunRounds(gctx, cfg.Cycles)
	})
	return g.Wait()
}
