package cmd

import (
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vmgdwatch/scraper/internal/artifact"
	"github.com/vmgdwatch/scraper/internal/clock/system"
	"github.com/vmgdwatch/scraper/internal/config"
	"github.com/vmgdwatch/scraper/internal/errsink"
	"github.com/vmgdwatch/scraper/internal/fetch"
	"github.com/vmgdwatch/scraper/internal/logging"
	"github.com/vmgdwatch/scraper/internal/metrics"
	"github.com/vmgdwatch/scraper/internal/session"
	"github.com/vmgdwatch/scraper/internal/store"
)

var metricsAddr string

// newRunCmd creates the 'run' subcommand, which executes every scraping
// session once and exits.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs all scraping sessions once",
		Long: `Fetches every configured VMGD page, scrapes and aggregates the
results per session, and persists them. Sessions run concurrently and
independently; the command exits non-zero if any session failed.`,

		RunE: runSessions,
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	return cmd
}

func runSessions(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()
	if metricsAddr != "" {
		go serveMetrics(metricsAddr, logger)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	artifacts, err := artifact.New(filepath.Join(cfg.DataDir, "errors"))
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}

	clock := system.New()
	pg := store.New(pool, logger)
	sink := errsink.New(pg, artifacts, clock, logger)
	fetcher := fetch.New(fetch.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout(),
		Debug:     cfg.Debug,
		CacheDir:  filepath.Join(cfg.DataDir, "cache"),
	}, logger)

	runner := session.NewRunner(fetcher, pg, sink, clock, cfg.BaseURL, logger)
	scheduler := session.NewScheduler(runner, logger)

	sessions := session.DefaultSessions(clock)
	logger.Info("starting scraping sessions", zap.Int("sessions", len(sessions)))
	if err := scheduler.RunAll(ctx, sessions); err != nil {
		return fmt.Errorf("sessions failed: %w", err)
	}
	logger.Info("all sessions completed")
	return nil
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}
