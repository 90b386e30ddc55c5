package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lindqvist/warmsched/internal/api"
	"github.com/lindqvist/warmsched/internal/backend"
	"github.com/lindqvist/warmsched/internal/clock"
	"github.com/lindqvist/warmsched/internal/config"
	"github.com/lindqvist/warmsched/internal/domain"
	"github.com/lindqvist/warmsched/internal/logging"
	"github.com/lindqvist/warmsched/internal/logsink"
	"github.com/lindqvist/warmsched/internal/metrics"
	"github.com/lindqvist/warmsched/internal/observability"
	"github.com/lindqvist/warmsched/internal/scheduler"
)

func daemonCmd() *cobra.Command {
	var strategyFlag string
	var httpAddrFlag string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the HTTP scheduler daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("strategy") {
				cfg.Strategy = strategyFlag
			}
			if cmd.Flags().Changed("http-addr") {
				cfg.Daemon.HTTPAddr = httpAddrFlag
			}
			return runDaemon(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "LCS or MRU")
	cmd.Flags().StringVar(&httpAddrFlag, "http-addr", "", "address to bind the HTTP API")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)
	return cfg, nil
}

func runDaemon(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.SetLevelFromString(cfg.Daemon.LogLevel)
	logger := logging.Op()

	if err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Tracing.Enabled,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: "warmsched",
		SampleRate:  cfg.Tracing.SampleRate,
	}); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.Shutdown(context.Background())

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		m := metrics.Init("warmsched")
		metricsMux := http.NewServeMux()
		metricsMux.Handle("GET /metrics", m.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux}
	}

	strategy, err := domain.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	rt, err := backend.NewDocker(backend.DefaultDockerConfig())
	if err != nil {
		return fmt.Errorf("init docker backend: %w", err)
	}

	var sink logsink.Sink = logsink.Noop{}
	if cfg.Postgres.DSN != "" {
		pg, err := logsink.NewPostgres(ctx, cfg.Postgres.DSN, 50, 2*time.Second)
		if err != nil {
			return fmt.Errorf("init log sink: %w", err)
		}
		defer pg.Close(context.Background())
		sink = pg
	}

	sched := scheduler.New(rt, clock.Real{}, scheduler.Config{
		WarmTime:     cfg.WarmTime.Milliseconds(),
		DefaultLimit: cfg.DefaultLimit,
		ProbeTimeout: 5 * time.Second,
	}, strategy, sink, logger)

	reaper := scheduler.NewReaper(sched, cfg.JanitorSleep, logger)
	go reaper.Run(ctx)

	srv := api.New(sched, logger)
	httpSrv := &http.Server{Addr: cfg.Daemon.HTTPAddr, Handler: srv}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.Daemon.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if metricsSrv != nil {
		go func() {
			logger.Info("metrics listening", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
