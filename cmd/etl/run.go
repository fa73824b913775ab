package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fxhashETL/internal/config"
	"fxhashETL/internal/metrics"
	"fxhashETL/internal/pipeline"
	"fxhashETL/internal/storage"
	"fxhashETL/internal/storage/postgres"
	"fxhashETL/internal/storage/tidb"
	"fxhashETL/internal/teztok"
	"fxhashETL/internal/transform"
)

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.To == "" {
		cfg.To = pipeline.Yesterday(time.Now())
	}
	if _, err := pipeline.SplitDays(cfg.From, cfg.To); err != nil {
		return err
	}
	if cfg.PageSize <= 0 {
		return fmt.Errorf("page size must be greater than zero")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		shutdown, err := serveMetrics(cfg.MetricsAddr, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	var (
		sink       storage.Storage
		checkpoint pipeline.CheckpointStore = pipeline.NewFileCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled)
		recorder   pipeline.RunRecorder
	)

	switch cfg.Sink {
	case config.SinkJSONL:
		if cfg.Out == "" {
			return fmt.Errorf("output path is required")
		}
		sink = storage.NewJsonlStorage(cfg.Out)
	case config.SinkPostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sink = store
		recorder = store
		if cfg.CheckpointEnabled {
			checkpoint = &pipeline.DBCheckpointStore{Store: store, Name: "etl:teztok"}
		}
	case config.SinkTiDB:
		store, err := tidb.NewStore(cfg.TiDBDSN, cfg.TiDBBatchSize)
		if err != nil {
			return fmt.Errorf("connect tidb: %w", err)
		}
		defer store.Close()
		sink = store
	default:
		return fmt.Errorf("unknown sink %q", cfg.Sink)
	}

	var errSink pipeline.ErrorSink
	if cfg.Errors != "" {
		errSink = storage.NewJsonlStorage(cfg.Errors)
	}

	client := teztok.NewClient(teztok.Config{
		Endpoint:     cfg.Endpoint,
		Timeout:      cfg.RequestTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)

	runner := pipeline.NewRunner(pipeline.RunConfig{
		FromDay:  cfg.From,
		ToDay:    cfg.To,
		PageSize: cfg.PageSize,
	}, client, transform.NewTransformer(transform.StandardDefaults(), logger), sink, errSink, checkpoint, recorder, logger)

	logger.Info("etl start",
		zap.String("run_id", runner.RunID().String()),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("from", cfg.From),
		zap.String("to", cfg.To),
		zap.Int("page_size", cfg.PageSize),
		zap.String("sink", cfg.Sink),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("tidb_dsn", redactDSN(cfg.TiDBDSN)),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.Int("max_retries", cfg.MaxRetries),
	)

	return runner.Run(ctx)
}

func serveMetrics(addr string, logger *zap.Logger) (func(), error) {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("metrics server listening", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
