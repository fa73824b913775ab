package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fxhashETL/internal/pipeline"
	"fxhashETL/internal/teztok"
)

func main() {
	root := &cobra.Command{
		Use:          "etl",
		Short:        "fxhash activity ETL over the teztok API",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, transform and load fxhash activity by day",
		RunE:  runPipeline,
	}

	runCmd.Flags().String("endpoint", teztok.DefaultEndpoint, "teztok GraphQL endpoint")
	runCmd.Flags().String("from", pipeline.FirstFxhashDay, "first day to collect (YYYY-MM-DD, inclusive)")
	runCmd.Flags().String("to", "", "last day to collect (YYYY-MM-DD, inclusive), empty means yesterday UTC")
	runCmd.Flags().Int("page-size", 500, "events per teztok request")
	runCmd.Flags().String("sink", "jsonl", "transaction sink (jsonl, postgres, tidb)")
	runCmd.Flags().String("out", "./data/transactions.jsonl", "output JSONL path for the jsonl sink")
	runCmd.Flags().String("errors", "./data/transform_errors.jsonl", "transform errors JSONL")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().String("tidb-dsn", "", "TiDB/MySQL DSN")
	runCmd.Flags().Int("tidb-batch-size", 500, "rows per TiDB insert")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 0, "retry attempts per teztok request")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().Duration("request-timeout", 30*time.Second, "teztok request timeout")
	runCmd.Flags().String("metrics-addr", "", "serve /metrics on this address (e.g. :9102)")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	transformCmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform a JSONL dump of raw teztok events",
		RunE:  runTransform,
	}

	transformCmd.Flags().String("in", "", "input raw events JSONL")
	transformCmd.Flags().String("out", "./data/transactions.jsonl", "output transactions JSONL")
	transformCmd.Flags().String("errors", "./data/transform_errors.jsonl", "transform errors JSONL")
	transformCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(transformCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
