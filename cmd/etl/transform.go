package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fxhashETL/internal/config"
	"fxhashETL/internal/model"
	"fxhashETL/internal/pipeline"
	"fxhashETL/internal/storage"
	"fxhashETL/internal/transform"
)

func runTransform(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTransform(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	out, err := storage.CreateJsonlWriter(cfg.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	failures, err := storage.CreateJsonlWriter(cfg.Errors)
	if err != nil {
		return err
	}
	defer failures.Close()

	logger.Info("transform start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
	)

	transformer := transform.NewTransformer(transform.StandardDefaults(), logger)
	stats, err := transformStream(cmd.Context(), inputFile, out, failures, transformer)
	if err != nil {
		return err
	}

	// the deferred closes are no-ops once these succeed
	if err := out.Close(); err != nil {
		return err
	}
	if err := failures.Close(); err != nil {
		return err
	}

	logger.Info("transform complete",
		zap.Int("total", stats.total),
		zap.Int("transformed", stats.transformed),
		zap.Int("failed", stats.failed),
	)

	return nil
}

type transformStats struct {
	total       int
	transformed int
	failed      int
}

// transformStream transforms a JSONL dump of raw events one line at a time.
// A line that fails to decode or transform is written to errSink and the
// stream continues; a failed write to either sink stops it.
func transformStream(ctx context.Context, input io.Reader, sink storage.Storage, errSink pipeline.ErrorSink, transformer *transform.Transformer) (transformStats, error) {
	var stats transformStats

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.total++

		event, res := transformer.TransformRecord(line)
		if !res.OK() {
			stats.failed++
			failure := model.NewTransformError(event, res.Err)
			if err := errSink.PutTransformErrors(ctx, []model.TransformError{failure}); err != nil {
				return stats, fmt.Errorf("write transform error at line %d: %w", stats.total, err)
			}
			continue
		}

		if err := sink.PutTransactions(ctx, []model.NormalizedTransaction{*res.Transaction}); err != nil {
			return stats, fmt.Errorf("write transaction at line %d: %w", stats.total, err)
		}
		stats.transformed++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	return stats, nil
}
