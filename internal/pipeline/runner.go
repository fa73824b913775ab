package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fxhashETL/internal/collect"
	"fxhashETL/internal/metrics"
	"fxhashETL/internal/model"
	"fxhashETL/internal/storage"
	"fxhashETL/internal/transform"
)

// RunConfig holds runtime settings for the pipeline.
type RunConfig struct {
	FromDay  string
	ToDay    string
	PageSize int
}

// Source hands out a page fetcher for one calendar day of activity. Records
// stay undecoded until the transform step.
type Source interface {
	ActivityFetcher(date string) collect.FetchFunc[json.RawMessage]
}

// ErrorSink receives records that failed to transform.
type ErrorSink interface {
	PutTransformErrors(ctx context.Context, failures []model.TransformError) error
}

// RunRecorder receives a progress row per processed day.
type RunRecorder interface {
	RecordRun(ctx context.Context, run model.IngestRun) error
}

// Runner collects, transforms and stores fxhash activity one day at a time.
type Runner struct {
	cfg         RunConfig
	source      Source
	transformer *transform.Transformer
	storage     storage.Storage
	errors      ErrorSink
	checkpoint  CheckpointStore
	recorder    RunRecorder
	logger      *zap.Logger
	runID       uuid.UUID
}

// NewRunner builds a Runner with its dependencies. errSink, checkpoint and
// recorder are optional.
func NewRunner(
	cfg RunConfig,
	source Source,
	transformer *transform.Transformer,
	storageSink storage.Storage,
	errSink ErrorSink,
	checkpoint CheckpointStore,
	recorder RunRecorder,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.New()
	return &Runner{
		cfg:         cfg,
		source:      source,
		transformer: transformer,
		storage:     storageSink,
		errors:      errSink,
		checkpoint:  checkpoint,
		recorder:    recorder,
		logger:      logger.With(zap.String("run_id", runID.String())),
		runID:       runID,
	}
}

// RunID identifies this run in logs and ingest_runs.
func (r *Runner) RunID() uuid.UUID {
	return r.runID
}

// Run executes the pipeline over the configured day range. A day whose
// collection fails aborts the run before its checkpoint is written.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("source is nil")
	}
	if r.transformer == nil {
		return fmt.Errorf("transformer is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.PageSize <= 0 {
		return fmt.Errorf("page size must be greater than zero")
	}

	from := r.cfg.FromDay
	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			next, err := NextDay(last)
			if err != nil {
				return fmt.Errorf("checkpoint: %w", err)
			}
			from = next
			r.logger.Info("resume from checkpoint", zap.String("last_processed", last), zap.String("from", from))
		}
	}

	if from > r.cfg.ToDay {
		r.logger.Info("nothing to sync", zap.String("from", from), zap.String("to", r.cfg.ToDay))
		return nil
	}

	days, err := SplitDays(from, r.cfg.ToDay)
	if err != nil {
		return err
	}

	for _, day := range days {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.processDay(ctx, day); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) processDay(ctx context.Context, day string) error {
	startedAt := time.Now().UTC()
	r.logger.Info("collect day", zap.String("day", day), zap.Int("page_size", r.cfg.PageSize))

	events, err := collect.Collect(ctx, r.source.ActivityFetcher(day), r.cfg.PageSize, r.logger)
	if err != nil {
		return fmt.Errorf("collect %s: %w", day, err)
	}
	metrics.EventsCollectedTotal.Add(float64(len(events)))

	txs, failures := r.transformer.TransformRecords(events)

	if err := r.storage.PutTransactions(ctx, txs); err != nil {
		return fmt.Errorf("store transactions %s: %w", day, err)
	}
	metrics.TransactionsStoredTotal.Add(float64(len(txs)))

	if r.errors != nil {
		if err := r.errors.PutTransformErrors(ctx, failures); err != nil {
			return fmt.Errorf("store transform errors %s: %w", day, err)
		}
	}

	if r.checkpoint != nil {
		if err := r.checkpoint.Save(ctx, day); err != nil {
			return err
		}
	}

	if r.recorder != nil {
		run := model.IngestRun{
			RunID:       r.runID,
			Day:         day,
			Collected:   len(events),
			Stored:      len(txs),
			Failed:      len(failures),
			StartedAt:   startedAt,
			CompletedAt: time.Now().UTC(),
		}
		if err := r.recorder.RecordRun(ctx, run); err != nil {
			r.logger.Warn("record run", zap.Error(err), zap.String("day", day))
		}
	}

	metrics.DaysProcessedTotal.Inc()
	r.logger.Info("day complete",
		zap.String("day", day),
		zap.Int("collected", len(events)),
		zap.Int("stored", len(txs)),
		zap.Int("failed", len(failures)),
	)
	return nil
}
