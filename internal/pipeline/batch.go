package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/internal/model"
)

// BatchProcessor handles concurrent checking of multiple items.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-check execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each check.
	// We use a factory to ensure each check gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent checks.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed check results.
	// Access is synchronized via mutex.
	results []*model.CheckResult
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent checks.
// Default is config.DefaultBatchSize if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each check to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// checks and allows for per-check customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultBatchSize,
		results:         make([]*model.CheckResult, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch checks multiple inputs concurrently. Each input may be a
// product URL or a document ID; the pipeline's resolve step handles both.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each input gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all results collected, even for checks that failed.
// The error return indicates whether the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []string) ([]*model.CheckResult, error) {
	bp.logger.Info("starting batch processing",
		"total_items", len(inputs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.CheckResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("checking item",
				"input", input,
				"index", i+1,
				"total", len(inputs),
			)

			// Create the result for this input
			result := model.NewCheckResult(input)

			// Create and execute pipeline
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, result)

			// Store result regardless of error
			// The result contains error information if the check failed
			bp.mu.Lock()
			bp.results[i] = result
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("check failed",
					"input", input,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue other checks
				// The error is recorded on the result
				return nil
			}

			bp.logger.Info("check completed",
				"input", input,
			)

			return nil
		})
	}

	// Wait for all checks to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_items", len(inputs),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback checks multiple inputs and calls a callback
// for each completed check. This is useful for streaming results.
//
// The callback receives the result and the index of the input in the
// original slice. The callback is called from the goroutine that completed
// the check, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	inputs []string,
	callback func(result *model.CheckResult, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_items", len(inputs),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result := model.NewCheckResult(input)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, result) //nolint:errcheck // Error is stored on the result

			// Call the callback with the result
			callback(result, i)

			return nil
		})
	}

	return g.Wait()
}
