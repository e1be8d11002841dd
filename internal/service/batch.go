package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/backoff"
)

// Runner processes rows one at a time with a fixed pause between them.
//
// A row that fails becomes a failure record, so N inputs always produce N
// outputs unless the context is cancelled. On cancellation Run stops and
// returns the rows completed so far together with the context error.
type Runner[In, Out any] struct {
	delay  time.Duration
	sleep  backoff.SleepFunc
	logger *zap.Logger
}

// NewRunner creates a Runner that waits delay between rows.
func NewRunner[In, Out any](delay time.Duration, logger *zap.Logger) *Runner[In, Out] {
	return &Runner[In, Out]{
		delay:  delay,
		sleep:  backoff.Sleep,
		logger: logger,
	}
}

// WithSleep replaces the inter-row pause, which tests use to avoid delays.
func (r *Runner[In, Out]) WithSleep(sleep backoff.SleepFunc) *Runner[In, Out] {
	r.sleep = sleep
	return r
}

// Run processes rows in order. onFailure converts a row error into that
// row's output. onResult, if set, sees every output as soon as it exists.
func (r *Runner[In, Out]) Run(
	ctx context.Context,
	rows []In,
	process func(context.Context, In) (Out, error),
	onFailure func(In, error) Out,
	onResult func(index int, out Out),
) ([]Out, error) {
	results := make([]Out, 0, len(rows))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("batch interrupted", zap.Int("completed", len(results)), zap.Int("total", len(rows)))
			return results, err
		}

		r.logger.Info("processing row", zap.Int("row", i+1), zap.Int("total", len(rows)))

		out, err := process(ctx, row)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				r.logger.Warn("batch interrupted", zap.Int("completed", len(results)), zap.Int("total", len(rows)))
				return results, ctxErr
			}
			r.logger.Error("row failed", zap.Int("row", i+1), zap.Error(err))
			out = onFailure(row, err)
		}

		results = append(results, out)
		if onResult != nil {
			onResult(i, out)
		}

		if i < len(rows)-1 && r.delay > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				r.logger.Warn("batch interrupted", zap.Int("completed", len(results)), zap.Int("total", len(rows)))
				return results, err
			}
		}
	}

	return results, nil
}
