package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/backoff"
	"github.com/fleveque/company-enricher/internal/model"
)

// RetryPolicy bounds how often a transient failure is retried.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before attempt n+1 is BaseDelay * 2^n
}

// DefaultRetryPolicy is three attempts with 1s and 2s pauses between them.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}

// RetryingClient decorates a Client with exponential backoff. Only transient
// kinds (timeouts, connection failures, 429 and 5xx) are retried; everything
// else is returned on the first attempt.
type RetryingClient struct {
	next   Client
	policy RetryPolicy
	sleep  backoff.SleepFunc
	logger *zap.Logger
}

// NewRetryingClient wraps next. Non-positive policy values fall back to
// DefaultRetryPolicy.
func NewRetryingClient(next Client, policy RetryPolicy, logger *zap.Logger) *RetryingClient {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	return &RetryingClient{
		next:   next,
		policy: policy,
		sleep:  backoff.Sleep,
		logger: logger,
	}
}

// WithSleep replaces the backoff sleep, which tests use to record delays.
func (r *RetryingClient) WithSleep(sleep backoff.SleepFunc) *RetryingClient {
	r.sleep = sleep
	return r
}

func (r *RetryingClient) ProviderName() string { return r.next.ProviderName() }
func (r *RetryingClient) ModelName() string    { return r.next.ModelName() }

func (r *RetryingClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := validateMessages(messages); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		content, err := r.next.Complete(ctx, messages)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !model.IsTransient(err) {
			return "", err
		}
		if attempt == r.policy.MaxAttempts-1 {
			break
		}

		delay := backoff.Exponential(r.policy.BaseDelay, attempt)
		r.logger.Warn("model call failed, retrying",
			zap.String("provider", r.next.ProviderName()),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", r.policy.MaxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	r.logger.Error("model call failed after retries",
		zap.String("provider", r.next.ProviderName()),
		zap.Int("attempts", r.policy.MaxAttempts),
		zap.Error(lastErr),
	)
	return "", fmt.Errorf("model call failed after %d attempts: %w", r.policy.MaxAttempts, lastErr)
}
