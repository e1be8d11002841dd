package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/llm"
	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/storage"
)

// callAuditor times model calls and records each one to the model_calls
// table. Recording is best effort: a storage error is logged, never returned.
type callAuditor struct {
	client llm.Client
	calls  storage.ModelCallRepository
	logger *zap.Logger
}

func newCallAuditor(client llm.Client, calls storage.ModelCallRepository, logger *zap.Logger) *callAuditor {
	return &callAuditor{client: client, calls: calls, logger: logger}
}

func (a *callAuditor) complete(ctx context.Context, subject, purpose string, messages []llm.Message) (string, error) {
	start := time.Now()
	reply, err := a.client.Complete(ctx, messages)
	durationMs := time.Since(start).Milliseconds()

	if a.calls == nil {
		return reply, err
	}

	call := &model.ModelCall{
		Subject:    subject,
		Purpose:    purpose,
		Provider:   a.client.ProviderName(),
		Model:      a.client.ModelName(),
		Success:    err == nil,
		DurationMs: &durationMs,
	}
	if err != nil {
		kind := "unknown"
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			kind = string(apiErr.Kind)
		}
		call.ErrorKind = &kind
	}

	// The call context may already be cancelled; the audit row should still land.
	if recErr := a.calls.Create(context.WithoutCancel(ctx), call); recErr != nil {
		a.logger.Warn("failed to record model call",
			zap.String("subject", subject),
			zap.Error(recErr),
		)
	}
	return reply, err
}
