package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/storage"
)

// Recorder persists runs and their rows as they complete. Storage errors
// are logged and swallowed: losing the database copy of a row must not
// lose the row from the output files.
type Recorder struct {
	runs      storage.RunRepository
	companies storage.CompanyResultRepository
	contacts  storage.ContactResultRepository
	logger    *zap.Logger
}

// NewRecorder creates a Recorder over the given repositories.
func NewRecorder(
	runs storage.RunRepository,
	companies storage.CompanyResultRepository,
	contacts storage.ContactResultRepository,
	logger *zap.Logger,
) *Recorder {
	return &Recorder{runs: runs, companies: companies, contacts: contacts, logger: logger}
}

// StartRun opens a run. Unlike row recording, failure here is returned:
// without a run ID no row can be stored.
func (r *Recorder) StartRun(ctx context.Context, kind model.RunKind, inputPath string, total int) (*model.Run, error) {
	run, err := r.runs.Start(ctx, kind, inputPath, total)
	if err != nil {
		return nil, err
	}
	r.logger.Info("run started",
		zap.String("run_id", run.ID),
		zap.String("kind", string(kind)),
		zap.Int("total", total),
	)
	return run, nil
}

// Company stores one company row and bumps the run's progress.
func (r *Recorder) Company(ctx context.Context, runID string, completed int, result *model.CompanyResult) {
	result.RunID = runID
	if err := r.companies.Create(context.WithoutCancel(ctx), result); err != nil {
		r.logger.Warn("failed to store company result", zap.String("company", result.CompanyName), zap.Error(err))
		return
	}
	r.progress(ctx, runID, completed)
}

// Contact stores one contact row and bumps the run's progress.
func (r *Recorder) Contact(ctx context.Context, runID string, completed int, info *model.ContactInfo) {
	info.RunID = runID
	if err := r.contacts.Create(context.WithoutCancel(ctx), info); err != nil {
		r.logger.Warn("failed to store contact result", zap.String("contact", info.ContactName), zap.Error(err))
		return
	}
	r.progress(ctx, runID, completed)
}

// FinishRun closes a run. interrupted marks runs stopped by cancellation.
func (r *Recorder) FinishRun(ctx context.Context, runID string, completed int, interrupted bool) {
	if err := r.runs.Finish(context.WithoutCancel(ctx), runID, completed, interrupted); err != nil {
		r.logger.Warn("failed to finish run", zap.String("run_id", runID), zap.Error(err))
		return
	}
	r.logger.Info("run finished",
		zap.String("run_id", runID),
		zap.Int("completed", completed),
		zap.Bool("interrupted", interrupted),
	)
}

func (r *Recorder) progress(ctx context.Context, runID string, completed int) {
	if completed <= 0 {
		return
	}
	if err := r.runs.Progress(context.WithoutCancel(ctx), runID, completed); err != nil {
		r.logger.Warn("failed to update run progress", zap.String("run_id", runID), zap.Error(err))
	}
}
