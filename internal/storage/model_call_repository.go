package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/company-enricher/internal/model"
)

// ModelCallRepository records every model call for cost monitoring.
type ModelCallRepository interface {
	Create(ctx context.Context, call *model.ModelCall) error
	Count(ctx context.Context) (int64, error)
	CountFailed(ctx context.Context) (int64, error)
	CountBySubject(ctx context.Context, subject string) (int64, error)
}

type sqliteModelCallRepository struct {
	db *sqlx.DB
}

// NewModelCallRepository creates a new SQLite-backed ModelCallRepository.
func NewModelCallRepository(db *sqlx.DB) ModelCallRepository {
	return &sqliteModelCallRepository{db: db}
}

func (r *sqliteModelCallRepository) Create(ctx context.Context, call *model.ModelCall) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO model_calls (subject, purpose, provider, model, success, error_kind, duration_ms)
		VALUES (:subject, :purpose, :provider, :model, :success, :error_kind, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating model call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteModelCallRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM model_calls")
	return count, err
}

func (r *sqliteModelCallRepository) CountFailed(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM model_calls WHERE success = 0")
	return count, err
}

func (r *sqliteModelCallRepository) CountBySubject(ctx context.Context, subject string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM model_calls WHERE subject = ?", subject)
	return count, err
}
