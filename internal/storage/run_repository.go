package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fleveque/company-enricher/internal/model"
)

// ErrNotFound is returned when a requested row doesn't exist.
// Callers check with errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("not found")

// RunRepository tracks batch runs. Rows are attached to a run as they
// complete, so Finish is the only call an interrupted run may miss.
type RunRepository interface {
	Start(ctx context.Context, kind model.RunKind, inputPath string, total int) (*model.Run, error)
	Progress(ctx context.Context, runID string, completed int) error
	Finish(ctx context.Context, runID string, completed int, interrupted bool) error
	Get(ctx context.Context, runID string) (*model.Run, error)
	Latest(ctx context.Context, limit int) ([]model.Run, error)
}

type sqliteRunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new SQLite-backed RunRepository.
func NewRunRepository(db *sqlx.DB) RunRepository {
	return &sqliteRunRepository{db: db}
}

func (r *sqliteRunRepository) Start(ctx context.Context, kind model.RunKind, inputPath string, total int) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		InputPath: inputPath,
		Total:     total,
		StartedAt: time.Now().UTC(),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, kind, input_path, total, started_at)
		VALUES (:id, :kind, :input_path, :total, :started_at)
	`, run)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	return run, nil
}

func (r *sqliteRunRepository) Progress(ctx context.Context, runID string, completed int) error {
	_, err := r.db.ExecContext(ctx, "UPDATE runs SET completed = ? WHERE id = ?", completed, runID)
	if err != nil {
		return fmt.Errorf("updating run %s progress: %w", runID, err)
	}
	return nil
}

func (r *sqliteRunRepository) Finish(ctx context.Context, runID string, completed int, interrupted bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE runs SET completed = ?, interrupted = ?, finished_at = ? WHERE id = ?",
		completed, interrupted, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRunRepository) Get(ctx context.Context, runID string) (*model.Run, error) {
	var run model.Run
	err := r.db.GetContext(ctx, &run, "SELECT * FROM runs WHERE id = ?", runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", runID, err)
	}
	return &run, nil
}

func (r *sqliteRunRepository) Latest(ctx context.Context, limit int) ([]model.Run, error) {
	var runs []model.Run
	err := r.db.SelectContext(ctx, &runs, "SELECT * FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}
