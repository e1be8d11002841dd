package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/storage"
)

func TestRecorder_PersistsRunAndRows(t *testing.T) {
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	runs := storage.NewRunRepository(db)
	companies := storage.NewCompanyResultRepository(db)
	rec := NewRecorder(runs, companies, storage.NewContactResultRepository(db), zap.NewNop())
	ctx := context.Background()

	run, err := rec.StartRun(ctx, model.RunCompanies, "in.csv", 2)
	if err != nil {
		t.Fatalf("starting run: %v", err)
	}

	rec.Company(ctx, run.ID, 1, &model.CompanyResult{
		CompanyName: "Acme", Tier: "Gold", Status: model.StatusSuccess, CreatedAt: time.Now().UTC(),
	})
	rec.FinishRun(ctx, run.ID, 1, true)

	got, err := runs.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("getting run: %v", err)
	}
	if got.Completed != 1 || !got.Interrupted {
		t.Errorf("unexpected run state: %+v", got)
	}

	rows, err := companies.ListByRun(ctx, run.ID)
	if err != nil || len(rows) != 1 || rows[0].RunID != run.ID {
		t.Errorf("expected one stored row for the run, got %+v (%v)", rows, err)
	}
}
