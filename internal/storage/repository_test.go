// Go testing basics:
// - Test files must end with _test.go (they're excluded from production builds)
// - Test functions must start with Test and take *testing.T
// - Run with: go test ./internal/storage/ -v
// - t.Fatal stops the test immediately; t.Error continues to find more failures
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleveque/company-enricher/internal/model"
)

type testDeps struct {
	runs      RunRepository
	companies CompanyResultRepository
	contacts  ContactResultRepository
	calls     ModelCallRepository
}

// setupTestDB creates a temporary SQLite database for testing.
func setupTestDB(t *testing.T) *testDeps {
	t.Helper() // marks this as a helper so error line numbers point to the caller

	// The nested directory checks that NewDatabase creates parents.
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &testDeps{
		runs:      NewRunRepository(db),
		companies: NewCompanyResultRepository(db),
		contacts:  NewContactResultRepository(db),
		calls:     NewModelCallRepository(db),
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestRunRepository_Lifecycle(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	run, err := deps.runs.Start(ctx, model.RunCompanies, "companies.csv", 3)
	if err != nil {
		t.Fatalf("starting run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected a generated run ID")
	}

	if err := deps.runs.Progress(ctx, run.ID, 2); err != nil {
		t.Fatalf("updating progress: %v", err)
	}
	if err := deps.runs.Finish(ctx, run.ID, 2, true); err != nil {
		t.Fatalf("finishing run: %v", err)
	}

	got, err := deps.runs.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("getting run: %v", err)
	}
	if got.Kind != model.RunCompanies || got.Total != 3 || got.Completed != 2 {
		t.Errorf("unexpected run: %+v", got)
	}
	if !got.Interrupted {
		t.Error("expected run to be marked interrupted")
	}
	if got.FinishedAt == nil {
		t.Error("expected finished_at to be set")
	}

	latest, err := deps.runs.Latest(ctx, 10)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if len(latest) != 1 || latest[0].ID != run.ID {
		t.Errorf("unexpected latest runs: %+v", latest)
	}
}

func TestRunRepository_NotFound(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	if _, err := deps.runs.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := deps.runs.Finish(ctx, "missing", 0, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from Finish, got %v", err)
	}
}

func TestCompanyResultRepository_CreateAndList(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	run, err := deps.runs.Start(ctx, model.RunCompanies, "in.csv", 2)
	if err != nil {
		t.Fatalf("starting run: %v", err)
	}

	rows := []*model.CompanyResult{
		{
			RunID:               run.ID,
			CompanyName:         "Acme",
			CompanyDomain:       model.OptionalString("acme.com"),
			CompanyRegion:       "US",
			EstimatedRevenueUSD: floatPtr(2.5e9),
			RevenueDisplay:      "$2.50B",
			Tier:                "Super Platinum",
			TierDescription:     "Annual revenue from operations of $1Bn or more",
			Citation:            "https://x.com (Confidence: high) - 10-K",
			Status:              model.StatusSuccess,
			CreatedAt:           time.Now().UTC(),
		},
		{
			RunID:       run.ID,
			CompanyName: "Unknown Co",
			Tier:        "Unknown",
			Citation:    "Revenue extraction failed: boom",
			Status:      model.StatusFailed,
			CreatedAt:   time.Now().UTC(),
		},
	}
	for _, r := range rows {
		if err := deps.companies.Create(ctx, r); err != nil {
			t.Fatalf("creating result: %v", err)
		}
		if r.ID == 0 {
			t.Error("expected ID to be set after create")
		}
	}

	got, err := deps.companies.ListByRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("listing results: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Domain() != "acme.com" || got[0].EstimatedRevenueUSD == nil || *got[0].EstimatedRevenueUSD != 2.5e9 {
		t.Errorf("unexpected first row: %+v", got[0])
	}
	if got[1].CompanyDomain != nil || got[1].EstimatedRevenueUSD != nil {
		t.Errorf("expected NULL domain and revenue to stay nil: %+v", got[1])
	}

	byTier, err := deps.companies.CountByTier(ctx)
	if err != nil {
		t.Fatalf("counting by tier: %v", err)
	}
	if len(byTier) != 2 {
		t.Errorf("expected 2 tier groups, got %+v", byTier)
	}

	byStatus, err := deps.companies.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("counting by status: %v", err)
	}
	for _, s := range byStatus {
		if s.Count != 1 {
			t.Errorf("expected 1 row for status %s, got %d", s.Status, s.Count)
		}
	}
}

func TestContactResultRepository_FieldsRoundTrip(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	run, err := deps.runs.Start(ctx, model.RunContacts, "contacts.csv", 2)
	if err != nil {
		t.Fatalf("starting run: %v", err)
	}

	found := &model.ContactInfo{
		RunID:           run.ID,
		ContactName:     "Jane Doe",
		CompanyName:     "Acme",
		LinkedInURL:     model.Found("https://linkedin.com/in/jdoe"),
		CurrentJobTitle: model.NotFound(),
		WorkEmail:       model.Found("jane.doe@acme.com"),
		CitationSource:  model.Found("LinkedIn Profile"),
		CreatedAt:       time.Now().UTC(),
	}
	failed := model.FailedContact(model.ContactInput{ContactName: "John Roe", CompanyName: "Acme"}, "timeout")
	failed.RunID = run.ID

	for _, c := range []*model.ContactInfo{found, failed} {
		if err := deps.contacts.Create(ctx, c); err != nil {
			t.Fatalf("creating contact: %v", err)
		}
	}

	got, err := deps.contacts.ListByRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("listing contacts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(got))
	}
	if got[0].LinkedInURL != found.LinkedInURL || got[0].CurrentJobTitle.State != model.FieldNotFound {
		t.Errorf("unexpected stored fields: %+v", got[0])
	}
	// Failure reasons are not stored, only the ERROR marker.
	if !got[1].WorkEmail.IsFailed() || got[1].WorkEmail.String() != model.SentinelError {
		t.Errorf("expected failed work email, got %+v", got[1].WorkEmail)
	}

	count, err := deps.contacts.Count(ctx)
	if err != nil || count != 2 {
		t.Errorf("expected count 2, got %d (%v)", count, err)
	}
}

func TestModelCallRepository(t *testing.T) {
	deps := setupTestDB(t)
	ctx := context.Background()

	kind := string(model.KindTimeout)
	duration := int64(1500)
	calls := []*model.ModelCall{
		{Subject: "Acme", Purpose: "revenue", Provider: "openrouter", Model: "m", Success: true, DurationMs: &duration},
		{Subject: "Acme", Purpose: "revenue", Provider: "openrouter", Model: "m", ErrorKind: &kind},
		{Subject: "Jane Doe", Purpose: "contact", Provider: "anthropic", Model: "c", Success: true},
	}
	for _, c := range calls {
		if err := deps.calls.Create(ctx, c); err != nil {
			t.Fatalf("creating call: %v", err)
		}
	}

	if n, _ := deps.calls.Count(ctx); n != 3 {
		t.Errorf("expected 3 calls, got %d", n)
	}
	if n, _ := deps.calls.CountFailed(ctx); n != 1 {
		t.Errorf("expected 1 failed call, got %d", n)
	}
	if n, _ := deps.calls.CountBySubject(ctx, "Acme"); n != 2 {
		t.Errorf("expected 2 calls for Acme, got %d", n)
	}
}
