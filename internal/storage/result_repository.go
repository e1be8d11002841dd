package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/company-enricher/internal/model"
)

// TierCount is one row of the per-tier breakdown.
type TierCount struct {
	Tier  string `db:"tier" json:"tier"`
	Count int64  `db:"count" json:"count"`
}

// StatusCount is one row of the per-status breakdown.
type StatusCount struct {
	Status model.AnalysisStatus `db:"status" json:"status"`
	Count  int64                `db:"count" json:"count"`
}

// CompanyResultRepository persists analyzed companies.
type CompanyResultRepository interface {
	Create(ctx context.Context, result *model.CompanyResult) error
	ListByRun(ctx context.Context, runID string) ([]model.CompanyResult, error)
	Count(ctx context.Context) (int64, error)
	CountByTier(ctx context.Context) ([]TierCount, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type sqliteCompanyResultRepository struct {
	db *sqlx.DB
}

// NewCompanyResultRepository creates a new SQLite-backed CompanyResultRepository.
func NewCompanyResultRepository(db *sqlx.DB) CompanyResultRepository {
	return &sqliteCompanyResultRepository{db: db}
}

func (r *sqliteCompanyResultRepository) Create(ctx context.Context, result *model.CompanyResult) error {
	// NamedExecContext uses the struct's `db:` tags to map fields to :named placeholders.
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO company_results (
			run_id, company_name, company_domain, company_region, estimated_revenue_usd,
			revenue_display, tier, tier_description, citation, status, created_at
		) VALUES (
			:run_id, :company_name, :company_domain, :company_region, :estimated_revenue_usd,
			:revenue_display, :tier, :tier_description, :citation, :status, :created_at
		)
	`, result)
	if err != nil {
		return fmt.Errorf("creating company result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	result.ID = id
	return nil
}

func (r *sqliteCompanyResultRepository) ListByRun(ctx context.Context, runID string) ([]model.CompanyResult, error) {
	var results []model.CompanyResult
	err := r.db.SelectContext(ctx, &results,
		"SELECT * FROM company_results WHERE run_id = ? ORDER BY id ASC", runID)
	if err != nil {
		return nil, fmt.Errorf("listing company results for run %s: %w", runID, err)
	}
	return results, nil
}

func (r *sqliteCompanyResultRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM company_results")
	return count, err
}

func (r *sqliteCompanyResultRepository) CountByTier(ctx context.Context) ([]TierCount, error) {
	var counts []TierCount
	err := r.db.SelectContext(ctx, &counts,
		"SELECT tier, COUNT(*) AS count FROM company_results GROUP BY tier ORDER BY tier")
	if err != nil {
		return nil, fmt.Errorf("counting company results by tier: %w", err)
	}
	return counts, nil
}

func (r *sqliteCompanyResultRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.SelectContext(ctx, &counts,
		"SELECT status, COUNT(*) AS count FROM company_results GROUP BY status ORDER BY status")
	if err != nil {
		return nil, fmt.Errorf("counting company results by status: %w", err)
	}
	return counts, nil
}

// ContactResultRepository persists enriched contacts. Fields are stored in
// their rendered form (value, NOT_FOUND or ERROR).
type ContactResultRepository interface {
	Create(ctx context.Context, info *model.ContactInfo) error
	ListByRun(ctx context.Context, runID string) ([]model.ContactInfo, error)
	Count(ctx context.Context) (int64, error)
}

type sqliteContactResultRepository struct {
	db *sqlx.DB
}

// NewContactResultRepository creates a new SQLite-backed ContactResultRepository.
func NewContactResultRepository(db *sqlx.DB) ContactResultRepository {
	return &sqliteContactResultRepository{db: db}
}

func (r *sqliteContactResultRepository) Create(ctx context.Context, info *model.ContactInfo) error {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO contact_results (
			run_id, contact_name, company_name, linkedin_url,
			current_job_title, work_email, citation_source, created_at
		) VALUES (
			:run_id, :contact_name, :company_name, :linkedin_url,
			:current_job_title, :work_email, :citation_source, :created_at
		)
	`, info)
	if err != nil {
		return fmt.Errorf("creating contact result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	info.ID = id
	return nil
}

func (r *sqliteContactResultRepository) ListByRun(ctx context.Context, runID string) ([]model.ContactInfo, error) {
	var infos []model.ContactInfo
	err := r.db.SelectContext(ctx, &infos,
		"SELECT * FROM contact_results WHERE run_id = ? ORDER BY id ASC", runID)
	if err != nil {
		return nil, fmt.Errorf("listing contact results for run %s: %w", runID, err)
	}
	return infos, nil
}

func (r *sqliteContactResultRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM contact_results")
	return count, err
}
