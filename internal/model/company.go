// Package model defines the core data types for the enrichment pipeline.
// Struct tags map fields for sqlx (`db:"..."`), JSON output (`json:"..."`)
// and input validation (`validate:"..."`).
package model

import "time"

// AnalysisStatus is the outcome of a single company revenue analysis.
type AnalysisStatus string

const (
	StatusSuccess AnalysisStatus = "success" // revenue figure extracted
	StatusPartial AnalysisStatus = "partial" // model answered, no usable revenue
	StatusFailed  AnalysisStatus = "failed"  // a pipeline step failed
)

// SourceType records which search strategy produced a result.
type SourceType string

const (
	SourceTrustedSite   SourceType = "trusted_site"
	SourceGenericSearch SourceType = "generic_search"
)

// SearchResult is one web search hit. It only feeds prompt construction.
type SearchResult struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Description   string     `json:"description"`
	PublishedDate string     `json:"published_date,omitempty"`
	SourceType    SourceType `json:"source_type,omitempty"`
}

// CompanyInput is one input row for revenue analysis.
type CompanyInput struct {
	Name   string `json:"company_name" validate:"required,min=2"`
	Domain string `json:"company_domain"`
	Region string `json:"company_region"`
}

// RevenueAnalysis is the terminal output of the revenue pipeline for one company.
// It is built once and never modified afterwards.
type RevenueAnalysis struct {
	CompanyName         string         `json:"company_name"`
	CompanyDomain       *string        `json:"company_domain,omitempty"`
	EstimatedRevenueUSD *float64       `json:"estimated_revenue_usd"`
	Citation            string         `json:"citation"`
	Status              AnalysisStatus `json:"status"`
	SearchSummary       string         `json:"search_results,omitempty"`
	AnalyzedAt          time.Time      `json:"analyzed_at"`
}

// CompanyResult is a RevenueAnalysis plus its tier classification, i.e. one
// output row. It is what gets written to CSV/JSON and stored in SQLite.
type CompanyResult struct {
	ID                  int64          `db:"id" json:"-"`
	RunID               string         `db:"run_id" json:"-"`
	CompanyName         string         `db:"company_name" json:"company_name"`
	CompanyDomain       *string        `db:"company_domain" json:"company_domain"`
	CompanyRegion       string         `db:"company_region" json:"company_region"`
	EstimatedRevenueUSD *float64       `db:"estimated_revenue_usd" json:"estimated_revenue_usd"`
	RevenueDisplay      string         `db:"revenue_display" json:"revenue_display"`
	Tier                string         `db:"tier" json:"tier"`
	TierDescription     string         `db:"tier_description" json:"tier_description"`
	Citation            string         `db:"citation" json:"citation"`
	Status              AnalysisStatus `db:"status" json:"status"`
	CreatedAt           time.Time      `db:"created_at" json:"analyzed_at"`
}

// Domain returns the company domain or "" when absent.
func (r *CompanyResult) Domain() string {
	if r.CompanyDomain == nil {
		return ""
	}
	return *r.CompanyDomain
}

// OptionalString returns nil for blank strings so absent values stay absent.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
