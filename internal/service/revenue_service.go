// Package service contains the core business logic for the enrichment
// pipelines. RevenueService turns one company row into a tiered revenue
// estimate:
//
//	Step 1: Search: trusted company-data sites first, then a generic query
//	Step 2: Model: ask the model to read the hits and answer in JSON
//	Step 3: Extract: pull revenue and citation out of the reply
//	Step 4: Classify: map the revenue onto a tier
//
// Failures past validation never escape Analyze as errors; they are folded
// into the returned analysis so a batch always produces one row per input.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/extract"
	"github.com/fleveque/company-enricher/internal/llm"
	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/search"
	"github.com/fleveque/company-enricher/internal/storage"
	"github.com/fleveque/company-enricher/internal/tier"
)

// promptResultLimit is how many search hits are pasted into the revenue prompt.
const promptResultLimit = 5

// RevenueService analyzes company revenue.
type RevenueService struct {
	finder    *search.Finder
	extractor *extract.Extractor
	audit     *callAuditor
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewRevenueService wires the pipeline. calls may be nil, in which case
// model calls are not audited.
func NewRevenueService(
	finder *search.Finder,
	modelClient llm.Client,
	extractor *extract.Extractor,
	calls storage.ModelCallRepository,
	logger *zap.Logger,
) *RevenueService {
	return &RevenueService{
		finder:    finder,
		extractor: extractor,
		audit:     newCallAuditor(modelClient, calls, logger),
		validate:  newValidator(),
		logger:    logger,
	}
}

// Analyze runs the revenue pipeline for one company.
//
// Only a *model.ValidationError or a context error is returned; every other
// failure produces an analysis with StatusFailed.
func (s *RevenueService) Analyze(ctx context.Context, in model.CompanyInput) (*model.RevenueAnalysis, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Domain = strings.TrimSpace(in.Domain)
	in.Region = strings.TrimSpace(in.Region)

	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}
	if in.Domain != "" && !strings.Contains(in.Domain, ".") {
		s.logger.Warn("company domain looks malformed",
			zap.String("company", in.Name),
			zap.String("domain", in.Domain),
		)
	}

	s.logger.Info("analyzing company", zap.String("company", in.Name))

	analysis := &model.RevenueAnalysis{
		CompanyName:   in.Name,
		CompanyDomain: model.OptionalString(in.Domain),
	}

	searchText, err := s.searchText(ctx, in)
	if err != nil {
		return nil, err
	}
	analysis.SearchSummary = searchText

	reply, err := s.audit.complete(ctx, in.Name, "revenue", []llm.Message{
		llm.User(llm.RevenuePrompt(in.Name, searchText)),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("revenue extraction failed",
			zap.String("company", in.Name),
			zap.Error(err),
		)
		analysis.Citation = "Revenue extraction failed: " + err.Error()
		analysis.Status = model.StatusFailed
		analysis.AnalyzedAt = time.Now().UTC()
		return analysis, nil
	}

	analysis.EstimatedRevenueUSD, analysis.Citation = s.extractor.Revenue(in.Name, reply)
	analysis.Status = model.StatusPartial
	if analysis.EstimatedRevenueUSD != nil {
		analysis.Status = model.StatusSuccess
	}
	analysis.AnalyzedAt = time.Now().UTC()

	s.logger.Info("company analyzed",
		zap.String("company", in.Name),
		zap.String("status", string(analysis.Status)),
		zap.String("revenue", tier.FormatRevenue(analysis.EstimatedRevenueUSD)),
	)
	return analysis, nil
}

// searchText builds the search-results block for the prompt. Search
// trouble is described in the text rather than returned, so the model still
// gets asked (and may answer from its own knowledge).
func (s *RevenueService) searchText(ctx context.Context, in model.CompanyInput) (string, error) {
	results, err := s.finder.CompanyRevenue(ctx, in.Name, in.Domain)
	if err != nil {
		if model.IsValidation(err) || errors.Is(err, ctx.Err()) {
			return "", err
		}
		s.logger.Warn("revenue search failed", zap.String("company", in.Name), zap.Error(err))
		return fmt.Sprintf("Search failed for %s: %v", in.Name, err), nil
	}
	if len(results) == 0 {
		return fmt.Sprintf("No financial information found for %s.", in.Name), nil
	}
	return search.FormatResults(results, promptResultLimit, true), nil
}

// AnalyzeResult runs Analyze and classifies the outcome into an output row.
func (s *RevenueService) AnalyzeResult(ctx context.Context, in model.CompanyInput) (*model.CompanyResult, error) {
	analysis, err := s.Analyze(ctx, in)
	if err != nil {
		return nil, err
	}
	return NewCompanyResult(in, analysis), nil
}

// NewCompanyResult combines an analysis with the input's region and a tier.
func NewCompanyResult(in model.CompanyInput, analysis *model.RevenueAnalysis) *model.CompanyResult {
	t := tier.Classify(analysis.EstimatedRevenueUSD)
	return &model.CompanyResult{
		CompanyName:         analysis.CompanyName,
		CompanyDomain:       analysis.CompanyDomain,
		CompanyRegion:       strings.TrimSpace(in.Region),
		EstimatedRevenueUSD: analysis.EstimatedRevenueUSD,
		RevenueDisplay:      tier.FormatRevenue(analysis.EstimatedRevenueUSD),
		Tier:                string(t),
		TierDescription:     t.Description(),
		Citation:            analysis.Citation,
		Status:              analysis.Status,
		CreatedAt:           analysis.AnalyzedAt,
	}
}

// FailedCompanyResult is the row recorded when a company could not be
// analyzed at all (for example, it failed validation).
func FailedCompanyResult(in model.CompanyInput, err error) *model.CompanyResult {
	return &model.CompanyResult{
		CompanyName:     strings.TrimSpace(in.Name),
		CompanyDomain:   model.OptionalString(strings.TrimSpace(in.Domain)),
		CompanyRegion:   strings.TrimSpace(in.Region),
		RevenueDisplay:  tier.FormatRevenue(nil),
		Tier:            string(tier.Unknown),
		TierDescription: tier.Unknown.Description(),
		Citation:        "Processing error: " + err.Error(),
		Status:          model.StatusFailed,
		CreatedAt:       time.Now().UTC(),
	}
}
