package handler

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/model"
)

// Handlers depend on these small interfaces rather than the concrete
// services, so tests can pass fakes. In Go, interfaces are satisfied
// implicitly: *service.RevenueService never mentions CompanyAnalyzer.

// CompanyAnalyzer runs the revenue pipeline for one company.
type CompanyAnalyzer interface {
	AnalyzeResult(ctx context.Context, in model.CompanyInput) (*model.CompanyResult, error)
}

// ContactEnricher runs the contact pipeline for one person.
type ContactEnricher interface {
	Enrich(ctx context.Context, in model.ContactInput) (*model.ContactInfo, error)
}

// ResultRecorder stores rows produced by API calls.
type ResultRecorder interface {
	Company(ctx context.Context, runID string, completed int, result *model.CompanyResult)
	Contact(ctx context.Context, runID string, completed int, info *model.ContactInfo)
}

// EnrichHandler exposes the single-row pipelines over HTTP.
//
// Every row is stored against one long-lived "api" run that the server opens
// at startup, so API traffic shows up in admin stats like batch rows do.
type EnrichHandler struct {
	companies CompanyAnalyzer
	contacts  ContactEnricher
	recorder  ResultRecorder
	runID     string
	completed atomic.Int64
	logger    *zap.Logger
}

// NewEnrichHandler creates an EnrichHandler. recorder may be nil, in which
// case nothing is persisted.
func NewEnrichHandler(
	companies CompanyAnalyzer,
	contacts ContactEnricher,
	recorder ResultRecorder,
	runID string,
	logger *zap.Logger,
) *EnrichHandler {
	return &EnrichHandler{
		companies: companies,
		contacts:  contacts,
		recorder:  recorder,
		runID:     runID,
		logger:    logger,
	}
}

// AnalyzeCompany estimates one company's revenue and tier.
// Route: POST /api/v1/companies/analyze
//
// A failed pipeline step still answers 200 with status "failed" in the body;
// only bad input is a 4xx.
func (h *EnrichHandler) AnalyzeCompany(c *gin.Context) {
	var in model.CompanyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	result, err := h.companies.AnalyzeResult(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "company analysis", err)
		return
	}

	if h.recorder != nil && h.runID != "" {
		h.recorder.Company(c.Request.Context(), h.runID, int(h.completed.Add(1)), result)
	}
	c.JSON(http.StatusOK, result)
}

// EnrichContact finds a contact's profile, title and work email.
// Route: POST /api/v1/contacts/enrich
func (h *EnrichHandler) EnrichContact(c *gin.Context) {
	var in model.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	info, err := h.contacts.Enrich(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "contact enrichment", err)
		return
	}

	if h.recorder != nil && h.runID != "" {
		h.recorder.Contact(c.Request.Context(), h.runID, int(h.completed.Add(1)), info)
	}
	c.JSON(http.StatusOK, info)
}

// fail maps the only errors the services return to a status code.
func (h *EnrichHandler) fail(c *gin.Context, what string, err error) {
	var vErr *model.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Info(what+" cancelled", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		h.logger.Error(what+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
