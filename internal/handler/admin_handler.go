package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/storage"
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	runs      storage.RunRepository
	companies storage.CompanyResultRepository
	contacts  storage.ContactResultRepository
	calls     storage.ModelCallRepository
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	runs storage.RunRepository,
	companies storage.CompanyResultRepository,
	contacts storage.ContactResultRepository,
	calls storage.ModelCallRepository,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		runs:      runs,
		companies: companies,
		contacts:  contacts,
		calls:     calls,
		logger:    logger,
	}
}

// Stats returns row counts, tier and status breakdowns, model call usage
// and the most recent runs.
// Route: GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	companies, err := h.companies.Count(ctx)
	if err != nil {
		h.internalError(c, "counting companies", err)
		return
	}

	byTier, err := h.companies.CountByTier(ctx)
	if err != nil {
		h.internalError(c, "counting companies by tier", err)
		return
	}

	byStatus, err := h.companies.CountByStatus(ctx)
	if err != nil {
		h.internalError(c, "counting companies by status", err)
		return
	}

	contacts, err := h.contacts.Count(ctx)
	if err != nil {
		h.internalError(c, "counting contacts", err)
		return
	}

	calls, err := h.calls.Count(ctx)
	if err != nil {
		h.internalError(c, "counting model calls", err)
		return
	}

	failedCalls, err := h.calls.CountFailed(ctx)
	if err != nil {
		h.internalError(c, "counting failed model calls", err)
		return
	}

	runs, err := h.runs.Latest(ctx, 10)
	if err != nil {
		h.internalError(c, "listing runs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"companies": gin.H{
			"total":     companies,
			"by_tier":   byTier,
			"by_status": byStatus,
		},
		"contacts": gin.H{
			"total": contacts,
		},
		"model_calls": gin.H{
			"total":  calls,
			"failed": failedCalls,
		},
		"recent_runs": runs,
	})
}

// Runs lists the most recent runs.
// Route: GET /api/v1/admin/runs?limit=20
func (h *AdminHandler) Runs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
		return
	}

	runs, err := h.runs.Latest(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "listing runs", err)
		return
	}
	if runs == nil {
		runs = []model.Run{} // render [] rather than null
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Run returns one run and every row stored against it.
// Route: GET /api/v1/admin/runs/:id
func (h *AdminHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	run, err := h.runs.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		h.internalError(c, "loading run", err)
		return
	}

	body := gin.H{"run": run}

	// API runs hold both row types; batch runs hold one.
	if run.Kind == model.RunCompanies || run.Kind == model.RunAPI {
		rows, err := h.companies.ListByRun(ctx, id)
		if err != nil {
			h.internalError(c, "listing company results", err)
			return
		}
		body["companies"] = rows
	}
	if run.Kind == model.RunContacts || run.Kind == model.RunAPI {
		rows, err := h.contacts.ListByRun(ctx, id)
		if err != nil {
			h.internalError(c, "listing contact results", err)
			return
		}
		body["contacts"] = rows
	}

	c.JSON(http.StatusOK, body)
}

func (h *AdminHandler) internalError(c *gin.Context, what string, err error) {
	h.logger.Error(what, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
