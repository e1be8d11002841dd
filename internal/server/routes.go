// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/config"
	"github.com/fleveque/company-enricher/internal/handler"
	"github.com/fleveque/company-enricher/internal/middleware"
	"github.com/fleveque/company-enricher/internal/storage"
)

// Deps holds everything the handlers need. cmd/server builds it once.
type Deps struct {
	Companies handler.CompanyAnalyzer
	Contacts  handler.ContactEnricher
	Recorder  handler.ResultRecorder
	APIRunID  string

	Runs          storage.RunRepository
	CompanyRows   storage.CompanyResultRepository
	ContactRows   storage.ContactResultRepository
	ModelCallRepo storage.ModelCallRepository

	Provider string
	Model    string
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
// In Go, we pass dependencies explicitly: no DI container, no magic.
// Each handler gets exactly the dependencies it needs.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler(deps.Provider, deps.Model)
	enrichHandler := handler.NewEnrichHandler(deps.Companies, deps.Contacts, deps.Recorder, deps.APIRunID, logger)
	tierHandler := handler.NewTierHandler()
	adminHandler := handler.NewAdminHandler(deps.Runs, deps.CompanyRows, deps.ContactRows, deps.ModelCallRepo, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	// CORS middleware applies to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Authenticated API endpoints. Each call fans out into paid upstream
	// requests, hence the rate limit.
	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	authed.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		authed.POST("/companies/analyze", enrichHandler.AnalyzeCompany)
		authed.POST("/contacts/enrich", enrichHandler.EnrichContact)
		authed.GET("/tiers", tierHandler.Classify)
	}

	// Admin endpoints (separate auth with admin keys)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/runs", adminHandler.Runs)
		admin.GET("/runs/:id", adminHandler.Run)
	}
}
