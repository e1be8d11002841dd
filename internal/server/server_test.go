package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/config"
	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/storage"
)

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeResult(_ context.Context, in model.CompanyInput) (*model.CompanyResult, error) {
	return &model.CompanyResult{CompanyName: in.Name, Tier: "Unknown", Status: model.StatusPartial}, nil
}

type stubEnricher struct{}

func (stubEnricher) Enrich(_ context.Context, in model.ContactInput) (*model.ContactInfo, error) {
	return &model.ContactInfo{ContactName: in.ContactName, CompanyName: in.CompanyName}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("creating database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Auth.APIKeys = []string{"user-key"}
	cfg.Auth.AdminKeys = []string{"admin-key"}
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.RateLimit.RequestsPerSecond = 100
	cfg.RateLimit.Burst = 100

	deps := Deps{
		Companies:     stubAnalyzer{},
		Contacts:      stubEnricher{},
		Runs:          storage.NewRunRepository(db),
		CompanyRows:   storage.NewCompanyResultRepository(db),
		ContactRows:   storage.NewContactResultRepository(db),
		ModelCallRepo: storage.NewModelCallRepository(db),
		Provider:      "openrouter",
		Model:         "test-model",
	}
	s := New(cfg, deps, zap.NewNop())
	gin.SetMode(gin.TestMode)
	return s
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		key    string
		want   int
	}{
		{"health", "GET", "/healthz", "", "", http.StatusOK},
		{"tiers needs key", "GET", "/api/v1/tiers?revenue=5", "", "", http.StatusUnauthorized},
		{"tiers", "GET", "/api/v1/tiers?revenue=5", "", "user-key", http.StatusOK},
		{"analyze needs key", "POST", "/api/v1/companies/analyze", `{"company_name":"Acme"}`, "", http.StatusUnauthorized},
		{"analyze", "POST", "/api/v1/companies/analyze", `{"company_name":"Acme"}`, "user-key", http.StatusOK},
		{"enrich", "POST", "/api/v1/contacts/enrich", `{"contact_name":"Jane","company_name":"Acme"}`, "user-key", http.StatusOK},
		{"admin rejects user key", "GET", "/api/v1/admin/stats", "", "user-key", http.StatusForbidden},
		{"admin stats", "GET", "/api/v1/admin/stats", "", "admin-key", http.StatusOK},
		{"unknown route", "GET", "/api/v1/does-not-exist", "", "user-key", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			s.Router().ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestHealthzReportsBackend(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	body := w.Body.String()
	for _, want := range []string{`"service":"company-enricher"`, `"provider":"openrouter"`, `"model":"test-model"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
}
