package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAnalyzer struct {
	result *model.CompanyResult
	err    error
	got    model.CompanyInput
}

func (f *fakeAnalyzer) AnalyzeResult(_ context.Context, in model.CompanyInput) (*model.CompanyResult, error) {
	f.got = in
	return f.result, f.err
}

type fakeEnricher struct {
	info *model.ContactInfo
	err  error
}

func (f *fakeEnricher) Enrich(context.Context, model.ContactInput) (*model.ContactInfo, error) {
	return f.info, f.err
}

type recorded struct {
	runID     string
	completed int
	company   string
	contact   string
}

type fakeRecorder struct {
	rows []recorded
}

func (f *fakeRecorder) Company(_ context.Context, runID string, completed int, r *model.CompanyResult) {
	f.rows = append(f.rows, recorded{runID: runID, completed: completed, company: r.CompanyName})
}

func (f *fakeRecorder) Contact(_ context.Context, runID string, completed int, i *model.ContactInfo) {
	f.rows = append(f.rows, recorded{runID: runID, completed: completed, contact: i.ContactName})
}

func newEnrichRouter(h *EnrichHandler) *gin.Engine {
	router := gin.New()
	router.POST("/companies/analyze", h.AnalyzeCompany)
	router.POST("/contacts/enrich", h.EnrichContact)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeCompany_Success(t *testing.T) {
	revenue := 250_000_000.0
	analyzer := &fakeAnalyzer{result: &model.CompanyResult{
		CompanyName:         "Acme Corp",
		EstimatedRevenueUSD: &revenue,
		Tier:                "Diamond",
		Status:              model.StatusSuccess,
	}}
	rec := &fakeRecorder{}
	h := NewEnrichHandler(analyzer, &fakeEnricher{}, rec, "run-1", zap.NewNop())

	w := postJSON(newEnrichRouter(h), "/companies/analyze",
		`{"company_name": "Acme Corp", "company_domain": "acme.com", "company_region": "EMEA"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if analyzer.got.Name != "Acme Corp" || analyzer.got.Domain != "acme.com" || analyzer.got.Region != "EMEA" {
		t.Errorf("input not bound: %+v", analyzer.got)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["tier"] != "Diamond" || body["status"] != "success" {
		t.Errorf("unexpected body: %v", body)
	}

	if len(rec.rows) != 1 || rec.rows[0] != (recorded{runID: "run-1", completed: 1, company: "Acme Corp"}) {
		t.Errorf("unexpected recorded rows: %+v", rec.rows)
	}
}

func TestAnalyzeCompany_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"malformed json", `{"company_name":`, nil, http.StatusBadRequest},
		{"validation", `{"company_name": ""}`, &model.ValidationError{Field: "company_name", Message: "must be a non-empty string"}, http.StatusBadRequest},
		{"cancelled", `{"company_name": "Acme"}`, context.Canceled, http.StatusServiceUnavailable},
		{"deadline", `{"company_name": "Acme"}`, context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"unexpected", `{"company_name": "Acme"}`, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			h := NewEnrichHandler(&fakeAnalyzer{err: tt.err}, &fakeEnricher{}, rec, "run-1", zap.NewNop())

			w := postJSON(newEnrichRouter(h), "/companies/analyze", tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
			if len(rec.rows) != 0 {
				t.Errorf("expected nothing recorded, got %+v", rec.rows)
			}
		})
	}
}

func TestEnrichContact_Success(t *testing.T) {
	enricher := &fakeEnricher{info: &model.ContactInfo{
		ContactName:     "Jane Doe",
		CompanyName:     "Acme",
		LinkedInURL:     model.Found("https://linkedin.com/in/janedoe"),
		CurrentJobTitle: model.NotFound(),
		WorkEmail:       model.Failed("domain lookup failed"),
		CitationSource:  model.Found("LinkedIn Profile"),
	}}
	rec := &fakeRecorder{}
	h := NewEnrichHandler(&fakeAnalyzer{}, enricher, rec, "run-1", zap.NewNop())

	w := postJSON(newEnrichRouter(h), "/contacts/enrich", `{"contact_name": "Jane Doe", "company_name": "Acme"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["linkedin_url"] != "https://linkedin.com/in/janedoe" {
		t.Errorf("linkedin_url = %q", body["linkedin_url"])
	}
	if body["current_job_title"] != model.SentinelNotFound {
		t.Errorf("current_job_title = %q", body["current_job_title"])
	}
	if body["work_email"] != model.SentinelError {
		t.Errorf("work_email = %q", body["work_email"])
	}
	if len(rec.rows) != 1 || rec.rows[0].contact != "Jane Doe" {
		t.Errorf("unexpected recorded rows: %+v", rec.rows)
	}
}

func TestEnrich_CompletedCountSharedAcrossKinds(t *testing.T) {
	rec := &fakeRecorder{}
	h := NewEnrichHandler(
		&fakeAnalyzer{result: &model.CompanyResult{CompanyName: "Acme"}},
		&fakeEnricher{info: &model.ContactInfo{ContactName: "Jane"}},
		rec, "run-1", zap.NewNop(),
	)
	router := newEnrichRouter(h)

	postJSON(router, "/companies/analyze", `{"company_name": "Acme"}`)
	postJSON(router, "/contacts/enrich", `{"contact_name": "Jane", "company_name": "Acme"}`)

	if len(rec.rows) != 2 || rec.rows[0].completed != 1 || rec.rows[1].completed != 2 {
		t.Errorf("unexpected progress: %+v", rec.rows)
	}
}

func TestEnrich_NilRecorder(t *testing.T) {
	h := NewEnrichHandler(&fakeAnalyzer{result: &model.CompanyResult{CompanyName: "Acme"}}, &fakeEnricher{}, nil, "", zap.NewNop())

	w := postJSON(newEnrichRouter(h), "/companies/analyze", `{"company_name": "Acme"}`)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
