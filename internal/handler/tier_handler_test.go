package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func getTier(t *testing.T, query string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	router := gin.New()
	router.GET("/tiers", NewTierHandler().Classify)

	req := httptest.NewRequest("GET", "/tiers"+query, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return w, body
}

func TestTierClassify(t *testing.T) {
	tests := []struct {
		revenue string
		tier    string
		display string
	}{
		{"0", "Gold", "$0.00"},
		{"99999999", "Gold", "$100.00M"},
		{"100000000", "Diamond", "$100.00M"},
		{"500000000", "Platinum", "$500.00M"},
		{"1e9", "Super Platinum", "$1.00B"},
	}

	for _, tt := range tests {
		t.Run(tt.revenue, func(t *testing.T) {
			w, body := getTier(t, "?revenue="+tt.revenue)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if body["tier"] != tt.tier {
				t.Errorf("tier = %v, want %s", body["tier"], tt.tier)
			}
			if body["revenue_display"] != tt.display {
				t.Errorf("revenue_display = %v, want %s", body["revenue_display"], tt.display)
			}
		})
	}
}

func TestTierClassify_InvalidRevenue(t *testing.T) {
	for _, q := range []string{"abc", "-1", "NaN", "Inf", ""} {
		w, _ := getTier(t, "?revenue="+q)
		if w.Code != http.StatusBadRequest {
			t.Errorf("revenue=%q: expected 400, got %d", q, w.Code)
		}
	}
}

func TestTierClassify_ListAll(t *testing.T) {
	w, body := getTier(t, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	tiers, ok := body["tiers"].([]any)
	if !ok || len(tiers) != 5 {
		t.Fatalf("expected 5 tiers, got %v", body["tiers"])
	}
	first := tiers[0].(map[string]any)
	if first["tier"] != "Unknown" || first["rank"] != 0.0 {
		t.Errorf("expected Unknown first, got %v", first)
	}
}
