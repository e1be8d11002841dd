package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fleveque/company-enricher/internal/tier"
)

// TierHandler exposes the tier bands. It has no dependencies: tiers are a
// pure function of revenue.
type TierHandler struct{}

func NewTierHandler() *TierHandler {
	return &TierHandler{}
}

type tierResponse struct {
	Tier           string   `json:"tier"`
	Description    string   `json:"description"`
	Rank           int      `json:"rank"`
	RevenueUSD     *float64 `json:"revenue_usd,omitempty"`
	RevenueDisplay string   `json:"revenue_display,omitempty"`
}

// Classify returns the tier for a revenue figure, or every tier when no
// figure is given.
// Route: GET /api/v1/tiers?revenue=250000000
func (h *TierHandler) Classify(c *gin.Context) {
	raw, ok := c.GetQuery("revenue")
	if !ok {
		all := make([]tierResponse, 0, len(tier.All))
		for _, t := range tier.All {
			all = append(all, tierResponse{Tier: string(t), Description: t.Description(), Rank: t.Rank()})
		}
		c.JSON(http.StatusOK, gin.H{"tiers": all})
		return
	}

	revenue, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(revenue) || math.IsInf(revenue, 0) || revenue < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "revenue must be a non-negative number of USD",
		})
		return
	}

	t := tier.Classify(&revenue)
	c.JSON(http.StatusOK, tierResponse{
		Tier:           string(t),
		Description:    t.Description(),
		Rank:           t.Rank(),
		RevenueUSD:     &revenue,
		RevenueDisplay: tier.FormatRevenue(&revenue),
	})
}
