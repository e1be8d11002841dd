// Package tier assigns revenue bands to companies. Everything here is a pure
// function of the revenue figure.
package tier

import "fmt"

// Tier is a discrete revenue band label.
type Tier string

const (
	Unknown       Tier = "Unknown"
	Gold          Tier = "Gold"
	Diamond       Tier = "Diamond"
	Platinum      Tier = "Platinum"
	SuperPlatinum Tier = "Super Platinum"
)

// Lower bounds are inclusive and checked from the top down.
const (
	SuperPlatinumFloor = 1_000_000_000
	PlatinumFloor      = 500_000_000
	DiamondFloor       = 100_000_000
)

// All lists every tier from lowest to highest rank.
var All = []Tier{Unknown, Gold, Diamond, Platinum, SuperPlatinum}

var descriptions = map[Tier]string{
	SuperPlatinum: "Annual revenue from operations of $1Bn or more",
	Platinum:      "Annual revenue from operations from $500Mn up to $1Bn",
	Diamond:       "Annual revenue from operations from $100Mn up to $500Mn",
	Gold:          "Annual revenue from operations below $100Mn",
	Unknown:       "Revenue information not available",
}

// Classify maps a revenue figure in USD to its tier. A nil revenue is Unknown.
func Classify(revenueUSD *float64) Tier {
	if revenueUSD == nil {
		return Unknown
	}
	switch r := *revenueUSD; {
	case r >= SuperPlatinumFloor:
		return SuperPlatinum
	case r >= PlatinumFloor:
		return Platinum
	case r >= DiamondFloor:
		return Diamond
	default:
		return Gold
	}
}

// Description returns the human-readable revenue band.
func (t Tier) Description() string {
	if d, ok := descriptions[t]; ok {
		return d
	}
	return "Unknown tier"
}

// Rank orders tiers: Unknown is 0, Super Platinum is highest.
func (t Tier) Rank() int {
	for i, candidate := range All {
		if candidate == t {
			return i
		}
	}
	return -1
}

// FormatRevenue renders a revenue figure for display: $1.50B, $250.00M, $12.00K.
func FormatRevenue(revenueUSD *float64) string {
	if revenueUSD == nil {
		return "Not Available"
	}
	r := *revenueUSD
	switch {
	case r >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", r/1_000_000_000)
	case r >= 1_000_000:
		return fmt.Sprintf("$%.2fM", r/1_000_000)
	case r >= 1_000:
		return fmt.Sprintf("$%.2fK", r/1_000)
	default:
		return fmt.Sprintf("$%.2f", r)
	}
}
