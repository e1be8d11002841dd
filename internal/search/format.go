package search

import (
	"fmt"
	"strings"

	"github.com/fleveque/company-enricher/internal/model"
)

// FormatResults renders up to limit results as the numbered block that is
// pasted into model prompts. withDate adds the published date line.
func FormatResults(results []model.SearchResult, limit int, withDate bool) string {
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, orDefault(r.Title, "No title"))
		fmt.Fprintf(&sb, "   URL: %s\n", orDefault(r.URL, "No URL"))
		fmt.Fprintf(&sb, "   Description: %s\n", orDefault(r.Description, "No description"))
		if withDate {
			fmt.Fprintf(&sb, "   Published: %s\n", orDefault(r.PublishedDate, "Unknown"))
		}
	}
	return sb.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
