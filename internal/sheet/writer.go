package sheet

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/tier"
)

var companyColumns = []string{
	"company_name", "company_domain", "company_region", "estimated_revenue_usd",
	"revenue_display", "tier", "tier_description", "citation", "status", "analyzed_at",
}

var contactColumns = []string{
	"contact_name", "company_name", "linkedin_url", "current_job_title", "work_email", "citation_source",
}

// DefaultPrefix derives the output prefix from the input path: the input's
// directory and stem plus suffix, e.g. data/leads.csv → data/leads_analyzed.
func DefaultPrefix(inputPath, suffix string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(filepath.Dir(inputPath), stem+suffix)
}

// CompaniesCSV renders company results with one row per input company.
func CompaniesCSV(results []*model.CompanyResult) ([]byte, error) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		revenue := ""
		if r.EstimatedRevenueUSD != nil {
			revenue = strconv.FormatFloat(*r.EstimatedRevenueUSD, 'f', -1, 64)
		}
		rows = append(rows, []string{
			r.CompanyName, r.Domain(), r.CompanyRegion, revenue,
			r.RevenueDisplay, r.Tier, r.TierDescription, r.Citation, string(r.Status),
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return encodeCSV(companyColumns, rows)
}

// ContactsCSV renders contact results; fields use their NOT_FOUND/ERROR form.
func ContactsCSV(infos []*model.ContactInfo) ([]byte, error) {
	rows := make([][]string, 0, len(infos))
	for _, c := range infos {
		rows = append(rows, []string{
			c.ContactName, c.CompanyName, c.LinkedInURL.String(),
			c.CurrentJobTitle.String(), c.WorkEmail.String(), c.CitationSource.String(),
		})
	}
	return encodeCSV(contactColumns, rows)
}

func encodeCSV(cols []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cols); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("writing csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON renders any result slice as indented JSON.
func JSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return append(data, '\n'), nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// CompanySummary renders counts by tier and status, the success rate and
// the tier definitions.
func CompanySummary(results []*model.CompanyResult, interrupted bool) string {
	total := len(results)
	byTier := make(map[string]int)
	byStatus := make(map[model.AnalysisStatus]int)
	withRevenue := 0
	for _, r := range results {
		byTier[r.Tier]++
		byStatus[r.Status]++
		if r.EstimatedRevenueUSD != nil {
			withRevenue++
		}
	}

	var sb strings.Builder
	sb.WriteString("COMPANY REVENUE ANALYSIS SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	if interrupted {
		sb.WriteString("NOTE: run was interrupted; partial results only\n\n")
	}
	fmt.Fprintf(&sb, "Total Companies Processed: %d\n", total)
	fmt.Fprintf(&sb, "Companies with Revenue Data: %d\n", withRevenue)
	fmt.Fprintf(&sb, "Success Rate: %.1f%%\n\n", percent(withRevenue, total))

	sb.WriteString("TIER DISTRIBUTION:\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	for i := len(tier.All) - 1; i >= 0; i-- {
		name := string(tier.All[i])
		if n := byTier[name]; n > 0 {
			fmt.Fprintf(&sb, "%s: %d companies (%.1f%%)\n", name, n, percent(n, total))
		}
	}

	sb.WriteString("\nSTATUS BREAKDOWN:\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	for _, s := range []model.AnalysisStatus{model.StatusSuccess, model.StatusPartial, model.StatusFailed} {
		fmt.Fprintf(&sb, "%s: %d\n", s, byStatus[s])
	}

	sb.WriteString("\nTIER DEFINITIONS:\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	for i := len(tier.All) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%s: %s\n", tier.All[i], tier.All[i].Description())
	}
	return sb.String()
}

// ContactSummary renders found / not found / failed counts per field.
func ContactSummary(infos []*model.ContactInfo, interrupted bool) string {
	fields := []struct {
		name string
		get  func(*model.ContactInfo) model.Field
	}{
		{"LinkedIn URL", func(c *model.ContactInfo) model.Field { return c.LinkedInURL }},
		{"Current Job Title", func(c *model.ContactInfo) model.Field { return c.CurrentJobTitle }},
		{"Work Email", func(c *model.ContactInfo) model.Field { return c.WorkEmail }},
	}

	var sb strings.Builder
	sb.WriteString("CONTACT ENRICHMENT SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	if interrupted {
		sb.WriteString("NOTE: run was interrupted; partial results only\n\n")
	}
	fmt.Fprintf(&sb, "Total Contacts Processed: %d\n\n", len(infos))

	for _, f := range fields {
		var found, notFound, failed int
		for _, c := range infos {
			switch v := f.get(c); {
			case v.IsFound():
				found++
			case v.IsFailed():
				failed++
			default:
				notFound++
			}
		}
		fmt.Fprintf(&sb, "%s: %d found (%.1f%%), %d not found, %d failed\n",
			f.name, found, percent(found, len(infos)), notFound, failed)
	}
	return sb.String()
}
