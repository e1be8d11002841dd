package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/model"
)

// Searcher is the single call Finder needs. *Client implements it; tests
// substitute a fake.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]model.SearchResult, error)
}

// TrustedSites are tried in order before falling back to an unscoped query.
// Curated company-data sources are preferred even when a generic search
// would return more hits.
var TrustedSites = []string{
	"rocketreach.co",
	"apollo.io",
	"hunter.io",
	"zoominfo.com",
	"clearbit.com",
	"crunchbase.com",
}

// Hosts skipped when guessing a company's own website.
var nonCompanyHosts = []string{
	"linkedin.com", "facebook.com", "twitter.com", "instagram.com",
	"indeed.com", "glassdoor.com", "crunchbase.com",
}

const (
	trustedSiteCount  = 10
	genericCount      = 15
	maxTrustedResults = 10
	contactCount      = 10
	domainCount       = 5
)

// Finder builds the query strategies used by the pipelines on top of a Searcher.
type Finder struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewFinder wraps a Searcher.
func NewFinder(searcher Searcher, logger *zap.Logger) *Finder {
	return &Finder{searcher: searcher, logger: logger}
}

// strategy is one query attempt in an ordered fallback list.
type strategy struct {
	name   string
	query  string
	count  int
	source model.SourceType
}

// CompanyRevenue searches for revenue information about a company.
//
// Trusted sites are queried one at a time; the first site that returns any
// result wins. If none do, a generic revenue query is used. Errors from
// individual strategies are logged and skipped, so the worst case is an
// empty slice.
func (f *Finder) CompanyRevenue(ctx context.Context, companyName, companyDomain string) ([]model.SearchResult, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, &model.ValidationError{Field: "company_name", Message: "must be a non-empty string"}
	}

	f.logger.Info("searching for revenue information", zap.String("company", companyName))

	for _, s := range revenueStrategies(companyName, strings.TrimSpace(companyDomain)) {
		results, err := f.searcher.Search(ctx, s.query, s.count)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Warn("search strategy failed",
				zap.String("strategy", s.name),
				zap.Error(err),
			)
			continue
		}
		if len(results) == 0 {
			continue
		}

		if s.source == model.SourceTrustedSite && len(results) > maxTrustedResults {
			results = results[:maxTrustedResults]
		}
		for i := range results {
			results[i].SourceType = s.source
		}
		f.logger.Info("search strategy matched",
			zap.String("strategy", s.name),
			zap.Int("results", len(results)),
		)
		return results, nil
	}

	f.logger.Warn("no revenue search results", zap.String("company", companyName))
	return nil, nil
}

func revenueStrategies(companyName, companyDomain string) []strategy {
	domainHint := ""
	if companyDomain != "" {
		domainHint = fmt.Sprintf(" (%s)", companyDomain)
	}

	strategies := make([]strategy, 0, len(TrustedSites)+1)
	for _, site := range TrustedSites {
		strategies = append(strategies, strategy{
			name:   "site:" + site,
			query:  fmt.Sprintf(`site:%s "%s" revenue financial company data%s`, site, companyName, domainHint),
			count:  trustedSiteCount,
			source: model.SourceTrustedSite,
		})
	}
	strategies = append(strategies, strategy{
		name:   "generic",
		query:  fmt.Sprintf(`"%s" annual revenue revenue financial results earnings report%s`, companyName, domainHint),
		count:  genericCount,
		source: model.SourceGenericSearch,
	})
	return strategies
}

// LinkedInProfile searches LinkedIn for a person at a company.
func (f *Finder) LinkedInProfile(ctx context.Context, contactName, companyName string) ([]model.SearchResult, error) {
	query := fmt.Sprintf(`site:linkedin.com "%s" "%s"`, contactName, companyName)
	return f.searcher.Search(ctx, query, contactCount)
}

// AdditionalInfo runs a general profile/bio search for a person.
func (f *Finder) AdditionalInfo(ctx context.Context, contactName, companyName string) ([]model.SearchResult, error) {
	query := fmt.Sprintf(`"%s" "%s" profile bio about`, contactName, companyName)
	return f.searcher.Search(ctx, query, contactCount)
}

// CompanyDomain guesses a company's website domain from an "official
// website" search. It returns "" with a nil error when nothing plausible
// was found.
func (f *Finder) CompanyDomain(ctx context.Context, companyName string) (string, error) {
	results, err := f.searcher.Search(ctx, fmt.Sprintf(`"%s" official website`, companyName), domainCount)
	if err != nil {
		return "", err
	}

	for _, r := range results {
		host := HostOf(r.URL)
		if host == "" || !strings.Contains(host, ".") || isNonCompanyHost(host) {
			continue
		}
		f.logger.Debug("found company domain", zap.String("company", companyName), zap.String("domain", host))
		return host, nil
	}

	f.logger.Warn("could not find company domain", zap.String("company", companyName))
	return "", nil
}

// HostOf returns the lowercased host of rawURL without a leading "www.".
// Bare domains ("example.com") are returned as-is.
func HostOf(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		s = u.Hostname()
	} else if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}

func isNonCompanyHost(host string) bool {
	for _, h := range nonCompanyHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
