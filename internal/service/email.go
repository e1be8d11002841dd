package service

import (
	"regexp"
	"strings"

	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/search"
)

var emailDisallowed = regexp.MustCompile(`[^a-z0-9.@-]`)

// GenerateWorkEmail guesses a work address as first.last@domain (or
// name@domain for single-word names). The domain may be a bare host or a
// URL. Missing inputs give NotFound.
func GenerateWorkEmail(contactName, companyDomain string) model.Field {
	domain := search.HostOf(companyDomain)
	domain = strings.TrimPrefix(domain, "@")
	parts := strings.Fields(strings.ToLower(contactName))
	if domain == "" || len(parts) == 0 {
		return model.NotFound()
	}

	local := parts[0]
	if len(parts) >= 2 {
		local = parts[0] + "." + parts[len(parts)-1]
	}

	email := emailDisallowed.ReplaceAllString(local+"@"+domain, "")
	local, host, ok := strings.Cut(email, "@")
	if !ok || strings.Trim(local, ".") == "" || host == "" {
		return model.NotFound()
	}
	return model.Found(email)
}
