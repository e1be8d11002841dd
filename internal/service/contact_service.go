package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/extract"
	"github.com/fleveque/company-enricher/internal/llm"
	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/search"
	"github.com/fleveque/company-enricher/internal/storage"
)

const (
	contactResultLimit = 10

	CitationLinkedIn  = "LinkedIn Profile"
	CitationWebSearch = "Web Search"
)

// ContactService finds a contact's LinkedIn profile, job title and likely
// work email.
type ContactService struct {
	finder    *search.Finder
	extractor *extract.Extractor
	audit     *callAuditor
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewContactService wires the contact pipeline. calls may be nil.
func NewContactService(
	finder *search.Finder,
	modelClient llm.Client,
	extractor *extract.Extractor,
	calls storage.ModelCallRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		finder:    finder,
		extractor: extractor,
		audit:     newCallAuditor(modelClient, calls, logger),
		validate:  newValidator(),
		logger:    logger,
	}
}

// Enrich looks up one contact. Each field ends up Found, NotFound or
// Failed; only validation and context errors are returned.
func (s *ContactService) Enrich(ctx context.Context, in model.ContactInput) (*model.ContactInfo, error) {
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.CompanyDomain = strings.TrimSpace(in.CompanyDomain)

	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}

	s.logger.Info("enriching contact",
		zap.String("contact", in.ContactName),
		zap.String("company", in.CompanyName),
	)

	info := &model.ContactInfo{
		ContactName: in.ContactName,
		CompanyName: in.CompanyName,
	}

	linkedin, title, err := s.profile(ctx, in)
	if err != nil {
		return nil, err
	}
	info.LinkedInURL = linkedin
	info.CurrentJobTitle = title

	switch {
	case linkedin.IsFound():
		info.CitationSource = model.Found(CitationLinkedIn)
	case linkedin.IsFailed():
		info.CitationSource = model.Failed(linkedin.Reason)
	default:
		info.CitationSource = model.Found(CitationWebSearch)
	}

	info.WorkEmail, err = s.workEmail(ctx, in)
	if err != nil {
		return nil, err
	}
	info.CreatedAt = time.Now().UTC()

	s.logger.Info("contact enriched",
		zap.String("contact", in.ContactName),
		zap.String("linkedin", info.LinkedInURL.String()),
		zap.String("title", info.CurrentJobTitle.String()),
	)
	return info, nil
}

// profile runs both person searches and asks the model to pick the profile.
func (s *ContactService) profile(ctx context.Context, in model.ContactInput) (linkedin, title model.Field, err error) {
	linkedinResults, linkedinErr := s.finder.LinkedInProfile(ctx, in.ContactName, in.CompanyName)
	if ctx.Err() != nil {
		return linkedin, title, ctx.Err()
	}
	extraResults, extraErr := s.finder.AdditionalInfo(ctx, in.ContactName, in.CompanyName)
	if ctx.Err() != nil {
		return linkedin, title, ctx.Err()
	}

	if linkedinErr != nil && extraErr != nil {
		reason := fmt.Sprintf("search failed: %v", errors.Join(linkedinErr, extraErr))
		s.logger.Warn("contact searches failed", zap.String("contact", in.ContactName), zap.String("reason", reason))
		return model.Failed(reason), model.Failed(reason), nil
	}
	if linkedinErr != nil {
		s.logger.Warn("linkedin search failed", zap.String("contact", in.ContactName), zap.Error(linkedinErr))
	}
	if extraErr != nil {
		s.logger.Warn("additional info search failed", zap.String("contact", in.ContactName), zap.Error(extraErr))
	}

	combined := append(linkedinResults, extraResults...)
	if len(combined) == 0 {
		s.logger.Warn("no search results for contact",
			zap.String("contact", in.ContactName),
			zap.String("company", in.CompanyName),
		)
		return model.NotFound(), model.NotFound(), nil
	}

	reply, err := s.audit.complete(ctx, in.ContactName, "contact", []llm.Message{
		llm.System(llm.ContactSystemPrompt),
		llm.User(llm.ContactPrompt(in.ContactName, in.CompanyName, search.FormatResults(combined, contactResultLimit, false))),
	})
	if err != nil {
		if ctx.Err() != nil {
			return linkedin, title, ctx.Err()
		}
		s.logger.Error("contact extraction failed", zap.String("contact", in.ContactName), zap.Error(err))
		reason := err.Error()
		return model.Failed(reason), model.Failed(reason), nil
	}

	linkedin, title = s.extractor.Contact(in.ContactName, reply)
	return linkedin, title, nil
}

// workEmail uses the given domain, or looks one up, and builds the address.
func (s *ContactService) workEmail(ctx context.Context, in model.ContactInput) (model.Field, error) {
	domain := in.CompanyDomain
	if domain == "" {
		found, err := s.finder.CompanyDomain(ctx, in.CompanyName)
		if err != nil {
			if ctx.Err() != nil {
				return model.Field{}, ctx.Err()
			}
			s.logger.Warn("company domain lookup failed", zap.String("company", in.CompanyName), zap.Error(err))
			return model.Failed("domain lookup failed: " + err.Error()), nil
		}
		domain = found
	}
	return GenerateWorkEmail(in.ContactName, domain), nil
}
