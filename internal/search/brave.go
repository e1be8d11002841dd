// Package search talks to the Brave Web Search API and builds the query
// strategies used by the enrichment pipelines.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/backoff"
	"github.com/fleveque/company-enricher/internal/model"
)

const (
	serviceName    = "brave"
	DefaultBaseURL = "https://api.search.brave.com/res/v1/web/search"
)

// Options configures a Client. Zero values fall back to the defaults below.
type Options struct {
	APIKey        string
	BaseURL       string
	Count         int           // default result count when callers pass 0
	Market        string        // e.g. "en-US"
	SafeSearch    string        // "off", "moderate", "strict"
	PostCallDelay time.Duration // pause after each successful call
	Timeout       time.Duration
}

// Client performs web searches. It is safe to reuse across rows: all fields
// are fixed at construction.
type Client struct {
	opts   Options
	http   *http.Client
	sleep  backoff.SleepFunc
	logger *zap.Logger
}

// braveResponse mirrors the subset of the Brave response we read.
type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PageAge     string `json:"page_age"`
	Age         string `json:"age"`
}

// NewClient creates a Brave search client. A missing API key is a
// ConfigurationError so the problem surfaces before any request is made.
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, &model.ConfigurationError{Message: "search API key is required (BRAVE_API_KEY)"}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Count <= 0 {
		opts.Count = 10
	}
	if opts.Market == "" {
		opts.Market = "en-US"
	}
	if opts.SafeSearch == "" {
		opts.SafeSearch = "moderate"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PostCallDelay <= 0 {
		opts.PostCallDelay = time.Second
	}

	return &Client{
		opts: opts,
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		sleep:  backoff.Sleep,
		logger: logger,
	}, nil
}

// WithSleep replaces the post-call pause, which tests use to avoid real delays.
func (c *Client) WithSleep(sleep backoff.SleepFunc) *Client {
	c.sleep = sleep
	return c
}

// Search runs one query. count <= 0 uses the configured default.
//
// Every failure comes back as a *model.APIError (or a *model.ValidationError
// for an empty query) so callers can branch on the kind.
func (c *Client) Search(ctx context.Context, query string, count int) ([]model.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &model.ValidationError{Field: "query", Message: "must be a non-empty string"}
	}
	if count <= 0 {
		count = c.opts.Count
	}

	c.logger.Debug("performing search", zap.String("query", truncate(query, 100)), zap.Int("count", count))

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("offset", "0")
	params.Set("mkt", c.opts.Market)
	params.Set("safesearch", c.opts.SafeSearch)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, model.NewTransportError(serviceName, fmt.Errorf("creating request: %w", err))
	}
	// Accept-Encoding is left to net/http so gzip is decoded transparently.
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.opts.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("search request failed", zap.Error(err))
		return nil, model.NewTransportError(serviceName, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("search response", zap.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		apiErr := model.NewStatusError(serviceName, resp.StatusCode, strings.TrimSpace(string(body)))
		c.logger.Warn("search API returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("kind", string(apiErr.Kind)),
		)
		return nil, apiErr
	}

	var decoded braveResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&decoded); err != nil {
		return nil, model.NewMalformedError(serviceName, "failed to parse search response", err)
	}

	results := make([]model.SearchResult, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		published := r.PageAge
		if published == "" {
			published = r.Age
		}
		results = append(results, model.SearchResult{
			Title:         r.Title,
			URL:           r.URL,
			Description:   r.Description,
			PublishedDate: published,
		})
	}

	c.logger.Info("search completed", zap.Int("results", len(results)))

	// Fixed pause after every successful call to stay under provider rate limits.
	if err := c.sleep(ctx, c.opts.PostCallDelay); err != nil {
		return nil, err
	}

	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
