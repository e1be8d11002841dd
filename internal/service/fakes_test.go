package service

import (
	"context"
	"strings"

	"github.com/fleveque/company-enricher/internal/llm"
	"github.com/fleveque/company-enricher/internal/model"
)

// fakeSearcher answers by substring match on the query.
type fakeSearcher struct {
	responses map[string][]model.SearchResult
	failing   map[string]error
	queries   []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]model.SearchResult, error) {
	f.queries = append(f.queries, query)
	for key, err := range f.failing {
		if strings.Contains(query, key) {
			return nil, err
		}
	}
	for key, rs := range f.responses {
		if strings.Contains(query, key) {
			return append([]model.SearchResult(nil), rs...), nil
		}
	}
	return nil, nil
}

// fakeModel replies by subject: the first reply whose key appears in the
// last message wins.
type fakeModel struct {
	replies map[string]string
	errs    map[string]error
	prompts [][]llm.Message
}

func (f *fakeModel) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.prompts = append(f.prompts, messages)
	last := messages[len(messages)-1].Content
	for key, err := range f.errs {
		if strings.Contains(last, key) {
			return "", err
		}
	}
	for key, reply := range f.replies {
		if strings.Contains(last, key) {
			return reply, nil
		}
	}
	return "I have no idea.", nil
}

func (f *fakeModel) ProviderName() string { return "fake" }
func (f *fakeModel) ModelName() string    { return "fake-1" }

// fakeCalls records audited model calls in memory.
type fakeCalls struct {
	calls []*model.ModelCall
}

func (f *fakeCalls) Create(_ context.Context, call *model.ModelCall) error {
	f.calls = append(f.calls, call)
	return nil
}
func (f *fakeCalls) Count(context.Context) (int64, error)       { return int64(len(f.calls)), nil }
func (f *fakeCalls) CountFailed(context.Context) (int64, error) { return 0, nil }
func (f *fakeCalls) CountBySubject(context.Context, string) (int64, error) {
	return 0, nil
}

func hits(urls ...string) []model.SearchResult {
	out := make([]model.SearchResult, 0, len(urls))
	for _, u := range urls {
		out = append(out, model.SearchResult{Title: "hit", URL: u, Description: "desc"})
	}
	return out
}
