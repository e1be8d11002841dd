// Package extract pulls structured fields out of free-text model responses.
// Models often wrap the JSON they were asked for in prose or code fences, so
// parsing is best effort: a parse failure is a normal outcome, never an error.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/model"
)

// jsonObjectPattern is a greedy match from the first '{' to the last '}'.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// fallbackPreviewLen is how much of an unparseable response is kept in the citation.
const fallbackPreviewLen = 200

// Extractor parses model output. It holds no state besides its logger, so
// one instance is shared across rows.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Revenue extracts (revenue, citation) from a model response that was asked
// to answer with revenue_usd / source_url / confidence / reasoning.
//
// It never fails: when no JSON object can be recovered it returns a nil
// revenue and a citation explaining that the response could not be parsed.
func (e *Extractor) Revenue(companyName, text string) (*float64, string) {
	data, ok := parseObject(text)
	if !ok {
		e.logger.Warn("could not parse structured response",
			zap.String("company", companyName),
		)
		return nil, "could not parse structured response: " + preview(text, fallbackPreviewLen)
	}

	revenue := e.coerceRevenue(companyName, data["revenue_usd"])
	source := stringField(data, "source_url", "")
	confidence := stringField(data, "confidence", "low")
	reasoning := stringField(data, "reasoning", "")

	return revenue, fmt.Sprintf("%s (Confidence: %s) - %s", source, confidence, reasoning)
}

// Contact extracts the LinkedIn URL and job title from a contact lookup
// response. Missing, empty and NOT_FOUND values all become NotFound, as does
// a response with no recoverable JSON.
func (e *Extractor) Contact(contactName, text string) (linkedin, title model.Field) {
	data, ok := parseObject(text)
	if !ok {
		e.logger.Warn("could not parse contact response",
			zap.String("contact", contactName),
			zap.String("response", preview(text, fallbackPreviewLen)),
		)
		return model.NotFound(), model.NotFound()
	}
	return contactField(data, "linkedin_url"), contactField(data, "current_job_title")
}

// parseObject tries the greedy brace match first, then the whole text.
func parseObject(text string) (map[string]any, bool) {
	if match := jsonObjectPattern.FindString(text); match != "" {
		if data, ok := decodeObject(match); ok {
			return data, true
		}
	}
	return decodeObject(strings.TrimSpace(text))
}

// decodeObject decodes exactly one JSON object. Numbers are kept as
// json.Number so an out-of-range revenue only loses that field instead of
// failing the whole object.
func decodeObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil || data == nil {
		return nil, false
	}
	// Trailing content means s was not a single object.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return data, true
}

// coerceRevenue converts revenue_usd to a finite, non-negative float.
// Anything else is logged and treated as absent.
func (e *Extractor) coerceRevenue(companyName string, raw any) *float64 {
	if raw == nil {
		return nil
	}

	var value float64
	switch v := raw.(type) {
	case json.Number:
		// ParseFloat reports ErrRange for values like 1e400 and returns ±Inf,
		// which the finiteness check below rejects.
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			e.logger.Warn("invalid revenue value",
				zap.String("company", companyName),
				zap.String("value", v.String()),
			)
			return nil
		}
		value = parsed
	case float64:
		value = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			e.logger.Warn("invalid revenue value",
				zap.String("company", companyName),
				zap.String("value", v),
			)
			return nil
		}
		value = parsed
	default:
		e.logger.Warn("invalid revenue value",
			zap.String("company", companyName),
			zap.Any("value", v),
		)
		return nil
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		e.logger.Warn("non-finite revenue value", zap.String("company", companyName))
		return nil
	}
	if value < 0 {
		e.logger.Warn("negative revenue value detected",
			zap.String("company", companyName),
			zap.Float64("value", value),
		)
		return nil
	}
	return &value
}

// stringField reads key as display text. Missing keys get def; null becomes "".
func stringField(data map[string]any, key, def string) string {
	raw, ok := data[key]
	if !ok {
		return def
	}
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func contactField(data map[string]any, key string) model.Field {
	s, _ := data[key].(string)
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, model.SentinelNotFound) {
		return model.NotFound()
	}
	return model.Found(s)
}

// preview returns the first n runes of s.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
