package gardenai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/gardenkeep/gardenkeep-go/internal/errors"
	"github.com/gardenkeep/gardenkeep-go/internal/logging"
)

// Package-level logger specific to the gardenai service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "gardenai.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "gardenai", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize gardenai file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "gardenai")
		closeLogger = func() error { return nil }
	}
}

// webCachePrefix namespaces web-discovery entries away from plain
// identification entries in the shared cache.
const webCachePrefix = "web:"

// Client issues the four LLM calls and caches identification and
// discovery results for the process lifetime. Identification results are
// keyed by the raw query string, discovery results by the raw query under
// a "web:" prefix. Failures are never cached.
type Client struct {
	provider Provider
	cache    *cache.Cache
}

// NewClient creates a gardenai client on top of a Provider. The cache has
// no TTL; entries persist until the process exits.
func NewClient(provider Provider) *Client {
	return &Client{
		provider: provider,
		cache:    cache.New(cache.NoExpiration, 0),
	}
}

// Close releases the service log file.
func (c *Client) Close() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing gardenai logger: %v", err)
		}
	}
}

// stripCodeFences removes a markdown code-fence wrapper around a JSON
// payload, tolerating a language tag after the opening fence.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty)
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeResponse strips fences and unmarshals into out. A decode failure
// is reported to the caller as ok=false rather than an error, since a
// malformed LLM response is handled the same as a negative one.
func decodeResponse(raw string, out any) bool {
	payload := stripCodeFences(raw)
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		logger.Warn("failed to parse LLM response as JSON",
			"error", err,
			"response_size", len(raw))
		return false
	}
	return true
}

// Identify asks the LLM whether the query names a real plant. Successful
// results are cached by the raw query string.
func (c *Client) Identify(ctx context.Context, query string) (*IdentifyResult, error) {
	if cached, found := c.cache.Get(query); found {
		if result, ok := cached.(*IdentifyResult); ok {
			logger.Debug("identification cache hit", "query", query)
			return result, nil
		}
	}

	prompt := fmt.Sprintf(`You are a UK gardening expert. A user searched for a plant with the text %q.
Determine whether this names a real plant. Respond with JSON only:
{"identified": bool, "confidence": "verified"|"likely"|"unknown", "plant": {"common_name": string, "scientific_name": string, "top_level": string, "middle_level": string, "cultivar_name": string}, "reason": string}
Use "verified" only when you are certain the plant exists with this exact name. Use "likely" when the name is plausible but you are not certain. Use "unknown" when you cannot identify it. top_level is the broad plant group (e.g. "Shrub", "Rose", "Rhododendron"), middle_level the species or group within it, cultivar_name the specific cultivar if named.`, query)

	raw, err := c.provider.Generate(ctx, prompt, false)
	if err != nil {
		return nil, errors.New(err).
			Component("gardenai").
			Category(errors.CategoryAIProvider).
			Context("operation", "identify").
			Build()
	}

	result := &IdentifyResult{}
	if !decodeResponse(raw, result) {
		// Malformed response is handled as not identified
		return &IdentifyResult{Identified: false, Confidence: ConfidenceUnknown}, nil
	}
	if result.Identified && result.Plant == nil {
		logger.Warn("LLM claimed identification without a plant payload", "query", query)
		return &IdentifyResult{Identified: false, Confidence: ConfidenceUnknown}, nil
	}
	if result.Confidence == "" {
		result.Confidence = ConfidenceUnknown
	}

	c.cache.Set(query, result, cache.NoExpiration)

	logger.Info("identification complete",
		"query", query,
		"identified", result.Identified,
		"confidence", result.Confidence)

	return result, nil
}

// WebVerify asks the LLM to verify a tentative "likely" identification
// via web search. Verification outcomes are not cached.
func (c *Client) WebVerify(ctx context.Context, query string, tentative *PlantIdentity) (*VerifyResult, error) {
	tentativeJSON, err := json.Marshal(tentative)
	if err != nil {
		return nil, errors.New(err).
			Component("gardenai").
			Category(errors.CategoryValidation).
			Context("operation", "web_verify").
			Build()
	}

	prompt := fmt.Sprintf(`A plant search for %q produced this tentative identification: %s
Use web search to verify whether this plant genuinely exists under this name. Respond with JSON only:
{"verified": bool, "corrected": {"common_name": string, "scientific_name": string, "top_level": string, "middle_level": string, "cultivar_name": string}, "source_url": string}
Include "corrected" only when the verified taxonomy differs from the tentative one. Include the URL of the page that confirms the plant.`, query, tentativeJSON)

	raw, err := c.provider.Generate(ctx, prompt, true)
	if err != nil {
		return nil, errors.New(err).
			Component("gardenai").
			Category(errors.CategoryAIProvider).
			Context("operation", "web_verify").
			Build()
	}

	result := &VerifyResult{}
	if !decodeResponse(raw, result) {
		return &VerifyResult{Verified: false}, nil
	}

	logger.Info("web verification complete",
		"query", query,
		"verified", result.Verified,
		"source_url", result.SourceURL)

	return result, nil
}

// WebDiscover asks the LLM to find the plant via web search when plain
// identification came back unknown. Found results with complete taxonomy
// are cached under the "web:" key namespace.
func (c *Client) WebDiscover(ctx context.Context, query string) (*DiscoverResult, error) {
	cacheKey := webCachePrefix + query

	if cached, found := c.cache.Get(cacheKey); found {
		if result, ok := cached.(*DiscoverResult); ok {
			logger.Debug("web discovery cache hit", "query", query)
			return result, nil
		}
	}

	prompt := fmt.Sprintf(`A plant search for %q could not be identified directly. Use web search to find whether a plant with this or a very similar name exists. Respond with JSON only:
{"found": bool, "plant": {"common_name": string, "scientific_name": string, "top_level": string, "middle_level": string, "cultivar_name": string}, "source_url": string}
Set "found" to true only when you locate a real plant and can fill in common_name, top_level and middle_level. Include the URL of the page you found it on.`, query)

	raw, err := c.provider.Generate(ctx, prompt, true)
	if err != nil {
		return nil, errors.New(err).
			Component("gardenai").
			Category(errors.CategoryAIProvider).
			Context("operation", "web_discover").
			Build()
	}

	result := &DiscoverResult{}
	if !decodeResponse(raw, result) {
		return &DiscoverResult{Found: false}, nil
	}

	// Incomplete taxonomy is handled as not found
	if result.Found && !taxonomyComplete(result.Plant) {
		logger.Warn("web discovery returned incomplete taxonomy", "query", query)
		result = &DiscoverResult{Found: false}
	}

	if result.Found {
		c.cache.Set(cacheKey, result, cache.NoExpiration)
	}

	logger.Info("web discovery complete",
		"query", query,
		"found", result.Found,
		"source_url", result.SourceURL)

	return result, nil
}

// SuggestSpelling asks whether the query resembles a misspelling of a
// known plant name. Suggestions are not cached.
func (c *Client) SuggestSpelling(ctx context.Context, query string) (*SpellingResult, error) {
	prompt := fmt.Sprintf(`A plant search for %q found nothing. Does the text resemble a misspelling of a known plant or cultivar name? Respond with JSON only:
{"has_suggestion": bool, "suggestion": string}
Only suggest a correction when you are reasonably confident; otherwise set has_suggestion to false.`, query)

	raw, err := c.provider.Generate(ctx, prompt, false)
	if err != nil {
		return nil, errors.New(err).
			Component("gardenai").
			Category(errors.CategoryAIProvider).
			Context("operation", "suggest_spelling").
			Build()
	}

	result := &SpellingResult{}
	if !decodeResponse(raw, result) {
		return &SpellingResult{HasSuggestion: false}, nil
	}
	if result.HasSuggestion && strings.TrimSpace(result.Suggestion) == "" {
		result = &SpellingResult{HasSuggestion: false}
	}

	return result, nil
}

// taxonomyComplete reports whether a discovered plant carries the fields
// required to show it to the user.
func taxonomyComplete(p *PlantIdentity) bool {
	return p != nil && p.CommonName != "" && p.TopLevel != "" && p.MiddleLevel != ""
}
