package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/gardenkeep/gardenkeep-go/internal/errors"
	"github.com/gardenkeep/gardenkeep-go/internal/logging"
)

// Package-level logger specific to the catalog service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "catalog.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "catalog", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize catalog file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "catalog")
		closeLogger = func() error { return nil }
	}
}

// Client provides methods for querying the plant catalog. Search results
// are cached by normalized query string for the configured TTL; entries
// expire by wall-clock comparison at read time.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache

	metrics struct {
		apiCalls    int64
		cacheHits   int64
		cacheMisses int64
		apiErrors   int64
		mu          sync.RWMutex
	}
}

// NewClient creates a new catalog client. A missing API key is not an
// error: the client reports itself unavailable and every search returns
// an empty result, which the identification pipeline treats as "proceed
// to AI identification".
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultConfig().CacheTTL
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache: cache.New(config.CacheTTL, config.CacheTTL*2),
	}

	logger.Info("catalog client initialized",
		"base_url", config.BaseURL,
		"cache_ttl", config.CacheTTL,
		"timeout", config.Timeout,
		"api_key_configured", config.APIKey != "")

	return client
}

// Available reports whether the catalog can be queried at all.
func (c *Client) Available() bool {
	return c.config.APIKey != ""
}

// Close cleans up client resources
func (c *Client) Close() {
	logger.Info("closing catalog client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing catalog logger: %v", err)
		}
	}
}

// normalizeQuery produces the cache key for a free-text query.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Search queries the catalog by free text. Results are cached by
// normalized query for the configured TTL. When the catalog is
// unavailable (no API key) it returns an empty result without error.
func (c *Client) Search(ctx context.Context, query string) ([]Entry, error) {
	if !c.Available() {
		logger.Debug("catalog search skipped, no API key configured", "query", query)
		return nil, nil
	}

	cacheKey := normalizeQuery(query)

	if cached, found := c.cache.Get(cacheKey); found {
		if entries, ok := cached.([]Entry); ok {
			c.metrics.mu.Lock()
			c.metrics.cacheHits++
			c.metrics.mu.Unlock()

			logger.Debug("catalog cache hit", "cache_key", cacheKey, "entries", len(entries))
			return entries, nil
		}
	}

	c.metrics.mu.Lock()
	c.metrics.cacheMisses++
	c.metrics.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	searchURL := fmt.Sprintf("%s?key=%s&q=%s",
		c.config.BaseURL, url.QueryEscape(c.config.APIKey), url.QueryEscape(strings.TrimSpace(query)))

	entries, err := c.doSearch(reqCtx, searchURL)
	if err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, entries, cache.DefaultExpiration)

	logger.Debug("catalog results cached",
		"cache_key", cacheKey,
		"entries", len(entries))

	return entries, nil
}

// doSearch performs the HTTP request and shapes the response.
func (c *Client) doSearch(ctx context.Context, searchURL string) ([]Entry, error) {
	c.metrics.mu.Lock()
	c.metrics.apiCalls++
	c.metrics.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, http.NoBody)
	if err != nil {
		c.recordAPIError()
		return nil, errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Component("catalog").
			Build()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordAPIError()
		logger.Error("catalog API request failed", "error", err)
		return nil, errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Component("catalog").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordAPIError()
		return nil, errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("status_code", resp.StatusCode).
			Component("catalog").
			Build()
	}

	if resp.StatusCode >= 400 {
		c.recordAPIError()

		var apiErr Error
		detail := string(bodyBytes)
		if err := json.Unmarshal(bodyBytes, &apiErr); err == nil && apiErr.Message != "" {
			detail = apiErr.Message
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			logger.Error("catalog API authentication failed",
				"status_code", resp.StatusCode,
				"message", "Check the catalog API key in the configuration")
		} else {
			logger.Warn("catalog API error response",
				"status_code", resp.StatusCode,
				"detail", detail)
		}

		return nil, errors.Newf("catalog API error (status %d): %s", resp.StatusCode, detail).
			Category(errorCategory(resp.StatusCode)).
			Context("status_code", resp.StatusCode).
			Component("catalog").
			Build()
	}

	var payload speciesListResponse
	if err := json.Unmarshal(bodyBytes, &payload); err != nil {
		c.recordAPIError()
		logger.Error("failed to parse catalog response",
			"error", err,
			"response_size", len(bodyBytes))
		return nil, errors.Newf("failed to parse response: %w", err).
			Category(errors.CategoryFileParsing).
			Context("response_size", len(bodyBytes)).
			Component("catalog").
			Build()
	}

	entries := make([]Entry, 0, len(payload.Data))
	for _, d := range payload.Data {
		entry := Entry{
			ID:         d.ID,
			CommonName: d.CommonName,
			Genus:      d.Genus,
			Family:     d.Family,
		}
		if len(d.ScientificName) > 0 {
			entry.ScientificName = d.ScientificName[0]
		}
		entries = append(entries, entry)
	}

	logger.Info("catalog search successful", "entries", len(entries))
	return entries, nil
}

func (c *Client) recordAPIError() {
	c.metrics.mu.Lock()
	c.metrics.apiErrors++
	c.metrics.mu.Unlock()
}

// ClearCache clears all cached search results
func (c *Client) ClearCache() {
	c.cache.Flush()
	logger.Info("catalog cache cleared")
}

// Metrics represents catalog client counters
type Metrics struct {
	APICalls    int64 `json:"api_calls"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APIErrors   int64 `json:"api_errors"`
}

// GetMetrics returns current client metrics
func (c *Client) GetMetrics() Metrics {
	c.metrics.mu.RLock()
	defer c.metrics.mu.RUnlock()

	return Metrics{
		APICalls:    c.metrics.apiCalls,
		CacheHits:   c.metrics.cacheHits,
		CacheMisses: c.metrics.cacheMisses,
		APIErrors:   c.metrics.apiErrors,
	}
}

// errorCategory maps an HTTP status code to an error category.
func errorCategory(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.CategoryConfiguration
	case http.StatusTooManyRequests:
		return errors.CategoryLimit
	case http.StatusNotFound:
		return errors.CategoryNotFound
	default:
		return errors.CategoryNetwork
	}
}
