// Package identify implements the plant identification pipeline: a
// sequential cascade from the trusted catalog, through AI identification
// and web verification/discovery, down to a spelling suggestion. The
// pipeline always returns a well-formed response and never propagates a
// raw external-service error to its caller.
package identify

import (
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gardenkeep/gardenkeep-go/internal/catalog"
	"github.com/gardenkeep/gardenkeep-go/internal/gardenai"
	"github.com/gardenkeep/gardenkeep-go/internal/logging"
	"github.com/gardenkeep/gardenkeep-go/internal/model"
	"github.com/gardenkeep/gardenkeep-go/internal/observability/metrics"
)

// Package-level logger specific to the identify service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "identify.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "identify", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize identify file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "identify")
		closeLogger = func() error { return nil }
	}
}

// User-facing fallback messages.
const (
	msgUnavailable = "Plant search is temporarily unavailable. Please try again in a moment, or add your plant as a custom entry."
	msgNotFound    = "We couldn't find that plant. You can add it as a custom entry instead."
)

// CatalogSearcher is the catalog stage collaborator.
type CatalogSearcher interface {
	Search(ctx context.Context, query string) ([]catalog.Entry, error)
}

// AIClient covers the four LLM calls the cascade uses.
type AIClient interface {
	Identify(ctx context.Context, query string) (*gardenai.IdentifyResult, error)
	WebVerify(ctx context.Context, query string, tentative *gardenai.PlantIdentity) (*gardenai.VerifyResult, error)
	WebDiscover(ctx context.Context, query string) (*gardenai.DiscoverResult, error)
	SuggestSpelling(ctx context.Context, query string) (*gardenai.SpellingResult, error)
}

// Pipeline orchestrates the identification cascade. Stages run strictly
// in order with at most one outstanding external call; no stage retries.
type Pipeline struct {
	catalog CatalogSearcher
	ai      AIClient
	metrics *metrics.IdentifyMetrics
}

// New creates an identification pipeline. metrics may be nil.
func New(catalogClient CatalogSearcher, aiClient AIClient, m *metrics.IdentifyMetrics) *Pipeline {
	return &Pipeline{
		catalog: catalogClient,
		ai:      aiClient,
		metrics: m,
	}
}

// Identify resolves a free-text plant query into a verified result set.
// The caller validates queries (>=2 characters after trimming) before
// invoking the pipeline.
func (p *Pipeline) Identify(ctx context.Context, query string) model.SearchResponse {
	start := time.Now()
	resp := p.identify(ctx, query)

	if p.metrics != nil {
		source := string(resp.Source)
		if source == "" {
			source = "none"
		}
		p.metrics.RecordSearch(source)
		p.metrics.RecordSearchDuration(source, time.Since(start).Seconds())
	}
	return resp
}

func (p *Pipeline) identify(ctx context.Context, query string) model.SearchResponse {
	// Stage 1: catalog. The fast, trusted path; a failure here (timeout
	// included) falls through to AI identification instead of erroring.
	entries, err := p.catalog.Search(ctx, query)
	if err != nil {
		logger.Warn("catalog search failed, continuing to AI identification",
			"query", query, "error", err)
		p.recordStage("catalog", "error")
		entries = nil
	}
	if len(entries) > 0 {
		p.recordStage("catalog", "hit")
		logger.Info("catalog hit", "query", query, "results", len(entries))
		return model.SearchResponse{
			Results: catalogResults(entries),
			Source:  model.SourceCatalog,
		}
	}
	p.recordStage("catalog", "miss")

	// Stage 2: AI identification.
	idResult, err := p.ai.Identify(ctx, query)
	if err != nil {
		logger.Error("AI identification failed", "query", query, "error", err)
		p.recordStage("ai_identify", "error")
		return unavailableResponse()
	}

	switch {
	case idResult.Identified && idResult.Confidence == gardenai.ConfidenceVerified:
		p.recordStage("ai_identify", "verified")
		logger.Info("AI identification verified", "query", query,
			"plant", idResult.Plant.CommonName)
		return model.SearchResponse{
			Results: []model.PlantSearchResult{identityResult(idResult.Plant, model.SourceAI, model.Verification{
				Status:     model.StatusAIIdentified,
				Confidence: model.ConfidenceHigh,
			})},
			Source: model.SourceAI,
		}

	case idResult.Identified && idResult.Confidence == gardenai.ConfidenceLikely:
		// Likely-confidence identifications must never reach the user
		// unverified; web-verify or discard.
		p.recordStage("ai_identify", "likely")
		return p.webVerify(ctx, query, idResult.Plant)

	default:
		// Not identified or unknown confidence: try web discovery.
		p.recordStage("ai_identify", "unknown")
		return p.webDiscover(ctx, query)
	}
}

// webVerify handles stage 2b for likely-confidence identifications. A
// failed verification discards the tentative result entirely.
func (p *Pipeline) webVerify(ctx context.Context, query string, tentative *gardenai.PlantIdentity) model.SearchResponse {
	verify, err := p.ai.WebVerify(ctx, query, tentative)
	if err != nil {
		logger.Error("web verification failed", "query", query, "error", err)
		p.recordStage("web_verify", "error")
		return unavailableResponse()
	}

	if !verify.Verified {
		p.recordStage("web_verify", "rejected")
		logger.Info("tentative identification discarded after failed verification",
			"query", query, "tentative", tentative.CommonName)
		return model.SearchResponse{
			Results: []model.PlantSearchResult{},
			Message: msgNotFound,
		}
	}

	p.recordStage("web_verify", "verified")
	plant := applyCorrections(tentative, verify.Corrected)
	return model.SearchResponse{
		Results: []model.PlantSearchResult{identityResult(plant, model.SourceAIVerified, model.Verification{
			Status:     model.StatusWebVerified,
			Confidence: model.ConfidenceHigh,
			SourceURL:  verify.SourceURL,
		})},
		Source: model.SourceAIVerified,
	}
}

// webDiscover handles stage 2a for unidentified queries, falling through
// to the spelling suggestion when discovery finds nothing.
func (p *Pipeline) webDiscover(ctx context.Context, query string) model.SearchResponse {
	discover, err := p.ai.WebDiscover(ctx, query)
	if err != nil {
		logger.Error("web discovery failed", "query", query, "error", err)
		p.recordStage("web_discover", "error")
		return unavailableResponse()
	}

	if discover.Found {
		p.recordStage("web_discover", "found")
		logger.Info("plant found via web discovery", "query", query,
			"plant", discover.Plant.CommonName, "source_url", discover.SourceURL)
		return model.SearchResponse{
			Results: []model.PlantSearchResult{identityResult(discover.Plant, model.SourceWebDiscovery, model.Verification{
				Status:     model.StatusWebVerified,
				Confidence: model.ConfidenceHigh,
				SourceURL:  discover.SourceURL,
			})},
			Source: model.SourceWebDiscovery,
		}
	}
	p.recordStage("web_discover", "not_found")

	return p.suggestSpelling(ctx, query)
}

// suggestSpelling is the last resort before giving up.
func (p *Pipeline) suggestSpelling(ctx context.Context, query string) model.SearchResponse {
	spelling, err := p.ai.SuggestSpelling(ctx, query)
	if err != nil {
		logger.Error("spelling suggestion failed", "query", query, "error", err)
		p.recordStage("spelling", "error")
		return unavailableResponse()
	}

	if spelling.HasSuggestion {
		p.recordStage("spelling", "suggested")
		logger.Info("spelling suggestion offered", "query", query,
			"suggestion", spelling.Suggestion)
		return model.SearchResponse{
			Results: []model.PlantSearchResult{},
			Suggestion: &model.Suggestion{
				Original:  query,
				Corrected: spelling.Suggestion,
			},
		}
	}

	p.recordStage("spelling", "none")
	return model.SearchResponse{
		Results: []model.PlantSearchResult{},
		Message: msgNotFound,
	}
}

func (p *Pipeline) recordStage(stage, result string) {
	if p.metrics != nil {
		p.metrics.RecordStageResult(stage, result)
	}
}

func unavailableResponse() model.SearchResponse {
	return model.SearchResponse{
		Results: []model.PlantSearchResult{},
		Message: msgUnavailable,
	}
}

// catalogResults tags catalog entries as trusted database matches.
func catalogResults(entries []catalog.Entry) []model.PlantSearchResult {
	results := make([]model.PlantSearchResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, model.PlantSearchResult{
			CommonName:     e.CommonName,
			ScientificName: e.ScientificName,
			TopLevel:       e.Family,
			MiddleLevel:    e.Genus,
			CultivarName:   e.Cultivar,
			Source:         model.SourceCatalog,
			Verification: model.Verification{
				Status:     model.StatusDatabase,
				Confidence: model.ConfidenceHigh,
			},
		})
	}
	return results
}

// identityResult converts an LLM plant identity to a search result.
func identityResult(p *gardenai.PlantIdentity, source model.ResultSource, v model.Verification) model.PlantSearchResult {
	return model.PlantSearchResult{
		CommonName:     p.CommonName,
		ScientificName: p.ScientificName,
		TopLevel:       p.TopLevel,
		MiddleLevel:    p.MiddleLevel,
		CultivarName:   p.CultivarName,
		Source:         source,
		Verification:   v,
	}
}

// applyCorrections overlays non-empty corrected fields onto the
// tentative identity.
func applyCorrections(tentative, corrected *gardenai.PlantIdentity) *gardenai.PlantIdentity {
	if corrected == nil {
		return tentative
	}
	out := *tentative
	if corrected.CommonName != "" {
		out.CommonName = corrected.CommonName
	}
	if corrected.ScientificName != "" {
		out.ScientificName = corrected.ScientificName
	}
	if corrected.TopLevel != "" {
		out.TopLevel = corrected.TopLevel
	}
	if corrected.MiddleLevel != "" {
		out.MiddleLevel = corrected.MiddleLevel
	}
	if corrected.CultivarName != "" {
		out.CultivarName = corrected.CultivarName
	}
	return &out
}
