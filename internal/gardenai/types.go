// Package gardenai wraps the hosted LLM behind four typed calls used by
// the plant identification pipeline: identification, web verification,
// web discovery and spelling suggestion.
package gardenai

import "context"

// Confidence tiers reported by the identification call. The pipeline
// trusts "verified" directly, web-verifies "likely" before showing
// anything, and treats "unknown" as not identified.
const (
	ConfidenceVerified = "verified"
	ConfidenceLikely   = "likely"
	ConfidenceUnknown  = "unknown"
)

// PlantIdentity is the taxonomy payload the LLM returns for a plant.
type PlantIdentity struct {
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name,omitempty"`
	TopLevel       string `json:"top_level,omitempty"`
	MiddleLevel    string `json:"middle_level,omitempty"`
	CultivarName   string `json:"cultivar_name,omitempty"`
}

// IdentifyResult is the tagged variant for the identification call:
// either not identified, or identified with a confidence tier and a
// plant identity.
type IdentifyResult struct {
	Identified bool           `json:"identified"`
	Confidence string         `json:"confidence,omitempty"`
	Plant      *PlantIdentity `json:"plant,omitempty"`
	Reason     string         `json:"reason,omitempty"`
}

// VerifyResult is the outcome of web-verifying a tentative identification.
// Corrected, when present, carries taxonomy fields the verification fixed.
type VerifyResult struct {
	Verified  bool           `json:"verified"`
	Corrected *PlantIdentity `json:"corrected,omitempty"`
	SourceURL string         `json:"source_url,omitempty"`
}

// DiscoverResult is the outcome of asking the LLM to find the plant via
// web search. Found is only honored when the taxonomy is complete.
type DiscoverResult struct {
	Found     bool           `json:"found"`
	Plant     *PlantIdentity `json:"plant,omitempty"`
	SourceURL string         `json:"source_url,omitempty"`
}

// SpellingResult is the last-resort "did you mean" outcome.
type SpellingResult struct {
	HasSuggestion bool   `json:"has_suggestion"`
	Suggestion    string `json:"suggestion,omitempty"`
}

// Provider is the single text-generation primitive the client is built
// on. webSearch asks the provider to ground the response with a web
// search tool; the LLM performs any nested tool calls server-side.
type Provider interface {
	Generate(ctx context.Context, prompt string, webSearch bool) (string, error)
}
