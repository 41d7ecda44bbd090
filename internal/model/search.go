package model

// ResultSource identifies which pipeline stage produced a search result set.
type ResultSource string

const (
	SourceCatalog      ResultSource = "perenual"
	SourceAI           ResultSource = "ai"
	SourceAIVerified   ResultSource = "ai_verified"
	SourceWebDiscovery ResultSource = "web_discovery"
)

// VerificationStatus records how a plant identity was established.
type VerificationStatus string

const (
	StatusDatabase     VerificationStatus = "database"
	StatusAIIdentified VerificationStatus = "ai_identified"
	StatusWebVerified  VerificationStatus = "web_verified"
)

// ConfidenceLevel is the trust level attached to a verification.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Verification carries the provenance of a search result.
type Verification struct {
	Status     VerificationStatus `json:"status"`
	Confidence ConfidenceLevel    `json:"confidence"`
	SourceURL  string             `json:"source_url,omitempty"`
}

// PlantSearchResult is an ephemeral identification candidate. It is not
// persisted until the user commits to adding the plant. Results tagged
// with an unverified "likely" AI identification must never reach the user;
// the identification pipeline enforces this.
type PlantSearchResult struct {
	CommonName     string       `json:"common_name"`
	ScientificName string       `json:"scientific_name,omitempty"`
	TopLevel       string       `json:"top_level,omitempty"`
	MiddleLevel    string       `json:"middle_level,omitempty"`
	CultivarName   string       `json:"cultivar_name,omitempty"`
	Source         ResultSource `json:"source"`
	Verification   Verification `json:"verification"`
}

// Suggestion is a "did you mean" spelling correction offered when no
// identification succeeded.
type Suggestion struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// SearchResponse is the identification pipeline's single response shape.
// It is always well-formed: worst case an empty result set with a
// human-readable message.
type SearchResponse struct {
	Results    []PlantSearchResult `json:"results"`
	Source     ResultSource        `json:"source,omitempty"`
	Message    string              `json:"message,omitempty"`
	Suggestion *Suggestion         `json:"suggestion,omitempty"`
}
