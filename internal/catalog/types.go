// Package catalog provides a client for the Perenual plant catalog API,
// the trusted first stage of the identification pipeline.
package catalog

import "time"

// Config holds the catalog client configuration
type Config struct {
	APIKey   string        // Perenual API key; empty means catalog unavailable
	BaseURL  string        // API endpoint for species-list queries
	Timeout  time.Duration // HTTP request timeout
	CacheTTL time.Duration // How long search results stay cached
}

// DefaultConfig returns the default catalog client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:  "https://perenual.com/api/v2/species-list",
		Timeout:  5 * time.Second,
		CacheTTL: time.Hour,
	}
}

// Entry is a single species record returned by the catalog.
type Entry struct {
	ID             int    `json:"id"`
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name"`
	Genus          string `json:"genus,omitempty"`
	Family         string `json:"family,omitempty"`
	Cultivar       string `json:"cultivar,omitempty"`
}

// speciesListResponse mirrors the Perenual species-list payload.
type speciesListResponse struct {
	Data []struct {
		ID             int      `json:"id"`
		CommonName     string   `json:"common_name"`
		ScientificName []string `json:"scientific_name"`
		OtherName      []string `json:"other_name"`
		Genus          string   `json:"genus"`
		Family         string   `json:"family"`
	} `json:"data"`
	Total int `json:"total"`
}

// Error represents an error response from the catalog API
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
