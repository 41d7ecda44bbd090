package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSettings(t *testing.T) {
	valid := &Settings{}
	valid.Server.Port = 8080
	valid.Catalog.Timeout = 5 * time.Second
	valid.Catalog.CacheTTL = time.Hour

	require.NoError(t, ValidateSettings(valid))

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"negative_port", func(s *Settings) { s.Server.Port = -1 }},
		{"port_too_large", func(s *Settings) { s.Server.Port = 70000 }},
		{"zero_catalog_timeout", func(s *Settings) { s.Catalog.Timeout = 0 }},
		{"zero_cache_ttl", func(s *Settings) { s.Catalog.CacheTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *valid
			tt.mutate(&s)
			assert.Error(t, ValidateSettings(&s))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "GardenKeep", settings.Main.Name)
	assert.Equal(t, 5*time.Second, settings.Catalog.Timeout)
	assert.Equal(t, time.Hour, settings.Catalog.CacheTTL)
	assert.Equal(t, "gemini", settings.AI.Provider)
	assert.Empty(t, settings.Catalog.APIKey)
}
