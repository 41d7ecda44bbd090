// Package conf loads and provides access to GardenKeep runtime settings.
package conf

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Settings holds the full application configuration.
type Settings struct {
	Debug bool `yaml:"debug" mapstructure:"debug"`

	Main struct {
		Name string `yaml:"name" mapstructure:"name"` // Instance name used in logs
		Log  struct {
			Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
			Path    string `yaml:"path" mapstructure:"path"`
		} `yaml:"log" mapstructure:"log"`
	} `yaml:"main" mapstructure:"main"`

	Server struct {
		Host string `yaml:"host" mapstructure:"host"`
		Port int    `yaml:"port" mapstructure:"port"`
	} `yaml:"server" mapstructure:"server"`

	Database DatabaseSettings `yaml:"database" mapstructure:"database"`

	Catalog CatalogSettings `yaml:"catalog" mapstructure:"catalog"`
	AI      AISettings      `yaml:"ai" mapstructure:"ai"`
}

// DatabaseSettings configures the SQLite store.
type DatabaseSettings struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite database file
}

// CatalogSettings configures the third-party plant catalog client.
// An empty APIKey means the catalog is unavailable and identification
// proceeds straight to the AI stages.
type CatalogSettings struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey   string        `yaml:"apikey" mapstructure:"apikey"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheTTL time.Duration `yaml:"cachettl" mapstructure:"cachettl"`
}

// AISettings configures the hosted LLM provider.
type AISettings struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	APIKey   string `yaml:"apikey" mapstructure:"apikey"`
	Model    string `yaml:"model" mapstructure:"model"`
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance and stores it as the package singleton.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with defaults, env binding and the optional
// YAML config file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/gardenkeep")

	viper.SetEnvPrefix("GARDENKEEP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults are defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults plus env cover everything
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// ValidateSettings checks settings for values that cannot work at runtime.
func ValidateSettings(s *Settings) error {
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", s.Server.Port)
	}
	if s.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog timeout must be positive, got %s", s.Catalog.Timeout)
	}
	if s.Catalog.CacheTTL <= 0 {
		return fmt.Errorf("catalog cache TTL must be positive, got %s", s.Catalog.CacheTTL)
	}
	return nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}
