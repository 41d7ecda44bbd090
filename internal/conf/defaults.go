// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "GardenKeep")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/gardenkeep.log")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("database.path", "gardenkeep.db")

	viper.SetDefault("catalog.endpoint", "https://perenual.com/api/v2/species-list")
	viper.SetDefault("catalog.apikey", "")
	viper.SetDefault("catalog.timeout", 5*time.Second)
	viper.SetDefault("catalog.cachettl", time.Hour)

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.apikey", "")
	viper.SetDefault("ai.model", "gemini-2.0-flash")
}
