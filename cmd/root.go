package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gardenkeep/gardenkeep-go/cmd/serve"
	"github.com/gardenkeep/gardenkeep-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gardenkeep",
		Short: "GardenKeep server CLI",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(serve.Command(settings))

	return rootCmd
}

// setupFlags defines the global flags and binds them to viper so command
// line arguments take precedence over the config file.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Database.Path, "database", settings.Database.Path, "Path to the SQLite database file")
	rootCmd.PersistentFlags().StringVar(&settings.Server.Host, "host", settings.Server.Host, "Host address to bind the server to")
	rootCmd.PersistentFlags().IntVarP(&settings.Server.Port, "port", "p", settings.Server.Port, "Port to listen on")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("database"))
	_ = viper.BindPFlag("server.host", rootCmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("server.port", rootCmd.PersistentFlags().Lookup("port"))
}
