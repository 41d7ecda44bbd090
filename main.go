package main

import (
	"fmt"
	"os"

	"github.com/gardenkeep/gardenkeep-go/cmd"
	"github.com/gardenkeep/gardenkeep-go/internal/conf"
	"github.com/gardenkeep/gardenkeep-go/internal/logging"
)

func main() {
	logging.Init(nil)

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
