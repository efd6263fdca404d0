// Package main is the folio command: the portfolio scraping API server
// and one-shot scrape and analysis tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/use-agent/folio/config"
)

var rootCmd = &cobra.Command{
	Use:          "folio",
	Short:        "Portfolio scraping service",
	Long:         "folio loads public portfolio sites in a headless browser and extracts the owner's profile, skills, projects and experience as structured JSON.",
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		initLogger(config.Load().Log)
	},
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
