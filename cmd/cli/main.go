// Package main provides the enricher CLI.
// Uses Cobra for command parsing. Cobra is the standard Go CLI framework
// (used by kubectl, docker, hugo, and many others).
//
// Run with: go run ./cmd/cli companies data/companies.csv
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globals holds flags shared by every subcommand.
type globals struct {
	configPath string
}

// rootCmd creates the root command. Cobra builds a tree of commands:
// enricher companies companies.csv
// enricher contacts contacts.xlsx results/contacts
func rootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:          "enricher",
		Short:        "Enrich company and contact spreadsheets with web search and an LLM",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv("ENRICHER_CONFIG_PATH"),
		"Path to a YAML config file")

	root.AddCommand(companiesCmd(g), contactsCmd(g), tierCmd(), statsCmd(g))
	return root
}

// load reads configuration and builds the CLI logger (always development mode).
func (g *globals) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}
