package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
)

var (
	// Command-line flags
	configFile string
	serverPort int
	serverHost string

	// Global state shared by commands
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "autoscraper",
	Short: "LLM-driven scraper generator",
	Long: `Autoscraper builds site-specific web scrapers from a URL and a natural
language description of the fields to extract, refines them until they
validate against the live page, and stores them for reuse.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	// Auto-discover config file if not specified
	if configFile == "" {
		if _, err := os.Stat("autoscraper.toml"); err == nil {
			configFile = "autoscraper.toml"
		} else if _, err := os.Stat("deployments/local/autoscraper.toml"); err == nil {
			configFile = "deployments/local/autoscraper.toml"
		}
	}

	// Load configuration (defaults -> file -> env), then apply CLI overrides
	var err error
	config, err = common.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if serverPort != 0 {
		config.Server.Port = serverPort
	}
	if serverHost != "" {
		config.Server.Host = serverHost
	}

	logger = common.InitLogger(config)

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&serverHost, "host", "", "Server host (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scrapersCmd)
	rootCmd.AddCommand(revalidateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
