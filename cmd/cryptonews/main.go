package main

import (
	"fmt"
	"os"

	"github.com/pevans/cryptonews/config"
	"github.com/pevans/cryptonews/feedparser"
	"github.com/pevans/cryptonews/logger"
	"github.com/spf13/cobra"
)

// Set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "cryptonews",
	Short:         "Cryptocurrency news aggregator",
	Long:          "cryptonews periodically fetches crypto news RSS feeds, merges them newest first and serves them as a web page and a JSON API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.cryptonews/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cryptonews %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and initializes logging from it.
func setup() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return cfg, nil
}

// newParser returns the feed parser selected by the configuration.
func newParser(cfg *config.Config) (feedparser.Parser, error) {
	return feedparser.New(cfg.Parser)
}
