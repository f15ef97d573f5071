// ABOUTME: Root cobra command and shared flags
// ABOUTME: Loads and validates configuration before any subcommand runs

package main

import (
	"context"
	"fmt"

	"aiml-digests/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "digests",
	Short: "AI/ML news aggregator",
	Long: `digests polls RSS and Atom feeds about AI and machine learning, extracts
article text, summarizes it with an LLM and serves the results over HTTP.

Example usage:
  digests serve                    # API, feed scheduler and enrichment loop
  digests poll                     # Poll every enabled feed once
  digests process                  # Run one enrichment cycle
  digests arxiv --batch 50         # Extract ArXiv full texts
  digests feeds add https://arxiv.org/rss/cs.LG`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the command tree
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default $CONFIG_FILE)")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
