// ABOUTME: One-shot pipeline commands: poll, process, arxiv and deep-summary
// ABOUTME: Each runs a single stage in the foreground and prints what it did

package main

import (
	"fmt"

	"aiml-digests/core/enrichment"
	"aiml-digests/pkg/utils/parse"
	"github.com/spf13/cobra"
)

var (
	arxivBatch      int
	arxivContinuous bool
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll every enabled feed once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.poller.PollAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Polled %d feeds (%d failed), %d new articles\n",
			summary.Feeds, summary.Failed, summary.NewArticles)
		return nil
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one enrichment cycle over the pending queues",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.processor.Enabled() {
			return enrichment.ErrDisabled
		}
		n, err := a.processor.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d articles\n", n)
		return nil
	},
}

var arxivCmd = &cobra.Command{
	Use:   "arxiv",
	Short: "Extract full texts of ArXiv articles",
	Long: `arxiv fetches the HTML rendering of each candidate paper, falling back to
the abstract from the ArXiv API. Without --continuous a single batch runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		batch := arxivBatch
		if batch <= 0 {
			batch = cfg.Arxiv.BatchSize
		}

		var n int
		if arxivContinuous {
			n, err = a.runner.RunContinuous(cmd.Context(), batch)
		} else {
			n, err = a.runner.RunBatch(cmd.Context(), batch)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d ArXiv articles\n", n)
		return nil
	},
}

var deepSummaryCmd = &cobra.Command{
	Use:   "deep-summary <article-id>",
	Short: "Generate the deep summary of one article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parse.ID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.processor.GenerateDeepSummaryFor(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deep summary generated for article %d\n", id)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup-keywords",
	Short: "Delete keywords no article uses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.store.CleanOrphanedKeywords(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphaned keywords\n", n)
		return nil
	},
}

func init() {
	arxivCmd.Flags().IntVar(&arxivBatch, "batch", 0, "articles per batch (default from config)")
	arxivCmd.Flags().BoolVar(&arxivContinuous, "continuous", false, "keep running batches until no candidates remain")

	rootCmd.AddCommand(pollCmd, processCmd, arxivCmd, deepSummaryCmd, cleanupCmd)
}
