// ABOUTME: feeds command group manages subscriptions from the shell
// ABOUTME: add, list, export and import share the JSON format of the HTTP API

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"aiml-digests/core/domain"
	"github.com/spf13/cobra"
)

var (
	feedName        string
	feedInterval    int
	feedMaxArticles int
	feedDisabled    bool
	exportOutput    string
	importOverwrite bool
)

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Manage feed subscriptions",
}

var feedsAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Subscribe to a feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := feedName
		if name == "" {
			name = domain.NameFromURL(args[0])
		}
		feed, err := domain.NewFeed(args[0], name)
		if err != nil {
			return err
		}
		if feedInterval > 0 {
			feed.PollingInterval = feedInterval
		}
		if feedMaxArticles > 0 {
			feed.MaxArticles = feedMaxArticles
		}
		feed.Enabled = !feedDisabled

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.store.AddFeed(cmd.Context(), feed)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added feed %d: %s\n", id, feed.DisplayName())
		return nil
	},
}

var feedsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List feeds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		feeds, err := a.store.ListFeeds(cmd.Context(), false)
		if err != nil {
			return err
		}
		return printFeeds(cmd.OutOrStdout(), feeds)
	},
}

func printFeeds(w io.Writer, feeds []*domain.Feed) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tENABLED\tINTERVAL\tARTICLES\tERRORS\tURL")
	for _, f := range feeds {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%dm\t%d\t%d\t%s\n",
			f.ID, f.DisplayName(), f.Enabled, f.PollingInterval, f.ArticleCount, f.ErrorCount, f.URL)
	}
	return tw.Flush()
}

var feedsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all feeds as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		feeds, err := a.store.ExportFeeds(cmd.Context())
		if err != nil {
			return err
		}
		if feeds == nil {
			feeds = []domain.FeedExport{}
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(domain.FeedExportFile{Feeds: feeds})
	},
}

var feedsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add feeds from an export file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := readExportFile(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.store.ImportFeeds(cmd.Context(), file.Feeds, importOverwrite)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported feeds: %d added, %d updated, %d skipped, %d errors\n",
			result.Added, result.Updated, result.Skipped, result.Errors)
		return nil
	},
}

// readExportFile decodes an export document; missing fields take the import defaults
func readExportFile(path string) (*domain.FeedExportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	var file domain.FeedExportFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	return &file, nil
}

func init() {
	feedsAddCmd.Flags().StringVar(&feedName, "name", "", "display name (default derived from the URL)")
	feedsAddCmd.Flags().IntVar(&feedInterval, "interval", 0, "polling interval in minutes (default 30)")
	feedsAddCmd.Flags().IntVar(&feedMaxArticles, "max-articles", 0, "newest articles kept (default 100)")
	feedsAddCmd.Flags().BoolVar(&feedDisabled, "disabled", false, "add the feed without polling it")

	feedsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file instead of stdout")
	feedsImportCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "update feeds whose URL already exists")

	feedsCmd.AddCommand(feedsAddCmd, feedsListCmd, feedsExportCmd, feedsImportCmd)
	rootCmd.AddCommand(feedsCmd)
}
