package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagescan/pagescan/internal/config"
	"github.com/pagescan/pagescan/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List past scrape reports",
		Long: `History lists scrape reports saved in the local database.

Without arguments it lists every stored report, newest first. With a URL
argument it lists only the reports for that page.

Examples:
  # List all stored reports
  pagescan history

  # List reports for one page
  pagescan history https://example.com

  # Print a stored report as JSON by its ID
  pagescan history --show 42

  # List every URL that has at least one stored report
  pagescan history --urls`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("show", 0,
		"Print the full report with the given ID as JSON")
	cmd.Flags().Bool("urls", false,
		"List distinct scraped URLs instead of reports")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory containing the pagescan database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	// Opening read-only: a missing database just means nothing was scraped yet
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No scrape history found.")
		return nil //nolint:nilerr // Missing history is not a failure
	}
	defer db.Close()

	ctx := cmd.Context()

	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	if showID > 0 {
		report, err := db.GetReportByID(ctx, showID)
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("no report with id %d", showID)
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	listURLs, err := cmd.Flags().GetBool("urls")
	if err != nil {
		return err
	}
	if listURLs {
		urls, err := db.ListScrapedURLs(ctx)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No scrape history found.")
			return nil
		}
		for _, url := range urls {
			fmt.Fprintln(cmd.OutOrStdout(), url)
		}
		return nil
	}

	url := ""
	if len(args) == 1 {
		url = args[0]
	}

	metas, err := db.GetHistoryWithMetadata(ctx, url)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scrape history found.")
		return nil
	}

	for _, meta := range metas {
		status := "ok"
		if meta.Failed {
			status = "failed"
		}
		records := 0
		if meta.Summary != nil {
			records = meta.Summary.HeadingCount + meta.Summary.LinkCount +
				meta.Summary.ImageCount + meta.Summary.TableRowCount +
				meta.Summary.MetadataCount
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-6d %s  %-6s  %3d  %4d record(s)  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			status,
			meta.StatusCode,
			records,
			meta.URL,
		)
	}

	return nil
}
