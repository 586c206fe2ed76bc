// Package main provides the entry point for the pagescan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pagescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagescan",
		Short: "Extract structured records from web pages",
		Long: `pagescan fetches web pages over HTTP and extracts structured records:
headings, links, images, table rows, and page metadata.

Extracted records are exported to JSON, CSV, plain text, or Markdown files.
Multiple URLs are scraped concurrently by a bounded worker pool, and every
successful scrape is saved to a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
