package main

import (
	"fmt"
	"io"

	"github.com/pevans/cryptonews/logger"
	"github.com/pevans/cryptonews/sources"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources with their fetch health",
	RunE:  runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := sources.NewSourceStore(cfg.MetadataDSN)
	if err != nil {
		return fmt.Errorf("failed to open source store: %w", err)
	}
	defer store.Close()

	if err := store.Sync(cfg.Sources); err != nil {
		return fmt.Errorf("failed to sync sources: %w", err)
	}

	statuses, err := store.ListStatuses()
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	printSources(cmd.OutOrStdout(), statuses)
	return nil
}

// printSources prints one line per source followed by its health details
func printSources(w io.Writer, statuses []sources.SourceStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "No sources configured.")
		return
	}

	fmt.Fprintf(w, "%-20s %-8s %-8s %-20s %s\n", "NAME", "ARTICLES", "ERRORS", "LAST SUCCESS", "URL")
	for _, status := range statuses {
		lastSuccess := "never"
		if status.LastSuccessAt != nil {
			lastSuccess = status.LastSuccessAt.Local().Format("2006-01-02 15:04:05")
		}

		fmt.Fprintf(w, "%-20s %-8d %-8d %-20s %s\n",
			truncate(status.Name, 20),
			status.ArticleCount,
			status.FetchErrorCount,
			lastSuccess,
			status.URL,
		)
		if status.LastError != nil {
			fmt.Fprintf(w, "  last error: %s\n", *status.LastError)
		}
	}
}
