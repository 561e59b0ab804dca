package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pevans/cryptonews/discovery"
	"github.com/pevans/cryptonews/newsfeed"
)

type outputFormat string

const (
	formatTable   outputFormat = "table"
	formatJSON    outputFormat = "json"
	formatCompact outputFormat = "compact"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatCompact:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q (want table, json or compact)", s)
}

// printListTable prints articles in human-readable table format
func printListTable(w io.Writer, articles []newsfeed.Article, total int) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles to display.")
		return
	}

	fmt.Fprintf(w, "Showing %d of %d articles\n\n", len(articles), total)

	for _, a := range articles {
		fmt.Fprintf(w, "%s\n", truncate(a.Title, 70))
		fmt.Fprintf(w, "   %s | Published: %s\n", a.Source, formatPublished(a))
		if a.Description != "" {
			fmt.Fprintf(w, "   %s\n", wrapText(a.Description, 76, "   "))
		}
		fmt.Fprintf(w, "   URL: %s\n", a.Link)
		fmt.Fprintln(w)
	}
}

// printListJSON prints articles in JSON format
func printListJSON(w io.Writer, articles []newsfeed.Article, total int) error {
	output := map[string]any{
		"articles": articles,
		"total":    total,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(w, string(data))
	return nil
}

// printListCompact prints articles one per line
func printListCompact(w io.Writer, articles []newsfeed.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles to display.")
		return
	}

	for _, a := range articles {
		fmt.Fprintf(w, "%s %s (%s)\n", time.Unix(a.Timestamp, 0).UTC().Format("2006-01-02 15:04"), a.Title, a.Source)
	}
}

// printRefreshSummary reports how a refresh cycle went
func printRefreshSummary(w io.Writer, result *discovery.RefreshResult, verbose bool) {
	fmt.Fprintln(w, "Refresh completed:")
	fmt.Fprintf(w, "  Sources synced: %d\n", result.SourcesSynced)
	fmt.Fprintf(w, "  Sources failed: %d\n", result.SourcesFailed)
	fmt.Fprintf(w, "  Articles: %d\n", len(result.Articles))

	if verbose && len(result.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors:")
		for _, syncErr := range result.Errors {
			fmt.Fprintf(w, "  - %s: %v\n", syncErr.Source.Name, syncErr.Err)
		}
	}
}

// formatPublished shows the feed's own date string, or the timestamp when
// the feed gave none
func formatPublished(a newsfeed.Article) string {
	if a.PubDate != "" {
		return a.PubDate
	}
	return time.Unix(a.Timestamp, 0).UTC().Format("2006-01-02 15:04")
}

// truncate shortens s to at most max runes
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// wrapText wraps text to a maximum line width, indenting continuation lines
func wrapText(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}
