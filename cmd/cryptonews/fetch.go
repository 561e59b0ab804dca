package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pevans/cryptonews/discovery"
	"github.com/pevans/cryptonews/logger"
	"github.com/pevans/cryptonews/newsfeed"
	"github.com/pevans/cryptonews/sources"
	"github.com/spf13/cobra"
)

var (
	flagFormat  string
	flagQuery   string
	flagLimit   int
	flagVerbose bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one refresh cycle and print the merged articles",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&flagFormat, "format", "table", "output format: table, json or compact")
	fetchCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "only show articles matching this term")
	fetchCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "maximum number of articles to show (0 for all)")
	fetchCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "show per-source errors")
}

func runFetch(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}
	if flagLimit < 0 {
		return fmt.Errorf("invalid limit: %d", flagLimit)
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	parser, err := newParser(cfg)
	if err != nil {
		return err
	}

	store, err := sources.NewSourceStore(cfg.MetadataDSN)
	if err != nil {
		return fmt.Errorf("failed to open source store: %w", err)
	}
	defer store.Close()

	if err := store.Sync(cfg.Sources); err != nil {
		return fmt.Errorf("failed to sync sources: %w", err)
	}

	discoveryConfig := &discovery.DiscoveryConfig{
		Interval:     cfg.RefreshInterval,
		FetchTimeout: cfg.FetchTimeout,
		Concurrency:  cfg.Concurrency,
	}
	feed := newsfeed.NewNewsFeed()
	fetcher := discovery.NewFetcher(parser, discoveryConfig, store)
	service := discovery.NewDiscoveryService(feed, cfg.Sources, fetcher, discoveryConfig)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := service.RefreshOnce(ctx)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	articles := newsfeed.Filter(result.Articles, flagQuery)
	total := len(articles)
	if flagLimit > 0 && flagLimit < total {
		articles = articles[:flagLimit]
	}

	out := cmd.OutOrStdout()
	switch format {
	case formatJSON:
		if err := printListJSON(out, articles, total); err != nil {
			return err
		}
	case formatCompact:
		printListCompact(out, articles)
	default:
		printListTable(out, articles, total)
	}

	if format != formatJSON {
		printRefreshSummary(cmd.ErrOrStderr(), result, flagVerbose)
	}

	if result.SourcesFailed > 0 && result.SourcesSynced == 0 {
		return fmt.Errorf("all %d sources failed", result.SourcesFailed)
	}
	return nil
}
