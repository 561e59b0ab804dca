package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/cryptonews/logger"
	"github.com/pevans/cryptonews/newsfeed"
	"github.com/pevans/cryptonews/sources"
)

// DiscoveryService refreshes the news feed in the background. It is the only
// writer of the feed.
type DiscoveryService struct {
	feed     *newsfeed.NewsFeed
	sources  []sources.Source
	fetcher  *Fetcher
	config   *DiscoveryConfig
	stopChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// DiscoveryConfig holds configuration for the discovery service.
type DiscoveryConfig struct {
	// Time to wait after a refresh cycle before starting the next one
	Interval time.Duration
	// Timeout per source fetch; zero disables it
	FetchTimeout time.Duration
	// Maximum number of sources to fetch in parallel
	Concurrency int
}

// DefaultDiscoveryConfig returns the default configuration: a five minute
// interval and sequential fetches.
func DefaultDiscoveryConfig() *DiscoveryConfig {
	return &DiscoveryConfig{
		Interval:     300 * time.Second,
		FetchTimeout: 30 * time.Second,
		Concurrency:  1,
	}
}

// RefreshResult summarizes one refresh cycle.
type RefreshResult struct {
	CycleID       uuid.UUID
	Articles      []newsfeed.Article
	SourcesSynced int
	SourcesFailed int
	Errors        []SourceError
	Duration      time.Duration
}

// NewDiscoveryService creates a new discovery service that fetches srcs into
// feed.
func NewDiscoveryService(
	feed *newsfeed.NewsFeed,
	srcs []sources.Source,
	fetcher *Fetcher,
	config *DiscoveryConfig,
) *DiscoveryService {
	if config == nil {
		config = DefaultDiscoveryConfig()
	}

	return &DiscoveryService{
		feed:     feed,
		sources:  srcs,
		fetcher:  fetcher,
		config:   config,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Run refreshes the feed immediately and then again each time the configured
// interval has elapsed after the previous cycle. Failures never stop the
// loop. It runs until Stop is called or the context is cancelled.
func (ds *DiscoveryService) Run(ctx context.Context) error {
	logger.Infof("Discovery service starting: %d sources, refresh every %v", len(ds.sources), ds.config.Interval)

	ds.refresh(ctx)

	timer := time.NewTimer(ds.config.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Discovery service stopping (context cancelled)")
			return ctx.Err()
		case <-ds.stopChan:
			logger.Infof("Discovery service stopping")
			return nil
		case <-timer.C:
			ds.refresh(ctx)
			timer.Reset(ds.config.Interval)
		}
	}
}

// Stop signals the discovery service to stop. It is safe to call more than
// once.
func (ds *DiscoveryService) Stop() {
	ds.stopOnce.Do(func() { close(ds.stopChan) })
}

// refresh runs one cycle for the loop, which has nothing to do with the
// result.
func (ds *DiscoveryService) refresh(ctx context.Context) {
	if _, err := ds.RefreshOnce(ctx); err != nil {
		logger.Warnf("Refresh cycle abandoned: %v", err)
	}
}

// RefreshOnce fetches every source, merges the results newest first and
// replaces the feed contents. Source failures are reported in the result,
// not as an error. The only error is cancellation of ctx, in which case the
// feed is left as it was.
func (ds *DiscoveryService) RefreshOnce(ctx context.Context) (*RefreshResult, error) {
	start := time.Now()
	cycleID := uuid.New()
	logger.Infof("Refreshing news (cycle %s)", cycleID)

	fetched := ds.fetcher.FetchAll(ctx, ds.sources)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	articles := newsfeed.Aggregate(fetched.PerSource)
	ds.feed.Replace(articles, cycleID, ds.now())

	result := &RefreshResult{
		CycleID:       cycleID,
		Articles:      articles,
		SourcesSynced: len(ds.sources) - len(fetched.Errors),
		SourcesFailed: len(fetched.Errors),
		Errors:        fetched.Errors,
		Duration:      time.Since(start),
	}

	logger.Infof("Refresh cycle %s done: %d articles from %d sources, %d failed, in %v",
		cycleID, len(articles), result.SourcesSynced, result.SourcesFailed, result.Duration)

	return result, nil
}
