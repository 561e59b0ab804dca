package discovery

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pevans/cryptonews/feedparser"
	"github.com/pevans/cryptonews/logger"
	"github.com/pevans/cryptonews/newsfeed"
	"github.com/pevans/cryptonews/sources"
	"golang.org/x/net/html/charset"
)

const userAgent = "cryptonews/1.0 (RSS aggregator; github.com/pevans/cryptonews)"

// HTTPStatusError is returned when a source answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// StatusRecorder receives the outcome of every source fetch.
type StatusRecorder interface {
	RecordSuccess(name string, articleCount int, at time.Time) error
	RecordFailure(name string, fetchErr error, at time.Time) error
}

// SourceError describes a failure to fetch a single source.
type SourceError struct {
	Source sources.Source
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source.Name, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// FetchResult holds the articles of every source, indexed like the sources
// passed to FetchAll, and the failures that occurred. A failed source has an
// empty entry.
type FetchResult struct {
	PerSource [][]newsfeed.Article
	Errors    []SourceError
}

// Fetcher retrieves and parses feeds over HTTP.
type Fetcher struct {
	client      *http.Client
	parser      feedparser.Parser
	timeout     time.Duration
	concurrency int
	recorder    StatusRecorder
	now         func() time.Time
}

// NewFetcher creates a fetcher. recorder may be nil.
func NewFetcher(parser feedparser.Parser, config *DiscoveryConfig, recorder StatusRecorder) *Fetcher {
	if config == nil {
		config = DefaultDiscoveryConfig()
	}

	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Fetcher{
		client:      &http.Client{},
		parser:      parser,
		timeout:     config.FetchTimeout,
		concurrency: concurrency,
		recorder:    recorder,
		now:         time.Now,
	}
}

// FetchAll fetches every source. With a concurrency of one the sources are
// fetched one after another; otherwise up to that many run at once. Either
// way the result keeps the order of srcs. A failing source never affects the
// others.
func (f *Fetcher) FetchAll(ctx context.Context, srcs []sources.Source) FetchResult {
	perSource := make([][]newsfeed.Article, len(srcs))
	errs := make([]error, len(srcs))

	if f.concurrency == 1 {
		for i, source := range srcs {
			perSource[i], errs[i] = f.fetchAndRecord(ctx, source)
		}
	} else {
		var wg sync.WaitGroup
		semaphore := make(chan struct{}, f.concurrency)
		for i, source := range srcs {
			wg.Add(1)
			go func(i int, s sources.Source) {
				defer wg.Done()
				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				perSource[i], errs[i] = f.fetchAndRecord(ctx, s)
			}(i, source)
		}
		wg.Wait()
	}

	result := FetchResult{PerSource: perSource}
	for i, err := range errs {
		if err != nil {
			result.Errors = append(result.Errors, SourceError{Source: srcs[i], Err: err})
		}
	}
	return result
}

// fetchAndRecord fetches one source, logs a failure and reports the outcome
// to the recorder. A failed source yields an empty, non-nil slice.
func (f *Fetcher) fetchAndRecord(ctx context.Context, source sources.Source) ([]newsfeed.Article, error) {
	start := time.Now()
	articles, err := f.FetchSource(ctx, source)
	duration := time.Since(start)

	if err != nil {
		logger.Warnf("Error fetching from %s (%s): %v", source.Name, source.URL, err)
		f.record(source, func(r StatusRecorder) error {
			return r.RecordFailure(source.Name, err, f.now())
		})
		return []newsfeed.Article{}, err
	}

	logger.Infof("Fetched %s: %d articles in %v", source.Name, len(articles), duration)
	f.record(source, func(r StatusRecorder) error {
		return r.RecordSuccess(source.Name, len(articles), f.now())
	})
	return articles, nil
}

func (f *Fetcher) record(source sources.Source, fn func(StatusRecorder) error) {
	if f.recorder == nil {
		return
	}
	if err := fn(f.recorder); err != nil {
		logger.Errorf("Failed to record fetch status for %s: %v", source.Name, err)
	}
}

// FetchSource retrieves one feed and parses it. There is no retry.
func (f *Fetcher) FetchSource(ctx context.Context, source sources.Source) ([]newsfeed.Article, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, URL: source.URL}
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decoding feed body: %w", err)
	}

	articles, err := f.parser.Parse(body, source.Name)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	return articles, nil
}
