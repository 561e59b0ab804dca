package feedparser

import (
	"fmt"
	"io"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/cryptonews/newsfeed"
)

// GofeedParser parses RSS and Atom documents with gofeed. It applies the
// same description and timestamp rules as ScanParser, but understands
// CDATA, entities, namespaces and Atom entries.
type GofeedParser struct {
	parser *gofeed.Parser
	// Now supplies the fallback timestamp for items without a parseable date.
	Now func() time.Time
}

// NewGofeedParser creates a gofeed-backed parser using the wall clock.
func NewGofeedParser() *GofeedParser {
	return &GofeedParser{
		parser: gofeed.NewParser(),
		Now:    time.Now,
	}
}

// Parse decodes the feed and converts its items. Items missing a title,
// link, description or publication date are skipped, matching ScanParser.
func (p *GofeedParser) Parse(r io.Reader, sourceName string) ([]newsfeed.Article, error) {
	feed, err := p.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return FeedToArticles(feed, sourceName, p.Now()), nil
}

// FeedToArticles converts every complete item in feed to an article.
func FeedToArticles(feed *gofeed.Feed, sourceName string, now time.Time) []newsfeed.Article {
	articles := make([]newsfeed.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		article, ok := FeedItemToArticle(item, sourceName, now)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}
	return articles
}

// FeedItemToArticle converts a single feed item. It reports false when a
// required field is empty.
func FeedItemToArticle(item *gofeed.Item, sourceName string, now time.Time) (newsfeed.Article, bool) {
	// Atom entries carry <updated> when <published> is absent
	pubDate := item.Published
	parsed := item.PublishedParsed
	if pubDate == "" {
		pubDate = item.Updated
		parsed = item.UpdatedParsed
	}

	if item.Title == "" || item.Link == "" || item.Description == "" || pubDate == "" {
		return newsfeed.Article{}, false
	}

	timestamp := now.Unix()
	if parsed != nil {
		timestamp = parsed.Unix()
	}

	return newArticle(item.Title, item.Link, item.Description, pubDate, sourceName, timestamp), true
}
