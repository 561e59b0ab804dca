package feedparser

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pevans/cryptonews/logger"
	"github.com/pevans/cryptonews/newsfeed"
)

const (
	// itemBoundary separates item fragments in a feed document.
	itemBoundary = "<item>"
	// maxDescriptionLen is the number of characters of description kept.
	maxDescriptionLen = 200
	// ellipsis is always appended to a description, truncated or not.
	ellipsis = "..."
)

// Parser turns a feed document into articles attributed to sourceName.
type Parser interface {
	Parse(r io.Reader, sourceName string) ([]newsfeed.Article, error)
}

// New returns the parser registered under name: "scan" (the default when
// name is empty) or "gofeed".
func New(name string) (Parser, error) {
	switch name {
	case "", "scan":
		return NewScanParser(), nil
	case "gofeed":
		return NewGofeedParser(), nil
	default:
		return nil, fmt.Errorf("unknown parser: %s", name)
	}
}

// ScanParser extracts items with a substring scan rather than an XML parser.
// It tolerates malformed documents but does not understand namespaces,
// CDATA, entities or attributes.
type ScanParser struct {
	// Now supplies the fallback timestamp for unparseable dates.
	Now func() time.Time
}

// NewScanParser creates a scan parser using the wall clock.
func NewScanParser() *ScanParser {
	return &ScanParser{Now: time.Now}
}

// Parse reads the whole document and parses it with ParseItems.
func (p *ScanParser) Parse(r io.Reader, sourceName string) ([]newsfeed.Article, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	return ParseItems(string(body), sourceName, p.Now()), nil
}

// ParseItems splits body into <item> fragments and builds one article per
// fragment that has a title, link, description and pubDate. Fragments missing
// any of them are skipped. Everything before the first <item> is feed-level
// metadata and is ignored. now is used as the timestamp of articles whose
// pubDate cannot be parsed.
func ParseItems(body, sourceName string, now time.Time) []newsfeed.Article {
	fragments := strings.Split(body, itemBoundary)
	if len(fragments) <= 1 {
		return []newsfeed.Article{}
	}

	articles := make([]newsfeed.Article, 0, len(fragments)-1)
	for i, fragment := range fragments[1:] {
		article, err := parseFragment(fragment, sourceName, now)
		if err != nil {
			logger.Debugf("Skipping item %d from %s: %v", i, sourceName, err)
			continue
		}
		articles = append(articles, article)
	}

	return articles
}

// parseFragment builds an article from a single item fragment.
func parseFragment(fragment, sourceName string, now time.Time) (newsfeed.Article, error) {
	title, err := Extract(fragment, "title")
	if err != nil {
		return newsfeed.Article{}, err
	}
	link, err := Extract(fragment, "link")
	if err != nil {
		return newsfeed.Article{}, err
	}
	description, err := Extract(fragment, "description")
	if err != nil {
		return newsfeed.Article{}, err
	}
	pubDate, err := Extract(fragment, "pubDate")
	if err != nil {
		return newsfeed.Article{}, err
	}

	return newArticle(title, link, description, pubDate, sourceName, Timestamp(pubDate, now)), nil
}

// newArticle applies the description rules shared by all parsers.
func newArticle(title, link, description, pubDate, sourceName string, timestamp int64) newsfeed.Article {
	return newsfeed.Article{
		Title:       title,
		Link:        link,
		Description: TruncateDescription(description),
		Source:      sourceName,
		PubDate:     pubDate,
		Timestamp:   timestamp,
	}
}

// TruncateDescription keeps the first 200 characters of s and appends an
// ellipsis. The ellipsis is added even when nothing was cut.
func TruncateDescription(s string) string {
	count := 0
	for i := range s {
		if count == maxDescriptionLen {
			return s[:i] + ellipsis
		}
		count++
	}
	return s + ellipsis
}
