package newsfeed

// Article is a single news article fetched from a source. Articles are
// values: once built by a parser they are never modified.
type Article struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	// Source is the configured name of the feed, not its URL.
	Source string `json:"source"`
	// PubDate is the publication date exactly as it appeared in the feed.
	PubDate string `json:"pub_date"`
	// Timestamp is seconds since the epoch, derived from PubDate or from the
	// fetch time when PubDate could not be parsed. Used for ordering only.
	Timestamp int64 `json:"timestamp"`
}
