package newsfeed

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewsFeed holds the articles produced by the most recent refresh cycle. One
// writer replaces the whole sequence per cycle; any number of readers take
// snapshots concurrently.
type NewsFeed struct {
	mu          sync.RWMutex
	articles    []Article
	refreshedAt time.Time
	cycleID     uuid.UUID
}

// Snapshot is a point-in-time view of the feed. Articles must be treated as
// read-only since the slice is shared with other readers.
type Snapshot struct {
	Articles    []Article
	RefreshedAt time.Time
	CycleID     uuid.UUID
}

// NewNewsFeed creates an empty news feed.
func NewNewsFeed() *NewsFeed {
	return &NewsFeed{
		articles: []Article{},
	}
}

// Replace swaps in the articles of a completed refresh cycle. The previous
// contents are discarded.
func (nf *NewsFeed) Replace(articles []Article, cycleID uuid.UUID, refreshedAt time.Time) {
	// Copy outside the lock so the caller can keep using its slice
	owned := make([]Article, len(articles))
	copy(owned, articles)

	nf.mu.Lock()
	nf.articles = owned
	nf.cycleID = cycleID
	nf.refreshedAt = refreshedAt
	nf.mu.Unlock()
}

// Snapshot returns the current articles together with the refresh metadata
// that produced them. RefreshedAt is zero until the first Replace.
func (nf *NewsFeed) Snapshot() Snapshot {
	nf.mu.RLock()
	defer nf.mu.RUnlock()

	return Snapshot{
		Articles:    nf.articles,
		RefreshedAt: nf.refreshedAt,
		CycleID:     nf.cycleID,
	}
}

// Len returns the number of cached articles.
func (nf *NewsFeed) Len() int {
	nf.mu.RLock()
	defer nf.mu.RUnlock()
	return len(nf.articles)
}
