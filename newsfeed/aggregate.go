package newsfeed

import "sort"

// Aggregate merges per-source article lists, given in configured source
// order, into one list sorted newest first. The sort is stable, so articles
// with equal timestamps keep their source-then-discovery order. Duplicates
// across sources are kept.
func Aggregate(perSource [][]Article) []Article {
	total := 0
	for _, articles := range perSource {
		total += len(articles)
	}

	merged := make([]Article, 0, total)
	for _, articles := range perSource {
		merged = append(merged, articles...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})

	return merged
}
