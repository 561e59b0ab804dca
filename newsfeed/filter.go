package newsfeed

import "strings"

// Matches reports whether the article contains term, case-insensitively, in
// its title, description or source name. An empty term matches everything.
func Matches(a Article, term string) bool {
	if term == "" {
		return true
	}

	needle := strings.ToLower(term)
	return strings.Contains(strings.ToLower(a.Title), needle) ||
		strings.Contains(strings.ToLower(a.Description), needle) ||
		strings.Contains(strings.ToLower(a.Source), needle)
}

// Filter returns the articles matching term in their original order. The
// result is always a new slice; articles is left untouched.
func Filter(articles []Article, term string) []Article {
	filtered := make([]Article, 0, len(articles))
	for _, a := range articles {
		if Matches(a, term) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
