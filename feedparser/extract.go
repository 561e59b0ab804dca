package feedparser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTagNotFound is returned when an opening or closing tag is missing.
	ErrTagNotFound = errors.New("tag not found")
	// ErrInvalidTagPosition is returned when the first closing tag does not
	// come after the first opening tag.
	ErrInvalidTagPosition = errors.New("invalid tag positions")
)

// Extract returns the text between the first <tag> and the first </tag> in
// text. The scan is not hierarchical: nested or repeated elements with the
// same name are not told apart, and attributes on the opening tag prevent a
// match.
func Extract(text, tag string) (string, error) {
	startTag := "<" + tag + ">"
	endTag := "</" + tag + ">"

	start := strings.Index(text, startTag)
	end := strings.Index(text, endTag)
	if start < 0 || end < 0 {
		return "", fmt.Errorf("%w: %s", ErrTagNotFound, tag)
	}

	contentStart := start + len(startTag)
	if contentStart >= end {
		return "", fmt.Errorf("%w: %s", ErrInvalidTagPosition, tag)
	}

	return text[contentStart:end], nil
}
