package feedparser

import (
	"errors"
	"strings"
	"time"
)

// rfc2822Layouts are the internet message date forms seen in RSS pubDate
// elements: with or without the weekday and seconds, and with a numeric or
// named zone.
var rfc2822Layouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04 MST",
}

// obsoleteZones holds the named zones RFC 2822 still accepts. time.Parse
// would otherwise treat an unknown abbreviation as UTC.
var obsoleteZones = map[string]int{
	"UT":  0,
	"UTC": 0,
	"GMT": 0,
	"EST": -5 * 3600,
	"EDT": -4 * 3600,
	"CST": -6 * 3600,
	"CDT": -5 * 3600,
	"MST": -7 * 3600,
	"MDT": -6 * 3600,
	"PST": -8 * 3600,
	"PDT": -7 * 3600,
}

var errUnknownZone = errors.New("unknown time zone")

// ParseDate parses an RFC 2822 style date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	// time.Parse needs at least three letters for a zone name
	if strings.HasSuffix(value, " UT") {
		value += "C"
	}

	var firstErr error
	for _, layout := range rfc2822Layouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if strings.HasSuffix(layout, "MST") {
			return fixZone(t)
		}
		return t, nil
	}

	return time.Time{}, firstErr
}

// fixZone applies the offset of a named zone that time.Parse could not
// resolve on its own.
func fixZone(t time.Time) (time.Time, error) {
	name, _ := t.Zone()
	offset, ok := obsoleteZones[strings.ToUpper(name)]
	if !ok {
		return time.Time{}, errUnknownZone
	}

	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0,
		time.FixedZone(name, offset)), nil
}

// Timestamp returns the Unix time of pubDate, or of now when pubDate cannot
// be parsed.
func Timestamp(pubDate string, now time.Time) int64 {
	t, err := ParseDate(pubDate)
	if err != nil {
		return now.Unix()
	}
	return t.Unix()
}
