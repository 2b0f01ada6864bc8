// Package week normalizes feed date strings onto a single timezone-naive
// timeline and maps instants to ISO week tags of the form "2025-W31".
package week

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// layouts tried in order after the general-purpose parser fails. Mirrors the
// formats that actually show up in the configured feeds.
var layouts = []string{
	time.RFC1123Z,                 // RFC 822 with numeric zone
	time.RFC1123,                  // RFC 822 with zone name (incl. GMT)
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 02 Jan 2006 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse attempts to parse an arbitrary date string. It returns ok=false when
// nothing matches; unparsable dates are never an error condition, callers
// supply their own fallback (typically the current instant).
//
// Results are normalized to a naive timeline: the wall-clock fields are kept
// and the original offset is dropped, so all comparisons happen on one
// consistent timeline. Feeds here do not require cross-timezone precision.
func Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		return naive(t), true
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return naive(t), true
		}
	}
	return time.Time{}, false
}

// Tag formats the ISO calendar (year, week) of t as "<year>-W<NN>".
func Tag(t time.Time) string {
	year, wk := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, wk)
}

// CurrentTag is the tag for the current instant, the fallback for entries
// whose dates cannot be parsed.
func CurrentTag() string {
	return Tag(time.Now())
}

// Bounds returns Monday 00:00:00.000000 and Sunday 23:59:59.999999 of t's
// week, on the same naive timeline as t.
func Bounds(t time.Time) (start, end time.Time) {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).
		AddDate(0, 0, -daysSinceMonday)
	end = start.AddDate(0, 0, 6).
		Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999999*time.Microsecond)
	return start, end
}

// BoundsForTag resolves a "<year>-W<NN>" tag to its week bounds. January 4th
// is always in ISO week 1, which anchors the calculation.
func BoundsForTag(tag string) (start, end time.Time, err error) {
	var year, wk int
	if _, err := fmt.Sscanf(tag, "%d-W%d", &year, &wk); err != nil || wk < 1 || wk > 53 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week tag %q", tag)
	}
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekOneMonday, _ := Bounds(jan4)
	start = weekOneMonday.AddDate(0, 0, (wk-1)*7)
	_, end = Bounds(start)
	return start, end, nil
}

// naive keeps t's wall-clock reading and discards its zone.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
