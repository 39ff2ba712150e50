package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"adscout/internal/domain"
)

// isoTime matches the part after 'T': hours with optional minutes, seconds and
// fraction (extended or basic form), then an optional Z or numeric offset.
var isoTime = regexp.MustCompile(`^(\d{2})(?::?(\d{2})(?::?(\d{2})(?:[.,]\d+)?)?)?\s*(?:Z|[+-]\d{2}(?::?\d{2}(?::?\d{2}(?:\.\d+)?)?)?)?$`)

// Date layouts accepted before the 'T' separator.
var isoDateLayouts = []string{"2006-01-02", "20060102"}

const dateLayout = "2006-1-2"

// InRange reports whether dateText falls within [start, end], compared as
// calendar dates. Missing, non-string or unparseable values are included:
// a record is only dropped when its date is known to be outside the range.
func InRange(dateText any, start, end time.Time) bool {
	text, ok := dateText.(string)
	if !ok || text == "" {
		return true
	}

	d, ok := parseCalendarDate(text)
	if !ok {
		return true
	}

	return !d.Before(calendarDate(start)) && !d.After(calendarDate(end))
}

// InDateRange applies InRange to a record's start date.
func InDateRange(rec domain.CanonicalAdRecord, r domain.DateRange) bool {
	return InRange(rec.StartDate, r.Start, r.End)
}

// parseCalendarDate returns the date as written in the text, ignoring any
// time-of-day and zone offset.
func parseCalendarDate(text string) (time.Time, bool) {
	datePart, timePart, isDateTime := strings.Cut(text, "T")
	if !isDateTime {
		t, err := time.Parse(dateLayout, text)
		if err != nil {
			return time.Time{}, false
		}
		return calendarDate(t), true
	}

	if !validISOTime(timePart) {
		return time.Time{}, false
	}
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, datePart); err == nil {
			return calendarDate(t), true
		}
	}
	return time.Time{}, false
}

func validISOTime(text string) bool {
	m := isoTime.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	limits := []int{23, 59, 59}
	for i, limit := range limits {
		if m[i+1] == "" {
			continue
		}
		if n, _ := strconv.Atoi(m[i+1]); n > limit {
			return false
		}
	}
	return true
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
