package invoice

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const isoDate = "2006-01-02"

var (
	ordinalRE   = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
	yearFirstRE = regexp.MustCompile(`(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`)
	dayFirstRE  = regexp.MustCompile(`(?:^|\D)(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})(?:\D|$)`)
	monthNameRE = regexp.MustCompile(`([A-Za-z]{3,9})\s+(\d{1,2}),\s*(\d{4})`)

	// dayMonthNameRE catches "15 Jan 2024" and "15-Jan-24" inside longer lines
	dayMonthNameRE = regexp.MustCompile(`(?i)\b(\d{1,2})[\s\-]+([a-z]{3,9})[\s\-,]+(\d{4}|\d{2})\b`)
	// monthWordRE gates the free-form parser so bare numbers are never read as timestamps
	monthWordRE = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
)

var monthPrefixes = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// datePattern turns a prepared span into a calendar date. matched reports
// whether the pattern recognised the shape, ok whether it is a real date.
type datePattern func(s string) (t time.Time, matched, ok bool)

// datePatterns run in order; the first that matches decides
var datePatterns = []datePattern{
	yearFirstDate,
	dayFirstDate,
	monthNameDate,
	freeFormDate,
}

// ParseDate recognises a date inside s and returns it as YYYY-MM-DD
func ParseDate(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	s = strings.ReplaceAll(s, ".", "/")
	s = ordinalRE.ReplaceAllString(s, "$1")
	for _, p := range datePatterns {
		t, matched, ok := p(s)
		if !matched {
			continue
		}
		if !ok {
			return "", false
		}
		return t.Format(isoDate), true
	}
	return "", false
}

func yearFirstDate(s string) (time.Time, bool, bool) {
	m := yearFirstRE.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false, false
	}
	t, ok := calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	return t, true, ok
}

func dayFirstDate(s string) (time.Time, bool, bool) {
	m := dayFirstRE.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false, false
	}
	t, ok := calendarDate(expandYear(atoi(m[3])), atoi(m[2]), atoi(m[1]))
	return t, true, ok
}

func monthNameDate(s string) (time.Time, bool, bool) {
	m := monthNameRE.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false, false
	}
	month, ok := monthFromName(m[1])
	if !ok {
		return time.Time{}, true, false
	}
	t, ok := calendarDate(atoi(m[3]), int(month), atoi(m[2]))
	return t, true, ok
}

// freeFormDate reads day-month-name spans embedded in longer lines, then
// timestamps and worded dates such as RFC 1123 or "7 March 2024".
func freeFormDate(s string) (time.Time, bool, bool) {
	if !monthWordRE.MatchString(s) {
		return time.Time{}, false, false
	}
	for _, m := range dayMonthNameRE.FindAllStringSubmatch(s, -1) {
		month, ok := monthFromName(m[2])
		if !ok {
			continue
		}
		if t, ok := calendarDate(expandYear(atoi(m[3])), int(month), atoi(m[1])); ok {
			return t, true, true
		}
	}
	if t, ok := parseAny(strings.TrimSpace(s)); ok {
		if d, ok := calendarDate(t.Year(), int(t.Month()), t.Day()); ok {
			return d, true, true
		}
	}
	return time.Time{}, false, false
}

// parseAny wraps dateparse, which panics on some malformed input
func parseAny(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// expandYear maps two digit years onto 1950-2049
func expandYear(y int) int {
	if y >= 100 {
		return y
	}
	if y >= 50 {
		return 1900 + y
	}
	return 2000 + y
}

func monthFromName(name string) (time.Month, bool) {
	if len(name) < 3 {
		return 0, false
	}
	m, ok := monthPrefixes[strings.ToLower(name[:3])]
	return m, ok
}

// calendarDate rejects dates that time.Date would silently roll over
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
