// Package period parses and validates the calendar inputs of reports:
// single dates, inclusive date ranges and YYYY-MM month tokens. All values
// are interpreted in UTC.
package period

import (
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
)

const DateLayout = "2006-01-02"

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Range is a half-open interval [Start, End) of UTC instants.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Month is a validated month token with its window.
type Month struct {
	Token string
	Range
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns
// midnight UTC of that calendar date.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, common.Invalid(field, "date is required")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, common.Invalid(field, "invalid date %q", s)
	}
	return Day(t), nil
}

// Day truncates t to midnight UTC of its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseRange parses an inclusive [start, end] pair of dates. The returned
// Range ends at the midnight after end so every instant of the end date is
// included.
func ParseRange(start, end string) (Range, error) {
	s, err := ParseDate("start", start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseDate("end", end)
	if err != nil {
		return Range{}, err
	}
	if s.After(e) {
		return Range{}, common.Invalid("start", "start %s is after end %s", s.Format(DateLayout), e.Format(DateLayout))
	}
	return Range{Start: s, End: e.AddDate(0, 0, 1)}, nil
}

// ParseMonth validates a YYYY-MM token and returns its window
// [first day 00:00Z, first day of the next month 00:00Z).
func ParseMonth(token string) (Month, error) {
	if !monthPattern.MatchString(token) {
		return Month{}, common.Invalid("month", "must be YYYY-MM, got %q", token)
	}
	start, err := time.Parse("2006-01", token)
	if err != nil {
		return Month{}, common.Invalid("month", "no such month %q", token)
	}
	return Month{Token: token, Range: Range{Start: start, End: start.AddDate(0, 1, 0)}}, nil
}
