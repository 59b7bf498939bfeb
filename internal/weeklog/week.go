package weeklog

import (
	"fmt"
	"regexp"
	"time"
)

const isoLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Day is one calendar day of an expanded week. Date is always ISO; Key is the
// buffer key in the configured KeyFormat.
type Day struct {
	Date    string `json:"date"`
	Key     string `json:"key"`
	Weekday string `json:"weekday"`
}

func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func FormatISO(t time.Time) string {
	return t.Format(isoLayout)
}

// ExpandWeek returns every day from start to end inclusive. An empty end means
// an implicit seven-day span. Invalid dates or end before start yield no days.
func ExpandWeek(start, end string, keys KeyFormat) []Day {
	from, err := ParseDate(start)
	if err != nil {
		return nil
	}
	to := from.AddDate(0, 0, 6)
	if end != "" {
		to, err = ParseDate(end)
		if err != nil {
			return nil
		}
	}
	if to.Before(from) {
		return nil
	}

	var days []Day
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, Day{
			Date:    FormatISO(d),
			Key:     keys.Format(d),
			Weekday: d.Weekday().String(),
		})
	}
	return days
}

func WeekStartMonday(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, t.Location())
}

// dateOnly trims a backend date or datetime down to its YYYY-MM-DD prefix.
func dateOnly(s string) string {
	if len(s) > len(isoLayout) {
		return s[:len(isoLayout)]
	}
	return s
}
