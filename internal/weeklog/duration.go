package weeklog

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// NormalizeTime truncates "HH:MM:SS" to "HH:MM". Anything else is trimmed and
// returned as is.
func NormalizeTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ":")
}

func ValidTime(s string) bool {
	_, err := parseHHMM(s)
	return err == nil
}

// Duration returns the elapsed time from start to end as "H:MM". An end
// earlier than start crosses midnight exactly once. Equal or invalid inputs
// yield "0:00".
func Duration(start, end string) string {
	s, err := parseHHMM(NormalizeTime(start))
	if err != nil {
		return FormatMinutes(0)
	}
	e, err := parseHHMM(NormalizeTime(end))
	if err != nil {
		return FormatMinutes(0)
	}
	mins := e - s
	if mins < 0 {
		mins += minutesPerDay
	}
	return FormatMinutes(mins)
}

// SplitDuration sums the morning and afternoon segments. Incomplete or invalid
// segments contribute nothing; a segment ending before it starts counts as zero.
func SplitDuration(morningIn, morningOut, afternoonIn, afternoonOut string) string {
	return FormatMinutes(segmentMinutes(morningIn, morningOut) + segmentMinutes(afternoonIn, afternoonOut))
}

func segmentMinutes(in, out string) int {
	s, err := parseHHMM(NormalizeTime(in))
	if err != nil {
		return 0
	}
	e, err := parseHHMM(NormalizeTime(out))
	if err != nil {
		return 0
	}
	if e < s {
		return 0
	}
	return e - s
}

func FormatMinutes(mins int) string {
	if mins <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}

// ParseTotal converts an "H:MM" total back to minutes.
func ParseTotal(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid total %q, expected H:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("invalid total hours in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid total minutes in %q", s)
	}
	return h*60 + m, nil
}

func parseHHMM(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || !twoDigits(parts[0]) || !twoDigits(parts[1]) {
		return 0, fmt.Errorf("must be HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute")
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out of range")
	}
	return h*60 + m, nil
}

func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}
