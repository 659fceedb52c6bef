package admin

import (
	"fmt"
	"time"
)

var apMonths = map[time.Month]string{
	time.January:   "Jan.",
	time.February:  "Feb.",
	time.August:    "Aug.",
	time.September: "Sept.",
	time.October:   "Oct.",
	time.November:  "Nov.",
	time.December:  "Dec.",
}

// apMonth abbreviates month names in Associated Press style.
func apMonth(m time.Month) string {
	if s, ok := apMonths[m]; ok {
		return s
	}
	return m.String()
}

// FormatDate renders a date as "Sept. 4, 2025".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.UTC()
	return fmt.Sprintf("%s %d, %d", apMonth(t.Month()), t.Day(), t.Year())
}

// FormatDateTime renders a timestamp as "Sept. 4, 2025, 3:30 p.m.".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.UTC()
	return FormatDate(t) + ", " + clock(t)
}

func clock(t time.Time) string {
	h, m := t.Hour(), t.Minute()
	switch {
	case h == 0 && m == 0:
		return "midnight"
	case h == 12 && m == 0:
		return "noon"
	}
	suffix := "a.m."
	if h >= 12 {
		suffix = "p.m."
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	if m == 0 {
		return fmt.Sprintf("%d %s", h, suffix)
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

// InputDateTime renders a timestamp for a datetime-local input.
func InputDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateTimeLayout)
}
