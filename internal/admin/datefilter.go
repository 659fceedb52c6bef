package admin

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"
)

var dateFilterChoices = []struct {
	value, label string
}{
	{"", "Any date"},
	{"today", "Today"},
	{"past_7_days", "Past 7 days"},
	{"this_month", "This month"},
	{"this_year", "This year"},
}

// dateFilter renders the list filter and returns the half-open range the
// selected choice covers.
func dateFilter(params url.Values, now time.Time) ([]Choice, *time.Time, *time.Time) {
	selected := params.Get(ParamDate)
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	var from, to time.Time
	switch selected {
	case "today":
		from, to = today, tomorrow
	case "past_7_days":
		from, to = today.AddDate(0, 0, -7), tomorrow
	case "this_month":
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	case "this_year":
		from = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0)
	default:
		selected = ""
	}

	choices := make([]Choice, 0, len(dateFilterChoices))
	for _, c := range dateFilterChoices {
		choices = append(choices, Choice{
			Label:    c.label,
			URL:      withParams(params, map[string]string{ParamDate: c.value}, ParamPage),
			Selected: c.value == selected,
		})
	}
	if selected == "" {
		return choices, nil, nil
	}
	return choices, &from, &to
}

// level is the position in the date hierarchy; zero fields are unset.
type level struct {
	year  int
	month time.Month
	day   int
}

func drillDown(params url.Values) level {
	var l level
	y, err := strconv.Atoi(params.Get(ParamYear))
	if err != nil || y < 1 || y > 9999 {
		return l
	}
	l.year = y
	m, err := strconv.Atoi(params.Get(ParamMonth))
	if err != nil || m < 1 || m > 12 {
		return l
	}
	l.month = time.Month(m)
	d, err := strconv.Atoi(params.Get(ParamDay))
	if err != nil || d < 1 || d > daysIn(l.year, l.month) {
		return l
	}
	l.day = d
	return l
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (l level) bounds() (*time.Time, *time.Time) {
	var from, to time.Time
	switch {
	case l.day != 0:
		from = time.Date(l.year, l.month, l.day, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 0, 1)
	case l.month != 0:
		from = time.Date(l.year, l.month, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	case l.year != 0:
		from = time.Date(l.year, 1, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0)
	default:
		return nil, nil
	}
	return &from, &to
}

// hierarchy links to the distinct years, months or days found in dates
// one level below the current position.
func (l level) hierarchy(params url.Values, dates []time.Time) *Hierarchy {
	h := &Hierarchy{}
	drop := []string{ParamYear, ParamMonth, ParamDay, ParamPage}
	link := func(label string, y int, m time.Month, d int) Choice {
		set := map[string]string{ParamYear: strconv.Itoa(y)}
		if m != 0 {
			set[ParamMonth] = strconv.Itoa(int(m))
		}
		if d != 0 {
			set[ParamDay] = strconv.Itoa(d)
		}
		return Choice{Label: label, URL: withParams(params, set, drop...)}
	}

	switch {
	case l.day != 0:
		back := link(fmt.Sprintf("%s %d", l.month, l.year), l.year, l.month, 0)
		h.Back = &back
		h.Links = []Choice{{Label: fmt.Sprintf("%s %d", apMonth(l.month), l.day), Selected: true}}
		return h
	case l.month != 0:
		back := link(strconv.Itoa(l.year), l.year, 0, 0)
		h.Back = &back
	case l.year != 0:
		h.Back = &Choice{Label: "All dates", URL: withParams(params, nil, drop...)}
	}

	seen := map[int]bool{}
	var keys []int
	for _, d := range dates {
		d = d.UTC()
		var key int
		switch {
		case l.month != 0:
			key = d.Day()
		case l.year != 0:
			key = int(d.Month())
		default:
			key = d.Year()
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Ints(keys)

	for _, k := range keys {
		switch {
		case l.month != 0:
			h.Links = append(h.Links, link(fmt.Sprintf("%s %d", apMonth(l.month), k), l.year, l.month, k))
		case l.year != 0:
			h.Links = append(h.Links, link(time.Month(k).String(), l.year, time.Month(k), 0))
		default:
			h.Links = append(h.Links, link(strconv.Itoa(k), k, 0, 0))
		}
	}
	return h
}

func later(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.After(*b) {
		return a
	}
	return b
}

func earlier(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.Before(*b) {
		return a
	}
	return b
}
