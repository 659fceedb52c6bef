package admin

import (
	"context"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query parameters understood by list pages.
const (
	ParamSearch = "q"
	ParamOrder  = "o"
	ParamPage   = "p"
	ParamDate   = "date"
	ParamYear   = "year"
	ParamMonth  = "month"
	ParamDay    = "day"
)

// Changelist is a rendered list page.
type Changelist struct {
	*Meta
	Headers      []Header
	Rows         []Row
	Search       string
	SearchFields []string
	DateField    string
	Filters      []Choice
	Hierarchy    *Hierarchy
	Page         int
	Pages        int
	Total        int
	PageLinks    []Choice
	Query        string
}

// Header is a column title; SortURL is empty for unsortable columns.
type Header struct {
	Label      string
	SortURL    string
	Sorted     bool
	Descending bool
}

// Row is one listed record.
type Row struct {
	ID    int64
	Cells []template.HTML
}

// Choice is a link in a filter, the date hierarchy or the paginator.
type Choice struct {
	Label    string
	URL      string
	Selected bool
}

// Hierarchy is the year, month and day drill-down above the list.
type Hierarchy struct {
	Back  *Choice
	Links []Choice
}

func (m *ModelAdmin[T]) changelist(ctx context.Context, params url.Values, perPage int, now time.Time) (*Changelist, error) {
	cl := &Changelist{
		Meta:         &m.Meta,
		Search:       strings.TrimSpace(params.Get(ParamSearch)),
		SearchFields: m.SearchFields,
		DateField:    m.DateField,
		Query:        params.Encode(),
	}

	q := Query{Search: cl.Search, OrderBy: m.ordering(params)}
	if m.DateField != "" {
		var from, to *time.Time
		cl.Filters, from, to = dateFilter(params, now)
		level := drillDown(params)
		hFrom, hTo := level.bounds()
		q.From, q.To = later(from, hFrom), earlier(to, hTo)

		if m.Dates != nil {
			dates, err := m.Dates(ctx, q)
			if err != nil {
				return nil, err
			}
			cl.Hierarchy = level.hierarchy(params, dates)
		}
	}

	total, err := m.page(ctx, cl, q, params, perPage)
	if err != nil {
		return nil, err
	}
	cl.Total = total
	cl.Headers = m.headers(params, q.OrderBy)
	return cl, nil
}

func (m *ModelAdmin[T]) page(ctx context.Context, cl *Changelist, q Query, params url.Values, perPage int) (int, error) {
	cl.Page, _ = strconv.Atoi(params.Get(ParamPage))
	if cl.Page < 1 {
		cl.Page = 1
	}
	q.Limit = perPage
	q.Offset = (cl.Page - 1) * perPage

	records, total, err := m.List(ctx, q)
	if err != nil {
		return 0, err
	}
	cl.Pages = (total + perPage - 1) / perPage
	if cl.Pages < 1 {
		cl.Pages = 1
	}
	if cl.Page > cl.Pages && total > 0 {
		params = cloneValues(params)
		params.Set(ParamPage, strconv.Itoa(cl.Pages))
		return m.page(ctx, cl, q, params, perPage)
	}

	cl.Rows = make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{ID: m.Key(rec)}
		for _, col := range m.Columns {
			row.Cells = append(row.Cells, col.Cell(rec))
		}
		cl.Rows = append(cl.Rows, row)
	}
	if cl.Pages > 1 {
		for i := 1; i <= cl.Pages; i++ {
			cl.PageLinks = append(cl.PageLinks, Choice{
				Label:    strconv.Itoa(i),
				URL:      withParams(params, map[string]string{ParamPage: strconv.Itoa(i)}),
				Selected: i == cl.Page,
			})
		}
	}
	return total, nil
}

// ordering returns the requested sort when it names a sortable column,
// otherwise the model default.
func (m *ModelAdmin[T]) ordering(params url.Values) []string {
	o := params.Get(ParamOrder)
	if field := strings.TrimPrefix(o, "-"); field != "" {
		for _, col := range m.Columns {
			if col.Order == field {
				return []string{o}
			}
		}
	}
	return m.Ordering
}

func (m *ModelAdmin[T]) headers(params url.Values, order []string) []Header {
	var primary string
	if len(order) > 0 {
		primary = order[0]
	}
	out := make([]Header, 0, len(m.Columns))
	for _, col := range m.Columns {
		h := Header{Label: col.Label}
		if col.Order != "" {
			next := col.Order
			switch primary {
			case col.Order:
				h.Sorted = true
				next = "-" + col.Order
			case "-" + col.Order:
				h.Sorted, h.Descending = true, true
			}
			h.SortURL = withParams(params, map[string]string{ParamOrder: next}, ParamPage)
		}
		out = append(out, h)
	}
	return out
}

// withParams returns a query string with set applied and drop removed.
// Changing any filter sends the user back to the first page.
func withParams(params url.Values, set map[string]string, drop ...string) string {
	v := cloneValues(params)
	for _, k := range drop {
		v.Del(k)
	}
	for k, val := range set {
		if val == "" {
			v.Del(k)
			continue
		}
		v.Set(k, val)
	}
	if enc := v.Encode(); enc != "" {
		return "?" + enc
	}
	return "?"
}

func cloneValues(params url.Values) url.Values {
	v := make(url.Values, len(params))
	for k, vals := range params {
		v[k] = append([]string(nil), vals...)
	}
	return v
}
