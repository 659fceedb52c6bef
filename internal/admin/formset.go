package admin

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// maxFormsetRows bounds TOTAL_FORMS so a crafted request cannot allocate
// an arbitrary number of rows.
const maxFormsetRows = 1000

// ErrManagementForm is returned when the formset bookkeeping fields are
// missing or malformed.
var ErrManagementForm = errors.New("ManagementForm data is missing or has been tampered with")

// Formset is an inline editor: a list of child rows sharing one prefix.
// Rows are addressed as {prefix}-{n}-{field}; {prefix}-TOTAL_FORMS and
// {prefix}-INITIAL_FORMS carry the row counts.
type Formset struct {
	Prefix  string
	Rows    []*Form
	Initial int
	NonForm []string
	values  url.Values
}

// NewFormset starts an empty formset whose rows are appended in order.
// Pass the parent form's values so both render from one set.
func NewFormset(values url.Values, prefix string) *Formset {
	if values == nil {
		values = url.Values{}
	}
	fs := &Formset{Prefix: prefix, values: values}
	fs.sync()
	return fs
}

// ParseFormset reads a submitted formset.
func ParseFormset(values url.Values, prefix string) (*Formset, error) {
	total, err := strconv.Atoi(values.Get(prefix + "-TOTAL_FORMS"))
	if err != nil || total < 0 || total > maxFormsetRows {
		return nil, ErrManagementForm
	}
	initial, err := strconv.Atoi(values.Get(prefix + "-INITIAL_FORMS"))
	if err != nil || initial < 0 || initial > total {
		return nil, ErrManagementForm
	}

	fs := &Formset{Prefix: prefix, values: values, Initial: initial}
	for i := 0; i < total; i++ {
		fs.Rows = append(fs.Rows, fs.row(i))
	}
	return fs, nil
}

func (fs *Formset) row(i int) *Form {
	return &Form{values: fs.values, prefix: fmt.Sprintf("%s-%d-", fs.Prefix, i)}
}

func (fs *Formset) sync() {
	fs.values.Set(fs.Prefix+"-TOTAL_FORMS", strconv.Itoa(len(fs.Rows)))
	fs.values.Set(fs.Prefix+"-INITIAL_FORMS", strconv.Itoa(fs.Initial))
}

// Append adds a row pre-filled with fields. Rows with an id count as
// initial rows and must be appended before any new row.
func (fs *Formset) Append(id int64, fields map[string]string) *Form {
	row := fs.row(len(fs.Rows))
	if id != 0 {
		row.Set("id", strconv.FormatInt(id, 10))
		fs.Initial++
	}
	for k, v := range fields {
		row.Set(k, v)
	}
	fs.Rows = append(fs.Rows, row)
	fs.sync()
	return row
}

// AppendBlank adds n empty rows.
func (fs *Formset) AppendBlank(n int) {
	for i := 0; i < n; i++ {
		fs.Append(0, nil)
	}
}

func (fs *Formset) TotalName() string   { return fs.Prefix + "-TOTAL_FORMS" }
func (fs *Formset) InitialName() string { return fs.Prefix + "-INITIAL_FORMS" }

// Valid reports whether no row and no formset-level error was recorded.
func (fs *Formset) Valid() bool {
	if len(fs.NonForm) > 0 {
		return false
	}
	for _, r := range fs.Rows {
		if !r.Valid() {
			return false
		}
	}
	return true
}

// ID is the stored id of an existing row, zero for new rows.
func (f *Form) ID() int64 {
	id, _ := strconv.ParseInt(f.Value("id"), 10, 64)
	return id
}

// Deleted reports whether the row's delete box is ticked.
func (f *Form) Deleted() bool {
	return f.Checked("DELETE")
}

// Blank reports whether a new row was left untouched: no id and every
// listed field empty.
func (f *Form) Blank(fields ...string) bool {
	if f.ID() != 0 {
		return false
	}
	for _, name := range fields {
		if f.Value(name) != "" {
			return false
		}
	}
	return true
}
