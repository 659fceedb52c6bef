package admin

import (
	"context"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/url"
	"time"
)

// ErrInvalid is returned by a save callback when the submission carries
// errors; the form and its formsets hold the messages.
var ErrInvalid = stderrors.New("submitted form has errors")

// invalid marks a service rejection as ErrInvalid while keeping it
// reachable through errors.As.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}

// Query is the list request handed to a model's List and Dates callbacks.
type Query struct {
	Search  string
	From    *time.Time
	To      *time.Time
	OrderBy []string
	Limit   int
	Offset  int
}

// Column is one list page column. Order names the sort field; columns
// without one cannot be sorted.
type Column[T any] struct {
	Label string
	Order string
	Cell  func(T) template.HTML
}

// Inline is a child editor rendered under the parent form.
type Inline struct {
	Prefix    string
	Label     string
	Fields    []Field
	Extra     int
	CanDelete bool
	// Seed proposes the rows of a blank add form from the request query.
	// It returns the pre-filled rows and the number of blank rows to add
	// after them.
	Seed func(ctx context.Context, params url.Values) ([]map[string]string, int, error)
}

// ModelAdmin describes how one record type is listed and edited.
type ModelAdmin[T any] struct {
	Meta
	Columns      []Column[T]
	SearchFields []string
	// DateField labels the date used by the list filter and the date
	// hierarchy; empty disables both.
	DateField string
	Ordering  []string
	Fields    []Field
	Exclude   []string
	Inlines   []Inline

	List   func(ctx context.Context, q Query) ([]T, int, error)
	Dates  func(ctx context.Context, q Query) ([]time.Time, error)
	Get    func(ctx context.Context, id int64) (T, error)
	Remove func(ctx context.Context, ids ...int64) error
	Key    func(T) int64
	Label  func(T) string

	// Load returns the change form values of a stored record, inline rows
	// included.
	Load func(ctx context.Context, id int64) (url.Values, error)
	// Save validates a submission and persists it, returning the record
	// id. It returns ErrInvalid when the form should be shown again.
	Save func(ctx context.Context, id int64, form *Form, inlines map[string]*Formset) (int64, error)
}

func (m *ModelAdmin[T]) meta() *Meta { return &m.Meta }

// FormFields lists the editable fields minus the excluded ones.
func (m *ModelAdmin[T]) FormFields() []Field {
	out := make([]Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		if !contains(m.Exclude, f.Name) {
			out = append(out, f)
		}
	}
	return out
}

func (m *ModelAdmin[T]) InlineEditors() []Inline { return m.Inlines }

func (m *ModelAdmin[T]) LoadValues(ctx context.Context, id int64) (url.Values, error) {
	return m.Load(ctx, id)
}

func (m *ModelAdmin[T]) SaveForm(ctx context.Context, id int64, form *Form, inlines map[string]*Formset) (int64, error) {
	return m.Save(ctx, id, form, inlines)
}

func (m *ModelAdmin[T]) objects(ctx context.Context, ids []int64) ([]Object, error) {
	out := make([]Object, 0, len(ids))
	for _, id := range ids {
		rec, err := m.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, Object{ID: m.Key(rec), Label: m.Label(rec)})
	}
	return out, nil
}

func (m *ModelAdmin[T]) remove(ctx context.Context, ids []int64) error {
	return m.Remove(ctx, ids...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
