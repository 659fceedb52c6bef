// Package admin is a small CRUD host: a registry of model descriptors that
// the HTTP layer renders as list, add, change and delete pages.
package admin

import (
	"context"
	"net/url"
	"time"

	"github.com/vytor/tourneydesk/internal/errors"
)

// ActionDeleteSelected is the bulk delete action.
const ActionDeleteSelected = "delete_selected"

// Action is a bulk operation offered on a list page.
type Action struct {
	Name  string
	Label string
}

// Meta describes a registered model independently of its record type.
type Meta struct {
	Slug       string
	Name       string
	NamePlural string
	// Hidden models are left off the index but stay reachable by URL.
	Hidden  bool
	Media   []string
	Actions []Action
}

// HasAction reports whether the named bulk action is enabled.
func (m *Meta) HasAction(name string) bool {
	for _, a := range m.Actions {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Object is a record reduced to its id and display label.
type Object struct {
	ID    int64
	Label string
}

// Model is implemented by *ModelAdmin[T].
type Model interface {
	meta() *Meta
	changelist(ctx context.Context, params url.Values, perPage int, now time.Time) (*Changelist, error)
	objects(ctx context.Context, ids []int64) ([]Object, error)
	remove(ctx context.Context, ids []int64) error

	FormFields() []Field
	InlineEditors() []Inline
	LoadValues(ctx context.Context, id int64) (url.Values, error)
	SaveForm(ctx context.Context, id int64, form *Form, inlines map[string]*Formset) (int64, error)
}

// Site is the registry of models keyed by slug.
type Site struct {
	Title   string
	PerPage int
	Now     func() time.Time

	order  []string
	models map[string]Model
}

// NewSite creates an empty registry.
func NewSite(title string, perPage int) *Site {
	if perPage <= 0 {
		perPage = 100
	}
	return &Site{
		Title:   title,
		PerPage: perPage,
		Now:     time.Now,
		models:  make(map[string]Model),
	}
}

// Register adds a model; registering a slug twice replaces the entry.
func (s *Site) Register(m Model) {
	slug := m.meta().Slug
	if _, ok := s.models[slug]; !ok {
		s.order = append(s.order, slug)
	}
	s.models[slug] = m
}

// Index lists the visible models in registration order.
func (s *Site) Index() []*Meta {
	var out []*Meta
	for _, slug := range s.order {
		if m := s.models[slug].meta(); !m.Hidden {
			out = append(out, m)
		}
	}
	return out
}

// Model looks a model up by slug.
func (s *Site) Model(slug string) (Model, error) {
	m, ok := s.models[slug]
	if !ok {
		return nil, errors.NewNotFoundError("model", slug)
	}
	return m, nil
}

// Meta looks a model's description up by slug.
func (s *Site) Meta(slug string) (*Meta, error) {
	m, err := s.Model(slug)
	if err != nil {
		return nil, err
	}
	return m.meta(), nil
}

// Object loads the label of one record.
func (s *Site) Object(ctx context.Context, slug string, id int64) (*Object, error) {
	objs, err := s.Objects(ctx, slug, []int64{id})
	if err != nil {
		return nil, err
	}
	return &objs[0], nil
}

// Changelist builds the list page of a model from query parameters.
func (s *Site) Changelist(ctx context.Context, slug string, params url.Values) (*Changelist, error) {
	m, ok := s.models[slug]
	if !ok {
		return nil, errors.NewNotFoundError("model", slug)
	}
	return m.changelist(ctx, params, s.PerPage, s.Now())
}

// Objects loads the labels of the given records.
func (s *Site) Objects(ctx context.Context, slug string, ids []int64) ([]Object, error) {
	m, ok := s.models[slug]
	if !ok {
		return nil, errors.NewNotFoundError("model", slug)
	}
	return m.objects(ctx, ids)
}

// Delete removes the given records.
func (s *Site) Delete(ctx context.Context, slug string, ids []int64) error {
	m, ok := s.models[slug]
	if !ok {
		return errors.NewNotFoundError("model", slug)
	}
	return m.remove(ctx, ids)
}
