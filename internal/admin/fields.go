package admin

import (
	"context"
	"strconv"
)

// FieldKind selects the input widget.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindNumber      FieldKind = "number"
	KindDecimal     FieldKind = "decimal"
	KindDateTime    FieldKind = "datetime"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
	KindReadOnly    FieldKind = "readonly"
)

// Option is one entry of a select widget.
type Option struct {
	Value string
	Label string
}

// Field describes one form input.
type Field struct {
	Name      string
	Label     string
	Kind      FieldKind
	Required  bool
	MaxLength int
	Options   []Option
	// Default preselects a select option and drops its blank choice.
	Default string
	// Choices loads Options per request for selects backed by records.
	Choices func(ctx context.Context) ([]Option, error)
}

// BoundField is a field paired with a form's submitted value and errors.
type BoundField struct {
	Field
	InputName string
	Value     string
	Errors    []string
}

// Selected reports whether opt is the field's current value.
func (b BoundField) Selected(opt Option) bool {
	return opt.Value == b.Value
}

// ResolveFields loads the options of record-backed selects once so every
// inline row can share them.
func ResolveFields(ctx context.Context, fields []Field) ([]Field, error) {
	out := make([]Field, len(fields))
	for i, f := range fields {
		if f.Choices != nil {
			opts, err := f.Choices(ctx)
			if err != nil {
				return nil, err
			}
			f.Options = opts
		}
		out[i] = f
	}
	return out, nil
}

// Bind pairs fields with the form's values.
func Bind(fields []Field, form *Form) []BoundField {
	out := make([]BoundField, len(fields))
	for i, f := range fields {
		value := form.Value(f.Name)
		if value == "" {
			value = f.Default
		}
		out[i] = BoundField{
			Field:     f,
			InputName: form.Name(f.Name),
			Value:     value,
			Errors:    form.FieldErrors(f.Name),
		}
	}
	return out
}

// OptionSet indexes options by value for ObjectID checks.
func OptionSet(opts []Option) func(int64) bool {
	set := make(map[string]bool, len(opts))
	for _, o := range opts {
		set[o.Value] = true
	}
	return func(id int64) bool {
		return set[strconv.FormatInt(id, 10)]
	}
}

func optionValues(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
