package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vytor/tourneydesk/internal/rules"
)

// ValidationErrors carries whole-record failures back to the form that
// submitted the record. Rows is keyed by the index of the inline row in the
// slice handed to the service.
type ValidationErrors struct {
	NonField []string
	Fields   rules.FieldErrors
	Rows     map[int]rules.FieldErrors
}

func (v *ValidationErrors) Error() string {
	var parts []string
	parts = append(parts, v.NonField...)
	if len(v.Fields) > 0 {
		parts = append(parts, v.Fields.Error())
	}
	idx := make([]int, 0, len(v.Rows))
	for i := range v.Rows {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		parts = append(parts, fmt.Sprintf("row %d: %s", i, v.Rows[i].Error()))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationErrors) addField(field, msg string) {
	v.Fields = append(v.Fields, rules.FieldError{Field: field, Message: msg})
}

func (v *ValidationErrors) addRow(i int, errs rules.FieldErrors) {
	if v.Rows == nil {
		v.Rows = make(map[int]rules.FieldErrors)
	}
	v.Rows[i] = append(v.Rows[i], errs...)
}

func (v *ValidationErrors) empty() bool {
	return len(v.NonField) == 0 && len(v.Fields) == 0 && len(v.Rows) == 0
}

// Reason is a short label for metrics: guard, row or field.
func (v *ValidationErrors) Reason() string {
	switch {
	case len(v.NonField) > 0:
		return "guard"
	case len(v.Rows) > 0:
		return "row"
	default:
		return "field"
	}
}
