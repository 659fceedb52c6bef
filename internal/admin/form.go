package admin

import (
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/vytor/tourneydesk/internal/rules"
)

const (
	MsgRequired      = "This field is required."
	MsgWholeNumber   = "Enter a whole number."
	MsgNumber        = "Enter a number."
	MsgDateTime      = "Enter a valid date/time."
	MsgInvalidObject = "Select a valid choice. That choice is not one of the available choices."
)

// DateTimeLayout is the wire format of datetime-local inputs.
const DateTimeLayout = "2006-01-02T15:04"

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

// Form reads and validates submitted values. Field names are resolved
// under the form's prefix, so one url.Values can carry a parent form and
// its inline rows.
type Form struct {
	values   url.Values
	prefix   string
	Errors   map[string][]string
	NonField []string
}

// NewForm wraps submitted (or initial) values.
func NewForm(values url.Values) *Form {
	if values == nil {
		values = url.Values{}
	}
	return &Form{values: values}
}

// Name is the input name of field.
func (f *Form) Name(field string) string {
	return f.prefix + field
}

// Value is the raw, trimmed value of field.
func (f *Form) Value(field string) string {
	return strings.TrimSpace(f.values.Get(f.Name(field)))
}

// Set replaces the value of field.
func (f *Form) Set(field, value string) {
	f.values.Set(f.Name(field), value)
}

// Checked reports whether a checkbox field was submitted.
func (f *Form) Checked(field string) bool {
	v := strings.ToLower(f.Value(field))
	return v == "on" || v == "true" || v == "1" || v == "yes"
}

func (f *Form) AddError(field, msg string) {
	if field == "" {
		f.NonField = append(f.NonField, msg)
		return
	}
	if f.Errors == nil {
		f.Errors = make(map[string][]string)
	}
	f.Errors[field] = append(f.Errors[field], msg)
}

// AddFieldErrors copies record-level failures onto the form.
func (f *Form) AddFieldErrors(errs rules.FieldErrors) {
	for _, e := range errs {
		f.AddError(e.Field, e.Message)
	}
}

// FieldErrors returns the messages recorded against field.
func (f *Form) FieldErrors(field string) []string {
	return f.Errors[field]
}

// Valid reports whether no error has been recorded.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0 && len(f.NonField) == 0
}

// Text reads a string bounded by maxLen characters.
func (f *Form) Text(field string, maxLen int, required bool) string {
	v := f.Value(field)
	if v == "" {
		if required {
			f.AddError(field, MsgRequired)
		}
		return ""
	}
	if n := utf8.RuneCountInString(v); maxLen > 0 && n > maxLen {
		f.AddError(field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", maxLen, n))
	}
	return v
}

// Int reads an integer field.
func (f *Form) Int(field string, required bool) int {
	return int(f.integer(field, required, strconv.IntSize))
}

// Int64 reads a 64-bit integer field.
func (f *Form) Int64(field string, required bool) int64 {
	return f.integer(field, required, 64)
}

func (f *Form) integer(field string, required bool, bits int) int64 {
	v := f.Value(field)
	if v == "" {
		if required {
			f.AddError(field, MsgRequired)
		}
		return 0
	}
	n, err := strconv.ParseInt(v, 10, bits)
	if err != nil {
		f.AddError(field, MsgWholeNumber)
		return 0
	}
	return n
}

// DateTime reads a timestamp; values without a zone are taken as UTC.
func (f *Form) DateTime(field string, required bool) time.Time {
	v := f.Value(field)
	if v == "" {
		if required {
			f.AddError(field, MsgRequired)
		}
		return time.Time{}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC()
		}
	}
	f.AddError(field, MsgDateTime)
	return time.Time{}
}

// Choice reads a value that must be one of choices.
func (f *Form) Choice(field string, choices []string, required bool) string {
	v := f.Value(field)
	if v == "" {
		if required {
			f.AddError(field, MsgRequired)
		}
		return ""
	}
	for _, c := range choices {
		if v == c {
			return v
		}
	}
	f.AddError(field, fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", v))
	return ""
}

// ObjectID reads a reference to another record; exists reports whether
// the id is one of the offered choices.
func (f *Form) ObjectID(field string, exists func(int64) bool, required bool) int64 {
	v := f.Value(field)
	if v == "" {
		if required {
			f.AddError(field, MsgRequired)
		}
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || !exists(id) {
		f.AddError(field, MsgInvalidObject)
		return 0
	}
	return id
}

// Decimal reads a non-negative fixed-point number with at most maxDigits
// digits, places of them after the point.
func (f *Form) Decimal(field string, maxDigits, places int, required bool) decimal.Decimal {
	v := f.Value(field)
	if v == "" {
		if required {
			f.AddError(field, MsgRequired)
		}
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		f.AddError(field, MsgNumber)
		return decimal.Zero
	}
	for _, msg := range decimalErrors(d, maxDigits, places) {
		f.AddError(field, msg)
	}
	if d.IsNegative() {
		f.AddError(field, "Ensure this value is greater than or equal to 0.")
	}
	return d
}

func decimalErrors(d decimal.Decimal, maxDigits, places int) []string {
	coef := new(big.Int).Abs(d.Coefficient()).String()
	exp := int(d.Exponent())

	var digits, decimals int
	if exp >= 0 {
		digits = len(coef)
		if coef != "0" {
			digits += exp
		}
	} else if -exp > len(coef) {
		digits, decimals = -exp, -exp
	} else {
		digits, decimals = len(coef), -exp
	}
	whole := digits - decimals

	switch {
	case digits > maxDigits:
		return []string{fmt.Sprintf("Ensure that there are no more than %d %s in total.", maxDigits, plural(maxDigits, "digit", "digits"))}
	case decimals > places:
		return []string{fmt.Sprintf("Ensure that there are no more than %d %s.", places, plural(places, "decimal place", "decimal places"))}
	case whole > maxDigits-places:
		return []string{fmt.Sprintf("Ensure that there are no more than %d %s before the decimal point.",
			maxDigits-places, plural(maxDigits-places, "digit", "digits"))}
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
