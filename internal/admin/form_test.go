package admin

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formOf(pairs ...string) *Form {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return NewForm(v)
}

func TestForm_Text(t *testing.T) {
	f := formOf("name", "  Magnus  ", "long", strings.Repeat("x", 201))

	assert.Equal(t, "Magnus", f.Text("name", 200, true))
	f.Text("long", 200, true)
	f.Text("missing", 200, true)
	assert.Empty(t, f.Text("optional", 10, false))

	assert.Equal(t, []string{"Ensure this value has at most 200 characters (it has 201)."}, f.FieldErrors("long"))
	assert.Equal(t, []string{MsgRequired}, f.FieldErrors("missing"))
	assert.Nil(t, f.FieldErrors("optional"))
	assert.False(t, f.Valid())
}

func TestForm_Integers(t *testing.T) {
	f := formOf("rating", "2700", "bad", "12.5", "fide", "1503014")

	assert.Equal(t, 2700, f.Int("rating", true))
	assert.Equal(t, int64(1503014), f.Int64("fide", true))
	f.Int("bad", true)
	assert.Equal(t, []string{MsgWholeNumber}, f.FieldErrors("bad"))
}

func TestForm_DateTime(t *testing.T) {
	f := formOf("a", "2025-04-01T10:30", "b", "2025-04-01", "c", "tomorrow")

	assert.Equal(t, time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC), f.DateTime("a", true))
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), f.DateTime("b", true))
	f.DateTime("c", true)
	assert.Equal(t, []string{MsgDateTime}, f.FieldErrors("c"))
}

func TestForm_Choice(t *testing.T) {
	f := formOf("status", "finished", "other", "abandoned")

	assert.Equal(t, "finished", f.Choice("status", []string{"planned", "finished"}, true))
	f.Choice("other", []string{"planned", "finished"}, true)
	assert.Equal(t, []string{"Select a valid choice. abandoned is not one of the available choices."}, f.FieldErrors("other"))
}

func TestForm_ObjectID(t *testing.T) {
	exists := OptionSet([]Option{{Value: "4", Label: "Anna"}})
	f := formOf("player", "4", "opponent", "5")

	assert.Equal(t, int64(4), f.ObjectID("player", exists, true))
	assert.Zero(t, f.ObjectID("opponent", exists, true))
	assert.Equal(t, []string{MsgInvalidObject}, f.FieldErrors("opponent"))
}

func TestForm_Decimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0.5", ""},
		{"1", ""},
		{"100.5", ""},
		{"abc", MsgNumber},
		{"0.25", "Ensure that there are no more than 1 decimal place."},
		{"12345", "Ensure that there are no more than 4 digits in total."},
		{"1000", "Ensure that there are no more than 3 digits before the decimal point."},
		{"-1", "Ensure this value is greater than or equal to 0."},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			f := formOf("score", tc.in)
			f.Decimal("score", 4, 1, true)
			if tc.want == "" {
				assert.True(t, f.Valid(), f.Errors)
				return
			}
			require.NotEmpty(t, f.FieldErrors("score"))
			assert.Equal(t, tc.want, f.FieldErrors("score")[0])
		})
	}
}

func TestForm_NonFieldErrors(t *testing.T) {
	f := NewForm(nil)
	f.AddError("", "The previous round has unfinished games.")

	assert.Equal(t, []string{"The previous round has unfinished games."}, f.NonField)
	assert.False(t, f.Valid())
}
