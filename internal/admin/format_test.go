package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDateTime(t *testing.T) {
	cases := map[string]time.Time{
		"Sept. 4, 2025, 3:30 p.m.": time.Date(2025, 9, 4, 15, 30, 0, 0, time.UTC),
		"March 1, 2024, midnight":  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"Jan. 9, 2023, noon":       time.Date(2023, 1, 9, 12, 0, 0, 0, time.UTC),
		"May 5, 2022, 10 a.m.":     time.Date(2022, 5, 5, 10, 0, 0, 0, time.UTC),
	}
	for want, in := range cases {
		assert.Equal(t, want, FormatDateTime(in))
	}
	assert.Equal(t, "-", FormatDate(time.Time{}))
	assert.Equal(t, "2025-09-04T15:30", InputDateTime(time.Date(2025, 9, 4, 15, 30, 0, 0, time.UTC)))
}

func TestCountries(t *testing.T) {
	assert.Equal(t, "Norway", CountryName("NO"))
	assert.Equal(t, "Germany", CountryName("DE"))
	assert.Equal(t, "XX", CountryName("XX"))

	opts := Countries()
	assert.Greater(t, len(opts), 200)
	for _, o := range opts {
		assert.Len(t, o.Value, 2)
		assert.NotEmpty(t, o.Label)
	}
}
