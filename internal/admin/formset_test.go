package admin

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormset(t *testing.T) {
	values := url.Values{
		"games-TOTAL_FORMS":   {"3"},
		"games-INITIAL_FORMS": {"1"},
		"games-0-id":          {"12"},
		"games-0-player":      {"4"},
		"games-0-DELETE":      {"on"},
		"games-1-player":      {"5"},
		"games-2-status":      {"planned"},
	}

	fs, err := ParseFormset(values, "games")
	require.NoError(t, err)
	require.Len(t, fs.Rows, 3)
	assert.Equal(t, 1, fs.Initial)

	assert.Equal(t, int64(12), fs.Rows[0].ID())
	assert.True(t, fs.Rows[0].Deleted())
	assert.Equal(t, "5", fs.Rows[1].Value("player"))
	assert.False(t, fs.Rows[1].Blank("player", "opponent"))
	assert.True(t, fs.Rows[2].Blank("player", "opponent"))
	assert.Equal(t, "games-1-player", fs.Rows[1].Name("player"))
}

func TestParseFormset_ManagementFormRequired(t *testing.T) {
	_, err := ParseFormset(url.Values{}, "games")
	assert.ErrorIs(t, err, ErrManagementForm)

	_, err = ParseFormset(url.Values{"games-TOTAL_FORMS": {"1"}, "games-INITIAL_FORMS": {"2"}}, "games")
	assert.ErrorIs(t, err, ErrManagementForm)

	_, err = ParseFormset(url.Values{"games-TOTAL_FORMS": {"5000"}, "games-INITIAL_FORMS": {"0"}}, "games")
	assert.ErrorIs(t, err, ErrManagementForm)
}

func TestFormset_AppendRoundTrips(t *testing.T) {
	values := url.Values{"name": {"Round 1"}}
	fs := NewFormset(values, "roster")
	fs.Append(7, map[string]string{"player": "3"})
	fs.AppendBlank(2)

	assert.Equal(t, "3", values.Get("roster-TOTAL_FORMS"))
	assert.Equal(t, "1", values.Get("roster-INITIAL_FORMS"))

	parsed, err := ParseFormset(values, "roster")
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 3)
	assert.Equal(t, int64(7), parsed.Rows[0].ID())
	assert.Equal(t, "3", parsed.Rows[0].Value("player"))
	assert.True(t, parsed.Rows[2].Blank("player"))
}

func TestFormset_ValidTracksRows(t *testing.T) {
	fs := NewFormset(nil, "games")
	row := fs.Append(0, map[string]string{"player": "1"})
	assert.True(t, fs.Valid())

	row.AddError("status", "Incorrect score")
	assert.False(t, fs.Valid())
}
