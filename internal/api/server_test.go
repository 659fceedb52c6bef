package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/tourneydesk/internal/admin"
	"github.com/vytor/tourneydesk/internal/api"
	"github.com/vytor/tourneydesk/internal/db"
	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/repository/sqldb"
	"github.com/vytor/tourneydesk/internal/rules"
	"github.com/vytor/tourneydesk/internal/services"
	"github.com/vytor/tourneydesk/internal/testutil"
)

const css = "/static/css/additional_admin.css"

type ServerSuite struct {
	suite.Suite
	db      *db.DB
	handler http.Handler
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())

	playerRepo := sqldb.NewPlayerRepository(s.db)
	tournamentRepo := sqldb.NewTournamentRepository(s.db)
	players := services.NewPlayerService(playerRepo)
	tournaments := services.NewTournamentService(tournamentRepo)
	rounds := services.NewRoundService(sqldb.NewRoundRepository(s.db), sqldb.NewGameRepository(s.db), tournamentRepo)

	site := admin.NewSite("Tournament administration", 100)
	site.Register(admin.NewPlayerAdmin(players))
	site.Register(admin.NewTournamentAdmin(tournaments, players, css))
	site.Register(admin.NewRoundAdmin(rounds, tournaments, players, css))

	tmpl, err := api.LoadTemplates()
	s.Require().NoError(err)

	srv := &api.Server{DB: s.db, Site: site, Templates: tmpl, Metrics: api.NewMetrics()}
	s.handler = srv.Routes()
}

func (s *ServerSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ServerSuite) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *ServerSuite) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) count(table string) int {
	var n int
	s.Require().NoError(s.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func roundForm(tournamentID int64, name string) url.Values {
	return url.Values{
		"tournament":          {id(tournamentID)},
		"name":                {name},
		"round_date":          {"2025-03-02T10:00"},
		"games-TOTAL_FORMS":   {"0"},
		"games-INITIAL_FORMS": {"0"},
	}
}

func addGame(form url.Values, i int, player, opponent int64, playerScore, opponentScore string, status models.GameStatus) {
	prefix := fmt.Sprintf("games-%d-", i)
	form.Set(prefix+"player", id(player))
	form.Set(prefix+"player_score", playerScore)
	form.Set(prefix+"opponent", id(opponent))
	form.Set(prefix+"opponent_score", opponentScore)
	form.Set(prefix+"status", string(status))
	form.Set("games-TOTAL_FORMS", strconv.Itoa(i+1))
}

func (s *ServerSuite) TestRootRedirectsToAdmin() {
	rec := s.get("/")
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/admin/", rec.Header().Get("Location"))
}

func (s *ServerSuite) TestHealthAndReadiness() {
	s.Equal(http.StatusOK, s.get("/healthz").Code)
	rec := s.get("/readyz")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Ready", rec.Body.String())
}

func (s *ServerSuite) TestIndexHidesRounds() {
	rec := s.get("/admin/")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.Contains(body, `href="/admin/player/"`)
	s.Contains(body, `href="/admin/tournament/"`)
	s.NotContains(body, `href="/admin/round/"`)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
}

func (s *ServerSuite) TestHiddenRoundListStillReachable() {
	s.Equal(http.StatusOK, s.get("/admin/round/").Code)
}

func (s *ServerSuite) TestUnknownModelIsNotFound() {
	s.Equal(http.StatusNotFound, s.get("/admin/arbiter/").Code)
}

func (s *ServerSuite) TestTournamentListShowsRoundsCell() {
	tid := testutil.InsertTournament(s.T(), s.db, "Spring Open", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	testutil.InsertRound(s.T(), s.db, tid, "Round 1", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))

	rec := s.get("/admin/tournament/")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.Contains(body, rules.RoundsCell(1, tid))
	s.Contains(body, fmt.Sprintf(`1 (<a href="../round/add?tournament=%d&name=Round 2">add new</a>)`, tid))
	s.Contains(body, css)
	s.NotContains(body, `name="action"`)
}

func (s *ServerSuite) TestPlayerListOffersBulkDelete() {
	testutil.InsertPlayer(s.T(), s.db, "Magnus", 2830)

	body := s.get("/admin/player/").Body.String()
	s.Contains(body, `name="action"`)
	s.Contains(body, "Delete selected players")
	s.Contains(body, "Magnus")
	s.Contains(body, "Norway")
	s.Contains(body, "1 player")
}

func (s *ServerSuite) TestRoundAddSeedsPairingsFromRoster() {
	a := testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)
	b := testutil.InsertPlayer(s.T(), s.db, "Bruno", 1700)
	c := testutil.InsertPlayer(s.T(), s.db, "Carla", 1600)
	d := testutil.InsertPlayer(s.T(), s.db, "Dmitri", 1500)
	tid := testutil.InsertTournament(s.T(), s.db, "Spring Open", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), d, c, b, a)

	rec := s.get(fmt.Sprintf("/admin/round/add?tournament=%d&name=Round+1", tid))
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.Contains(body, `name="games-TOTAL_FORMS" value="2"`)
	s.Contains(body, `name="games-INITIAL_FORMS" value="0"`)
	s.Contains(body, `value="Round 1"`)
	s.Contains(body, `selected>Spring Open</option>`)
	for _, name := range []string{"Alice", "Bruno", "Carla", "Dmitri"} {
		s.Equal(1, strings.Count(body, `selected>`+name+`</option>`), name)
	}
	s.Contains(body, css)
}

func (s *ServerSuite) TestRoundAddWithoutTournamentShowsOneBlankRow() {
	rec := s.get("/admin/round/add?tournament=999&name=Round+1")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `name="games-TOTAL_FORMS" value="1"`)
}

func (s *ServerSuite) TestRoundAddRejectedByUnfinishedPreviousRound() {
	a := testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)
	b := testutil.InsertPlayer(s.T(), s.db, "Bruno", 1700)
	tid := testutil.InsertTournament(s.T(), s.db, "Spring Open", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), a, b)
	rid := testutil.InsertRound(s.T(), s.db, tid, "Round 1", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	testutil.InsertGame(s.T(), s.db, rid, a, b, models.StatusPlanned, "0", "0")

	rec := s.post("/admin/round/add", roundForm(tid, "Round 2"))
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.Contains(body, "Please correct the errors below.")
	s.Contains(body, "The previous round has unfinished games.")
	s.Equal(1, s.count("rounds"))

	metrics := s.get("/metrics").Body.String()
	s.Contains(metrics, `admin_validation_failures_total{form="round",reason="guard"} 1`)
}

func (s *ServerSuite) TestRoundAddReportsGameRowErrors() {
	a := testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)
	b := testutil.InsertPlayer(s.T(), s.db, "Bruno", 1700)
	tid := testutil.InsertTournament(s.T(), s.db, "Spring Open", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), a, b)

	form := roundForm(tid, "Round 1")
	addGame(form, 0, a, b, "1", "0", models.StatusPlanned)

	rec := s.post("/admin/round/add", form)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), rules.MsgPlannedWithScore)
	s.Equal(0, s.count("rounds"))

	metrics := s.get("/metrics").Body.String()
	s.Contains(metrics, `admin_validation_failures_total{form="round",reason="row"} 1`)
}

func (s *ServerSuite) TestRoundAddPersistsGames() {
	a := testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)
	b := testutil.InsertPlayer(s.T(), s.db, "Bruno", 1700)
	tid := testutil.InsertTournament(s.T(), s.db, "Spring Open", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), a, b)

	form := roundForm(tid, "Round 1")
	addGame(form, 0, a, b, "0.5", "0.5", models.StatusFinished)
	form.Set("games-1-status", string(models.StatusPlanned))
	form.Set("games-TOTAL_FORMS", "2")

	rec := s.post("/admin/round/add", form)
	s.Require().Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/admin/round/", rec.Header().Get("Location"))
	s.Equal(1, s.count("rounds"))
	s.Equal(1, s.count("games"))
}

func (s *ServerSuite) TestRoundChangeShowsStoredGamesAndBlankRow() {
	a := testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)
	b := testutil.InsertPlayer(s.T(), s.db, "Bruno", 1700)
	tid := testutil.InsertTournament(s.T(), s.db, "Spring Open", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), a, b)
	rid := testutil.InsertRound(s.T(), s.db, tid, "Round 1", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	testutil.InsertGame(s.T(), s.db, rid, a, b, models.StatusFinished, "1", "0")

	rec := s.get(fmt.Sprintf("/admin/round/%d/change", rid))
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.Contains(body, `name="games-TOTAL_FORMS" value="2"`)
	s.Contains(body, `name="games-INITIAL_FORMS" value="1"`)
	s.Contains(body, `value="1.0"`)
	s.Contains(body, `value="2025-03-01T10:00"`)
}

func (s *ServerSuite) TestTamperedManagementFormIsBadRequest() {
	form := roundForm(1, "Round 1")
	form.Del("games-TOTAL_FORMS")
	s.Equal(http.StatusBadRequest, s.post("/admin/round/add", form).Code)
}

func (s *ServerSuite) TestPlayerCreateCopiesInitialRating() {
	rec := s.post("/admin/player/add", url.Values{
		"name":           {"Hou Yifan"},
		"country":        {"CN"},
		"fide_id":        {"8602980"},
		"fide_title":     {"GM"},
		"initial_rating": {"2650"},
		"_continue":      {"Save and continue editing"},
	})
	s.Require().Equal(http.StatusSeeOther, rec.Code)
	s.True(strings.HasPrefix(rec.Header().Get("Location"), "/admin/player/"))
	s.True(strings.HasSuffix(rec.Header().Get("Location"), "/change"))

	var rating, initial int
	var registered time.Time
	s.Require().NoError(s.db.QueryRowContext(context.Background(),
		`SELECT rating, initial_rating, register_date FROM players WHERE name = ?`, "Hou Yifan").
		Scan(&rating, &initial, &registered))
	s.Equal(2650, rating)
	s.Equal(2650, initial)
	s.False(registered.IsZero())
}

func (s *ServerSuite) TestPlayerAddRequiresFields() {
	rec := s.post("/admin/player/add", url.Values{"name": {""}, "initial_rating": {"abc"}})
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.Contains(body, admin.MsgRequired)
	s.Contains(body, admin.MsgWholeNumber)
	s.Equal(0, s.count("players"))

	metrics := s.get("/metrics").Body.String()
	s.Contains(metrics, `admin_validation_failures_total{form="player",reason="field"} 1`)
}

func (s *ServerSuite) TestTournamentAddEditsRosterThroughInline() {
	testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)

	rec := s.get("/admin/tournament/add")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.NotContains(body, `name="players"`)
	s.Contains(body, `name="roster-TOTAL_FORMS" value="1"`)
	s.Contains(body, `name="roster-0-player"`)
	s.Contains(body, "Tournament-player relationships")
}

func (s *ServerSuite) TestTournamentRejectsDuplicateRosterEntries() {
	a := testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)

	rec := s.post("/admin/tournament/add", url.Values{
		"name":                 {"Spring Open"},
		"country":              {"NO"},
		"city":                 {"Oslo"},
		"start_date":           {"2025-03-01T10:00"},
		"end_date":             {"2025-03-05T18:00"},
		"roster-TOTAL_FORMS":   {"2"},
		"roster-INITIAL_FORMS": {"0"},
		"roster-0-player":      {id(a)},
		"roster-1-player":      {id(a)},
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), services.MsgDuplicatePlayer)
	s.Equal(0, s.count("tournaments"))
}

func (s *ServerSuite) TestTournamentSavesRoster() {
	a := testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)
	b := testutil.InsertPlayer(s.T(), s.db, "Bruno", 1700)

	rec := s.post("/admin/tournament/add", url.Values{
		"name":                 {"Spring Open"},
		"start_date":           {"2025-03-01T10:00"},
		"end_date":             {"2025-03-05T18:00"},
		"roster-TOTAL_FORMS":   {"3"},
		"roster-INITIAL_FORMS": {"0"},
		"roster-0-player":      {id(a)},
		"roster-1-player":      {id(b)},
		"roster-2-player":      {""},
	})
	s.Require().Equal(http.StatusSeeOther, rec.Code)
	s.Equal(1, s.count("tournaments"))
	s.Equal(2, s.count("tournament_players"))
}

func (s *ServerSuite) TestBulkDeleteNeedsSelection() {
	rec := s.post("/admin/player/", url.Values{"action": {admin.ActionDeleteSelected}})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Items must be selected in order to perform actions on them. No items have been changed.")
}

func (s *ServerSuite) TestBulkDeleteConfirmsThenDeletes() {
	a := testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)
	b := testutil.InsertPlayer(s.T(), s.db, "Bruno", 1700)
	form := url.Values{
		"action":           {admin.ActionDeleteSelected},
		"_selected_action": {id(a), id(b)},
	}

	rec := s.post("/admin/player/", form)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Are you sure?")
	s.Contains(rec.Body.String(), "Bruno")
	s.Equal(2, s.count("players"))

	form.Set("post", "yes")
	rec = s.post("/admin/player/", form)
	s.Require().Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/admin/player/", rec.Header().Get("Location"))
	s.Equal(0, s.count("players"))
}

func (s *ServerSuite) TestTournamentBulkDeleteDisabled() {
	tid := testutil.InsertTournament(s.T(), s.db, "Spring Open", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	rec := s.post("/admin/tournament/", url.Values{
		"action":           {admin.ActionDeleteSelected},
		"_selected_action": {id(tid)},
		"post":             {"yes"},
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(1, s.count("tournaments"))
}

func (s *ServerSuite) TestDeletePlayerWithGamesConflicts() {
	a := testutil.InsertPlayer(s.T(), s.db, "Alice", 1800)
	b := testutil.InsertPlayer(s.T(), s.db, "Bruno", 1700)
	tid := testutil.InsertTournament(s.T(), s.db, "Spring Open", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), a, b)
	rid := testutil.InsertRound(s.T(), s.db, tid, "Round 1", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	testutil.InsertGame(s.T(), s.db, rid, a, b, models.StatusFinished, "1", "0")

	s.Equal(http.StatusOK, s.get(fmt.Sprintf("/admin/player/%d/delete", a)).Code)
	rec := s.post(fmt.Sprintf("/admin/player/%d/delete", a), url.Values{"post": {"yes"}})
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(2, s.count("players"))
}

func (s *ServerSuite) TestDeleteTournamentCascades() {
	tid := testutil.InsertTournament(s.T(), s.db, "Spring Open", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	testutil.InsertRound(s.T(), s.db, tid, "Round 1", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))

	rec := s.post(fmt.Sprintf("/admin/tournament/%d/delete", tid), url.Values{"post": {"yes"}})
	s.Require().Equal(http.StatusSeeOther, rec.Code)
	s.Equal(0, s.count("tournaments"))
	s.Equal(0, s.count("rounds"))
}

func (s *ServerSuite) TestChangeMissingRecordIsNotFound() {
	s.Equal(http.StatusNotFound, s.get("/admin/player/42/change").Code)
	s.Equal(http.StatusBadRequest, s.get("/admin/player/abc/change").Code)
}

func (s *ServerSuite) TestStaticAssetsServed() {
	rec := s.get(css)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), ".inline-group")
}
