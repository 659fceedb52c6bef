package admin

import (
	"context"
	stderrors "errors"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/services"
)

// GamesPrefix names the round's game inline.
const GamesPrefix = "games"

var gameRowFields = []string{"player", "player_score", "opponent", "opponent_score"}

// NewRoundAdmin describes the round pages. Rounds are left off the index:
// they are reached from a tournament's add-round link or by URL.
func NewRoundAdmin(svc services.RoundService, tournaments services.TournamentService, players services.PlayerService, css string) *ModelAdmin[models.Round] {
	tournamentChoices := func(ctx context.Context) ([]Option, error) {
		list, err := tournaments.TournamentChoices(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, len(list))
		for i, t := range list {
			opts[i] = Option{Value: strconv.FormatInt(t.ID, 10), Label: t.Name}
		}
		return opts, nil
	}
	playerChoices := func(ctx context.Context) ([]Option, error) {
		list, err := players.PlayerChoices(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, len(list))
		for i, p := range list {
			opts[i] = Option{Value: strconv.FormatInt(p.ID, 10), Label: p.Name}
		}
		return opts, nil
	}
	statuses := make([]Option, len(models.GameStatuses))
	for i, s := range models.GameStatuses {
		statuses[i] = Option{Value: string(s), Label: string(s)}
	}

	return &ModelAdmin[models.Round]{
		Meta: Meta{
			Slug:       "round",
			Name:       "round",
			NamePlural: "Rounds",
			Hidden:     true,
			Media:      media(css),
			Actions:    []Action{{Name: ActionDeleteSelected, Label: "Delete selected rounds"}},
		},
		Columns: []Column[models.Round]{
			{Label: "Name", Order: "name", Cell: func(r models.Round) template.HTML { return text(r.Name) }},
			{Label: "Tournament", Order: "tournament", Cell: func(r models.Round) template.HTML { return text(r.TournamentName) }},
			{Label: "Round date", Order: "round_date", Cell: func(r models.Round) template.HTML { return text(FormatDateTime(r.RoundDate)) }},
		},
		SearchFields: []string{"name"},
		DateField:    "round date",
		Ordering:     []string{"-round_date"},
		Fields: []Field{
			{Name: "tournament", Label: "Tournament", Kind: KindSelect, Required: true, Choices: tournamentChoices},
			{Name: "name", Label: "Name", Kind: KindText, Required: true, MaxLength: 200},
			{Name: "round_date", Label: "Round date", Kind: KindDateTime, Required: true},
		},
		Inlines: []Inline{{
			Prefix: GamesPrefix,
			Label:  "Games",
			Fields: []Field{
				{Name: "player", Label: "Player", Kind: KindSelect, Required: true, Choices: playerChoices},
				{Name: "player_score", Label: "Player score", Kind: KindDecimal, Required: true},
				{Name: "opponent", Label: "Opponent", Kind: KindSelect, Required: true, Choices: playerChoices},
				{Name: "opponent_score", Label: "Opponent score", Kind: KindDecimal, Required: true},
				{Name: "status", Label: "Status", Kind: KindSelect, Required: true, Options: statuses, Default: string(models.StatusPlanned)},
			},
			Extra:     1,
			CanDelete: true,
			Seed: func(ctx context.Context, params url.Values) ([]map[string]string, int, error) {
				tid, _ := strconv.ParseInt(params.Get("tournament"), 10, 64)
				draft, err := svc.NewRoundDraft(ctx, tid, params.Get("name"))
				if err != nil {
					return nil, 0, err
				}
				if draft.Round.TournamentID == 0 {
					return nil, 1, nil
				}
				rows := make([]map[string]string, 0, len(draft.Pairings))
				for _, p := range draft.Pairings {
					row := map[string]string{
						"player":         strconv.FormatInt(p.Player.ID, 10),
						"player_score":   "0",
						"opponent":       "",
						"opponent_score": "0",
						"status":         string(models.StatusPlanned),
					}
					if !p.Bye() {
						row["opponent"] = strconv.FormatInt(p.Opponent.ID, 10)
					}
					rows = append(rows, row)
				}
				return rows, draft.Extra, nil
			},
		}},

		List: func(ctx context.Context, q Query) ([]models.Round, int, error) {
			return svc.ListRounds(ctx, roundFilter(q))
		},
		Dates: func(ctx context.Context, q Query) ([]time.Time, error) {
			return svc.RoundDates(ctx, roundFilter(q))
		},
		Get: func(ctx context.Context, id int64) (models.Round, error) {
			rd, _, err := svc.GetRound(ctx, id)
			if err != nil {
				return models.Round{}, err
			}
			return *rd, nil
		},
		Remove: svc.DeleteRounds,
		Key:    func(r models.Round) int64 { return r.ID },
		Label:  func(r models.Round) string { return r.Name },

		Load: func(ctx context.Context, id int64) (url.Values, error) {
			rd, games, err := svc.GetRound(ctx, id)
			if err != nil {
				return nil, err
			}
			values := url.Values{
				"tournament": {strconv.FormatInt(rd.TournamentID, 10)},
				"name":       {rd.Name},
				"round_date": {InputDateTime(rd.RoundDate)},
			}
			fs := NewFormset(values, GamesPrefix)
			for _, g := range games {
				fs.Append(g.ID, map[string]string{
					"player":         strconv.FormatInt(g.PlayerID, 10),
					"player_score":   g.PlayerScore.StringFixed(1),
					"opponent":       strconv.FormatInt(g.OpponentID, 10),
					"opponent_score": g.OpponentScore.StringFixed(1),
					"status":         string(g.Status),
				})
			}
			return values, nil
		},
		Save: func(ctx context.Context, id int64, form *Form, inlines map[string]*Formset) (int64, error) {
			tournamentOpts, err := tournamentChoices(ctx)
			if err != nil {
				return 0, err
			}
			rd := &models.Round{
				ID:           id,
				TournamentID: form.ObjectID("tournament", OptionSet(tournamentOpts), true),
				Name:         form.Text("name", 200, true),
				RoundDate:    form.DateTime("round_date", true),
			}

			playerOpts, err := playerChoices(ctx)
			if err != nil {
				return 0, err
			}
			games, rowIndex, deleted := parseGames(inlines[GamesPrefix], OptionSet(playerOpts), optionValues(statuses))
			if !form.Valid() || !inlines[GamesPrefix].Valid() {
				return 0, ErrInvalid
			}

			err = svc.SaveRound(ctx, rd, games, deleted)
			var verr *services.ValidationErrors
			if stderrors.As(err, &verr) {
				for _, msg := range verr.NonField {
					form.AddError("", msg)
				}
				form.AddFieldErrors(verr.Fields)
				for i, errs := range verr.Rows {
					inlines[GamesPrefix].Rows[rowIndex[i]].AddFieldErrors(errs)
				}
				return 0, invalid(verr)
			}
			if err != nil {
				return 0, err
			}
			return rd.ID, nil
		},
	}
}

// parseGames reads the game rows. rowIndex maps each returned game to its
// formset row; deleted holds the ids of stored games marked for deletion.
func parseGames(fs *Formset, players func(int64) bool, statuses []string) ([]models.Game, []int, []int64) {
	var (
		games    []models.Game
		rowIndex []int
		deleted  []int64
	)
	for i, row := range fs.Rows {
		if row.Deleted() {
			if id := row.ID(); id != 0 {
				deleted = append(deleted, id)
			}
			continue
		}
		if row.Blank(gameRowFields...) {
			continue
		}
		g := models.Game{
			ID:            row.ID(),
			PlayerID:      row.ObjectID("player", players, true),
			PlayerScore:   row.Decimal("player_score", 4, 1, true),
			OpponentID:    row.ObjectID("opponent", players, true),
			OpponentScore: row.Decimal("opponent_score", 4, 1, true),
			Status:        models.GameStatus(row.Choice("status", statuses, true)),
		}
		games = append(games, g)
		rowIndex = append(rowIndex, i)
	}
	return games, rowIndex, deleted
}

func roundFilter(q Query) models.RoundFilter {
	return models.RoundFilter{
		Search:   q.Search,
		DateFrom: q.From,
		DateTo:   q.To,
		OrderBy:  q.OrderBy,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
}
