package admin

import (
	"context"
	stderrors "errors"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/rules"
	"github.com/vytor/tourneydesk/internal/services"
)

// RosterPrefix names the tournament roster inline.
const RosterPrefix = "roster"

// NewTournamentAdmin describes the tournament pages. Bulk delete is not
// offered; a tournament is removed from its own delete page.
func NewTournamentAdmin(svc services.TournamentService, players services.PlayerService, css string) *ModelAdmin[models.Tournament] {
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

	return &ModelAdmin[models.Tournament]{
		Meta: Meta{
			Slug:       "tournament",
			Name:       "tournament",
			NamePlural: "Tournaments",
			Media:      media(css),
		},
		Columns: []Column[models.Tournament]{
			{Label: "Name", Order: "name", Cell: func(t models.Tournament) template.HTML { return text(t.Name) }},
			{Label: "Country", Order: "country", Cell: func(t models.Tournament) template.HTML { return text(CountryName(t.Country)) }},
			{Label: "City", Order: "city", Cell: func(t models.Tournament) template.HTML { return text(t.City) }},
			{Label: "Start date", Order: "start_date", Cell: func(t models.Tournament) template.HTML { return text(FormatDateTime(t.StartDate)) }},
			{Label: "End date", Order: "end_date", Cell: func(t models.Tournament) template.HTML { return text(FormatDateTime(t.EndDate)) }},
			{Label: "Players count", Order: "players_count", Cell: func(t models.Tournament) template.HTML { return text(strconv.Itoa(t.PlayersCount)) }},
			{Label: "Rounds", Cell: func(t models.Tournament) template.HTML {
				return template.HTML(rules.RoundsCell(t.RoundsCount, t.ID))
			}},
		},
		SearchFields: []string{"name"},
		DateField:    "start date",
		Ordering:     []string{"-start_date"},
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, MaxLength: 200},
			{Name: "country", Label: "Country", Kind: KindSelect, Options: Countries()},
			{Name: "city", Label: "City", Kind: KindText, MaxLength: 200},
			{Name: "start_date", Label: "Start date", Kind: KindDateTime, Required: true},
			{Name: "end_date", Label: "End date", Kind: KindDateTime, Required: true},
			{Name: "players", Label: "Players", Kind: KindMultiSelect, Choices: playerChoices},
		},
		Exclude: []string{"players"},
		Inlines: []Inline{{
			Prefix:    RosterPrefix,
			Label:     "Tournament-player relationships",
			Fields:    []Field{{Name: "player", Label: "Player", Kind: KindSelect, Required: true, Choices: playerChoices}},
			Extra:     1,
			CanDelete: true,
		}},

		List: func(ctx context.Context, q Query) ([]models.Tournament, int, error) {
			return svc.ListTournaments(ctx, tournamentFilter(q))
		},
		Dates: func(ctx context.Context, q Query) ([]time.Time, error) {
			return svc.TournamentDates(ctx, tournamentFilter(q))
		},
		Get: func(ctx context.Context, id int64) (models.Tournament, error) {
			t, err := svc.GetTournament(ctx, id)
			if err != nil {
				return models.Tournament{}, err
			}
			return *t, nil
		},
		Remove: svc.DeleteTournaments,
		Key:    func(t models.Tournament) int64 { return t.ID },
		Label:  func(t models.Tournament) string { return t.Name },

		Load: func(ctx context.Context, id int64) (url.Values, error) {
			t, err := svc.GetTournament(ctx, id)
			if err != nil {
				return nil, err
			}
			entries, err := svc.RosterEntries(ctx, id)
			if err != nil {
				return nil, err
			}
			values := url.Values{
				"name":       {t.Name},
				"country":    {t.Country},
				"city":       {t.City},
				"start_date": {InputDateTime(t.StartDate)},
				"end_date":   {InputDateTime(t.EndDate)},
			}
			roster := NewFormset(values, RosterPrefix)
			for _, e := range entries {
				roster.Append(e.ID, map[string]string{"player": strconv.FormatInt(e.PlayerID, 10)})
			}
			return values, nil
		},
		Save: func(ctx context.Context, id int64, form *Form, inlines map[string]*Formset) (int64, error) {
			t := &models.Tournament{
				ID:        id,
				Name:      form.Text("name", 200, true),
				Country:   form.Choice("country", optionValues(Countries()), false),
				City:      form.Text("city", 200, false),
				StartDate: form.DateTime("start_date", true),
				EndDate:   form.DateTime("end_date", true),
			}

			roster := inlines[RosterPrefix]
			opts, err := playerChoices(ctx)
			if err != nil {
				return 0, err
			}
			exists := OptionSet(opts)
			var playerIDs []int64
			for _, row := range roster.Rows {
				if row.Deleted() || row.Blank("player") {
					continue
				}
				if pid := row.ObjectID("player", exists, true); pid != 0 {
					playerIDs = append(playerIDs, pid)
				}
			}
			if !form.Valid() || !roster.Valid() {
				return 0, ErrInvalid
			}

			err = svc.SaveTournament(ctx, t, playerIDs)
			var verr *services.ValidationErrors
			if stderrors.As(err, &verr) {
				form.AddFieldErrors(verr.Fields)
				roster.NonForm = append(roster.NonForm, verr.NonField...)
				return 0, invalid(verr)
			}
			if err != nil {
				return 0, err
			}
			return t.ID, nil
		},
	}
}

func tournamentFilter(q Query) models.TournamentFilter {
	return models.TournamentFilter{
		Search:   q.Search,
		DateFrom: q.From,
		DateTo:   q.To,
		OrderBy:  q.OrderBy,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
}

func media(css string) []string {
	if css == "" {
		return nil
	}
	return []string{css}
}
