package admin

import (
	"context"
	"html/template"
	"net/url"
	"strconv"

	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/services"
)

// NewPlayerAdmin describes the player pages.
func NewPlayerAdmin(svc services.PlayerService) *ModelAdmin[models.Player] {
	return &ModelAdmin[models.Player]{
		Meta: Meta{
			Slug:       "player",
			Name:       "player",
			NamePlural: "Players",
			Actions:    []Action{{Name: ActionDeleteSelected, Label: "Delete selected players"}},
		},
		Columns: []Column[models.Player]{
			{Label: "Name", Order: "name", Cell: func(p models.Player) template.HTML { return text(p.Name) }},
			{Label: "Fide title", Order: "fide_title", Cell: func(p models.Player) template.HTML { return text(p.FideTitle) }},
			{Label: "Country", Order: "country", Cell: func(p models.Player) template.HTML { return text(CountryName(p.Country)) }},
			{Label: "Rating", Order: "rating", Cell: func(p models.Player) template.HTML { return text(strconv.Itoa(p.Rating)) }},
			{Label: "FIDE ID", Order: "fide_id", Cell: func(p models.Player) template.HTML { return text(strconv.FormatInt(p.FideID, 10)) }},
			{Label: "Registration date", Order: "register_date", Cell: func(p models.Player) template.HTML { return text(FormatDate(p.RegisterDate)) }},
		},
		SearchFields: []string{"name"},
		Ordering:     []string{"name"},
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, MaxLength: 200},
			{Name: "country", Label: "Country", Kind: KindSelect, Required: true, Options: Countries()},
			{Name: "fide_id", Label: "FIDE ID", Kind: KindNumber, Required: true},
			{Name: "fide_title", Label: "Fide title", Kind: KindText, MaxLength: 10},
			{Name: "initial_rating", Label: "Initial rating", Kind: KindNumber, Required: true},
			{Name: "rating", Label: "Rating", Kind: KindReadOnly},
		},

		List: func(ctx context.Context, q Query) ([]models.Player, int, error) {
			return svc.ListPlayers(ctx, models.PlayerFilter{
				Search:   q.Search,
				DateFrom: q.From,
				DateTo:   q.To,
				OrderBy:  q.OrderBy,
				Limit:    q.Limit,
				Offset:   q.Offset,
			})
		},
		Get: func(ctx context.Context, id int64) (models.Player, error) {
			p, err := svc.GetPlayer(ctx, id)
			if err != nil {
				return models.Player{}, err
			}
			return *p, nil
		},
		Remove: svc.DeletePlayers,
		Key:    func(p models.Player) int64 { return p.ID },
		Label:  func(p models.Player) string { return p.Name },

		Load: func(ctx context.Context, id int64) (url.Values, error) {
			p, err := svc.GetPlayer(ctx, id)
			if err != nil {
				return nil, err
			}
			return url.Values{
				"name":           {p.Name},
				"country":        {p.Country},
				"fide_id":        {strconv.FormatInt(p.FideID, 10)},
				"fide_title":     {p.FideTitle},
				"initial_rating": {strconv.Itoa(p.InitialRating)},
				"rating":         {strconv.Itoa(p.Rating)},
			}, nil
		},
		Save: func(ctx context.Context, id int64, form *Form, _ map[string]*Formset) (int64, error) {
			p := models.Player{
				ID:            id,
				Name:          form.Text("name", 200, true),
				Country:       form.Choice("country", optionValues(Countries()), true),
				FideID:        form.Int64("fide_id", true),
				FideTitle:     form.Text("fide_title", 10, false),
				InitialRating: form.Int("initial_rating", true),
			}
			if !form.Valid() {
				return 0, ErrInvalid
			}
			if id == 0 {
				created, err := svc.CreatePlayer(ctx, p)
				if err != nil {
					return 0, err
				}
				return created.ID, nil
			}

			stored, err := svc.GetPlayer(ctx, id)
			if err != nil {
				return 0, err
			}
			p.Rating = stored.Rating
			p.RegisterDate = stored.RegisterDate
			return id, svc.UpdatePlayer(ctx, p)
		},
	}
}

func text(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}
