// Package rules holds the tournament progression logic: game score checks,
// the round lifecycle guard and first-round pairing.
package rules

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vytor/tourneydesk/internal/models"
)

const (
	MsgPlannedWithScore     = "Planned status is not allowed if game has score"
	MsgFinishedWithoutScore = "Planned status must be set if game has not score"
	MsgIncorrectScore       = "Incorrect score"
)

var one = decimal.NewFromInt(1)

// FieldError is a validation message bound to a form field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors is an ordered list of field-scoped messages.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// ValidateGame checks the status against the combined score. The first
// failing rule wins and is reported on the status field; nil means valid.
//
//	planned      total must be 0
//	otherwise    total must be 1
func ValidateGame(g models.Game) FieldErrors {
	total := g.TotalScore().Round(1)
	planned := g.Status == models.StatusPlanned

	switch {
	case planned && !total.IsZero():
		return FieldErrors{{Field: "status", Message: MsgPlannedWithScore}}
	case !planned && total.IsZero():
		return FieldErrors{{Field: "status", Message: MsgFinishedWithoutScore}}
	case !planned && !total.Equal(one):
		// Covers the half point and anything above a full point, plus
		// stray totals such as 0.3.
		return FieldErrors{{Field: "status", Message: MsgIncorrectScore}}
	}
	return nil
}
