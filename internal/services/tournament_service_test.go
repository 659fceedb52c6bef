package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/tourneydesk/internal/errors"
	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/testutil/mocks"
)

func tournamentAt(start, end time.Time) *models.Tournament {
	return &models.Tournament{Name: "Open", StartDate: start, EndDate: end}
}

func TestSaveTournament_EndBeforeStart(t *testing.T) {
	repo := new(mocks.MockTournamentRepository)
	svc := NewTournamentService(repo)
	start := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	err := svc.SaveTournament(context.Background(), tournamentAt(start, start.Add(-time.Hour)), nil)

	var verr *ValidationErrors
	require.True(t, stderrors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "end_date", verr.Fields[0].Field)
	assert.Equal(t, MsgEndBeforeStart, verr.Fields[0].Message)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveTournament_DuplicateRosterPlayer(t *testing.T) {
	repo := new(mocks.MockTournamentRepository)
	svc := NewTournamentService(repo)
	now := time.Now()

	err := svc.SaveTournament(context.Background(), tournamentAt(now, now), []int64{1, 2, 1})

	var verr *ValidationErrors
	require.True(t, stderrors.As(err, &verr))
	assert.Equal(t, []string{MsgDuplicatePlayer}, verr.NonField)
}

func TestSaveTournament_SameDayIsAllowed(t *testing.T) {
	repo := new(mocks.MockTournamentRepository)
	svc := NewTournamentService(repo)
	now := time.Now()
	tour := tournamentAt(now, now)
	repo.On("Save", mock.Anything, tour, []int64{4, 5}).Return(nil)

	require.NoError(t, svc.SaveTournament(context.Background(), tour, []int64{4, 5}))
	repo.AssertExpectations(t)
}

func TestSaveTournament_StoreFailureIsInternal(t *testing.T) {
	repo := new(mocks.MockTournamentRepository)
	svc := NewTournamentService(repo)
	now := time.Now()
	repo.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(stderrors.New("disk full"))

	err := svc.SaveTournament(context.Background(), tournamentAt(now, now), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}
