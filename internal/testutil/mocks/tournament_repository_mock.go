package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/tourneydesk/internal/models"
)

// MockTournamentRepository is a mock implementation of repository.TournamentRepository
type MockTournamentRepository struct {
	mock.Mock
}

func (m *MockTournamentRepository) Get(ctx context.Context, id int64) (*models.Tournament, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) Count(ctx context.Context, filter models.TournamentFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockTournamentRepository) Dates(ctx context.Context, filter models.TournamentFilter) ([]time.Time, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockTournamentRepository) Roster(ctx context.Context, tournamentID int64) ([]models.Player, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Player), args.Error(1)
}

func (m *MockTournamentRepository) RosterEntries(ctx context.Context, tournamentID int64) ([]models.RosterEntry, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RosterEntry), args.Error(1)
}

func (m *MockTournamentRepository) Save(ctx context.Context, t *models.Tournament, playerIDs []int64) error {
	args := m.Called(ctx, t, playerIDs)
	return args.Error(0)
}

func (m *MockTournamentRepository) Delete(ctx context.Context, ids ...int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
