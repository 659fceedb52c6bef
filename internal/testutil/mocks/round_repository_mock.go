package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/tourneydesk/internal/models"
)

// MockRoundRepository is a mock implementation of repository.RoundRepository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) Get(ctx context.Context, id int64) (*models.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) List(ctx context.Context, filter models.RoundFilter) ([]models.Round, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Round), args.Error(1)
}

func (m *MockRoundRepository) Count(ctx context.Context, filter models.RoundFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockRoundRepository) Dates(ctx context.Context, filter models.RoundFilter) ([]time.Time, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockRoundRepository) Latest(ctx context.Context, tournamentID int64) (*models.RoundSummary, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoundSummary), args.Error(1)
}

func (m *MockRoundRepository) Save(ctx context.Context, r *models.Round, games []models.Game, deleteGameIDs []int64) error {
	args := m.Called(ctx, r, games, deleteGameIDs)
	return args.Error(0)
}

func (m *MockRoundRepository) Delete(ctx context.Context, ids ...int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
