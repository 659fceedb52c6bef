package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/tourneydesk/internal/models"
)

// MockPlayerRepository is a mock implementation of repository.PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Get(ctx context.Context, id int64) (*models.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) List(ctx context.Context, filter models.PlayerFilter) ([]models.Player, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Player), args.Error(1)
}

func (m *MockPlayerRepository) Count(ctx context.Context, filter models.PlayerFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockPlayerRepository) Insert(ctx context.Context, player models.Player) (int64, error) {
	args := m.Called(ctx, player)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerRepository) Update(ctx context.Context, player models.Player) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockPlayerRepository) Delete(ctx context.Context, ids ...int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
