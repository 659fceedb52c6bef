package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/tourneydesk/internal/models"
)

// MockGameRepository is a mock implementation of repository.GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) ListByRound(ctx context.Context, roundID int64) ([]models.Game, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Game), args.Error(1)
}
