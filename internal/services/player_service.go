package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/vytor/tourneydesk/internal/db"
	"github.com/vytor/tourneydesk/internal/errors"
	"github.com/vytor/tourneydesk/internal/logger"
	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/repository"
)

const choiceLimit = 10000

// PlayerService handles player-related business logic
type PlayerService interface {
	ListPlayers(ctx context.Context, filter models.PlayerFilter) ([]models.Player, int, error)
	GetPlayer(ctx context.Context, id int64) (*models.Player, error)
	CreatePlayer(ctx context.Context, p models.Player) (*models.Player, error)
	UpdatePlayer(ctx context.Context, p models.Player) error
	DeletePlayers(ctx context.Context, ids ...int64) error
	// PlayerChoices lists every player alphabetically for dropdowns.
	PlayerChoices(ctx context.Context) ([]models.Player, error)
}

type playerService struct {
	playerRepo repository.PlayerRepository
	now        func() time.Time
}

// NewPlayerService creates a new PlayerService
func NewPlayerService(playerRepo repository.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo, now: time.Now}
}

func (s *playerService) ListPlayers(ctx context.Context, filter models.PlayerFilter) ([]models.Player, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing players: search=%q", filter.Search)

	players, err := s.playerRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list players: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.playerRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count players: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return players, total, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int64) (*models.Player, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting player: id=%d", id)

	p, err := s.playerRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("player", id)
		}
		log.Error("failed to get player: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return p, nil
}

// CreatePlayer stamps the registration date and starts the player at their
// initial rating.
func (s *playerService) CreatePlayer(ctx context.Context, p models.Player) (*models.Player, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating player: name=%s", p.Name)

	p.ID = 0
	p.RegisterDate = s.now()
	p.Rating = p.InitialRating

	id, err := s.playerRepo.Insert(ctx, p)
	if err != nil {
		log.Error("failed to create player: %v", err)
		return nil, errors.NewInternalError(err)
	}
	p.ID = id
	log.Info("player created: id=%d, name=%s", id, p.Name)
	return &p, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, p models.Player) error {
	log := logger.FromContext(ctx)
	log.Debug("updating player: id=%d", p.ID)

	if err := s.playerRepo.Update(ctx, p); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("player", p.ID)
		}
		log.Error("failed to update player: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *playerService) DeletePlayers(ctx context.Context, ids ...int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting players: ids=%v", ids)

	if err := s.playerRepo.Delete(ctx, ids...); err != nil {
		if db.IsForeignKeyViolation(err) {
			return errors.NewConflictError("player is referenced by recorded games", err)
		}
		log.Error("failed to delete players: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("deleted %d players", len(ids))
	return nil
}

func (s *playerService) PlayerChoices(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx, models.PlayerFilter{OrderBy: []string{"name"}, Limit: choiceLimit})
	if err != nil {
		logger.FromContext(ctx).Error("failed to list player choices: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return players, nil
}
