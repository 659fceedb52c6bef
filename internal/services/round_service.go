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
	"github.com/vytor/tourneydesk/internal/rules"
)

// RoundDraft is the starting state of a blank round form.
type RoundDraft struct {
	Round    models.Round
	Pairings []rules.Pairing
	// Extra is the number of blank game rows offered after the pairings.
	Extra int
}

// RoundService handles rounds and the games they own
type RoundService interface {
	ListRounds(ctx context.Context, filter models.RoundFilter) ([]models.Round, int, error)
	RoundDates(ctx context.Context, filter models.RoundFilter) ([]time.Time, error)
	GetRound(ctx context.Context, id int64) (*models.Round, []models.Game, error)
	// NewRoundDraft seeds a blank round for the tournament. An unknown
	// tournament yields an empty draft rather than an error.
	NewRoundDraft(ctx context.Context, tournamentID int64, name string) (*RoundDraft, error)
	// SaveRound checks the round guard, then every game row, then writes the
	// round and its games in one transaction. Failed checks return
	// *ValidationErrors and nothing is written.
	SaveRound(ctx context.Context, rd *models.Round, games []models.Game, deleteGameIDs []int64) error
	DeleteRounds(ctx context.Context, ids ...int64) error
}

type roundService struct {
	roundRepo      repository.RoundRepository
	gameRepo       repository.GameRepository
	tournamentRepo repository.TournamentRepository
}

// NewRoundService creates a new RoundService
func NewRoundService(roundRepo repository.RoundRepository, gameRepo repository.GameRepository, tournamentRepo repository.TournamentRepository) RoundService {
	return &roundService{
		roundRepo:      roundRepo,
		gameRepo:       gameRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *roundService) ListRounds(ctx context.Context, filter models.RoundFilter) ([]models.Round, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing rounds: tournament_id=%d, search=%q", filter.TournamentID, filter.Search)

	rounds, err := s.roundRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list rounds: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.roundRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count rounds: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return rounds, total, nil
}

func (s *roundService) RoundDates(ctx context.Context, filter models.RoundFilter) ([]time.Time, error) {
	dates, err := s.roundRepo.Dates(ctx, filter)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load round dates: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return dates, nil
}

func (s *roundService) GetRound(ctx context.Context, id int64) (*models.Round, []models.Game, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting round: id=%d", id)

	rd, err := s.roundRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil, errors.NewNotFoundError("round", id)
		}
		log.Error("failed to get round: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	games, err := s.gameRepo.ListByRound(ctx, id)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	return rd, games, nil
}

func (s *roundService) NewRoundDraft(ctx context.Context, tournamentID int64, name string) (*RoundDraft, error) {
	log := logger.FromContext(ctx).WithField("tournament_id", tournamentID)
	draft := &RoundDraft{Round: models.Round{Name: name}}
	if tournamentID <= 0 {
		return draft, nil
	}

	t, err := s.tournamentRepo.Get(ctx, tournamentID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			log.Warn("round draft for unknown tournament, opening empty form")
			return draft, nil
		}
		log.Error("failed to load tournament for draft: %v", err)
		return nil, errors.NewInternalError(err)
	}
	draft.Round.TournamentID = t.ID
	draft.Round.TournamentName = t.Name

	roster, err := s.tournamentRepo.Roster(ctx, t.ID)
	if err != nil {
		log.Error("failed to load roster: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if t.RoundsCount > 0 {
		draft.Extra = rules.GameCount(len(roster))
		log.Debug("tournament already has %d rounds, offering %d blank games", t.RoundsCount, draft.Extra)
		return draft, nil
	}
	draft.Pairings = rules.SeedPairings(roster)
	log.Debug("seeded %d pairings from %d players", len(draft.Pairings), len(roster))
	return draft, nil
}

func (s *roundService) SaveRound(ctx context.Context, rd *models.Round, games []models.Game, deleteGameIDs []int64) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"round_id":      rd.ID,
		"tournament_id": rd.TournamentID,
	})
	log.Debug("saving round: games=%d, deleted=%d", len(games), len(deleteGameIDs))

	latest, err := s.roundRepo.Latest(ctx, rd.TournamentID)
	if err != nil {
		log.Error("failed to load latest round: %v", err)
		return errors.NewInternalError(err)
	}
	if err := rules.CheckRound(rd.ID, latest); err != nil {
		log.Info("round rejected by guard: %v", err)
		return &ValidationErrors{NonField: []string{err.Error()}}
	}

	verr := &ValidationErrors{}
	for i, g := range games {
		if g.Status == "" {
			games[i].Status = models.StatusPlanned
			g.Status = models.StatusPlanned
		}
		if errs := rules.ValidateGame(g); len(errs) > 0 {
			verr.addRow(i, errs)
		}
	}
	if !verr.empty() {
		log.Debug("round rejected: %v", verr)
		return verr
	}

	if err := s.roundRepo.Save(ctx, rd, games, deleteGameIDs); err != nil {
		switch {
		case stderrors.Is(err, sql.ErrNoRows):
			return errors.NewNotFoundError("round", rd.ID)
		case db.IsForeignKeyViolation(err):
			return errors.NewConflictError("round references a missing tournament or player", err)
		}
		log.Error("failed to save round: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("round saved: id=%d, games=%d", rd.ID, len(games))
	return nil
}

func (s *roundService) DeleteRounds(ctx context.Context, ids ...int64) error {
	log := logger.FromContext(ctx)
	if err := s.roundRepo.Delete(ctx, ids...); err != nil {
		log.Error("failed to delete rounds: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("deleted %d rounds", len(ids))
	return nil
}
