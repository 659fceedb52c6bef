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

const (
	MsgEndBeforeStart  = "End date must not be before start date."
	MsgDuplicatePlayer = "Please correct the duplicate data for player."
)

// TournamentService handles tournaments and their rosters
type TournamentService interface {
	ListTournaments(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, int, error)
	TournamentDates(ctx context.Context, filter models.TournamentFilter) ([]time.Time, error)
	GetTournament(ctx context.Context, id int64) (*models.Tournament, error)
	RosterEntries(ctx context.Context, id int64) ([]models.RosterEntry, error)
	// SaveTournament writes the tournament and its roster atomically. A
	// failed record check returns *ValidationErrors.
	SaveTournament(ctx context.Context, t *models.Tournament, playerIDs []int64) error
	DeleteTournaments(ctx context.Context, ids ...int64) error
	TournamentChoices(ctx context.Context) ([]models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repository.TournamentRepository
}

// NewTournamentService creates a new TournamentService
func NewTournamentService(tournamentRepo repository.TournamentRepository) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo}
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing tournaments: search=%q", filter.Search)

	out, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list tournaments: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.tournamentRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count tournaments: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return out, total, nil
}

func (s *tournamentService) TournamentDates(ctx context.Context, filter models.TournamentFilter) ([]time.Time, error) {
	dates, err := s.tournamentRepo.Dates(ctx, filter)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load tournament dates: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return dates, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int64) (*models.Tournament, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting tournament: id=%d", id)

	t, err := s.tournamentRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("tournament", id)
		}
		log.Error("failed to get tournament: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return t, nil
}

func (s *tournamentService) RosterEntries(ctx context.Context, id int64) ([]models.RosterEntry, error) {
	entries, err := s.tournamentRepo.RosterEntries(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load roster: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return entries, nil
}

func (s *tournamentService) SaveTournament(ctx context.Context, t *models.Tournament, playerIDs []int64) error {
	log := logger.FromContext(ctx)
	log.Debug("saving tournament: id=%d, players=%d", t.ID, len(playerIDs))

	verr := &ValidationErrors{}
	if t.EndDate.Before(t.StartDate) {
		verr.addField("end_date", MsgEndBeforeStart)
	}
	seen := make(map[int64]bool, len(playerIDs))
	for _, id := range playerIDs {
		if seen[id] {
			verr.NonField = append(verr.NonField, MsgDuplicatePlayer)
			break
		}
		seen[id] = true
	}
	if !verr.empty() {
		log.Debug("tournament rejected: %v", verr)
		return verr
	}

	if err := s.tournamentRepo.Save(ctx, t, playerIDs); err != nil {
		switch {
		case stderrors.Is(err, sql.ErrNoRows):
			return errors.NewNotFoundError("tournament", t.ID)
		case db.IsForeignKeyViolation(err):
			return errors.NewConflictError("roster references a missing player", err)
		}
		log.Error("failed to save tournament: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("tournament saved: id=%d, players=%d", t.ID, len(playerIDs))
	return nil
}

func (s *tournamentService) DeleteTournaments(ctx context.Context, ids ...int64) error {
	log := logger.FromContext(ctx)
	if err := s.tournamentRepo.Delete(ctx, ids...); err != nil {
		log.Error("failed to delete tournaments: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("deleted %d tournaments", len(ids))
	return nil
}

func (s *tournamentService) TournamentChoices(ctx context.Context) ([]models.Tournament, error) {
	out, err := s.tournamentRepo.List(ctx, models.TournamentFilter{OrderBy: []string{"name"}, Limit: choiceLimit})
	if err != nil {
		logger.FromContext(ctx).Error("failed to list tournament choices: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return out, nil
}
