package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/tourneydesk/internal/models"
	"github.com/vytor/tourneydesk/internal/rules"
	"github.com/vytor/tourneydesk/internal/testutil/mocks"
)

type RoundServiceSuite struct {
	suite.Suite
	rounds      *mocks.MockRoundRepository
	games       *mocks.MockGameRepository
	tournaments *mocks.MockTournamentRepository
	svc         RoundService
	ctx         context.Context
}

func (s *RoundServiceSuite) SetupTest() {
	s.rounds = new(mocks.MockRoundRepository)
	s.games = new(mocks.MockGameRepository)
	s.tournaments = new(mocks.MockTournamentRepository)
	s.svc = NewRoundService(s.rounds, s.games, s.tournaments)
	s.ctx = context.Background()
}

func players(ratings ...int) []models.Player {
	out := make([]models.Player, len(ratings))
	for i, r := range ratings {
		out[i] = models.Player{ID: int64(i + 1), Rating: r}
	}
	return out
}

func game(status models.GameStatus, player, opponent string) models.Game {
	return models.Game{
		PlayerID:      1,
		OpponentID:    2,
		PlayerScore:   decimal.RequireFromString(player),
		OpponentScore: decimal.RequireFromString(opponent),
		Status:        status,
	}
}

func (s *RoundServiceSuite) TestNewRoundDraft_SeedsFirstRound() {
	s.tournaments.On("Get", mock.Anything, int64(3)).Return(&models.Tournament{ID: 3, Name: "Open"}, nil)
	s.tournaments.On("Roster", mock.Anything, int64(3)).Return(players(1800, 1700, 1600, 1500), nil)

	draft, err := s.svc.NewRoundDraft(s.ctx, 3, "Round 1")
	s.Require().NoError(err)
	s.Assert().Equal(int64(3), draft.Round.TournamentID)
	s.Assert().Equal("Round 1", draft.Round.Name)
	s.Require().Len(draft.Pairings, 2)
	s.Assert().Equal(1800, draft.Pairings[0].Player.Rating)
	s.Assert().Equal(1600, draft.Pairings[0].Opponent.Rating)
	s.Assert().Equal(1700, draft.Pairings[1].Player.Rating)
	s.Assert().Equal(1500, draft.Pairings[1].Opponent.Rating)
	s.Assert().Zero(draft.Extra)
}

func (s *RoundServiceSuite) TestNewRoundDraft_LaterRoundOffersBlankRows() {
	s.tournaments.On("Get", mock.Anything, int64(3)).Return(&models.Tournament{ID: 3, RoundsCount: 1}, nil)
	s.tournaments.On("Roster", mock.Anything, int64(3)).Return(players(1, 2, 3, 4, 5), nil)

	draft, err := s.svc.NewRoundDraft(s.ctx, 3, "Round 2")
	s.Require().NoError(err)
	s.Assert().Empty(draft.Pairings)
	s.Assert().Equal(3, draft.Extra)
}

func (s *RoundServiceSuite) TestNewRoundDraft_UnknownTournamentDegrades() {
	s.tournaments.On("Get", mock.Anything, int64(99)).Return(nil, sql.ErrNoRows)

	draft, err := s.svc.NewRoundDraft(s.ctx, 99, "Round 1")
	s.Require().NoError(err)
	s.Assert().Zero(draft.Round.TournamentID)
	s.Assert().Empty(draft.Pairings)
}

func (s *RoundServiceSuite) TestNewRoundDraft_NoTournament() {
	draft, err := s.svc.NewRoundDraft(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Assert().Empty(draft.Pairings)
	s.tournaments.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
}

func (s *RoundServiceSuite) TestSaveRound_GuardBlocksUnfinishedPrevious() {
	s.rounds.On("Latest", mock.Anything, int64(3)).
		Return(&models.RoundSummary{RoundID: 10, GameCount: 1, PlannedCount: 1}, nil)

	rd := &models.Round{TournamentID: 3, Name: "Round 2", RoundDate: time.Now()}
	err := s.svc.SaveRound(s.ctx, rd, []models.Game{game(models.StatusPlanned, "1", "1")}, nil)

	var verr *ValidationErrors
	s.Require().True(stderrors.As(err, &verr))
	s.Assert().Equal([]string{"The previous round has unfinished games."}, verr.NonField)
	s.Assert().Empty(verr.Rows, "game rows are not checked once the guard fails")
	s.rounds.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RoundServiceSuite) TestSaveRound_GuardBlocksEmptyPrevious() {
	s.rounds.On("Latest", mock.Anything, int64(3)).Return(&models.RoundSummary{RoundID: 10}, nil)

	err := s.svc.SaveRound(s.ctx, &models.Round{TournamentID: 3}, nil, nil)

	var verr *ValidationErrors
	s.Require().True(stderrors.As(err, &verr))
	s.Assert().Equal([]string{"The previous round doesn't have any games."}, verr.NonField)
	s.Assert().Equal("guard", verr.Reason())
}

func (s *RoundServiceSuite) TestSaveRound_InvalidRowsReported() {
	s.rounds.On("Latest", mock.Anything, int64(3)).Return(nil, nil)

	games := []models.Game{
		game(models.StatusFinished, "1", "0"),
		game(models.StatusFinished, "0.5", "0"),
		game(models.StatusPlanned, "0.5", "0.5"),
	}
	err := s.svc.SaveRound(s.ctx, &models.Round{TournamentID: 3}, games, nil)

	var verr *ValidationErrors
	s.Require().True(stderrors.As(err, &verr))
	s.Require().Len(verr.Rows, 2)
	s.Assert().Equal(rules.MsgIncorrectScore, verr.Rows[1][0].Message)
	s.Assert().Equal(rules.MsgPlannedWithScore, verr.Rows[2][0].Message)
	s.Assert().Equal("row", verr.Reason())
	s.rounds.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RoundServiceSuite) TestSaveRound_PersistsValidRound() {
	s.rounds.On("Latest", mock.Anything, int64(3)).
		Return(&models.RoundSummary{RoundID: 10, GameCount: 2}, nil)
	rd := &models.Round{TournamentID: 3, Name: "Round 2"}
	games := []models.Game{game("", "0", "0"), game(models.StatusWalkover, "1", "0")}
	s.rounds.On("Save", mock.Anything, rd, mock.Anything, []int64{5}).Return(nil)

	s.Require().NoError(s.svc.SaveRound(s.ctx, rd, games, []int64{5}))
	s.Assert().Equal(models.StatusPlanned, games[0].Status)
	s.rounds.AssertExpectations(s.T())
}

func (s *RoundServiceSuite) TestSaveRound_EditingLatestSkipsGuard() {
	s.rounds.On("Latest", mock.Anything, int64(3)).
		Return(&models.RoundSummary{RoundID: 10, GameCount: 2, PlannedCount: 2}, nil)
	rd := &models.Round{ID: 10, TournamentID: 3}
	s.rounds.On("Save", mock.Anything, rd, mock.Anything, mock.Anything).Return(nil)

	s.Require().NoError(s.svc.SaveRound(s.ctx, rd, []models.Game{game(models.StatusPlanned, "0", "0")}, nil))
}

func (s *RoundServiceSuite) TestGetRound_NotFound() {
	s.rounds.On("Get", mock.Anything, int64(4)).Return(nil, sql.ErrNoRows)

	_, _, err := s.svc.GetRound(s.ctx, 4)
	s.Require().Error(err)
	s.Assert().Contains(err.Error(), "round not found")
}

func TestRoundServiceSuite(t *testing.T) {
	suite.Run(t, new(RoundServiceSuite))
}
