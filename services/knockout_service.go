package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/draft-league/brackets"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/scoring"
	"github.com/google/uuid"
)

type BracketView struct {
	Tournament *models.Tournament
	Rounds     []brackets.RoundView
	CanSeed    bool
}

type KoMatchInput struct {
	Round     models.KoRound `json:"round"`
	Slot      int            `json:"slot"`
	PlayerOne string         `json:"player_one"`
	PlayerTwo string         `json:"player_two"`
}

type KoMatchView struct {
	Tournament *models.Tournament
	Round      brackets.Round
	Match      models.KoMatch
	Players    []models.Player
}

// KnockoutService ведёт сетку плей-офф. Победитель раунда не переносится
// дальше автоматически: полуфиналы и финал создаёт администратор.
type KnockoutService interface {
	Bracket(ctx context.Context, tournamentID string, isAdmin bool) (*BracketView, error)
	SeedQuarterfinals(ctx context.Context, tournamentID string) ([]models.KoMatch, error)
	CreateKoMatch(ctx context.Context, tournamentID string, input KoMatchInput) (*models.KoMatch, error)
	GetKoMatch(ctx context.Context, tournamentID string, round models.KoRound, matchID string) (*KoMatchView, error)
	SelectKoPokemon(ctx context.Context, tournamentID string, round models.KoRound, matchID string, teamOne, teamTwo []string) (*models.KoMatch, error)
	RecordResult(ctx context.Context, tournamentID string, round models.KoRound, matchID string, lines ResultLines) (*models.KoMatch, error)
}

type knockoutService struct {
	tournamentStore
}

func NewKnockoutService(deps Deps) KnockoutService {
	return &knockoutService{tournamentStore: newTournamentStore(deps)}
}

func requireKnockout(t *models.Tournament) error {
	if !t.Format.HasKnockout() {
		return invalid(ErrNotKnockoutFormat)
	}
	return nil
}

func quarterfinalsLocked(t *models.Tournament) bool {
	for _, m := range t.KoMatchesByRound(models.RoundQuarterfinals) {
		if m.HasResult() {
			return true
		}
	}
	return false
}

func (s *knockoutService) Bracket(ctx context.Context, tournamentID string, isAdmin bool) (*BracketView, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return &BracketView{
		Tournament: t,
		Rounds:     brackets.BuildView(t, isAdmin),
		CanSeed:    isAdmin && t.Format.HasKnockout() && !quarterfinalsLocked(t),
	}, nil
}

// SeedQuarterfinals replaces the quarterfinals with pairings drawn from the
// current group tables. Refused once any quarterfinal has a result.
func (s *knockoutService) SeedQuarterfinals(ctx context.Context, tournamentID string) ([]models.KoMatch, error) {
	now := nowUTC()
	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString()}
	var seeded []models.KoMatch

	_, err := s.mutate(ctx, tournamentID, brackets.EventBracketUpdated, map[string]string{"round": string(models.RoundQuarterfinals)}, func(t *models.Tournament) error {
		if err := requireKnockout(t); err != nil {
			return err
		}
		if quarterfinalsLocked(t) {
			return ErrBracketLocked
		}

		var groupA, groupB []models.Player
		for _, table := range scoring.GroupTables(t.Players) {
			ranked := make([]models.Player, 0, len(table.Rows))
			for _, row := range table.Rows {
				ranked = append(ranked, *t.PlayerByID(row.PlayerID))
			}
			switch table.Group {
			case "A":
				groupA = ranked
			case "B":
				groupB = ranked
			}
		}
		pairings, err := brackets.SeedQuarterfinals(groupA, groupB)
		if err != nil {
			return invalid(err)
		}

		kept := make([]models.KoMatch, 0, len(t.KoMatches))
		for _, m := range t.KoMatches {
			if m.Round != models.RoundQuarterfinals {
				kept = append(kept, m)
			}
		}
		seeded = make([]models.KoMatch, 0, len(pairings))
		for i, p := range pairings {
			ko := models.KoMatch{Round: models.RoundQuarterfinals, Slot: p.Slot}
			ko.ID = ids[i]
			ko.PlayerNames = []string{p.Home.Name, p.Away.Name}
			ko.PlayedOn = now.Format(time.DateOnly)
			ko.CreatedAt = now
			seeded = append(seeded, ko)
		}
		t.KoMatches = append(kept, seeded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.InfoContext(ctx, "quarterfinals seeded", "tournament_id", tournamentID)
	return seeded, nil
}

func (s *knockoutService) CreateKoMatch(ctx context.Context, tournamentID string, input KoMatchInput) (*models.KoMatch, error) {
	round, ok := brackets.RoundByID(input.Round)
	if !ok {
		return nil, invalid(ErrInvalidRound)
	}
	if input.Slot < 1 || input.Slot > round.Slots {
		return nil, FieldErrors{"slot": fmt.Sprintf("Slot must be between 1 and %d", round.Slots)}
	}

	now := nowUTC()
	ko := models.KoMatch{Round: round.ID, Slot: input.Slot}
	ko.ID = uuid.NewString()
	ko.PlayedOn = now.Format(time.DateOnly)
	ko.CreatedAt = now

	_, err := s.mutate(ctx, tournamentID, brackets.EventBracketUpdated, map[string]string{"round": string(round.ID)}, func(t *models.Tournament) error {
		if err := requireKnockout(t); err != nil {
			return err
		}
		for _, m := range t.KoMatchesByRound(round.ID) {
			if m.Slot == input.Slot {
				return ErrSlotTaken
			}
		}
		players, err := checkPlayers(t, input.PlayerOne, input.PlayerTwo)
		if err != nil {
			return err
		}
		ko.PlayerNames = []string{players[0].Name, players[1].Name}
		t.KoMatches = append(t.KoMatches, ko)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ko, nil
}

func (s *knockoutService) GetKoMatch(ctx context.Context, tournamentID string, round models.KoRound, matchID string) (*KoMatchView, error) {
	r, ok := brackets.RoundByID(round)
	if !ok {
		return nil, ErrMatchNotFound
	}
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	m := t.KoMatchByID(round, matchID)
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return &KoMatchView{
		Tournament: t,
		Round:      r,
		Match:      *m,
		Players:    scoreInput(t, &m.Match, nil).Players,
	}, nil
}

func (s *knockoutService) SelectKoPokemon(ctx context.Context, tournamentID string, round models.KoRound, matchID string, teamOne, teamTwo []string) (*models.KoMatch, error) {
	var updated models.KoMatch
	_, err := s.mutate(ctx, tournamentID, brackets.EventBracketUpdated, map[string]string{"match_id": matchID}, func(t *models.Tournament) error {
		m := t.KoMatchByID(round, matchID)
		if m == nil {
			return ErrMatchNotFound
		}
		if m.HasResult() {
			return ErrResultAlreadyRecorded
		}
		players, err := checkPlayers(t, m.PlayerNames[0], m.PlayerNames[1])
		if err != nil {
			return err
		}
		teams, err := checkTeams(players, teamOne, teamTwo)
		if err != nil {
			return err
		}
		m.PokemonTeams = teams
		updated = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RecordResult stores per-match lines and the winner. Player counters and
// league records are left untouched.
func (s *knockoutService) RecordResult(ctx context.Context, tournamentID string, round models.KoRound, matchID string, lines ResultLines) (*models.KoMatch, error) {
	var recorded models.KoMatch
	_, err := s.mutate(ctx, tournamentID, brackets.EventBracketUpdated, map[string]string{"match_id": matchID}, func(t *models.Tournament) error {
		m := t.KoMatchByID(round, matchID)
		if m == nil {
			return ErrMatchNotFound
		}
		if m.HasResult() {
			return ErrResultAlreadyRecorded
		}
		if !m.HasTeams() {
			return invalid(ErrTeamsNotSelected)
		}
		outcome, err := scoring.ScoreMatch(scoreInput(t, &m.Match, lines))
		if err != nil {
			return invalid(err)
		}
		m.Results = outcome.Results
		m.Winner = outcome.Winner
		recorded = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.MatchesRecorded.WithLabelValues("knockout").Inc()
	}
	s.Logger.InfoContext(ctx, "knockout result recorded", "tournament_id", tournamentID, "round", round, "match_id", matchID, "winner", recorded.Winner)
	return &recorded, nil
}
