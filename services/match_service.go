package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/draft-league/brackets"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/scoring"
	"github.com/google/uuid"
)

// ResultLines - введённые KO/фейнты: игрок -> slug -> линия.
type ResultLines map[string]map[string]scoring.Line

type MatchTeamsInput struct {
	PlayerOne string   `json:"player_one"`
	PlayerTwo string   `json:"player_two"`
	TeamOne   []string `json:"team_one"`
	TeamTwo   []string `json:"team_two"`
	PlayedOn  string   `json:"played_on"`
}

// MatchView is a match together with both participants, in PlayerNames order.
type MatchView struct {
	Tournament *models.Tournament
	Match      models.Match
	Players    []models.Player
}

type MatchDay struct {
	Date    string         `json:"date"`
	Matches []models.Match `json:"matches"`
}

type MatchService interface {
	ValidatePlayers(ctx context.Context, tournamentID, playerOne, playerTwo string) ([]models.Player, error)
	CreateMatch(ctx context.Context, tournamentID string, input MatchTeamsInput) (*models.Match, error)
	RecordResult(ctx context.Context, tournamentID, matchID string, lines ResultLines) (*models.Match, error)
	GetMatch(ctx context.Context, tournamentID, matchID string) (*MatchView, error)
	ListByDate(ctx context.Context, tournamentID string) ([]MatchDay, error)
}

type matchService struct {
	tournamentStore
}

func NewMatchService(deps Deps) MatchService {
	return &matchService{tournamentStore: newTournamentStore(deps)}
}

// checkPlayers validates the select-players step against the registered players.
func checkPlayers(t *models.Tournament, one, two string) ([]models.Player, error) {
	one, two = strings.TrimSpace(one), strings.TrimSpace(two)
	errs := FieldErrors{}
	switch {
	case one == "":
		errs["player_one"] = ErrPlayerOneRequired.Error()
	case t.PlayerByName(one) == nil:
		errs["player_one"] = fmt.Sprintf("%s is not registered in this tournament", one)
	}
	switch {
	case two == "":
		errs["player_two"] = ErrPlayerTwoRequired.Error()
	case one == two:
		errs["player_two"] = ErrSamePlayers.Error()
	case t.PlayerByName(two) == nil:
		errs["player_two"] = fmt.Sprintf("%s is not registered in this tournament", two)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return []models.Player{*t.PlayerByName(one), *t.PlayerByName(two)}, nil
}

// checkTeams returns the deduplicated teams keyed by player name. Every slug
// must be on the player's current roster.
func checkTeams(players []models.Player, teamOne, teamTwo []string) (map[string][]string, error) {
	errs := FieldErrors{}
	teams := make(map[string][]string, 2)
	fields := []string{"team_one", "team_two"}

	for i, raw := range [][]string{teamOne, teamTwo} {
		p := players[i]
		team := make([]string, 0, len(raw))
		seen := make(map[string]bool, len(raw))
		for _, slug := range raw {
			slug = strings.TrimSpace(slug)
			if slug == "" || seen[slug] {
				continue
			}
			if p.PokemonBySlug(slug) == nil {
				errs[fields[i]] = fmt.Sprintf("%s is not on %s's roster", slug, p.Name)
				break
			}
			seen[slug] = true
			team = append(team, slug)
		}
		if _, failed := errs[fields[i]]; failed {
			continue
		}
		if len(team) == 0 {
			errs[fields[i]] = ErrPokemonRequired.Error()
			continue
		}
		if len(team) > scoring.MaxRosterSize {
			errs[fields[i]] = fmt.Sprintf("At most %d Pokemon can play", scoring.MaxRosterSize)
			continue
		}
		teams[p.Name] = team
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return teams, nil
}

func scoreInput(t *models.Tournament, m *models.Match, lines ResultLines) scoring.ScoreInput {
	players := make([]models.Player, 0, 2)
	for _, name := range m.PlayerNames {
		if p := t.PlayerByName(name); p != nil {
			players = append(players, *p)
		}
	}
	return scoring.ScoreInput{Match: m, Players: players, Lines: lines}
}

func (s *matchService) ValidatePlayers(ctx context.Context, tournamentID, playerOne, playerTwo string) ([]models.Player, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return checkPlayers(t, playerOne, playerTwo)
}

func (s *matchService) CreateMatch(ctx context.Context, tournamentID string, input MatchTeamsInput) (*models.Match, error) {
	now := nowUTC()
	playedOn, err := playedOnDate(now, input.PlayedOn)
	if err != nil {
		return nil, err
	}
	match := models.Match{
		ID:        uuid.NewString(),
		PlayedOn:  playedOn,
		CreatedAt: now,
	}

	_, err = s.mutate(ctx, tournamentID, brackets.EventMatchCreated, map[string]string{"match_id": match.ID}, func(t *models.Tournament) error {
		players, err := checkPlayers(t, input.PlayerOne, input.PlayerTwo)
		if err != nil {
			return err
		}
		teams, err := checkTeams(players, input.TeamOne, input.TeamTwo)
		if err != nil {
			return err
		}
		match.PlayerNames = []string{players[0].Name, players[1].Name}
		match.PokemonTeams = teams
		t.Matches = append(t.Matches, match)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// RecordResult scores a league match and updates both players in the same
// write: pokemon counters, wins/loses and the match record.
func (s *matchService) RecordResult(ctx context.Context, tournamentID, matchID string, lines ResultLines) (*models.Match, error) {
	var recorded models.Match
	_, err := s.mutate(ctx, tournamentID, brackets.EventMatchRecorded, map[string]string{"match_id": matchID}, func(t *models.Tournament) error {
		m := t.MatchByID(matchID)
		if m == nil {
			return ErrMatchNotFound
		}
		if m.HasResult() {
			return ErrResultAlreadyRecorded
		}
		if !m.HasTeams() {
			return invalid(ErrTeamsNotSelected)
		}
		outcome, err := scoring.ScoreMatch(scoreInput(t, m, lines))
		if err != nil {
			return invalid(err)
		}
		if err := scoring.ApplyLeagueOutcome(t, m, outcome); err != nil {
			return invalid(err)
		}
		recorded = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.MatchesRecorded.WithLabelValues("league").Inc()
	}
	s.Logger.InfoContext(ctx, "match result recorded", "tournament_id", tournamentID, "match_id", matchID, "winner", recorded.Winner)
	return &recorded, nil
}

func (s *matchService) GetMatch(ctx context.Context, tournamentID, matchID string) (*MatchView, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	m := t.MatchByID(matchID)
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return &MatchView{Tournament: t, Match: *m, Players: scoreInput(t, m, nil).Players}, nil
}

// ListByDate groups matches by PlayedOn, oldest day first.
func (s *matchService) ListByDate(ctx context.Context, tournamentID string) ([]MatchDay, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return groupByDate(t.Matches), nil
}

func groupByDate(matches []models.Match) []MatchDay {
	byDate := make(map[string][]models.Match)
	for _, m := range matches {
		byDate[m.PlayedOn] = append(byDate[m.PlayedOn], m)
	}
	days := make([]MatchDay, 0, len(byDate))
	for date, ms := range byDate {
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].CreatedAt.Before(ms[j].CreatedAt) })
		days = append(days, MatchDay{Date: date, Matches: ms})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
