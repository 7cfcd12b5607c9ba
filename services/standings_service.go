package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/scoring"
)

// LeaderboardSize - сколько покемонов показывать в топах.
const LeaderboardSize = 5

type StandingsView struct {
	TournamentID string                     `json:"tournament_id"`
	League       *scoring.Table             `json:"league,omitempty"`
	Groups       []scoring.Table            `json:"groups,omitempty"`
	KillLeaders  []scoring.LeaderboardEntry `json:"kill_leaders"`
	FaintLeaders []scoring.LeaderboardEntry `json:"faint_leaders"`
}

type StandingsService interface {
	Standings(ctx context.Context, tournamentID string) (*StandingsView, error)
}

type standingsService struct {
	tournamentStore
}

func NewStandingsService(deps Deps) StandingsService {
	return &standingsService{tournamentStore: newTournamentStore(deps)}
}

// Standings returns group tables when any visible player has a group, a single
// league table otherwise. Results are cached until the next mutation.
func (s *standingsService) Standings(ctx context.Context, tournamentID string) (*StandingsView, error) {
	var cached StandingsView
	hit, err := s.Cache.Get(ctx, tournamentID, &cached)
	if err != nil {
		s.Logger.WarnContext(ctx, "standings cache read failed", slog.String("tournament_id", tournamentID), slog.Any("error", err))
	}
	if hit {
		s.observeCache("hit")
		return &cached, nil
	}
	s.observeCache("miss")

	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	view := buildStandings(t)

	if err := s.Cache.Set(ctx, tournamentID, view); err != nil {
		s.Logger.WarnContext(ctx, "standings cache write failed", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return view, nil
	}
	s.dropIfStale(ctx, t)
	return view, nil
}

// dropIfStale перечитывает документ после записи в кэш. mutate сначала пишет,
// потом инвалидирует, поэтому изменение между load и Set либо видно здесь,
// либо его Invalidate выполнится уже после нашего Set.
func (s *standingsService) dropIfStale(ctx context.Context, built *models.Tournament) {
	current, err := s.load(ctx, built.ID)
	if err == nil && current.UpdatedAt.Equal(built.UpdatedAt) {
		return
	}
	if err := s.Cache.Invalidate(ctx, built.ID); err != nil {
		s.Logger.WarnContext(ctx, "failed to drop stale standings", slog.String("tournament_id", built.ID), slog.Any("error", err))
	}
}

func (s *standingsService) observeCache(result string) {
	if s.Metrics != nil {
		s.Metrics.StandingsCache.WithLabelValues(result).Inc()
	}
}

func buildStandings(t *models.Tournament) *StandingsView {
	view := &StandingsView{TournamentID: t.ID}

	grouped := false
	for _, p := range t.Players {
		if p.Group != "" && !p.IsHidden {
			grouped = true
			break
		}
	}
	if grouped {
		view.Groups = scoring.GroupTables(t.Players)
	} else {
		table := scoring.BuildTable("", t.Players)
		view.League = &table
	}
	view.KillLeaders, view.FaintLeaders = scoring.Leaderboards(t.Players, LeaderboardSize)
	return view
}
