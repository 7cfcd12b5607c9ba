package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/draft-league/cache"
	"github.com/Dosada05/draft-league/metrics"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/repositories"
)

// Notifier рассылает события турнира подписчикам (websocket hub).
type Notifier interface {
	NotifyTournament(tournamentID, eventType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) NotifyTournament(string, string, interface{}) {}

// Deps - общие зависимости сервисов турнира.
type Deps struct {
	Repo     repositories.TournamentRepository
	Cache    cache.StandingsCache
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.NewNoop()
	}
	if d.Notifier == nil {
		d.Notifier = noopNotifier{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// tournamentStore - чтение и атомарное изменение документа турнира с
// инвалидацией кэша таблицы и рассылкой события после успешной записи.
type tournamentStore struct {
	Deps
}

func newTournamentStore(d Deps) tournamentStore {
	return tournamentStore{Deps: d.withDefaults()}
}

func (s tournamentStore) load(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return t, nil
}

func (s tournamentStore) mutate(ctx context.Context, id, event string, payload interface{}, fn repositories.MutateFunc) (*models.Tournament, error) {
	t, err := s.Repo.Mutate(ctx, id, fn)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		s.Logger.WarnContext(ctx, "failed to invalidate standings cache", slog.String("tournament_id", id), slog.Any("error", err))
	}
	s.Notifier.NotifyTournament(id, event, payload)
	return t, nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrEmailTaken
	}
	return err
}

func findPlayer(t *models.Tournament, playerID string) (*models.Player, error) {
	p := t.PlayerByID(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

func playedOnDate(now time.Time, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.Format(time.DateOnly), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return "", FieldErrors{"played_on": "Date must look like 2024-01-31"}
	}
	return d.Format(time.DateOnly), nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
