package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/draft-league/catalog"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/repositories"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	TournamentID string
	Type         string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *fakeNotifier) NotifyTournament(id, eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{TournamentID: id, Type: eventType})
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

type fakeCache struct {
	mu          sync.Mutex
	data        map[string]*StandingsView
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]*StandingsView)}
}

func (c *fakeCache) Get(_ context.Context, id string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[id]
	if !ok {
		return false, nil
	}
	*dst.(*StandingsView) = *v
	return true, nil
}

func (c *fakeCache) Set(_ context.Context, id string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = value.(*StandingsView)
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type testEnv struct {
	ctx          context.Context
	repo         repositories.TournamentRepository
	notifier     *fakeNotifier
	cache        *fakeCache
	catalog      *catalog.Catalog
	tournaments  TournamentService
	players      PlayerService
	matches      MatchService
	knockout     KnockoutService
	transactions TransactionService
	standings    StandingsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat := &catalog.Catalog{}
	entries := make([]models.CatalogEntry, 0, 20)
	for _, e := range []struct {
		slug string
		pts  int
	}{
		{"pikachu", 10}, {"charizard", 20}, {"blastoise", 20}, {"venusaur", 20},
		{"eevee", 5}, {"snorlax", 20}, {"mewtwo", 60}, {"gengar", 15}, {"raichu", 12},
	} {
		entries = append(entries, models.CatalogEntry{Slug: e.slug, Name: e.slug, Pts: e.pts})
	}
	cat.Replace(entries)

	env := &testEnv{
		ctx:      context.Background(),
		repo:     repositories.NewMemoryTournamentRepository(),
		notifier: &fakeNotifier{},
		cache:    newFakeCache(),
		catalog:  cat,
	}
	deps := Deps{
		Repo:     env.repo,
		Cache:    env.cache,
		Notifier: env.notifier,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	env.tournaments = NewTournamentService(deps)
	env.players = NewPlayerService(deps, cat)
	env.matches = NewMatchService(deps)
	env.knockout = NewKnockoutService(deps)
	env.transactions = NewTransactionService(deps, cat)
	env.standings = NewStandingsService(deps)
	return env
}

func (e *testEnv) tournament(t *testing.T, format models.TournamentFormat, playerNum int) *models.Tournament {
	t.Helper()
	tour, err := e.tournaments.Create(e.ctx, "owner", TournamentInput{Name: "Spring League", PlayerNum: playerNum, Format: format})
	require.NoError(t, err)
	return tour
}

func (e *testEnv) player(t *testing.T, tournamentID, name, group string, slugs ...string) *models.Player {
	t.Helper()
	p, err := e.players.AddPlayer(e.ctx, tournamentID, PlayerInput{Name: name, TeamName: name + " FC", Group: group})
	require.NoError(t, err)
	for _, slug := range slugs {
		p, err = e.players.AddPokemon(e.ctx, tournamentID, p.ID, slug)
		require.NoError(t, err)
	}
	return p
}

// playMatch records a match in which loser's first pokemon takes all six faints.
func (e *testEnv) playMatch(t *testing.T, tournamentID string, winner, loser *models.Player) *models.Match {
	t.Helper()
	m, err := e.matches.CreateMatch(e.ctx, tournamentID, MatchTeamsInput{
		PlayerOne: winner.Name,
		PlayerTwo: loser.Name,
		TeamOne:   []string{winner.Pokemon[0].Slug},
		TeamTwo:   []string{loser.Pokemon[0].Slug},
	})
	require.NoError(t, err)

	m, err = e.matches.RecordResult(e.ctx, tournamentID, m.ID, ResultLines{
		winner.Name: {winner.Pokemon[0].Slug: {Kills: 6}},
		loser.Name:  {loser.Pokemon[0].Slug: {Faints: 6}},
	})
	require.NoError(t, err, fmt.Sprintf("%s vs %s", winner.Name, loser.Name))
	return m
}
