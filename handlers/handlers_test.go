package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Dosada05/draft-league/catalog"
	"github.com/Dosada05/draft-league/middleware"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/repositories"
	"github.com/Dosada05/draft-league/services"
	"github.com/Dosada05/draft-league/storage"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const catalogKey = "catalog/pokemon.json"

type testApp struct {
	ctx         context.Context
	router      chi.Router
	tournaments services.TournamentService
	players     services.PlayerService
	matches     services.MatchService
	knockout    services.KnockoutService
	catalog     services.CatalogService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cat := &catalog.Catalog{}
	cat.Replace([]models.CatalogEntry{
		{Slug: "pikachu", Name: "Pikachu", Pts: 10},
		{Slug: "charizard", Name: "Charizard", Pts: 20},
		{Slug: "eevee", Name: "Eevee", Pts: 5},
		{Slug: "blastoise", Name: "Blastoise", Pts: 20},
		{Slug: "mewtwo", Name: "Mewtwo", Pts: 60},
	})

	deps := services.Deps{
		Repo:   repositories.NewMemoryTournamentRepository(),
		Logger: logger,
	}
	app := &testApp{
		ctx:         context.Background(),
		tournaments: services.NewTournamentService(deps),
		players:     services.NewPlayerService(deps, cat),
		matches:     services.NewMatchService(deps),
		knockout:    services.NewKnockoutService(deps),
		catalog:     services.NewCatalogService(cat, storage.NewMemoryUploader("https://cdn.example"), catalogKey, nil, logger),
	}
	standings := services.NewStandingsService(deps)
	transactions := services.NewTransactionService(deps, cat)

	rd, err := NewRenderer(logger)
	require.NoError(t, err)

	th := NewTournamentHandler(rd, app.tournaments)
	ph := NewPlayerHandler(rd, app.tournaments, app.players, app.catalog)
	mh := NewMatchHandler(rd, app.tournaments, app.matches)
	kh := NewKnockoutHandler(rd, app.knockout)
	sh := NewStandingsHandler(rd, app.tournaments, standings)
	txh := NewTransactionHandler(rd, transactions, app.catalog)
	api := NewAPIHandler(app.tournaments, standings, app.matches, app.catalog)

	r := chi.NewRouter()
	r.NotFound(rd.NotFound)
	r.Get("/home", th.Home)
	r.Post("/new-tournament", th.Create)
	r.Route("/tournament/{tournamentID}", func(r chi.Router) {
		r.Get("/dashboard", th.Dashboard)
		r.Get("/matches", mh.Matches)
		r.Get("/standings", sh.Standings)
		r.Get("/transactions", txh.List)
		r.Post("/new-player", ph.Create)
		r.Get("/add-pokemon", ph.AddPokemonPage)
		r.Post("/add-pokemon", ph.AddPokemon)
		r.Post("/new-match/select-players", mh.SelectPlayers)
		r.Get("/new-match/select-pokemon", mh.SelectPokemonPage)
		r.Post("/new-match/select-pokemon", mh.CreateMatch)
		r.Get("/new-match/{matchID}/specify-results", mh.SpecifyResultsPage)
		r.Post("/new-match/{matchID}/specify-results", mh.RecordResult)
		r.Get("/ko", kh.Bracket)
		r.Post("/ko", kh.CreateMatch)
	})
	r.Post("/admin/catalog", NewAdminHandler(app.catalog).UploadCatalog)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tournaments", api.ListTournaments)
		r.Get("/tournaments/{tournamentID}", api.GetTournament)
		r.Get("/tournaments/{tournamentID}/standings", api.Standings)
		r.Get("/catalog", api.Catalog)
	})
	app.router = r
	return app
}

// do serves the request; admin requests carry an admin session in the context.
func (a *testApp) do(t *testing.T, method, target string, form url.Values, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if admin {
		req = req.WithContext(middleware.WithSession(req.Context(), &middleware.Session{UserID: "admin-1", Name: "Oak", Admin: true}))
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) tournament(t *testing.T, format models.TournamentFormat, playerNum int) *models.Tournament {
	t.Helper()
	tour, err := a.tournaments.Create(a.ctx, "admin-1", services.TournamentInput{Name: "Indigo League", PlayerNum: playerNum, Format: format})
	require.NoError(t, err)
	return tour
}

func (a *testApp) player(t *testing.T, tournamentID, name, group string, slugs ...string) *models.Player {
	t.Helper()
	p, err := a.players.AddPlayer(a.ctx, tournamentID, services.PlayerInput{Name: name, TeamName: name + " team", Group: group})
	require.NoError(t, err)
	for _, slug := range slugs {
		p, err = a.players.AddPokemon(a.ctx, tournamentID, p.ID, slug)
		require.NoError(t, err)
	}
	return p
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}
