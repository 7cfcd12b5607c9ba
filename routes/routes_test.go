package routes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/draft-league/brackets"
	"github.com/Dosada05/draft-league/catalog"
	"github.com/Dosada05/draft-league/handlers"
	"github.com/Dosada05/draft-league/metrics"
	"github.com/Dosada05/draft-league/middleware"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/repositories"
	"github.com/Dosada05/draft-league/services"
	"github.com/Dosada05/draft-league/storage"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router   chi.Router
	sessions *middleware.SessionManager
	admin    *models.User
	member   *models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := repositories.NewMemoryUserRepository()
	authService := services.NewAuthService(users)
	admin, err := authService.Signup(ctx, services.SignupInput{DisplayName: "Oak", Email: "oak@pallet.town", Password: "professor-oak"})
	require.NoError(t, err)
	member, err := authService.Signup(ctx, services.SignupInput{DisplayName: "Ash", Email: "ash@pallet.town", Password: "pikachu-pal"})
	require.NoError(t, err)

	cat, err := catalog.NewBundled()
	require.NoError(t, err)
	m := metrics.New()
	hub := brackets.NewHub(logger)
	deps := services.Deps{
		Repo:     repositories.NewMemoryTournamentRepository(),
		Notifier: hub,
		Metrics:  m,
		Logger:   logger,
	}
	tournaments := services.NewTournamentService(deps)
	matches := services.NewMatchService(deps)
	standings := services.NewStandingsService(deps)
	catalogService := services.NewCatalogService(cat, storage.NewMemoryUploader(""), "catalog.json", m, logger)

	rd, err := handlers.NewRenderer(logger)
	require.NoError(t, err)
	sessions := middleware.NewSessionManager("test-secret", time.Hour, false, []string{admin.ID})

	h := Handlers{
		Auth:        handlers.NewAuthHandler(rd, authService, sessions),
		Tournament:  handlers.NewTournamentHandler(rd, tournaments),
		Player:      handlers.NewPlayerHandler(rd, tournaments, services.NewPlayerService(deps, cat), catalogService),
		Match:       handlers.NewMatchHandler(rd, tournaments, matches),
		Knockout:    handlers.NewKnockoutHandler(rd, services.NewKnockoutService(deps)),
		Transaction: handlers.NewTransactionHandler(rd, services.NewTransactionService(deps, cat), catalogService),
		Standings:   handlers.NewStandingsHandler(rd, tournaments, standings),
		Admin:       handlers.NewAdminHandler(catalogService),
		API:         handlers.NewAPIHandler(tournaments, standings, matches, catalogService),
		WebSocket:   handlers.NewWebSocketHandler(hub, tournaments, []string{"*"}, logger),
	}
	router := chi.NewRouter()
	SetupRoutes(router, h, Options{
		Sessions:       sessions,
		LoginLimiter:   middleware.NewRateLimiter(0.2, 3),
		Metrics:        m,
		Renderer:       rd,
		CORSOrigins:    []string{"https://league.example"},
		RequestTimeout: 5 * time.Second,
	})
	return &testServer{router: router, sessions: sessions, admin: admin, member: member}
}

func (s *testServer) request(t *testing.T, method, target string, form url.Values, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "203.0.113.7:51000"
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if user != nil {
		token, err := s.sessions.Token(user, time.Now())
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_AdminGuard(t *testing.T) {
	srv := newTestServer(t)
	form := url.Values{"name": {"Kanto Cup"}, "player_num": {"8"}, "format": {"league"}}

	tests := []struct {
		name     string
		method   string
		target   string
		form     url.Values
		user     *models.User
		status   int
		location string
	}{
		{"anonymous page", http.MethodGet, "/new-tournament", nil, nil, http.StatusSeeOther, "/login"},
		{"anonymous post", http.MethodPost, "/new-tournament", form, nil, http.StatusSeeOther, "/login"},
		{"member page", http.MethodGet, "/new-tournament", nil, srv.member, http.StatusForbidden, ""},
		{"member post", http.MethodPost, "/new-tournament", form, srv.member, http.StatusForbidden, ""},
		{"member catalog upload", http.MethodPost, "/admin/catalog", nil, srv.member, http.StatusForbidden, ""},
		{"member tournament write", http.MethodPost, "/tournament/any/new-player", url.Values{"name": {"brock"}}, srv.member, http.StatusForbidden, ""},
		{"admin page", http.MethodGet, "/new-tournament", nil, srv.admin, http.StatusOK, ""},
		{"public page", http.MethodGet, "/home", nil, nil, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.request(t, tt.method, tt.target, tt.form, tt.user)
			assert.Equal(t, tt.status, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}

	rec := srv.request(t, http.MethodPost, "/new-tournament", form, srv.admin)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "/dashboard"))
}

func TestRoutes_SignupLoginLogout(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.request(t, http.MethodPost, "/signup", url.Values{
		"display_name": {"Misty"}, "email": {"misty@cerulean.gym"}, "password": {"starmie-water"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Misty", doc.Find("header .user").Text())

	rec = srv.request(t, http.MethodPost, "/login", url.Values{"email": {"misty@cerulean.gym"}, "password": {"wrong-password"}}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, sessionCookie(rec))

	rec = srv.request(t, http.MethodPost, "/login", url.Values{"email": {"MISTY@cerulean.gym"}, "password": {"starmie-water"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get("Location"))
	require.NotNil(t, sessionCookie(rec))

	rec = srv.request(t, http.MethodPost, "/logout", nil, srv.member)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestRoutes_LoginRateLimit(t *testing.T) {
	srv := newTestServer(t)
	form := url.Values{"email": {"oak@pallet.town"}, "password": {"nope-nope"}}

	for i := 0; i < 3; i++ {
		rec := srv.request(t, http.MethodPost, "/login", form, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	}
	rec := srv.request(t, http.MethodPost, "/login", form, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))

	// страница входа не ограничивается
	rec = srv.request(t, http.MethodGet, "/login", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_Infrastructure(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.request(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = srv.request(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get("Location"))

	rec = srv.request(t, http.MethodGet, "/api/openapi.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, doc["paths"], "/api/v1/tournaments/{tournamentID}/standings")

	rec = srv.request(t, http.MethodGet, "/no/such/page", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = srv.request(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `draftleague_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, body, "draftleague_catalog_entries")
}

func TestRoutes_APICORS(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tournaments", nil)
	req.Header.Set("Origin", "https://league.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, "https://league.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tournaments", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}
