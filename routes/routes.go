package routes

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/Dosada05/draft-league/handlers"
	"github.com/Dosada05/draft-league/metrics"
	"github.com/Dosada05/draft-league/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openAPIDoc []byte

// Handlers собирает все HTTP обработчики приложения.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournament  *handlers.TournamentHandler
	Player      *handlers.PlayerHandler
	Match       *handlers.MatchHandler
	Knockout    *handlers.KnockoutHandler
	Transaction *handlers.TransactionHandler
	Standings   *handlers.StandingsHandler
	Admin       *handlers.AdminHandler
	API         *handlers.APIHandler
	WebSocket   *handlers.WebSocketHandler
}

// Options общие зависимости маршрутизатора.
type Options struct {
	Sessions       *middleware.SessionManager
	LoginLimiter   *middleware.RateLimiter
	Metrics        *metrics.Metrics
	Renderer       *handlers.Renderer
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}
	router.Use(opts.Sessions.LoadSession)
	if opts.Renderer != nil {
		router.NotFound(opts.Renderer.NotFound)
	}
	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	router.Get("/healthz", handlers.Health)
	router.Get("/api/openapi.json", serveOpenAPI)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/api/openapi.json")))

	// websocket живёт дольше любого таймаута запроса
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
		}

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/home", http.StatusSeeOther)
		})
		r.Get("/home", h.Tournament.Home)

		r.Get("/login", h.Auth.LoginPage)
		r.Get("/signup", h.Auth.SignupPage)
		r.Post("/logout", h.Auth.Logout)
		r.Group(func(r chi.Router) {
			if opts.LoginLimiter != nil {
				r.Use(opts.LoginLimiter.Limit)
			}
			r.Post("/login", h.Auth.Login)
			r.Post("/signup", h.Auth.Signup)
		})

		// Публичные страницы турнира
		r.Route("/tournament/{tournamentID}", func(r chi.Router) {
			r.Get("/dashboard", h.Tournament.Dashboard)
			r.Get("/matches", h.Match.Matches)
			r.Get("/standings", h.Standings.Standings)
			r.Get("/transactions", h.Transaction.List)
			r.Get("/previous-pokemon/{playerID}", h.Player.PreviousPokemon)
			r.Get("/ko", h.Knockout.Bracket)
			r.Get("/ko/{koRound}/{matchID}/winner", h.Knockout.Winner)

			// Изменения только для администраторов
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/new-player", h.Player.NewPage)
				r.Post("/new-player", h.Player.Create)
				r.Get("/players/{playerID}/edit", h.Player.EditPage)
				r.Post("/players/{playerID}/edit", h.Player.Update)
				r.Get("/add-pokemon", h.Player.AddPokemonPage)
				r.Post("/add-pokemon", h.Player.AddPokemon)

				r.Get("/new-match/select-players", h.Match.SelectPlayersPage)
				r.Post("/new-match/select-players", h.Match.SelectPlayers)
				r.Get("/new-match/select-pokemon", h.Match.SelectPokemonPage)
				r.Post("/new-match/select-pokemon", h.Match.CreateMatch)
				r.Get("/new-match/{matchID}/specify-results", h.Match.SpecifyResultsPage)
				r.Post("/new-match/{matchID}/specify-results", h.Match.RecordResult)

				r.Get("/transactions/new", h.Transaction.NewPage)
				r.Post("/transactions/new", h.Transaction.Apply)

				r.Post("/ko", h.Knockout.CreateMatch)
				r.Post("/ko/seed", h.Knockout.Seed)
				r.Get("/ko/{koRound}/{matchID}/select-pokemon", h.Knockout.SelectPokemonPage)
				r.Post("/ko/{koRound}/{matchID}/select-pokemon", h.Knockout.SelectPokemon)
				r.Get("/ko/{koRound}/{matchID}/specify-results", h.Knockout.SpecifyResultsPage)
				r.Post("/ko/{koRound}/{matchID}/specify-results", h.Knockout.RecordResult)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/new-tournament", h.Tournament.NewPage)
			r.Post("/new-tournament", h.Tournament.Create)
			r.Get("/edit/{tournamentID}", h.Tournament.EditPage)
			r.Post("/edit/{tournamentID}", h.Tournament.Update)
			r.Post("/admin/catalog", h.Admin.UploadCatalog)
		})

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: opts.CORSOrigins,
				AllowedMethods: []string{"GET", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))

			r.Get("/tournaments", h.API.ListTournaments)
			r.Get("/tournaments/{tournamentID}", h.API.GetTournament)
			r.Get("/tournaments/{tournamentID}/standings", h.API.Standings)
			r.Get("/tournaments/{tournamentID}/matches", h.API.Matches)
			r.Get("/catalog", h.API.Catalog)
		})
	})
}

func serveOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(openAPIDoc)
}
