package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/services"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// APIHandler - read-only JSON API /api/v1.
type APIHandler struct {
	tournamentService services.TournamentService
	standingsService  services.StandingsService
	matchService      services.MatchService
	catalogService    services.CatalogService
}

func NewAPIHandler(ts services.TournamentService, ss services.StandingsService, ms services.MatchService, cs services.CatalogService) *APIHandler {
	return &APIHandler{tournamentService: ts, standingsService: ss, matchService: ms, catalogService: cs}
}

// ListTournaments обрабатывает GET /api/v1/tournaments
func (h *APIHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.tournamentService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": summaries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTournament обрабатывает GET /api/v1/tournaments/{tournamentID}:
// документ турнира вместе с таблицей, загруженные параллельно.
func (h *APIHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")

	var (
		tournament *models.Tournament
		standings  *services.StandingsView
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		tournament, err = h.tournamentService.Get(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		standings, err = h.standingsService.Standings(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament, "standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Standings обрабатывает GET /api/v1/tournaments/{tournamentID}/standings
func (h *APIHandler) Standings(w http.ResponseWriter, r *http.Request) {
	view, err := h.standingsService.Standings(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Matches обрабатывает GET /api/v1/tournaments/{tournamentID}/matches
func (h *APIHandler) Matches(w http.ResponseWriter, r *http.Request) {
	days, err := h.matchService.ListByDate(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"days": days}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Catalog обрабатывает GET /api/v1/catalog?q=&limit=
func (h *APIHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
		limit = n
	}

	var entries []models.CatalogEntry
	if q := query.Get("q"); q != "" {
		entries = h.catalogService.Search(q, limit)
	} else {
		entries = h.catalogService.All()
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Health обрабатывает GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
