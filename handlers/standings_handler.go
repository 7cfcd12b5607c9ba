package handlers

import (
	"net/http"

	"github.com/Dosada05/draft-league/services"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

type StandingsHandler struct {
	pages
	tournamentService services.TournamentService
	standingsService  services.StandingsService
}

func NewStandingsHandler(rd *Renderer, ts services.TournamentService, ss services.StandingsService) *StandingsHandler {
	return &StandingsHandler{pages: newPages(rd, rd.logger), tournamentService: ts, standingsService: ss}
}

// Standings обрабатывает GET /tournament/{tournamentID}/standings
func (h *StandingsHandler) Standings(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	data := h.data(r, "Standings")

	var view *services.StandingsView
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		t, err := h.tournamentService.Get(ctx, tournamentID)
		data.Tournament = t
		return err
	})
	g.Go(func() error {
		var err error
		view, err = h.standingsService.Standings(ctx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(w, r, err)
		return
	}

	data.Data = view
	data.Live = true
	h.show(w, r, "standings.html", data)
}
