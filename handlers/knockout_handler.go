package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/draft-league/brackets"
	"github.com/Dosada05/draft-league/middleware"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/services"
	"github.com/go-chi/chi/v5"
)

type KnockoutHandler struct {
	pages
	knockoutService services.KnockoutService
}

func NewKnockoutHandler(rd *Renderer, ks services.KnockoutService) *KnockoutHandler {
	return &KnockoutHandler{pages: newPages(rd, rd.logger), knockoutService: ks}
}

type bracketPage struct {
	*services.BracketView
	RoundOptions []brackets.Round
}

type winnerPage struct {
	Round brackets.Round
	Match models.KoMatch
	Sides []resultSide
}

func koParams(r *http.Request) (tournamentID string, round models.KoRound, matchID string) {
	return chi.URLParam(r, "tournamentID"), models.KoRound(chi.URLParam(r, "koRound")), chi.URLParam(r, "matchID")
}

func (h *KnockoutHandler) koMatch(r *http.Request) (*services.KoMatchView, error) {
	tournamentID, round, matchID := koParams(r)
	return h.knockoutService.GetKoMatch(r.Context(), tournamentID, round, matchID)
}

func koMatchPath(tournamentID string, m models.KoMatch, kind brackets.LinkKind) string {
	return brackets.Path(tournamentID, m, kind)
}

// Bracket обрабатывает GET /tournament/{tournamentID}/ko
func (h *KnockoutHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	h.showBracket(w, r, http.StatusOK, nil)
}

func (h *KnockoutHandler) showBracket(w http.ResponseWriter, r *http.Request, status int, fields services.FieldErrors) {
	view, err := h.knockoutService.Bracket(r.Context(), chi.URLParam(r, "tournamentID"), middleware.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.data(r, "Knockout stage")
	data.Tournament = view.Tournament
	data.Data = bracketPage{BracketView: view, RoundOptions: brackets.Rounds}
	data.Live = fields == nil
	if fields != nil {
		data.Errors = fields
		data.Form = r.PostForm
	}
	h.render.Render(w, r, status, "bracket.html", data)
}

// Seed обрабатывает POST /tournament/{tournamentID}/ko/seed
func (h *KnockoutHandler) Seed(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if _, err := h.knockoutService.SeedQuarterfinals(r.Context(), tournamentID); err != nil {
		if fields, ok := formErrors(err); ok {
			h.showBracket(w, r, http.StatusUnprocessableEntity, fields)
			return
		}
		h.fail(w, r, err)
		return
	}
	seeOther(w, r, tournamentPath(tournamentID, "ko"))
}

// CreateMatch обрабатывает POST /tournament/{tournamentID}/ko
func (h *KnockoutHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, services.FieldErrors{"form": "Could not read the form"})
		return
	}
	slot, err := strconv.Atoi(r.PostForm.Get("slot"))
	if err != nil {
		h.showBracket(w, r, http.StatusUnprocessableEntity, services.FieldErrors{"slot": "Please choose a slot"})
		return
	}

	m, err := h.knockoutService.CreateKoMatch(r.Context(), tournamentID, services.KoMatchInput{
		Round:     models.KoRound(r.PostForm.Get("round")),
		Slot:      slot,
		PlayerOne: r.PostForm.Get("player_one"),
		PlayerTwo: r.PostForm.Get("player_two"),
	})
	if err != nil {
		if fields, ok := formErrors(err); ok {
			h.showBracket(w, r, http.StatusUnprocessableEntity, fields)
			return
		}
		h.fail(w, r, err)
		return
	}
	seeOther(w, r, koMatchPath(tournamentID, *m, brackets.LinkSelectPokemon))
}

// SelectPokemonPage обрабатывает GET /tournament/{tournamentID}/ko/{koRound}/{matchID}/select-pokemon
func (h *KnockoutHandler) SelectPokemonPage(w http.ResponseWriter, r *http.Request) {
	view, err := h.koMatch(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if view.Match.HasResult() {
		seeOther(w, r, koMatchPath(view.Tournament.ID, view.Match, brackets.LinkWinner))
		return
	}
	h.show(w, r, "select_pokemon.html", h.selectData(r, view))
}

func (h *KnockoutHandler) selectData(r *http.Request, view *services.KoMatchView) *PageData {
	data := h.data(r, view.Round.Title+": select Pokemon")
	data.Tournament = view.Tournament
	for i, field := range []string{"team_one", "team_two"} {
		if i < len(view.Match.PlayerNames) {
			data.Form[field] = view.Match.PokemonTeams[view.Match.PlayerNames[i]]
		}
	}
	data.Data = selectPokemonPage{
		Players: view.Players,
		Fields:  []string{"team_one", "team_two"},
		Action:  koMatchPath(view.Tournament.ID, view.Match, brackets.LinkSelectPokemon),
	}
	return data
}

func (h *KnockoutHandler) SelectPokemon(w http.ResponseWriter, r *http.Request) {
	tournamentID, round, matchID := koParams(r)
	view, err := h.knockoutService.GetKoMatch(r.Context(), tournamentID, round, matchID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.selectData(r, view)
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "select_pokemon.html", data, services.FieldErrors{"form": "Could not read the form"})
		return
	}

	m, err := h.knockoutService.SelectKoPokemon(r.Context(), tournamentID, round, matchID, r.PostForm["team_one"], r.PostForm["team_two"])
	if err != nil {
		data.Form = r.PostForm
		h.formOrFail(w, r, "select_pokemon.html", data, err)
		return
	}
	seeOther(w, r, koMatchPath(tournamentID, *m, brackets.LinkSpecifyResults))
}

// SpecifyResultsPage обрабатывает GET /tournament/{tournamentID}/ko/{koRound}/{matchID}/specify-results
func (h *KnockoutHandler) SpecifyResultsPage(w http.ResponseWriter, r *http.Request) {
	view, err := h.koMatch(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	switch {
	case view.Match.HasResult():
		seeOther(w, r, koMatchPath(view.Tournament.ID, view.Match, brackets.LinkWinner))
		return
	case !view.Match.HasTeams():
		seeOther(w, r, koMatchPath(view.Tournament.ID, view.Match, brackets.LinkSelectPokemon))
		return
	}
	h.show(w, r, "specify_results.html", h.resultsData(r, view))
}

func (h *KnockoutHandler) resultsData(r *http.Request, view *services.KoMatchView) *PageData {
	data := h.data(r, view.Round.Title+": results")
	data.Tournament = view.Tournament
	data.Data = resultsPage{
		Sides:  resultSides(view.Players, view.Match.PokemonTeams),
		Action: koMatchPath(view.Tournament.ID, view.Match, brackets.LinkSpecifyResults),
		Round:  view.Round.Title,
	}
	return data
}

func (h *KnockoutHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	tournamentID, round, matchID := koParams(r)
	view, err := h.knockoutService.GetKoMatch(r.Context(), tournamentID, round, matchID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.resultsData(r, view)
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "specify_results.html", data, services.FieldErrors{"form": "Could not read the form"})
		return
	}

	lines, fields := parseResultLines(r.PostForm, view.Match.PokemonTeams)
	if len(fields) > 0 {
		h.invalid(w, r, "specify_results.html", data, fields)
		return
	}
	if _, err := h.knockoutService.RecordResult(r.Context(), tournamentID, round, matchID, lines); err != nil {
		h.formOrFail(w, r, "specify_results.html", data, err)
		return
	}
	seeOther(w, r, tournamentPath(tournamentID, "ko"))
}

// Winner обрабатывает GET /tournament/{tournamentID}/ko/{koRound}/{matchID}/winner
func (h *KnockoutHandler) Winner(w http.ResponseWriter, r *http.Request) {
	view, err := h.koMatch(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !view.Match.HasResult() {
		h.notFound(w, r)
		return
	}
	data := h.data(r, view.Round.Title+" winner")
	data.Tournament = view.Tournament
	data.Data = winnerPage{
		Round: view.Round,
		Match: view.Match,
		Sides: resultSides(view.Players, view.Match.PokemonTeams),
	}
	h.show(w, r, "winner.html", data)
}
