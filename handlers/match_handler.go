package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/scoring"
	"github.com/Dosada05/draft-league/services"
	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	pages
	tournamentService services.TournamentService
	matchService      services.MatchService
}

func NewMatchHandler(rd *Renderer, ts services.TournamentService, ms services.MatchService) *MatchHandler {
	return &MatchHandler{pages: newPages(rd, rd.logger), tournamentService: ts, matchService: ms}
}

type selectPokemonPage struct {
	Players  []models.Player
	Fields   []string
	Action   string
	ShowDate bool
}

// resultsPage описывает форму результатов: по стороне на игрока.
type resultsPage struct {
	Sides  []resultSide
	Action string
	Round  string
}

type resultSide struct {
	Player  models.Player
	Pokemon []models.Pokemon
}

func resultSides(players []models.Player, teams map[string][]string) []resultSide {
	sides := make([]resultSide, 0, len(players))
	for _, p := range players {
		side := resultSide{Player: p}
		for _, slug := range teams[p.Name] {
			if pk := p.PokemonBySlug(slug); pk != nil {
				side.Pokemon = append(side.Pokemon, *pk)
			}
		}
		sides = append(sides, side)
	}
	return sides
}

// SelectPlayersPage обрабатывает GET /tournament/{tournamentID}/new-match/select-players
func (h *MatchHandler) SelectPlayersPage(w http.ResponseWriter, r *http.Request) {
	t, err := h.tournamentService.Get(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.data(r, "New match")
	data.Tournament = t
	h.show(w, r, "select_players.html", data)
}

func (h *MatchHandler) SelectPlayers(w http.ResponseWriter, r *http.Request) {
	t, err := h.tournamentService.Get(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.data(r, "New match")
	data.Tournament = t
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "select_players.html", data, services.FieldErrors{"form": "Could not read the form"})
		return
	}

	one, two := r.PostForm.Get("player_one"), r.PostForm.Get("player_two")
	if _, err := h.matchService.ValidatePlayers(r.Context(), t.ID, one, two); err != nil {
		h.formOrFail(w, r, "select_players.html", data, err)
		return
	}
	q := url.Values{"player_one": {one}, "player_two": {two}}
	seeOther(w, r, tournamentPath(t.ID, "new-match/select-pokemon?"+q.Encode()))
}

// SelectPokemonPage обрабатывает GET /tournament/{tournamentID}/new-match/select-pokemon
func (h *MatchHandler) SelectPokemonPage(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	q := r.URL.Query()
	data, err := h.selectPokemonData(r, tournamentID, q.Get("player_one"), q.Get("player_two"))
	if err != nil {
		if _, ok := formErrors(err); ok {
			// неверные игроки - назад к первому шагу
			seeOther(w, r, tournamentPath(tournamentID, "new-match/select-players"))
			return
		}
		h.fail(w, r, err)
		return
	}
	data.Form = q
	h.show(w, r, "select_pokemon.html", data)
}

func (h *MatchHandler) selectPokemonData(r *http.Request, tournamentID, playerOne, playerTwo string) (*PageData, error) {
	t, err := h.tournamentService.Get(r.Context(), tournamentID)
	if err != nil {
		return nil, err
	}
	players, err := h.matchService.ValidatePlayers(r.Context(), t.ID, playerOne, playerTwo)
	if err != nil {
		return nil, err
	}
	data := h.data(r, "Select Pokemon")
	data.Tournament = t
	data.Data = selectPokemonPage{
		Players:  players,
		Fields:   []string{"team_one", "team_two"},
		Action:   tournamentPath(t.ID, "new-match/select-pokemon"),
		ShowDate: true,
	}
	return data, nil
}

// CreateMatch обрабатывает POST /tournament/{tournamentID}/new-match/select-pokemon
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, services.FieldErrors{"form": "Could not read the form"})
		return
	}
	one, two := r.PostForm.Get("player_one"), r.PostForm.Get("player_two")

	m, err := h.matchService.CreateMatch(r.Context(), tournamentID, services.MatchTeamsInput{
		PlayerOne: one,
		PlayerTwo: two,
		TeamOne:   r.PostForm["team_one"],
		TeamTwo:   r.PostForm["team_two"],
		PlayedOn:  r.PostForm.Get("played_on"),
	})
	if err != nil {
		fields, ok := formErrors(err)
		if !ok {
			h.fail(w, r, err)
			return
		}
		data, loadErr := h.selectPokemonData(r, tournamentID, one, two)
		if loadErr != nil {
			h.fail(w, r, loadErr)
			return
		}
		h.invalid(w, r, "select_pokemon.html", data, fields)
		return
	}
	seeOther(w, r, tournamentPath(tournamentID, "new-match/"+m.ID+"/specify-results"))
}

// SpecifyResultsPage обрабатывает GET /tournament/{tournamentID}/new-match/{matchID}/specify-results
func (h *MatchHandler) SpecifyResultsPage(w http.ResponseWriter, r *http.Request) {
	view, err := h.matchService.GetMatch(r.Context(), chi.URLParam(r, "tournamentID"), chi.URLParam(r, "matchID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if view.Match.HasResult() {
		seeOther(w, r, tournamentPath(view.Tournament.ID, "matches"))
		return
	}
	h.show(w, r, "specify_results.html", h.resultsData(r, view))
}

func (h *MatchHandler) resultsData(r *http.Request, view *services.MatchView) *PageData {
	data := h.data(r, "Specify results")
	data.Tournament = view.Tournament
	data.Data = resultsPage{
		Sides:  resultSides(view.Players, view.Match.PokemonTeams),
		Action: tournamentPath(view.Tournament.ID, "new-match/"+view.Match.ID+"/specify-results"),
	}
	return data
}

func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	view, err := h.matchService.GetMatch(r.Context(), chi.URLParam(r, "tournamentID"), chi.URLParam(r, "matchID"))
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
	if _, err := h.matchService.RecordResult(r.Context(), view.Tournament.ID, view.Match.ID, lines); err != nil {
		h.formOrFail(w, r, "specify_results.html", data, err)
		return
	}
	seeOther(w, r, tournamentPath(view.Tournament.ID, "dashboard"))
}

// Matches обрабатывает GET /tournament/{tournamentID}/matches
func (h *MatchHandler) Matches(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	t, err := h.tournamentService.Get(r.Context(), tournamentID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	days, err := h.matchService.ListByDate(r.Context(), tournamentID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.data(r, "Matches")
	data.Tournament = t
	data.Data = days
	data.Live = true
	h.show(w, r, "matches.html", data)
}

// parseResultLines reads <slug>_<kills|faints>_<player> fields for every
// pokemon in the match teams. Blank fields count as zero.
func parseResultLines(form url.Values, teams map[string][]string) (services.ResultLines, services.FieldErrors) {
	lines := make(services.ResultLines, len(teams))
	fields := services.FieldErrors{}
	for player, slugs := range teams {
		lines[player] = make(map[string]scoring.Line, len(slugs))
		for _, slug := range slugs {
			var line scoring.Line
			for _, stat := range []struct {
				name string
				dst  *int
			}{{"kills", &line.Kills}, {"faints", &line.Faints}} {
				key := statField(slug, stat.name, player)
				raw := strings.TrimSpace(form.Get(key))
				if raw == "" {
					continue
				}
				n, err := strconv.Atoi(raw)
				if err != nil {
					fields[key] = fmt.Sprintf("%s must be a whole number", stat.name)
					continue
				}
				*stat.dst = n
			}
			lines[player][slug] = line
		}
	}
	return lines, fields
}
