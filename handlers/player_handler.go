package handlers

import (
	"net/http"

	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/scoring"
	"github.com/Dosada05/draft-league/services"
	"github.com/go-chi/chi/v5"
)

type PlayerHandler struct {
	pages
	tournamentService services.TournamentService
	playerService     services.PlayerService
	catalogService    services.CatalogService
}

func NewPlayerHandler(rd *Renderer, ts services.TournamentService, ps services.PlayerService, cs services.CatalogService) *PlayerHandler {
	return &PlayerHandler{pages: newPages(rd, rd.logger), tournamentService: ts, playerService: ps, catalogService: cs}
}

// catalogOption - запись каталога на странице выбора с признаком доступности.
type catalogOption struct {
	models.CatalogEntry
	Affordable bool
	Owned      bool
}

type addPokemonPage struct {
	Player    *models.Player
	Remaining int
	Slots     int
	CanAdd    bool
	Query     string
	Options   []catalogOption
}

type previousPokemonPage struct {
	Player   *models.Player
	Previous []models.Pokemon
}

func (h *PlayerHandler) tournament(w http.ResponseWriter, r *http.Request) (*models.Tournament, bool) {
	t, err := h.tournamentService.Get(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return t, true
}

// NewPage обрабатывает GET /tournament/{tournamentID}/new-player
func (h *PlayerHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tournament(w, r)
	if !ok {
		return
	}
	data := h.data(r, "New player")
	data.Tournament = t
	h.show(w, r, "player_form.html", data)
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tournament(w, r)
	if !ok {
		return
	}
	data := h.data(r, "New player")
	data.Tournament = t
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "player_form.html", data, services.FieldErrors{"form": "Could not read the form"})
		return
	}

	_, err := h.playerService.AddPlayer(r.Context(), t.ID, services.PlayerInput{
		Name:     r.PostForm.Get("name"),
		TeamName: r.PostForm.Get("team_name"),
		Group:    r.PostForm.Get("group"),
	})
	if err != nil {
		h.formOrFail(w, r, "player_form.html", data, err)
		return
	}
	seeOther(w, r, tournamentPath(t.ID, "dashboard"))
}

// EditPage обрабатывает GET /tournament/{tournamentID}/players/{playerID}/edit
func (h *PlayerHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tournament(w, r)
	if !ok {
		return
	}
	p := t.PlayerByID(chi.URLParam(r, "playerID"))
	if p == nil {
		h.notFound(w, r)
		return
	}
	data := h.data(r, "Edit "+p.Name)
	data.Tournament = t
	data.Data = p
	data.Form.Set("team_name", p.TeamName)
	data.Form.Set("group", p.Group)
	if p.IsHidden {
		data.Form.Set("is_hidden", "on")
	}
	h.show(w, r, "player_edit.html", data)
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tournament(w, r)
	if !ok {
		return
	}
	p := t.PlayerByID(chi.URLParam(r, "playerID"))
	if p == nil {
		h.notFound(w, r)
		return
	}
	data := h.data(r, "Edit "+p.Name)
	data.Tournament = t
	data.Data = p
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "player_edit.html", data, services.FieldErrors{"form": "Could not read the form"})
		return
	}

	_, err := h.playerService.UpdatePlayer(r.Context(), t.ID, p.ID, services.PlayerUpdate{
		TeamName: r.PostForm.Get("team_name"),
		Group:    r.PostForm.Get("group"),
		IsHidden: r.PostForm.Get("is_hidden") != "",
	})
	if err != nil {
		h.formOrFail(w, r, "player_edit.html", data, err)
		return
	}
	seeOther(w, r, tournamentPath(t.ID, "dashboard"))
}

// AddPokemonPage обрабатывает GET /tournament/{tournamentID}/add-pokemon?player=&q=
func (h *PlayerHandler) AddPokemonPage(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tournament(w, r)
	if !ok {
		return
	}
	p := t.PlayerByID(r.URL.Query().Get("player"))
	if p == nil {
		h.notFound(w, r)
		return
	}
	data := h.data(r, "Draft for "+p.Name)
	data.Tournament = t
	data.Data = h.addPokemonView(p, r.URL.Query().Get("q"))
	h.show(w, r, "add_pokemon.html", data)
}

// AddPokemon обрабатывает POST /tournament/{tournamentID}/add-pokemon
func (h *PlayerHandler) AddPokemon(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tournament(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, services.FieldErrors{"form": "Could not read the form"})
		return
	}
	p := t.PlayerByID(r.PostForm.Get("player_id"))
	if p == nil {
		h.notFound(w, r)
		return
	}

	_, err := h.playerService.AddPokemon(r.Context(), t.ID, p.ID, r.PostForm.Get("pokemon"))
	if err != nil {
		data := h.data(r, "Draft for "+p.Name)
		data.Tournament = t
		data.Data = h.addPokemonView(p, r.PostForm.Get("q"))
		h.formOrFail(w, r, "add_pokemon.html", data, err)
		return
	}
	seeOther(w, r, tournamentPath(t.ID, "dashboard"))
}

func (h *PlayerHandler) addPokemonView(p *models.Player, query string) addPokemonPage {
	remaining := scoring.RemainingPoints(*p)
	entries := h.catalogService.All()
	if query != "" {
		entries = h.catalogService.Search(query, 0)
	}
	options := make([]catalogOption, 0, len(entries))
	for _, e := range entries {
		options = append(options, catalogOption{
			CatalogEntry: e,
			Affordable:   e.Pts <= remaining,
			Owned:        p.PokemonBySlug(e.Slug) != nil,
		})
	}
	return addPokemonPage{
		Player:    p,
		Remaining: remaining,
		Slots:     scoring.MaxRosterSize - len(p.Pokemon),
		CanAdd:    scoring.CanAddMore(*p),
		Query:     query,
		Options:   options,
	}
}

// PreviousPokemon обрабатывает GET /tournament/{tournamentID}/previous-pokemon/{playerID}
func (h *PlayerHandler) PreviousPokemon(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	p, previous, err := h.playerService.PreviousPokemon(r.Context(), tournamentID, chi.URLParam(r, "playerID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, ok := h.tournament(w, r)
	if !ok {
		return
	}
	data := h.data(r, p.Name+" - previous Pokemon")
	data.Tournament = t
	data.Data = previousPokemonPage{Player: p, Previous: previous}
	h.show(w, r, "previous_pokemon.html", data)
}
