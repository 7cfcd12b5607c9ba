package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/draft-league/middleware"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	pages
	tournamentService services.TournamentService
}

func NewTournamentHandler(rd *Renderer, ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{pages: newPages(rd, rd.logger), tournamentService: ts}
}

type tournamentFormPage struct {
	Formats []models.TournamentFormat
	Action  string
	Editing bool
}

// Home обрабатывает GET / и /home
func (h *TournamentHandler) Home(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.tournamentService.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.data(r, "Tournaments")
	data.Data = summaries
	h.show(w, r, "home.html", data)
}

func (h *TournamentHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	data := h.data(r, "New tournament")
	data.Form.Set("player_num", "8")
	data.Form.Set("format", string(models.FormatLeague))
	data.Data = tournamentFormPage{Formats: models.Formats, Action: "/new-tournament"}
	h.show(w, r, "tournament_form.html", data)
}

// Create обрабатывает POST /new-tournament
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	data := h.data(r, "New tournament")
	data.Data = tournamentFormPage{Formats: models.Formats, Action: "/new-tournament"}

	input, fields := parseTournamentForm(r)
	if len(fields) > 0 {
		h.invalid(w, r, "tournament_form.html", data, fields)
		return
	}

	ownerID, _ := middleware.GetUserIDFromContext(r.Context())
	t, err := h.tournamentService.Create(r.Context(), ownerID, input)
	if err != nil {
		h.formOrFail(w, r, "tournament_form.html", data, err)
		return
	}
	seeOther(w, r, tournamentPath(t.ID, "dashboard"))
}

// EditPage обрабатывает GET /edit/{tournamentID}
func (h *TournamentHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	t, err := h.tournamentService.Get(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.data(r, "Edit "+t.Name)
	data.Tournament = t
	data.Form.Set("name", t.Name)
	data.Form.Set("player_num", strconv.Itoa(t.PlayerNum))
	data.Form.Set("format", string(t.Format))
	if !t.StartDate.IsZero() {
		data.Form.Set("start_date", t.StartDate.Format(time.DateOnly))
	}
	data.Data = tournamentFormPage{Formats: models.Formats, Action: "/edit/" + t.ID, Editing: true}
	h.show(w, r, "tournament_form.html", data)
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	data := h.data(r, "Edit tournament")
	data.Data = tournamentFormPage{Formats: models.Formats, Action: "/edit/" + id, Editing: true}

	input, fields := parseTournamentForm(r)
	if len(fields) > 0 {
		h.invalid(w, r, "tournament_form.html", data, fields)
		return
	}
	t, err := h.tournamentService.Update(r.Context(), id, input)
	if err != nil {
		h.formOrFail(w, r, "tournament_form.html", data, err)
		return
	}
	seeOther(w, r, tournamentPath(t.ID, "dashboard"))
}

// Dashboard обрабатывает GET /tournament/{tournamentID}/dashboard
func (h *TournamentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.tournamentService.Dashboard(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.data(r, view.Tournament.Name)
	data.Tournament = view.Tournament
	data.Data = view
	data.Live = true
	h.show(w, r, "dashboard.html", data)
}

func parseTournamentForm(r *http.Request) (services.TournamentInput, services.FieldErrors) {
	fields := services.FieldErrors{}
	if err := r.ParseForm(); err != nil {
		fields["form"] = "Could not read the form"
		return services.TournamentInput{}, fields
	}
	input := services.TournamentInput{
		Name:   r.PostForm.Get("name"),
		Format: models.TournamentFormat(r.PostForm.Get("format")),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("player_num"))); err == nil {
		input.PlayerNum = n
	} else {
		fields["player_num"] = "Number of players must be a number"
	}
	if raw := strings.TrimSpace(r.PostForm.Get("start_date")); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			fields["start_date"] = "Date must look like 2024-01-31"
		}
		input.StartDate = d
	}
	return input, fields
}
