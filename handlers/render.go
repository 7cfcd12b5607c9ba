package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dosada05/draft-league/middleware"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/services"
	"github.com/a-h/templ"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "layout.html"

// PageData - общие данные страницы; Data зависит от страницы.
type PageData struct {
	Title      string
	Session    *middleware.Session
	IsAdmin    bool
	Tournament *models.Tournament
	Form       url.Values
	Errors     services.FieldErrors
	Data       interface{}
	// Live подключает страницу к websocket турнира и перезагружает её при событиях.
	Live bool
}

func (p *PageData) Value(field string) string {
	if p.Form == nil {
		return ""
	}
	return p.Form.Get(field)
}

func (p *PageData) Error(field string) string {
	return p.Errors[field]
}

// Checked reports whether value was among the submitted values of field.
func (p *PageData) Checked(field, value string) bool {
	if p.Form == nil {
		return false
	}
	for _, v := range p.Form[field] {
		if v == value {
			return true
		}
	}
	return false
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"add": func(a, b int) int { return a + b },
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"formatLabel": func(f models.TournamentFormat) string {
		return strings.ReplaceAll(string(f), "_", " + ")
	},
	"statField": statField,
}

// Renderer держит распарсенные страницы; каждая страница - layout плюс свой файл.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimPrefix(file, "templates/")
		if name == layoutTemplate {
			continue
		}
		tmpl, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(templateFS, "templates/"+layoutTemplate, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data *PageData) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.ErrorContext(r.Context(), "unknown template", slog.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templ.FromGoHTML(tmpl, data).Render(r.Context(), &buf); err != nil {
		rd.logger.ErrorContext(r.Context(), "failed to render template",
			slog.String("page", page),
			slog.String("request_id", chiMiddleware.GetReqID(r.Context())),
			slog.Any("error", err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rd.logger.WarnContext(r.Context(), "failed to write page", slog.String("page", page), slog.Any("error", err))
	}
}

// pages - общая часть HTML-обработчиков.
type pages struct {
	render *Renderer
	logger *slog.Logger
}

func newPages(rd *Renderer, logger *slog.Logger) pages {
	if logger == nil {
		logger = slog.Default()
	}
	return pages{render: rd, logger: logger}
}

func (p pages) data(r *http.Request, title string) *PageData {
	session, _ := middleware.SessionFromContext(r.Context())
	return &PageData{
		Title:   title,
		Session: session,
		IsAdmin: middleware.IsAdmin(r.Context()),
		Form:    url.Values{},
		Errors:  services.FieldErrors{},
	}
}

func (p pages) show(w http.ResponseWriter, r *http.Request, page string, data *PageData) {
	p.render.Render(w, r, http.StatusOK, page, data)
}

// invalid re-renders a form with its submitted values and inline errors.
func (p pages) invalid(w http.ResponseWriter, r *http.Request, page string, data *PageData, fields services.FieldErrors) {
	data.Errors = fields
	if data.Form == nil || len(data.Form) == 0 {
		data.Form = r.PostForm
	}
	p.render.Render(w, r, http.StatusUnprocessableEntity, page, data)
}

// fail renders the error page for errors the user cannot fix on the form.
func (p pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong. Please try again."
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
		message = "We couldn't find what you were looking for."
	case errors.Is(err, services.ErrForbiddenOperation):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrValidationFailed), isConflict(err):
		status = http.StatusBadRequest
		message = validationMessage(err)
	default:
		p.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", chiMiddleware.GetReqID(r.Context())),
			slog.Any("error", err),
		)
	}
	data := p.data(r, http.StatusText(status))
	data.Data = errorPage{Status: status, Message: message}
	p.render.Render(w, r, status, "error.html", data)
}

func (p pages) notFound(w http.ResponseWriter, r *http.Request) {
	p.fail(w, r, services.ErrNotFound)
}

// formOrFail shows inline errors when the user can fix them and the error page otherwise.
func (p pages) formOrFail(w http.ResponseWriter, r *http.Request, page string, data *PageData, err error) {
	if fields, ok := formErrors(err); ok {
		p.invalid(w, r, page, data, fields)
		return
	}
	p.fail(w, r, err)
}

type errorPage struct {
	Status  int
	Message string
}

func seeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func tournamentPath(tournamentID, page string) string {
	return "/tournament/" + tournamentID + "/" + page
}

// statField names the form input for one stat: <slug>_<kills|faints>_<player>.
func statField(slug, stat, player string) string {
	return slug + "_" + stat + "_" + player
}

// NotFound renders the error page for unmatched routes.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	newPages(rd, rd.logger).notFound(w, r)
}
