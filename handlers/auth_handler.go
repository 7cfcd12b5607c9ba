package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/draft-league/middleware"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/services"
)

type AuthHandler struct {
	pages
	authService services.AuthService
	sessions    *middleware.SessionManager
}

func NewAuthHandler(rd *Renderer, authService services.AuthService, sessions *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{pages: newPages(rd, rd.logger), authService: authService, sessions: sessions}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionFromContext(r.Context()); ok {
		seeOther(w, r, "/home")
		return
	}
	h.show(w, r, "login.html", h.data(r, "Log in"))
}

// Login обрабатывает POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	data := h.data(r, "Log in")
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "login.html", data, services.FieldErrors{"form": "Could not read the form"})
		return
	}
	// пароль не возвращаем в форму
	data.Form.Set("email", r.PostForm.Get("email"))

	input := services.LoginInput{Email: r.PostForm.Get("email"), Password: r.PostForm.Get("password")}
	if input.Email == "" || input.Password == "" {
		h.invalid(w, r, "login.html", data, services.FieldErrors{"form": "Email and password are required"})
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		h.formOrFail(w, r, "login.html", data, err)
		return
	}
	h.startSession(w, r, user, "/home")
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, "signup.html", h.data(r, "Sign up"))
}

// Signup обрабатывает POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	data := h.data(r, "Sign up")
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "signup.html", data, services.FieldErrors{"form": "Could not read the form"})
		return
	}
	data.Form.Set("display_name", r.PostForm.Get("display_name"))
	data.Form.Set("email", r.PostForm.Get("email"))

	user, err := h.authService.Signup(r.Context(), services.SignupInput{
		DisplayName: r.PostForm.Get("display_name"),
		Email:       r.PostForm.Get("email"),
		Password:    r.PostForm.Get("password"),
	})
	if err != nil {
		h.formOrFail(w, r, "signup.html", data, err)
		return
	}
	h.logger.InfoContext(r.Context(), "user signed up", "user_id", user.ID)
	h.startSession(w, r, user, "/")
}

// Logout обрабатывает POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	seeOther(w, r, "/")
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User, next string) {
	if err := h.sessions.Issue(w, user); err != nil {
		h.fail(w, r, fmt.Errorf("failed to issue session: %w", err))
		return
	}
	seeOther(w, r, next)
}
