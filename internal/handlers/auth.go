package handlers

import (
	"net/http"
	"strings"

	"transconnect/internal/middleware"
	"transconnect/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthPage is the data of the auth page
type AuthPage struct {
	SignUp  bool
	Loading bool
}

// AuthHandler handles the sign-in and sign-up forms
type AuthHandler struct {
	pages    *Pages
	sessions *middleware.Sessions
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(pages *Pages, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{
		pages:    pages,
		sessions: sessions,
	}
}

// Show handles GET /auth
func (h *AuthHandler) Show(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	signUp := r.URL.Query().Get("signup") == "true"
	view := s.Auth(signUp)
	view.SetMode(signUp)

	title := "Sign In"
	if signUp {
		title = "Join Now"
	}
	h.pages.render(w, r, http.StatusOK, "auth", title, AuthPage{
		SignUp:  view.SignUp(),
		Loading: view.Loading(),
	})
}

// Toggle handles POST /auth/toggle
func (h *AuthHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, "Invalid form", http.StatusBadRequest)
		return
	}

	signUp := r.PostForm.Get("signup") == "true"
	view := s.Auth(signUp)
	view.SetMode(signUp)
	redirect(w, r, view.Toggle())
}

// Submit handles POST /auth
func (h *AuthHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, "Invalid form", http.StatusBadRequest)
		return
	}

	// a sign-up form carries the name field
	signUp := r.PostForm.Has("name")
	view := s.Auth(signUp)
	view.SetMode(signUp)

	form := services.AuthForm{
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}

	res, err := view.Submit(ctx, form)
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("Auth submission failed")
		redirect(w, r, authPath(signUp))
		return
	}

	s.SetSignedIn(true)
	if err := h.sessions.WriteCookie(w, s); err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to reissue session cookie")
		respondError(w, "Failed to update session", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("session_id", s.ID).
		Bool("sign_up", res.SignedUp).
		Msg("Session signed in")

	redirect(w, r, res.Redirect)
}

// SignOut handles POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	s.SetSignedIn(false)
	if err := h.sessions.WriteCookie(w, s); err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to reissue session cookie")
		respondError(w, "Failed to update session", http.StatusInternalServerError)
		return
	}

	log.Info().Str("session_id", s.ID).Msg("Session signed out")
	redirect(w, r, "/")
}

func authPath(signUp bool) string {
	if signUp {
		return services.PathSignUp
	}
	return services.PathSignIn
}
