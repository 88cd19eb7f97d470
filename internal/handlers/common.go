package handlers

import (
	"encoding/json"
	"net/http"

	"transconnect/internal/clock"
	"transconnect/internal/middleware"
	"transconnect/internal/services"
	"transconnect/internal/ui"
	"transconnect/internal/web"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// Pages renders templates with the navigation shell and queued toasts of
// the current session
type Pages struct {
	renderer *web.Renderer
	clock    clock.Clock
	auth     middleware.AuthStatus
}

// NewPages creates the shared page renderer
func NewPages(renderer *web.Renderer, c clock.Clock, auth middleware.AuthStatus) *Pages {
	return &Pages{
		renderer: renderer,
		clock:    c,
		auth:     auth,
	}
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	ctx := r.Context()

	page := web.Page{
		Title: title,
		Path:  r.URL.Path,
		Nav:   ui.Navbar(r.URL.Path, p.auth.SignedIn(ctx)),
		Now:   p.clock.Now(),
		Data:  data,
	}
	if s := middleware.GetSession(ctx); s != nil {
		page.Toasts = s.DrainToasts()
	}

	if err := p.renderer.Render(w, status, name, page); err != nil {
		log.Error().Err(err).Str("page", name).Msg("Failed to render page")
		respondError(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// NotFound renders the not found page
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusNotFound, "not_found", "Not found", nil)
}

func (p *Pages) notFound(w http.ResponseWriter, r *http.Request, message string) {
	p.render(w, r, http.StatusNotFound, "not_found", "Not found", message)
}

// redirect sends the browser to path after a form post
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// sessionFrom returns the request's session or answers 500 when the session
// middleware is missing
func sessionFrom(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	s := middleware.GetSession(r.Context())
	if s == nil {
		log.Error().Str("path", r.URL.Path).Msg("Request has no session")
		respondError(w, "Session unavailable", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}
