package handlers

import (
	"net/http"
	"strconv"

	"transconnect/internal/models"
	"transconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ShowMeOptions are the choices of the filter panel's "show me" field
var ShowMeOptions = []string{"Everyone", "Trans Women", "Trans Men", "Non-Binary People"}

// DashboardPage is the data of the discovery page
type DashboardPage struct {
	State             services.DiscoveryState
	ShowMeOptions     []string
	LookingForOptions []string
}

// DiscoveryHandler handles the discovery feed
type DiscoveryHandler struct {
	pages *Pages
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(pages *Pages) *DiscoveryHandler {
	return &DiscoveryHandler{pages: pages}
}

func (h *DiscoveryHandler) view(w http.ResponseWriter, r *http.Request) (*services.DiscoveryView, bool) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return nil, false
	}

	v, err := s.Discovery(r.Context())
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to open discovery")
		respondError(w, "Failed to load profiles", http.StatusInternalServerError)
		return nil, false
	}
	return v, true
}

// Show handles GET /dashboard
func (h *DiscoveryHandler) Show(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	h.pages.render(w, r, http.StatusOK, "dashboard", "Discover", DashboardPage{
		State:             v.State(),
		ShowMeOptions:     ShowMeOptions,
		LookingForOptions: services.RelationshipOptions,
	})
}

// Decide handles POST /dashboard/{action}/{profileID}
func (h *DiscoveryHandler) Decide(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	profileID := chi.URLParam(r, "profileID")

	v, ok := h.view(w, r)
	if !ok {
		return
	}

	switch action {
	case "like":
		v.Like(profileID)
	case "dislike":
		v.Dislike(profileID)
	case "message":
		v.Message(profileID)
	case "info":
		v.Info(profileID)
	default:
		h.pages.NotFound(w, r)
		return
	}

	redirect(w, r, services.PathDiscovery)
}

// Refresh handles POST /dashboard/refresh
func (h *DiscoveryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	v.Refresh()
	redirect(w, r, services.PathDiscovery)
}

// Filters handles POST /dashboard/filters
func (h *DiscoveryHandler) Filters(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, "Invalid form", http.StatusBadRequest)
		return
	}

	switch r.PostForm.Get("action") {
	case "toggle":
		v.ToggleFilters()
	case "reset":
		v.ResetFilters()
	case "apply":
		prefs, err := parseFilters(r)
		if err != nil {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		v.ApplyFilters(prefs)
	default:
		respondError(w, "Unknown filter action", http.StatusBadRequest)
		return
	}

	redirect(w, r, services.PathDiscovery)
}

func parseFilters(r *http.Request) (models.FilterPreferences, error) {
	var p models.FilterPreferences
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"distance", &p.Distance},
		{"age_min", &p.AgeMin},
		{"age_max", &p.AgeMax},
	} {
		n, err := strconv.Atoi(r.PostForm.Get(f.name))
		if err != nil {
			return p, &services.ValidationError{Message: f.name + " must be a number"}
		}
		*f.dst = n
	}
	p.LookingFor = r.PostForm["looking_for"]
	p.ShowMe = r.PostForm.Get("show_me")
	return p, nil
}
