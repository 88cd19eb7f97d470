package services

import (
	"slices"
	"sync"
	"time"

	"transconnect/internal/models"

	"github.com/rs/zerolog/log"
)

// Discovery event types pushed to the page
const EventDiscoveryRefreshed = "discovery_refreshed"

// DiscoveryView sequences through a fixed list of profiles one at a time.
// Decisions never remove or reorder profiles; they only move the index.
type DiscoveryView struct {
	mu          sync.Mutex
	profiles    []models.Profile
	index       int
	refreshing  bool
	showFilters bool
	filters     models.FilterPreferences
	closed      bool

	refreshDelay time.Duration
	sched        *Scheduler
	emit         Emitter
}

// DiscoveryState is a snapshot used for rendering
type DiscoveryState struct {
	Current     *models.Profile
	Index       int
	Total       int
	Exhausted   bool
	Refreshing  bool
	ShowFilters bool
	Filters     models.FilterPreferences
}

// NewDiscoveryView creates a view over profiles, starting at the first one
func NewDiscoveryView(profiles []models.Profile, refreshDelay time.Duration, sched *Scheduler, emit Emitter) *DiscoveryView {
	return &DiscoveryView{
		profiles:     profiles,
		filters:      models.DefaultFilters(),
		refreshDelay: refreshDelay,
		sched:        sched,
		emit:         emit,
	}
}

// Like records a like and moves to the next profile
func (v *DiscoveryView) Like(id string) bool {
	if !v.advance(id) {
		return false
	}
	v.emit.Toast(successToast("You liked their profile!"))
	v.notifyIfExhausted()
	return true
}

// Dislike moves to the next profile
func (v *DiscoveryView) Dislike(id string) bool {
	if !v.advance(id) {
		return false
	}
	v.notifyIfExhausted()
	return true
}

// Message shows a notification without advancing
func (v *DiscoveryView) Message(id string) {
	v.emit.Toast(successToast("Message feature coming soon!"))
}

// Info shows a notification without advancing
func (v *DiscoveryView) Info(id string) {
	v.emit.Toast(infoToast("Profile details", "Additional profile information will be available in the full version."))
}

// advance moves the index forward when id names the current profile.
// Stale ids and an exhausted feed leave the index alone.
func (v *DiscoveryView) advance(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.index >= len(v.profiles) {
		return false
	}
	if v.profiles[v.index].ID != id {
		log.Debug().Str("profile_id", id).Int("index", v.index).Msg("Ignoring decision for stale profile")
		return false
	}
	v.index++
	return true
}

func (v *DiscoveryView) notifyIfExhausted() {
	v.mu.Lock()
	exhausted := v.index >= len(v.profiles)
	v.mu.Unlock()

	if exhausted {
		v.emit.Toast(infoToast("You've viewed all profiles", "Check back later for more matches!"))
	}
}

// Refresh resets the feed to the first profile after the refresh delay. It
// reports false when a refresh is already running.
func (v *DiscoveryView) Refresh() bool {
	v.mu.Lock()
	if v.closed || v.refreshing {
		v.mu.Unlock()
		return false
	}
	v.refreshing = true
	v.mu.Unlock()

	scheduled := v.sched.After(v.refreshDelay, func() {
		v.mu.Lock()
		if v.closed {
			v.mu.Unlock()
			return
		}
		v.index = 0
		v.refreshing = false
		v.mu.Unlock()

		v.emit.Toast(successToast("Profiles refreshed!"))
		v.emit.Event(EventDiscoveryRefreshed, nil)
	})
	if !scheduled {
		v.mu.Lock()
		v.refreshing = false
		v.mu.Unlock()
	}
	return scheduled
}

// ToggleFilters opens or closes the filter panel
func (v *DiscoveryView) ToggleFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showFilters = !v.showFilters
}

// ApplyFilters stores the preferences and closes the panel. The profile
// list is not filtered.
func (v *DiscoveryView) ApplyFilters(p models.FilterPreferences) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters = normalizeFilters(p)
	v.showFilters = false
}

// ResetFilters restores the default preferences
func (v *DiscoveryView) ResetFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters = models.DefaultFilters()
}

// State returns a snapshot of the view
func (v *DiscoveryView) State() DiscoveryState {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := DiscoveryState{
		Index:       v.index,
		Total:       len(v.profiles),
		Exhausted:   v.index >= len(v.profiles),
		Refreshing:  v.refreshing,
		ShowFilters: v.showFilters,
		Filters:     v.filters,
	}
	st.Filters.LookingFor = slices.Clone(v.filters.LookingFor)
	if !st.Exhausted {
		p := v.profiles[v.index]
		st.Current = &p
	}
	return st
}

// Close cancels a pending refresh
func (v *DiscoveryView) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.sched.Close()
}

func normalizeFilters(p models.FilterPreferences) models.FilterPreferences {
	p.Distance = min(max(p.Distance, 1), 100)
	p.AgeMin = min(max(p.AgeMin, 18), 99)
	p.AgeMax = min(max(p.AgeMax, 18), 99)
	if p.AgeMax < p.AgeMin {
		p.AgeMin, p.AgeMax = p.AgeMax, p.AgeMin
	}
	if p.ShowMe == "" {
		p.ShowMe = "Everyone"
	}
	return p
}
