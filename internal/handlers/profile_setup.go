package handlers

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"transconnect/internal/services"

	"github.com/rs/zerolog/log"
)

const multipartMemory = 8 << 20

// WizardPage is the data of the profile setup page
type WizardPage struct {
	State               services.WizardState
	Steps               int
	MaxInterests        int
	MaxPhotos           int
	GenderOptions       []string
	PronounOptions      []string
	InterestOptions     []string
	RelationshipOptions []string
}

// ProfileSetupHandler handles the profile setup wizard
type ProfileSetupHandler struct {
	pages           *Pages
	maxRequestBytes int64
}

// NewProfileSetupHandler creates a new profile setup handler
func NewProfileSetupHandler(pages *Pages, maxRequestBytes int64) *ProfileSetupHandler {
	return &ProfileSetupHandler{
		pages:           pages,
		maxRequestBytes: maxRequestBytes,
	}
}

// Show handles GET /profile-setup
func (h *ProfileSetupHandler) Show(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	h.pages.render(w, r, http.StatusOK, "profile_setup", "Profile setup", WizardPage{
		State:               s.Wizard().State(),
		Steps:               services.WizardSteps,
		MaxInterests:        services.MaxInterests,
		MaxPhotos:           services.MaxPhotos,
		GenderOptions:       services.GenderOptions,
		PronounOptions:      services.PronounOptions,
		InterestOptions:     services.InterestOptions,
		RelationshipOptions: services.RelationshipOptions,
	})
}

// Update handles POST /profile-setup. The form carries the fields of the
// step it was rendered for plus the action: next, prev or remove-photo:<i>.
func (h *ProfileSetupHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, "Invalid form", http.StatusBadRequest)
		return
	}

	wizard := s.Wizard()
	step := wizard.State().Step

	// a form rendered for another step is stale; show the current one
	if formStep, err := strconv.Atoi(r.PostForm.Get("step")); err != nil || formStep != step {
		redirect(w, r, services.PathProfileSetup)
		return
	}

	if err := applyStep(wizard, step, r); err != nil {
		if !services.IsValidation(err) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		redirect(w, r, services.PathProfileSetup)
		return
	}

	action := r.PostForm.Get("action")
	switch {
	case action == "next":
		profile, err := wizard.NextStep(ctx)
		if err != nil {
			switch {
			case services.IsValidation(err):
			case errors.Is(err, services.ErrViewClosed):
				log.Debug().Str("session_id", s.ID).Msg("Wizard closed before the step finished")
			default:
				log.Error().Err(err).Str("session_id", s.ID).Int("step", step).Msg("Wizard step failed")
			}
			break
		}
		if profile != nil {
			log.Info().Str("session_id", s.ID).Str("profile_id", profile.ID).Msg("Profile setup completed")
			redirect(w, r, services.PathDiscovery)
			return
		}
	case action == "prev":
		wizard.PrevStep()
	case strings.HasPrefix(action, "remove-photo:"):
		i, err := strconv.Atoi(strings.TrimPrefix(action, "remove-photo:"))
		if err != nil {
			respondError(w, "Invalid photo index", http.StatusBadRequest)
			return
		}
		wizard.RemovePhoto(i)
	default:
		respondError(w, "Unknown action", http.StatusBadRequest)
		return
	}

	redirect(w, r, services.PathProfileSetup)
}

// UploadPhotos handles POST /profile-setup/photos
func (h *ProfileSetupHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "Upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["photos"]
	uploads := make([]services.PhotoUpload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, services.PhotoUpload{
			Filename: fh.Filename,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	res, err := s.Wizard().AddPhotos(ctx, uploads)
	switch {
	case err == nil:
		log.Debug().
			Str("session_id", s.ID).
			Int("added", res.Added).
			Int("rejected", len(res.Rejected)).
			Int("dropped", res.Dropped).
			Msg("Photos uploaded")
	case errors.Is(err, services.ErrNoPhotos), errors.Is(err, services.ErrPhotoLimit):
	default:
		log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to add photos")
	}

	redirect(w, r, services.PathProfileSetup)
}

// applyStep copies the fields of step from the form into the draft
func applyStep(wizard *services.WizardView, step int, r *http.Request) error {
	form := r.PostForm

	switch step {
	case 1:
		return wizard.UpdateBasics(form.Get("name"), form.Get("birthdate"), form.Get("location"))
	case 2:
		if g := form.Get("gender"); g != "" {
			if err := wizard.SelectGender(g, form.Get("custom_gender")); err != nil {
				return err
			}
		}
		if p := form.Get("pronouns"); p != "" {
			if err := wizard.SelectPronouns(p, form.Get("custom_pronouns")); err != nil {
				return err
			}
		}
	case 3:
		return syncSet(wizard.State().Draft.LookingFor, form["looking_for"], wizard.ToggleLookingFor)
	case 4:
		wizard.SetBio(form.Get("bio"))
		return syncSet(wizard.State().Draft.Interests, form["interests"], wizard.ToggleInterest)
	}
	return nil
}

// syncSet toggles tags until current matches wanted. Removals go first so
// a swap at the interest cap succeeds; additions stop at the cap.
func syncSet(current, wanted []string, toggle func(string) error) error {
	for _, tag := range current {
		if !slices.Contains(wanted, tag) {
			if err := toggle(tag); err != nil {
				return err
			}
		}
	}
	added := make(map[string]bool, len(wanted))
	for _, tag := range wanted {
		if slices.Contains(current, tag) || added[tag] {
			continue
		}
		added[tag] = true
		if err := toggle(tag); err != nil {
			if errors.Is(err, services.ErrInterestLimit) {
				return nil
			}
			return err
		}
	}
	return nil
}
