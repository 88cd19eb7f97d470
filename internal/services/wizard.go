package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"transconnect/internal/clock"
	"transconnect/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	WizardSteps  = 6
	MaxInterests = 10
	MaxPhotos    = 6
	MinBioLength = 10
	MinAge       = 18

	birthdateLayout = "2006-01-02"
)

var (
	GenderOptions = []string{
		"Trans Woman", "Trans Man", "Non-Binary", "Gender Fluid", "Bigender",
		"Agender", "Questioning", "Cis Woman", "Cis Man", models.CustomOption,
	}
	PronounOptions = []string{
		"She/Her", "He/Him", "They/Them", "She/They", "He/They", "Ze/Zir", models.CustomOption,
	}
	InterestOptions = []string{
		"Art", "Music", "Film", "Travel", "Reading", "Writing", "Cooking", "Gaming",
		"Fitness", "Hiking", "Yoga", "Dancing", "Photography", "Technology", "Fashion",
		"Activism", "Meditation", "Sports", "Nature", "Animals", "Science", "History",
		"Languages", "Crafting", "Podcasts", "Comedy", "Poetry",
	}
	RelationshipOptions = []string{"Dating", "Friendship", "Networking", "Community"}
)

// WizardView is the six-step profile setup form. Steps advance one at a
// time and only when the current step's guard holds.
type WizardView struct {
	mu         sync.Mutex
	step       int
	draft      models.ProfileDraft
	submitting bool
	uploading  int
	closed     bool

	clock         clock.Clock
	submitDelay   time.Duration
	maxPhotoBytes int64
	emit          Emitter
}

// WizardState is a snapshot used for rendering
type WizardState struct {
	Step         int
	Draft        models.ProfileDraft
	Progress     int
	Submitting   bool
	Uploading    int
	MaxBirthdate string
}

// NewWizardView creates a wizard on step 1 with an empty draft
func NewWizardView(c clock.Clock, submitDelay time.Duration, maxPhotoBytes int64, emit Emitter) *WizardView {
	return &WizardView{
		step:          1,
		clock:         c,
		submitDelay:   submitDelay,
		maxPhotoBytes: maxPhotoBytes,
		emit:          emit,
	}
}

// UpdateBasics sets the step 1 fields. birthdate is YYYY-MM-DD or empty.
func (v *WizardView) UpdateBasics(name, birthdate, location string) error {
	var born time.Time
	if birthdate = strings.TrimSpace(birthdate); birthdate != "" {
		t, err := time.Parse(birthdateLayout, birthdate)
		if err != nil {
			return v.reject("Please enter a valid date of birth")
		}
		born = t
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft.Name = strings.TrimSpace(name)
	v.draft.Birthdate = born
	v.draft.Location = strings.TrimSpace(location)
	return nil
}

// SelectGender picks a gender option; custom is kept only for "Custom"
func (v *WizardView) SelectGender(option, custom string) error {
	if !slices.Contains(GenderOptions, option) {
		return fmt.Errorf("unknown gender option %q", option)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft.Gender = option
	if option == models.CustomOption {
		v.draft.CustomGender = strings.TrimSpace(custom)
	}
	return nil
}

// SelectPronouns picks a pronoun option; custom is kept only for "Custom"
func (v *WizardView) SelectPronouns(option, custom string) error {
	if !slices.Contains(PronounOptions, option) {
		return fmt.Errorf("unknown pronoun option %q", option)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft.Pronouns = option
	if option == models.CustomOption {
		v.draft.CustomPronouns = strings.TrimSpace(custom)
	}
	return nil
}

// ToggleLookingFor adds or removes a relationship intent
func (v *WizardView) ToggleLookingFor(tag string) error {
	if !slices.Contains(RelationshipOptions, tag) {
		return fmt.Errorf("unknown relationship option %q", tag)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft.LookingFor = toggle(v.draft.LookingFor, tag)
	return nil
}

// ToggleInterest adds or removes an interest. Removing always succeeds;
// adding an 11th is refused.
func (v *WizardView) ToggleInterest(tag string) error {
	if !slices.Contains(InterestOptions, tag) {
		return fmt.Errorf("unknown interest %q", tag)
	}

	v.mu.Lock()
	if !slices.Contains(v.draft.Interests, tag) && len(v.draft.Interests) >= MaxInterests {
		v.mu.Unlock()
		v.emit.Toast(errorToast(fmt.Sprintf("You can select up to %d interests", MaxInterests)))
		return ErrInterestLimit
	}
	v.draft.Interests = toggle(v.draft.Interests, tag)
	v.mu.Unlock()
	return nil
}

// SetBio replaces the bio text
func (v *WizardView) SetBio(bio string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft.Bio = bio
}

// RemovePhoto drops the photo at index i. It reports false if i is out of range.
func (v *WizardView) RemovePhoto(i int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if i < 0 || i >= len(v.draft.Photos) {
		return false
	}
	v.draft.Photos = slices.Delete(v.draft.Photos, i, i+1)
	return true
}

// NextStep advances when the current step's guard holds. On the last step
// it submits the draft and returns the finished profile; otherwise the
// returned profile is nil.
func (v *WizardView) NextStep(ctx context.Context) (*models.Profile, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	if v.step == WizardSteps {
		v.mu.Unlock()
		return v.Submit(ctx)
	}

	if err := checkStep(v.step, &v.draft, v.clock.Now()); err != nil {
		step := v.step
		v.mu.Unlock()
		log.Debug().Int("step", step).Str("reason", err.Error()).Msg("Wizard step refused")
		v.emit.Toast(errorToast(err.Error()))
		return nil, err
	}

	v.step++
	log.Debug().Int("step", v.step).Msg("Wizard advanced")
	v.mu.Unlock()
	return nil, nil
}

// PrevStep moves back one step. It reports false on step 1.
func (v *WizardView) PrevStep() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.step <= 1 || v.submitting {
		return false
	}
	v.step--
	return true
}

// Submit waits out the simulated submission and returns the profile built
// from the draft. It is only valid on the last step.
func (v *WizardView) Submit(ctx context.Context) (*models.Profile, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	if v.submitting {
		v.mu.Unlock()
		return nil, ErrBusy
	}
	if v.step != WizardSteps {
		step := v.step
		v.mu.Unlock()
		return nil, fmt.Errorf("cannot submit from step %d", step)
	}
	v.submitting = true
	draft := copyDraft(v.draft)
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.submitting = false
		v.mu.Unlock()
	}()

	if err := clock.Sleep(ctx, v.clock, v.submitDelay); err != nil {
		log.Error().Err(err).Msg("Profile submission interrupted")
		v.emit.Toast(errorToast("Something went wrong. Please try again."))
		return nil, fmt.Errorf("profile submission: %w", err)
	}

	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		log.Debug().Msg("Wizard closed during submission")
		return nil, ErrViewClosed
	}

	profile := buildProfile(draft, v.clock.Now())
	log.Info().
		Str("profile_id", profile.ID).
		Int("interests", len(profile.Interests)).
		Int("photos", len(draft.Photos)).
		Msg("Profile created")

	v.emit.Toast(successToast("Profile created successfully!"))
	return &profile, nil
}

// Progress returns the completion percentage for the current step
func (v *WizardView) Progress() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return progress(v.step)
}

// State returns a snapshot of the view
func (v *WizardView) State() WizardState {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.clock.Now()
	return WizardState{
		Step:         v.step,
		Draft:        copyDraft(v.draft),
		Progress:     progress(v.step),
		Submitting:   v.submitting,
		Uploading:    v.uploading,
		MaxBirthdate: now.AddDate(-MinAge, 0, 0).Format(birthdateLayout),
	}
}

// Close marks the wizard as discarded; in-flight uploads are dropped
func (v *WizardView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *WizardView) reject(msg string) error {
	v.emit.Toast(errorToast(msg))
	return validationError(msg)
}

// checkStep is the guard that must hold to leave step
func checkStep(step int, d *models.ProfileDraft, now time.Time) error {
	switch step {
	case 1:
		if d.Name == "" || d.Birthdate.IsZero() {
			return validationError("Please fill in all required fields")
		}
		if ageOn(d.Birthdate, now) < MinAge {
			return validationError(fmt.Sprintf("You must be %d or older", MinAge))
		}
	case 2:
		if d.Gender == "" {
			return validationError("Please select your gender identity")
		}
	case 3:
		if len(d.LookingFor) == 0 {
			return validationError("Please select at least one option")
		}
	case 4:
		if len([]rune(d.Bio)) < MinBioLength {
			return validationError(fmt.Sprintf("Please write a bio with at least %d characters", MinBioLength))
		}
	case 5:
		if len(d.Photos) == 0 {
			return validationError("Please upload at least one photo")
		}
	}
	return nil
}

// ageOn returns completed years between born and now
func ageOn(born, now time.Time) int {
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return years
}

func progress(step int) int {
	return int(math.Round(float64(step) / WizardSteps * 100))
}

func toggle(list []string, tag string) []string {
	if i := slices.Index(list, tag); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1)
	}
	return append(slices.Clone(list), tag)
}

func copyDraft(d models.ProfileDraft) models.ProfileDraft {
	d.LookingFor = slices.Clone(d.LookingFor)
	d.Interests = slices.Clone(d.Interests)
	d.Photos = slices.Clone(d.Photos)
	return d
}

func buildProfile(d models.ProfileDraft, now time.Time) models.Profile {
	p := models.Profile{
		ID:        uuid.New().String(),
		Name:      d.Name,
		Age:       ageOn(d.Birthdate, now),
		Pronouns:  d.DisplayPronouns(),
		Gender:    d.DisplayGender(),
		Location:  d.Location,
		Bio:       d.Bio,
		Interests: d.Interests,
	}
	if len(d.Photos) > 0 {
		p.ImageURL = d.Photos[0]
	}
	return p
}
