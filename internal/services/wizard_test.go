package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"transconnect/internal/clock"
	"transconnect/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func fileUpload(name string, data []byte) PhotoUpload {
	return PhotoUpload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func pngUploads(n int) []PhotoUpload {
	out := make([]PhotoUpload, n)
	for i := range out {
		out[i] = fileUpload(fmt.Sprintf("photo-%d.png", i), pngBytes)
	}
	return out
}

func newTestWizard(t *testing.T) (*WizardView, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	v := NewWizardView(clock.NewManual(epoch), 0, 1<<20, rec)
	t.Cleanup(v.Close)
	return v, rec
}

// advanceTo fills in each step with valid data until the wizard is on step
func advanceTo(t *testing.T, v *WizardView, step int) {
	t.Helper()
	ctx := context.Background()
	for v.State().Step < step {
		switch v.State().Step {
		case 1:
			require.NoError(t, v.UpdateBasics("Sam", "1995-06-15", "Portland, OR"))
		case 2:
			require.NoError(t, v.SelectGender("Non-Binary", ""))
			require.NoError(t, v.SelectPronouns("They/Them", ""))
		case 3:
			require.NoError(t, v.ToggleLookingFor("Dating"))
		case 4:
			v.SetBio("Coffee, trails and terrible puns.")
			require.NoError(t, v.ToggleInterest("Hiking"))
		case 5:
			_, err := v.AddPhotos(ctx, pngUploads(1))
			require.NoError(t, err)
		}
		_, err := v.NextStep(ctx)
		require.NoError(t, err)
	}
}

func TestWizard_StartsOnStepOne(t *testing.T) {
	v, _ := newTestWizard(t)

	st := v.State()
	assert.Equal(t, 1, st.Step)
	assert.Equal(t, 17, st.Progress)
	assert.Equal(t, "2006-03-01", st.MaxBirthdate)
	assert.False(t, v.PrevStep())
}

func TestWizard_GuardsRefuseAndKeepDraft(t *testing.T) {
	tests := []struct {
		step  int
		setup func(v *WizardView)
		msg   string
	}{
		{step: 1, setup: func(v *WizardView) { _ = v.UpdateBasics("", "1990-01-01", "") }, msg: "Please fill in all required fields"},
		{step: 1, setup: func(v *WizardView) { _ = v.UpdateBasics("Sam", "", "") }, msg: "Please fill in all required fields"},
		{step: 1, setup: func(v *WizardView) { _ = v.UpdateBasics("Sam", "2010-01-01", "") }, msg: "You must be 18 or older"},
		{step: 2, setup: func(v *WizardView) {}, msg: "Please select your gender identity"},
		{step: 3, setup: func(v *WizardView) {}, msg: "Please select at least one option"},
		{step: 4, setup: func(v *WizardView) { v.SetBio("too short") }, msg: "Please write a bio with at least 10 characters"},
		{step: 5, setup: func(v *WizardView) {}, msg: "Please upload at least one photo"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("step %d %s", tt.step, tt.msg), func(t *testing.T) {
			v, rec := newTestWizard(t)
			advanceTo(t, v, tt.step)
			tt.setup(v)
			rec.DrainToasts()
			before := v.State()

			profile, err := v.NextStep(context.Background())
			require.Error(t, err)
			assert.Nil(t, profile)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.msg, err.Error())

			after := v.State()
			assert.Equal(t, tt.step, after.Step)
			if diff := cmp.Diff(before.Draft, after.Draft); diff != "" {
				t.Errorf("draft changed on refusal (-before +after):\n%s", diff)
			}
			assert.Equal(t, []models.Toast{errorToast(tt.msg)}, rec.Toasts())
		})
	}
}

func TestWizard_InvalidBirthdate(t *testing.T) {
	v, rec := newTestWizard(t)

	err := v.UpdateBasics("Sam", "15/06/1995", "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Len(t, rec.Toasts(), 1)
	assert.Empty(t, v.State().Draft.Name)
}

func TestWizard_CustomOptions(t *testing.T) {
	v, _ := newTestWizard(t)

	require.NoError(t, v.SelectGender(models.CustomOption, "  Demigirl "))
	require.NoError(t, v.SelectPronouns(models.CustomOption, "xe/xem"))
	d := v.State().Draft
	assert.Equal(t, "Demigirl", d.DisplayGender())
	assert.Equal(t, "xe/xem", d.DisplayPronouns())

	assert.Error(t, v.SelectGender("Robot", ""))
	assert.Error(t, v.SelectPronouns("it/its", ""))
	assert.Error(t, v.ToggleLookingFor("Marriage"))
}

func TestWizard_InterestCap(t *testing.T) {
	v, rec := newTestWizard(t)

	for _, tag := range InterestOptions[:MaxInterests] {
		require.NoError(t, v.ToggleInterest(tag))
	}
	before := v.State().Draft.Interests

	err := v.ToggleInterest(InterestOptions[MaxInterests])
	require.ErrorIs(t, err, ErrInterestLimit)
	assert.Equal(t, before, v.State().Draft.Interests)
	assert.Equal(t, []models.Toast{errorToast("You can select up to 10 interests")}, rec.Toasts())

	// removing still works at the cap
	require.NoError(t, v.ToggleInterest(InterestOptions[0]))
	assert.Len(t, v.State().Draft.Interests, MaxInterests-1)
	require.NoError(t, v.ToggleInterest(InterestOptions[MaxInterests]))
	assert.Len(t, v.State().Draft.Interests, MaxInterests)
}

func TestWizard_PhotoCap(t *testing.T) {
	v, rec := newTestWizard(t)
	ctx := context.Background()

	res, err := v.AddPhotos(ctx, pngUploads(4))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Added)
	assert.Empty(t, rec.DrainToasts())

	res, err = v.AddPhotos(ctx, pngUploads(5))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 3, res.Dropped)
	assert.Len(t, v.State().Draft.Photos, MaxPhotos)
	assert.Equal(t, []models.Toast{errorToast("You can upload up to 6 photos")}, rec.DrainToasts())

	_, err = v.AddPhotos(ctx, pngUploads(1))
	assert.ErrorIs(t, err, ErrPhotoLimit)
	assert.Len(t, v.State().Draft.Photos, MaxPhotos)

	require.True(t, v.RemovePhoto(0))
	assert.False(t, v.RemovePhoto(MaxPhotos))
	assert.Len(t, v.State().Draft.Photos, MaxPhotos-1)
}

func TestWizard_PhotoValidation(t *testing.T) {
	rec := &Recorder{}
	v := NewWizardView(clock.NewManual(epoch), 0, 64, rec)
	defer v.Close()

	res, err := v.AddPhotos(context.Background(), []PhotoUpload{
		fileUpload("ok.png", pngBytes),
		fileUpload("notes.txt", []byte("just some text")),
		fileUpload("huge.png", append(append([]byte(nil), pngBytes...), bytes.Repeat([]byte{0}, 64)...)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.ElementsMatch(t, []string{"notes.txt", "huge.png"}, res.Rejected)

	photos := v.State().Draft.Photos
	require.Len(t, photos, 1)
	assert.True(t, strings.HasPrefix(photos[0], "data:image/png;base64,"))
	assert.Len(t, rec.Toasts(), 2)

	_, err = v.AddPhotos(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoPhotos)
}

func TestWizard_SubmitBuildsProfile(t *testing.T) {
	v, rec := newTestWizard(t)
	advanceTo(t, v, WizardSteps)
	assert.Equal(t, 100, v.State().Progress)
	rec.DrainToasts()

	profile, err := v.NextStep(context.Background())
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "Sam", profile.Name)
	assert.Equal(t, 28, profile.Age)
	assert.Equal(t, "Non-Binary", profile.Gender)
	assert.Equal(t, "They/Them", profile.Pronouns)
	assert.Equal(t, []string{"Hiking"}, profile.Interests)
	assert.True(t, strings.HasPrefix(profile.ImageURL, "data:image/png"))
	assert.Equal(t, []models.Toast{successToast("Profile created successfully!")}, rec.Toasts())
}

func TestWizard_SubmitAfterCloseIsDiscarded(t *testing.T) {
	c := clock.NewManual(epoch)
	rec := &Recorder{}
	v := NewWizardView(c, 2*time.Second, 1<<20, rec)
	advanceTo(t, v, WizardSteps)
	rec.DrainToasts()

	type result struct {
		profile *models.Profile
		err     error
	}
	done := make(chan result, 1)
	go func() {
		p, err := v.Submit(context.Background())
		done <- result{p, err}
	}()

	require.Eventually(t, func() bool { return c.Pending() == 1 }, time.Second, time.Millisecond)
	v.Close()
	c.Advance(2 * time.Second)

	res := <-done
	assert.ErrorIs(t, res.err, ErrViewClosed)
	assert.Nil(t, res.profile)
	assert.Empty(t, rec.Toasts())
}

func TestWizard_SubmitOnlyOnLastStep(t *testing.T) {
	v, _ := newTestWizard(t)

	_, err := v.Submit(context.Background())
	assert.Error(t, err)
}

func TestWizard_PrevStep(t *testing.T) {
	v, _ := newTestWizard(t)
	advanceTo(t, v, 3)

	require.True(t, v.PrevStep())
	assert.Equal(t, 2, v.State().Step)
	assert.Equal(t, "Sam", v.State().Draft.Name)
}

func TestWizard_ClosedRefusesWork(t *testing.T) {
	v, _ := newTestWizard(t)
	v.Close()

	_, err := v.NextStep(context.Background())
	assert.ErrorIs(t, err, ErrViewClosed)
	_, err = v.AddPhotos(context.Background(), pngUploads(1))
	assert.ErrorIs(t, err, ErrViewClosed)
}
