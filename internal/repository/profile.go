package repository

import (
	"context"
	"slices"

	"transconnect/internal/models"
)

// ProfileRepository serves the fixed discovery candidates
type ProfileRepository struct {
	profiles []models.Profile
}

// NewProfileRepository creates a repository over the built-in profiles
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: seedProfiles}
}

// NewProfileRepositoryFrom creates a repository over the given profiles
func NewProfileRepositoryFrom(profiles []models.Profile) *ProfileRepository {
	return &ProfileRepository{profiles: profiles}
}

// List returns a copy of every profile in feed order
func (r *ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Profile, len(r.profiles))
	for i, p := range r.profiles {
		p.Interests = slices.Clone(p.Interests)
		out[i] = p
	}
	return out, nil
}

var seedProfiles = []models.Profile{
	{
		ID:        "1",
		Name:      "Jamie",
		Age:       28,
		Pronouns:  "They/Them",
		Gender:    "Non-Binary",
		Location:  "Seattle, WA",
		Bio:       "Hey there! I'm a graphic designer who loves creating art, listening to indie music, and exploring new coffee shops. Looking to connect with like-minded people who appreciate creativity and authenticity.",
		Interests: []string{"Art", "Music", "Coffee", "Design", "Hiking"},
		ImageURL:  "https://images.unsplash.com/photo-1488590528505-98d2b5aba04b",
		Verified:  true,
	},
	{
		ID:        "2",
		Name:      "Alex",
		Age:       32,
		Pronouns:  "She/Her",
		Gender:    "Trans Woman",
		Location:  "Portland, OR",
		Bio:       "Bookworm, tea enthusiast, and avid hiker. I'm passionate about environmental activism and spend my weekends volunteering at the local animal shelter. Looking for genuine connections and shared adventures.",
		Interests: []string{"Reading", "Hiking", "Activism", "Animals", "Nature"},
		ImageURL:  "https://images.unsplash.com/photo-1649972904349-6e44c42644a7",
		Verified:  true,
	},
	{
		ID:        "3",
		Name:      "Taylor",
		Age:       26,
		Pronouns:  "He/Him",
		Gender:    "Trans Man",
		Location:  "Vancouver, BC",
		Bio:       "Software developer by day, amateur chef by night. I love coding, trying new recipes, and playing board games with friends. Seeking connections with people who appreciate good food and thoughtful conversations.",
		Interests: []string{"Coding", "Cooking", "Gaming", "Technology", "Food"},
		ImageURL:  "https://images.unsplash.com/photo-1721322800607-8c38375eef04",
		Verified:  false,
	},
}
