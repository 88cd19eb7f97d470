package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButton_Classes(t *testing.T) {
	tests := []struct {
		name string
		b    Button
		want string
	}{
		{name: "zero value", b: Button{}, want: "btn btn-primary btn-md"},
		{name: "gradient large", b: Button{Variant: VariantGradient, Size: SizeLarge}, want: "btn btn-gradient btn-lg"},
		{name: "unknown falls back", b: Button{Variant: "neon", Size: "xl"}, want: "btn btn-primary btn-md"},
		{name: "loading full width", b: Button{Variant: VariantOutline, FullWidth: true, Loading: true}, want: "btn btn-outline btn-md btn-block btn-loading btn-disabled"},
		{name: "disabled icon", b: Button{Variant: VariantText, Size: SizeIcon, Disabled: true}, want: "btn btn-text btn-icon btn-disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.Classes())
		})
	}
}

func TestParseButton(t *testing.T) {
	b := ParseButton("secondary", "sm", "full", "loading", "bogus")
	assert.Equal(t, Button{Variant: VariantSecondary, Size: SizeSmall, FullWidth: true, Loading: true}, b)
	assert.True(t, b.Inert())
	assert.False(t, ParseButton().Inert())
}

func labels(n Nav) []string {
	out := make([]string, len(n.Links))
	for i, l := range n.Links {
		out[i] = l.Label
	}
	return out
}

func activeLabels(n Nav) []string {
	var out []string
	for _, l := range n.Links {
		if l.Active {
			out = append(out, l.Label)
		}
	}
	return out
}

func TestNavbar_SignedOut(t *testing.T) {
	n := Navbar("/safety", false)

	assert.Equal(t, Brand, n.Brand)
	assert.Equal(t, "/", n.Home)
	assert.Equal(t, []string{"About", "Safety", "Community", "Sign In", "Join Now"}, labels(n))
	assert.Equal(t, []string{"Safety"}, activeLabels(n))
	assert.True(t, n.Links[4].CTA)

	assert.Equal(t, []string{"Sign In", "Join Now"}, activeLabels(Navbar("/auth", false)))
}

func TestNavbar_SignedIn(t *testing.T) {
	n := Navbar("/messages/2", true)

	assert.Equal(t, "/dashboard", n.Home)
	assert.Equal(t, []string{"Home", "Matches", "Messages", "Community", "Profile"}, labels(n))
	assert.Equal(t, []string{"Messages"}, activeLabels(n))
	assert.Empty(t, activeLabels(Navbar("/messagesx", true)))
}

func TestNavbar_DoesNotShareLinks(t *testing.T) {
	_ = Navbar("/about", false)
	n := Navbar("/", false)
	assert.Empty(t, activeLabels(n))
}

func TestFormatMessageTime(t *testing.T) {
	loc := time.FixedZone("test", -7*3600)
	now := time.Date(2024, 3, 6, 15, 30, 0, 0, loc) // Wednesday

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "earlier today", t: time.Date(2024, 3, 6, 9, 5, 0, 0, loc), want: "09:05"},
		{name: "midnight today", t: time.Date(2024, 3, 6, 0, 0, 0, 0, loc), want: "00:00"},
		{name: "yesterday", t: time.Date(2024, 3, 5, 23, 59, 0, 0, loc), want: "Yesterday"},
		{name: "this week", t: time.Date(2024, 3, 1, 12, 0, 0, 0, loc), want: "Friday"},
		{name: "older", t: time.Date(2024, 2, 28, 12, 0, 0, 0, loc), want: "Feb 28"},
		{name: "utc input", t: time.Date(2024, 3, 6, 17, 0, 0, 0, time.UTC), want: "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FormatMessageTime(tt.t, now))
		})
	}
}
