package handlers

import (
	"net/http"

	"transconnect/internal/services"
)

// Feature is one landing page selling point
type Feature struct {
	Icon  string
	Title string
	Body  string
}

// Testimonial is one landing page quote
type Testimonial struct {
	Quote  string
	Name   string
	Detail string
}

// LandingPage is the data of the landing page
type LandingPage struct {
	Features     []Feature
	Testimonials []Testimonial
}

// SafetySection is one block of safety guidance
type SafetySection struct {
	Heading string
	Points  []string
}

// SafetyPage is the data of the safety page
type SafetyPage struct {
	Sections []SafetySection
}

// InfoPage is the data of a placeholder page
type InfoPage struct {
	Heading string
	Body    string
}

var landing = LandingPage{
	Features: []Feature{
		{Icon: "🏳️‍⚧️", Title: "Trans-centered", Body: "Built by and for trans, non-binary and gender-diverse people."},
		{Icon: "✔", Title: "Verified profiles", Body: "Photo verification keeps catfishing and fake accounts out."},
		{Icon: "🛡", Title: "Safety first", Body: "Block, report and moderation tools that actually respond."},
		{Icon: "💬", Title: "Real conversations", Body: "Messaging designed around respect, with read receipts you control."},
		{Icon: "🌈", Title: "Your identity, your words", Body: "Custom genders and pronouns, never a dropdown that doesn't fit."},
		{Icon: "🤝", Title: "More than dating", Body: "Find friendship, community and networking as well as romance."},
	},
	Testimonials: []Testimonial{
		{Quote: "For the first time I didn't have to explain myself before saying hello.", Name: "Riley", Detail: "Seattle, WA"},
		{Quote: "I met my partner here after years of awful apps. This one just gets it.", Name: "Morgan", Detail: "Austin, TX"},
		{Quote: "The community events helped me find friends in a new city.", Name: "Sasha", Detail: "Chicago, IL"},
	},
}

var safety = SafetyPage{
	Sections: []SafetySection{
		{
			Heading: "Reporting and blocking",
			Points: []string{
				"Report any profile or message in two taps.",
				"Blocked members can no longer see your profile or message you.",
				"Moderators review every report, usually within a day.",
			},
		},
		{
			Heading: "Profile verification",
			Points: []string{
				"Verified members have confirmed their photos match a live selfie.",
				"Look for the check mark next to a member's name.",
				"Your verification selfie is never shown to anyone.",
			},
		},
		{
			Heading: "Meeting in person",
			Points: []string{
				"Meet somewhere public for the first few dates.",
				"Tell a friend where you are going and when you expect to be back.",
				"Arrange your own transport so you can leave whenever you want.",
				"Trust your instincts. You never owe anyone a second meeting.",
			},
		},
	},
}

var infoPages = map[string]InfoPage{
	"/about": {
		Heading: "About TransConnect",
		Body:    "We're a small team of trans and non-binary people building the dating app we always wanted.",
	},
	"/community": {
		Heading: "Community",
		Body:    "Groups, events and discussion spaces are on their way.",
	},
	"/matches": {
		Heading: "Your matches",
		Body:    "Matches will appear here once you and someone else both like each other.",
	},
	"/profile": {
		Heading: "Your profile",
		Body:    "Profile editing will be available in the full version.",
	},
}

// PageHandler serves the static views
type PageHandler struct {
	pages *Pages
}

// NewPageHandler creates a new page handler
func NewPageHandler(pages *Pages) *PageHandler {
	return &PageHandler{pages: pages}
}

// Landing handles GET /
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	s.Enter(services.ViewLanding)
	h.pages.render(w, r, http.StatusOK, "landing", "Welcome", landing)
}

// Safety handles GET /safety
func (h *PageHandler) Safety(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	s.Enter(services.ViewSafety)
	h.pages.render(w, r, http.StatusOK, "safety", "Safety", safety)
}

// Info handles the placeholder pages
func (h *PageHandler) Info(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	info, found := infoPages[r.URL.Path]
	if !found {
		h.pages.NotFound(w, r)
		return
	}
	s.Enter(services.ViewInfo)
	h.pages.render(w, r, http.StatusOK, "info", info.Heading, info)
}
