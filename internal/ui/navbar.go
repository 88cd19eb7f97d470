package ui

import "strings"

// Brand is the product name shown in the navigation shell
const Brand = "TransConnect"

// NavLink is one entry of the navigation shell
type NavLink struct {
	Label  string
	Path   string
	Active bool
	CTA    bool
}

// Nav is the rendered state of the navigation shell
type Nav struct {
	Brand    string
	Home     string
	SignedIn bool
	Links    []NavLink
}

var signedOutLinks = []NavLink{
	{Label: "About", Path: "/about"},
	{Label: "Safety", Path: "/safety"},
	{Label: "Community", Path: "/community"},
	{Label: "Sign In", Path: "/auth"},
	{Label: "Join Now", Path: "/auth?signup=true", CTA: true},
}

var signedInLinks = []NavLink{
	{Label: "Home", Path: "/dashboard"},
	{Label: "Matches", Path: "/matches"},
	{Label: "Messages", Path: "/messages"},
	{Label: "Community", Path: "/community"},
	{Label: "Profile", Path: "/profile"},
}

// Navbar builds the navigation shell for the current route. path is the
// request path without query.
func Navbar(path string, signedIn bool) Nav {
	src := signedOutLinks
	home := "/"
	if signedIn {
		src = signedInLinks
		home = "/dashboard"
	}

	links := make([]NavLink, len(src))
	copy(links, src)
	for i := range links {
		links[i].Active = isActive(path, links[i].Path)
	}

	return Nav{
		Brand:    Brand,
		Home:     home,
		SignedIn: signedIn,
		Links:    links,
	}
}

// isActive matches a link against the route; query strings on the link are
// ignored so both auth links light up on /auth
func isActive(path, link string) bool {
	link, _, _ = strings.Cut(link, "?")
	if link == "/" {
		return path == "/"
	}
	return path == link || strings.HasPrefix(path, link+"/")
}
