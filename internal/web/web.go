// Package web embeds the page templates and static assets and renders pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"transconnect/internal/models"
	"transconnect/internal/ui"
)

//go:embed templates static
var assets embed.FS

// Page is the data every template receives
type Page struct {
	Title  string
	Path   string
	Nav    ui.Nav
	Toasts []models.Toast
	Now    time.Time
	Data   any
}

// Renderer executes the embedded page templates
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the layout and partials
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(assets, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(assets,
			"templates/layout.html",
			"templates/partials/*.html",
			file,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages}, nil
}

// Render writes page name with status. The page is executed into a buffer
// first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("failed to render page %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether a page template exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Static serves the embedded CSS and script
func Static() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

var funcs = template.FuncMap{
	"button": ui.ParseButton,
	"formatTime": func(t, now time.Time) string {
		return ui.FormatMessageTime(t, now)
	},
	"percent": func(part, total int) int {
		if total <= 0 {
			return 0
		}
		return part * 100 / total
	},
	"add": func(a, b int) int {
		return a + b
	},
	"contains": func(list []string, v string) bool {
		return slices.Contains(list, v)
	},
	"join":     strings.Join,
	"imageURL": imageURL,
	"initial": func(s string) string {
		for _, r := range s {
			return string(r)
		}
		return "?"
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}

// imageURL lets inline photo payloads and https images through the
// template's URL filter and blanks anything else
func imageURL(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "data:image/"), strings.HasPrefix(s, "https://"):
		return template.URL(s)
	default:
		return ""
	}
}
