package web

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"transconnect/internal/models"
	"transconnect/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_ParsesEveryPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range []string{"landing", "safety", "info", "not_found", "auth", "dashboard", "messages", "profile_setup"} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("layout"))
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = r.Render(w, http.StatusOK, "info", Page{
		Title: "About",
		Path:  "/about",
		Nav:   ui.Navbar("/about", false),
		Toasts: []models.Toast{
			{Kind: models.ToastSuccess, Title: "Saved <now>", Description: "All good"},
		},
		Now:  time.Now(),
		Data: map[string]string{"Heading": "About us", "Body": "Hello & welcome"},
	})
	require.NoError(t, err)

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "<title>About | TransConnect</title>")
	assert.Contains(t, body, "About us")
	assert.Contains(t, body, "Hello &amp; welcome")
	assert.Contains(t, body, "toast-success")
	assert.Contains(t, body, "Saved &lt;now&gt;")
	assert.Contains(t, body, `href="/auth?signup=true"`)
}

func TestRenderer_NotFoundMessage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, r.Render(w, http.StatusNotFound, "not_found", Page{Title: "Not found", Nav: ui.Navbar("/x", true)}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "We couldn")
	assert.Contains(t, w.Body.String(), `href="/dashboard"`)

	w = httptest.NewRecorder()
	require.NoError(t, r.Render(w, http.StatusNotFound, "not_found", Page{Title: "Not found", Data: "No such chat"}))
	assert.Contains(t, w.Body.String(), "No such chat")
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = r.Render(w, http.StatusOK, "missing", Page{})
	require.Error(t, err)
	assert.Zero(t, w.Body.Len())
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		in   string
		want template.URL
	}{
		{"data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"https://images.example.com/a.jpg", "https://images.example.com/a.jpg"},
		{"http://insecure.example.com/a.jpg", ""},
		{"javascript:alert(1)", ""},
		{"data:text/html;base64,AAAA", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, imageURL(tt.in))
		})
	}
}

func TestStatic(t *testing.T) {
	srv := httptest.NewServer(http.StripPrefix("/static/", Static()))
	defer srv.Close()

	for _, name := range []string{"app.css", "app.js"} {
		resp, err := http.Get(srv.URL + "/static/" + name)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, name)
	}

	resp, err := http.Get(srv.URL + "/static/missing.js")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
