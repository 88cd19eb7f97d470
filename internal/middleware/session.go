package middleware

import (
	"context"
	"net/http"

	"transconnect/internal/config"
	"transconnect/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type contextKey string

const sessionKey contextKey = "session"

// Sessions loads the browser session named by the session cookie, or starts
// a new one, and stores it in the request context
type Sessions struct {
	store  *services.SessionStore
	tokens *services.SessionService
	cookie string
	secure bool
}

// NewSessions creates the session middleware
func NewSessions(store *services.SessionStore, tokens *services.SessionService, cfg config.SessionConfig) *Sessions {
	return &Sessions{
		store:  store,
		tokens: tokens,
		cookie: cfg.CookieName,
		secure: cfg.SecureCookie,
	}
}

// Middleware attaches the session to every request
func (m *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := m.load(r)
		if session == nil {
			session = m.store.Create()
			if err := m.WriteCookie(w, session); err != nil {
				log.Error().Err(err).Msg("Failed to issue session cookie")
				respondError(w, "Failed to start session", http.StatusInternalServerError)
				return
			}
		}

		if !websocket.IsWebSocketUpgrade(r) {
			defer session.BeginRequest()()
		}

		ctx := WithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Sessions) load(r *http.Request) *services.Session {
	c, err := r.Cookie(m.cookie)
	if err != nil || c.Value == "" {
		return nil
	}

	claims, err := m.tokens.ValidateToken(c.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Discarding invalid session cookie")
		return nil
	}

	if s, ok := m.store.Get(claims.SessionID); ok {
		return s
	}
	return m.store.Resume(claims.SessionID, claims.SignedIn)
}

// WriteCookie reissues the session cookie so it carries the current auth state
func (m *Sessions) WriteCookie(w http.ResponseWriter, s *services.Session) error {
	token, err := m.tokens.GenerateToken(s.ID, s.SignedIn())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// WithSession returns a context carrying s
func WithSession(ctx context.Context, s *services.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession extracts the session from context
func GetSession(ctx context.Context) *services.Session {
	s, ok := ctx.Value(sessionKey).(*services.Session)
	if !ok {
		return nil
	}
	return s
}

// AuthStatus answers whether the current visitor is signed in
type AuthStatus interface {
	SignedIn(ctx context.Context) bool
}

// SessionAuth is the AuthStatus backed by the session in the request context
type SessionAuth struct{}

// SignedIn reports the signed_in claim of the request's session
func (SessionAuth) SignedIn(ctx context.Context) bool {
	s := GetSession(ctx)
	return s != nil && s.SignedIn()
}

// respondError sends a plain text error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	http.Error(w, message, statusCode)
}
