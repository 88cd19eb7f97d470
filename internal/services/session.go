package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"transconnect/internal/clock"
	"transconnect/internal/config"
	"transconnect/internal/models"
	"transconnect/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const tokenExpDays = 30

// TokenTTL is how long a session token stays valid
const TokenTTL = tokenExpDays * 24 * time.Hour

// SessionService issues and validates the signed session cookie value
type SessionService struct {
	secret []byte
	clock  clock.Clock
}

// NewSessionService creates a new session service
func NewSessionService(secret string, c clock.Clock) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		clock:  c,
	}
}

// SessionClaims is what the session token carries
type SessionClaims struct {
	SessionID string
	SignedIn  bool
}

// GenerateToken signs a token for a session
func (s *SessionService) GenerateToken(sessionID string, signedIn bool) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sid":       sessionID,
		"signed_in": signedIn,
		"exp":       now.AddDate(0, 0, tokenExpDays).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a session token and returns its claims
func (s *SessionService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return nil, fmt.Errorf("sid not found in token")
	}
	signedIn, _ := claims["signed_in"].(bool)

	return &SessionClaims{SessionID: sessionID, SignedIn: signedIn}, nil
}

// ViewKind identifies the view a session has mounted
type ViewKind int

const (
	ViewNone ViewKind = iota
	ViewLanding
	ViewSafety
	ViewInfo
	ViewAuth
	ViewDiscovery
	ViewMessaging
	ViewWizard
)

type view interface {
	Close()
}

// ViewFactory builds fresh views for a session
type ViewFactory struct {
	Profiles         *repository.ProfileRepository
	Conversations    *repository.ConversationRepository
	Clock            clock.Clock
	Simulation       config.SimulationConfig
	MaxPhotoBytes    int64
	MessagingOptions []MessagingOption
}

// Session is one browser's state. It holds at most one mounted view;
// entering another view closes the previous one and cancels its timers.
type Session struct {
	ID string

	hub     *WSHub
	factory *ViewFactory

	mu       sync.Mutex
	signedIn bool
	kind     ViewKind
	current  view
	pending  []models.Toast
	requests int
	lastSeen time.Time
}

// Toast pushes a notification to the session's live page, or queues it for
// the next render. Toasts raised while a request is being served are always
// queued since that request ends in a fresh render.
func (s *Session) Toast(t models.Toast) {
	s.mu.Lock()
	busy := s.requests > 0
	s.mu.Unlock()

	if !busy {
		if err := s.hub.SendToSession(s.ID, WSMessage{Type: EventToast, Toast: &t}); err == nil {
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, t)
}

// BeginRequest marks a page request as in flight; call the returned func
// when it is done
func (s *Session) BeginRequest() func() {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.requests--
		s.mu.Unlock()
	}
}

// Event pushes a view event to the live page. Events for a page that is not
// connected are dropped; the next render shows the current state anyway.
func (s *Session) Event(eventType string, data any) {
	if err := s.hub.SendToSession(s.ID, WSMessage{Type: eventType, Data: data}); err != nil {
		log.Debug().Str("session_id", s.ID).Str("type", eventType).Msg("Dropping event for offline session")
	}
}

// DrainToasts returns and forgets the queued notifications
func (s *Session) DrainToasts() []models.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// SignedIn reports whether the session went through the auth form
func (s *Session) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signedIn
}

// SetSignedIn records the auth state
func (s *Session) SetSignedIn(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signedIn = v
}

// Kind returns the currently mounted view kind
func (s *Session) Kind() ViewKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// Enter mounts a view that keeps no state, unmounting the current one
func (s *Session) Enter(kind ViewKind) {
	mount(s, kind, func() (view, error) { return nil, nil })
}

// Auth mounts or returns the auth view
func (s *Session) Auth(signUp bool) *AuthView {
	v, _ := mount(s, ViewAuth, func() (*AuthView, error) {
		return NewAuthView(signUp, s.factory.Clock, s.factory.Simulation.AuthDelay, s), nil
	})
	return v
}

// Discovery mounts or returns the discovery view
func (s *Session) Discovery(ctx context.Context) (*DiscoveryView, error) {
	return mount(s, ViewDiscovery, func() (*DiscoveryView, error) {
		profiles, err := s.factory.Profiles.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		return NewDiscoveryView(profiles, s.factory.Simulation.RefreshDelay, NewScheduler(s.factory.Clock), s), nil
	})
}

// Messaging mounts or returns the messaging view
func (s *Session) Messaging(ctx context.Context) (*MessagingView, error) {
	return mount(s, ViewMessaging, func() (*MessagingView, error) {
		convs, err := s.factory.Conversations.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load conversations: %w", err)
		}
		repo := s.factory.Conversations
		load := func(id string, now time.Time) ([]models.Message, error) {
			return repo.Thread(context.Background(), id, now)
		}
		sim := s.factory.Simulation
		timings := DeliveryTimings{
			DeliveredAfter: sim.DeliveredAfter,
			ReadAfter:      sim.ReadAfter,
			ReplyAfter:     sim.ReplyAfter,
		}
		return NewMessagingView(convs, load, timings, s.factory.Clock, NewScheduler(s.factory.Clock), s, s.factory.MessagingOptions...), nil
	})
}

// Wizard mounts or returns the profile setup wizard
func (s *Session) Wizard() *WizardView {
	v, _ := mount(s, ViewWizard, func() (*WizardView, error) {
		return NewWizardView(s.factory.Clock, s.factory.Simulation.SubmitDelay, s.factory.MaxPhotoBytes, s), nil
	})
	return v
}

// Close unmounts the current view
func (s *Session) Close() {
	s.mu.Lock()
	old := s.current
	s.current = nil
	s.kind = ViewNone
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// mount returns the session's view of kind, building a fresh one when a
// different view is mounted. The previous view is closed after the lock is
// released because its callbacks report back through the session.
func mount[T view](s *Session, kind ViewKind, build func() (T, error)) (T, error) {
	var zero T

	s.mu.Lock()
	if s.kind == kind && s.current != nil {
		if v, ok := s.current.(T); ok {
			s.mu.Unlock()
			return v, nil
		}
	}
	if s.kind == kind && s.current == nil && kind < ViewAuth {
		s.mu.Unlock()
		return zero, nil
	}

	v, err := build()
	if err != nil {
		s.mu.Unlock()
		return zero, err
	}

	old := s.current
	s.kind = kind
	if any(v) == nil {
		s.current = nil
	} else {
		s.current = v
	}
	s.mu.Unlock()

	if old != nil {
		old.Close()
		log.Debug().Str("session_id", s.ID).Int("view", int(kind)).Msg("Previous view closed")
	}
	return v, nil
}

// SessionStore keeps every live session in memory
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	hub      *WSHub
	factory  *ViewFactory
	clock    clock.Clock
	ttl      time.Duration
}

// NewSessionStore creates an empty store. Sessions idle for longer than
// ttl are removed by Sweep.
func NewSessionStore(hub *WSHub, factory *ViewFactory, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		hub:      hub,
		factory:  factory,
		clock:    factory.Clock,
		ttl:      ttl,
	}
}

// Get returns the session with id and marks it as seen
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if ok {
		s.touch(st.clock.Now())
	}
	return s, ok
}

// Create starts a new session with a random id
func (st *SessionStore) Create() *Session {
	return st.Resume(uuid.New().String(), false)
}

// Resume returns the session with id, creating it when the process no
// longer knows it (for example after a restart)
func (st *SessionStore) Resume(id string, signedIn bool) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		s.touch(st.clock.Now())
		return s
	}

	s := &Session{
		ID:       id,
		hub:      st.hub,
		factory:  st.factory,
		signedIn: signedIn,
		lastSeen: st.clock.Now(),
	}
	st.sessions[id] = s
	log.Debug().Str("session_id", id).Msg("Session created")
	return s
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the ttl and closes their
// views. It returns how many were removed.
func (st *SessionStore) Sweep() int {
	cutoff := st.clock.Now().Add(-st.ttl)

	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) && !st.hub.IsOnline(id) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		log.Info().Int("count", len(expired)).Msg("Expired sessions removed")
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval on the store's clock until ctx is
// done. A non-positive interval disables sweeping.
func (st *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Warn().Dur("interval", interval).Msg("Session sweeper disabled")
		return
	}

	for {
		if err := clock.Sleep(ctx, st.clock, interval); err != nil {
			return
		}
		st.Sweep()
	}
}

// Close closes every session's view
func (st *SessionStore) Close() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
