package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"transconnect/internal/clock"
	"transconnect/internal/config"
	"transconnect/internal/models"
	"transconnect/internal/repository"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, c clock.Clock) (*SessionStore, *WSHub) {
	t.Helper()
	hub := NewWSHub()
	factory := &ViewFactory{
		Profiles:      repository.NewProfileRepository(),
		Conversations: repository.NewConversationRepository(),
		Clock:         c,
		Simulation:    config.Default().Simulation,
		MaxPhotoBytes: 1 << 20,
	}
	store := NewSessionStore(hub, factory, time.Hour)
	t.Cleanup(func() {
		store.Close()
		hub.Close()
	})
	return store, hub
}

func TestSessionService_TokenRoundTrip(t *testing.T) {
	c := clock.NewManual(epoch)
	svc := NewSessionService("secret", c)

	token, err := svc.GenerateToken("abc", true)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, &SessionClaims{SessionID: "abc", SignedIn: true}, claims)

	_, err = NewSessionService("other", c).ValidateToken(token)
	assert.Error(t, err)

	c.Advance(31 * 24 * time.Hour)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err, "expired token")

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestSession_ToastQueuedWhileOffline(t *testing.T) {
	store, _ := newTestStore(t, clock.NewManual(epoch))
	s := store.Create()

	s.Toast(models.Toast{Title: "hello"})
	s.Event(EventDiscoveryRefreshed, nil)

	assert.Equal(t, []models.Toast{{Title: "hello"}}, s.DrainToasts())
	assert.Empty(t, s.DrainToasts())
}

func TestSession_EnterTearsDownPreviousView(t *testing.T) {
	c := clock.NewManual(epoch)
	store, _ := newTestStore(t, c)
	s := store.Create()
	ctx := context.Background()

	inbox, err := s.Messaging(ctx)
	require.NoError(t, err)
	require.NoError(t, inbox.Select("1"))
	_, err = inbox.Send("hi")
	require.NoError(t, err)
	require.Equal(t, 3, c.Pending())

	again, err := s.Messaging(ctx)
	require.NoError(t, err)
	assert.Same(t, inbox, again)

	s.Enter(ViewLanding)
	assert.Equal(t, ViewLanding, s.Kind())
	assert.Zero(t, c.Pending())

	c.Advance(time.Minute)
	assert.Empty(t, s.DrainToasts())

	fresh, err := s.Messaging(ctx)
	require.NoError(t, err)
	assert.NotSame(t, inbox, fresh)
	assert.Nil(t, fresh.State().Active)
}

func TestSession_DiscoveryAndWizardAreIndependentMounts(t *testing.T) {
	c := clock.NewManual(epoch)
	store, _ := newTestStore(t, c)
	s := store.Create()

	feed, err := s.Discovery(context.Background())
	require.NoError(t, err)
	require.True(t, feed.Refresh())

	w := s.Wizard()
	assert.Equal(t, ViewWizard, s.Kind())
	assert.Same(t, w, s.Wizard())
	assert.Zero(t, c.Pending(), "leaving discovery cancels its refresh")

	a := s.Auth(true)
	assert.True(t, a.SignUp())
	assert.Same(t, a, s.Auth(false))
}

func TestSessionStore_ResumeAndSweep(t *testing.T) {
	c := clock.NewManual(epoch)
	store, _ := newTestStore(t, c)

	s := store.Resume("known", true)
	assert.True(t, s.SignedIn())
	assert.Same(t, s, store.Resume("known", false))

	other := store.Create()
	assert.Equal(t, 2, store.Len())

	c.Advance(30 * time.Minute)
	_, ok := store.Get(other.ID)
	require.True(t, ok)

	c.Advance(45 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	_, ok = store.Get("known")
	assert.False(t, ok)
	_, ok = store.Get(other.ID)
	assert.True(t, ok)
}

func TestSessionStore_RunSweeperFollowsClock(t *testing.T) {
	c := clock.NewManual(epoch)
	store, _ := newTestStore(t, c)
	store.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.RunSweeper(ctx, 30*time.Minute)
	}()

	tick := func() {
		t.Helper()
		require.Eventually(t, func() bool { return c.Pending() == 1 }, time.Second, time.Millisecond)
		c.Advance(30 * time.Minute)
	}

	tick()
	tick()
	require.Eventually(t, func() bool { return c.Pending() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, store.Len(), "not idle past the ttl yet")

	tick()
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestSessionStore_RunSweeperRejectsNonPositiveInterval(t *testing.T) {
	store, _ := newTestStore(t, clock.NewManual(epoch))

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.RunSweeper(context.Background(), 0)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper with zero interval did not return")
	}
}

func TestSession_ToastPushedOverWebSocket(t *testing.T) {
	store, hub := newTestStore(t, clock.NewManual(epoch))
	s := store.Create()

	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if err := hub.Register(s.ID, conn); err != nil {
			conn.Close()
			return
		}
		close(registered)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Unregister(s.ID, conn)
				return
			}
		}
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()
	<-registered
	assert.True(t, hub.IsOnline(s.ID))

	s.Toast(models.Toast{Kind: models.ToastSuccess, Title: "pushed"})
	assert.Empty(t, s.DrainToasts())

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, EventToast, msg.Type)
	require.NotNil(t, msg.Toast)
	assert.Equal(t, "pushed", msg.Toast.Title)
	assert.NotZero(t, msg.Timestamp)
}
