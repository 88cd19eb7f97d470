package services

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"transconnect/internal/clock"
	"transconnect/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Messaging event types pushed to the page
const (
	EventMessageStatus   = "message_status"
	EventMessageReceived = "message_received"
)

// CannedReplies are the texts a simulated counterpart answers with
var CannedReplies = []string{
	"That's interesting! Tell me more.",
	"I'd love to hear more about that.",
	"That sounds great! When are you free?",
	"I feel the same way about that too!",
	"Thanks for sharing, I appreciate it.",
}

// DeliveryTimings are the offsets, from send time, of the simulated
// delivery receipts and the counterpart's reply
type DeliveryTimings struct {
	DeliveredAfter time.Duration
	ReadAfter      time.Duration
	ReplyAfter     time.Duration
}

// ThreadLoader returns the seed messages for a conversation
type ThreadLoader func(conversationID string, now time.Time) ([]models.Message, error)

// MessagingView is the two-pane inbox: conversation list plus the active
// thread with simulated delivery receipts and replies.
type MessagingView struct {
	mu            sync.Mutex
	conversations []models.Conversation
	threads       map[string][]models.Message
	active        string
	closed        bool

	loadThread ThreadLoader
	timings    DeliveryTimings
	clock      clock.Clock
	sched      *Scheduler
	emit       Emitter
	pick       func(n int) int
}

// MessagingState is a snapshot used for rendering
type MessagingState struct {
	Conversations []models.Conversation
	Active        *models.Conversation
	Messages      []models.Message
}

// StatusUpdate is the payload of a message_status event
type StatusUpdate struct {
	ConversationID string               `json:"conversation_id"`
	MessageID      string               `json:"message_id"`
	Status         models.MessageStatus `json:"status"`
}

// ReceivedMessage is the payload of a message_received event
type ReceivedMessage struct {
	ConversationID string         `json:"conversation_id"`
	Message        models.Message `json:"message"`
}

// MessagingOption customizes a MessagingView
type MessagingOption func(*MessagingView)

// WithReplyPicker replaces the random source used to choose canned replies.
// pick(n) must return a value in [0, n).
func WithReplyPicker(pick func(n int) int) MessagingOption {
	return func(v *MessagingView) {
		v.pick = pick
	}
}

// NewMessagingView creates an inbox with no active conversation
func NewMessagingView(
	conversations []models.Conversation,
	loadThread ThreadLoader,
	timings DeliveryTimings,
	c clock.Clock,
	sched *Scheduler,
	emit Emitter,
	opts ...MessagingOption,
) *MessagingView {
	v := &MessagingView{
		conversations: conversations,
		threads:       make(map[string][]models.Message),
		loadThread:    loadThread,
		timings:       timings,
		clock:         c,
		sched:         sched,
		emit:          emit,
		pick:          rand.IntN,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Select makes a conversation active and resets its unread count to zero
func (v *MessagingView) Select(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrViewClosed
	}
	conv := v.conversationLocked(id)
	if conv == nil {
		return ErrConversationNotFound
	}
	if _, ok := v.threads[id]; !ok {
		msgs, err := v.loadThread(id, v.clock.Now())
		if err != nil {
			return err
		}
		v.threads[id] = msgs
	}

	v.active = id
	conv.Unread = 0
	log.Debug().Str("conversation_id", id).Msg("Conversation selected")
	return nil
}

// Back returns to the conversation list
func (v *MessagingView) Back() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = ""
}

// Send appends an outgoing message to the active thread and schedules its
// delivery receipts and the counterpart's reply. The three effects are
// scheduled independently from send time.
func (v *MessagingView) Send(text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		v.emit.Toast(errorToast("Please type a message first"))
		return nil, validationError("message is empty")
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	convID := v.active
	conv := v.conversationLocked(convID)
	if conv == nil {
		v.mu.Unlock()
		return nil, ErrNoActiveConversation
	}

	msg := models.Message{
		ID:        uuid.New().String(),
		SenderID:  models.SelfID,
		Text:      text,
		Timestamp: v.clock.Now().UTC(),
		Status:    models.StatusSent,
	}
	v.threads[convID] = append(v.threads[convID], msg)
	conv.LastMessage = text
	v.mu.Unlock()

	log.Debug().Str("conversation_id", convID).Str("message_id", msg.ID).Msg("Message sent")

	v.sched.After(v.timings.DeliveredAfter, func() {
		v.advanceStatus(convID, msg.ID, models.StatusDelivered)
	})
	v.sched.After(v.timings.ReadAfter, func() {
		v.advanceStatus(convID, msg.ID, models.StatusRead)
	})
	v.sched.After(v.timings.ReplyAfter, func() {
		v.reply(convID)
	})

	return &msg, nil
}

// advanceStatus moves a message forward to status. Unknown ids and
// backward moves are ignored.
func (v *MessagingView) advanceStatus(convID, msgID string, status models.MessageStatus) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	thread := v.threads[convID]
	i := slices.IndexFunc(thread, func(m models.Message) bool { return m.ID == msgID })
	if i < 0 || thread[i].Status >= status {
		v.mu.Unlock()
		return
	}
	thread[i].Status = status
	v.mu.Unlock()

	v.emit.Event(EventMessageStatus, StatusUpdate{
		ConversationID: convID,
		MessageID:      msgID,
		Status:         status,
	})
}

// reply appends a canned answer if convID is still the active conversation
func (v *MessagingView) reply(convID string) {
	v.mu.Lock()
	if v.closed || v.active != convID {
		v.mu.Unlock()
		return
	}
	conv := v.conversationLocked(convID)
	if conv == nil {
		v.mu.Unlock()
		return
	}

	text := CannedReplies[v.pick(len(CannedReplies))]
	msg := models.Message{
		ID:        uuid.New().String(),
		SenderID:  convID,
		Text:      text,
		Timestamp: v.clock.Now().UTC(),
		Status:    models.StatusRead,
	}
	v.threads[convID] = append(v.threads[convID], msg)
	conv.LastMessage = text
	conv.Unread = 0
	v.mu.Unlock()

	v.emit.Event(EventMessageReceived, ReceivedMessage{ConversationID: convID, Message: msg})
	v.emit.Toast(successToast("New message received"))
}

// Call shows the voice call placeholder
func (v *MessagingView) Call() {
	v.emit.Toast(infoToast("Calling feature coming soon!", "Voice calls will be available in the full version."))
}

// VideoCall shows the video call placeholder
func (v *MessagingView) VideoCall() {
	v.emit.Toast(infoToast("Video chat feature coming soon!", "Video calls will be available in the full version."))
}

// State returns a snapshot of the inbox and the active thread
func (v *MessagingView) State() MessagingState {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := MessagingState{
		Conversations: slices.Clone(v.conversations),
	}
	if conv := v.conversationLocked(v.active); conv != nil {
		c := *conv
		st.Active = &c
		st.Messages = slices.Clone(v.threads[v.active])
	}
	return st
}

// Close cancels every pending receipt and reply
func (v *MessagingView) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.sched.Close()
}

func (v *MessagingView) conversationLocked(id string) *models.Conversation {
	if id == "" {
		return nil
	}
	for i := range v.conversations {
		if v.conversations[i].ID == id {
			return &v.conversations[i]
		}
	}
	return nil
}
