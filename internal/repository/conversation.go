package repository

import (
	"context"
	"fmt"
	"time"

	"transconnect/internal/models"
)

// ConversationRepository serves the fixed inbox and its seed threads
type ConversationRepository struct {
	conversations []models.Conversation
	threads       map[string][]seedMessage
}

// seedMessage is a message whose timestamp is relative to the moment the
// thread is loaded
type seedMessage struct {
	id       string
	senderID string
	text     string
	ago      time.Duration
}

// NewConversationRepository creates a repository over the built-in inbox
func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		conversations: seedConversations,
		threads:       seedThreads,
	}
}

// List returns a copy of every conversation in inbox order
func (r *ConversationRepository) List(ctx context.Context) ([]models.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]models.Conversation(nil), r.conversations...), nil
}

// Thread returns the seed messages for a conversation, timestamped relative
// to now. Conversations without a seeded thread start with their last
// message as the only inbound message.
func (r *ConversationRepository) Thread(ctx context.Context, conversationID string, now time.Time) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if seed, ok := r.threads[conversationID]; ok {
		out := make([]models.Message, len(seed))
		for i, m := range seed {
			out[i] = models.Message{
				ID:        m.id,
				SenderID:  m.senderID,
				Text:      m.text,
				Timestamp: now.Add(-m.ago).UTC(),
				Status:    models.StatusRead,
			}
		}
		return out, nil
	}

	for _, c := range r.conversations {
		if c.ID == conversationID {
			return []models.Message{{
				ID:        "m1",
				SenderID:  c.ID,
				Text:      c.LastMessage,
				Timestamp: now.Add(-time.Hour).UTC(),
				Status:    models.StatusRead,
			}}, nil
		}
	}

	return nil, fmt.Errorf("conversation %s not found", conversationID)
}

var seedConversations = []models.Conversation{
	{
		ID:          "1",
		Name:        "Jamie",
		LastMessage: "Hey, how are you doing today?",
		Avatar:      "https://images.unsplash.com/photo-1488590528505-98d2b5aba04b",
		Unread:      2,
		Online:      true,
		LastActive:  "just now",
		Verified:    true,
	},
	{
		ID:          "2",
		Name:        "Alex",
		LastMessage: "Would you like to grab coffee sometime?",
		Avatar:      "https://images.unsplash.com/photo-1649972904349-6e44c42644a7",
		Unread:      0,
		Online:      false,
		LastActive:  "30 min ago",
		Verified:    true,
	},
	{
		ID:          "3",
		Name:        "Taylor",
		LastMessage: "I love that band too! Have you seen them live?",
		Avatar:      "https://images.unsplash.com/photo-1721322800607-8c38375eef04",
		Unread:      0,
		Online:      false,
		LastActive:  "2 hours ago",
		Verified:    false,
	},
	{
		ID:          "4",
		Name:        "Jordan",
		LastMessage: "What part of town do you live in?",
		Avatar:      "https://images.unsplash.com/photo-1567532939604-b6b5b0db2604",
		Unread:      1,
		Online:      true,
		LastActive:  "just now",
		Verified:    true,
	},
}

var seedThreads = map[string][]seedMessage{
	"1": {
		{id: "m1", senderID: "1", text: "Hey there! I saw we matched and wanted to say hi.", ago: 5 * time.Hour},
		{id: "m2", senderID: models.SelfID, text: "Hi Jamie! Thanks for reaching out. How are you doing today?", ago: 4 * time.Hour},
		{id: "m3", senderID: "1", text: "I'm doing well! Just finished work and relaxing a bit. What about you?", ago: 3 * time.Hour},
		{id: "m4", senderID: models.SelfID, text: "Same here! Had a busy day but finally getting some downtime. I noticed you like hiking from your profile - been on any good trails lately?", ago: 2 * time.Hour},
		{id: "m5", senderID: "1", text: "Yes! I went to Mount Rainier last weekend. The views were incredible! I'd love to tell you more about it sometime. Do you hike often?", ago: time.Hour},
	},
}
