package handlers

import (
	"errors"
	"net/http"

	"transconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MessagesPage is the data of the messaging page
type MessagesPage struct {
	State services.MessagingState
}

// MessagesHandler handles the inbox and conversation threads
type MessagesHandler struct {
	pages *Pages
}

// NewMessagesHandler creates a new messages handler
func NewMessagesHandler(pages *Pages) *MessagesHandler {
	return &MessagesHandler{pages: pages}
}

func (h *MessagesHandler) view(w http.ResponseWriter, r *http.Request) (*services.MessagingView, bool) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return nil, false
	}

	v, err := s.Messaging(r.Context())
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to open messages")
		respondError(w, "Failed to load conversations", http.StatusInternalServerError)
		return nil, false
	}
	return v, true
}

// selectConversation makes the conversation in the URL active. It answers
// the request itself and returns false when that is not possible.
func (h *MessagesHandler) selectConversation(w http.ResponseWriter, r *http.Request) (*services.MessagingView, bool) {
	conversationID := chi.URLParam(r, "conversationID")

	v, ok := h.view(w, r)
	if !ok {
		return nil, false
	}

	if err := v.Select(conversationID); err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			h.pages.notFound(w, r, "That conversation doesn't exist.")
			return nil, false
		}
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to open conversation")
		respondError(w, "Failed to open conversation", http.StatusInternalServerError)
		return nil, false
	}
	return v, true
}

// List handles GET /messages
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	v.Back()
	h.pages.render(w, r, http.StatusOK, "messages", "Messages", MessagesPage{State: v.State()})
}

// Show handles GET /messages/{conversationID}
func (h *MessagesHandler) Show(w http.ResponseWriter, r *http.Request) {
	v, ok := h.selectConversation(w, r)
	if !ok {
		return
	}

	h.renderThread(w, r, v.State())
}

// renderThread renders the active conversation. Another tab of the same
// session may have gone back to the list since it was selected.
func (h *MessagesHandler) renderThread(w http.ResponseWriter, r *http.Request, st services.MessagingState) {
	if st.Active == nil {
		redirect(w, r, "/messages")
		return
	}
	h.pages.render(w, r, http.StatusOK, "messages", st.Active.Name, MessagesPage{State: st})
}

// Send handles POST /messages/{conversationID}
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	v, ok := h.selectConversation(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, "Invalid form", http.StatusBadRequest)
		return
	}

	conversationID := chi.URLParam(r, "conversationID")
	if _, err := v.Send(r.PostForm.Get("text")); err != nil && !services.IsValidation(err) {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to send message")
	}

	redirect(w, r, "/messages/"+conversationID)
}

// Call handles POST /messages/{conversationID}/call
func (h *MessagesHandler) Call(w http.ResponseWriter, r *http.Request) {
	v, ok := h.selectConversation(w, r)
	if !ok {
		return
	}

	v.Call()
	redirect(w, r, "/messages/"+chi.URLParam(r, "conversationID"))
}

// VideoCall handles POST /messages/{conversationID}/video
func (h *MessagesHandler) VideoCall(w http.ResponseWriter, r *http.Request) {
	v, ok := h.selectConversation(w, r)
	if !ok {
		return
	}

	v.VideoCall()
	redirect(w, r, "/messages/"+chi.URLParam(r, "conversationID"))
}
