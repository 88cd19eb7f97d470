package models

import "time"

// SelfID is the sender id used for messages written by the current user
const SelfID = "me"

// Profile represents a candidate shown in the discovery feed
type Profile struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Pronouns  string   `json:"pronouns"`
	Gender    string   `json:"gender"`
	Location  string   `json:"location"`
	Bio       string   `json:"bio"`
	Interests []string `json:"interests"`
	ImageURL  string   `json:"image_url"`
	Verified  bool     `json:"verified"`
}

// Conversation represents a messaging thread with one counterpart
type Conversation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	LastMessage string `json:"last_message"`
	Unread      int    `json:"unread"`
	Online      bool   `json:"online"`
	LastActive  string `json:"last_active"`
	Verified    bool   `json:"verified"`
}

// MessageStatus is the simulated delivery state of an outgoing message
type MessageStatus int

const (
	StatusSent MessageStatus = iota
	StatusDelivered
	StatusRead
)

func (s MessageStatus) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusDelivered:
		return "delivered"
	case StatusRead:
		return "read"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name
func (s MessageStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Message represents one message in a conversation
type Message struct {
	ID        string        `json:"id"`
	SenderID  string        `json:"sender_id"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
	Status    MessageStatus `json:"status"`
}

// FromSelf reports whether the current user wrote the message
func (m Message) FromSelf() bool {
	return m.SenderID == SelfID
}

// ProfileDraft is the in-progress profile-setup form state
type ProfileDraft struct {
	Name           string    `json:"name"`
	Birthdate      time.Time `json:"birthdate"`
	Location       string    `json:"location"`
	Gender         string    `json:"gender"`
	CustomGender   string    `json:"custom_gender"`
	Pronouns       string    `json:"pronouns"`
	CustomPronouns string    `json:"custom_pronouns"`
	LookingFor     []string  `json:"looking_for"`
	Bio            string    `json:"bio"`
	Interests      []string  `json:"interests"`
	Photos         []string  `json:"photos"`
}

// DisplayGender returns the custom gender when "Custom" was chosen
func (d ProfileDraft) DisplayGender() string {
	if d.Gender == CustomOption {
		return d.CustomGender
	}
	return d.Gender
}

// DisplayPronouns returns the custom pronouns when "Custom" was chosen
func (d ProfileDraft) DisplayPronouns() string {
	if d.Pronouns == CustomOption {
		return d.CustomPronouns
	}
	return d.Pronouns
}

// CustomOption is the choice that reveals a free-text field
const CustomOption = "Custom"

// FilterPreferences is the discovery filter panel's state. It is shown but
// never applied to the profile list.
type FilterPreferences struct {
	Distance   int      `json:"distance"`
	AgeMin     int      `json:"age_min"`
	AgeMax     int      `json:"age_max"`
	LookingFor []string `json:"looking_for"`
	ShowMe     string   `json:"show_me"`
}

// DefaultFilters returns the panel's initial values
func DefaultFilters() FilterPreferences {
	return FilterPreferences{
		Distance: 50,
		AgeMin:   18,
		AgeMax:   45,
		ShowMe:   "Everyone",
	}
}

// ToastKind selects how a notification is styled
type ToastKind string

const (
	ToastDefault ToastKind = "default"
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient notification shown to the user
type Toast struct {
	Kind        ToastKind `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
}
