package services

import "errors"

var (
	// ErrConversationNotFound is returned when a conversation id is unknown
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrNoActiveConversation is returned when sending with no thread open
	ErrNoActiveConversation = errors.New("no active conversation")
	// ErrInterestLimit is returned when an 11th interest is toggled on
	ErrInterestLimit = errors.New("interest limit reached")
	// ErrPhotoLimit is returned when the photo list is already full
	ErrPhotoLimit = errors.New("photo limit reached")
	// ErrNoPhotos is returned when an upload carries no files
	ErrNoPhotos = errors.New("no photos selected")
	// ErrViewClosed is returned by views used after teardown
	ErrViewClosed = errors.New("view closed")
	// ErrBusy is returned while a simulated submission is in flight
	ErrBusy = errors.New("operation already in progress")
)

// ValidationError is the one user-facing failure: a required field was left
// empty or invalid. Its message is what the notification shows.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
