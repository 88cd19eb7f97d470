package services

import (
	"sync"

	"transconnect/internal/models"
)

// Emitter is the sink views report to: transient notifications and view
// update events. Delivery is fire-and-forget.
type Emitter interface {
	Toast(t models.Toast)
	Event(eventType string, data any)
}

// Recorder is an Emitter that keeps everything it receives. Views use it in
// tests and the session uses it as a fallback queue.
type Recorder struct {
	mu     sync.Mutex
	toasts []models.Toast
	events []RecordedEvent
}

// RecordedEvent is one event captured by a Recorder
type RecordedEvent struct {
	Type string
	Data any
}

// Toast records a notification
func (r *Recorder) Toast(t models.Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Event records a view event
func (r *Recorder) Event(eventType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{Type: eventType, Data: data})
}

// Toasts returns a copy of the recorded notifications
func (r *Recorder) Toasts() []models.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Toast(nil), r.toasts...)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedEvent(nil), r.events...)
}

// DrainToasts returns and forgets the recorded notifications
func (r *Recorder) DrainToasts() []models.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.toasts
	r.toasts = nil
	return out
}

func successToast(title string) models.Toast {
	return models.Toast{Kind: models.ToastSuccess, Title: title}
}

func errorToast(title string) models.Toast {
	return models.Toast{Kind: models.ToastError, Title: title}
}

func infoToast(title, description string) models.Toast {
	return models.Toast{Kind: models.ToastDefault, Title: title, Description: description}
}
