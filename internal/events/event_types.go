package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketRecorded      EventType = "ticket_recorded"
	EventInteractionRecorded EventType = "interaction_recorded"
	EventStaffChanged        EventType = "staff_changed"
	EventImportCompleted     EventType = "import_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subject string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// StaffChangedPayload payload.
type StaffChangedPayload struct {
	Category string `json:"category"`
	Removed  bool   `json:"removed"`
}
