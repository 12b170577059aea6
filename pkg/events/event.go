package events

import "time"

// EventType is the unique code for a system event.
type EventType string

const (
	DoorUpdated         EventType = "DOOR_UPDATED"
	TranscriptFinal     EventType = "TRANSCRIPT_FINAL"
	InvitationCreated   EventType = "INVITATION_CREATED"
	InvitationAccepted  EventType = "INVITATION_ACCEPTED"
	InvitationRefused   EventType = "INVITATION_REFUSED"
	InvitationCancelled EventType = "INVITATION_CANCELLED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOOR_UPDATED").
	EventType() EventType

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by publishers.
type BaseEvent struct {
	Type       EventType
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() EventType {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New builds a BaseEvent stamped with the current time.
func New(t EventType, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: t, Data: data, OccurredAt: time.Now()}
}
