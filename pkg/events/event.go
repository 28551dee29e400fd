package events

import (
	"context"
	"time"
)

const (
	// ChatTurnCompleted is published once per finished chatbot turn.
	ChatTurnCompleted = "CHAT_TURN_COMPLETED"
	// DocumentUpserted asks the ingestion pipeline to (re)embed a document.
	DocumentUpserted = "DOCUMENT_UPSERTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher is implemented by anything that can put an event on the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Subject is the bus subject an event type is published on.
func Subject(eventType string) string {
	return "events." + eventType
}
