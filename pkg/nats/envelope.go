package nats

import (
	"encoding/json"
	"fmt"
	"time"

	"travel-chatbot-be/pkg/events"
)

// envelope is the wire form of an event on the bus.
type envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(envelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       event.Payload(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return data, nil
}

func decode(data []byte) (events.BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.BaseEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if env.Type == "" {
		return events.BaseEvent{}, fmt.Errorf("event has no type")
	}
	return events.BaseEvent{
		Type:       env.Type,
		Data:       env.Data,
		OccurredAt: env.OccurredAt,
	}, nil
}
